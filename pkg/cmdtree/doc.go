// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cmdtree resolves command lines against a declarative tree of
// commands, validates flags and positionals with pluggable validators and
// runs the matched handler.
//
// The same tree can be invoked programmatically through a Caller, which
// skips tokenization but uses the same validation.
//
// # Command Trees
//
// A tree is made of Groups (command words mapping to further nodes) and
// Runnables (commands with a handler). A Runnable may have subcommands of
// its own, so every word of "tool project new folder" can be a command.
//
//	calc, err := cmdtree.NewCommand(runCalc,
//	    cmdtree.WithFlags(cmdtree.Flag{
//	        Name:      "operation",
//	        Short:     "o",
//	        Validator: schema.Enum("add", "subtract", "multiply", "divide"),
//	    }),
//	    cmdtree.WithPositionals(
//	        cmdtree.Positional{Validator: schema.Number()},
//	        cmdtree.Positional{Validator: schema.Number()},
//	    ),
//	)
//	cli, err := cmdtree.New(cmdtree.Group{"calc": calc})
//	os.Exit(cli.Main(ctx, os.Args[1:]))
//
// # Resolution
//
// Tokens that do not start with "-" are fed into the tree as successive
// keys. The deepest Runnable reached wins; the first word that does not
// match stops the walk. Words consumed this way are removed before the
// remaining args are tokenized.
//
// # Flag Syntax
//
//   - --name value, --name=value, -x value, -x=value
//   - --name and -x alone are true; --no-name is false
//   - -xyz sets -x, -y and -z
//   - --db.host=h sets {"db": {"host": "h"}}
//   - --max-retries is stored as maxRetries
//   - everything after "--" is a positional
//
// Values are parsed as JSON literals (numbers, booleans, null, arrays,
// objects) when possible, then split on commas, and otherwise kept as
// strings. Repeating a flag collects its values into a sequence; flags
// declared Multiple always yield a sequence.
//
// # Validation
//
// Every declared flag and positional is validated concurrently. Failures
// from all fields are collected into one *ValidationError and reported
// through the ErrorFormatter, or printed to the error stream, before the
// handler would run.
package cmdtree

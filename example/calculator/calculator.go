// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command calculator adds, subtracts, multiplies or divides two numbers.
//
//	calculator calc 2 3 --operation add
//	calculator calc 7 4 -o subtract -v
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/yeetrun/clivex/pkg/cmdtree"
	"github.com/yeetrun/clivex/pkg/schema"
)

var errDivideByZero = errors.New("division by zero")

func newCLI(stdout, stderr io.Writer, opts ...cmdtree.Option) (*cmdtree.CLI, error) {
	calc, err := cmdtree.NewCommand(
		func(ctx context.Context, in cmdtree.Input) (any, error) {
			return calculate(stdout, in)
		},
		cmdtree.WithDescription("Add, subtract, multiply or divide two numbers"),
		cmdtree.WithFlags(
			cmdtree.Flag{
				Name:        "operation",
				Short:       "o",
				Validator:   schema.Enum("add", "subtract", "multiply", "divide"),
				Description: "Operation to apply",
			},
			cmdtree.Flag{
				Name:        "verbose",
				Short:       "v",
				Validator:   schema.Optional(schema.Bool()),
				Description: "Print the whole expression",
			},
		),
		cmdtree.WithPositionals(
			cmdtree.Positional{Validator: schema.Number(), Description: "a"},
			cmdtree.Positional{Validator: schema.Number(), Description: "b"},
		),
	)
	if err != nil {
		return nil, err
	}

	opts = append([]cmdtree.Option{
		cmdtree.WithStdout(stdout),
		cmdtree.WithStderr(stderr),
		cmdtree.WithHelp(cmdtree.CommandInfo{
			Name:        "calculator",
			Description: "A tiny calculator",
			Examples:    []string{"calculator calc 2 3 --operation add"},
		}),
		cmdtree.WithVersion("1.0.0"),
	}, opts...)
	return cmdtree.New(cmdtree.Group{"calc": calc}, opts...)
}

func calculate(stdout io.Writer, in cmdtree.Input) (float64, error) {
	a, b := in.Positionals[0].(float64), in.Positionals[1].(float64)
	op := in.Flags["operation"].(string)

	var result float64
	switch op {
	case "add":
		result = a + b
	case "subtract":
		result = a - b
	case "multiply":
		result = a * b
	case "divide":
		if b == 0 {
			return 0, errDivideByZero
		}
		result = a / b
	}

	if verbose, _ := in.Flags["verbose"].(bool); verbose {
		fmt.Fprintf(stdout, "%v %s %v = %v\n", a, op, b, result)
	} else {
		fmt.Fprintln(stdout, result)
	}
	return result, nil
}

func main() {
	var opts []cmdtree.Option
	if os.Getenv("CLIVEX_DEBUG") != "" {
		opts = append(opts, cmdtree.WithLogf(log.Printf))
	}
	if path := os.Getenv("CLIVEX_DEFAULTS"); path != "" {
		d, err := cmdtree.LoadDefaults(path)
		if err != nil {
			log.Fatalf("failed to load defaults: %v", err)
		}
		opts = append(opts, cmdtree.WithDefaults(d))
	}
	cli, err := newCLI(os.Stdout, os.Stderr, opts...)
	if err != nil {
		log.Fatal(err)
	}
	os.Exit(cli.Main(context.Background(), os.Args[1:]))
}

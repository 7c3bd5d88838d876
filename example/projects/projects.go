// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command projects shows nested commands where several words on the same
// path are runnable on their own:
//
//	projects project new folder docs 2 -f Hello -c
//	projects project new folder hello world
//	projects project new folder hello world hello world
//
// Only the deepest command on the path runs.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/yeetrun/clivex/pkg/cmdtree"
	"github.com/yeetrun/clivex/pkg/schema"
	"tailscale.com/types/logger"
)

func buildTree(stdout io.Writer) (cmdtree.Group, error) {
	inner, err := cmdtree.NewCommand(func(ctx context.Context, in cmdtree.Input) (any, error) {
		fmt.Fprintln(stdout, "Hello World! 2")
		return "hello world 2", nil
	})
	if err != nil {
		return nil, err
	}
	outer, err := cmdtree.NewCommand(
		func(ctx context.Context, in cmdtree.Input) (any, error) {
			fmt.Fprintln(stdout, "Hello World! 1")
			return "hello world 1", nil
		},
		cmdtree.WithSubcommands(cmdtree.Group{
			"hello": cmdtree.Group{"world": inner},
		}),
	)
	if err != nil {
		return nil, err
	}
	folder, err := cmdtree.NewCommand(
		func(ctx context.Context, in cmdtree.Input) (any, error) {
			fmt.Fprintf(stdout, "creating folder %v (%v) file=%v pdf=%v\n",
				in.Positionals[0], in.Positionals[1], in.Flags["file"], in.Flags["pdf"])
			return in, nil
		},
		cmdtree.WithDescription("Create a project folder"),
		cmdtree.WithFlags(
			cmdtree.Flag{Name: "file", Short: "f", Validator: schema.Optional(schema.Literal("Hello"))},
			cmdtree.Flag{Name: "pdf", Short: "c", Validator: schema.Default(schema.Bool(), false)},
			cmdtree.Flag{Name: "pdf2", Short: "g", Validator: schema.Default(schema.Bool(), false)},
		),
		cmdtree.WithPositionals(
			cmdtree.Positional{Validator: schema.String(), Description: "name"},
			cmdtree.Positional{Validator: schema.Number(), Description: "size"},
		),
		cmdtree.WithSubcommands(cmdtree.Group{
			"hello": cmdtree.Group{"world": outer},
		}),
	)
	if err != nil {
		return nil, err
	}
	return cmdtree.Group{
		"project": cmdtree.Group{
			"new": cmdtree.Group{"folder": folder},
		},
	}, nil
}

func main() {
	logf := logger.Discard
	if os.Getenv("CLIVEX_DEBUG") != "" {
		logf = log.Printf
	}
	tree, err := buildTree(os.Stdout)
	if err != nil {
		log.Fatal(err)
	}
	cli, err := cmdtree.New(tree,
		cmdtree.WithLogf(logf),
		cmdtree.WithHelp(cmdtree.CommandInfo{Name: "projects", Description: "Nested command demo"}),
	)
	if err != nil {
		log.Fatal(err)
	}
	os.Exit(cli.Main(context.Background(), os.Args[1:]))
}

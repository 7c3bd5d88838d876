// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdtree

import (
	"context"
	"fmt"
	"slices"
	"sort"
)

// Caller mirrors a command tree for programmatic invocation. Input passed to
// Call skips tokenization but goes through the same validators as the
// command line.
//
//	c := cli.Caller()
//	res, err := c.Sub("project").Sub("new").Sub("folder").Call(ctx, cmdtree.Input{...})
//	res, err = res.Subcommands.Sub("hello").Sub("world").Call(ctx, cmdtree.Input{})
type Caller struct {
	path     []string
	children map[string]*Caller
	call     func(context.Context, Input) (*CallResult, error)
}

// CallResult is returned by Caller.Call.
type CallResult struct {
	// Value is what the handler returned.
	Value any
	// Subcommands mirrors the subcommands of the called command. It is nil
	// when the command has none.
	Subcommands *Caller
}

func newCaller(root Group, o *options) *Caller {
	return &Caller{children: mirror(root, nil, o)}
}

// mirror builds one Caller per child of g, recursively.
func mirror(g Group, path []string, o *options) map[string]*Caller {
	out := make(map[string]*Caller, len(g))
	for key, n := range g {
		p := append(slices.Clone(path), key)
		switch n := n.(type) {
		case Group:
			out[key] = &Caller{path: p, children: mirror(n, p, o)}
		case *Runnable:
			out[key] = mirrorRunnable(n, p, o)
		}
	}
	return out
}

func mirrorRunnable(r *Runnable, path []string, o *options) *Caller {
	var sub *Caller
	c := &Caller{path: path}
	if r.Subcommands != nil {
		c.children = mirror(r.Subcommands, path, o)
		sub = &Caller{path: path, children: c.children}
	}
	c.call = func(ctx context.Context, in Input) (*CallResult, error) {
		if r.Run == nil {
			return nil, fmt.Errorf("%s: %w", joinPath(path), ErrNoRunFunction)
		}
		flags := in.Flags
		if flags == nil {
			flags = map[string]any{}
		}
		positionals := in.Positionals
		if positionals == nil {
			positionals = []any{}
		}
		valid, err := o.validateInput(ctx, r, flags, positionals)
		if err != nil {
			return nil, err
		}
		v, err := r.Run(ctx, valid)
		if err != nil {
			return nil, err
		}
		return &CallResult{Value: v, Subcommands: sub}, nil
	}
	return c
}

// Sub returns the child mirrored under key, or nil.
func (c *Caller) Sub(key string) *Caller {
	if c == nil {
		return nil
	}
	return c.children[key]
}

// Lookup follows path from c.
func (c *Caller) Lookup(path ...string) (*Caller, bool) {
	for _, key := range path {
		c = c.Sub(key)
		if c == nil {
			return nil, false
		}
	}
	return c, c != nil
}

// Names returns the sorted keys of c's children.
func (c *Caller) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.children))
	for name := range c.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Path returns the command words leading to c.
func (c *Caller) Path() []string {
	return slices.Clone(c.path)
}

// Callable reports whether c mirrors a Runnable.
func (c *Caller) Callable() bool {
	return c != nil && c.call != nil
}

// Call validates in and runs the mirrored command.
func (c *Caller) Call(ctx context.Context, in Input) (*CallResult, error) {
	if !c.Callable() {
		if c == nil {
			return nil, ErrNoCommandFound
		}
		return nil, fmt.Errorf("%q is a command group: %w", joinPath(c.path), ErrNoRunFunction)
	}
	return c.call(ctx, in)
}

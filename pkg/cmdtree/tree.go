// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdtree

import (
	"context"
	"fmt"
	"sort"
	"unicode/utf8"

	"tailscale.com/util/mak"
)

// Node is a command tree node. It is either a Group or a *Runnable.
type Node interface {
	isNode()
}

// Group maps command words to further nodes.
type Group map[string]Node

func (Group) isNode() {}

// Input is the validated input handed to a Handler. It is also the input
// accepted by the programmatic Caller, where values skip tokenization.
type Input struct {
	Flags       map[string]any
	Positionals []any
}

// Handler runs a command with validated input.
type Handler func(ctx context.Context, in Input) (any, error)

// Runnable is a command with a handler. It may declare flags, positionals and
// further subcommands.
type Runnable struct {
	Description string
	Flags       *FlagSet
	Positionals []Positional
	Subcommands Group
	Run         Handler
}

func (*Runnable) isNode() {}

// child returns the node reached from n by the command word key. A Runnable
// continues the walk through its subcommands.
func child(n Node, key string) (Node, bool) {
	switch n := n.(type) {
	case Group:
		c, ok := n[key]
		return c, ok && c != nil
	case *Runnable:
		if n.Subcommands == nil {
			return nil, false
		}
		c, ok := n.Subcommands[key]
		return c, ok && c != nil
	default:
		return nil, false
	}
}

// Flag describes a single named flag.
type Flag struct {
	Name      string
	Validator Validator
	// Short is an optional single character alias, used as -x.
	Short       string
	Multiple    bool
	Description string
}

// FlagSet is the flag table of one command.
type FlagSet struct {
	validators  map[string]Validator
	shortToLong map[string]string
	multiple    map[string]bool
	meta        map[string]string
}

// NewFlagSet builds the flag table for a command. It fails with
// ErrInvalidSchema when a flag has no validator, and rejects duplicate names
// and aliases.
func NewFlagSet(flags ...Flag) (*FlagSet, error) {
	fs := &FlagSet{validators: make(map[string]Validator, len(flags))}
	for _, f := range flags {
		if f.Name == "" {
			return nil, fmt.Errorf("flag without a name")
		}
		if f.Validator == nil {
			return nil, fmt.Errorf("flag --%s: %w", f.Name, ErrInvalidSchema)
		}
		if _, dup := fs.validators[f.Name]; dup {
			return nil, fmt.Errorf("flag --%s declared twice", f.Name)
		}
		fs.validators[f.Name] = f.Validator
		if f.Short != "" {
			if utf8.RuneCountInString(f.Short) != 1 {
				return nil, fmt.Errorf("flag --%s: short alias %q must be a single character", f.Name, f.Short)
			}
			if prev, dup := fs.shortToLong[f.Short]; dup {
				return nil, fmt.Errorf("short alias -%s used by both --%s and --%s", f.Short, prev, f.Name)
			}
			mak.Set(&fs.shortToLong, f.Short, f.Name)
		}
		if f.Multiple {
			mak.Set(&fs.multiple, f.Name, true)
		}
		if f.Description != "" {
			mak.Set(&fs.meta, f.Name, f.Description)
		}
	}
	return fs, nil
}

// Names returns the declared flag names in sorted order.
func (fs *FlagSet) Names() []string {
	if fs == nil {
		return nil
	}
	names := make([]string, 0, len(fs.validators))
	for name := range fs.validators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validator returns the validator of the named flag.
func (fs *FlagSet) Validator(name string) (Validator, bool) {
	if fs == nil {
		return nil, false
	}
	v, ok := fs.validators[name]
	return v, ok
}

// Long returns the flag name aliased by the short character s.
func (fs *FlagSet) Long(s string) (string, bool) {
	if fs == nil {
		return "", false
	}
	name, ok := fs.shortToLong[s]
	return name, ok
}

// Short returns the short alias of the named flag, if any.
func (fs *FlagSet) Short(name string) string {
	if fs == nil {
		return ""
	}
	for s, long := range fs.shortToLong {
		if long == name {
			return s
		}
	}
	return ""
}

// Multiple reports whether the named flag collects a sequence of values.
func (fs *FlagSet) Multiple(name string) bool {
	return fs != nil && fs.multiple[name]
}

// Description returns the description of the named flag.
func (fs *FlagSet) Description(name string) string {
	if fs == nil {
		return ""
	}
	return fs.meta[name]
}

// Positional describes one positional argument.
type Positional struct {
	Validator   Validator
	Description string
}

// CommandOption configures a Runnable built by NewCommand.
type CommandOption func(*Runnable) error

// WithFlags declares the command's flags.
func WithFlags(flags ...Flag) CommandOption {
	return func(r *Runnable) error {
		if r.Flags != nil {
			return fmt.Errorf("flags already declared")
		}
		fs, err := NewFlagSet(flags...)
		if err != nil {
			return err
		}
		r.Flags = fs
		return nil
	}
}

// WithPositionals declares the command's positional arguments, in order.
func WithPositionals(ps ...Positional) CommandOption {
	return func(r *Runnable) error {
		if r.Positionals != nil {
			return fmt.Errorf("positionals already declared")
		}
		out := make([]Positional, len(ps))
		for i, p := range ps {
			if p.Validator == nil {
				return fmt.Errorf("positional %d: %w", i+1, ErrInvalidSchema)
			}
			if p.Description == "" {
				p.Description = fmt.Sprintf("Positional argument %d", i+1)
			}
			out[i] = p
		}
		r.Positionals = out
		return nil
	}
}

// WithSubcommands attaches nested commands reachable below this one.
func WithSubcommands(g Group) CommandOption {
	return func(r *Runnable) error {
		if r.Subcommands != nil {
			return fmt.Errorf("subcommands already declared")
		}
		r.Subcommands = g
		return nil
	}
}

// WithDescription sets the one-line description shown in help output.
func WithDescription(desc string) CommandOption {
	return func(r *Runnable) error {
		r.Description = desc
		return nil
	}
}

// NewCommand builds a Runnable from its handler and options.
func NewCommand(run Handler, opts ...CommandOption) (*Runnable, error) {
	r := &Runnable{Run: run}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// checkTree verifies every node reachable from n. Flag tables built through
// NewFlagSet are already valid; positionals assigned directly are not.
func checkTree(n Node, path []string) error {
	switch n := n.(type) {
	case Group:
		for key, c := range n {
			if c == nil {
				return fmt.Errorf("command %q is nil", joinPath(append(path, key)))
			}
			if err := checkTree(c, append(path, key)); err != nil {
				return err
			}
		}
	case *Runnable:
		if n == nil {
			return fmt.Errorf("command %q is nil", joinPath(path))
		}
		for i, p := range n.Positionals {
			if p.Validator == nil {
				return fmt.Errorf("command %q positional %d: %w", joinPath(path), i+1, ErrInvalidSchema)
			}
		}
		if n.Subcommands != nil {
			return checkTree(n.Subcommands, path)
		}
	}
	return nil
}

// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdtree

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/fatih/color"
	"tailscale.com/types/logger"
	"tailscale.com/util/set"
)

type options struct {
	formatter     ErrorFormatter
	stdout        io.Writer
	stderr        io.Writer
	logf          logger.Logf
	strictRepeats bool
	defaults      Defaults
	help          *CommandInfo
	version       string
}

// Option configures a CLI.
type Option func(*options)

// WithErrorFormatter replaces the default error output. f is called once per
// failing field.
func WithErrorFormatter(f ErrorFormatter) Option {
	return func(o *options) { o.formatter = f }
}

// WithStdout sets where help and version output go. Defaults to os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(o *options) { o.stdout = w }
}

// WithStderr sets where error messages go. Defaults to os.Stderr.
func WithStderr(w io.Writer) Option {
	return func(o *options) { o.stderr = w }
}

// WithLogf sets the debug logger. Defaults to logger.Discard.
func WithLogf(logf logger.Logf) Option {
	return func(o *options) { o.logf = logf }
}

// WithStrictRepeats makes repeating a flag that is not marked Multiple an
// error instead of collecting the values into a sequence.
func WithStrictRepeats() Option {
	return func(o *options) { o.strictRepeats = true }
}

// WithDefaults supplies flag values used when the command line omits them.
func WithDefaults(d Defaults) Option {
	return func(o *options) { o.defaults = d }
}

// WithHelp adds a "help" command printing usage for the whole tree.
func WithHelp(info CommandInfo) Option {
	return func(o *options) { o.help = &info }
}

// WithVersion adds a "version" command printing v, which must be a
// semantic version.
func WithVersion(v string) Option {
	return func(o *options) { o.version = v }
}

// CLI dispatches command lines and programmatic calls against a command tree.
type CLI struct {
	root Group
	opts options
}

// New checks the tree and returns a CLI for it. The tree must not be
// modified afterwards.
func New(root Group, opts ...Option) (*CLI, error) {
	o := options{
		stdout: os.Stdout,
		stderr: os.Stderr,
		logf:   logger.Discard,
	}
	for _, opt := range opts {
		opt(&o)
	}

	root = maps.Clone(root)
	if root == nil {
		root = Group{}
	}
	c := &CLI{root: root, opts: o}
	if o.version != "" {
		v, err := semver.NewVersion(o.version)
		if err != nil {
			return nil, fmt.Errorf("invalid version %q: %w", o.version, err)
		}
		if _, ok := root[versionCommand]; !ok {
			root[versionCommand] = c.versionCommand(v)
		}
	}
	if o.help != nil {
		if _, ok := root[helpCommand]; !ok {
			root[helpCommand] = c.helpCommand(*o.help)
		}
	}
	if err := checkTree(root, nil); err != nil {
		return nil, err
	}
	return c, nil
}

// Run resolves args (without the program name) to a command, tokenizes and
// validates the rest and runs the handler, returning its result.
func (c *CLI) Run(ctx context.Context, args []string) (any, error) {
	tokens, indexes := positionalTokens(args)
	res := Resolve(c.root, tokens, indexes)
	if res == nil {
		return nil, unknownCommand(c.root, tokens, indexes)
	}
	cmd := res.Command
	c.opts.logf("cmdtree: resolved %q from args %q", joinPath(res.Path), args)
	if cmd.Run == nil {
		return nil, fmt.Errorf("%s: %w", joinPath(res.Path), ErrNoRunFunction)
	}

	drop := set.SetOf(res.Indexes)
	rest := make([]string, 0, len(args)-len(res.Indexes))
	for i, arg := range args {
		if !drop.Contains(i) {
			rest = append(rest, arg)
		}
	}

	draft, err := Tokenize(rest, cmd.Flags)
	if err != nil {
		return nil, err
	}
	if c.opts.strictRepeats && len(draft.Repeated) > 0 {
		return nil, &RepeatedFlagError{Flags: draft.Repeated}
	}
	c.opts.defaults.apply(res.Path, cmd.Flags, draft.Flags)
	c.opts.logf("cmdtree: %d flag(s), %d positional(s) for %q", len(draft.Flags), len(draft.Positionals), joinPath(res.Path))

	in, err := c.opts.validateInput(ctx, cmd, draft.Flags, draft.Positionals)
	if err != nil {
		return nil, err
	}
	return cmd.Run(ctx, in)
}

// Main runs args and reports any error on the error stream. It returns the
// process exit code. Validation failures have already been reported by the
// time Run returns and are not printed again.
func (c *CLI) Main(ctx context.Context, args []string) int {
	_, err := c.Run(ctx, args)
	if err == nil {
		return 0
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidPositionalCount) {
		return 1
	}
	errColor := newColor(c.opts.stderr, color.FgRed)
	fmt.Fprintf(c.opts.stderr, "%s %v\n", errColor.Sprint("Error:"), err)
	if _, ok := c.root[helpCommand]; ok && c.opts.help != nil {
		fmt.Fprintf(c.opts.stderr, "Try '%s %s' for more information\n", c.opts.help.Name, helpCommand)
	}
	return 1
}

// Caller returns the programmatic mirror of the tree.
func (c *CLI) Caller() *Caller {
	return newCaller(c.root, &c.opts)
}

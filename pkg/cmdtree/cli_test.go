// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdtree

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/google/go-cmp/cmp"
	"tailscale.com/util/must"
)

func newTestCLI(t *testing.T, root Group, opts ...Option) (c *CLI, stdout, stderr *bytes.Buffer) {
	t.Helper()
	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	opts = append([]Option{WithStdout(stdout), WithStderr(stderr), WithLogf(t.Logf)}, opts...)
	c, err := New(root, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c, stdout, stderr
}

func TestRunCalculator(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want any
	}{
		{"add", []string{"calc", "2", "3", "--operation", "add"}, 5.0},
		{"short flag first", []string{"calc", "-o", "subtract", "10", "4"}, 6.0},
		{"equals form", []string{"calc", "6", "--operation=multiply", "7"}, 42.0},
		{"divide", []string{"calc", "-o=divide", "9", "3"}, 3.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newTestCLI(t, Group{"calc": calcCommand(nil)})
			got, err := c.Run(t.Context(), tt.args)
			if err != nil {
				t.Fatalf("Run(%q) error = %v", tt.args, err)
			}
			if got != tt.want {
				t.Errorf("Run(%q) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestRunHandlerError(t *testing.T) {
	var seen []Input
	c, _, _ := newTestCLI(t, Group{"calc": calcCommand(&seen)})

	_, err := c.Run(t.Context(), []string{"calc", "10", "0", "--operation", "divide"})
	if !errors.Is(err, errDivideByZero) {
		t.Fatalf("Run() error = %v, want %v", err, errDivideByZero)
	}
	want := []Input{{
		Flags:       map[string]any{"operation": "divide", "verbose": false},
		Positionals: []any{10.0, 0.0},
	}}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("handler input mismatch (-want +got):\n%s", diff)
	}
}

func TestRunValidationFailure(t *testing.T) {
	var seen []Input
	var infos []ErrorInfo
	c, _, _ := newTestCLI(t, Group{"calc": calcCommand(&seen)},
		WithErrorFormatter(func(info ErrorInfo) { infos = append(infos, info) }),
	)

	_, err := c.Run(t.Context(), []string{"calc", "two", "3", "--operation", "power"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Run() error = %v, want ErrValidation", err)
	}
	if len(seen) != 0 {
		t.Errorf("handler ran %d times, want 0", len(seen))
	}
	want := []ErrorInfo{
		{Kind: KindFlag, Key: "operation", Description: "Operation to apply"},
		{Kind: KindPositional, Index: 0, Description: "Positional argument 1"},
	}
	if diff := cmp.Diff(want, infos); diff != "" {
		t.Errorf("formatter calls mismatch (-want +got):\n%s", diff)
	}
}

func TestRunErrors(t *testing.T) {
	root := Group{
		"calc":   calcCommand(nil),
		"remote": Group{"add": &Runnable{}},
		"status": &Runnable{Run: okHandler("status")},
	}

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"unknown command", []string{"clac", "1", "2"}, ErrNoCommandFound},
		{"no args", nil, ErrNoCommandFound},
		{"group only", []string{"remote"}, ErrNoCommandFound},
		{"no run function", []string{"remote", "add"}, ErrNoRunFunction},
		{"too few positionals", []string{"calc", "1", "-o", "add"}, ErrInvalidPositionalCount},
		{"too many positionals", []string{"calc", "1", "2", "3", "-o", "add"}, ErrInvalidPositionalCount},
		{"unknown short flag", []string{"calc", "1", "2", "-q", "-z"}, ErrInvalidFlag},
		{"command word after terminator", []string{"--", "status"}, ErrNoCommandFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newTestCLI(t, root)
			_, err := c.Run(t.Context(), tt.args)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Run(%q) error = %v, want %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestRunNestedCommands(t *testing.T) {
	var ran []string
	record := func(name string) Handler {
		return func(ctx context.Context, in Input) (any, error) {
			ran = append(ran, name)
			return in, nil
		}
	}
	inner := &Runnable{Run: record("inner")}
	outer := &Runnable{Run: record("outer"), Subcommands: Group{"hello": Group{"world": inner}}}
	folder := &Runnable{
		Run: record("folder"),
		Flags: must.Get(NewFlagSet(
			Flag{Name: "file", Short: "f", Validator: anyV},
		)),
		Positionals: []Positional{
			{Validator: stringV, Description: "name"},
			{Validator: numberV, Description: "size"},
		},
		Subcommands: Group{"hello": Group{"world": outer}},
	}
	root := Group{"project": Group{"new": Group{"folder": folder}}}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"folder", []string{"project", "new", "folder", "docs", "10", "-f", "Hello"}, []string{"folder"}},
		{"outer", []string{"project", "new", "folder", "hello", "world"}, []string{"outer"}},
		{"inner", []string{"project", "new", "folder", "hello", "world", "hello", "world"}, []string{"inner"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ran = nil
			c, _, _ := newTestCLI(t, root)
			if _, err := c.Run(t.Context(), tt.args); err != nil {
				t.Fatalf("Run(%q) error = %v", tt.args, err)
			}
			if diff := cmp.Diff(tt.want, ran); diff != "" {
				t.Errorf("handlers mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRunRepeatedFlags(t *testing.T) {
	var got any
	cmd := &Runnable{
		Flags: must.Get(NewFlagSet(
			Flag{Name: "label", Validator: anyV},
			Flag{Name: "tag", Validator: anyV, Multiple: true},
		)),
		Run: func(ctx context.Context, in Input) (any, error) {
			got = in.Flags
			return nil, nil
		},
	}
	args := []string{"tool", "--label", "x", "--label", "y", "--tag", "a"}

	c, _, _ := newTestCLI(t, Group{"tool": cmd})
	if _, err := c.Run(t.Context(), args); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := map[string]any{"label": []any{"x", "y"}, "tag": []any{"a"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("flags mismatch (-want +got):\n%s", diff)
	}

	strict, _, _ := newTestCLI(t, Group{"tool": cmd}, WithStrictRepeats())
	_, err := strict.Run(t.Context(), args)
	var repErr *RepeatedFlagError
	if !errors.As(err, &repErr) {
		t.Fatalf("Run() error = %v, want *RepeatedFlagError", err)
	}
	if diff := cmp.Diff([]string{"label"}, repErr.Flags); diff != "" {
		t.Errorf("repeated flags mismatch (-want +got):\n%s", diff)
	}
	if got, want := err.Error(), "flag given more than once: --label"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if _, err := strict.Run(t.Context(), []string{"tool", "--tag", "a", "--tag", "b"}); err != nil {
		t.Errorf("repeating a multiple flag: error = %v", err)
	}

	tests := []struct {
		name string
		args []string
		want map[string]any
	}{
		{
			name: "negated multiple flag",
			args: []string{"tool", "--tag", "a", "--no-tag", "--tag", "b"},
			want: map[string]any{"label": nil, "tag": []any{false}},
		},
		{
			name: "absent multiple flag",
			args: []string{"tool"},
			want: map[string]any{"label": nil, "tag": []any{}},
		},
		{
			name: "comma list and repeat",
			args: []string{"tool", "--tag", "a,b", "--tag", "c"},
			want: map[string]any{"label": nil, "tag": []any{"a", "b", "c"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = nil
			if _, err := c.Run(t.Context(), tt.args); err != nil {
				t.Fatalf("Run(%q) error = %v", tt.args, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("flags mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRunDefaults(t *testing.T) {
	var seen []Input
	defaults := Defaults{"calc": {"operation": "multiply"}}
	c, _, _ := newTestCLI(t, Group{"calc": calcCommand(&seen)}, WithDefaults(defaults))

	got, err := c.Run(t.Context(), []string{"calc", "4", "5"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got != 20.0 {
		t.Errorf("Run() = %v, want 20", got)
	}

	got, err = c.Run(t.Context(), []string{"calc", "4", "5", "-o", "add"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got != 9.0 {
		t.Errorf("command line did not override default: Run() = %v, want 9", got)
	}
}

func TestNewInvalidSchema(t *testing.T) {
	tests := []struct {
		name string
		root Group
		opts []Option
	}{
		{
			name: "positional without validator",
			root: Group{"x": &Runnable{Positionals: []Positional{{Description: "p"}}}},
		},
		{
			name: "nested positional without validator",
			root: Group{"a": &Runnable{Subcommands: Group{"b": &Runnable{Positionals: []Positional{{}}}}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.root, tt.opts...); !errors.Is(err, ErrInvalidSchema) {
				t.Errorf("New() error = %v, want ErrInvalidSchema", err)
			}
		})
	}

	if _, err := New(Group{"x": nil}); err == nil {
		t.Error("New() with a nil command succeeded")
	}
	if _, err := New(Group{}, WithVersion("not-a-version")); err == nil {
		t.Error("New() with an invalid version succeeded")
	}
	if _, err := NewCommand(okHandler("x"), WithFlags(Flag{Name: "f"})); !errors.Is(err, ErrInvalidSchema) {
		t.Errorf("NewCommand() error = %v, want ErrInvalidSchema", err)
	}
	if _, err := NewCommand(okHandler("x"), WithPositionals(Positional{})); !errors.Is(err, ErrInvalidSchema) {
		t.Errorf("NewCommand() error = %v, want ErrInvalidSchema", err)
	}
}

func TestNewFlagSetErrors(t *testing.T) {
	tests := []struct {
		name  string
		flags []Flag
	}{
		{"missing name", []Flag{{Validator: anyV}}},
		{"duplicate name", []Flag{{Name: "a", Validator: anyV}, {Name: "a", Validator: anyV}}},
		{"duplicate short", []Flag{{Name: "a", Short: "x", Validator: anyV}, {Name: "b", Short: "x", Validator: anyV}}},
		{"long short", []Flag{{Name: "a", Short: "xy", Validator: anyV}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFlagSet(tt.flags...); err == nil {
				t.Error("NewFlagSet() succeeded, want error")
			}
		})
	}
}

func TestNewCommand(t *testing.T) {
	r, err := NewCommand(okHandler("calc"),
		WithDescription("Calculator"),
		WithFlags(Flag{Name: "operation", Short: "o", Validator: anyV, Description: "Operation"}),
		WithPositionals(Positional{Validator: numberV}, Positional{Validator: numberV, Description: "b"}),
	)
	if err != nil {
		t.Fatalf("NewCommand() error = %v", err)
	}
	if r.Description != "Calculator" {
		t.Errorf("Description = %q", r.Description)
	}
	if got, ok := r.Flags.Long("o"); !ok || got != "operation" {
		t.Errorf("Long(o) = %q, %v", got, ok)
	}
	var descs []string
	for _, p := range r.Positionals {
		descs = append(descs, p.Description)
	}
	if diff := cmp.Diff([]string{"Positional argument 1", "b"}, descs); diff != "" {
		t.Errorf("positional descriptions mismatch (-want +got):\n%s", diff)
	}

	if _, err := NewCommand(nil, WithFlags(), WithFlags()); err == nil {
		t.Error("declaring flags twice succeeded")
	}
}

func TestHelpAndVersion(t *testing.T) {
	info := CommandInfo{
		Name:        "calc",
		Description: "A tiny calculator",
		Examples:    []string{"calc calc 2 3 -o add"},
	}
	calc := calcCommand(nil)
	calc.Description = "Apply an operation"
	c, stdout, _ := newTestCLI(t, Group{"calc": calc}, WithHelp(info), WithVersion("1.2.3"))

	got, err := c.Run(t.Context(), []string{"version"})
	if err != nil {
		t.Fatalf("version: error = %v", err)
	}
	if v, ok := got.(*semver.Version); !ok || v.String() != "1.2.3" {
		t.Errorf("version result = %v", got)
	}
	if stdout.String() != "1.2.3\n" {
		t.Errorf("version output = %q", stdout.String())
	}

	stdout.Reset()
	got, err = c.Run(t.Context(), []string{"help"})
	if err != nil {
		t.Fatalf("help: error = %v", err)
	}
	text, _ := got.(string)
	if text != stdout.String() {
		t.Errorf("help result and output differ")
	}
	for _, want := range []string{
		"calc - A tiny calculator",
		"USAGE:",
		"COMMANDS:",
		"calc <Positional argument 1> <Positional argument 2>",
		"Apply an operation",
		"-o, --operation",
		"Operation to apply",
		"--verbose",
		"help",
		"version",
		"EXAMPLES:",
		"calc calc 2 3 -o add",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("help output missing %q:\n%s", want, text)
		}
	}
}

func TestHelpDoesNotReplaceUserCommand(t *testing.T) {
	c, _, _ := newTestCLI(t, Group{"help": &Runnable{Run: okHandler("mine")}}, WithHelp(CommandInfo{Name: "x"}))
	got, err := c.Run(t.Context(), []string{"help"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got != "mine" {
		t.Errorf("Run(help) = %v, want the user command", got)
	}
}

func TestCLIMain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	t.Run("success", func(t *testing.T) {
		c, _, stderr := newTestCLI(t, Group{"calc": calcCommand(nil)})
		if code := c.Main(t.Context(), []string{"calc", "1", "2", "-o", "add"}); code != 0 {
			t.Errorf("Main() = %d, want 0", code)
		}
		if stderr.Len() != 0 {
			t.Errorf("stderr = %q", stderr.String())
		}
	})

	t.Run("handler error", func(t *testing.T) {
		c, _, stderr := newTestCLI(t, Group{"calc": calcCommand(nil)}, WithHelp(CommandInfo{Name: "calc"}))
		if code := c.Main(t.Context(), []string{"calc", "1", "0", "-o", "divide"}); code != 1 {
			t.Errorf("Main() = %d, want 1", code)
		}
		want := "Error: division by zero\nTry 'calc help' for more information\n"
		if got := stderr.String(); got != want {
			t.Errorf("stderr = %q, want %q", got, want)
		}
	})

	t.Run("validation error is reported once", func(t *testing.T) {
		c, _, stderr := newTestCLI(t, Group{"calc": calcCommand(nil)})
		if code := c.Main(t.Context(), []string{"calc", "x", "2", "-o", "add"}); code != 1 {
			t.Errorf("Main() = %d, want 1", code)
		}
		out := stderr.String()
		if strings.Contains(out, "Error:") {
			t.Errorf("validation failure printed twice:\n%s", out)
		}
		if !strings.Contains(out, "The positional 1 (Positional argument 1) is not valid:") {
			t.Errorf("stderr = %q", out)
		}
	})

	t.Run("count error", func(t *testing.T) {
		c, _, stderr := newTestCLI(t, Group{"calc": calcCommand(nil)})
		if code := c.Main(t.Context(), []string{"calc", "1"}); code != 1 {
			t.Errorf("Main() = %d, want 1", code)
		}
		if got, want := stderr.String(), "expected 2 positional arguments, but got 1\n"; got != want {
			t.Errorf("stderr = %q, want %q", got, want)
		}
	})
}

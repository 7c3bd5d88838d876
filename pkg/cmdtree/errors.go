// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdtree

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors. Typed errors below match them through errors.Is.
var (
	// ErrInvalidSchema is returned when a flag or positional has no validator.
	ErrInvalidSchema = errors.New("invalid schema: a validator is required")

	// ErrInvalidPositionalCount is matched by *PositionalCountError.
	ErrInvalidPositionalCount = errors.New("invalid number of positional arguments provided")

	// ErrInvalidFlag is matched by *InvalidFlagError.
	ErrInvalidFlag = errors.New("invalid flag provided")

	// ErrNoCommandFound is returned when no command matches the arguments.
	ErrNoCommandFound = errors.New("no command found")

	// ErrNoRunFunction is returned when a resolved command has no handler.
	ErrNoRunFunction = errors.New("no run function defined for this command")

	// ErrValidation is matched by *ValidationError.
	ErrValidation = errors.New("validation failed")
)

// FieldKind tells flags and positionals apart in validation errors.
type FieldKind string

const (
	KindFlag       FieldKind = "flag"
	KindPositional FieldKind = "positional"
)

// PositionalCountError is returned when the number of positionals differs
// from the number declared by the command.
type PositionalCountError struct {
	Expected int
	Got      int
}

func (e *PositionalCountError) Error() string {
	return fmt.Sprintf("expected %d positional arguments, but got %d", e.Expected, e.Got)
}

func (e *PositionalCountError) Is(target error) bool { return target == ErrInvalidPositionalCount }

// InvalidFlagError lists every unrecognized flag token of one invocation.
type InvalidFlagError struct {
	Flags []string
}

func (e *InvalidFlagError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidFlag, strings.Join(e.Flags, ", "))
}

func (e *InvalidFlagError) Is(target error) bool { return target == ErrInvalidFlag }

// RepeatedFlagError lists scalar flags given more than once. It is only
// returned when strict repeats are enabled.
type RepeatedFlagError struct {
	Flags []string
}

func (e *RepeatedFlagError) Error() string {
	names := make([]string, len(e.Flags))
	for i, f := range e.Flags {
		names[i] = "--" + f
	}
	return fmt.Sprintf("flag given more than once: %s", strings.Join(names, ", "))
}

// UnknownCommandError is returned when the first command word matches no
// command. Suggestions holds close matches, if any.
type UnknownCommandError struct {
	Word        string
	Suggestions []string
}

func (e *UnknownCommandError) Error() string {
	if e.Word == "" {
		return ErrNoCommandFound.Error()
	}
	msg := fmt.Sprintf("%v: %s", ErrNoCommandFound, e.Word)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *UnknownCommandError) Is(target error) bool { return target == ErrNoCommandFound }

// FieldError describes one flag or positional that failed validation.
// Key is set for flags, Index (zero-based) for positionals.
type FieldError struct {
	Kind        FieldKind
	Key         string
	Index       int
	Description string
	Issues      []Issue
}

func (e *FieldError) Error() string {
	return FormatFieldError(e)
}

// Info returns the formatter view of the error.
func (e *FieldError) Info() ErrorInfo {
	return ErrorInfo{Kind: e.Kind, Key: e.Key, Index: e.Index, Description: e.Description}
}

// ValidationError aggregates every field that failed validation in one
// dispatch. Fields are ordered flags first (by name), then positionals.
type ValidationError struct {
	Fields []*FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Error()
	}
	return strings.Join(parts, "\n")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Unwrap exposes the individual field errors to errors.As.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Fields))
	for i, f := range e.Fields {
		errs[i] = f
	}
	return errs
}

// ErrorInfo is passed to an ErrorFormatter once per failing field.
type ErrorInfo struct {
	Kind        FieldKind
	Key         string
	Index       int
	Description string
}

// KeyOrIndex returns the flag name, or the positional index as a string.
func (i ErrorInfo) KeyOrIndex() string {
	if i.Kind == KindFlag {
		return i.Key
	}
	return strconv.Itoa(i.Index)
}

// ErrorFormatter replaces the default error output.
type ErrorFormatter func(ErrorInfo)

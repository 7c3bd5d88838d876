// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdtree

import (
	"context"
	"reflect"
)

// Issue is a single validation problem. Path locates the problem inside the
// validated value; it is empty for problems with the value as a whole.
type Issue struct {
	Message string
	Path    []string
}

// Result is the outcome of a validation. A result with no issues is a
// success and Value holds the parsed value.
type Result struct {
	Value  any
	Issues []Issue
}

// OK reports whether the result is a success.
func (r Result) OK() bool { return len(r.Issues) == 0 }

// Valid returns a successful Result.
func Valid(v any) Result { return Result{Value: v} }

// Invalid returns a failed Result carrying a single top-level issue.
func Invalid(msg string) Result {
	return Result{Issues: []Issue{{Message: msg}}}
}

// Validator turns a raw value into a parsed value or a list of issues.
// Validate may block, for example on I/O; the engine calls validators of
// independent fields concurrently and waits for all of them.
type Validator interface {
	Validate(ctx context.Context, value any) Result
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(ctx context.Context, value any) Result

func (f ValidatorFunc) Validate(ctx context.Context, value any) Result {
	return f(ctx, value)
}

// AsSequence returns v as a []any when it is a slice or an array of any
// element type, such as the []string a programmatic caller may pass.
func AsSequence(v any) ([]any, bool) {
	if seq, ok := v.([]any); ok {
		return seq, true
	}
	rv := reflect.ValueOf(v)
	if k := rv.Kind(); k != reflect.Slice && k != reflect.Array {
		return nil, false
	}
	seq := make([]any, rv.Len())
	for i := range seq {
		seq[i] = rv.Index(i).Interface()
	}
	return seq, true
}

// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdtree

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"
)

type fieldResult struct {
	value  any
	issues []Issue
}

// validateInput runs every validator of r against the raw input and
// returns the parsed input. All fields are validated before any error is
// returned; the positional count is checked first and alone.
func (o *options) validateInput(ctx context.Context, r *Runnable, flags map[string]any, positionals []any) (Input, error) {
	if r.Positionals != nil && len(positionals) != len(r.Positionals) {
		err := &PositionalCountError{Expected: len(r.Positionals), Got: len(positionals)}
		o.report(ErrorInfo{Kind: KindPositional, Index: len(positionals), Description: err.Error()}, err.Error())
		return Input{}, err
	}

	names := r.Flags.Names()
	flagResults := make([]fieldResult, len(names))
	posResults := make([]fieldResult, len(r.Positionals))

	// Goroutines record failures in their slot and never return an error,
	// so Wait only returns once every field is done.
	var g errgroup.Group
	for i, name := range names {
		raw, present := flags[name]
		g.Go(func() error {
			flagResults[i] = validateFlag(ctx, r.Flags, name, raw, present)
			return nil
		})
	}
	for i, p := range r.Positionals {
		g.Go(func() error {
			posResults[i] = runValidator(ctx, p.Validator, positionals[i])
			return nil
		})
	}
	g.Wait()

	var failed []*FieldError
	in := Input{
		Flags:       make(map[string]any, len(names)),
		Positionals: make([]any, len(r.Positionals)),
	}
	for i, name := range names {
		res := flagResults[i]
		if len(res.issues) > 0 {
			failed = append(failed, &FieldError{
				Kind:        KindFlag,
				Key:         name,
				Description: r.Flags.Description(name),
				Issues:      res.issues,
			})
			continue
		}
		in.Flags[name] = res.value
	}
	for i, p := range r.Positionals {
		res := posResults[i]
		if len(res.issues) > 0 {
			failed = append(failed, &FieldError{
				Kind:        KindPositional,
				Index:       i,
				Description: p.Description,
				Issues:      res.issues,
			})
			continue
		}
		in.Positionals[i] = res.value
	}

	if len(failed) > 0 {
		for _, fe := range failed {
			o.report(fe.Info(), FormatFieldError(fe))
		}
		o.logf("cmdtree: %d field(s) failed validation", len(failed))
		return Input{}, &ValidationError{Fields: failed}
	}
	return in, nil
}

// validateFlag validates one declared flag. A flag marked multiple always
// yields a sequence; its elements are validated concurrently and element
// issues are prefixed with the element index.
func validateFlag(ctx context.Context, fs *FlagSet, name string, raw any, present bool) fieldResult {
	v, _ := fs.Validator(name)
	if !fs.Multiple(name) {
		return runValidator(ctx, v, raw)
	}
	if !present {
		res := runValidator(ctx, v, nil)
		if len(res.issues) > 0 {
			return res
		}
		return fieldResult{value: []any{}}
	}

	seq, ok := AsSequence(raw)
	if !ok {
		seq = []any{raw}
	}
	results := make([]fieldResult, len(seq))
	var g errgroup.Group
	for i, elem := range seq {
		g.Go(func() error {
			results[i] = runValidator(ctx, v, elem)
			return nil
		})
	}
	g.Wait()

	out := fieldResult{value: make([]any, len(seq))}
	for i, res := range results {
		for _, is := range res.issues {
			is.Path = append([]string{strconv.Itoa(i)}, is.Path...)
			out.issues = append(out.issues, is)
		}
		out.value.([]any)[i] = res.value
	}
	if len(out.issues) > 0 {
		out.value = nil
	}
	return out
}

func runValidator(ctx context.Context, v Validator, raw any) fieldResult {
	res := v.Validate(ctx, raw)
	if len(res.Issues) > 0 {
		return fieldResult{issues: res.Issues}
	}
	return fieldResult{value: res.Value}
}

// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package schema provides validators for cmdtree flags and positionals.
//
// Raw values arrive in the shapes produced by the cmdtree tokenizer:
// string, float64, bool, nil, []any and map[string]any.
package schema

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/yeetrun/clivex/pkg/cmdtree"
)

type validatorFunc = cmdtree.ValidatorFunc

func expected(want string, got any) cmdtree.Result {
	return cmdtree.Invalid(fmt.Sprintf("Expected %s, received %s", want, typeName(got)))
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "undefined"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, uint64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// String accepts strings. Numbers and booleans are accepted in their
// textual form, since the tokenizer parses "42" and "true" eagerly.
func String() cmdtree.Validator {
	return validatorFunc(func(_ context.Context, v any) cmdtree.Result {
		switch v := v.(type) {
		case string:
			return cmdtree.Valid(v)
		case float64:
			return cmdtree.Valid(strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			return cmdtree.Valid(strconv.FormatBool(v))
		}
		return expected("string", v)
	})
}

// Number accepts numbers and numeric strings and yields a float64.
func Number() cmdtree.Validator {
	return validatorFunc(func(_ context.Context, v any) cmdtree.Result {
		if f, ok := toFloat(v); ok {
			return cmdtree.Valid(f)
		}
		return expected("number", v)
	})
}

// Int accepts integral numbers and yields an int.
func Int() cmdtree.Validator {
	return validatorFunc(func(_ context.Context, v any) cmdtree.Result {
		f, ok := toFloat(v)
		if !ok {
			return expected("integer", v)
		}
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return cmdtree.Invalid(fmt.Sprintf("Expected integer, received %v", f))
		}
		return cmdtree.Valid(int(f))
	})
}

func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// Bool accepts booleans and the strings "true" and "false".
func Bool() cmdtree.Validator {
	return validatorFunc(func(_ context.Context, v any) cmdtree.Result {
		switch v := v.(type) {
		case bool:
			return cmdtree.Valid(v)
		case string:
			if b, err := strconv.ParseBool(v); err == nil {
				return cmdtree.Valid(b)
			}
		}
		return expected("boolean", v)
	})
}

// Enum accepts one of the given strings.
func Enum(values ...string) cmdtree.Validator {
	allowed := slices.Clone(values)
	return validatorFunc(func(_ context.Context, v any) cmdtree.Result {
		s, ok := v.(string)
		if ok && slices.Contains(allowed, s) {
			return cmdtree.Valid(s)
		}
		quoted := make([]string, len(allowed))
		for i, a := range allowed {
			quoted[i] = strconv.Quote(a)
		}
		return cmdtree.Invalid(fmt.Sprintf("Invalid option: expected one of %s", strings.Join(quoted, "|")))
	})
}

// Literal accepts exactly want.
func Literal(want any) cmdtree.Validator {
	return validatorFunc(func(_ context.Context, v any) cmdtree.Result {
		if v == want {
			return cmdtree.Valid(v)
		}
		return cmdtree.Invalid(fmt.Sprintf("Invalid input: expected %#v", want))
	})
}

// Optional accepts a missing value (nil) and otherwise defers to inner.
func Optional(inner cmdtree.Validator) cmdtree.Validator {
	return validatorFunc(func(ctx context.Context, v any) cmdtree.Result {
		if v == nil {
			return cmdtree.Valid(nil)
		}
		return inner.Validate(ctx, v)
	})
}

// Default substitutes def for a missing value before calling inner.
func Default(inner cmdtree.Validator, def any) cmdtree.Validator {
	return validatorFunc(func(ctx context.Context, v any) cmdtree.Result {
		if v == nil {
			v = def
		}
		return inner.Validate(ctx, v)
	})
}

// List accepts a sequence whose elements all satisfy elem. A single value
// is treated as a one-element sequence.
func List(elem cmdtree.Validator) cmdtree.Validator {
	return validatorFunc(func(ctx context.Context, v any) cmdtree.Result {
		if v == nil {
			return expected("array", v)
		}
		seq, ok := cmdtree.AsSequence(v)
		if !ok {
			seq = []any{v}
		}
		out := make([]any, len(seq))
		var issues []cmdtree.Issue
		for i, e := range seq {
			res := elem.Validate(ctx, e)
			for _, is := range res.Issues {
				is.Path = append([]string{strconv.Itoa(i)}, is.Path...)
				issues = append(issues, is)
			}
			out[i] = res.Value
		}
		if len(issues) > 0 {
			return cmdtree.Result{Issues: issues}
		}
		return cmdtree.Valid(out)
	})
}

// Object accepts a map and validates each listed key. Keys that are not
// listed are dropped.
func Object(fields map[string]cmdtree.Validator) cmdtree.Validator {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return validatorFunc(func(ctx context.Context, v any) cmdtree.Result {
		obj, ok := v.(map[string]any)
		if !ok {
			return expected("object", v)
		}
		out := make(map[string]any, len(keys))
		var issues []cmdtree.Issue
		for _, k := range keys {
			res := fields[k].Validate(ctx, obj[k])
			for _, is := range res.Issues {
				is.Path = append([]string{k}, is.Path...)
				issues = append(issues, is)
			}
			if res.OK() && res.Value != nil {
				out[k] = res.Value
			}
		}
		if len(issues) > 0 {
			return cmdtree.Result{Issues: issues}
		}
		return cmdtree.Valid(out)
	})
}

// Duration accepts strings understood by time.ParseDuration.
func Duration() cmdtree.Validator {
	return validatorFunc(func(_ context.Context, v any) cmdtree.Result {
		s, ok := v.(string)
		if !ok {
			return expected("duration", v)
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return cmdtree.Invalid(fmt.Sprintf("Invalid duration %q", s))
		}
		return cmdtree.Valid(d)
	})
}

// SemVer accepts semantic versions and yields a *semver.Version.
// A non-empty constraint such as ">= 1.2" must also be satisfied.
func SemVer(constraint string) (cmdtree.Validator, error) {
	var c *semver.Constraints
	if constraint != "" {
		var err error
		if c, err = semver.NewConstraint(constraint); err != nil {
			return nil, fmt.Errorf("invalid constraint %q: %w", constraint, err)
		}
	}
	return validatorFunc(func(_ context.Context, v any) cmdtree.Result {
		var s string
		switch v := v.(type) {
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return expected("version", v)
		}
		ver, err := semver.NewVersion(s)
		if err != nil {
			return cmdtree.Invalid(fmt.Sprintf("Invalid version %q", s))
		}
		if c != nil && !c.Check(ver) {
			return cmdtree.Invalid(fmt.Sprintf("Version %s does not satisfy %s", ver, c))
		}
		return cmdtree.Valid(ver)
	}), nil
}

// UUID accepts UUID strings and yields a uuid.UUID.
func UUID() cmdtree.Validator {
	return validatorFunc(func(_ context.Context, v any) cmdtree.Result {
		s, ok := v.(string)
		if !ok {
			return expected("uuid", v)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return cmdtree.Invalid(fmt.Sprintf("Invalid UUID %q", s))
		}
		return cmdtree.Valid(id)
	})
}

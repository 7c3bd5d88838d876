// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdtree

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"tailscale.com/util/must"
)

// anyV accepts every value unchanged.
var anyV = ValidatorFunc(func(_ context.Context, v any) Result { return Valid(v) })

var numberV = ValidatorFunc(func(_ context.Context, v any) Result {
	if f, ok := v.(float64); ok {
		return Valid(f)
	}
	return Invalid(fmt.Sprintf("Expected number, received %T", v))
})

var stringV = ValidatorFunc(func(_ context.Context, v any) Result {
	if s, ok := v.(string); ok {
		return Valid(s)
	}
	return Invalid(fmt.Sprintf("Expected string, received %T", v))
})

var optionalBoolV = ValidatorFunc(func(_ context.Context, v any) Result {
	switch v := v.(type) {
	case nil:
		return Valid(false)
	case bool:
		return Valid(v)
	}
	return Invalid("Expected boolean")
})

func enumV(values ...string) Validator {
	return ValidatorFunc(func(_ context.Context, v any) Result {
		if s, ok := v.(string); ok && slices.Contains(values, s) {
			return Valid(s)
		}
		return Invalid("Invalid option")
	})
}

var errDivideByZero = errors.New("division by zero")

// calcCommand is the calculator command: an operation flag and two numbers.
// Every validated input it receives is appended to *seen.
func calcCommand(seen *[]Input) *Runnable {
	return &Runnable{
		Flags: must.Get(NewFlagSet(
			Flag{Name: "operation", Short: "o", Validator: enumV("add", "subtract", "multiply", "divide"), Description: "Operation to apply"},
			Flag{Name: "verbose", Short: "v", Validator: optionalBoolV},
		)),
		Positionals: []Positional{
			{Validator: numberV, Description: "Positional argument 1"},
			{Validator: numberV, Description: "Positional argument 2"},
		},
		Run: func(ctx context.Context, in Input) (any, error) {
			if seen != nil {
				*seen = append(*seen, in)
			}
			a, b := in.Positionals[0].(float64), in.Positionals[1].(float64)
			switch in.Flags["operation"] {
			case "add":
				return a + b, nil
			case "subtract":
				return a - b, nil
			case "multiply":
				return a * b, nil
			default:
				if b == 0 {
					return nil, errDivideByZero
				}
				return a / b, nil
			}
		},
	}
}

func okHandler(name string) Handler {
	return func(ctx context.Context, in Input) (any, error) {
		return name, nil
	}
}

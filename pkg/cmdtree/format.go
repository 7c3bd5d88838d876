// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdtree

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var isTerminalFn = term.IsTerminal

// FormatFieldError renders a field error for humans. Issues are listed by
// ascending path length so top-level problems come first.
func FormatFieldError(e *FieldError) string {
	var b strings.Builder
	b.WriteString(fieldLabel(e))
	for _, is := range sortIssues(e.Issues) {
		fmt.Fprintf(&b, "\n    → %s: %s", issuePath(is), is.Message)
	}
	return b.String()
}

func fieldLabel(e *FieldError) string {
	desc := ""
	if e.Description != "" {
		desc = " (" + e.Description + ")"
	}
	if e.Kind == KindFlag {
		return fmt.Sprintf("The flag --%s%s is not valid:", e.Key, desc)
	}
	return fmt.Sprintf("The positional %d%s is not valid:", e.Index+1, desc)
}

func sortIssues(issues []Issue) []Issue {
	out := slices.Clone(issues)
	slices.SortStableFunc(out, func(a, b Issue) int {
		return len(a.Path) - len(b.Path)
	})
	return out
}

func issuePath(is Issue) string {
	if len(is.Path) == 0 {
		return "(value)"
	}
	return strings.Join(is.Path, ".")
}

// report hands a failure to the configured ErrorFormatter, or writes msg to
// the error stream when there is none.
func (o *options) report(info ErrorInfo, msg string) {
	if o.formatter != nil {
		o.formatter(info)
		return
	}
	errColor := newColor(o.stderr, color.FgRed)
	fmt.Fprintln(o.stderr, errColor.Sprint(msg))
}

// newColor returns c with colour enabled only when w is a terminal.
func newColor(w io.Writer, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if useColor(w) {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func useColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if t := os.Getenv("TERM"); t == "" || t == "dumb" {
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	return ok && isTerminalFn(int(f.Fd()))
}

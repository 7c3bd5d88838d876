// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdtree

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Reserved command words added by WithHelp and WithVersion.
const (
	helpCommand    = "help"
	versionCommand = "version"
)

// CommandInfo contains metadata about the program for help generation.
type CommandInfo struct {
	Name        string
	Description string
	Examples    []string
}

// GenerateHelp renders usage for every command in root.
func GenerateHelp(info CommandInfo, root Group) string {
	var b strings.Builder

	b.WriteString(info.Name)
	if info.Description != "" {
		b.WriteString(" - ")
		b.WriteString(info.Description)
	}
	b.WriteString("\n\n")

	b.WriteString("USAGE:\n")
	fmt.Fprintf(&b, "    %s COMMAND [ARGS...] [OPTIONS]\n\n", info.Name)

	b.WriteString("COMMANDS:\n")
	writeCommands(&b, root, nil)
	b.WriteString("\n")

	if len(info.Examples) > 0 {
		b.WriteString("EXAMPLES:\n")
		for _, example := range info.Examples {
			fmt.Fprintf(&b, "    %s\n", example)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeCommands(b *strings.Builder, n Node, path []string) {
	for _, name := range childNames(n) {
		c, _ := child(n, name)
		p := append(path[:len(path):len(path)], name)
		if r, ok := c.(*Runnable); ok {
			writeCommand(b, r, p)
		}
		writeCommands(b, c, p)
	}
}

func writeCommand(b *strings.Builder, r *Runnable, path []string) {
	usage := joinPath(path)
	for _, p := range r.Positionals {
		usage += " <" + p.Description + ">"
	}
	if r.Description != "" {
		fmt.Fprintf(b, "    %-24s %s\n", usage, r.Description)
	} else {
		fmt.Fprintf(b, "    %s\n", usage)
	}
	for _, name := range r.Flags.Names() {
		var flagStr string
		if short := r.Flags.Short(name); short != "" {
			flagStr = fmt.Sprintf("        -%s, --%s", short, name)
		} else {
			flagStr = fmt.Sprintf("            --%s", name)
		}
		desc := r.Flags.Description(name)
		if r.Flags.Multiple(name) {
			desc = strings.TrimSpace(desc + " (repeatable)")
		}
		if desc != "" {
			fmt.Fprintf(b, "%-32s %s\n", flagStr, desc)
		} else {
			fmt.Fprintf(b, "%s\n", flagStr)
		}
	}
}

func (c *CLI) helpCommand(info CommandInfo) *Runnable {
	return &Runnable{
		Description: "Show this help message",
		Run: func(ctx context.Context, in Input) (any, error) {
			text := GenerateHelp(info, c.root)
			fmt.Fprint(c.opts.stdout, text)
			return text, nil
		},
	}
}

func (c *CLI) versionCommand(v *semver.Version) *Runnable {
	return &Runnable{
		Description: "Print the version",
		Run: func(ctx context.Context, in Input) (any, error) {
			fmt.Fprintln(c.opts.stdout, v.String())
			return v, nil
		},
	}
}

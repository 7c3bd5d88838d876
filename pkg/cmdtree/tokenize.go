// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdtree

import (
	"encoding/json"
	"slices"
	"strings"

	"tailscale.com/util/mak"
	"tailscale.com/util/set"
)

// argTerminator ends flag parsing; every later token is a raw positional.
const argTerminator = "--"

// Draft is the unvalidated result of tokenizing the arguments of a command.
type Draft struct {
	// Flags maps canonical flag names to raw values. Dotted names
	// (--db.host) produce nested maps.
	Flags map[string]any
	// Positionals holds the raw positional values in order.
	Positionals []any
	// Repeated lists scalar flags that were given more than once.
	Repeated []string
}

type tokenizer struct {
	fs      *FlagSet
	draft   *Draft
	seen    map[string]int
	negated set.Set[string]
	invalid []string
}

// Tokenize splits args into flags and positionals using the flag table fs.
// fs may be nil for a command without flags.
//
// Supported forms are --name value, --name=value, --name, --no-name,
// -x value, -x=value and clustered short flags (-xyz). Tokens not starting
// with "-" are positionals. Values are parsed as JSON literals when
// possible, then split on commas, and are otherwise kept as strings.
//
// Every unknown short alias is collected and reported in a single
// *InvalidFlagError, along with negations given a value (--no-name=x).
func Tokenize(args []string, fs *FlagSet) (*Draft, error) {
	t := &tokenizer{
		fs:      fs,
		draft:   &Draft{Flags: make(map[string]any), Positionals: []any{}},
		negated: make(set.Set[string]),
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == argTerminator {
			for _, rest := range args[i+1:] {
				t.draft.Positionals = append(t.draft.Positionals, rest)
			}
			break
		}

		if !isFlagToken(arg) {
			t.draft.Positionals = append(t.draft.Positionals, parseValue(arg))
			continue
		}

		if name, ok := strings.CutPrefix(arg, "--no-"); ok && name != "" {
			if strings.Contains(name, "=") {
				t.reject(arg)
				continue
			}
			t.negate(toCamelCase(name))
			continue
		}

		long := strings.HasPrefix(arg, "--")
		name := strings.TrimPrefix(arg, "-")
		if long {
			name = name[1:]
		}

		if name, raw, ok := strings.Cut(name, "="); ok {
			if raw == "" {
				t.set(name, long, true)
			} else {
				t.set(name, long, parseValue(raw))
			}
			continue
		}

		if i+1 >= len(args) || args[i+1] == "" || isFlagToken(args[i+1]) {
			t.set(name, long, true)
			continue
		}

		t.set(name, long, parseValue(args[i+1]))
		i++
	}

	if len(t.invalid) > 0 {
		return nil, &InvalidFlagError{Flags: t.invalid}
	}
	return t.draft, nil
}

func isFlagToken(arg string) bool {
	return strings.HasPrefix(arg, "-")
}

// set stores value for a flag token name. Short names are expanded through
// the alias table, one character at a time.
func (t *tokenizer) set(name string, long bool, value any) {
	if long {
		if name == "" {
			t.reject("--")
			return
		}
		t.add(toCamelCase(name), value)
		return
	}
	if name == "" {
		t.reject("-")
		return
	}
	for _, r := range name {
		short := string(r)
		key, ok := t.fs.Long(short)
		if !ok {
			t.reject("-" + short)
			continue
		}
		t.add(key, value)
	}
}

// reject records an unknown flag token once.
func (t *tokenizer) reject(token string) {
	if !slices.Contains(t.invalid, token) {
		t.invalid = append(t.invalid, token)
	}
}

// add records one occurrence of key. A second occurrence turns the stored
// value into a flat sequence; later ones extend it. Comma lists are
// spliced in, so --tag a,b --tag c yields [a b c].
func (t *tokenizer) add(key string, value any) {
	if t.negated.Contains(key) {
		return
	}
	path := strings.Split(key, ".")
	if n := t.seen[key]; n > 0 {
		if cur, ok := getPath(t.draft.Flags, path); ok {
			value = appendFlat(appendFlat(nil, cur), value)
		}
		if n == 1 && !t.fs.Multiple(key) {
			t.draft.Repeated = append(t.draft.Repeated, key)
		}
	}
	mak.Set(&t.seen, key, t.seen[key]+1)
	setPath(t.draft.Flags, path, value)
}

func appendFlat(dst []any, v any) []any {
	if seq, ok := v.([]any); ok {
		return append(dst, seq...)
	}
	return append(dst, v)
}

// negate pins key to false. Earlier and later occurrences are discarded.
func (t *tokenizer) negate(key string) {
	t.negated.Add(key)
	mak.Set(&t.seen, key, 1)
	setPath(t.draft.Flags, strings.Split(key, "."), false)
}

// toCamelCase converts kebab-case to camelCase: max-retries -> maxRetries.
func toCamelCase(s string) string {
	if !strings.Contains(s, "-") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '-' && i+1 < len(s) && s[i+1] >= 'a' && s[i+1] <= 'z' {
			b.WriteByte(s[i+1] - 'a' + 'A')
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// parseValue interprets a raw token: JSON literal first, then a
// comma-separated list of values, then the string itself.
func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = parseValue(strings.TrimSpace(p))
		}
		return out
	}
	return s
}

// setPath assigns value at path, replacing non-map intermediates with maps.
func setPath(m map[string]any, path []string, value any) {
	for _, key := range path[:len(path)-1] {
		next, ok := m[key].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[key] = next
		}
		m = next
	}
	m[path[len(path)-1]] = value
}

func getPath(m map[string]any, path []string) (any, bool) {
	var cur any = m
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = obj[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

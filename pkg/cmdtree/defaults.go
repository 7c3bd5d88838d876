// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdtree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
	"tailscale.com/util/mak"
)

// Defaults holds flag values per command. Keys are command paths joined by
// spaces ("project new folder"); inner keys are flag names.
type Defaults map[string]map[string]any

// LoadDefaults reads a defaults file. The format follows the extension:
// .toml, .yaml or .yml.
//
//	# clivex.toml
//	[calc]
//	operation = "add"
//
//	["project new folder"]
//	file = "Hello"
func LoadDefaults(path string) (Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw := make(map[string]map[string]any)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported defaults file %s: want .toml, .yaml or .yml", path)
	}

	var d Defaults
	for cmd, flags := range raw {
		key := joinPath(strings.Fields(cmd))
		for name, v := range flags {
			inner := d[key]
			mak.Set(&inner, toCamelCase(name), normalizeValue(v))
			mak.Set(&d, key, inner)
		}
	}
	return d, nil
}

// apply fills declared flags missing from draft with defaults for path.
func (d Defaults) apply(path []string, fs *FlagSet, draft map[string]any) {
	values := d[joinPath(path)]
	if len(values) == 0 {
		return
	}
	for _, name := range fs.Names() {
		if _, given := draft[name]; given {
			continue
		}
		if v, ok := values[name]; ok {
			draft[name] = v
		}
	}
}

// normalizeValue converts decoded config values to the shapes the tokenizer
// produces: float64 numbers, []any sequences and map[string]any objects.
func normalizeValue(v any) any {
	switch v := v.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = normalizeValue(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = normalizeValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}

// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdtree

import (
	"slices"
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// maxSuggestionDistance is the largest edit distance offered as a
// "did you mean" suggestion for an unknown command word.
const maxSuggestionDistance = 2

// Resolution describes the command matched by a sequence of command words.
type Resolution struct {
	Command *Runnable
	// Path holds the command words, e.g. ["project", "new", "folder"].
	Path []string
	// Indexes holds the positions in the original args consumed as the
	// command path.
	Indexes []int
}

// positionalTokens returns the args that do not start with "-", together
// with their indexes in args. Nothing after "--" is a command word.
func positionalTokens(args []string) (tokens []string, indexes []int) {
	for i, arg := range args {
		if arg == argTerminator {
			break
		}
		if isFlagToken(arg) {
			continue
		}
		tokens = append(tokens, arg)
		indexes = append(indexes, i)
	}
	return tokens, indexes
}

type walkResult struct {
	history []*Resolution
	// stuck is the node where the walk stopped and word the token that
	// failed to match there. word is empty when tokens ran out.
	stuck Node
	word  string
}

// walk feeds tokens as successive keys into the tree. Every Runnable passed
// on the way is recorded. The first key that does not match ends the walk;
// there is no search across other branches.
//
// A Runnable continues the walk through its subcommands, so multi-level
// paths where several words are runnable on their own (tool project new
// folder) resolve in a single pass.
func walk(root Node, tokens []string, indexes []int) walkResult {
	res := walkResult{stuck: root}
	cur := root
	for i, key := range tokens {
		next, ok := child(cur, key)
		if !ok {
			res.stuck, res.word = cur, key
			return res
		}
		cur = next
		res.stuck = cur
		if r, ok := next.(*Runnable); ok {
			res.history = append(res.history, &Resolution{
				Command: r,
				Path:    slices.Clone(tokens[:i+1]),
				Indexes: slices.Clone(indexes[:i+1]),
			})
		}
	}
	return res
}

// Resolve returns the deepest Runnable reached by tokens, or nil when the
// tokens reach none. indexes maps each token to its position in the
// original args and must be as long as tokens. Deeper matches win over
// shallower ones on the same path.
func Resolve(root Node, tokens []string, indexes []int) *Resolution {
	h := walk(root, tokens, indexes).history
	if len(h) == 0 {
		return nil
	}
	return h[len(h)-1]
}

// unknownCommand builds the error for tokens that reach no Runnable.
func unknownCommand(root Node, tokens []string, indexes []int) error {
	w := walk(root, tokens, indexes)
	return &UnknownCommandError{Word: w.word, Suggestions: suggest(w.stuck, w.word)}
}

// suggest returns the command words under n closest to word.
func suggest(n Node, word string) []string {
	if word == "" {
		return nil
	}
	type cand struct {
		name string
		dist int
	}
	var cands []cand
	for _, name := range childNames(n) {
		if d := levenshtein.Distance(word, name, nil); d <= maxSuggestionDistance {
			cands = append(cands, cand{name, d})
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].dist != cands[j].dist {
			return cands[i].dist < cands[j].dist
		}
		return cands[i].name < cands[j].name
	})
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.name)
	}
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

// childNames returns the sorted command words directly below n.
func childNames(n Node) []string {
	var g Group
	switch n := n.(type) {
	case Group:
		g = n
	case *Runnable:
		g = n.Subcommands
	}
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func joinPath(path []string) string {
	return strings.Join(path, " ")
}

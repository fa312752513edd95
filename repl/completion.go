package repl

import (
	"sort"
	"strings"

	"github.com/chzyer/readline"
)

// Completer completes command names, native type names after "as", byte
// options after "bytes"/"frombytes" and formats after "encode"/"decode".
type Completer struct {
	eval *Evaluator
}

// NewCompleter creates a completer over eval's commands
func NewCompleter(eval *Evaluator) *Completer {
	return &Completer{eval: eval}
}

// Do implements readline.AutoCompleter
func (c *Completer) Do(line []rune, pos int) (newLine [][]rune, length int) {
	text := string(line[:pos])
	words := strings.Fields(text)
	prefix := ""
	if len(words) > 0 && !strings.HasSuffix(text, " ") {
		prefix = words[len(words)-1]
		words = words[:len(words)-1]
	}

	var candidates []string
	if len(words) == 0 {
		candidates = append(c.eval.Commands(), ":help", ":quit", ":limits", ":profile")
	} else {
		candidates = c.argumentCandidates(words)
	}

	return suffixes(candidates, prefix), len([]rune(prefix))
}

func (c *Completer) argumentCandidates(words []string) []string {
	switch strings.ToLower(words[0]) {
	case "as":
		if len(words) > 1 {
			return nil
		}
		names := make([]string, 0, len(c.eval.Table().Widths()))
		for _, w := range c.eval.Table().Widths() {
			// multi-word names complete through their single-word aliases
			if !strings.Contains(w.Name, " ") {
				names = append(names, w.Name)
			}
		}
		return append(names, "uint", "ulong", "longlong", "ulonglong")
	case "bytes", "frombytes":
		return []string{"big", "little", "native", "signed", "unsigned"}
	case "encode", "decode":
		if len(words) > 1 {
			return nil
		}
		return c.eval.registry.ListSerializers()
	case "overflow":
		return []string{"long", "longlong"}
	default:
		return nil
	}
}

// suffixes returns what remains of each candidate after prefix, the shape
// readline expects.
func suffixes(candidates []string, prefix string) [][]rune {
	sort.Strings(candidates)
	var out [][]rune
	seen := make(map[string]bool)
	for _, cand := range candidates {
		if seen[cand] || !strings.HasPrefix(cand, prefix) {
			continue
		}
		seen[cand] = true
		out = append(out, []rune(cand[len(prefix):]+" "))
	}
	return out
}

var _ readline.AutoCompleter = (*Completer)(nil)

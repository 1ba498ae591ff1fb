package engine

import (
	"fmt"
	"sort"
	"strings"
)

// Path is the ordered sequence the explorer emits (§4.7, §3): every
// element except the last is a Condition; the last is the terminal
// Facts map that satisfied the goal.
type Path []any

// Facts returns the path's terminal fact map.
func (p Path) Facts() Facts {
	if len(p) == 0 {
		return nil
	}
	f, _ := p[len(p)-1].(Facts)
	return f
}

// opSymbols substitutes version/scalar operators for their mathematical
// symbols when rendering a path, the same cosmetic step the Python audit
// CLI's final print pass performed before this repository existed.
var opSymbols = map[string]string{
	">=~": "≥", "<=~": "≤", ">~": ">", "<~": "<",
	">=": "≥", "<=": "≤", "==": "=", "===": "=", "!=": "≠",
}

// String renders the path as a human-readable reasoning chain: each
// condition on its own line, followed by the terminal facts.
func (p Path) String() string {
	var sb strings.Builder
	for i, el := range p {
		if i == len(p)-1 {
			if f, ok := el.(Facts); ok {
				fmt.Fprintf(&sb, "=> %s\n", renderFacts(f))
			}
			continue
		}
		fmt.Fprintf(&sb, "%s\n", renderCondition(el))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderFacts(f Facts) string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, f[k]))
	}
	return strings.Join(parts, ", ")
}

func renderCondition(c any) string {
	seq, ok := c.([]any)
	if !ok {
		return fmt.Sprintf("%v", c)
	}
	parts := make([]string, 0, len(seq))
	for i, el := range seq {
		if i%2 == 1 {
			// operator position
			name, _ := el.(string)
			if sym, ok := opSymbols[name]; ok {
				parts = append(parts, sym)
			} else {
				parts = append(parts, name)
			}
			continue
		}
		parts = append(parts, renderCondition(el))
	}
	return "(" + strings.Join(parts, " ") + ")"
}

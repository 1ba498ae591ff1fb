package engine

import (
	"fmt"
	"iter"
	"sort"
	"strings"
)

// Explore yields every path from facts to a fact map satisfying goal
// (§4.7), memoized by (facts, goal). Cyclic re-entry into a key whose
// computation is already in progress yields nothing further for that
// recursive call, which is what prevents infinite recursion when
// synthesized rules loop through an identical fact map.
func (e *Engine) Explore(facts Facts, goal Facts) iter.Seq[Path] {
	return func(yield func(Path) bool) {
		for _, p := range e.explore(facts, goal) {
			if !yield(p) {
				return
			}
		}
	}
}

func (e *Engine) explore(facts, goal Facts) []Path {
	key := cacheKey(facts, goal)

	e.mu.Lock()
	if cached, ok := e.cache[key]; ok {
		e.mu.Unlock()
		return cached
	}
	if e.inProgress[key] {
		e.mu.Unlock()
		return nil
	}
	e.inProgress[key] = true
	e.mu.Unlock()

	var paths []Path
	if facts.Satisfies(goal) {
		paths = append(paths, Path{facts})
	} else {
		for rule := range e.Matching(facts) {
			for _, sub := range e.explore(rule.Consequent, goal) {
				extended := make(Path, 0, len(sub)+1)
				extended = append(extended, rule.Condition)
				extended = append(extended, sub...)
				paths = append(paths, extended)
			}
		}
	}

	e.mu.Lock()
	delete(e.inProgress, key)
	e.cache[key] = paths
	e.mu.Unlock()

	return paths
}

// cacheKey derives a stable string key from the sorted items of facts
// and goal (§4.7 step 1).
func cacheKey(facts, goal Facts) string {
	var sb strings.Builder
	writeSorted(&sb, facts)
	sb.WriteString("||")
	writeSorted(&sb, goal)
	return sb.String()
}

func writeSorted(sb *strings.Builder, f Facts) {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(sb, "%s=%v;", k, f[k])
	}
}

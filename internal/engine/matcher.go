package engine

import (
	"iter"
	"sort"
	"sync"
)

// Engine ties a Store to the mutable, request-scoped state the explorer
// needs: the memoized path cache and its in-progress set (§4.7). Create
// one with New and reuse it across queries; call Reset to drop the
// cache.
type Engine struct {
	store *Store
	mu    sync.Mutex
	cache map[string][]Path
	// inProgress marks cache keys currently being computed, so a cyclic
	// re-entry (synthesized rules looping through an identical fact map)
	// returns no additional paths instead of recursing forever (§4.7).
	inProgress map[string]bool
}

// New returns an Engine backed by store. store is never mutated.
func New(store *Store) *Engine {
	return &Engine{
		store:      store,
		cache:      map[string][]Path{},
		inProgress: map[string]bool{},
	}
}

// Reset drops the path cache (§5: "the core contract does not require
// automatic eviction" but does require an explicit Reset).
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = map[string][]Path{}
	e.inProgress = map[string]bool{}
}

// Matching yields, in order, every rule whose condition currently holds
// against facts (§4.6): static rules first (Phase A), then synthesized
// dependency rules (Phase B).
func (e *Engine) Matching(facts Facts) iter.Seq[Rule] {
	return func(yield func(Rule) bool) {
		for _, r := range e.store.Rules {
			if Evaluate(r.Condition, facts) {
				if !yield(r) {
					return
				}
			}
		}
		for _, rule := range e.synthesize(facts) {
			if !yield(rule) {
				return
			}
		}
	}
}

// synthesize implements §4.6 Phase B: treat every (fact_key, fact_value)
// pair in facts as a candidate (package name, installed version), look
// up its dependency list in the packages table, and for every known
// version of every dependency that satisfies all of that dependency's
// constraints, yield a rule whose condition is "fact_key == fact_value"
// and whose consequent introduces {dep_name: v}.
//
// Iteration order over facts is made deterministic (sorted by key) so
// Matching's output is reproducible across calls, per §5's ordering
// guarantee; the reference semantics only require *some* fixed order.
func (e *Engine) synthesize(facts Facts) []Rule {
	keys := make([]string, 0, len(facts))
	for k := range facts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []Rule
	for _, key := range keys {
		valueAny := facts[key]
		value, ok := valueAny.(string)
		if !ok {
			continue
		}
		deps := e.store.Packages.Dependencies(key, value)
		if deps == nil {
			continue
		}

		depNames := make([]string, 0, len(deps))
		for dn := range deps {
			depNames = append(depNames, dn)
		}
		sort.Strings(depNames)

		for _, depName := range depNames {
			constraints := deps[depName]
			for _, v := range e.store.Packages.Versions(depName) {
				if satisfiesAll(v, constraints) {
					out = append(out, Rule{
						Condition:  []any{key, "==", value},
						Consequent: Facts{depName: v},
					})
				}
			}
		}
	}
	return out
}

func satisfiesAll(v string, constraints []Dependency) bool {
	for _, c := range constraints {
		if !operator(c.Op)(v, c.RHS) {
			return false
		}
	}
	return true
}

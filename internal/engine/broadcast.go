package engine

import "iter"

// Constraint is a single (operator, right-hand-side) pair used by Expand
// and by synthesized dependency matching.
type Constraint = Dependency

// Expand yields every known version of name that satisfies every
// constraint in constraints (§4.8), in the packages table's recorded
// insertion order. It never yields a version twice.
func (e *Engine) Expand(name string, constraints []Constraint) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, v := range e.store.Packages.Versions(name) {
			if satisfiesAll(v, constraints) {
				if !yield(v) {
					return
				}
			}
		}
	}
}

package engine

import "strings"

// Dependency is one constraint a package version places on another
// package: "dep_name must satisfy op rhs". RHS holds the same value
// variants as a Facts entry (string, bool, float64).
type Dependency struct {
	Op  string
	RHS any
}

// PackageVersions holds one package's dependency lists, keyed by its own
// version string, plus the order those versions were first observed in
// (bundle parse order, or rule-authoring source order) so the
// broadcaster (§4.8) can honor "iteration order of the packages table"
// without depending on Go's unordered map iteration.
type PackageVersions struct {
	Order   []string
	Version map[string]map[string][]Dependency
}

// PackagesTable is the three-level mapping described in §3: package name
// (lowercase) → version string → dependency name → constraint list.
type PackagesTable map[string]*PackageVersions

// Versions returns the known version strings of name in insertion order.
func (t PackagesTable) Versions(name string) []string {
	pv, ok := t[strings.ToLower(name)]
	if !ok {
		return nil
	}
	return pv.Order
}

// Dependencies returns the dependency list recorded for (name, version),
// or nil if no such pair is known.
func (t PackagesTable) Dependencies(name, version string) map[string][]Dependency {
	pv, ok := t[strings.ToLower(name)]
	if !ok {
		return nil
	}
	return pv.Version[version]
}

// Add records a (name, version) pair with its dependency list, appending
// to Order the first time a version is seen. Used by the rule-authoring
// tool (internal/ruleauthor) while assembling a table from source files.
func (t PackagesTable) Add(name, version string, deps map[string][]Dependency) {
	name = strings.ToLower(name)
	pv, ok := t[name]
	if !ok {
		pv = &PackageVersions{Version: map[string]map[string][]Dependency{}}
		t[name] = pv
	}
	if _, exists := pv.Version[version]; !exists {
		pv.Order = append(pv.Order, version)
	}
	pv.Version[version] = deps
}

// Store holds the immutable knowledge base an Engine is built from: the
// static rules and the packages table used to synthesize dependency
// rules on demand (§4.5). Both fields are read-only after construction;
// nothing in this package ever mutates a Store past NewStore/LoadBundle.
type Store struct {
	Packages PackagesTable
	Rules    []Rule
}

// NewStore builds a Store directly from already-assembled data, for
// callers that construct rules and a packages table in memory (the
// rule-authoring tool, and tests) rather than loading a persisted
// bundle.
func NewStore(packages PackagesTable, rules []Rule) *Store {
	return &Store{Packages: packages, Rules: rules}
}

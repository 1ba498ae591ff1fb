package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestExploreDirectVulnerability(t *testing.T) {
	store := NewStore(PackagesTable{}, []Rule{
		{
			Condition:  []any{"flask", "<~", "1.0"},
			Consequent: Facts{"$cve": "CVE-2020-0001", "$vuln": true},
		},
	})
	eng := New(store)

	var paths []Path
	for p := range eng.Explore(Facts{"flask": "0.5"}, Facts{"$vuln": true}) {
		paths = append(paths, p)
	}

	require.Len(t, paths, 1)
	terminal := paths[0].Facts()
	require.Equal(t, "CVE-2020-0001", terminal["$cve"])
}

func TestExploreTransitiveDependency(t *testing.T) {
	packages := PackagesTable{}
	packages.Add("autobahn", "19.3.3", map[string][]Dependency{
		"cryptography": {{Op: ">=~", RHS: "2.6"}},
	})
	packages.Add("cryptography", "2.6", nil)
	packages.Add("cryptography", "2.7", nil)

	store := NewStore(packages, []Rule{
		{
			Condition:  []any{"cryptography", ">=~", "2.6"},
			Consequent: Facts{"$cve": "CVE-2020-0002", "$vuln": true},
		},
	})
	eng := New(store)

	var paths []Path
	for p := range eng.Explore(Facts{"autobahn": "19.3.3"}, Facts{"$vuln": true}) {
		paths = append(paths, p)
	}

	require.NotEmpty(t, paths, "expected at least one path from autobahn to a vulnerability via cryptography")
	for _, p := range paths {
		require.Equal(t, "CVE-2020-0002", p.Facts()["$cve"])
	}
}

func TestExploreNoMatchIsEmpty(t *testing.T) {
	store := NewStore(PackagesTable{}, nil)
	eng := New(store)

	var paths []Path
	for p := range eng.Explore(Facts{"flask": "1.0"}, Facts{"$vuln": true}) {
		paths = append(paths, p)
	}
	require.Empty(t, paths)
}

func TestExploreSingletonWhenGoalAlreadySatisfied(t *testing.T) {
	store := NewStore(PackagesTable{}, nil)
	eng := New(store)

	facts := Facts{"$vuln": true}
	var paths []Path
	for p := range eng.Explore(facts, Facts{"$vuln": true}) {
		paths = append(paths, p)
	}
	require.Len(t, paths, 1)
	if diff := cmp.Diff(facts, paths[0].Facts()); diff != "" {
		t.Errorf("singleton path facts mismatch (-want +got):\n%s", diff)
	}
}

func TestExploreIsDeterministicAcrossCalls(t *testing.T) {
	packages := PackagesTable{}
	packages.Add("a", "1.0", map[string][]Dependency{"b": {{Op: ">=~", RHS: "1.0"}}})
	packages.Add("b", "1.0", nil)

	store := NewStore(packages, []Rule{
		{Condition: []any{"b", ">=~", "1.0"}, Consequent: Facts{"$vuln": true}},
	})
	eng := New(store)

	first := collect(eng.Explore(Facts{"a": "1.0"}, Facts{"$vuln": true}))
	second := collect(eng.Explore(Facts{"a": "1.0"}, Facts{"$vuln": true}))
	require.Equal(t, first, second)
}

func collect(seq func(func(Path) bool)) []Path {
	var out []Path
	for p := range seq {
		out = append(out, p)
	}
	return out
}

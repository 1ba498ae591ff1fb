package engine

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBundleRoundTrip(t *testing.T) {
	packages := PackagesTable{}
	packages.Add("flask", "0.12", map[string][]Dependency{
		"werkzeug": {{Op: ">=~", RHS: "0.7"}},
	})
	packages.Add("flask", "1.0", nil)

	store := NewStore(packages, []Rule{
		{
			Condition:  []any{"flask", "<~", "1.0"},
			Consequent: Facts{"$cve": "CVE-2020-0001", "$vuln": true},
		},
	})

	var buf bytes.Buffer
	require.NoError(t, SaveBundle(&buf, store))

	loaded, err := LoadBundle(&buf)
	require.NoError(t, err)

	require.Equal(t, []string{"0.12", "1.0"}, loaded.Packages.Versions("flask"))
	require.Len(t, loaded.Rules, 1)

	eng := New(loaded)
	var matched bool
	for range eng.Explore(Facts{"flask": "0.5"}, Facts{"$vuln": true}) {
		matched = true
	}
	require.True(t, matched, "expected the reloaded bundle's rule to still fire")
}

func TestLoadBundleRejectsGarbage(t *testing.T) {
	_, err := LoadBundle(bytes.NewReader([]byte("not a gzip stream")))
	require.Error(t, err)
}

// Package ruleauthor loads human-authored rule and packages-table source
// files and compiles them into the persisted bundle format (§6, §12)
// consumed by the engine. It stands in for cyberpert/data.py's get_rules,
// restricted to the in-scope half of that function: NVD/BigQuery
// ingestion stays out of scope (§1), but turning already-enumerated
// vulnerable-version lists into range-compiled rules does not.
package ruleauthor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/titanous/json5"
	"gopkg.in/yaml.v2"

	"github.com/annikaholm/vexray/internal/engine"
)

// AdvisorySource is one human-authored advisory entry: an affected
// package plus the versions known to be vulnerable, against the full
// universe of versions the packages table knows about.
type AdvisorySource struct {
	CVE     string   `json:"cve" yaml:"cve"`
	Package string   `json:"package" yaml:"package"`
	Vulnerable []string `json:"vulnerable" yaml:"vulnerable"`
}

// PackageEntry is one (name, version, dependencies) row of the packages
// table, in source form.
type PackageEntry struct {
	Name    string              `json:"name" yaml:"name"`
	Version string              `json:"version" yaml:"version"`
	Depends map[string][]string `json:"depends" yaml:"depends"` // dep name -> ["op version", ...]
}

// LoadAdvisories reads an advisory source file. JSON5 (comment-tolerant,
// per the fabric-mod-bisect-tool config loader this is grounded on) and
// YAML are both accepted, selected by file extension.
func LoadAdvisories(path string) ([]AdvisorySource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ruleauthor: reading %s: %w", path, err)
	}
	var out []AdvisorySource
	if err := unmarshalByExt(path, data, &out); err != nil {
		return nil, fmt.Errorf("ruleauthor: parsing %s: %w", path, err)
	}
	return out, nil
}

// LoadPackages reads a packages-table source file in the same two
// formats.
func LoadPackages(path string) ([]PackageEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ruleauthor: reading %s: %w", path, err)
	}
	var out []PackageEntry
	if err := unmarshalByExt(path, data, &out); err != nil {
		return nil, fmt.Errorf("ruleauthor: parsing %s: %w", path, err)
	}
	return out, nil
}

func unmarshalByExt(path string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json5", ".json":
		return json5.Unmarshal(data, v)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	default:
		return fmt.Errorf("unrecognized rule-source extension: %s", path)
	}
}

// BuildPackagesTable assembles a PackagesTable from decoded entries,
// parsing each "op version" depends string with the operator recognized
// by the engine's range-compiled conditions (only ">=~"/"<~" appear in
// compiled rules, but hand-authored dependency constraints may use any
// registered operator, same as a requirement line).
func BuildPackagesTable(entries []PackageEntry) (engine.PackagesTable, error) {
	table := engine.PackagesTable{}
	for _, e := range entries {
		deps := map[string][]engine.Dependency{}
		for depName, constraints := range e.Depends {
			for _, c := range constraints {
				op, rhs, err := splitConstraint(c)
				if err != nil {
					return nil, fmt.Errorf("ruleauthor: %s %s depends on %s: %w", e.Name, e.Version, depName, err)
				}
				deps[depName] = append(deps[depName], engine.Dependency{Op: op, RHS: rhs})
			}
		}
		table.Add(e.Name, e.Version, deps)
	}
	return table, nil
}

// splitConstraint splits a "op version" string such as ">=~ 1.2" into
// its operator and right-hand side.
func splitConstraint(s string) (op, rhs string, err error) {
	parts := strings.SplitN(strings.TrimSpace(s), " ", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("malformed constraint %q (want \"op version\")", s)
	}
	return parts[0], strings.TrimSpace(parts[1]), nil
}

package ruleauthor

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/annikaholm/vexray/internal/engine"
	"github.com/annikaholm/vexray/internal/version"
)

// BuildInput names the source files a Build call compiles.
type BuildInput struct {
	AdvisoriesPath string
	PackagesPath   string
}

// Build loads in.AdvisoriesPath and in.PackagesPath concurrently (they
// are independent files; concurrency lives entirely in this ingest tool,
// never in the engine itself, per §5), range-compiles each advisory into
// a static rule (§4.4), and returns the assembled Store ready for
// SaveBundle.
func Build(ctx context.Context, in BuildInput) (*engine.Store, error) {
	var advisories []AdvisorySource
	var entries []PackageEntry

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := LoadAdvisories(in.AdvisoriesPath)
		if err != nil {
			return err
		}
		advisories = a
		return nil
	})
	g.Go(func() error {
		p, err := LoadPackages(in.PackagesPath)
		if err != nil {
			return err
		}
		entries = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table, err := BuildPackagesTable(entries)
	if err != nil {
		return nil, err
	}

	rules := make([]engine.Rule, 0, len(advisories))
	for _, a := range advisories {
		all := table.Versions(a.Package)
		if len(all) == 0 {
			fmt.Fprintf(os.Stderr, "ruleauthor: warning: %s: unknown package %q, skipping\n", a.CVE, a.Package)
			continue
		}
		cond := engine.CompileRange(a.Package, a.Vulnerable, all)
		rules = append(rules, engine.Rule{
			Condition:  cond,
			Consequent: engine.Facts{"$cve": a.CVE, "$vuln": true},
		})
	}

	return engine.NewStore(table, rules), nil
}

// SemverSummary reports, for each advisory, whether every version in its
// vulnerable list is strict-semver-expressible (major.minor.patch, no
// pre/post/dev/local/epoch) — useful for authors cross-checking an
// advisory against tools that only understand semver. It does not check
// whether those versions form a single contiguous span. It downgrades via
// Version.Semver3 (§11), never affecting the compiled rule itself.
func SemverSummary(advisories []AdvisorySource) map[string]bool {
	out := make(map[string]bool, len(advisories))
	for _, a := range advisories {
		out[a.CVE] = allSemverExpressible(a.Vulnerable)
	}
	return out
}

func allSemverExpressible(versions []string) bool {
	for _, s := range versions {
		v, err := version.Parse(s)
		if err != nil {
			return false
		}
		if _, ok := v.Semver3(); !ok {
			return false
		}
	}
	return true
}

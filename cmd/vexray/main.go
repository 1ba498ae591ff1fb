// Command vexray audits a list of package requirements against a
// precomputed vulnerability rule bundle and reports any requirement that
// admits at least one vulnerable concrete version, with a reasoning
// chain from the requirement down to the advisory (§1, §6).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/annikaholm/vexray/internal/engine"
	"github.com/annikaholm/vexray/internal/reqline"
)

const defaultHelp = `vexray audits Python package requirements against a vulnerability rule bundle

Usage:

  vexray [options] <requirement> [<requirement> ...]
  vexray [options] -r <requirements-file>

Options:
`

func run(args []string) (int, error) {
	flagSet := pflag.NewFlagSet("vexray", pflag.ContinueOnError)
	bundlePath := flagSet.StringP("bundle", "b", "rules.bundle", "path to the rule bundle")
	verbose := flagSet.BoolP("verbose", "v", false, "print the full reasoning path for each match")
	reqFiles := flagSet.StringArrayP("requirement", "r", nil, "requirements file to resolve (repeatable)")
	flagSet.Usage = func() {
		fmt.Fprint(os.Stderr, defaultHelp)
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return 2, nil
		}
		return 2, err
	}

	lines := flagSet.Args()
	for _, path := range *reqFiles {
		lines = append(lines, "-r "+path)
	}
	if len(lines) == 0 {
		fmt.Fprint(os.Stderr, defaultHelp)
		return 2, nil
	}

	f, err := os.Open(*bundlePath)
	if err != nil {
		return 1, fmt.Errorf("opening bundle: %w", err)
	}
	store, err := engine.LoadBundle(f)
	f.Close()
	if err != nil {
		return 1, err
	}
	eng := engine.New(store)

	reqs, err := reqline.Resolve(lines)
	if err != nil {
		return 1, err
	}

	vulnerable := false
	for name, req := range reqs {
		for v := range eng.Expand(name, req.Constraints) {
			facts := engine.Facts{name: v}
			goal := engine.Facts{"$vuln": true}
			for path := range eng.Explore(facts, goal) {
				vulnerable = true
				terminal := path.Facts()
				fmt.Printf("%s %s: vulnerable via %v (%s)\n", name, v, terminal["$cve"], req.Source)
				if *verbose {
					fmt.Println(path.String())
				}
			}
		}
	}

	if vulnerable {
		return 1, nil
	}
	return 0, nil
}

func main() {
	exitCode, err := run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(exitCode)
}

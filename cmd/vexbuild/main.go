// Command vexbuild compiles human-authored advisory and packages-table
// source files into a persisted, gzip-compressed JSON rule bundle (§6,
// §12) — the in-scope half of cyberpert/data.py's get_rules: it never
// touches NVD or BigQuery (§1), but it does perform the range-compiling
// and bundling step those feeds would otherwise have fed.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/annikaholm/vexray/internal/ruleauthor"

	"github.com/annikaholm/vexray/internal/engine"
)

const defaultHelp = `vexbuild compiles advisory/packages sources into a rule bundle

Usage:

  vexbuild [options]

Options:
`

func run(args []string) (int, error) {
	flagSet := pflag.NewFlagSet("vexbuild", pflag.ContinueOnError)
	advisories := flagSet.String("advisories", "advisories.json5", "advisory source file (.json5/.json/.yaml)")
	packages := flagSet.String("packages", "packages.json5", "packages-table source file (.json5/.json/.yaml)")
	out := flagSet.StringP("out", "o", "rules.bundle", "path to write the compiled bundle")
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

	store, err := ruleauthor.Build(context.Background(), ruleauthor.BuildInput{
		AdvisoriesPath: *advisories,
		PackagesPath:   *packages,
	})
	if err != nil {
		return 1, err
	}

	f, err := os.Create(*out)
	if err != nil {
		return 1, fmt.Errorf("creating %s: %w", *out, err)
	}
	defer f.Close()

	if err := engine.SaveBundle(f, store); err != nil {
		return 1, fmt.Errorf("writing bundle: %w", err)
	}

	fmt.Fprintf(os.Stderr, "wrote %d rules to %s\n", len(store.Rules), *out)
	return 0, nil
}

func main() {
	exitCode, err := run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(exitCode)
}

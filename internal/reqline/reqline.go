// Package reqline parses requirement-line input: an ordered list of
// strings where each string is either a PEP 508-lite requirement line
// (name, optional extras, optional comma-separated version constraints)
// or a "-r <path>" / "-r\n<path>" directive naming a file of further
// requirement lines, resolved recursively (§6, §12).
//
// The parser is a small byte-position scanner in the style of
// AlexanderEkdahl/rope's version/parser.go, rather than the full
// Parsley-derived grammar rope's pep508 package implements for PyPI
// environment markers — markers, extras, and URL requirements are outside
// this engine's scope (§1: "requirement-line grammar details beyond the
// interface described in §6"), so only the name/version-constraint shape
// needs a parser here.
package reqline

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/annikaholm/vexray/internal/engine"
)

// ErrSyntax is returned when a requirement line cannot be parsed.
var ErrSyntax = errors.New("reqline: syntax error")

// ErrRecursionLimit guards against a "-r" cycle between requirement
// files: nesting deeper than maxRecursionDepth is rejected (the
// original CLI had no such guard).
var ErrRecursionLimit = errors.New("reqline: -r recursion too deep")

const maxRecursionDepth = 32

// normalizeRe strips run of "-_." separators for PEP 503 name
// normalization, the same regex AlexanderEkdahl/rope's util.go uses for
// NormalizePackageName.
var normalizeRe = regexp.MustCompile(`[-_.]+`)

// Normalize lowercases and collapses "-", "_", "." runs in a package
// name to a single "-", per PEP 503.
func Normalize(name string) string {
	return strings.ToLower(normalizeRe.ReplaceAllString(name, "-"))
}

// Requirement is one resolved requirement: the line it was parsed from,
// plus its accumulated version constraints. A name may appear on several
// lines (directly, or via nested "-r" files); Resolve merges their
// constraint lists.
type Requirement struct {
	Name        string
	Source      string
	Constraints []engine.Constraint
}

// Resolve parses lines (as passed on a command line or read from a
// top-level requirements file) and returns a map from normalized package
// name to its merged Requirement, following "-r <path>" directives
// recursively. It mirrors cyberpert/cli.py's iter_requirements.
func Resolve(lines []string) (map[string]*Requirement, error) {
	out := map[string]*Requirement{}
	if err := resolveLines(lines, out, 0); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveFile reads path (one requirement line per line, blank lines and
// "#"-prefixed comments ignored, same as a pip requirements.txt) and
// resolves it like Resolve.
func ResolveFile(path string) (map[string]*Requirement, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	return Resolve(lines)
}

func resolveLines(lines []string, out map[string]*Requirement, depth int) error {
	if depth > maxRecursionDepth {
		return ErrRecursionLimit
	}
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if path, rest, ok := splitDashR(line); ok {
			if path == "" {
				// "-r" alone on a line: path is the next line
				// (cyberpert/cli.py accepts both shapes).
				if i+1 >= len(lines) {
					return fmt.Errorf("%w: -r with no following path", ErrSyntax)
				}
				i++
				path = strings.TrimSpace(lines[i])
			} else if rest != "" {
				return fmt.Errorf("%w: trailing content after -r path: %q", ErrSyntax, rest)
			}
			nested, err := readLines(path)
			if err != nil {
				return err
			}
			if err := resolveLines(nested, out, depth+1); err != nil {
				return err
			}
			continue
		}

		req, err := parseLine(line)
		if err != nil {
			return err
		}
		name := Normalize(req.Name)
		if existing, ok := out[name]; ok {
			existing.Constraints = append(existing.Constraints, req.Constraints...)
		} else {
			req.Name = name
			out[name] = req
		}
	}
	return nil
}

// splitDashR recognizes a line starting with "-r": ok is true if it
// matched; path is the path if present on the same line.
func splitDashR(line string) (path, rest string, ok bool) {
	if !strings.HasPrefix(line, "-r") {
		return "", "", false
	}
	trimmed := strings.TrimSpace(line[len("-r"):])
	return trimmed, "", true
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reqline: reading %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reqline: reading %s: %w", path, err)
	}
	return lines, nil
}

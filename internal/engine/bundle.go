package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// ErrBundleDecode wraps any failure to parse a persisted rule bundle
// (§6, §10.1). The evaluator itself never returns an error (§7); this is
// strictly an ingest-time failure.
var ErrBundleDecode = errors.New("engine: malformed rule bundle")

// LoadBundle reads a gzip-compressed JSON rule bundle (§6) and returns
// the Store it describes. Package version order within each package is
// preserved from the document's field order, since the broadcaster
// (§4.8) promises to iterate in "insertion order, which is parse order".
func LoadBundle(r io.Reader) (*Store, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBundleDecode, err)
	}
	defer gz.Close()

	dec := json.NewDecoder(gz)

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	packages := PackagesTable{}
	var rules []Rule

	for dec.More() {
		key, err := decodeKey(dec)
		if err != nil {
			return nil, err
		}
		switch key {
		case "packages":
			if err := decodePackages(dec, packages); err != nil {
				return nil, err
			}
		case "rules":
			rs, err := decodeRules(dec)
			if err != nil {
				return nil, err
			}
			rules = rs
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrBundleDecode, err)
			}
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}

	return NewStore(packages, rules), nil
}

func decodePackages(dec *json.Decoder, table PackagesTable) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		name, err := decodeKey(dec)
		if err != nil {
			return err
		}
		pv := &PackageVersions{Version: map[string]map[string][]Dependency{}}

		if err := expectDelim(dec, '{'); err != nil {
			return err
		}
		for dec.More() {
			versionStr, err := decodeKey(dec)
			if err != nil {
				return err
			}
			deps, err := decodeDeps(dec)
			if err != nil {
				return err
			}
			pv.Version[versionStr] = deps
			pv.Order = append(pv.Order, versionStr)
		}
		if err := expectEndDelim(dec, '}'); err != nil {
			return err
		}

		table[strings.ToLower(name)] = pv
	}
	return expectEndDelim(dec, '}')
}

func decodeDeps(dec *json.Decoder) (map[string][]Dependency, error) {
	deps := map[string][]Dependency{}
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	for dec.More() {
		depName, err := decodeKey(dec)
		if err != nil {
			return nil, err
		}
		var raw [][2]any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: dependency list for %q: %v", ErrBundleDecode, depName, err)
		}
		constraints := make([]Dependency, 0, len(raw))
		for _, pair := range raw {
			op, _ := pair[0].(string)
			constraints = append(constraints, Dependency{Op: op, RHS: pair[1]})
		}
		deps[depName] = constraints
	}
	return deps, expectEndDelim(dec, '}')
}

func decodeRules(dec *json.Decoder) ([]Rule, error) {
	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}
	var rules []Rule
	for dec.More() {
		var entry [2]json.RawMessage
		if err := dec.Decode(&entry); err != nil {
			return nil, fmt.Errorf("%w: rule entry: %v", ErrBundleDecode, err)
		}
		var cond any
		if err := json.Unmarshal(entry[0], &cond); err != nil {
			return nil, fmt.Errorf("%w: rule condition: %v", ErrBundleDecode, err)
		}
		var consequent map[string]any
		if err := json.Unmarshal(entry[1], &consequent); err != nil {
			return nil, fmt.Errorf("%w: rule consequent: %v", ErrBundleDecode, err)
		}
		rules = append(rules, Rule{Condition: cond, Consequent: Facts(consequent)})
	}
	return rules, expectEndDelim(dec, ']')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBundleDecode, err)
	}
	d, ok := tok.(json.Delim)
	if !ok || d != want {
		return fmt.Errorf("%w: expected %q, got %v", ErrBundleDecode, want, tok)
	}
	return nil
}

// expectEndDelim consumes the closing delimiter after a dec.More() loop
// has run dry.
func expectEndDelim(dec *json.Decoder, want json.Delim) error {
	return expectDelim(dec, want)
}

func decodeKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBundleDecode, err)
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected object key, got %v", ErrBundleDecode, tok)
	}
	return s, nil
}

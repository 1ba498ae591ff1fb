package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/klauspost/compress/gzip"
)

// SaveBundle writes store as a gzip-compressed JSON rule bundle (§6),
// preserving each package's recorded version order so a later LoadBundle
// reproduces the same broadcaster iteration order. Package and
// dependency-name ordering (which carries no ordering guarantee) is
// written sorted, for reproducible output byte-for-byte across runs.
func SaveBundle(w io.Writer, store *Store) error {
	gz := gzip.NewWriter(w)

	if err := writeBundle(gz, store); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

func writeBundle(w io.Writer, store *Store) error {
	if _, err := io.WriteString(w, `{"packages":{`); err != nil {
		return err
	}

	names := make([]string, 0, len(store.Packages))
	for name := range store.Packages {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if err := writeJSONString(w, name); err != nil {
			return err
		}
		if _, err := io.WriteString(w, ":{"); err != nil {
			return err
		}

		pv := store.Packages[name]
		for j, version := range pv.Order {
			if j > 0 {
				if _, err := io.WriteString(w, ","); err != nil {
					return err
				}
			}
			if err := writeJSONString(w, version); err != nil {
				return err
			}
			if _, err := io.WriteString(w, ":"); err != nil {
				return err
			}
			if err := writeDeps(w, pv.Version[version]); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "}"); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(w, `},"rules":[`); err != nil {
		return err
	}
	for i, r := range store.Rules {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		entry := [2]any{r.Condition, map[string]any(r.Consequent)}
		b, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "]}")
	return err
}

func writeDeps(w io.Writer, deps map[string][]Dependency) error {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	if _, err := io.WriteString(w, "{"); err != nil {
		return err
	}
	for i, name := range names {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if err := writeJSONString(w, name); err != nil {
			return err
		}
		if _, err := io.WriteString(w, ":"); err != nil {
			return err
		}
		pairs := make([][2]any, 0, len(deps[name]))
		for _, d := range deps[name] {
			pairs = append(pairs, [2]any{d.Op, d.RHS})
		}
		b, err := json.Marshal(pairs)
		if err != nil {
			return err
		}
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "}")
	return err
}

func writeJSONString(w io.Writer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

package engine

import "github.com/annikaholm/vexray/internal/version"

// CompileRange converts a (matching, all) pair of version strings for
// name into a condition identifying exactly matching ∩ all (§4.4). Only
// ">=~", "<~", "and", and "or" appear in the output, per the invariant
// in §3.
//
// Unparseable version strings in either set are skipped (InvalidVersion,
// §7) rather than rejected outright, mirroring the broadcaster's and the
// sorter's policy elsewhere in the engine.
func CompileRange(name string, matching, all []string) Condition {
	matchSet := make(map[string]bool, len(matching))
	for _, m := range matching {
		if _, err := version.Parse(m); err != nil {
			continue
		}
		matchSet[m] = true
	}

	sorted := version.SortVersions(all)

	var ranges []Condition
	var lower string
	open := false

	closeRun := func(upper string) {
		if !open {
			return
		}
		lo := []any{name, ">=~", lower}
		if upper == "" {
			ranges = append(ranges, lo)
		} else {
			ranges = append(ranges, []any{lo, "and", []any{name, "<~", upper}})
		}
		open = false
	}

	for _, v := range sorted {
		if matchSet[v] {
			if !open {
				lower = v
				open = true
			}
			continue
		}
		closeRun(v)
	}
	closeRun("")

	switch len(ranges) {
	case 0:
		// Empty matching set: the empty condition, which evaluates to
		// false on every version (§4.4 edge case).
		return []any{}
	case 1:
		return ranges[0]
	default:
		flat := make([]any, 0, len(ranges)*2-1)
		for i, r := range ranges {
			if i > 0 {
				flat = append(flat, "or")
			}
			flat = append(flat, r)
		}
		return flat
	}
}

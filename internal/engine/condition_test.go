package engine

import "testing"

func TestEvaluateBasic(t *testing.T) {
	facts := Facts{"flask": "1.0", "debug": true}

	cases := []struct {
		name string
		cond Condition
		want bool
	}{
		{"equal match", []any{"flask", "==", "1.0"}, true},
		{"equal mismatch", []any{"flask", "==", "2.0"}, false},
		{"version gte", []any{"flask", ">=~", "0.9"}, true},
		{"version lt", []any{"flask", "<~", "1.0"}, false},
		{"unknown operator", []any{"flask", "bogus", "1.0"}, false},
		{"missing fact", []any{"nonexistent", "==", "1.0"}, false},
		{"and chain", []any{[]any{"flask", "==", "1.0"}, "and", []any{"debug", "==", true}}, true},
		{"or chain with false first", []any{[]any{"flask", "==", "2.0"}, "or", []any{"debug", "==", true}}, true},
		{"empty condition", []any{}, false},
		{"type mismatch", []any{"debug", ">=~", "1.0"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Evaluate(c.cond, facts); got != c.want {
				t.Errorf("Evaluate(%v, %v) = %v, want %v", c.cond, facts, got, c.want)
			}
		})
	}
}

func TestEvaluateRangeOr(t *testing.T) {
	cond := []any{
		[]any{[]any{"pkg", ">=~", "1.0"}, "and", []any{"pkg", "<~", "2.0"}},
		"or",
		[]any{[]any{"pkg", ">=~", "3.0"}, "and", []any{"pkg", "<~", "4.0"}},
	}
	for _, tc := range []struct {
		version string
		want    bool
	}{
		{"0.5", false},
		{"1.5", true},
		{"2.5", false},
		{"3.5", true},
		{"4.5", false},
	} {
		facts := Facts{"pkg": tc.version}
		if got := Evaluate(cond, facts); got != tc.want {
			t.Errorf("Evaluate(range-or, pkg=%s) = %v, want %v", tc.version, got, tc.want)
		}
	}
}

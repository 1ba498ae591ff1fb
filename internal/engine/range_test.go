package engine

import "testing"

func TestCompileRangeRoundTrip(t *testing.T) {
	all := []string{"1.0", "1.1", "1.2", "2.0", "2.1", "3.0"}
	matching := []string{"1.1", "1.2", "3.0"}

	cond := CompileRange("pkg", matching, all)

	matchSet := map[string]bool{}
	for _, m := range matching {
		matchSet[m] = true
	}
	for _, v := range all {
		got := Evaluate(cond, Facts{"pkg": v})
		want := matchSet[v]
		if got != want {
			t.Errorf("CompileRange round trip for %s = %v, want %v", v, got, want)
		}
	}
}

func TestCompileRangeEmpty(t *testing.T) {
	cond := CompileRange("pkg", nil, []string{"1.0", "2.0"})
	for _, v := range []string{"1.0", "2.0"} {
		if Evaluate(cond, Facts{"pkg": v}) {
			t.Errorf("empty matching set should never evaluate true, got true for %s", v)
		}
	}
}

func TestCompileRangeAllMatch(t *testing.T) {
	all := []string{"1.0", "2.0", "3.0"}
	cond := CompileRange("pkg", all, all)
	for _, v := range all {
		if !Evaluate(cond, Facts{"pkg": v}) {
			t.Errorf("all-matching set should evaluate true for every version, got false for %s", v)
		}
	}
}

func TestCompileRangeUnboundedAbove(t *testing.T) {
	all := []string{"1.0", "2.0", "3.0"}
	cond := CompileRange("pkg", []string{"2.0", "3.0"}, all)
	if !Evaluate(cond, Facts{"pkg": "3.0"}) {
		t.Error("expected the open-ended run to include the final version")
	}
	if Evaluate(cond, Facts{"pkg": "1.0"}) {
		t.Error("expected a version before the open run to be excluded")
	}
}

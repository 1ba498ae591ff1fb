package version

import "testing"

func TestParseCanonical(t *testing.T) {
	cases := []struct {
		input     string
		canonical string
	}{
		{"1!1.16rc3.post5.dev2+xyz", "1!1.16rc3.post5.dev2+xyz"},
		{"1", "1"},
		{"1.2.3.4", "1.2.3.4"},
		{"1.2-alpha", "1.2a0"},
		{"1.2-dev", "1.2.dev0"},
		{"v1.2.3", "1.2.3"},
		{"1.0.0", "1.0.0"},
		{"1.2.*", "1.2.*"},
	}
	for _, c := range cases {
		v, err := Parse(c.input)
		if err != nil {
			t.Errorf("Parse(%q) returned error: %v", c.input, err)
			continue
		}
		if got := v.Canonical(); got != c.canonical {
			t.Errorf("Parse(%q).Canonical() = %q, want %q", c.input, got, c.canonical)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, s := range []string{"", "abc", "1.2.3.4.5.6.7"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", s)
		}
	}
}

func TestParseInterns(t *testing.T) {
	a, err := Parse("1.2.3")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse("1.2.3")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("Parse did not return the interned pointer for a repeated source string")
	}
}

func TestCompareOrdering(t *testing.T) {
	ordered := []string{
		"1.0.dev0",
		"1.0a1",
		"1.0a2",
		"1.0b1",
		"1.0rc1",
		"1.0",
		"1.0.post1.dev0",
		"1.0.post1",
		"1.1.dev0",
		"1!0.1",
	}
	for i := 1; i < len(ordered); i++ {
		a := MustParse(ordered[i-1])
		b := MustParse(ordered[i])
		if !a.LT(b) {
			t.Errorf("expected %q < %q", ordered[i-1], ordered[i])
		}
	}
}

func TestSortVersions(t *testing.T) {
	in := []string{"2.0", "1.0", "not-a-version", "1.5"}
	got := SortVersions(in)
	want := []string{"1.0", "1.5", "2.0"}
	if len(got) != len(want) {
		t.Fatalf("SortVersions(%v) = %v, want %v", in, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortVersions(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestSemver3(t *testing.T) {
	v := MustParse("1.2.3")
	sv, ok := v.Semver3()
	if !ok {
		t.Fatal("Semver3() reported !ok for a plain release version")
	}
	if sv.Major != 1 || sv.Minor != 2 || sv.Patch != 3 {
		t.Errorf("Semver3() = %+v, want 1.2.3", sv)
	}

	pre := MustParse("1.2.3rc1")
	if _, ok := pre.Semver3(); ok {
		t.Error("Semver3() reported ok for a pre-release version")
	}
}

package reqline

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Flask":        "flask",
		"Flask_SQLAlchemy": "flask-sqlalchemy",
		"zope.interface":   "zope-interface",
		"A--B..C":          "a-b-c",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseLineBasic(t *testing.T) {
	req, err := parseLine("flask>=1.0,<2.0")
	if err != nil {
		t.Fatal(err)
	}
	if req.Name != "flask" {
		t.Errorf("Name = %q, want flask", req.Name)
	}
	if len(req.Constraints) != 2 {
		t.Fatalf("Constraints = %v, want 2 entries", req.Constraints)
	}
	if req.Constraints[0].Op != ">=~" || req.Constraints[0].RHS != "1.0" {
		t.Errorf("first constraint = %+v", req.Constraints[0])
	}
	if req.Constraints[1].Op != "<~" || req.Constraints[1].RHS != "2.0" {
		t.Errorf("second constraint = %+v", req.Constraints[1])
	}
}

func TestParseLineExtrasAndMarker(t *testing.T) {
	req, err := parseLine(`requests[security]>=2.0 ; python_version >= "3.6"`)
	if err != nil {
		t.Fatal(err)
	}
	if req.Name != "requests" {
		t.Errorf("Name = %q, want requests", req.Name)
	}
	if len(req.Constraints) != 1 || req.Constraints[0].RHS != "2.0" {
		t.Errorf("Constraints = %+v", req.Constraints)
	}
}

func TestParseLineNoConstraints(t *testing.T) {
	req, err := parseLine("flask")
	if err != nil {
		t.Fatal(err)
	}
	if req.Name != "flask" || len(req.Constraints) != 0 {
		t.Errorf("got %+v, want bare name with no constraints", req)
	}
}

func TestResolveMergesDuplicateNames(t *testing.T) {
	reqs, err := Resolve([]string{"flask>=1.0", "Flask<2.0"})
	if err != nil {
		t.Fatal(err)
	}
	r, ok := reqs["flask"]
	if !ok {
		t.Fatalf("expected merged entry for flask, got %v", reqs)
	}
	if len(r.Constraints) != 2 {
		t.Errorf("expected constraints from both lines to merge, got %+v", r.Constraints)
	}
}

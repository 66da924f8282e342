package conceptgraph

import (
	"testing"

	"github.com/abhisek/studyloop/internal/ids"
)

func TestParseDomain(t *testing.T) {
	tests := []struct {
		in   ids.DomainID
		want DomainPath
	}{
		{"mathematics.calculus.limits", KnownDomain{Discipline: "mathematics", Area: "calculus", Subarea: "limits"}},
		{"Physics.Mechanics.Kinematics", KnownDomain{Discipline: "physics", Area: "mechanics", Subarea: "kinematics"}},
		{"cs.algorithms.graph-search", KnownDomain{Discipline: "cs", Area: "algorithms", Subarea: "graph-search"}},
		{"mathematics.calculus", UnknownDomain{Raw: "mathematics.calculus"}},
		{"", UnknownDomain{Raw: ""}},
		{"a..c", UnknownDomain{Raw: "a..c"}},
		{"a.b.c.d", UnknownDomain{Raw: "a.b.c.d"}},
		{"math.alg ebra.x", UnknownDomain{Raw: "math.alg ebra.x"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			if got := ParseDomain(tt.in); got != tt.want {
				t.Errorf("ParseDomain(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestKnownDomain_ID(t *testing.T) {
	d := KnownDomain{Discipline: "mathematics", Area: "algebra", Subarea: "linear"}
	if d.ID() != "mathematics.algebra.linear" {
		t.Errorf("ID() = %q", d.ID())
	}
}

func TestInDomain(t *testing.T) {
	n := ConceptNode{DomainID: "mathematics.calculus.limits"}
	tests := []struct {
		prefix ids.DomainID
		want   bool
	}{
		{"mathematics", true},
		{"mathematics.calculus", true},
		{"mathematics.calculus.limits", true},
		{"math", false},
		{"mathematics.calc", false},
		{"physics", false},
	}
	for _, tt := range tests {
		if got := InDomain(n, tt.prefix); got != tt.want {
			t.Errorf("InDomain(%q) = %v, want %v", tt.prefix, got, tt.want)
		}
	}
}

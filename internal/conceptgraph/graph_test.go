package conceptgraph

import (
	"errors"
	"maps"
	"math/rand"
	"slices"
	"sync"
	"testing"

	"github.com/abhisek/studyloop/internal/ids"
)

func node(id, name string, prereqs ...string) ConceptNode {
	n := ConceptNode{
		ID:       ids.ConceptID(id),
		DomainID: "mathematics.calculus.core",
		Name:     name,
		Slug:     id,
		Kind:     KindDefinition,
	}
	for _, p := range prereqs {
		n.Prerequisites = append(n.Prerequisites, ids.ConceptID(p))
	}
	return n
}

// calculusNodes is a small acyclic fixture:
//
//	sets <- functions <- limits <- continuity
//	                  \         <- derivatives <- chain-rule
//	                   \-------------'          <- integrals
func calculusNodes() []ConceptNode {
	return []ConceptNode{
		node("sets", "Sets"),
		node("functions", "Functions", "sets"),
		node("limits", "Limits", "functions"),
		node("continuity", "Continuity", "limits"),
		node("derivatives", "Derivatives", "limits", "functions"),
		node("chain-rule", "Chain Rule", "derivatives"),
		node("integrals", "Integrals", "derivatives"),
	}
}

func conceptIDs(nodes []ConceptNode) []ids.ConceptID {
	out := make([]ids.ConceptID, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestBuildPrerequisiteMap(t *testing.T) {
	m := BuildPrerequisiteMap(calculusNodes())
	if len(m) != 7 {
		t.Fatalf("got %d entries, want 7", len(m))
	}
	got := m["derivatives"]
	want := []ids.ConceptID{"limits", "functions"}
	if !slices.Equal(got, want) {
		t.Errorf("derivatives prereqs = %v, want %v", got, want)
	}
	if len(m["sets"]) != 0 {
		t.Errorf("sets should have no prerequisites, got %v", m["sets"])
	}
}

func TestBuildDependentMap(t *testing.T) {
	m := BuildDependentMap(calculusNodes())
	got := m["limits"]
	want := []ids.ConceptID{"continuity", "derivatives"}
	if !slices.Equal(got, want) {
		t.Errorf("limits dependents = %v, want %v", got, want)
	}
	if len(m["integrals"]) != 0 {
		t.Errorf("integrals should have no dependents, got %v", m["integrals"])
	}
}

func TestNew_DoesNotAliasInput(t *testing.T) {
	nodes := calculusNodes()
	g := New(nodes)
	nodes[0].Name = "MUTATED"
	n, _ := g.Node("sets")
	if n.Name != "Sets" {
		t.Error("graph should hold its own copy of the node list")
	}
	out := g.Nodes()
	out[1].Name = "MUTATED"
	n, _ = g.Node("functions")
	if n.Name != "Functions" {
		t.Error("Nodes() should return a defensive copy")
	}
}

func TestWouldCreateCycle(t *testing.T) {
	g := New(calculusNodes())
	tests := []struct {
		name     string
		from, to ids.ConceptID
		want     bool
	}{
		{"root requires leaf", "sets", "integrals", true},
		{"direct back edge", "functions", "limits", true},
		{"self edge", "limits", "limits", true},
		{"forward shortcut", "integrals", "sets", false},
		{"sibling", "continuity", "derivatives", false},
		{"unknown target", "sets", "topology", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.WouldCreateCycle(tt.from, tt.to); got != tt.want {
				t.Errorf("WouldCreateCycle(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestDetectCycles_Acyclic(t *testing.T) {
	if cycles := New(calculusNodes()).DetectCycles(); len(cycles) != 0 {
		t.Errorf("expected no cycles, got %v", cycles)
	}
}

func TestDetectCycles_ClosedLoop(t *testing.T) {
	g := New([]ConceptNode{
		node("a", "A", "b"),
		node("b", "B", "c"),
		node("c", "C", "a"),
	})
	cycles := g.DetectCycles()
	if len(cycles) != 1 {
		t.Fatalf("got %d cycles, want 1: %v", len(cycles), cycles)
	}
	want := []ids.ConceptID{"a", "b", "c", "a"}
	if !slices.Equal(cycles[0], want) {
		t.Errorf("cycle = %v, want %v", cycles[0], want)
	}
}

func TestDetectCycles_ReportsAll(t *testing.T) {
	g := New([]ConceptNode{
		node("a", "A", "b"),
		node("b", "B", "a"),
		node("c", "C", "d"),
		node("d", "D", "c"),
		node("e", "E", "e"),
	})
	cycles := g.DetectCycles()
	if len(cycles) != 3 {
		t.Fatalf("got %d cycles, want 3: %v", len(cycles), cycles)
	}
	for _, c := range cycles {
		if c[0] != c[len(c)-1] {
			t.Errorf("cycle %v is not closed", c)
		}
	}
	if !slices.Equal(cycles[2], []ids.ConceptID{"e", "e"}) {
		t.Errorf("self loop = %v, want [e e]", cycles[2])
	}
}

func TestDetectCycles_IgnoresDangling(t *testing.T) {
	g := New([]ConceptNode{node("a", "A", "ghost")})
	if cycles := g.DetectCycles(); len(cycles) != 0 {
		t.Errorf("dangling reference is not a cycle, got %v", cycles)
	}
}

func TestLevels(t *testing.T) {
	levels, err := New(calculusNodes()).Levels()
	if err != nil {
		t.Fatalf("Levels() error: %v", err)
	}
	want := map[ids.ConceptID]int{
		"sets":        0,
		"functions":   1,
		"limits":      2,
		"continuity":  3,
		"derivatives": 3,
		"chain-rule":  4,
		"integrals":   4,
	}
	for id, w := range want {
		if levels[id] != w {
			t.Errorf("level(%s) = %d, want %d", id, levels[id], w)
		}
	}
}

func TestLevels_RefusesCycle(t *testing.T) {
	g := New([]ConceptNode{
		node("root", "Root"),
		node("a", "A", "root", "b"),
		node("b", "B", "a"),
	})
	levels, err := g.Levels()
	if err == nil {
		t.Fatalf("expected cycle error, got levels %v", levels)
	}
	if levels != nil {
		t.Errorf("no levels should be returned on cycle, got %v", levels)
	}
	if !errors.Is(err, ErrCycle) {
		t.Errorf("error should wrap ErrCycle, got %v", err)
	}
	var ce *CycleError
	if !errors.As(err, &ce) {
		t.Fatalf("error should be *CycleError, got %T", err)
	}
	if ce.Cycle[0] != ce.Cycle[len(ce.Cycle)-1] {
		t.Errorf("cycle %v is not closed", ce.Cycle)
	}
}

func TestLevels_DanglingPrerequisiteIgnored(t *testing.T) {
	levels, err := New([]ConceptNode{node("a", "A", "ghost")}).Levels()
	if err != nil {
		t.Fatalf("Levels() error: %v", err)
	}
	if levels["a"] != 0 {
		t.Errorf("level(a) = %d, want 0", levels["a"])
	}
}

func TestTopologicalSort(t *testing.T) {
	sorted, err := New(calculusNodes()).TopologicalSort()
	if err != nil {
		t.Fatalf("TopologicalSort() error: %v", err)
	}
	want := []ids.ConceptID{"sets", "functions", "limits", "continuity", "derivatives", "chain-rule", "integrals"}
	if got := conceptIDs(sorted); !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}

	// Every node appears after all of its prerequisites.
	pos := make(map[ids.ConceptID]int)
	for i, n := range sorted {
		pos[n.ID] = i
	}
	for _, n := range sorted {
		for _, p := range n.Prerequisites {
			if pos[p] >= pos[n.ID] {
				t.Errorf("%q (pos %d) appears before prerequisite %q (pos %d)", n.ID, pos[n.ID], p, pos[p])
			}
		}
	}
}

func TestTopologicalSort_Cycle(t *testing.T) {
	_, err := New([]ConceptNode{node("a", "A", "b"), node("b", "B", "a")}).TopologicalSort()
	if !errors.Is(err, ErrCycle) {
		t.Errorf("expected ErrCycle, got %v", err)
	}
}

func TestAncestorsAndDescendants(t *testing.T) {
	g := New(calculusNodes())

	anc := g.Ancestors("derivatives")
	for _, id := range []ids.ConceptID{"limits", "functions", "sets"} {
		if !anc.Has(id) {
			t.Errorf("ancestors of derivatives missing %q", id)
		}
	}
	if len(anc) != 3 {
		t.Errorf("got %d ancestors, want 3: %v", len(anc), anc)
	}
	if anc.Has("derivatives") {
		t.Error("ancestors must not include the start node")
	}

	desc := g.Descendants("limits")
	for _, id := range []ids.ConceptID{"continuity", "derivatives", "chain-rule", "integrals"} {
		if !desc.Has(id) {
			t.Errorf("descendants of limits missing %q", id)
		}
	}
	if len(desc) != 4 {
		t.Errorf("got %d descendants, want 4: %v", len(desc), desc)
	}

	if len(g.Ancestors("sets")) != 0 {
		t.Error("root should have no ancestors")
	}
}

func TestNeighborhood(t *testing.T) {
	g := New(calculusNodes())
	nb, err := g.Neighborhood("limits", 1, 1)
	if err != nil {
		t.Fatalf("Neighborhood() error: %v", err)
	}
	wantNodes := []ids.ConceptID{"functions", "limits", "continuity", "derivatives"}
	if got := conceptIDs(nb.Nodes); !slices.Equal(got, wantNodes) {
		t.Errorf("nodes = %v, want %v", got, wantNodes)
	}
	wantEdges := []Edge{
		{From: "limits", To: "functions"},
		{From: "continuity", To: "limits"},
		{From: "derivatives", To: "limits"},
		{From: "derivatives", To: "functions"},
	}
	if !slices.Equal(nb.Edges, wantEdges) {
		t.Errorf("edges = %v, want %v", nb.Edges, wantEdges)
	}
}

func TestNeighborhood_ZeroDepth(t *testing.T) {
	nb, err := New(calculusNodes()).Neighborhood("limits", 0, -3)
	if err != nil {
		t.Fatalf("Neighborhood() error: %v", err)
	}
	if len(nb.Nodes) != 1 || nb.Nodes[0].ID != "limits" {
		t.Errorf("zero depth should yield only the center, got %v", conceptIDs(nb.Nodes))
	}
	if len(nb.Edges) != 0 {
		t.Errorf("zero depth should yield no edges, got %v", nb.Edges)
	}
}

func TestNeighborhood_UnknownCenter(t *testing.T) {
	_, err := New(calculusNodes()).Neighborhood("topology", 2, 2)
	if !errors.Is(err, ErrUnknownConcept) {
		t.Errorf("expected ErrUnknownConcept, got %v", err)
	}
}

// randomNodes builds n nodes with each possible edge present with probability p.
func randomNodes(r *rand.Rand, n int, p float64) []ConceptNode {
	nodes := make([]ConceptNode, n)
	for i := range nodes {
		id := string(rune('a' + i))
		nodes[i] = node(id, id)
		for j := 0; j < n; j++ {
			if r.Float64() < p {
				nodes[i].Prerequisites = append(nodes[i].Prerequisites, ids.ConceptID(rune('a'+j)))
			}
		}
	}
	return nodes
}

func TestProperty_DetectCyclesMatchesWouldCreateCycle(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for round := 0; round < 300; round++ {
		nodes := randomNodes(r, 7, 0.12)
		g := New(nodes)

		anyClosing := false
		for _, n := range nodes {
			for _, p := range n.Prerequisites {
				if g.WouldCreateCycle(n.ID, p) {
					anyClosing = true
				}
			}
		}
		hasCycles := len(g.DetectCycles()) > 0
		if hasCycles != anyClosing {
			t.Fatalf("round %d: DetectCycles non-empty = %v, some edge closes a cycle = %v", round, hasCycles, anyClosing)
		}

		levels, err := g.Levels()
		if hasCycles {
			if err == nil {
				t.Fatalf("round %d: Levels() should fail on cyclic graph", round)
			}
			continue
		}
		if err != nil {
			t.Fatalf("round %d: Levels() error on acyclic graph: %v", round, err)
		}
		for _, n := range nodes {
			for _, p := range n.Prerequisites {
				if levels[p] >= levels[n.ID] {
					t.Fatalf("round %d: level(%s)=%d not below level(%s)=%d", round, p, levels[p], n.ID, levels[n.ID])
				}
			}
		}
	}
}

func TestProperty_NeighborhoodInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for round := 0; round < 200; round++ {
		nodes := randomNodes(r, 8, 0.18)
		g := New(nodes)
		center := nodes[r.Intn(len(nodes))].ID
		up, down := r.Intn(3), r.Intn(3)

		nb, err := g.Neighborhood(center, up, down)
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		in := make(IDSet)
		for _, n := range nb.Nodes {
			in.add(n.ID)
		}
		if !in.Has(center) {
			t.Fatalf("round %d: center %q missing", round, center)
		}
		for _, e := range nb.Edges {
			if !in.Has(e.From) || !in.Has(e.To) {
				t.Fatalf("round %d: edge %v leaves the neighborhood", round, e)
			}
		}

		within := closure(center, BuildPrerequisiteMap(nodes), up)
		desc := closure(center, BuildDependentMap(nodes), down)
		for id := range in {
			if id != center && !within.Has(id) && !desc.Has(id) {
				t.Fatalf("round %d: %q is neither an ancestor within %d hops nor a descendant within %d hops", round, id, up, down)
			}
		}
	}
}

func TestGraph_ConcurrentReads(t *testing.T) {
	g := New(calculusNodes())

	wantLevels, err := g.Levels()
	if err != nil {
		t.Fatalf("Levels() error = %v", err)
	}
	wantOrder, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("TopologicalSort() error = %v", err)
	}
	wantAncestors := g.Ancestors("chain-rule")
	wantDescendants := g.Descendants("functions")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			levels, err := g.Levels()
			if err != nil || !maps.Equal(levels, wantLevels) {
				t.Errorf("Levels() = %v, %v", levels, err)
			}
			order, err := g.TopologicalSort()
			if err != nil || !slices.EqualFunc(order, wantOrder, func(a, b ConceptNode) bool { return a.ID == b.ID }) {
				t.Errorf("TopologicalSort() order differs")
			}
			if !maps.Equal(g.Ancestors("chain-rule"), wantAncestors) {
				t.Errorf("Ancestors(chain-rule) differs")
			}
			if !maps.Equal(g.Descendants("functions"), wantDescendants) {
				t.Errorf("Descendants(functions) differs")
			}
			if _, err := g.Neighborhood("limits", 1, 1); err != nil {
				t.Errorf("Neighborhood() error = %v", err)
			}
			if !g.WouldCreateCycle("sets", "integrals") {
				t.Errorf("WouldCreateCycle(sets, integrals) = false")
			}
			if res := g.Validate(); !res.Valid {
				t.Errorf("Validate() = %v", res.Issues)
			}
		}()
	}
	wg.Wait()
}

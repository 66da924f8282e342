package conceptgraph

import (
	"strings"
	"testing"
)

func TestValidate_CleanGraphPasses(t *testing.T) {
	res := New(calculusNodes()).Validate()
	if !res.Valid {
		t.Fatalf("expected valid graph, got issues: %v", res.Issues)
	}
	if len(res.Issues) != 0 {
		t.Errorf("valid result should carry no issues, got %v", res.Issues)
	}
}

func TestValidate_EmptyGraph(t *testing.T) {
	res := New(nil).Validate()
	if !res.Valid {
		t.Errorf("empty node set should be valid, got %v", res.Issues)
	}
}

func TestValidate_DetectsCycle(t *testing.T) {
	res := New([]ConceptNode{node("a", "A", "b"), node("b", "B", "a")}).Validate()
	if res.Valid {
		t.Fatal("expected invalid result for cycle")
	}
	if !containsIssue(res.Issues, "cycle detected: a -> b -> a") {
		t.Errorf("issues should describe the cycle, got %v", res.Issues)
	}
}

func TestValidate_DetectsDanglingPrereq(t *testing.T) {
	res := New([]ConceptNode{node("a", "A"), node("b", "B", "nonexistent")}).Validate()
	if res.Valid {
		t.Fatal("expected invalid result for dangling prerequisite")
	}
	if !containsIssue(res.Issues, "nonexistent") {
		t.Errorf("issues should mention the missing ID, got %v", res.Issues)
	}
}

func TestValidate_DetectsSelfReference(t *testing.T) {
	res := New([]ConceptNode{node("a", "A", "a")}).Validate()
	if res.Valid {
		t.Fatal("expected invalid result for self reference")
	}
	if !containsIssue(res.Issues, "lists itself") {
		t.Errorf("issues should mention the self reference, got %v", res.Issues)
	}
}

func TestValidate_DetectsDuplicateSlug(t *testing.T) {
	a := node("a", "A")
	b := node("b", "B")
	b.Slug = "a"
	res := New([]ConceptNode{a, b}).Validate()
	if res.Valid {
		t.Fatal("expected invalid result for duplicate slug")
	}
	if !containsIssue(res.Issues, "duplicate slug") {
		t.Errorf("issues should mention the duplicate slug, got %v", res.Issues)
	}
}

func TestValidate_DetectsDuplicateID(t *testing.T) {
	a := node("a", "A")
	dup := node("a", "A again")
	dup.Slug = "a-again"
	res := New([]ConceptNode{a, dup}).Validate()
	if res.Valid {
		t.Fatal("expected invalid result for duplicate ID")
	}
	if !containsIssue(res.Issues, "duplicate concept ID") {
		t.Errorf("issues should mention the duplicate ID, got %v", res.Issues)
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	nodes := []ConceptNode{
		node("a", "A", "b", "ghost"),
		node("b", "B", "a"),
		node("c", "C", "c"),
	}
	res := New(nodes).Validate()
	for _, want := range []string{"ghost", "lists itself", "a -> b -> a", "c -> c"} {
		if !containsIssue(res.Issues, want) {
			t.Errorf("missing issue containing %q in %v", want, res.Issues)
		}
	}
}

func containsIssue(issues []string, substr string) bool {
	for _, is := range issues {
		if strings.Contains(is, substr) {
			return true
		}
	}
	return false
}

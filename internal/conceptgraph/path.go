package conceptgraph

import (
	"fmt"

	"github.com/abhisek/studyloop/internal/ids"
)

// IsUnlocked returns true if every known prerequisite of id is mastered.
func (g *Graph) IsUnlocked(id ids.ConceptID, mastered IDSet) bool {
	if !g.Has(id) {
		return false
	}
	for _, prereqID := range g.prereqs[id] {
		if g.Has(prereqID) && !mastered.Has(prereqID) {
			return false
		}
	}
	return true
}

// Available returns concepts that are unlocked but not yet mastered, in
// topological order.
func (g *Graph) Available(mastered IDSet) ([]ConceptNode, error) {
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}
	var result []ConceptNode
	for _, n := range order {
		if !mastered.Has(n.ID) && g.IsUnlocked(n.ID, mastered) {
			result = append(result, n)
		}
	}
	return result, nil
}

// LearningPath returns the concepts still to be mastered on the way to
// target: its unmastered ancestors followed by target itself, in
// topological order. An already mastered target yields an empty path.
func (g *Graph) LearningPath(target ids.ConceptID, mastered IDSet) ([]ConceptNode, error) {
	if !g.Has(target) {
		return nil, fmt.Errorf("learning path to %q: %w", target, ErrUnknownConcept)
	}
	if mastered.Has(target) {
		return nil, nil
	}
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}
	needed := g.Ancestors(target)
	needed.add(target)

	var path []ConceptNode
	for _, n := range order {
		if needed.Has(n.ID) && !mastered.Has(n.ID) {
			path = append(path, n)
		}
	}
	return path, nil
}

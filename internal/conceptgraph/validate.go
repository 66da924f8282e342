package conceptgraph

import (
	"fmt"

	"github.com/abhisek/studyloop/internal/ids"
)

// ValidationResult is the outcome of an integrity check. Issues is empty
// exactly when Valid is true.
type ValidationResult struct {
	Valid  bool
	Issues []string
}

// Validate checks the node set for duplicate ids, self references, dangling
// prerequisites, duplicate slugs and prerequisite cycles. It reports every
// problem found rather than stopping at the first.
func (g *Graph) Validate() ValidationResult {
	var issues []string

	seenID := make(IDSet, len(g.nodes))
	for _, n := range g.nodes {
		if seenID.Has(n.ID) {
			issues = append(issues, fmt.Sprintf("duplicate concept ID: %q", n.ID))
		}
		seenID.add(n.ID)
	}

	for _, n := range g.nodes {
		for _, prereqID := range n.Prerequisites {
			switch {
			case prereqID == n.ID:
				issues = append(issues, fmt.Sprintf("concept %q lists itself as a prerequisite", n.ID))
			case !g.Has(prereqID):
				issues = append(issues, fmt.Sprintf("concept %q references nonexistent prerequisite %q", n.ID, prereqID))
			}
		}
	}

	slugOwner := make(map[string]ids.ConceptID, len(g.nodes))
	for _, n := range g.nodes {
		if n.Slug == "" {
			continue
		}
		if owner, ok := slugOwner[n.Slug]; ok {
			issues = append(issues, fmt.Sprintf("duplicate slug %q on concepts %q and %q", n.Slug, owner, n.ID))
			continue
		}
		slugOwner[n.Slug] = n.ID
	}

	for _, cycle := range g.DetectCycles() {
		issues = append(issues, "cycle detected: "+formatPath(cycle))
	}

	return ValidationResult{Valid: len(issues) == 0, Issues: issues}
}

package conceptgraph

import (
	"time"

	"github.com/abhisek/studyloop/internal/ids"
)

// ConceptKind classifies what sort of knowledge a concept node represents.
type ConceptKind string

const (
	KindDefinition ConceptKind = "definition"
	KindTheorem    ConceptKind = "theorem"
	KindTechnique  ConceptKind = "technique"
	KindPrinciple  ConceptKind = "principle"
	KindFact       ConceptKind = "fact"
	KindSkill      ConceptKind = "skill"
)

// AllKinds returns every concept kind in display order.
func AllKinds() []ConceptKind {
	return []ConceptKind{
		KindDefinition,
		KindTheorem,
		KindTechnique,
		KindPrinciple,
		KindFact,
		KindSkill,
	}
}

// KindDisplayName returns a human-readable name for a kind.
func KindDisplayName(k ConceptKind) string {
	switch k {
	case KindDefinition:
		return "Definition"
	case KindTheorem:
		return "Theorem"
	case KindTechnique:
		return "Technique"
	case KindPrinciple:
		return "Principle"
	case KindFact:
		return "Fact"
	case KindSkill:
		return "Skill"
	default:
		return string(k)
	}
}

// ConceptNode is a single node in the prerequisite graph.
// Prerequisites lists the concepts this one requires.
type ConceptNode struct {
	ID            ids.ConceptID   `json:"id"`
	DomainID      ids.DomainID    `json:"domain_id"`
	Name          string          `json:"name"`
	Slug          string          `json:"slug"`
	Kind          ConceptKind     `json:"kind"`
	Difficulty    int             `json:"difficulty"`
	Importance    int             `json:"importance"`
	Prerequisites []ids.ConceptID `json:"prerequisites"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Edge is a "requires" relation: From requires To.
type Edge struct {
	From ids.ConceptID `json:"from"`
	To   ids.ConceptID `json:"to"`
}

// IDSet is a set of concept ids.
type IDSet map[ids.ConceptID]struct{}

// Has reports whether id is in the set.
func (s IDSet) Has(id ids.ConceptID) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) add(id ids.ConceptID) {
	s[id] = struct{}{}
}

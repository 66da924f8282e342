// Package ids defines the opaque identifier types used across the engine.
// Each entity kind gets its own named type so the compiler rejects, for
// example, a UserID where an ExerciseTemplateID is expected.
package ids

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

type (
	ConceptID          string
	DomainID           string
	UserID             string
	ExerciseTemplateID string
	ExerciseVariantID  string
	SessionID          string
	AttemptID          string
	SchedulerItemID    string
	BrickStateID       string
)

// BrickKind distinguishes the two kinds of trackable mastery units.
type BrickKind string

const (
	BrickConcept  BrickKind = "concept"
	BrickExercise BrickKind = "exercise"
)

// BrickRef points at a concept or an exercise template.
type BrickRef struct {
	Kind BrickKind `json:"kind"`
	ID   string    `json:"id"`
}

// ConceptBrick returns the brick reference for a concept.
func ConceptBrick(id ConceptID) BrickRef {
	return BrickRef{Kind: BrickConcept, ID: string(id)}
}

// ExerciseBrick returns the brick reference for an exercise template.
func ExerciseBrick(id ExerciseTemplateID) BrickRef {
	return BrickRef{Kind: BrickExercise, ID: string(id)}
}

func (b BrickRef) String() string {
	return string(b.Kind) + ":" + b.ID
}

// Source produces fresh, collision-resistant identifiers.
type Source interface {
	NewID() string
}

// UUIDSource issues random (version 4) UUID strings: 36 characters, 122 bits of entropy.
type UUIDSource struct{}

func (UUIDSource) NewID() string {
	return uuid.NewString()
}

// New issues an identifier of the requested kind from src.
func New[T ~string](src Source) T {
	return T(src.NewID())
}

// Sequence is a deterministic Source for tests: prefix-1, prefix-2, ...
type Sequence struct {
	Prefix string

	mu sync.Mutex
	n  int
}

func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.Prefix + "-" + strconv.Itoa(s.n)
}

package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/studyloop/internal/conceptgraph"
	"github.com/abhisek/studyloop/internal/ids"
	"github.com/abhisek/studyloop/internal/mastery"
	"github.com/abhisek/studyloop/internal/spacedrep"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when creating a record whose id is taken.
	ErrConflict = errors.New("already exists")
)

// ExerciseTemplate is an exercise the learner can practice, linked to the
// concepts it exercises. Its content lives with the authoring collaborator.
type ExerciseTemplate struct {
	ID         ids.ExerciseTemplateID `json:"id"`
	Title      string                 `json:"title"`
	ConceptIDs []ids.ConceptID        `json:"concept_ids"`
	Difficulty int                    `json:"difficulty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// ConceptRepo stores concept nodes.
type ConceptRepo interface {
	Get(ctx context.Context, id ids.ConceptID) (conceptgraph.ConceptNode, error)

	// ListByDomain returns concepts whose domain equals prefix or lies
	// beneath it.
	ListByDomain(ctx context.Context, prefix ids.DomainID) ([]conceptgraph.ConceptNode, error)

	// List returns every concept ordered by id.
	List(ctx context.Context) ([]conceptgraph.ConceptNode, error)

	Create(ctx context.Context, n conceptgraph.ConceptNode) error
	Update(ctx context.Context, n conceptgraph.ConceptNode) error
	Delete(ctx context.Context, id ids.ConceptID) error
}

// ExerciseRepo stores exercise templates.
type ExerciseRepo interface {
	Get(ctx context.Context, id ids.ExerciseTemplateID) (ExerciseTemplate, error)
	List(ctx context.Context) ([]ExerciseTemplate, error)

	// ListByConcept returns templates linked to the concept.
	ListByConcept(ctx context.Context, id ids.ConceptID) ([]ExerciseTemplate, error)

	Create(ctx context.Context, t ExerciseTemplate) error
	Update(ctx context.Context, t ExerciseTemplate) error
	Delete(ctx context.Context, id ids.ExerciseTemplateID) error
}

// AttemptRepo stores exercise attempts. Attempts are append-only.
type AttemptRepo interface {
	Get(ctx context.Context, id ids.AttemptID) (mastery.Attempt, error)
	Create(ctx context.Context, a mastery.Attempt) error

	// ListByTemplate returns a user's attempts on a template, oldest first.
	ListByTemplate(ctx context.Context, user ids.UserID, tpl ids.ExerciseTemplateID) ([]mastery.Attempt, error)

	// ListByUser returns all of a user's attempts, oldest first.
	ListByUser(ctx context.Context, user ids.UserID) ([]mastery.Attempt, error)
}

// BrickStateRepo stores per-(user, brick) mastery records.
type BrickStateRepo interface {
	Get(ctx context.Context, user ids.UserID, brick ids.BrickRef) (mastery.State, error)

	// Upsert replaces the record for the state's user and brick.
	Upsert(ctx context.Context, st mastery.State) error

	ListByUser(ctx context.Context, user ids.UserID) ([]mastery.State, error)
}

// SchedulerItemRepo stores review items.
type SchedulerItemRepo interface {
	Get(ctx context.Context, id ids.SchedulerItemID) (spacedrep.Item, error)
	Create(ctx context.Context, it spacedrep.Item) error
	Update(ctx context.Context, it spacedrep.Item) error
	Delete(ctx context.Context, id ids.SchedulerItemID) error

	// ListPending returns a user's pending items by scheduled time.
	ListPending(ctx context.Context, user ids.UserID) ([]spacedrep.Item, error)

	// ListByTemplate returns a user's items for a template, pending and
	// completed, by scheduled time.
	ListByTemplate(ctx context.Context, user ids.UserID, tpl ids.ExerciseTemplateID) ([]spacedrep.Item, error)
}

// Repos bundles the repositories a service needs.
type Repos struct {
	Concepts    ConceptRepo
	Exercises   ExerciseRepo
	Attempts    AttemptRepo
	BrickStates BrickStateRepo
	Items       SchedulerItemRepo
}

// Transactor runs fn against repositories whose writes land together: all of
// them when fn returns nil, none of them otherwise.
type Transactor interface {
	InTx(ctx context.Context, fn func(Repos) error) error
}

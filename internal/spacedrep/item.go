package spacedrep

import (
	"errors"
	"slices"
	"time"

	"github.com/abhisek/studyloop/internal/ids"
	"github.com/abhisek/studyloop/internal/mastery"
)

// ErrItemCompleted is returned when a completed item is changed.
var ErrItemCompleted = errors.New("scheduler item already completed")

// Reason is why a review was scheduled.
type Reason string

const (
	ReasonInitial       Reason = "initial"
	ReasonReview        Reason = "review"
	ReasonCramFollowup  Reason = "cram-followup"
	ReasonErrorRecovery Reason = "error-recovery"
	ReasonUserRequest   Reason = "user-request"
)

// ItemStatus is the lifecycle state of a scheduler item.
type ItemStatus string

const (
	StatusPending   ItemStatus = "pending"
	StatusCompleted ItemStatus = "completed"
)

// Item is a single review obligation. It starts pending and moves to
// completed exactly once; rescheduling keeps it pending.
type Item struct {
	ID                   ids.SchedulerItemID    `json:"id"`
	UserID               ids.UserID             `json:"user_id"`
	TemplateID           ids.ExerciseTemplateID `json:"template_id"`
	VariantID            ids.ExerciseVariantID  `json:"variant_id,omitempty"`
	ConceptIDs           []ids.ConceptID        `json:"concept_ids,omitempty"`
	ScheduledFor         time.Time              `json:"scheduled_for"`
	Reason               Reason                 `json:"reason"`
	RecommendedMode      mastery.Mode           `json:"recommended_mode"`
	Priority             int                    `json:"priority"`
	Completed            bool                   `json:"completed"`
	CompletedAt          *time.Time             `json:"completed_at,omitempty"`
	CompletedByAttemptID ids.AttemptID          `json:"completed_by_attempt_id,omitempty"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

// NewItem materializes a proposal as a pending item.
func NewItem(id ids.SchedulerItemID, p Proposal, priority int, now time.Time) Item {
	return Item{
		ID:              id,
		UserID:          p.UserID,
		TemplateID:      p.TemplateID,
		VariantID:       p.VariantID,
		ConceptIDs:      slices.Clone(p.ConceptIDs),
		ScheduledFor:    p.ScheduledFor,
		Reason:          p.Reason,
		RecommendedMode: p.RecommendedMode,
		Priority:        priority,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Status returns the item's lifecycle state.
func (it *Item) Status() ItemStatus {
	if it.Completed {
		return StatusCompleted
	}
	return StatusPending
}

// Complete marks the item as done by the given attempt.
func (it *Item) Complete(attemptID ids.AttemptID, at time.Time) error {
	if it.Completed {
		return ErrItemCompleted
	}
	it.Completed = true
	it.CompletedAt = &at
	it.CompletedByAttemptID = attemptID
	it.UpdatedAt = at
	return nil
}

// Reschedule moves a pending item to a new date with a new reason.
func (it *Item) Reschedule(scheduledFor time.Time, reason Reason, now time.Time) error {
	if it.Completed {
		return ErrItemCompleted
	}
	it.ScheduledFor = scheduledFor
	it.Reason = reason
	it.UpdatedAt = now
	return nil
}

// PrimaryConcept returns the first linked concept id, if any.
func (it *Item) PrimaryConcept() (ids.ConceptID, bool) {
	if len(it.ConceptIDs) == 0 {
		return "", false
	}
	return it.ConceptIDs[0], true
}

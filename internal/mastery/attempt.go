package mastery

import (
	"slices"
	"time"

	"github.com/abhisek/studyloop/internal/ids"
)

// Outcome is the graded result of a single subtask.
type Outcome string

const (
	OutcomeCorrect          Outcome = "correct"
	OutcomePartiallyCorrect Outcome = "partially-correct"
	OutcomeIncorrect        Outcome = "incorrect"
	OutcomeSkipped          Outcome = "skipped"
)

// Mode is how an attempt was practiced.
type Mode string

const (
	ModeNormal Mode = "normal"
	ModeCram   Mode = "cram"
	ModeGuided Mode = "guided"
	ModeExam   Mode = "exam"
)

// Status is the lifecycle state of an attempt.
type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusAbandoned  Status = "abandoned"
)

// SubtaskResult records how one step of an exercise went.
type SubtaskResult struct {
	SubtaskID string        `json:"subtask_id"`
	Outcome   Outcome       `json:"outcome"`
	ErrorTags []string      `json:"error_tags,omitempty"`
	HintsUsed int           `json:"hints_used"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Attempt is one try at an exercise. Once finished it is an immutable
// historical fact; the derived fields are filled by Finalize and not
// recomputed afterwards.
type Attempt struct {
	ID         ids.AttemptID          `json:"id"`
	UserID     ids.UserID             `json:"user_id"`
	TemplateID ids.ExerciseTemplateID `json:"template_id"`
	VariantID  ids.ExerciseVariantID  `json:"variant_id,omitempty"`
	SessionID  ids.SessionID          `json:"session_id,omitempty"`
	Mode       Mode                   `json:"mode"`
	StartedAt  time.Time              `json:"started_at"`
	EndedAt    *time.Time             `json:"ended_at,omitempty"`
	Subtasks   []SubtaskResult        `json:"subtasks"`
	Status     Status                 `json:"status"`

	CorrectCount int      `json:"correct_count"`
	SubtaskCount int      `json:"subtask_count"`
	Accuracy     *float64 `json:"accuracy,omitempty"`
}

// Finalize closes an attempt with the given status and caches its derived
// counts and accuracy. An attempt that is already finished is returned as is.
func Finalize(a Attempt, endedAt time.Time, status Status) Attempt {
	if a.Finished() && a.Accuracy != nil {
		return a
	}
	a.Subtasks = slices.Clone(a.Subtasks)
	end := endedAt
	a.EndedAt = &end
	a.Status = status
	a.SubtaskCount = len(a.Subtasks)
	a.CorrectCount = 0
	for _, s := range a.Subtasks {
		if s.Outcome == OutcomeCorrect {
			a.CorrectCount++
		}
	}
	acc := AttemptAccuracy(a.Subtasks)
	a.Accuracy = &acc
	return a
}

// Finished reports whether the attempt has been completed or abandoned.
func (a Attempt) Finished() bool {
	return a.Status == StatusCompleted || a.Status == StatusAbandoned
}

// EndTime is when the attempt ended, or when it started if it never ended.
func (a Attempt) EndTime() time.Time {
	if a.EndedAt != nil {
		return *a.EndedAt
	}
	return a.StartedAt
}

// Duration returns the wall time of a completed attempt. Incomplete and
// abandoned attempts have no meaningful duration.
func (a Attempt) Duration() (time.Duration, bool) {
	if a.Status != StatusCompleted || a.EndedAt == nil || a.EndedAt.Before(a.StartedAt) {
		return 0, false
	}
	return a.EndedAt.Sub(a.StartedAt), true
}

// AccuracyValue returns the cached accuracy, computing it from the subtasks
// when the attempt was never finalized.
func (a Attempt) AccuracyValue() float64 {
	if a.Accuracy != nil {
		return *a.Accuracy
	}
	return AttemptAccuracy(a.Subtasks)
}

// recentFirst returns a copy of attempts ordered by end time, newest first.
// Attempts ending at the same instant keep their input order.
func recentFirst(attempts []Attempt) []Attempt {
	sorted := slices.Clone(attempts)
	slices.SortStableFunc(sorted, func(a, b Attempt) int {
		return b.EndTime().Compare(a.EndTime())
	})
	return sorted
}

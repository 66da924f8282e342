package spacedrep

import (
	"fmt"
	"time"

	"github.com/abhisek/studyloop/internal/ids"
	"github.com/abhisek/studyloop/internal/mastery"
)

const (
	// ErrorRecoveryAccuracy is the accuracy below which a quick retry is proposed.
	ErrorRecoveryAccuracy = 0.4

	// ErrorRecoveryDelay is how soon the retry is due.
	ErrorRecoveryDelay = 5 * time.Minute

	reviewConfidence        = 0.8
	errorRecoveryConfidence = 0.9
	cramFollowupConfidence  = 0.85
	initialConfidence       = 1.0
)

// Proposal is a suggested review that has not been stored yet.
type Proposal struct {
	UserID          ids.UserID             `json:"user_id"`
	TemplateID      ids.ExerciseTemplateID `json:"template_id"`
	VariantID       ids.ExerciseVariantID  `json:"variant_id,omitempty"`
	ConceptIDs      []ids.ConceptID        `json:"concept_ids,omitempty"`
	ScheduledFor    time.Time              `json:"scheduled_for"`
	Reason          Reason                 `json:"reason"`
	RecommendedMode mastery.Mode           `json:"recommended_mode"`
	IntervalDays    int                    `json:"interval_days"`
	Confidence      float64                `json:"confidence"`
	Rationale       string                 `json:"rationale"`
}

// ProposeNextReviews suggests follow-up reviews after an attempt. There is
// always a spaced review; a low-accuracy attempt adds an error-recovery
// retry and a cram attempt adds a next-morning follow-up. bm is the brick's
// mastery after the attempt and may be nil.
func ProposeNextReviews(user ids.UserID, attempt mastery.Attempt, bm *mastery.BrickMastery, prevIntervalDays int, now time.Time) []Proposal {
	accuracy := attempt.AccuracyValue()
	attemptCount := 1
	if bm != nil && bm.TotalAttempts > 0 {
		attemptCount = bm.TotalAttempts
	}
	interval := NextInterval(accuracy, prevIntervalDays, attemptCount)

	base := Proposal{
		UserID:     user,
		TemplateID: attempt.TemplateID,
		VariantID:  attempt.VariantID,
	}

	review := base
	review.ScheduledFor = ScheduledDate(now, interval)
	review.Reason = ReasonReview
	review.RecommendedMode = mastery.ModeNormal
	review.IntervalDays = interval
	review.Confidence = reviewConfidence
	review.Rationale = fmt.Sprintf("accuracy %.0f%% on attempt %d: review in %d day(s)", accuracy*100, attemptCount, interval)
	proposals := []Proposal{review}

	if accuracy < ErrorRecoveryAccuracy {
		retry := base
		retry.ScheduledFor = now.Add(ErrorRecoveryDelay)
		retry.Reason = ReasonErrorRecovery
		retry.RecommendedMode = mastery.ModeGuided
		retry.Confidence = errorRecoveryConfidence
		retry.Rationale = fmt.Sprintf("accuracy %.0f%% is below %.0f%%: guided retry shortly", accuracy*100, ErrorRecoveryAccuracy*100)
		proposals = append(proposals, retry)
	}

	if attempt.Mode == mastery.ModeCram {
		followup := base
		followup.ScheduledFor = ScheduledDate(now, 1)
		followup.Reason = ReasonCramFollowup
		followup.RecommendedMode = mastery.ModeNormal
		followup.IntervalDays = 1
		followup.Confidence = cramFollowupConfidence
		followup.Rationale = "crammed material: check retention tomorrow morning"
		proposals = append(proposals, followup)
	}
	return proposals
}

// ProposeInitialSchedule suggests the first practice of a newly enrolled
// exercise, due immediately.
func ProposeInitialSchedule(user ids.UserID, templateID ids.ExerciseTemplateID, now time.Time) Proposal {
	return Proposal{
		UserID:          user,
		TemplateID:      templateID,
		ScheduledFor:    now,
		Reason:          ReasonInitial,
		RecommendedMode: mastery.ModeNormal,
		Confidence:      initialConfidence,
		Rationale:       "new exercise: first practice today",
	}
}

package progress

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/abhisek/studyloop/internal/ids"
	"github.com/abhisek/studyloop/internal/mastery"
	"github.com/abhisek/studyloop/internal/spacedrep"
	"github.com/abhisek/studyloop/internal/store"
)

// EnrollExercise stores the template if it is new and schedules its first
// practice for user. When user already has a pending item for the template
// that item is returned and nothing new is scheduled. Repeated concept ids
// on the template are dropped.
func (s *Service) EnrollExercise(ctx context.Context, user ids.UserID, tpl store.ExerciseTemplate) (spacedrep.Item, error) {
	now := s.clock.Now()
	tpl.ConceptIDs = uniqueConcepts(tpl.ConceptIDs)

	var (
		item    spacedrep.Item
		created bool
		added   bool
	)
	err := s.tx.InTx(ctx, func(r store.Repos) error {
		created, added = false, false
		stored, err := r.Exercises.Get(ctx, tpl.ID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			if err := requireConcepts(ctx, r.Concepts, tpl.ConceptIDs); err != nil {
				return err
			}
			tpl.CreatedAt = now
			if err := r.Exercises.Create(ctx, tpl); err != nil {
				return err
			}
			added = true
		case err != nil:
			return err
		default:
			tpl = stored
		}

		items, err := r.Items.ListByTemplate(ctx, user, tpl.ID)
		if err != nil {
			return err
		}
		for _, it := range items {
			if !it.Completed {
				item = it
				return nil
			}
		}

		p := spacedrep.ProposeInitialSchedule(user, tpl.ID, now)
		p.ConceptIDs = uniqueConcepts(tpl.ConceptIDs)
		item = spacedrep.NewItem(ids.New[ids.SchedulerItemID](s.ids), p, spacedrep.Priority(p.ScheduledFor, now, p.Reason, nil), now)
		if err := r.Items.Create(ctx, item); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return spacedrep.Item{}, err
	}

	if added {
		s.log.Info("exercise added", "exercise", tpl.ID, "concepts", len(tpl.ConceptIDs))
	}
	if created {
		s.metrics.ObserveProposal(string(item.Reason))
		s.log.Info("exercise enrolled", "user", user, "exercise", tpl.ID, "item", item.ID)
	}
	return item, nil
}

// AttemptResult is everything RecordAttempt changed.
type AttemptResult struct {
	Attempt  mastery.Attempt
	Exercise mastery.State
	Concepts []mastery.State

	// NewlyMastered lists bricks that crossed the threshold for the first time.
	NewlyMastered []ids.BrickRef

	Completed  []spacedrep.Item
	Scheduled  []spacedrep.Item
	Superseded []ids.SchedulerItemID
}

// RecordAttempt finalizes and stores an attempt, then brings everything
// derived from it up to date:
//
//   - mastery of the exercise brick and of every concept it exercises
//   - pending items for the exercise due by the end of today are completed
//     (completed attempts only)
//   - later pending review items for the exercise are replaced by the new
//     spaced review
//   - follow-up reviews are proposed and stored
//
// All writes land together or not at all, so a failed call can be retried
// with the same attempt. An attempt without a status is treated as
// completed. Missing id and start time are filled in.
func (s *Service) RecordAttempt(ctx context.Context, a mastery.Attempt) (AttemptResult, error) {
	if a.UserID == "" {
		return AttemptResult{}, errors.New("record attempt: missing user")
	}

	now := s.clock.Now()
	if a.ID == "" {
		a.ID = ids.New[ids.AttemptID](s.ids)
	}
	if a.StartedAt.IsZero() {
		a.StartedAt = now
	}
	if a.Mode == "" {
		a.Mode = mastery.ModeNormal
	}
	status := a.Status
	if status == "" || status == mastery.StatusInProgress {
		status = mastery.StatusCompleted
	}
	end := now
	if a.EndedAt != nil {
		end = *a.EndedAt
	}
	a = mastery.Finalize(a, end, status)

	var (
		res     AttemptResult
		touched []ids.BrickRef
	)
	err := s.tx.InTx(ctx, func(r store.Repos) error {
		res = AttemptResult{Attempt: a}
		var err error
		touched, err = s.recordAttempt(ctx, r, &res, now)
		return err
	})
	if err != nil {
		// A failed commit can leave the stored outcome unknown.
		s.forgetMastery(ctx, a.UserID, touched)
		return AttemptResult{}, err
	}

	s.metrics.ObserveAttempt(string(a.Mode), string(a.Status))
	for _, st := range append([]mastery.State{res.Exercise}, res.Concepts...) {
		s.cacheMastery(ctx, st.UserID, st.Brick, st.Mastery)
		s.metrics.ObserveMastery(string(st.Brick.Kind), st.Mastery.MasteryScore, slices.Contains(res.NewlyMastered, st.Brick))
	}
	for range res.Completed {
		s.metrics.ObserveCompletion()
	}
	for _, it := range res.Scheduled {
		s.metrics.ObserveProposal(string(it.Reason))
	}

	s.log.Info("attempt recorded",
		"user", a.UserID,
		"attempt", a.ID,
		"exercise", a.TemplateID,
		"accuracy", a.AccuracyValue(),
		"score", res.Exercise.Mastery.MasteryScore,
		"completed", len(res.Completed),
		"scheduled", len(res.Scheduled),
	)
	for _, b := range res.NewlyMastered {
		s.log.Info("brick mastered", "user", a.UserID, "brick", b.String())
	}
	return res, nil
}

// recordAttempt does the writes of RecordAttempt against r. It returns the
// bricks it set out to update.
func (s *Service) recordAttempt(ctx context.Context, r store.Repos, res *AttemptResult, now time.Time) ([]ids.BrickRef, error) {
	a := res.Attempt
	tpl, err := r.Exercises.Get(ctx, a.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("record attempt: %w", err)
	}
	conceptIDs := uniqueConcepts(tpl.ConceptIDs)

	exBrick := ids.ExerciseBrick(tpl.ID)
	touched := []ids.BrickRef{exBrick}
	for _, id := range conceptIDs {
		touched = append(touched, ids.ConceptBrick(id))
	}

	history, err := r.Attempts.ListByUser(ctx, a.UserID)
	if err != nil {
		return touched, fmt.Errorf("load attempts: %w", err)
	}
	if err := r.Attempts.Create(ctx, a); err != nil {
		return touched, err
	}

	exPrior := filterAttempts(history, func(h mastery.Attempt) bool { return h.TemplateID == tpl.ID })
	exState, newly, err := s.updateBrick(ctx, r, a, exBrick, exPrior, now)
	if err != nil {
		return touched, err
	}
	if newly {
		res.NewlyMastered = append(res.NewlyMastered, exBrick)
	}

	for _, conceptID := range conceptIDs {
		linked, err := r.Exercises.ListByConcept(ctx, conceptID)
		if err != nil {
			return touched, fmt.Errorf("load exercises for %q: %w", conceptID, err)
		}
		templates := make(map[ids.ExerciseTemplateID]struct{}, len(linked))
		for _, t := range linked {
			templates[t.ID] = struct{}{}
		}
		templates[tpl.ID] = struct{}{}

		brick := ids.ConceptBrick(conceptID)
		prior := filterAttempts(history, func(h mastery.Attempt) bool {
			_, ok := templates[h.TemplateID]
			return ok
		})
		st, newly, err := s.updateBrick(ctx, r, a, brick, prior, now)
		if err != nil {
			return touched, err
		}
		if err := saveState(ctx, r, st); err != nil {
			return touched, err
		}
		res.Concepts = append(res.Concepts, st)
		if newly {
			res.NewlyMastered = append(res.NewlyMastered, brick)
		}
	}

	pending, err := r.Items.ListByTemplate(ctx, a.UserID, tpl.ID)
	if err != nil {
		return touched, fmt.Errorf("load items: %w", err)
	}
	dueBy := spacedrep.EndOfDay(now)
	for _, it := range pending {
		if it.Completed {
			continue
		}
		switch {
		case !it.ScheduledFor.After(dueBy):
			if a.Status != mastery.StatusCompleted {
				continue
			}
			if err := it.Complete(a.ID, now); err != nil {
				return touched, err
			}
			if err := r.Items.Update(ctx, it); err != nil {
				return touched, err
			}
			res.Completed = append(res.Completed, it)
		case it.Reason == spacedrep.ReasonReview:
			if err := r.Items.Delete(ctx, it.ID); err != nil {
				return touched, err
			}
			res.Superseded = append(res.Superseded, it.ID)
		}
	}

	bm := exState.Mastery
	for _, p := range spacedrep.ProposeNextReviews(a.UserID, a, &bm, exState.LastIntervalDays, now) {
		p.ConceptIDs = conceptIDs
		it := spacedrep.NewItem(ids.New[ids.SchedulerItemID](s.ids), p, spacedrep.Priority(p.ScheduledFor, now, p.Reason, &bm), now)
		if err := r.Items.Create(ctx, it); err != nil {
			return touched, err
		}
		if p.Reason == spacedrep.ReasonReview {
			exState.LastIntervalDays = p.IntervalDays
		}
		res.Scheduled = append(res.Scheduled, it)
	}

	if err := saveState(ctx, r, exState); err != nil {
		return touched, err
	}
	res.Exercise = exState
	return touched, nil
}

// updateBrick recomputes one brick's mastery from prior plus the new
// attempt. The attempt's cram session is counted only the first time the
// session touches this brick.
func (s *Service) updateBrick(ctx context.Context, r store.Repos, a mastery.Attempt, brick ids.BrickRef, prior []mastery.Attempt, now time.Time) (mastery.State, bool, error) {
	st, err := r.BrickStates.Get(ctx, a.UserID, brick)
	var prev *mastery.BrickMastery
	switch {
	case errors.Is(err, store.ErrNotFound):
		st = mastery.State{
			ID:     ids.New[ids.BrickStateID](s.ids),
			UserID: a.UserID,
			Brick:  brick,
		}
	case err != nil:
		return st, false, err
	default:
		prevMastery := st.Mastery
		prev = &prevMastery
	}

	cram := mastery.NewCramSessions()
	if a.Mode == mastery.ModeCram && a.SessionID != "" && !sessionSeen(prior, a.SessionID) {
		cram = mastery.NewCramSessions(a.SessionID)
	}

	all := append(prior[:len(prior):len(prior)], a)
	next := mastery.Update(prev, all, cram, now, s.opts.Mastery)
	newly := mastery.NewlyMastered(prev, next)

	st.Mastery = next
	st.UpdatedAt = now
	return st, newly, nil
}

func saveState(ctx context.Context, r store.Repos, st mastery.State) error {
	if err := r.BrickStates.Upsert(ctx, st); err != nil {
		return fmt.Errorf("save mastery %s: %w", st.Brick, err)
	}
	return nil
}

// uniqueConcepts drops repeated ids, keeping first occurrences in order.
func uniqueConcepts(list []ids.ConceptID) []ids.ConceptID {
	var out []ids.ConceptID
	for _, id := range list {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func filterAttempts(attempts []mastery.Attempt, keep func(mastery.Attempt) bool) []mastery.Attempt {
	var out []mastery.Attempt
	for _, a := range attempts {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func sessionSeen(attempts []mastery.Attempt, session ids.SessionID) bool {
	for _, a := range attempts {
		if a.SessionID == session {
			return true
		}
	}
	return false
}

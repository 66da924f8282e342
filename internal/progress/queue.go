package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/studyloop/internal/ids"
	"github.com/abhisek/studyloop/internal/mastery"
	"github.com/abhisek/studyloop/internal/spacedrep"
)

// Window selects which pending items a queue covers.
type Window string

const (
	WindowDue   Window = "due"
	WindowToday Window = "today"
	WindowWeek  Window = "week"
	WindowAll   Window = "all"
)

// ParseWindow maps a window name to a Window. The empty string means today.
func ParseWindow(s string) (Window, error) {
	switch w := Window(s); w {
	case "":
		return WindowToday, nil
	case WindowDue, WindowToday, WindowWeek, WindowAll:
		return w, nil
	default:
		return "", fmt.Errorf("unknown queue window %q (want due, today, week or all)", s)
	}
}

// Queue is a prioritized slice of pending reviews.
type Queue struct {
	Items   []spacedrep.Item
	Total   int
	Overdue int
}

// ReviewQueue returns user's pending reviews inside window with priorities
// refreshed against the current time, most urgent first. Items are
// interleaved by concept when enabled. limit <= 0 uses the configured limit;
// a configured limit <= 0 returns everything.
func (s *Service) ReviewQueue(ctx context.Context, user ids.UserID, window Window, limit int) (Queue, error) {
	now := s.clock.Now()

	pending, err := s.repos.Items.ListPending(ctx, user)
	if err != nil {
		return Queue{}, fmt.Errorf("load queue: %w", err)
	}

	var items []spacedrep.Item
	switch window {
	case WindowDue:
		items = spacedrep.FilterDue(pending, now)
	case WindowWeek:
		items = spacedrep.FilterDueThisWeek(pending, now)
	case WindowAll:
		items = pending
	default:
		items = spacedrep.FilterDueToday(pending, now)
	}

	lookup, err := s.exerciseMastery(ctx, user)
	if err != nil {
		return Queue{}, err
	}
	items = spacedrep.SortByPriority(spacedrep.Reprioritize(items, now, lookup))
	if s.opts.Interleave {
		items = spacedrep.InterleaveByConcept(items)
	}

	q := Queue{Total: len(items), Overdue: spacedrep.CountOverdue(pending, now)}
	if limit <= 0 {
		limit = s.opts.QueueLimit
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	q.Items = items

	s.metrics.ObserveQueue(q.Total, q.Overdue)
	s.log.Debug("queue built", "user", user, "window", window, "total", q.Total, "overdue", q.Overdue)
	return q, nil
}

// PendingItems returns every pending item for user, soonest first.
func (s *Service) PendingItems(ctx context.Context, user ids.UserID) ([]spacedrep.Item, error) {
	return s.repos.Items.ListPending(ctx, user)
}

// Reschedule moves a pending item to at as a user request and refreshes
// its priority. Completed items cannot be moved.
func (s *Service) Reschedule(ctx context.Context, id ids.SchedulerItemID, at time.Time) (spacedrep.Item, error) {
	it, err := s.repos.Items.Get(ctx, id)
	if err != nil {
		return it, err
	}
	now := s.clock.Now()
	if err := it.Reschedule(at, spacedrep.ReasonUserRequest, now); err != nil {
		return it, fmt.Errorf("reschedule %q: %w", id, err)
	}

	var bm *mastery.BrickMastery
	if m, ok, err := s.Mastery(ctx, it.UserID, ids.ExerciseBrick(it.TemplateID)); err != nil {
		return it, err
	} else if ok {
		bm = &m
	}
	it.Priority = spacedrep.Priority(it.ScheduledFor, now, it.Reason, bm)

	if err := s.repos.Items.Update(ctx, it); err != nil {
		return it, err
	}
	s.log.Info("item rescheduled", "item", id, "scheduled_for", at)
	return it, nil
}

// RemoveItem deletes a scheduler item.
func (s *Service) RemoveItem(ctx context.Context, id ids.SchedulerItemID) error {
	if err := s.repos.Items.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("item removed", "item", id)
	return nil
}

func (s *Service) exerciseMastery(ctx context.Context, user ids.UserID) (func(spacedrep.Item) *mastery.BrickMastery, error) {
	states, err := s.repos.BrickStates.ListByUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("load mastery: %w", err)
	}
	byTemplate := make(map[ids.ExerciseTemplateID]mastery.BrickMastery, len(states))
	for _, st := range states {
		if st.Brick.Kind == ids.BrickExercise {
			byTemplate[ids.ExerciseTemplateID(st.Brick.ID)] = st.Mastery
		}
	}
	return func(it spacedrep.Item) *mastery.BrickMastery {
		bm, ok := byTemplate[it.TemplateID]
		if !ok {
			return nil
		}
		return &bm
	}, nil
}

package spacedrep

import (
	"errors"
	"testing"
	"time"

	"github.com/abhisek/studyloop/internal/ids"
)

func TestItemLifecycle(t *testing.T) {
	p := ProposeInitialSchedule("u1", "tpl-1", now)
	p.ConceptIDs = []ids.ConceptID{"limits"}
	it := NewItem("item-1", p, 50, now)

	if it.Status() != StatusPending {
		t.Fatalf("new item status = %q, want pending", it.Status())
	}

	later := now.Add(48 * time.Hour)
	if err := it.Reschedule(later, ReasonUserRequest, now); err != nil {
		t.Fatalf("Reschedule: %v", err)
	}
	if !it.ScheduledFor.Equal(later) || it.Reason != ReasonUserRequest || it.Status() != StatusPending {
		t.Errorf("rescheduled item = %+v", it)
	}

	doneAt := now.Add(49 * time.Hour)
	if err := it.Complete("att-7", doneAt); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if it.Status() != StatusCompleted || it.CompletedByAttemptID != "att-7" || !it.CompletedAt.Equal(doneAt) {
		t.Errorf("completed item = %+v", it)
	}

	if err := it.Complete("att-8", doneAt); !errors.Is(err, ErrItemCompleted) {
		t.Errorf("second Complete err = %v, want ErrItemCompleted", err)
	}
	if err := it.Reschedule(later, ReasonReview, doneAt); !errors.Is(err, ErrItemCompleted) {
		t.Errorf("Reschedule after completion err = %v, want ErrItemCompleted", err)
	}
	if it.CompletedByAttemptID != "att-7" {
		t.Errorf("completed item was reopened: %+v", it)
	}
}

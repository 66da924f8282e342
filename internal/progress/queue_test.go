package progress

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyloop/internal/ids"
	"github.com/abhisek/studyloop/internal/mastery"
	"github.com/abhisek/studyloop/internal/spacedrep"
)

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in      string
		want    Window
		wantErr bool
	}{
		{"", WindowToday, false},
		{"due", WindowDue, false},
		{"today", WindowToday, false},
		{"week", WindowWeek, false},
		{"all", WindowAll, false},
		{"month", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWindow(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func itemIDs(items []spacedrep.Item) []ids.SchedulerItemID {
	out := make([]ids.SchedulerItemID, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestReviewQueue_Windows(t *testing.T) {
	opts := DefaultOptions()
	opts.Interleave = false
	f := newFixture(t, opts)
	ctx := context.Background()
	f.addConcepts(t, concept("limits"), concept("series"))

	enrolled(t, f, "ex-1", "limits")
	enrolled(t, f, "ex-2", "series")
	// Wrong answers: review tomorrow plus a retry in five minutes.
	res := record(t, f, mastery.Attempt{TemplateID: "ex-1", Subtasks: allWrong()})
	retry := res.Scheduled[1]
	tomorrow := res.Scheduled[0]

	q, err := f.svc.ReviewQueue(ctx, learner, WindowDue, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Total, "only ex-2's initial item is due now")

	q, err = f.svc.ReviewQueue(ctx, learner, WindowToday, 0)
	require.NoError(t, err)
	require.Equal(t, 2, q.Total)
	assert.Equal(t, retry.ID, q.Items[0].ID, "error recovery outranks the initial item")

	q, err = f.svc.ReviewQueue(ctx, learner, WindowWeek, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, q.Total)
	assert.Contains(t, itemIDs(q.Items), tomorrow.ID)

	q, err = f.svc.ReviewQueue(ctx, learner, WindowWeek, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, q.Total)
	assert.Len(t, q.Items, 2)
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.QueueSize))
}

func TestReviewQueue_OverdueAndRefreshedPriority(t *testing.T) {
	opts := DefaultOptions()
	opts.Interleave = false
	f := newFixture(t, opts)
	ctx := context.Background()
	f.addConcepts(t, concept("limits"))
	initial := enrolled(t, f, "ex-1", "limits")

	f.clock.Advance(72 * time.Hour)
	q, err := f.svc.ReviewQueue(ctx, learner, WindowDue, 0)
	require.NoError(t, err)
	require.Len(t, q.Items, 1)
	assert.Equal(t, initial.ID, q.Items[0].ID)
	assert.Equal(t, 1, q.Overdue)
	// Three days overdue.
	assert.Equal(t, 115, q.Items[0].Priority)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.OverdueItems))
}

func TestReviewQueue_Interleaves(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	ctx := context.Background()
	f.addConcepts(t, concept("limits"), concept("series"))

	a1 := enrolled(t, f, "a1", "limits")
	f.clock.Advance(time.Minute)
	a2 := enrolled(t, f, "a2", "limits")
	f.clock.Advance(time.Minute)
	b1 := enrolled(t, f, "b1", "series")
	f.clock.Advance(time.Hour)

	q, err := f.svc.ReviewQueue(ctx, learner, WindowDue, 0)
	require.NoError(t, err)
	// All three share a priority; sort keeps store order (by due time) and
	// interleaving alternates concepts.
	assert.Equal(t, []ids.SchedulerItemID{a1.ID, b1.ID, a2.ID}, itemIDs(q.Items))
}

func TestReschedule(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	ctx := context.Background()
	f.addConcepts(t, concept("limits"))
	initial := enrolled(t, f, "ex-1", "limits")

	at := start.Add(5 * 24 * time.Hour)
	it, err := f.svc.Reschedule(ctx, initial.ID, at)
	require.NoError(t, err)
	assert.Equal(t, at, it.ScheduledFor)
	assert.Equal(t, spacedrep.ReasonUserRequest, it.Reason)
	assert.Equal(t, 10, it.Priority)

	stored, err := f.mem.Repos().Items.Get(ctx, initial.ID)
	require.NoError(t, err)
	assert.Equal(t, at, stored.ScheduledFor)

	f.clock.Set(at)
	res := record(t, f, mastery.Attempt{TemplateID: "ex-1", Subtasks: allCorrect()})
	require.Len(t, res.Completed, 1)

	_, err = f.svc.Reschedule(ctx, initial.ID, at.Add(time.Hour))
	assert.ErrorIs(t, err, spacedrep.ErrItemCompleted)
}

func TestRemoveItem(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	ctx := context.Background()
	f.addConcepts(t, concept("limits"))
	initial := enrolled(t, f, "ex-1", "limits")

	require.NoError(t, f.svc.RemoveItem(ctx, initial.ID))
	pending, err := f.svc.PendingItems(ctx, learner)
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.Error(t, f.svc.RemoveItem(ctx, initial.ID))
}

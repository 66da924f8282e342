package spacedrep

import (
	"cmp"
	"slices"
	"time"

	"github.com/abhisek/studyloop/internal/ids"
	"github.com/abhisek/studyloop/internal/mastery"
)

// SortByPriority returns a copy of items ordered by descending priority.
// Equal priorities keep their input order.
func SortByPriority(items []Item) []Item {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b Item) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
	return sorted
}

// FilterDue returns pending items scheduled at or before cutoff.
func FilterDue(items []Item, cutoff time.Time) []Item {
	var due []Item
	for _, it := range items {
		if !it.Completed && !it.ScheduledFor.After(cutoff) {
			due = append(due, it)
		}
	}
	return due
}

// FilterDueToday returns pending items due by the end of now's day.
func FilterDueToday(items []Item, now time.Time) []Item {
	return FilterDue(items, EndOfDay(now))
}

// FilterDueThisWeek returns pending items due by the end of now's week,
// which ends on Sunday.
func FilterDueThisWeek(items []Item, now time.Time) []Item {
	return FilterDue(items, EndOfWeek(now))
}

// CountOverdue counts pending items whose date has already passed.
func CountOverdue(items []Item, now time.Time) int {
	n := 0
	for _, it := range items {
		if !it.Completed && it.ScheduledFor.Before(now) {
			n++
		}
	}
	return n
}

// InterleaveByConcept spreads items across concepts. Items are grouped by
// their first concept id, with unlinked items sharing one group, and then
// taken round-robin in order of each group's first appearance. Order within
// a group is preserved.
func InterleaveByConcept(items []Item) []Item {
	type group struct {
		items []Item
		next  int
	}
	var (
		order   []ids.ConceptID
		unkeyed = ids.ConceptID("")
		groups  = make(map[ids.ConceptID]*group)
	)
	for _, it := range items {
		key, ok := it.PrimaryConcept()
		if !ok {
			key = unkeyed
		}
		g, exists := groups[key]
		if !exists {
			g = &group{}
			groups[key] = g
			order = append(order, key)
		}
		g.items = append(g.items, it)
	}

	out := make([]Item, 0, len(items))
	for len(out) < len(items) {
		for _, key := range order {
			g := groups[key]
			if g.next < len(g.items) {
				out = append(out, g.items[g.next])
				g.next++
			}
		}
	}
	return out
}

// Reprioritize recomputes each item's priority against now. lookup returns
// the mastery of the item's brick, or nil when unknown.
func Reprioritize(items []Item, now time.Time, lookup func(Item) *mastery.BrickMastery) []Item {
	out := slices.Clone(items)
	for i := range out {
		var bm *mastery.BrickMastery
		if lookup != nil {
			bm = lookup(out[i])
		}
		out[i].Priority = Priority(out[i].ScheduledFor, now, out[i].Reason, bm)
	}
	return out
}

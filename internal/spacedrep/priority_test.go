package spacedrep

import (
	"testing"
	"time"

	"github.com/abhisek/studyloop/internal/mastery"
)

func TestPriority(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	tests := []struct {
		name string
		at   time.Time
		r    Reason
		bm   *mastery.BrickMastery
		want int
	}{
		{"overdue hours", now.Add(-time.Hour), ReasonReview, nil, 100},
		{"overdue three days", now.Add(-3 * day), ReasonReview, nil, 115},
		{"overdue capped", now.Add(-30 * day), ReasonReview, nil, 150},
		{"due today", now.Add(3 * time.Hour), ReasonReview, nil, 50},
		{"due this week", now.Add(3 * day), ReasonReview, nil, 10},
		{"far future", now.Add(20 * day), ReasonReview, nil, 0},
		{"error recovery", now.Add(5 * time.Minute), ReasonErrorRecovery, nil, 90},
		{"cram followup", now.Add(2 * day), ReasonCramFollowup, nil, 40},
		{"weak mastery", now.Add(20 * day), ReasonReview, &mastery.BrickMastery{MasteryScore: 30}, 20},
		{"medium mastery", now.Add(20 * day), ReasonReview, &mastery.BrickMastery{MasteryScore: 60}, 10},
		{"strong declining", now.Add(20 * day), ReasonReview, &mastery.BrickMastery{MasteryScore: 90, Trend: mastery.TrendDeclining}, 15},
		{"everything", now.Add(-2 * day), ReasonErrorRecovery, &mastery.BrickMastery{MasteryScore: 10, Trend: mastery.TrendDeclining}, 110 + 40 + 20 + 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Priority(tt.at, now, tt.r, tt.bm); got != tt.want {
				t.Errorf("Priority = %d, want %d", got, tt.want)
			}
		})
	}
}

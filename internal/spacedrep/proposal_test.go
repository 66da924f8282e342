package spacedrep

import (
	"testing"
	"time"

	"github.com/abhisek/studyloop/internal/mastery"
)

var now = time.Date(2026, 3, 4, 14, 30, 0, 0, time.UTC)

func attemptWith(acc float64, mode mastery.Mode) mastery.Attempt {
	end := now
	return mastery.Attempt{
		ID:         "att-1",
		UserID:     "u1",
		TemplateID: "tpl-1",
		Mode:       mode,
		StartedAt:  now.Add(-time.Minute),
		EndedAt:    &end,
		Status:     mastery.StatusCompleted,
		Accuracy:   &acc,
	}
}

func reasons(ps []Proposal) []Reason {
	out := make([]Reason, len(ps))
	for i, p := range ps {
		out[i] = p.Reason
	}
	return out
}

func TestProposeNextReviews_Counts(t *testing.T) {
	tests := []struct {
		name string
		acc  float64
		mode mastery.Mode
		want []Reason
	}{
		{"good normal", 0.9, mastery.ModeNormal, []Reason{ReasonReview}},
		{"poor normal", 0.2, mastery.ModeNormal, []Reason{ReasonReview, ReasonErrorRecovery}},
		{"good cram", 0.9, mastery.ModeCram, []Reason{ReasonReview, ReasonCramFollowup}},
		{"poor cram", 0.2, mastery.ModeCram, []Reason{ReasonReview, ReasonErrorRecovery, ReasonCramFollowup}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reasons(ProposeNextReviews("u1", attemptWith(tt.acc, tt.mode), nil, 0, now))
			if len(got) != len(tt.want) {
				t.Fatalf("reasons = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("reasons[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestProposeNextReviews_Details(t *testing.T) {
	bm := &mastery.BrickMastery{TotalAttempts: 5}
	ps := ProposeNextReviews("u1", attemptWith(0.2, mastery.ModeCram), bm, 8, now)

	review := ps[0]
	// mature brick: base 8 days * 0.5
	if review.IntervalDays != 4 {
		t.Errorf("review interval = %d, want 4", review.IntervalDays)
	}
	if want := time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC); !review.ScheduledFor.Equal(want) {
		t.Errorf("review at %v, want %v", review.ScheduledFor, want)
	}
	if review.Confidence != 0.8 || review.Rationale == "" {
		t.Errorf("review = %+v", review)
	}

	retry := ps[1]
	if !retry.ScheduledFor.Equal(now.Add(5*time.Minute)) || retry.Confidence != 0.9 {
		t.Errorf("retry = %+v", retry)
	}
	if retry.RecommendedMode != mastery.ModeGuided {
		t.Errorf("retry mode = %q, want guided", retry.RecommendedMode)
	}

	followup := ps[2]
	if want := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC); !followup.ScheduledFor.Equal(want) {
		t.Errorf("followup at %v, want %v", followup.ScheduledFor, want)
	}
	if followup.Confidence != 0.85 {
		t.Errorf("followup confidence = %v", followup.Confidence)
	}
	for _, p := range ps {
		if p.TemplateID != "tpl-1" || p.UserID != "u1" {
			t.Errorf("proposal lost its identity: %+v", p)
		}
	}
}

func TestProposeInitialSchedule(t *testing.T) {
	p := ProposeInitialSchedule("u1", "tpl-9", now)
	if p.Reason != ReasonInitial || p.Confidence != 1.0 || !p.ScheduledFor.Equal(now) {
		t.Errorf("initial proposal = %+v", p)
	}
}

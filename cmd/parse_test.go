package cmd

import (
	"testing"
	"time"

	"github.com/abhisek/studyloop/internal/ids"
	"github.com/abhisek/studyloop/internal/mastery"
)

func TestParseOutcomes(t *testing.T) {
	got, err := parseOutcomes("c, p,incorrect,s")
	if err != nil {
		t.Fatalf("parseOutcomes: %v", err)
	}
	want := []mastery.Outcome{
		mastery.OutcomeCorrect,
		mastery.OutcomePartiallyCorrect,
		mastery.OutcomeIncorrect,
		mastery.OutcomeSkipped,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d results, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Outcome != want[i] {
			t.Errorf("result %d = %q, want %q", i, got[i].Outcome, want[i])
		}
		if got[i].SubtaskID == "" {
			t.Errorf("result %d has no subtask id", i)
		}
	}

	if _, err := parseOutcomes("c,maybe"); err == nil {
		t.Error("expected error for unknown outcome")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    mastery.Mode
		wantErr bool
	}{
		{"", mastery.ModeNormal, false},
		{"cram", mastery.ModeCram, false},
		{"EXAM", mastery.ModeExam, false},
		{"speedrun", "", true},
	}
	for _, tt := range tests {
		got, err := parseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseOffset(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"3d", 72 * time.Hour, false},
		{"36h", 36 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"xd", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		got, err := parseOffset(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseOffset(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseOffset(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConceptIDs(t *testing.T) {
	got := conceptIDs(" limits,, series ")
	if len(got) != 2 || got[0] != ids.ConceptID("limits") || got[1] != ids.ConceptID("series") {
		t.Errorf("conceptIDs = %v", got)
	}
	if conceptIDs("") != nil {
		t.Error("empty list should be nil")
	}
	if got := conceptIDs("limits, series,limits"); len(got) != 2 {
		t.Errorf("repeated ids should collapse, got %v", got)
	}
}

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserve(t *testing.T) {
	m := New()

	m.ObserveAttempt("normal", "completed")
	m.ObserveAttempt("normal", "completed")
	m.ObserveAttempt("cram", "abandoned")
	m.ObserveMastery("concept", 82, true)
	m.ObserveMastery("concept", 85, false)
	m.ObserveProposal("review")
	m.ObserveCompletion()
	m.ObserveRejectedEdge()
	m.ObserveQueue(4, 1)

	if got := testutil.ToFloat64(m.AttemptsRecorded.WithLabelValues("normal", "completed")); got != 2 {
		t.Errorf("attempts normal/completed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.BricksMastered.WithLabelValues("concept")); got != 1 {
		t.Errorf("bricks mastered = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ItemsCompleted); got != 1 {
		t.Errorf("items completed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.EdgesRejected); got != 1 {
		t.Errorf("edges rejected = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.QueueSize); got != 4 {
		t.Errorf("queue size = %v, want 4", got)
	}
	if got := testutil.CollectAndCount(m.MasteryScore); got != 1 {
		t.Errorf("mastery histogram series = %d, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAttempt("normal", "completed")
	m.ObserveMastery("concept", 10, false)
	m.ObserveQueue(1, 0)
	if err := m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Errorf("WriteTextfile on nil: %v", err)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveProposal("initial")
	path := filepath.Join(t.TempDir(), "studyloop.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), `studyloop_review_proposals_total{reason="initial"} 1`) {
		t.Errorf("textfile missing proposal counter:\n%s", raw)
	}
}

package clock

import (
	"testing"
	"time"
)

func TestFixed_AdvanceAndSet(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewFixed(start)
	if !c.Now().Equal(start) {
		t.Fatalf("Now() = %v, want %v", c.Now(), start)
	}
	c.Advance(90 * time.Minute)
	if want := start.Add(90 * time.Minute); !c.Now().Equal(want) {
		t.Errorf("after Advance: Now() = %v, want %v", c.Now(), want)
	}
	later := start.AddDate(0, 0, 7)
	c.Set(later)
	if !c.Now().Equal(later) {
		t.Errorf("after Set: Now() = %v, want %v", c.Now(), later)
	}
}

package mastery

import (
	"testing"
	"time"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []time.Duration
		want   time.Duration
	}{
		{"empty", nil, 0},
		{"odd", []time.Duration{3 * time.Second, time.Second, 2 * time.Second}, 2 * time.Second},
		{"even", []time.Duration{4 * time.Second, time.Second, 3 * time.Second, 2 * time.Second}, 2500 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Median(tt.values); got != tt.want {
				t.Errorf("Median = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeTimeStats_CompletedOnly(t *testing.T) {
	abandoned := scored("c", 0, 3*time.Hour, 10*time.Minute)
	abandoned.Status = StatusAbandoned
	attempts := []Attempt{
		scored("a", 1, 0, time.Minute),
		scored("b", 1, time.Hour, 3*time.Minute),
		abandoned,
	}
	stats := ComputeTimeStats(attempts)
	if stats.Count != 2 {
		t.Fatalf("Count = %d, want 2", stats.Count)
	}
	if stats.Best != time.Minute || stats.Worst != 3*time.Minute || stats.Median != 2*time.Minute {
		t.Errorf("stats = %+v", stats)
	}
}

func TestStabilityScore(t *testing.T) {
	tests := []struct {
		name string
		accs []float64
		want float64
	}{
		{"no data", nil, 0},
		{"one point", []float64{0.7}, 50},
		{"identical", []float64{0.8, 0.8, 0.8}, 100},
		{"max variance", []float64{1, 0}, 0},
		// mean 0.5, variance 0.0625 -> 1 - 0.25
		{"quarter", []float64{0.75, 0.25}, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts []Attempt
			for i, acc := range tt.accs {
				attempts = append(attempts, scored("a", acc, time.Duration(i)*time.Hour, time.Minute))
			}
			got := StabilityScore(attempts, DefaultStabilityWindow, StabilityVarianceCeiling)
			if !almostEqual(got, tt.want) {
				t.Errorf("StabilityScore = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestStabilityScore_WindowDropsOldest(t *testing.T) {
	attempts := []Attempt{scored("outlier", 0, 0, time.Minute)}
	for i := 1; i <= 5; i++ {
		attempts = append(attempts, scored("a", 0.9, time.Duration(i)*time.Hour, time.Minute))
	}
	if got := StabilityScore(attempts, 5, StabilityVarianceCeiling); !almostEqual(got, 100) {
		t.Errorf("StabilityScore = %f, want 100", got)
	}
}

func TestStabilityScore_Ceiling(t *testing.T) {
	attempts := []Attempt{
		scored("a", 1, 0, time.Minute),
		scored("b", 0, time.Hour, time.Minute),
	}
	if got := StabilityScore(attempts, 5, 0.5); !almostEqual(got, 50) {
		t.Errorf("StabilityScore = %f, want 50", got)
	}
}

func seq(accs ...float64) []Attempt {
	out := make([]Attempt, len(accs))
	for i, acc := range accs {
		out[i] = scored("a", acc, time.Duration(i)*time.Hour, time.Minute)
	}
	return out
}

func TestDetectTrend(t *testing.T) {
	tests := []struct {
		name string
		accs []float64 // oldest first
		want Trend
	}{
		{"none", nil, TrendNew},
		{"two", []float64{0.5, 0.9}, TrendNew},
		{"three", []float64{0.95, 0.90, 0.92}, TrendNew},
		{"one historical", []float64{0.2, 0.9, 0.9, 0.9}, TrendStable},
		{"improving", []float64{0.5, 0.5, 0.9, 0.9, 0.9}, TrendImproving},
		{"declining", []float64{0.9, 0.9, 0.5, 0.5, 0.5}, TrendDeclining},
		{"within threshold", []float64{0.8, 0.8, 0.85, 0.85, 0.85}, TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectTrend(seq(tt.accs...), DefaultTrendRecent, DefaultTrendHistorical)
			if got != tt.want {
				t.Errorf("DetectTrend = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCorrectStreak(t *testing.T) {
	// newest last: 0.9, 0.85 extend; 0.5 stops the walk.
	got := CorrectStreak(seq(0.9, 0.5, 0.85, 0.9))
	if got != 2 {
		t.Errorf("CorrectStreak = %d, want 2", got)
	}
	if got := CorrectStreak(nil); got != 0 {
		t.Errorf("CorrectStreak(nil) = %d, want 0", got)
	}
}

func TestSpeedBonus(t *testing.T) {
	tests := []struct {
		name   string
		latest time.Duration
		count  int
		want   float64
	}{
		{"much faster", 70 * time.Second, 3, 10},
		{"faster", 90 * time.Second, 3, 5},
		{"same", 100 * time.Second, 3, 0},
		{"slower", 150 * time.Second, 3, 0},
		{"too few", 10 * time.Second, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts []Attempt
			for i := 0; i < tt.count-1; i++ {
				attempts = append(attempts, scored("a", 1, time.Duration(i)*time.Hour, 100*time.Second))
			}
			attempts = append(attempts, scored("latest", 1, 24*time.Hour, tt.latest))
			if got := SpeedBonus(attempts); got != tt.want {
				t.Errorf("SpeedBonus = %f, want %f", got, tt.want)
			}
		})
	}
}

package mastery

import (
	"slices"
	"time"
)

const (
	// DefaultStabilityWindow is how many recent attempts feed the stability score.
	DefaultStabilityWindow = 5

	// StabilityVarianceCeiling is the accuracy variance that maps to a stability
	// score of zero. 0.25 is the largest variance possible for values in [0, 1].
	StabilityVarianceCeiling = 0.25

	// DefaultTrendRecent is the number of most recent attempts in the trend window.
	DefaultTrendRecent = 3

	// DefaultTrendHistorical is the number of attempts compared against the
	// recent window.
	DefaultTrendHistorical = 5

	// TrendThreshold is the accuracy delta that counts as a real change.
	TrendThreshold = 0.10

	// StreakAccuracy is the minimum accuracy that extends a correct streak.
	StreakAccuracy = 0.8

	// minTrendAttempts is the fewest attempts for which a trend is reported.
	minTrendAttempts = 3

	// minSpeedAttempts is the fewest timed attempts before a speed bonus is awarded.
	minSpeedAttempts = 3
)

// Trend describes the direction of recent accuracy.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
	TrendNew       Trend = "new"
)

// TimeStats summarizes attempt durations.
type TimeStats struct {
	Median time.Duration `json:"median"`
	Best   time.Duration `json:"best"`
	Worst  time.Duration `json:"worst"`
	Count  int           `json:"count"`
}

// Median returns the median of values, or zero for an empty slice.
func Median(values []time.Duration) time.Duration {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// ComputeTimeStats computes median, best and worst duration over completed
// attempts only.
func ComputeTimeStats(attempts []Attempt) TimeStats {
	var durations []time.Duration
	for _, a := range attempts {
		if d, ok := a.Duration(); ok {
			durations = append(durations, d)
		}
	}
	if len(durations) == 0 {
		return TimeStats{}
	}
	return TimeStats{
		Median: Median(durations),
		Best:   slices.Min(durations),
		Worst:  slices.Max(durations),
		Count:  len(durations),
	}
}

// StabilityScore maps the accuracy variance of the most recent window
// attempts to 0-100. A single data point scores 50 and no data scores 0.
// A non-positive ceiling falls back to StabilityVarianceCeiling.
func StabilityScore(attempts []Attempt, window int, ceiling float64) float64 {
	if window <= 0 {
		window = DefaultStabilityWindow
	}
	if ceiling <= 0 {
		ceiling = StabilityVarianceCeiling
	}
	recent := recentFirst(attempts)
	if len(recent) > window {
		recent = recent[:window]
	}
	switch len(recent) {
	case 0:
		return 0
	case 1:
		return 50
	}

	mean := 0.0
	for _, a := range recent {
		mean += a.AccuracyValue()
	}
	mean /= float64(len(recent))

	variance := 0.0
	for _, a := range recent {
		d := a.AccuracyValue() - mean
		variance += d * d
	}
	variance /= float64(len(recent))

	return 100 * clamp(1-variance/ceiling, 0, 1)
}

// DetectTrend compares the mean accuracy of the recentN newest attempts with
// the historicalN attempts before them. Too little history to compare yields
// TrendNew; fewer than two historical attempts yields TrendStable.
func DetectTrend(attempts []Attempt, recentN, historicalN int) Trend {
	if recentN <= 0 {
		recentN = DefaultTrendRecent
	}
	if historicalN <= 0 {
		historicalN = DefaultTrendHistorical
	}
	if len(attempts) < minTrendAttempts || len(attempts) <= recentN {
		return TrendNew
	}
	sorted := recentFirst(attempts)
	recent := sorted[:recentN]
	historical := sorted[recentN:]
	if len(historical) > historicalN {
		historical = historical[:historicalN]
	}
	if len(historical) < 2 {
		return TrendStable
	}

	diff := meanAccuracy(recent) - meanAccuracy(historical)
	switch {
	case diff > TrendThreshold:
		return TrendImproving
	case diff < -TrendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// CorrectStreak counts consecutive attempts, newest first, whose accuracy is
// at least StreakAccuracy.
func CorrectStreak(attempts []Attempt) int {
	streak := 0
	for _, a := range recentFirst(attempts) {
		if a.AccuracyValue() < StreakAccuracy {
			break
		}
		streak++
	}
	return streak
}

// SpeedBonus rewards the latest completed attempt for beating the median of
// the earlier ones: 10 below 0.8x the median, 5 below 1.0x, otherwise 0.
// No bonus is given until minSpeedAttempts attempts have durations.
func SpeedBonus(attempts []Attempt) float64 {
	var timed []Attempt
	for _, a := range recentFirst(attempts) {
		if _, ok := a.Duration(); ok {
			timed = append(timed, a)
		}
	}
	if len(timed) < minSpeedAttempts {
		return 0
	}
	latest, _ := timed[0].Duration()
	earlier := make([]time.Duration, 0, len(timed)-1)
	for _, a := range timed[1:] {
		d, _ := a.Duration()
		earlier = append(earlier, d)
	}
	median := Median(earlier)
	if median <= 0 {
		return 0
	}
	ratio := float64(latest) / float64(median)
	switch {
	case ratio < 0.8:
		return 10
	case ratio < 1.0:
		return 5
	default:
		return 0
	}
}

func meanAccuracy(attempts []Attempt) float64 {
	if len(attempts) == 0 {
		return 0
	}
	sum := 0.0
	for _, a := range attempts {
		sum += a.AccuracyValue()
	}
	return sum / float64(len(attempts))
}

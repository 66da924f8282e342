package spacedrep

import (
	"math"
	"time"
)

const (
	// MinIntervalDays and MaxIntervalDays bound every review interval.
	MinIntervalDays = 1
	MaxIntervalDays = 90

	// earlyIntervalCapDays caps the base interval for the 2nd and 3rd attempt.
	earlyIntervalCapDays = 3

	// ReviewHour is the local hour at which scheduled reviews fall due.
	ReviewHour = 9
)

// intervalTier maps a minimum accuracy to an interval multiplier.
type intervalTier struct {
	minAccuracy float64
	multiplier  float64
}

// intervalTiers lists multipliers from the highest accuracy band down.
var intervalTiers = []intervalTier{
	{0.95, 2.5},
	{0.8, 2.0},
	{0.6, 1.5},
	{0.4, 1.0},
	{0, 0.5},
}

// IntervalMultiplier returns the multiplier for an attempt accuracy.
func IntervalMultiplier(accuracy float64) float64 {
	for _, tier := range intervalTiers {
		if accuracy >= tier.minAccuracy {
			return tier.multiplier
		}
	}
	return intervalTiers[len(intervalTiers)-1].multiplier
}

// NextInterval computes the next review interval in days. attemptCount is
// the number of attempts on the brick including the one just made.
//
// The base is 1 day for a first attempt or when no prior interval exists,
// the prior interval capped at 3 days for the 2nd and 3rd attempts, and the
// prior interval unchanged after that.
func NextInterval(accuracy float64, prevIntervalDays, attemptCount int) int {
	base := prevIntervalDays
	switch {
	case attemptCount <= 1 || prevIntervalDays <= 0:
		base = 1
	case attemptCount <= 3:
		base = min(prevIntervalDays, earlyIntervalCapDays)
	}
	days := int(math.Round(float64(base) * IntervalMultiplier(accuracy)))
	return max(MinIntervalDays, min(MaxIntervalDays, days))
}

// ScheduledDate returns the date intervalDays after now at ReviewHour in
// now's location.
func ScheduledDate(now time.Time, intervalDays int) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+intervalDays, ReviewHour, 0, 0, 0, now.Location())
}

// EndOfDay is the last millisecond of now's calendar day.
func EndOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), now.Location())
}

// EndOfWeek is the last millisecond of the Sunday ending now's week.
func EndOfWeek(now time.Time) time.Time {
	daysToSunday := (7 - int(now.Weekday())) % 7
	return EndOfDay(now.AddDate(0, 0, daysToSunday))
}

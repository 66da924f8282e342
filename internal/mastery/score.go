package mastery

import "math"

const (
	// MasteryThreshold is the score at which a brick counts as mastered.
	MasteryThreshold = 70

	accuracyWeight  = 0.7
	stabilityWeight = 0.2
	speedWeight     = 0.1
)

// MasteryScore combines weighted accuracy (0-1), stability (0-100) and speed
// bonus (0, 5 or 10) into a rounded 0-100 score.
func MasteryScore(weightedAccuracy, stability, speedBonus float64) int {
	raw := accuracyWeight*(weightedAccuracy*100) +
		stabilityWeight*stability +
		speedWeight*speedBonus*10
	return int(math.Round(clamp(raw, 0, 100)))
}

// IsMastered reports whether a score meets MasteryThreshold.
func IsMastered(score int) bool {
	return score >= MasteryThreshold
}

// clamp restricts v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package mastery

// outcomeWeights is the credit each subtask outcome earns.
var outcomeWeights = map[Outcome]float64{
	OutcomeCorrect:          1.0,
	OutcomePartiallyCorrect: 0.5,
	OutcomeIncorrect:        0,
	OutcomeSkipped:          0,
}

// AttemptAccuracy is the mean credit over the subtasks, in [0, 1].
// No subtasks means zero accuracy.
func AttemptAccuracy(subtasks []SubtaskResult) float64 {
	if len(subtasks) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range subtasks {
		sum += outcomeWeights[s.Outcome]
	}
	return sum / float64(len(subtasks))
}

// WeightedAccuracy averages attempt accuracy with recency weighting: the
// i-th most recent attempt (0-based) has weight decay^i.
func WeightedAccuracy(attempts []Attempt, decay float64) float64 {
	if len(attempts) == 0 {
		return 0
	}
	weight, num, den := 1.0, 0.0, 0.0
	for _, a := range recentFirst(attempts) {
		num += weight * a.AccuracyValue()
		den += weight
		weight *= decay
	}
	if den == 0 {
		return 0
	}
	return num / den
}

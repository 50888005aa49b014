package interview

// Rubric weights, fixed by the grading scheme.
const (
	WeightTechnical     = 0.4
	WeightPractical     = 0.3
	WeightCommunication = 0.2
	WeightAdvanced      = 0.1
)

// WeightedScore folds the four category scores into one number in [0,100].
func WeightedScore(s CategoryScores) float64 {
	v := WeightTechnical*clampScore(s.TechnicalAccuracy) +
		WeightPractical*clampScore(s.PracticalApplication) +
		WeightCommunication*clampScore(s.Communication) +
		WeightAdvanced*clampScore(s.AdvancedKnowledge)
	return clampScore(v)
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// NextDifficulty steps up when the answer met the threshold and down
// otherwise, bounded to the three defined levels.
func NextDifficulty(current Difficulty, weightedScore, threshold float64) Difficulty {
	if weightedScore >= threshold {
		return current.StepUp()
	}
	return current.StepDown()
}

package interview

import "time"

// Recommendation buckets against the pass cutoff.
const (
	RecommendationStrongHire = "strong_hire"
	RecommendationHire       = "hire"
	RecommendationNoHire     = "no_hire"
)

// Report is derived on demand from a session's records; it is never stored.
type Report struct {
	InterviewID       string           `json:"interview_id"`
	CandidateName     string           `json:"candidate_name"`
	TargetRole        string           `json:"target_role"`
	QuestionsAnswered int              `json:"questions_answered"`
	OverallScore      float64          `json:"overall_score"`
	SkillBreakdown    CategoryScores   `json:"skill_breakdown"`
	Recommendation    string           `json:"recommendation"`
	Pass              bool             `json:"pass"`
	DurationSeconds   float64          `json:"duration_seconds"`
	Records           []QuestionRecord `json:"evaluations"`
}

// BuildReport reduces a session's records into the final report. Pure and
// deterministic: the same session always yields the same report.
func BuildReport(s Session, passCutoff float64) (Report, error) {
	if len(s.Records) == 0 {
		return Report{}, ErrNoEvaluations
	}

	var breakdown CategoryScores
	for _, r := range s.Records {
		breakdown.TechnicalAccuracy += r.Scores.TechnicalAccuracy
		breakdown.PracticalApplication += r.Scores.PracticalApplication
		breakdown.Communication += r.Scores.Communication
		breakdown.AdvancedKnowledge += r.Scores.AdvancedKnowledge
	}
	n := float64(len(s.Records))
	breakdown.TechnicalAccuracy /= n
	breakdown.PracticalApplication /= n
	breakdown.Communication /= n
	breakdown.AdvancedKnowledge /= n

	overall := WeightedScore(breakdown)

	recommendation := RecommendationNoHire
	switch {
	case overall >= passCutoff+15:
		recommendation = RecommendationStrongHire
	case overall >= passCutoff:
		recommendation = RecommendationHire
	}

	records := make([]QuestionRecord, len(s.Records))
	copy(records, s.Records)

	return Report{
		InterviewID:       s.ID,
		CandidateName:     s.CandidateName,
		TargetRole:        s.TargetRole,
		QuestionsAnswered: len(s.Records),
		OverallScore:      overall,
		SkillBreakdown:    breakdown,
		Recommendation:    recommendation,
		Pass:              overall >= passCutoff,
		DurationSeconds:   reportDuration(s).Seconds(),
		Records:           records,
	}, nil
}

// reportDuration measures from start to completion, or to the last recorded
// activity when the interview is still open, so reports stay reproducible.
func reportDuration(s Session) time.Duration {
	end := s.CompletedAt
	if end.IsZero() {
		end = s.LastActivityAt
	}
	if end.Before(s.StartedAt) {
		return 0
	}
	return end.Sub(s.StartedAt)
}

package interview

import (
	"errors"
	"time"
)

// Phase is the lifecycle stage of an interview session. Phases only move
// forward; staying in place is allowed, going back is not.
type Phase string

const (
	PhaseSetup        Phase = "setup"
	PhaseIntroduction Phase = "introduction"
	PhaseAssessment   Phase = "assessment"
	PhaseConclusion   Phase = "conclusion"
)

// rank orders phases for the monotonicity invariant.
func (p Phase) rank() int {
	switch p {
	case PhaseSetup:
		return 0
	case PhaseIntroduction:
		return 1
	case PhaseAssessment:
		return 2
	case PhaseConclusion:
		return 3
	default:
		return -1
	}
}

// Difficulty of an issued question.
type Difficulty string

const (
	DifficultyBasic        Difficulty = "basic"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// StepUp returns the next harder level, bounded at advanced.
func (d Difficulty) StepUp() Difficulty {
	switch d {
	case DifficultyBasic:
		return DifficultyIntermediate
	case DifficultyIntermediate:
		return DifficultyAdvanced
	default:
		return DifficultyAdvanced
	}
}

// StepDown returns the next easier level, bounded at basic.
func (d Difficulty) StepDown() Difficulty {
	switch d {
	case DifficultyAdvanced:
		return DifficultyIntermediate
	case DifficultyIntermediate:
		return DifficultyBasic
	default:
		return DifficultyBasic
	}
}

const (
	RoleCandidate   = "candidate"
	RoleInterviewer = "interviewer"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrConcluded    = errors.New("interview already concluded")
	// ErrNoEvaluations is returned when a report is requested before any
	// answer has been scored.
	ErrNoEvaluations = errors.New("no evaluations recorded yet")
)

// CategoryScores holds the four rubric dimensions, each in [0,100].
type CategoryScores struct {
	TechnicalAccuracy    float64 `json:"technical_accuracy"`
	PracticalApplication float64 `json:"practical_application"`
	Communication        float64 `json:"communication"`
	AdvancedKnowledge    float64 `json:"advanced_knowledge"`
}

// QuestionRecord is one question/answer/evaluation triple. It is appended
// once, fully scored, and never modified afterwards.
type QuestionRecord struct {
	Question      string         `json:"question"`
	Difficulty    Difficulty     `json:"difficulty"`
	Answer        string         `json:"answer"`
	Scores        CategoryScores `json:"scores"`
	WeightedScore float64        `json:"weighted_score"`
	Feedback      string         `json:"feedback"`
	Strengths     []string       `json:"strengths,omitempty"`
	Improvements  []string       `json:"improvements,omitempty"`
	AnsweredAt    time.Time      `json:"answered_at"`
}

// TranscriptEntry is one chat message in either direction.
type TranscriptEntry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one candidate's interview instance.
type Session struct {
	ID              string            `json:"interview_id"`
	CandidateName   string            `json:"candidate_name"`
	TargetRole      string            `json:"target_role"`
	ExperienceLevel string            `json:"experience_level"`
	Phase           Phase             `json:"phase"`
	Difficulty      Difficulty        `json:"current_difficulty"`
	PendingQuestion string            `json:"pending_question,omitempty"`
	QuestionNumber  int               `json:"question_number"`
	Records         []QuestionRecord  `json:"records"`
	Transcript      []TranscriptEntry `json:"transcript"`
	StartedAt       time.Time         `json:"started_at"`
	LastActivityAt  time.Time         `json:"last_activity_at"`
	CompletedAt     time.Time         `json:"completed_at,omitempty"`
}

// Clone deep-copies the session so transitions never alias the caller's copy.
func (s Session) Clone() Session {
	c := s
	c.Records = make([]QuestionRecord, len(s.Records))
	copy(c.Records, s.Records)
	c.Transcript = make([]TranscriptEntry, len(s.Transcript))
	copy(c.Transcript, s.Transcript)
	return c
}

// RunningScore is the average weighted score of evaluated answers so far.
func (s Session) RunningScore() float64 {
	if len(s.Records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range s.Records {
		sum += r.WeightedScore
	}
	return sum / float64(len(s.Records))
}

// Turn is the engine's reply to one candidate message.
type Turn struct {
	Message string `json:"message"`
	Done    bool   `json:"done"`
}

package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/epanichev/sheetcheck/internal/oracle"
)

// EngineConfig bounds the assessment loop.
type EngineConfig struct {
	// MaxQuestions ends the interview after this many scored answers.
	MaxQuestions int
	// MinQuestionsToClose is the earliest point at which a consistently
	// extreme performance can end the interview ahead of MaxQuestions.
	MinQuestionsToClose int
	// DifficultyThreshold is the weighted score at or above which the next
	// question steps up a level; below it steps down.
	DifficultyThreshold float64
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.MaxQuestions <= 0 {
		c.MaxQuestions = 8
	}
	if c.MinQuestionsToClose <= 0 || c.MinQuestionsToClose > c.MaxQuestions {
		c.MinQuestionsToClose = min(5, c.MaxQuestions)
	}
	if c.DifficultyThreshold <= 0 {
		c.DifficultyThreshold = 70
	}
	return c
}

// Engine advances interview sessions through their phases. All transitions
// take a session by value and return a new one; on any error the caller's
// session is untouched and safe to retry with.
type Engine struct {
	oracle oracle.Oracle
	bank   *QuestionBank
	cfg    EngineConfig
	now    func() time.Time
}

func NewEngine(o oracle.Oracle, bank *QuestionBank, cfg EngineConfig) *Engine {
	return &Engine{
		oracle: o,
		bank:   bank,
		cfg:    cfg.withDefaults(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// StartSession creates a fresh session in the setup phase.
func (e *Engine) StartSession(candidateName, targetRole, experienceLevel string) Session {
	if strings.TrimSpace(experienceLevel) == "" {
		experienceLevel = "intermediate"
	}
	now := e.now()
	return Session{
		ID:              uuid.NewString(),
		CandidateName:   candidateName,
		TargetRole:      targetRole,
		ExperienceLevel: experienceLevel,
		Phase:           PhaseSetup,
		Difficulty:      DifficultyBasic,
		StartedAt:       now,
		LastActivityAt:  now,
		Records:         []QuestionRecord{},
		Transcript:      []TranscriptEntry{},
	}
}

// Advance applies one candidate message to the session and returns the
// updated session plus the interviewer's reply. Oracle failures return an
// error without producing a new session.
func (e *Engine) Advance(ctx context.Context, sess Session, message string) (Session, Turn, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Session{}, Turn{}, ErrEmptyMessage
	}

	next := sess.Clone()
	now := e.now()
	next.Transcript = append(next.Transcript, TranscriptEntry{
		Role:      RoleCandidate,
		Content:   message,
		Timestamp: now,
	})

	var turn Turn
	var err error
	switch sess.Phase {
	case PhaseSetup:
		next.Phase = PhaseIntroduction
		turn.Message = welcomeMessage(sess.CandidateName, sess.TargetRole)
	case PhaseIntroduction:
		turn, err = e.advanceIntroduction(ctx, &next, message)
	case PhaseAssessment:
		turn, err = e.advanceAssessment(ctx, &next, message)
	case PhaseConclusion:
		return Session{}, Turn{}, ErrConcluded
	default:
		return Session{}, Turn{}, fmt.Errorf("session %s has unknown phase %q", sess.ID, sess.Phase)
	}
	if err != nil {
		return Session{}, Turn{}, err
	}

	next.Transcript = append(next.Transcript, TranscriptEntry{
		Role:      RoleInterviewer,
		Content:   turn.Message,
		Timestamp: now,
	})
	next.LastActivityAt = now

	if next.Phase.rank() < sess.Phase.rank() {
		return Session{}, Turn{}, fmt.Errorf("phase regression %s -> %s on session %s", sess.Phase, next.Phase, sess.ID)
	}
	return next, turn, nil
}

func (e *Engine) advanceIntroduction(ctx context.Context, next *Session, message string) (Turn, error) {
	if !isReadySignal(message) {
		return Turn{
			Message: `No rush. When you're set to start the Excel assessment, type "ready" or "yes".`,
		}, nil
	}

	question, err := e.nextQuestion(ctx, next)
	if err != nil {
		return Turn{}, err
	}
	next.Phase = PhaseAssessment
	next.QuestionNumber = 1
	next.PendingQuestion = question
	return Turn{
		Message: fmt.Sprintf("Great, let's begin.\n\nQuestion 1: %s", question),
	}, nil
}

func (e *Engine) advanceAssessment(ctx context.Context, next *Session, answer string) (Turn, error) {
	record, err := e.evaluateAnswer(ctx, next.PendingQuestion, next.Difficulty, answer)
	if err != nil {
		return Turn{}, err
	}

	// The record must not be visible until the whole turn succeeds, so the
	// follow-up question is fetched before anything is appended.
	var followUp string
	concluding := len(next.Records)+1 >= e.cfg.MaxQuestions ||
		e.shouldConcludeEarly(append(append([]QuestionRecord{}, next.Records...), record))
	if !concluding {
		nextDifficulty := NextDifficulty(next.Difficulty, record.WeightedScore, e.cfg.DifficultyThreshold)
		followUp, err = e.questionAt(ctx, next, nextDifficulty, next.QuestionNumber)
		if err != nil {
			return Turn{}, err
		}
	}

	next.Records = append(next.Records, record)
	next.Difficulty = NextDifficulty(next.Difficulty, record.WeightedScore, e.cfg.DifficultyThreshold)

	if concluding {
		next.Phase = PhaseConclusion
		next.PendingQuestion = ""
		next.CompletedAt = e.now()
		return Turn{
			Message: "Thank you, that completes the assessment. Your performance report is ready.",
			Done:    true,
		}, nil
	}

	next.QuestionNumber++
	next.PendingQuestion = followUp
	return Turn{
		Message: fmt.Sprintf("%s\n\nQuestion %d: %s", feedbackLine(record.WeightedScore), next.QuestionNumber, followUp),
	}, nil
}

func (e *Engine) nextQuestion(ctx context.Context, next *Session) (string, error) {
	return e.questionAt(ctx, next, next.Difficulty, next.QuestionNumber)
}

// questionAt picks the scripted question at the session's position, falling
// back to an oracle-generated one once the bank tier is exhausted.
func (e *Engine) questionAt(ctx context.Context, next *Session, difficulty Difficulty, idx int) (string, error) {
	if q, ok := e.bank.Question(difficulty, idx); ok {
		return q, nil
	}

	previous := make([]string, 0, len(next.Records)+1)
	for _, r := range next.Records {
		previous = append(previous, r.Question)
	}
	if next.PendingQuestion != "" {
		previous = append(previous, next.PendingQuestion)
	}

	out, err := e.oracle.Complete(ctx, oracle.Request{
		Op:          oracle.OpGenerateQuestion,
		System:      questionWriterSystemPrompt,
		User:        adaptiveQuestionPrompt(next.TargetRole, difficulty, previous),
		Temperature: 0.7,
		MaxTokens:   200,
	})
	if err != nil {
		return "", err
	}
	question := strings.TrimSpace(out)
	if question == "" {
		return "", fmt.Errorf("empty generated question: %w", oracle.ErrMalformed)
	}
	return question, nil
}

func (e *Engine) evaluateAnswer(ctx context.Context, question string, difficulty Difficulty, answer string) (QuestionRecord, error) {
	out, err := e.oracle.Complete(ctx, oracle.Request{
		Op:          oracle.OpEvaluateAnswer,
		System:      evaluatorSystemPrompt,
		User:        evaluationPrompt(question, difficulty, answer),
		Temperature: 0.3,
		MaxTokens:   1000,
	})
	if err != nil {
		return QuestionRecord{}, err
	}

	scores, feedback, strengths, improvements, err := parseEvaluation(out)
	if err != nil {
		return QuestionRecord{}, err
	}

	return QuestionRecord{
		Question:      question,
		Difficulty:    difficulty,
		Answer:        answer,
		Scores:        scores,
		WeightedScore: WeightedScore(scores),
		Feedback:      feedback,
		Strengths:     strengths,
		Improvements:  improvements,
		AnsweredAt:    e.now(),
	}, nil
}

// shouldConcludeEarly ends the interview once enough answers show a
// consistently extreme trend (very strong or very weak last three).
func (e *Engine) shouldConcludeEarly(records []QuestionRecord) bool {
	if len(records) < e.cfg.MinQuestionsToClose {
		return false
	}
	window := records
	if len(window) > 3 {
		window = window[len(window)-3:]
	}
	var sum float64
	for _, r := range window {
		sum += r.WeightedScore
	}
	avg := sum / float64(len(window))
	return avg >= 90 || avg <= 30
}

type evaluationPayload struct {
	TechnicalAccuracy    *float64 `json:"technical_accuracy"`
	PracticalApplication *float64 `json:"practical_application"`
	Communication        *float64 `json:"communication"`
	AdvancedKnowledge    *float64 `json:"advanced_knowledge"`
	Feedback             string   `json:"feedback"`
	Strengths            []string `json:"strengths"`
	Improvements         []string `json:"improvements"`
}

// parseEvaluation extracts the JSON object from the oracle reply. Models
// sometimes wrap JSON in prose, so everything outside the outermost braces
// is discarded before decoding.
func parseEvaluation(raw string) (CategoryScores, string, []string, []string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return CategoryScores{}, "", nil, nil, fmt.Errorf("no JSON object in reply: %w", oracle.ErrMalformed)
	}

	var payload evaluationPayload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return CategoryScores{}, "", nil, nil, fmt.Errorf("decode evaluation: %v: %w", err, oracle.ErrMalformed)
	}

	categories := map[string]*float64{
		"technical_accuracy":    payload.TechnicalAccuracy,
		"practical_application": payload.PracticalApplication,
		"communication":         payload.Communication,
		"advanced_knowledge":    payload.AdvancedKnowledge,
	}
	for name, v := range categories {
		if v == nil {
			return CategoryScores{}, "", nil, nil, fmt.Errorf("evaluation missing %s: %w", name, oracle.ErrMalformed)
		}
		if *v < 0 || *v > 100 {
			return CategoryScores{}, "", nil, nil, fmt.Errorf("evaluation %s=%v out of range: %w", name, *v, oracle.ErrMalformed)
		}
	}

	scores := CategoryScores{
		TechnicalAccuracy:    *payload.TechnicalAccuracy,
		PracticalApplication: *payload.PracticalApplication,
		Communication:        *payload.Communication,
		AdvancedKnowledge:    *payload.AdvancedKnowledge,
	}
	return scores, payload.Feedback, payload.Strengths, payload.Improvements, nil
}

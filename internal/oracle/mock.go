package oracle

import (
	"context"
	"fmt"
	"strings"
)

// MockOracle provides deterministic local replies when no provider key is
// configured. Good enough to click through a whole interview offline.
type MockOracle struct{}

func NewMock() *MockOracle { return &MockOracle{} }

func (o *MockOracle) Complete(ctx context.Context, req Request) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	switch req.Op {
	case OpEvaluateAnswer:
		return buildMockEvaluation(req.User), nil
	case OpGenerateQuestion:
		return "Walk me through how you would combine INDEX and MATCH to look up a value when the key column is not the leftmost one.", nil
	default:
		return "I am listening.", nil
	}
}

// buildMockEvaluation scores longer answers higher so the adaptive difficulty
// path is reachable in offline runs, while staying deterministic per input.
func buildMockEvaluation(prompt string) string {
	answer := prompt
	if idx := strings.LastIndex(prompt, "Candidate's answer:"); idx >= 0 {
		answer = prompt[idx+len("Candidate's answer:"):]
	}
	words := len(strings.Fields(answer))

	score := 40 + words*4
	if score > 90 {
		score = 90
	}
	return fmt.Sprintf(`{
  "technical_accuracy": %d,
  "practical_application": %d,
  "communication": %d,
  "advanced_knowledge": %d,
  "feedback": "Mock evaluation: answer scored on length only. Configure ORACLE_API_KEY for real grading.",
  "strengths": ["provided an answer"],
  "improvements": ["add concrete Excel examples"]
}`, score, score, score, score/2)
}

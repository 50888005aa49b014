package oracle

import (
	"context"
	"errors"
)

// Op labels what an oracle call is for; used for metrics and mock replies.
type Op string

const (
	OpGenerateQuestion Op = "generate_question"
	OpEvaluateAnswer   Op = "evaluate_answer"
)

// ErrUnavailable marks transient provider failures (timeouts, rate limits,
// 5xx). Callers may retry the whole operation without losing state.
var ErrUnavailable = errors.New("oracle unavailable")

// ErrMalformed marks provider replies that cannot be used (empty choices,
// unparseable evaluation payloads). Retrying the same request may still help,
// but the reply itself must never reach session state.
var ErrMalformed = errors.New("malformed oracle response")

// Request is a single prompt sent to the oracle.
type Request struct {
	Op          Op
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Oracle is the narrow seam to the external text-completion service.
type Oracle interface {
	Complete(ctx context.Context, req Request) (string, error)
}

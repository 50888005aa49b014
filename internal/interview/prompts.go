package interview

import (
	"fmt"
	"strings"
)

const evaluatorSystemPrompt = "You are an expert Excel interviewer grading a candidate's spoken answer. " +
	"Respond with a single JSON object and nothing else."

func evaluationPrompt(question string, difficulty Difficulty, answer string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", question)
	fmt.Fprintf(&b, "Difficulty level: %s\n", difficulty)
	fmt.Fprintf(&b, "Candidate's answer: %s\n\n", answer)
	b.WriteString(`Grade each dimension from 0 to 100:
1. technical_accuracy (weight 40%)
2. practical_application (weight 30%)
3. communication (weight 20%)
4. advanced_knowledge (weight 10%)

Reply with JSON in exactly this shape:
{
  "technical_accuracy": <0-100>,
  "practical_application": <0-100>,
  "communication": <0-100>,
  "advanced_knowledge": <0-100>,
  "feedback": "<two or three sentences of concrete feedback>",
  "strengths": ["<strength>"],
  "improvements": ["<improvement>"]
}`)
	return b.String()
}

const questionWriterSystemPrompt = "You write Excel interview questions. " +
	"Return only the question text, no numbering and no preamble."

func adaptiveQuestionPrompt(targetRole string, difficulty Difficulty, previous []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate one %s-level Excel interview question for a %s candidate.\n", difficulty, targetRole)
	b.WriteString("Requirements:\n")
	b.WriteString("- focus on practical Excel skills for the role\n")
	b.WriteString("- answerable in two or three sentences\n")
	b.WriteString("- be specific and actionable\n")
	if len(previous) > 0 {
		b.WriteString("- do not repeat any of these already-asked questions:\n")
		for _, q := range previous {
			fmt.Fprintf(&b, "  - %s\n", q)
		}
	}
	return b.String()
}

func welcomeMessage(candidateName, targetRole string) string {
	return fmt.Sprintf(`Hello %s! Welcome to the Excel mock interview for the %s position.

How this works:
- I will ask a series of Excel questions, moving between basic and advanced depending on how you do.
- Explain your reasoning; I grade technical accuracy, practical application, communication, and advanced knowledge.
- Expect around 15-20 minutes.

Type "ready" (or "yes") when you want to begin.`, candidateName, targetRole)
}

// feedbackLine maps a weighted score to the short acknowledgement shown
// between questions.
func feedbackLine(weightedScore float64) string {
	switch {
	case weightedScore >= 80:
		return "Excellent answer! You demonstrate strong Excel knowledge."
	case weightedScore >= 60:
		return "Good answer! You show solid understanding."
	case weightedScore >= 40:
		return "Decent answer, but there's room for improvement."
	default:
		return "I see some gaps we can work on. Let's continue."
	}
}

var readyWords = []string{"yes", "ready", "start", "begin"}

func isReadySignal(message string) bool {
	lower := strings.ToLower(message)
	for _, w := range readyWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

package interview

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var defaultBankYAML []byte

// QuestionBank holds the scripted questions per difficulty tier. Once a tier
// is exhausted the engine asks the oracle for adaptive follow-ups instead.
type QuestionBank struct {
	Basic        []string `yaml:"basic"`
	Intermediate []string `yaml:"intermediate"`
	Advanced     []string `yaml:"advanced"`
}

// LoadBank reads a question bank from path, or the embedded default when
// path is empty.
func LoadBank(path string) (*QuestionBank, error) {
	data := defaultBankYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read question bank %s: %w", path, err)
		}
		data = b
	}

	var bank QuestionBank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	if err := bank.validate(); err != nil {
		return nil, fmt.Errorf("invalid question bank: %w", err)
	}
	return &bank, nil
}

func (b *QuestionBank) validate() error {
	tiers := map[Difficulty][]string{
		DifficultyBasic:        b.Basic,
		DifficultyIntermediate: b.Intermediate,
		DifficultyAdvanced:     b.Advanced,
	}
	for tier, questions := range tiers {
		if len(questions) == 0 {
			return fmt.Errorf("tier %q has no questions", tier)
		}
		for i, q := range questions {
			if q == "" {
				return fmt.Errorf("tier %q question %d is empty", tier, i)
			}
		}
	}
	return nil
}

func (b *QuestionBank) tier(d Difficulty) []string {
	switch d {
	case DifficultyIntermediate:
		return b.Intermediate
	case DifficultyAdvanced:
		return b.Advanced
	default:
		return b.Basic
	}
}

// Question returns the scripted question at index idx for the tier, or
// ok=false when the tier is exhausted and the oracle should generate one.
func (b *QuestionBank) Question(d Difficulty, idx int) (string, bool) {
	questions := b.tier(d)
	if idx < 0 || idx >= len(questions) {
		return "", false
	}
	return questions[idx], true
}

package interview

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadBankEmbeddedDefault(t *testing.T) {
	bank, err := LoadBank("")
	if err != nil {
		t.Fatalf("LoadBank() error = %v", err)
	}
	for _, d := range []Difficulty{DifficultyBasic, DifficultyIntermediate, DifficultyAdvanced} {
		if _, ok := bank.Question(d, 0); !ok {
			t.Fatalf("default bank has no %s questions", d)
		}
	}
}

func TestLoadBankFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	content := `basic: ["b1", "b2"]
intermediate: ["i1"]
advanced: ["a1"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write bank file: %v", err)
	}

	bank, err := LoadBank(path)
	if err != nil {
		t.Fatalf("LoadBank() error = %v", err)
	}
	q, ok := bank.Question(DifficultyBasic, 1)
	if !ok || q != "b2" {
		t.Fatalf("Question(basic, 1) = %q, %v; want %q", q, ok, "b2")
	}
	if _, ok := bank.Question(DifficultyIntermediate, 1); ok {
		t.Fatalf("Question(intermediate, 1) should report exhaustion")
	}
}

func TestLoadBankRejectsEmptyTier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	content := `basic: ["b1"]
intermediate: []
advanced: ["a1"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write bank file: %v", err)
	}
	if _, err := LoadBank(path); err == nil {
		t.Fatalf("LoadBank() should reject an empty tier")
	}
}

func TestLoadBankMissingFile(t *testing.T) {
	if _, err := LoadBank(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("LoadBank() should fail for a missing file")
	}
}

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/epanichev/sheetcheck/internal/interview"
)

func testSession(id string) interview.Session {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return interview.Session{
		ID:             id,
		CandidateName:  "Alice",
		TargetRole:     "Data Analyst",
		Phase:          interview.PhaseAssessment,
		Difficulty:     interview.DifficultyIntermediate,
		QuestionNumber: 2,
		Records: []interview.QuestionRecord{{
			Question:      "What is VLOOKUP?",
			Difficulty:    interview.DifficultyBasic,
			Answer:        "A vertical lookup.",
			Scores:        interview.CategoryScores{TechnicalAccuracy: 70, PracticalApplication: 60, Communication: 80, AdvancedKnowledge: 40},
			WeightedScore: 70,
			Feedback:      "ok",
			AnsweredAt:    now,
		}},
		StartedAt:      now,
		LastActivityAt: now,
	}
}

func TestFileStoreSaveGetRoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()

	want := testSession("itv-1")
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Get(ctx, "itv-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.CandidateName != want.CandidateName || got.Phase != want.Phase {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(got.Records) != 1 || got.Records[0].WeightedScore != 70 {
		t.Fatalf("records not preserved: %+v", got.Records)
	}
}

func TestFileStoreGetUnknownID(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestFileStoreRejectsPathTraversalIDs(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()

	if _, err := s.Get(ctx, "../escape"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(traversal) error = %v, want ErrNotFound", err)
	}
	bad := testSession("../escape")
	if err := s.Save(ctx, bad); err == nil {
		t.Fatalf("Save() should reject ids with path separators")
	}
}

func TestFileStoreList(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := s.Save(ctx, testSession(id)); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}

	ids, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("List() = %v, want 3 ids", ids)
	}
}

func TestFileStoreConcurrentSavesSameSession(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sess := testSession("shared")
			sess.QuestionNumber = n
			if err := s.Save(ctx, sess); err != nil {
				t.Errorf("Save() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	// Whatever write won, the document must parse cleanly.
	got, err := s.Get(ctx, "shared")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != "shared" {
		t.Fatalf("ID = %q, want %q", got.ID, "shared")
	}
}

func TestNewStorePicksFileModeWithoutDatabaseURL(t *testing.T) {
	st, mode, err := NewStore(context.Background(), "", t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	defer st.Close()
	if mode != "file" {
		t.Fatalf("mode = %q, want %q", mode, "file")
	}
	if err := st.Save(context.Background(), testSession(fmt.Sprintf("itv-%d", 1))); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
}

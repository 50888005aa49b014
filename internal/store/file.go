package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/epanichev/sheetcheck/internal/interview"
)

const filePrefix = "interview_"

// FileStore keeps one JSON document per session under dir. Writes for the
// same session are serialized by a per-id mutex and land via temp file +
// rename so readers never observe a torn document.
type FileStore struct {
	dir   string
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &FileStore{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

func (s *FileStore) sessionLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, filePrefix+id+".json")
}

func (s *FileStore) Save(ctx context.Context, session interview.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(session.ID) == "" {
		return fmt.Errorf("session has no id")
	}
	// Session ids come from uuid.NewString, but never trust them as path
	// components.
	if strings.ContainsAny(session.ID, "/\\") {
		return fmt.Errorf("invalid session id %q", session.ID)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}

	lock := s.sessionLock(session.ID)
	lock.Lock()
	defer lock.Unlock()

	tmp, err := os.CreateTemp(s.dir, filePrefix+session.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write session %s: %w", session.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path(session.ID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("persist session %s: %w", session.ID, err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (interview.Session, error) {
	if err := ctx.Err(); err != nil {
		return interview.Session{}, err
	}
	if strings.TrimSpace(id) == "" || strings.ContainsAny(id, "/\\") {
		return interview.Session{}, ErrNotFound
	}

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return interview.Session{}, ErrNotFound
		}
		return interview.Session{}, fmt.Errorf("read session %s: %w", id, err)
	}

	var session interview.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return interview.Session{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return session, nil
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir %s: %w", s.dir, err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), ".json"))
	}
	return ids, nil
}

func (s *FileStore) Close() error { return nil }

package store

import (
	"context"
	"errors"

	"github.com/epanichev/sheetcheck/internal/interview"
)

var ErrNotFound = errors.New("interview not found")

// Store persists and retrieves interview sessions.
type Store interface {
	Save(ctx context.Context, session interview.Session) error
	Get(ctx context.Context, id string) (interview.Session, error)
	List(ctx context.Context) ([]string, error)
	Close() error
}

package store

import (
	"context"
	"strings"
)

// NewStore creates a postgres-backed store when a database URL is configured,
// otherwise the flat-file store under dataDir.
func NewStore(ctx context.Context, databaseURL, dataDir string) (Store, string, error) {
	if strings.TrimSpace(databaseURL) == "" {
		s, err := NewFileStore(dataDir)
		if err != nil {
			return nil, "", err
		}
		return s, "file", nil
	}
	s, err := NewPostgresStore(ctx, databaseURL)
	if err != nil {
		return nil, "", err
	}
	return s, "postgres", nil
}

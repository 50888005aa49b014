package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/epanichev/sheetcheck/internal/interview"
)

// PostgresStore persists interview sessions in PostgreSQL. The session body
// is stored as JSONB next to the columns the API queries directly.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS interviews (
			id TEXT PRIMARY KEY,
			candidate_name TEXT NOT NULL,
			target_role TEXT NOT NULL,
			phase TEXT NOT NULL,
			body JSONB NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_interviews_started ON interviews (started_at);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, session interview.Session) error {
	body, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO interviews (id, candidate_name, target_role, phase, body, started_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())
		 ON CONFLICT (id) DO UPDATE
		 SET phase = EXCLUDED.phase, body = EXCLUDED.body, updated_at = now()`,
		session.ID,
		session.CandidateName,
		session.TargetRole,
		string(session.Phase),
		body,
		session.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (interview.Session, error) {
	var body []byte
	err := s.pool.QueryRow(ctx,
		`SELECT body FROM interviews WHERE id = $1`, id,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return interview.Session{}, ErrNotFound
	}
	if err != nil {
		return interview.Session{}, fmt.Errorf("query session %s: %w", id, err)
	}

	var session interview.Session
	if err := json.Unmarshal(body, &session); err != nil {
		return interview.Session{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return session, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM interviews ORDER BY started_at`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session ids: %w", err)
	}
	return ids, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

package repository

import (
	"context"
	"fmt"

	"wattle/downloader/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AttemptRepository journals download attempts. It is write-only: nothing
// read back from it influences selection.
type AttemptRepository interface {
	SaveAttempt(ctx context.Context, attempt domain.Attempt) error
}

type attemptRepository struct {
	db *pgxpool.Pool
}

func NewAttemptRepository(db *pgxpool.Pool) AttemptRepository {
	return &attemptRepository{
		db: db,
	}
}

// EnsureSchema creates the journal table if it does not exist
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	query := `
	CREATE TABLE IF NOT EXISTS download_attempts (
		id           BIGSERIAL PRIMARY KEY,
		session_id   TEXT        NOT NULL,
		filter       TEXT        NOT NULL,
		ordinal      INTEGER     NOT NULL,
		name         TEXT        NOT NULL,
		url          TEXT        NOT NULL DEFAULT '',
		success      BOOLEAN     NOT NULL,
		error        TEXT        NOT NULL DEFAULT '',
		attempted_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create download_attempts table: %w", err)
	}
	return nil
}

func (r *attemptRepository) SaveAttempt(ctx context.Context, attempt domain.Attempt) error {
	query := `
	INSERT INTO download_attempts (session_id, filter, ordinal, name, url, success, error, attempted_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, query,
		attempt.SessionID,
		attempt.Filter,
		attempt.Ordinal,
		attempt.Name,
		attempt.URL,
		attempt.Success,
		attempt.Error,
		attempt.AttemptedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save attempt for %s: %w", attempt.Name, err)
	}

	return nil
}

type noopAttemptRepository struct{}

// NewNoopAttemptRepository is used when no journal database is configured
func NewNoopAttemptRepository() AttemptRepository {
	return noopAttemptRepository{}
}

func (noopAttemptRepository) SaveAttempt(context.Context, domain.Attempt) error {
	return nil
}

package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"wattle/downloader/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestNoopAttemptRepository(t *testing.T) {
	repo := NewNoopAttemptRepository()
	if err := repo.SaveAttempt(context.Background(), domain.Attempt{Name: "Lecture 1"}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

// Runs only when JOURNAL_DATABASE_URL points at a disposable PostgreSQL database.
func TestAttemptRepository_SaveAttempt(t *testing.T) {
	dsn := os.Getenv("JOURNAL_DATABASE_URL")
	if dsn == "" {
		t.Skip("JOURNAL_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	session := "test-" + time.Now().Format("150405.000000")
	repo := NewAttemptRepository(db)
	err = repo.SaveAttempt(ctx, domain.Attempt{
		SessionID:   session,
		Filter:      "Lecture",
		Ordinal:     2,
		Name:        "Lecture 2",
		Success:     false,
		Error:       "No download link found",
		AttemptedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var count int
	if err := db.QueryRow(ctx, `SELECT count(*) FROM download_attempts WHERE session_id = $1`, session).Scan(&count); err != nil {
		t.Fatalf("Failed to query journal: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 journaled attempt, got %d", count)
	}

	db.Exec(ctx, `DELETE FROM download_attempts WHERE session_id = $1`, session)
}

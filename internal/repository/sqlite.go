// Package repository persists an append-only transcript of turns for
// operators. It is an audit log: nothing here is ever read back into a
// live session.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/regisleandro/alfredo-ai/internal/domain"
)

// TranscriptStore implements the engine's Transcript using SQLite.
type TranscriptStore struct {
	db *sql.DB
}

// NewTranscriptStore opens the database and runs migrations.
func NewTranscriptStore(dsn string) (*TranscriptStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate
	// databases. Keep a single connection to avoid schema/data
	// disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &TranscriptStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *TranscriptStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS turns (
			turn_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			tool_name TEXT,
			tool_arguments TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_user ON turns(user_id, created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// RecordTurn appends one turn to the transcript.
func (s *TranscriptStore) RecordTurn(ctx context.Context, userID string, turn domain.Turn) error {
	var toolArgs any
	if turn.Invocation != nil && len(turn.Invocation.Arguments) > 0 {
		toolArgs = string(turn.Invocation.Arguments)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (turn_id, user_id, role, content, tool_name, tool_arguments, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		turn.TurnID, userID, string(turn.Role), turn.Content, nullable(turn.ToolName), toolArgs, turn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}
	return nil
}

// TurnCount returns how many turns are recorded for a user.
func (s *TranscriptStore) TurnCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM turns WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count turns: %w", err)
	}
	return count, nil
}

// RecentTurns returns the latest limit turns for a user, newest first,
// for operator inspection.
func (s *TranscriptStore) RecentTurns(ctx context.Context, userID string, limit int) ([]domain.Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT turn_id, role, content, tool_name, tool_arguments, created_at
		 FROM turns WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []domain.Turn
	for rows.Next() {
		var turn domain.Turn
		var toolName, toolArgs sql.NullString
		if err := rows.Scan(&turn.TurnID, &turn.Role, &turn.Content, &toolName, &toolArgs, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		if toolName.Valid {
			turn.ToolName = toolName.String
			turn.Invocation = &domain.ToolInvocation{Name: toolName.String}
			if toolArgs.Valid {
				turn.Invocation.Arguments = json.RawMessage(toolArgs.String)
			}
		}
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

// Close closes the underlying database.
func (s *TranscriptStore) Close() error {
	return s.db.Close()
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

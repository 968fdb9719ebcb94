package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS run_transcripts (
    run_id TEXT PRIMARY KEY,
    posture TEXT NOT NULL,
    status TEXT NOT NULL,
    turns INTEGER NOT NULL,
    cancelled BOOLEAN NOT NULL DEFAULT FALSE,
    reason TEXT,
    final_text TEXT,
    tool_calls JSONB NOT NULL,
    transcript JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS run_transcripts_created_idx ON run_transcripts (created_at);
`

const postgresInsert = `
INSERT INTO run_transcripts (run_id, posture, status, turns, cancelled, reason, final_text, tool_calls, transcript, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb, $10)
ON CONFLICT (run_id) DO NOTHING;
`

// PostgresSink stores one row per run in run_transcripts.
type PostgresSink struct {
	DB *pgxpool.Pool
}

// NewPostgresSink connects and makes sure the table exists.
func NewPostgresSink(ctx context.Context, connStr string) (*PostgresSink, error) {
	if connStr == "" {
		return nil, errors.New("postgres connection string is required")
	}
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	if _, err := db.Exec(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create run_transcripts: %w", err)
	}
	return &PostgresSink{DB: db}, nil
}

func (ps *PostgresSink) Write(ctx context.Context, rec Record) error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	args, err := postgresArgs(rec)
	if err != nil {
		return err
	}
	_, err = ps.DB.Exec(ctx, postgresInsert, args...)
	return err
}

func (ps *PostgresSink) Close(context.Context) error {
	if ps != nil && ps.DB != nil {
		ps.DB.Close()
	}
	return nil
}

func postgresArgs(rec Record) ([]any, error) {
	calls, err := json.Marshal(rec.ToolCalls)
	if err != nil {
		return nil, fmt.Errorf("encode tool calls: %w", err)
	}
	transcript, err := json.Marshal(rec.Transcript)
	if err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}
	var reason *string
	if rec.Reason != "" {
		reason = &rec.Reason
	}
	return []any{
		rec.RunID, rec.Posture, rec.Status, rec.Turns, rec.Cancelled, reason, rec.FinalText,
		string(calls), string(transcript), rec.CreatedAt,
	}, nil
}

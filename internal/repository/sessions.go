package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"immosearch/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// historyCap is the number of remembered utterances per session; the oldest
// entries are evicted first.
const historyCap = 50

// SessionRepository persists conversational filter state and query history
// in PostgreSQL, keyed by (user_id, session_id).
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository connects to the session store database
func NewSessionRepository(dsn string, maxConn, maxIdleConn int) (*SessionRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SessionRepository{db: db}, nil
}

// Close closes the database connection
func (r *SessionRepository) Close() error {
	return r.db.Close()
}

// EnsureSchema creates the session table when it does not exist yet
func (r *SessionRepository) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS search_sessions (
			user_id       TEXT NOT NULL,
			session_id    TEXT NOT NULL,
			filters       JSONB NOT NULL,
			query_history JSONB NOT NULL DEFAULT '[]',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, session_id)
		)`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure session schema: %w", err)
	}
	return nil
}

type sessionRow struct {
	UserID       string    `db:"user_id"`
	SessionID    string    `db:"session_id"`
	Filters      []byte    `db:"filters"`
	QueryHistory []byte    `db:"query_history"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Get loads the filter state for a session. A missing session returns
// (nil, nil); the caller starts from a fresh state.
func (r *SessionRepository) Get(ctx context.Context, userID, sessionID string) (*model.FilterState, error) {
	var row sessionRow
	err := r.db.GetContext(ctx, &row,
		`SELECT user_id, session_id, filters, query_history, created_at, updated_at
		 FROM search_sessions WHERE user_id = $1 AND session_id = $2`,
		userID, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	state := model.NewFilterState()
	if err := json.Unmarshal(row.Filters, state); err != nil {
		return nil, fmt.Errorf("failed to decode session filters: %w", err)
	}
	// Stored documents may predate some feature keys
	if state.Features == nil {
		state.Features = model.NewFilterState().Features
	}
	return state, nil
}

// Put upserts the filter state and appends the utterance to the capped
// query history.
func (r *SessionRepository) Put(ctx context.Context, userID, sessionID string, state *model.FilterState, query string) error {
	history, err := r.History(ctx, userID, sessionID, historyCap)
	if err != nil {
		history = nil
	}

	if query != "" {
		history = append(history, model.QueryHistoryEntry{
			Query:     query,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		if len(history) > historyCap {
			history = history[len(history)-historyCap:]
		}
	}

	filtersJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode filters: %w", err)
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO search_sessions (user_id, session_id, filters, query_history, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NOW(), NOW())
		 ON CONFLICT (user_id, session_id)
		 DO UPDATE SET filters = $3, query_history = $4, updated_at = NOW()`,
		userID, sessionID, filtersJSON, historyJSON)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes a session; reports whether a row existed.
func (r *SessionRepository) Delete(ctx context.Context, userID, sessionID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM search_sessions WHERE user_id = $1 AND session_id = $2`,
		userID, sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, nil
	}
	return affected > 0, nil
}

// Info returns session metadata for the session endpoint.
func (r *SessionRepository) Info(ctx context.Context, userID, sessionID string) (*model.SessionInfo, error) {
	var row sessionRow
	err := r.db.GetContext(ctx, &row,
		`SELECT user_id, session_id, filters, query_history, created_at, updated_at
		 FROM search_sessions WHERE user_id = $1 AND session_id = $2`,
		userID, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	state := model.NewFilterState()
	if err := json.Unmarshal(row.Filters, state); err != nil {
		return nil, fmt.Errorf("failed to decode session filters: %w", err)
	}

	var history []model.QueryHistoryEntry
	if err := json.Unmarshal(row.QueryHistory, &history); err != nil {
		history = nil
	}

	return &model.SessionInfo{
		UserID:     row.UserID,
		SessionID:  row.SessionID,
		Filters:    state,
		QueryCount: len(history),
		CreatedAt:  row.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  row.UpdatedAt.UTC().Format(time.RFC3339),
	}, nil
}

// History returns the most recent utterances for a session, oldest first.
func (r *SessionRepository) History(ctx context.Context, userID, sessionID string, limit int) ([]model.QueryHistoryEntry, error) {
	var raw []byte
	err := r.db.GetContext(ctx, &raw,
		`SELECT query_history FROM search_sessions WHERE user_id = $1 AND session_id = $2`,
		userID, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	var history []model.QueryHistoryEntry
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}

	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history, nil
}

// ListByUser returns the user's sessions, most recently updated first.
func (r *SessionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.SessionSummary, error) {
	var rows []sessionRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT user_id, session_id, filters, query_history, created_at, updated_at
		 FROM search_sessions WHERE user_id = $1
		 ORDER BY updated_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	summaries := make([]model.SessionSummary, 0, len(rows))
	for _, row := range rows {
		var history []model.QueryHistoryEntry
		_ = json.Unmarshal(row.QueryHistory, &history)

		summary := model.SessionSummary{
			SessionID:  row.SessionID,
			QueryCount: len(history),
			CreatedAt:  row.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt:  row.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if len(history) > 0 {
			summary.LastQuery = history[len(history)-1].Query
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

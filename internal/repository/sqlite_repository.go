package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"notewise/backend/internal/model"
)

type sqliteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) GetSession(ctx context.Context, sessionID string) (*model.FullSession, error) {
	query := "SELECT id, title, created_at, updated_at, total_tokens, total_cost FROM sessions WHERE id = ?"
	row := r.db.QueryRowContext(ctx, query, sessionID)

	var session model.FullSession
	err := row.Scan(&session.ID, &session.Title, &session.CreatedAt, &session.UpdatedAt, &session.TotalTokens, &session.TotalCost)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	messages, err := r.getMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("could not load messages: %w", err)
	}
	session.Messages = messages
	return &session, nil
}

func (r *sqliteRepository) ListSessions(ctx context.Context) ([]*model.Session, error) {
	query := "SELECT id, title, created_at, updated_at, total_tokens, total_cost FROM sessions ORDER BY updated_at DESC"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.Title, &s.CreatedAt, &s.UpdatedAt, &s.TotalTokens, &s.TotalCost); err != nil {
			return nil, err
		}
		sessions = append(sessions, &s)
	}
	return sessions, rows.Err()
}

// UpsertSession writes the session row and its whole message list in one
// transaction. Replacing the message set wholesale keeps the write atomic and
// makes last-writer-wins safe: each exchange owns its own session object
// until it persists.
func (r *sqliteRepository) UpsertSession(ctx context.Context, session *model.FullSession) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	sessionQuery := `
		INSERT INTO sessions (id, title, created_at, updated_at, total_tokens, total_cost)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			updated_at = excluded.updated_at,
			total_tokens = excluded.total_tokens,
			total_cost = excluded.total_cost
	`
	_, err = tx.ExecContext(ctx, sessionQuery,
		session.ID,
		session.Title,
		session.CreatedAt,
		time.Now().UTC(),
		session.TotalTokens,
		session.TotalCost,
	)
	if err != nil {
		return fmt.Errorf("could not upsert session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE session_id = ?", session.ID); err != nil {
		return fmt.Errorf("could not clear messages: %w", err)
	}

	msgQuery := `
		INSERT INTO messages (id, session_id, role, content, model, token_count, timestamp, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, msg := range session.Messages {
		var metadata sql.NullString
		if len(msg.Metadata) > 0 && string(msg.Metadata) != "null" {
			metadata.String = string(msg.Metadata)
			metadata.Valid = true
		}
		_, err := tx.ExecContext(ctx, msgQuery,
			msg.ID,
			session.ID,
			msg.Role,
			msg.Content,
			msg.Model,
			msg.TokenCount,
			msg.Timestamp,
			metadata,
		)
		if err != nil {
			return fmt.Errorf("could not insert message %s: %w", msg.ID, err)
		}
	}

	return tx.Commit()
}

func (r *sqliteRepository) DeleteSession(ctx context.Context, sessionID string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteRepository) getMessages(ctx context.Context, sessionID string) ([]model.Message, error) {
	query := `
		SELECT id, role, content, model, token_count, timestamp, metadata
		FROM messages
		WHERE session_id = ?
		ORDER BY timestamp ASC, rowid ASC
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var msg model.Message
		var modelName sql.NullString
		var metadata sql.NullString

		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &modelName, &msg.TokenCount, &msg.Timestamp, &metadata); err != nil {
			return nil, err
		}
		if modelName.Valid {
			msg.Model = &modelName.String
		}
		if metadata.Valid {
			msg.Metadata = []byte(metadata.String)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

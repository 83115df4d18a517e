package repository

import (
	"context"

	"notewise/backend/internal/model"
)

// Repository defines the interface for session storage operations.
// This interface makes it easy to switch database implementations.
type Repository interface {
	// GetSession loads the full session graph, messages included.
	GetSession(ctx context.Context, sessionID string) (*model.FullSession, error)

	// ListSessions returns session metadata ordered by most recently updated.
	ListSessions(ctx context.Context) ([]*model.Session, error)

	// UpsertSession writes the full session graph atomically. A session is
	// never partially written; the previous message set is replaced wholesale.
	UpsertSession(ctx context.Context, session *model.FullSession) error

	// DeleteSession removes a session and all its messages.
	DeleteSession(ctx context.Context, sessionID string) error
}

package interfaces

import (
	"context"

	"notewise/backend/internal/llm"
	"notewise/backend/internal/model"
	"notewise/backend/internal/service"
)

// This file defines the interfaces for our core services.
// Depending on these interfaces, instead of concrete implementations, allows for
// decoupling (e.g., API layer from Service layer) and easier testing via mocking.

// ChatService defines the contract for conversation orchestration.
type ChatService interface {
	UpdateSessionTitle(ctx context.Context, sessionID, newTitle string) error
	DeleteSession(ctx context.Context, sessionID string) error
	ListSessions(ctx context.Context) ([]*model.Session, error)
	GetSession(ctx context.Context, sessionID string) (*model.FullSession, error)
	HandleSendMessage(ctx context.Context, req *service.SendMessageRequest, streamChan chan<- model.StreamChunk)
	Cancel(sessionID string) error
	ResolveIntent(ctx context.Context, sessionID string, approve bool) (*model.StructuredIntent, error)
}

// ProviderService defines the contract for the provider catalog and note analysis.
type ProviderService interface {
	List(ctx context.Context) ([]llm.ProviderDescriptor, error)
	Analyze(ctx context.Context, content string, kind llm.AnalysisKind) (*llm.Analysis, error)
}

// SettingsService defines the contract for managing application settings.
type SettingsService interface {
	InitAndGet(ctx context.Context, defaults *service.Settings) (*service.Settings, error)
	Get(ctx context.Context) (*service.Settings, error)
	Save(ctx context.Context, settings *service.Settings) error
}

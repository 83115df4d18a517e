package model

import (
	"encoding/json"
	"time"
)

// Session stores metadata about a conversation. The message list lives in
// FullSession; list endpoints return Session only.
type Session struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	TotalTokens int       `json:"total_tokens"`
	TotalCost   float64   `json:"total_cost"`
}

// FullSession includes the session metadata and all its messages.
type FullSession struct {
	Session
	Messages []Message `json:"messages"`
}

// Message is a single entry in a session. Messages are immutable once
// appended; the only later mutation is the user-stopped annotation written
// when a stream is cancelled mid-flight.
type Message struct {
	ID         string          `json:"id"`
	Role       string          `json:"role"`
	Content    string          `json:"content"`
	Timestamp  time.Time       `json:"timestamp"`
	TokenCount int             `json:"token_count,omitempty"`
	Model      *string         `json:"model,omitempty"` // Model used for this specific message.
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// Roles a Message may carry.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// StreamChunk is the structure for a single chunk in a streaming response.
// Transient; consumed incrementally and never persisted.
type StreamChunk struct {
	Content     string            `json:"content"`
	Done        bool              `json:"done"`
	TokensSoFar int               `json:"tokens_so_far,omitempty"`
	SessionID   string            `json:"session_id,omitempty"`
	Intent      *StructuredIntent `json:"intent,omitempty"`
	Error       string            `json:"error,omitempty"`
	ErrorCode   string            `json:"error_code,omitempty"`
	UserStopped bool              `json:"user_stopped,omitempty"`
}

// FileOperation is one proposed change to the user's notes.
type FileOperation struct {
	Type    string `json:"type"` // create, modify, delete, create-folder
	Path    string `json:"path"`
	Content string `json:"content,omitempty"`
	Reason  string `json:"reason"`
}

// StructuredIntent is a parsed, user-approvable description of proposed file
// operations extracted from model output. It is never acted on without
// explicit user approval.
type StructuredIntent struct {
	Operations       []FileOperation `json:"operations"`
	Summary          string          `json:"summary"`
	RequiresApproval bool            `json:"requires_approval"`
}

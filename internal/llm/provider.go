// Package llm contains the provider abstraction and its backend adapters.
// Every backend is normalized behind the Provider interface so the
// orchestrator never branches on backend identity except to select the
// adapter.
package llm

import (
	"context"
	"fmt"
	"strings"

	apperrors "notewise/backend/internal/errors"
)

// Message is the uniform chat message shape sent to any backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NoteContext carries the note material assembled by the orchestrator,
// already sized to the context budget. Adapters fold it into a system
// preamble.
type NoteContext struct {
	Title    string
	Content  string
	Excerpts []string
}

// Options are the per-call generation parameters.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// ChatRequest is the uniform request every adapter translates into its
// backend's wire shape.
type ChatRequest struct {
	Messages []Message
	Note     *NoteContext
	Options  Options
}

// ChatResult is a completed non-streaming exchange.
type ChatResult struct {
	Content    string
	Model      string
	TokensUsed int
	Cost       float64
}

// StreamChunk is a single incremental unit of a streaming exchange, local to
// the llm package. The service layer maps it onto the API-facing shape.
type StreamChunk struct {
	Content     string
	Done        bool
	TokensSoFar int
}

// ModelDescriptor describes one model a provider can serve.
type ModelDescriptor struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	ContextWindow   int      `json:"context_window"`
	CostPer1KTokens float64  `json:"cost_per_1k_tokens"`
	Capabilities    []string `json:"capabilities,omitempty"`
}

// ProviderDescriptor is the static catalog entry for a backend. Read-only,
// defined at adapter construction.
type ProviderDescriptor struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	RequiresAPIKey bool              `json:"requires_api_key"`
	Models         []ModelDescriptor `json:"models"`
}

// Model looks up a model descriptor by id, falling back to the provider's
// first model when id is empty or unknown.
func (d ProviderDescriptor) Model(id string) (ModelDescriptor, bool) {
	for _, m := range d.Models {
		if m.ID == id {
			return m, true
		}
	}
	if len(d.Models) > 0 {
		return d.Models[0], id == ""
	}
	return ModelDescriptor{}, false
}

// Provider is the capability contract every backend adapter implements.
type Provider interface {
	Describe() ProviderDescriptor
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)
	ChatStream(ctx context.Context, req *ChatRequest, ch chan<- StreamChunk) error
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
	Analyze(ctx context.Context, content string, kind AnalysisKind) (*Analysis, error)
}

// Registry holds the configured providers, keyed by descriptor id.
type Registry struct {
	providers map[string]Provider
	order     []string
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	for _, p := range providers {
		id := p.Describe().ID
		r.providers[id] = p
		r.order = append(r.order, id)
	}
	return r
}

// Get returns the provider registered under id.
func (r *Registry) Get(id string) (Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", id)
	}
	return p, nil
}

// List returns descriptors in registration order.
func (r *Registry) List() []ProviderDescriptor {
	descriptors := make([]ProviderDescriptor, 0, len(r.order))
	for _, id := range r.order {
		descriptors = append(descriptors, r.providers[id].Describe())
	}
	return descriptors
}

// chatError wraps a backend failure into the uniform AIError shape with the
// CHAT_ERROR code. Adapter failures are returned, never panicked.
func chatError(providerID, message string) error {
	return apperrors.NewAIError(apperrors.CodeChatError, providerID, message)
}

// systemPreamble renders the note context into the system message adapters
// prepend to every exchange.
func systemPreamble(base string, note *NoteContext) string {
	var b strings.Builder
	b.WriteString(base)
	if note == nil {
		return b.String()
	}
	if note.Content != "" {
		b.WriteString("\n\nThe user is currently working on the note")
		if note.Title != "" {
			fmt.Fprintf(&b, " %q", note.Title)
		}
		b.WriteString(":\n")
		b.WriteString(note.Content)
	}
	if len(note.Excerpts) > 0 {
		b.WriteString("\n\nRelated note excerpts:\n")
		for _, ex := range note.Excerpts {
			b.WriteString("- ")
			b.WriteString(ex)
			b.WriteString("\n")
		}
	}
	return b.String()
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"notewise/backend/internal/compactor"
	apperrors "notewise/backend/internal/errors"
	"notewise/backend/internal/llm"
	"notewise/backend/internal/model"
	"notewise/backend/internal/repair"
	"notewise/backend/internal/repository"
	"notewise/backend/internal/tokens"
)

const (
	// sessionTitleLimit is the character budget for titles derived from the
	// first user message.
	sessionTitleLimit = 50

	// historyKeepCount bounds how many recent messages survive compaction.
	historyKeepCount = 10
)

const intentPromptFormat = `You are the file-operation detector of a note-taking app. Decide whether the user's message asks for changes to their notes (creating, modifying or deleting notes or folders).

Respond with ONLY a JSON object in exactly this shape and nothing else:
{"hasOperations": <bool>, "operations": [{"type": "create|modify|delete|create-folder", "path": "<note path>", "content": "<new content if any>", "reason": "<why>"}], "summary": "<one line>", "needsClarification": <bool>, "question": "<question if clarification is needed>"}

User message:
%s`

// RegistryFactory builds the provider registry for one exchange. It is
// invoked per exchange so credential changes in settings take effect on the
// next message without restarting the process.
type RegistryFactory func(settings *Settings) *llm.Registry

// streamWriter delivers frames to the exchange's consumer. Sends are
// abandoned once the consumer's request context ends; a consumer that has
// disconnected must never block the exchange from finishing and releasing
// the session.
type streamWriter struct {
	ctx context.Context
	ch  chan<- model.StreamChunk
}

func (w *streamWriter) send(chunk model.StreamChunk) {
	select {
	case w.ch <- chunk:
	case <-w.ctx.Done():
	}
}

// ChatService orchestrates a conversation exchange: it assembles context
// within the model's budget, drives the selected provider, and owns all
// session mutation.
type ChatService struct {
	repo     repository.Repository
	registry RegistryFactory
	settings *SettingsService

	mu      sync.Mutex
	active  map[string]context.CancelFunc
	pending map[string]*model.StructuredIntent
}

// SendMessageRequest is the structure for a new message request from the client.
type SendMessageRequest struct {
	SessionID      string   `json:"session_id"`
	Content        string   `json:"content"`
	NoteTitle      string   `json:"note_title"`
	NoteContent    string   `json:"note_content"`
	SearchExcerpts []string `json:"search_excerpts"`
	Provider       string   `json:"provider"`
	Model          string   `json:"model"`
	Streaming      bool     `json:"streaming"`
}

func NewChatService(repo repository.Repository, registry RegistryFactory, settings *SettingsService) *ChatService {
	return &ChatService{
		repo:     repo,
		registry: registry,
		settings: settings,
		active:   make(map[string]context.CancelFunc),
		pending:  make(map[string]*model.StructuredIntent),
	}
}

// ListSessions returns session metadata ordered by most recent activity.
func (s *ChatService) ListSessions(ctx context.Context) ([]*model.Session, error) {
	return s.repo.ListSessions(ctx)
}

// GetSession retrieves a session's metadata and all its messages.
func (s *ChatService) GetSession(ctx context.Context, sessionID string) (*model.FullSession, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("could not get session: %w", err)
	}
	return session, nil
}

// DeleteSession removes a session and all its messages.
func (s *ChatService) DeleteSession(ctx context.Context, sessionID string) error {
	slog.Info("Deleting session", "session_id", sessionID)
	if err := s.repo.DeleteSession(ctx, sessionID); err != nil {
		if err == repository.ErrNotFound {
			return apperrors.ErrNotFound
		}
		return err
	}
	return nil
}

// UpdateSessionTitle handles a manual title change.
func (s *ChatService) UpdateSessionTitle(ctx context.Context, sessionID, newTitle string) error {
	if newTitle == "" {
		return fmt.Errorf("%w: title cannot be empty", apperrors.ErrValidation)
	}
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	session.Title = truncate(newTitle, 100)
	return s.repo.UpsertSession(ctx, session)
}

// Cancel stops the in-flight generation for a session, if any. The partial
// assistant text accumulated so far is finalized as a user-stopped message
// by the generation flow itself.
func (s *ChatService) Cancel(sessionID string) error {
	s.mu.Lock()
	cancel, ok := s.active[sessionID]
	s.mu.Unlock()
	if !ok {
		return apperrors.ErrNotFound
	}
	cancel()
	return nil
}

// ResolveIntent approves or rejects a previously surfaced structured intent.
// On approval the intent is returned so the caller can execute it; either
// way the session is unblocked for ordinary chat.
func (s *ChatService) ResolveIntent(ctx context.Context, sessionID string, approve bool) (*model.StructuredIntent, error) {
	s.mu.Lock()
	intent, ok := s.pending[sessionID]
	delete(s.pending, sessionID)
	s.mu.Unlock()
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	content := "Dismissed the proposed file operations."
	if approve {
		content = "Approved: " + intent.Summary
	}
	session.Messages = append(session.Messages, model.Message{
		ID:        uuid.NewString(),
		Role:      model.RoleAssistant,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	if err := s.repo.UpsertSession(ctx, session); err != nil {
		return nil, err
	}

	if approve {
		return intent, nil
	}
	return nil, nil
}

// HandleSendMessage is the core per-exchange sequence. It resolves or
// creates the session, computes the context budget, assembles the outbound
// prompt, drives the provider (streaming or not), and persists the result.
// All failures are delivered as error-tagged frames on streamChan; the
// channel is always closed when the exchange ends.
func (s *ChatService) HandleSendMessage(ctx context.Context, req *SendMessageRequest, streamChan chan<- model.StreamChunk) {
	defer close(streamChan)
	out := &streamWriter{ctx: ctx, ch: streamChan}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		slog.Error("Could not load application settings", "error", err)
		out.send(model.StreamChunk{Error: "Could not load application settings"})
		return
	}

	providerID := req.Provider
	if providerID == "" {
		providerID = settings.Provider
	}
	registry := s.registry(settings)
	provider, err := registry.Get(providerID)
	if err != nil {
		out.send(model.StreamChunk{Error: err.Error()})
		return
	}
	descriptor := provider.Describe()

	// Configuration is checked before any network call is made.
	if descriptor.RequiresAPIKey && settings.APIKey == "" {
		aiErr := apperrors.NewAIError(apperrors.CodeConfigurationMissing, providerID, "backend requires an API key that is not configured")
		out.send(errChunk(aiErr))
		return
	}

	modelID := req.Model
	if modelID == "" {
		modelID = settings.MainModel
	}
	modelDesc, ok := descriptor.Model(modelID)
	if !ok {
		out.send(model.StreamChunk{Error: fmt.Sprintf("unknown model %q for provider %s", modelID, providerID)})
		return
	}
	if modelID == "" {
		modelID = modelDesc.ID
	}

	// The budget is computed before any network call so an impossible
	// reservation surfaces immediately.
	budget, err := tokens.ComputeBudget(modelDesc.ContextWindow, settings.ReservedOutputTokens)
	if err != nil {
		if aiErr, ok := apperrors.AsAIError(err); ok {
			out.send(errChunk(aiErr))
		} else {
			out.send(model.StreamChunk{Error: err.Error()})
		}
		return
	}

	// Resolve or lazily create the session.
	isNewSession := req.SessionID == ""
	var session *model.FullSession
	if isNewSession {
		now := time.Now().UTC()
		session = &model.FullSession{Session: model.Session{
			ID:        uuid.NewString(),
			Title:     truncate(req.Content, sessionTitleLimit),
			CreatedAt: now,
			UpdatedAt: now,
		}}
	} else {
		session, err = s.GetSession(ctx, req.SessionID)
		if err != nil {
			out.send(model.StreamChunk{Error: "Could not find session"})
			return
		}
	}

	// At most one generation is active per session; a second sendMessage is
	// rejected rather than implicitly cancelling the first.
	genCtx, release, err := s.beginGeneration(ctx, session.ID)
	if err != nil {
		out.send(model.StreamChunk{
			Error:     "A generation is already running for this session",
			ErrorCode: string(apperrors.CodeConflict),
			SessionID: session.ID,
		})
		return
	}
	defer release()

	// Intent detection precedes ordinary chat for backends that execute
	// client-side. A PARSE_FAILED outcome silently degrades to plain chat.
	if !descriptor.RequiresAPIKey && s.takePending(session.ID) == nil {
		supportModel := settings.SupportModel
		if supportModel == "" {
			supportModel = modelID
		}
		if stop := s.detectIntent(genCtx, provider, supportModel, req, session, out); stop {
			return
		}
	}

	userMessage := model.Message{
		ID:         uuid.NewString(),
		Role:       model.RoleUser,
		Content:    req.Content,
		Timestamp:  time.Now().UTC(),
		TokenCount: tokens.Estimate(req.Content),
	}
	history := session.Messages
	session.Messages = append(session.Messages, userMessage)

	llmReq := s.buildChatRequest(req, history, budget, llm.Options{
		Model:     modelID,
		MaxTokens: settings.ReservedOutputTokens,
	})

	if req.Streaming {
		s.streamExchange(genCtx, provider, llmReq, session, modelDesc, userMessage, out)
	} else {
		s.wholeExchange(genCtx, provider, llmReq, session, modelDesc, userMessage, out)
	}
}

// buildChatRequest assembles the outbound prompt within the context budget:
// note content sized to the currentNote category, search excerpts to the
// searchResults category, and compacted history to the conversationHistory
// category.
func (s *ChatService) buildChatRequest(req *SendMessageRequest, history []model.Message, budget *tokens.ContextBudget, opts llm.Options) *llm.ChatRequest {
	perMessage := budget.ConversationHistory / historyKeepCount
	compacted := compactor.Compact(history, historyKeepCount, perMessage)

	messages := make([]llm.Message, 0, len(compacted)+1)
	for _, msg := range compacted {
		messages = append(messages, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, llm.Message{Role: model.RoleUser, Content: req.Content})

	note := &llm.NoteContext{
		Title:   req.NoteTitle,
		Content: compactor.Truncate(req.NoteContent, budget.CurrentNote),
	}
	remaining := budget.SearchResults
	for _, excerpt := range req.SearchExcerpts {
		cost := tokens.Estimate(excerpt)
		if cost > remaining {
			break
		}
		note.Excerpts = append(note.Excerpts, excerpt)
		remaining -= cost
	}

	return &llm.ChatRequest{Messages: messages, Note: note, Options: opts}
}

// detectIntent runs the intent pre-pass. It returns true when the exchange
// is complete (an intent or clarification was surfaced) and ordinary chat
// must not proceed.
func (s *ChatService) detectIntent(ctx context.Context, provider llm.Provider, supportModel string, req *SendMessageRequest, session *model.FullSession, out *streamWriter) bool {
	raw, err := provider.Complete(ctx, fmt.Sprintf(intentPromptFormat, req.Content), llm.Options{
		Model:     supportModel,
		MaxTokens: 512,
	})
	if err != nil {
		// A failed detection call falls back to ordinary chat; the user's
		// message must never be lost to an internal pre-pass.
		slog.Warn("Intent detection call failed, proceeding with chat", "error", err, "session_id", session.ID)
		return false
	}

	result := repair.ParseIntent(raw)
	switch result.Outcome {
	case repair.OutcomeOperations:
		userMessage := model.Message{
			ID:         uuid.NewString(),
			Role:       model.RoleUser,
			Content:    req.Content,
			Timestamp:  time.Now().UTC(),
			TokenCount: tokens.Estimate(req.Content),
		}
		session.Messages = append(session.Messages, userMessage)
		session.TotalTokens += userMessage.TokenCount
		if err := s.repo.UpsertSession(ctx, session); err != nil {
			slog.Error("Failed to persist session with surfaced intent", "error", err, "session_id", session.ID)
		}
		s.mu.Lock()
		s.pending[session.ID] = result.Intent
		s.mu.Unlock()
		out.send(model.StreamChunk{Done: true, SessionID: session.ID, Intent: result.Intent})
		return true

	case repair.OutcomeClarification:
		session.Messages = append(session.Messages, model.Message{
			ID:         uuid.NewString(),
			Role:       model.RoleUser,
			Content:    req.Content,
			Timestamp:  time.Now().UTC(),
			TokenCount: tokens.Estimate(req.Content),
		})
		s.finalizeExchange(ctx, session, req.Content, result.Question, supportModel, 0, 0, false)
		out.send(model.StreamChunk{Content: result.Question, Done: true, SessionID: session.ID})
		return true

	default:
		// OutcomeNone and OutcomeParseFailed both mean: proceed with chat.
		return false
	}
}

// streamExchange drives a streaming provider call, forwarding deltas as they
// arrive and materializing the persisted assistant message only on the
// terminal event (or on cancellation, annotated as user-stopped).
func (s *ChatService) streamExchange(ctx context.Context, provider llm.Provider, llmReq *llm.ChatRequest, session *model.FullSession, modelDesc llm.ModelDescriptor, userMessage model.Message, out *streamWriter) {
	llmChan := make(chan llm.StreamChunk)
	errChan := make(chan error, 1)
	go func() { errChan <- provider.ChatStream(ctx, llmReq, llmChan) }()

	var fullResponse []byte
	var finalTokens int
	for chunk := range llmChan {
		if chunk.Done {
			finalTokens = chunk.TokensSoFar
			continue
		}
		fullResponse = append(fullResponse, chunk.Content...)
		out.send(model.StreamChunk{Content: chunk.Content, SessionID: session.ID})
	}
	provErr := <-errChan

	partial := string(fullResponse)
	if provErr != nil {
		if ctx.Err() != nil {
			// User-cancelled: the partial text is finalized, not discarded.
			s.finalizeExchange(context.WithoutCancel(ctx), session, userMessage.Content, partial, llmReq.Options.Model, tokens.Estimate(partial), modelDesc.CostPer1KTokens, true)
			out.send(model.StreamChunk{Done: true, SessionID: session.ID, UserStopped: true})
			return
		}
		s.persistUserMessageOnly(ctx, session)
		out.send(providerErrChunk(provErr, session.ID))
		return
	}

	if finalTokens == 0 {
		finalTokens = tokens.Estimate(partial)
	}
	s.finalizeExchange(ctx, session, userMessage.Content, partial, llmReq.Options.Model, finalTokens, modelDesc.CostPer1KTokens, false)
	out.send(model.StreamChunk{Done: true, SessionID: session.ID, TokensSoFar: finalTokens})
}

// wholeExchange drives a non-streaming provider call.
func (s *ChatService) wholeExchange(ctx context.Context, provider llm.Provider, llmReq *llm.ChatRequest, session *model.FullSession, modelDesc llm.ModelDescriptor, userMessage model.Message, out *streamWriter) {
	result, err := provider.Chat(ctx, llmReq)
	if err != nil {
		if ctx.Err() != nil {
			s.persistUserMessageOnly(context.WithoutCancel(ctx), session)
			out.send(model.StreamChunk{Done: true, SessionID: session.ID, UserStopped: true})
			return
		}
		s.persistUserMessageOnly(ctx, session)
		out.send(providerErrChunk(err, session.ID))
		return
	}

	s.finalizeExchange(ctx, session, userMessage.Content, result.Content, result.Model, result.TokensUsed, modelDesc.CostPer1KTokens, false)
	out.send(model.StreamChunk{Content: result.Content, Done: true, SessionID: session.ID, TokensSoFar: result.TokensUsed})
}

// finalizeExchange appends the assistant message, updates the running
// totals, and persists the whole session graph.
func (s *ChatService) finalizeExchange(ctx context.Context, session *model.FullSession, userContent, assistantContent, modelID string, tokenCount int, costPer1K float64, userStopped bool) {
	var metadata json.RawMessage
	if userStopped {
		metadata = json.RawMessage(`{"user_stopped": true}`)
	}
	assistantMessage := model.Message{
		ID:         uuid.NewString(),
		Role:       model.RoleAssistant,
		Content:    assistantContent,
		Timestamp:  time.Now().UTC(),
		TokenCount: tokenCount,
		Model:      &modelID,
		Metadata:   metadata,
	}
	session.Messages = append(session.Messages, assistantMessage)
	session.TotalTokens += tokens.Estimate(userContent) + tokenCount
	session.TotalCost += float64(tokenCount) / 1000 * costPer1K

	if err := s.repo.UpsertSession(ctx, session); err != nil {
		slog.Error("CRITICAL: Failed to save session after exchange", "error", err, "session_id", session.ID)
	}
}

// persistUserMessageOnly keeps the user's message after a failed exchange so
// no input is lost; nothing else is stored on failure.
func (s *ChatService) persistUserMessageOnly(ctx context.Context, session *model.FullSession) {
	if err := s.repo.UpsertSession(ctx, session); err != nil {
		slog.Error("Failed to persist session after provider error", "error", err, "session_id", session.ID)
	}
}

// beginGeneration registers a cancellable generation for the session,
// rejecting concurrent ones.
func (s *ChatService) beginGeneration(ctx context.Context, sessionID string) (context.Context, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, running := s.active[sessionID]; running {
		return nil, nil, apperrors.ErrConflict
	}
	genCtx, cancel := context.WithCancel(ctx)
	s.active[sessionID] = cancel
	release := func() {
		s.mu.Lock()
		delete(s.active, sessionID)
		s.mu.Unlock()
		cancel()
	}
	return genCtx, release, nil
}

// takePending clears and returns any surfaced intent for the session. A new
// user message while an intent is pending counts as dismissing it.
func (s *ChatService) takePending(sessionID string) *model.StructuredIntent {
	s.mu.Lock()
	defer s.mu.Unlock()
	intent := s.pending[sessionID]
	delete(s.pending, sessionID)
	return intent
}

func providerErrChunk(err error, sessionID string) model.StreamChunk {
	if aiErr, ok := apperrors.AsAIError(err); ok {
		chunk := errChunk(aiErr)
		chunk.SessionID = sessionID
		return chunk
	}
	return model.StreamChunk{Error: err.Error(), SessionID: sessionID}
}

func errChunk(aiErr *apperrors.AIError) model.StreamChunk {
	return model.StreamChunk{Error: aiErr.Message, ErrorCode: string(aiErr.Code)}
}

// truncate shortens a string to a specified number of runes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

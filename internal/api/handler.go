package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	app_errors "notewise/backend/internal/errors"
	"notewise/backend/internal/interfaces"
	"notewise/backend/internal/model"
	"notewise/backend/internal/service"
)

// ChatHandler handles HTTP requests for sessions, messaging, and settings.
type ChatHandler struct {
	chat     interfaces.ChatService
	settings interfaces.SettingsService
}

func NewChatHandler(chat interfaces.ChatService, settings interfaces.SettingsService) *ChatHandler {
	return &ChatHandler{chat: chat, settings: settings}
}

// GetSessions godoc
// @Summary      List sessions
// @Description  Gets all conversation sessions, most recently active first.
// @Tags         Sessions
// @Produce      json
// @Success      200  {array}   model.Session
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/sessions [get]
func (h *ChatHandler) GetSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.chat.ListSessions(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sessions)
}

// GetSession godoc
// @Summary      Get a session
// @Description  Gets a session's metadata together with all its messages.
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  model.FullSession
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID} [get]
func (h *ChatHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.chat.GetSession(r.Context(), sessionID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, session)
}

// HandleDeleteSession godoc
// @Summary      Delete a session
// @Description  Deletes a session and all its messages.
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  StatusResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID} [delete]
func (h *ChatHandler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.chat.DeleteSession(r.Context(), sessionID); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// UpdateSessionTitle godoc
// @Summary      Update a session's title
// @Description  Manually renames a session.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        sessionID  path      string              true  "Session ID"
// @Param        request    body      UpdateTitleRequest  true  "New title"
// @Success      200        {object}  StatusResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/title [put]
func (h *ChatHandler) UpdateSessionTitle(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req UpdateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(req); err != nil {
		respondWithError(w, err)
		return
	}

	if err := h.chat.UpdateSessionTitle(r.Context(), sessionID, req.Title); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleCancel godoc
// @Summary      Cancel an in-flight generation
// @Description  Stops the running generation for a session. The partial
// @Description  response produced so far is kept and marked user-stopped.
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  StatusResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/cancel [post]
func (h *ChatHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.chat.Cancel(sessionID); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "cancelled"})
}

// HandleResolveIntent godoc
// @Summary      Resolve a pending file-operation intent
// @Description  Approves or dismisses the structured intent surfaced for a
// @Description  session. On approval the intent is returned for execution.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        sessionID  path      string                true  "Session ID"
// @Param        request    body      ResolveIntentRequest  true  "Resolution"
// @Success      200        {object}  model.StructuredIntent
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/intent [post]
func (h *ChatHandler) HandleResolveIntent(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req ResolveIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}

	intent, err := h.chat.ResolveIntent(r.Context(), sessionID, req.Approve)
	if err != nil {
		respondWithError(w, err)
		return
	}
	if intent == nil {
		respondWithJSON(w, http.StatusOK, StatusResponse{Status: "dismissed"})
		return
	}
	respondWithJSON(w, http.StatusOK, intent)
}

// GetSettings godoc
// @Summary      Get application settings
// @Tags         Settings
// @Produce      json
// @Success      200  {object}  service.Settings
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/settings [get]
func (h *ChatHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, settings)
}

// UpdateSettings godoc
// @Summary      Update application settings
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Param        settings  body      service.Settings  true  "New settings"
// @Success      200       {object}  StatusResponse
// @Failure      400       {object}  ErrorResponse
// @Router       /v1/settings [post]
func (h *ChatHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings service.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := h.settings.Save(r.Context(), &settings); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleStreamMessage godoc
// @Summary      Send a message
// @Description  Sends a user message and streams the assistant response as
// @Description  Server-Sent Events. Creates the session when no ID is given.
// @Tags         Sessions
// @Accept       json
// @Produce      text/event-stream
// @Param        message  body      service.SendMessageRequest  true  "Message and note context"
// @Success      200      {object}  model.StreamChunk "Stream of response chunks"
// @Failure      400      {object}  ErrorResponse "Sent as a stream error event"
// @Router       /v1/sessions/messages [post]
func (h *ChatHandler) HandleStreamMessage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var body struct {
		service.SendMessageRequest
		Streaming *bool `json:"streaming"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		slog.Error("Error decoding send message request", "error", err)
		sendStreamError(w, "Invalid request body")
		return
	}
	req := body.SendMessageRequest
	if req.Content == "" {
		sendStreamError(w, "Message content cannot be empty")
		return
	}
	// Streaming is the default; an explicit false delivers the whole
	// response as a single frame on the same event stream.
	req.Streaming = body.Streaming == nil || *body.Streaming

	streamChan := make(chan model.StreamChunk)
	go h.chat.HandleSendMessage(r.Context(), &req, streamChan)

	for chunk := range streamChan {
		if r.Context().Err() != nil {
			slog.Info("Client disconnected during message stream.", "session_id", req.SessionID)
			break
		}
		if err := writeStreamEvent(w, chunk); err != nil {
			slog.Warn("Could not write to message stream, client likely disconnected.", "error", err)
			break
		}
	}

	slog.Info("Finished streaming response.")
}

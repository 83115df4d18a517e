package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	app_errors "notewise/backend/internal/errors"
)

// This file contains shared DTOs for API responses and helpers for sending
// consistent HTTP and SSE responses.

// ErrorResponse defines the standard JSON structure for error messages.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// StatusResponse defines a generic success response for operations that do
// not return a full resource.
type StatusResponse struct {
	Status string `json:"status"`
}

// UpdateTitleRequest is the DTO for the manual session title update endpoint.
type UpdateTitleRequest struct {
	Title string `json:"title" validate:"required,min=1,max=100" example:"Meeting notes cleanup"`
}

// ResolveIntentRequest is the DTO for approving or dismissing a surfaced
// file-operation intent.
type ResolveIntentRequest struct {
	Approve bool `json:"approve"`
}

// AnalyzeRequest is the DTO for the note analysis endpoint.
type AnalyzeRequest struct {
	Content string `json:"content" validate:"required,min=1"`
	Kind    string `json:"kind" validate:"required" example:"summary"`
}

// respondWithError maps business-layer errors to HTTP status codes and writes
// a standard JSON error response. Structured AI errors keep their code so the
// client can branch on it.
func respondWithError(w http.ResponseWriter, err error) {
	if aiErr, ok := app_errors.AsAIError(err); ok {
		slog.Warn("Responding with AI error", "code", aiErr.Code, "provider", aiErr.ProviderID, "message", aiErr.Message)
		respondWithJSON(w, http.StatusBadGateway, ErrorResponse{Error: aiErr.Message, Code: string(aiErr.Code)})
		return
	}

	var statusCode int
	var message string

	switch {
	case errors.Is(err, app_errors.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "The requested resource was not found."
	case errors.Is(err, app_errors.ErrValidation):
		statusCode = http.StatusBadRequest
		// Validation messages from the service layer are already
		// user-friendly.
		message = err.Error()
	case errors.Is(err, app_errors.ErrConflict):
		statusCode = http.StatusConflict
		message = "A conflict occurred with the current state of the resource."
	default:
		// Unhandled errors never leak implementation details to the client.
		statusCode = http.StatusInternalServerError
		message = "An unexpected internal server error occurred."
	}

	slog.Warn("Responding with error", "status_code", statusCode, "client_message", message, "internal_error", err)

	respondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondWithJSON marshals a payload and writes it with the given status code.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

// sendStreamError sends a structured error message over an SSE stream so
// clients consuming streams can handle failures gracefully.
func sendStreamError(w http.ResponseWriter, message string) {
	slog.Warn("Sending stream error to client", "message", message)

	jsonData, err := json.Marshal(ErrorResponse{Error: message})
	if err != nil {
		slog.Error("Failed to marshal stream error payload", "error", err)
		return
	}

	if _, err := fmt.Fprintf(w, "event: error\ndata: %s\n\n", string(jsonData)); err != nil {
		slog.Warn("Failed to write stream error, client might have disconnected", "error", err)
		return
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// writeStreamEvent marshals data and writes it to an SSE stream. A returned
// error signals that the client has disconnected.
func writeStreamEvent(w http.ResponseWriter, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to marshal stream data to JSON", "error", err)
		return nil
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", string(jsonData)); err != nil {
		return fmt.Errorf("failed to write data to stream: %w", err)
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}

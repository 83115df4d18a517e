// The `_test` suffix creates a "black box" test package: the tests can only
// reach the api package's exported identifiers.
package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"notewise/backend/internal/api"
	app_errors "notewise/backend/internal/errors"
	"notewise/backend/internal/interfaces/mocks"
	"notewise/backend/internal/model"
	"notewise/backend/internal/service"
)

func setupChatHandler(t *testing.T) (*api.ChatHandler, *mocks.MockChatService, *mocks.MockSettingsService) {
	mockChatSvc := mocks.NewMockChatService(t)
	mockSettingsSvc := mocks.NewMockSettingsService(t)
	handler := api.NewChatHandler(mockChatSvc, mockSettingsSvc)
	return handler, mockChatSvc, mockSettingsSvc
}

// addChiURLParams simulates how the chi router injects URL parameters
// (e.g. `{sessionID}`) into the request's context.
func addChiURLParams(req *http.Request, params map[string]string) *http.Request {
	chiCtx := chi.NewRouteContext()
	for key, value := range params {
		chiCtx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, chiCtx))
}

func TestChatHandler_GetSettings(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, _, mockSettingsSvc := setupChatHandler(t)
		expectedSettings := &service.Settings{Provider: "ollama", MainModel: "llama3.2"}
		mockSettingsSvc.On("Get", mock.Anything).Return(expectedSettings, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/v1/settings", nil)
		rr := httptest.NewRecorder()
		handler.GetSettings(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockSettingsSvc.AssertExpectations(t)
	})

	t.Run("Failure", func(t *testing.T) {
		handler, _, mockSettingsSvc := setupChatHandler(t)
		mockSettingsSvc.On("Get", mock.Anything).Return(nil, app_errors.ErrInternal).Once()

		req := httptest.NewRequest(http.MethodGet, "/v1/settings", nil)
		rr := httptest.NewRecorder()
		handler.GetSettings(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		mockSettingsSvc.AssertExpectations(t)
	})
}

func TestChatHandler_UpdateSettings(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, _, mockSettingsSvc := setupChatHandler(t)
		settingsJSON := `{"provider":"openai","main_model":"gpt-4o-mini","api_key":"sk-test"}`
		req := httptest.NewRequest(http.MethodPost, "/v1/settings", strings.NewReader(settingsJSON))
		rr := httptest.NewRecorder()

		mockSettingsSvc.On("Save", mock.Anything, mock.MatchedBy(func(s *service.Settings) bool {
			return s.Provider == "openai" && s.MainModel == "gpt-4o-mini"
		})).Return(nil).Once()

		handler.UpdateSettings(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockSettingsSvc.AssertExpectations(t)
	})

	t.Run("Failure - Invalid JSON", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)
		req := httptest.NewRequest(http.MethodPost, "/v1/settings", strings.NewReader(`{invalid`))
		rr := httptest.NewRecorder()
		handler.UpdateSettings(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestChatHandler_GetSessions(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		expectedSessions := []*model.Session{{ID: "sess1", Title: "Test Session"}}
		mockChatSvc.On("ListSessions", mock.Anything).Return(expectedSessions, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/v1/sessions", nil)
		rr := httptest.NewRecorder()
		handler.GetSessions(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var returned []*model.Session
		err := json.Unmarshal(rr.Body.Bytes(), &returned)
		assert.NoError(t, err)
		assert.Equal(t, expectedSessions, returned)

		mockChatSvc.AssertExpectations(t)
	})

	t.Run("Failure - Service returns error", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("ListSessions", mock.Anything).Return(nil, errors.New("internal error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/v1/sessions", nil)
		rr := httptest.NewRecorder()
		handler.GetSessions(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "internal server error")
	})
}

func TestChatHandler_GetSession(t *testing.T) {
	sessionID := "test-session-id"

	t.Run("Success", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		expectedSession := &model.FullSession{Session: model.Session{ID: sessionID}}
		mockChatSvc.On("GetSession", mock.Anything, sessionID).Return(expectedSession, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+sessionID, nil)
		req = addChiURLParams(req, map[string]string{"sessionID": sessionID})
		rr := httptest.NewRecorder()
		handler.GetSession(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockChatSvc.AssertExpectations(t)
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("GetSession", mock.Anything, sessionID).Return(nil, app_errors.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+sessionID, nil)
		req = addChiURLParams(req, map[string]string{"sessionID": sessionID})
		rr := httptest.NewRecorder()
		handler.GetSession(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockChatSvc.AssertExpectations(t)
	})
}

func TestChatHandler_UpdateSessionTitle(t *testing.T) {
	sessionID := "test-session-id"

	t.Run("Success", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		newTitle := "A valid title"
		reqBody := `{"title": "` + newTitle + `"}`
		mockChatSvc.On("UpdateSessionTitle", mock.Anything, sessionID, newTitle).Return(nil).Once()
		req := httptest.NewRequest(http.MethodPut, "/v1/sessions/"+sessionID+"/title", strings.NewReader(reqBody))
		req = addChiURLParams(req, map[string]string{"sessionID": sessionID})
		rr := httptest.NewRecorder()
		handler.UpdateSessionTitle(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		mockChatSvc.AssertExpectations(t)
	})

	t.Run("Failure - Validation Error (empty title)", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)
		reqBody := `{"title": ""}`
		req := httptest.NewRequest(http.MethodPut, "/v1/sessions/"+sessionID+"/title", strings.NewReader(reqBody))
		req = addChiURLParams(req, map[string]string{"sessionID": sessionID})
		rr := httptest.NewRecorder()
		handler.UpdateSessionTitle(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Field 'Title' failed on the 'required' tag")
	})

	t.Run("Failure - Bad JSON", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)
		reqBody := `{"title":`
		req := httptest.NewRequest(http.MethodPut, "/v1/sessions/"+sessionID+"/title", strings.NewReader(reqBody))
		req = addChiURLParams(req, map[string]string{"sessionID": sessionID})
		rr := httptest.NewRecorder()
		handler.UpdateSessionTitle(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestChatHandler_HandleDeleteSession(t *testing.T) {
	sessionID := "test-session-id"

	t.Run("Success", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("DeleteSession", mock.Anything, sessionID).Return(nil).Once()
		req := httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+sessionID, nil)
		req = addChiURLParams(req, map[string]string{"sessionID": sessionID})
		rr := httptest.NewRecorder()
		handler.HandleDeleteSession(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		mockChatSvc.AssertExpectations(t)
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("DeleteSession", mock.Anything, sessionID).Return(app_errors.ErrNotFound).Once()
		req := httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+sessionID, nil)
		req = addChiURLParams(req, map[string]string{"sessionID": sessionID})
		rr := httptest.NewRecorder()
		handler.HandleDeleteSession(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockChatSvc.AssertExpectations(t)
	})
}

func TestChatHandler_HandleCancel(t *testing.T) {
	sessionID := "test-session-id"

	t.Run("Success", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("Cancel", sessionID).Return(nil).Once()
		req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+sessionID+"/cancel", nil)
		req = addChiURLParams(req, map[string]string{"sessionID": sessionID})
		rr := httptest.NewRecorder()
		handler.HandleCancel(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "cancelled")
		mockChatSvc.AssertExpectations(t)
	})

	t.Run("Failure - No generation running", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("Cancel", sessionID).Return(app_errors.ErrNotFound).Once()
		req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+sessionID+"/cancel", nil)
		req = addChiURLParams(req, map[string]string{"sessionID": sessionID})
		rr := httptest.NewRecorder()
		handler.HandleCancel(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockChatSvc.AssertExpectations(t)
	})
}

func TestChatHandler_HandleResolveIntent(t *testing.T) {
	sessionID := "test-session-id"

	t.Run("Success - Approved intent is returned", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		intent := &model.StructuredIntent{
			Operations:       []model.FileOperation{{Type: "create", Path: "a.md"}},
			Summary:          "Create a.md",
			RequiresApproval: true,
		}
		mockChatSvc.On("ResolveIntent", mock.Anything, sessionID, true).Return(intent, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+sessionID+"/intent", strings.NewReader(`{"approve": true}`))
		req = addChiURLParams(req, map[string]string{"sessionID": sessionID})
		rr := httptest.NewRecorder()
		handler.HandleResolveIntent(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "a.md")
		mockChatSvc.AssertExpectations(t)
	})

	t.Run("Success - Dismissed intent returns status", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("ResolveIntent", mock.Anything, sessionID, false).Return(nil, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+sessionID+"/intent", strings.NewReader(`{"approve": false}`))
		req = addChiURLParams(req, map[string]string{"sessionID": sessionID})
		rr := httptest.NewRecorder()
		handler.HandleResolveIntent(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "dismissed")
		mockChatSvc.AssertExpectations(t)
	})

	t.Run("Failure - Nothing pending", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("ResolveIntent", mock.Anything, sessionID, true).Return(nil, app_errors.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+sessionID+"/intent", strings.NewReader(`{"approve": true}`))
		req = addChiURLParams(req, map[string]string{"sessionID": sessionID})
		rr := httptest.NewRecorder()
		handler.HandleResolveIntent(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockChatSvc.AssertExpectations(t)
	})
}

func TestChatHandler_HandleStreamMessage(t *testing.T) {
	t.Run("Success - Service is called and frames are forwarded", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		reqBody := `{"content": "hello"}`
		req := httptest.NewRequest(http.MethodPost, "/v1/sessions/messages", strings.NewReader(reqBody))
		rr := httptest.NewRecorder()

		// HandleSendMessage runs in a goroutine; the mock must close the
		// channel or the handler would block forever.
		mockChatSvc.On("HandleSendMessage", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				streamChan := args.Get(2).(chan<- model.StreamChunk)
				streamChan <- model.StreamChunk{Content: "hi"}
				streamChan <- model.StreamChunk{Done: true, SessionID: "sess1"}
				close(streamChan)
			}).Once()

		handler.HandleStreamMessage(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))
		body := rr.Body.String()
		assert.Contains(t, body, `data: {"content":"hi"`)
		assert.Contains(t, body, `"done":true`)
		mockChatSvc.AssertExpectations(t)
	})

	t.Run("Failure - Invalid JSON", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)
		reqBody := `{"content":`
		req := httptest.NewRequest(http.MethodPost, "/v1/sessions/messages", strings.NewReader(reqBody))
		rr := httptest.NewRecorder()

		handler.HandleStreamMessage(rr, req)

		// For streaming endpoints, errors are sent over the stream itself.
		assert.Contains(t, rr.Body.String(), "Invalid request body")
		assert.Contains(t, rr.Body.String(), "event: error")
	})

	t.Run("Failure - Empty content", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)
		reqBody := `{"content": ""}`
		req := httptest.NewRequest(http.MethodPost, "/v1/sessions/messages", strings.NewReader(reqBody))
		rr := httptest.NewRecorder()

		handler.HandleStreamMessage(rr, req)

		assert.Contains(t, rr.Body.String(), "Message content cannot be empty")
	})
}

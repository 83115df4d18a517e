package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	app_errors "notewise/backend/internal/errors"
	"notewise/backend/internal/interfaces"
	"notewise/backend/internal/llm"
)

// ProviderHandler handles HTTP requests for the provider catalog and note
// analysis.
type ProviderHandler struct {
	service interfaces.ProviderService
}

func NewProviderHandler(svc interfaces.ProviderService) *ProviderHandler {
	return &ProviderHandler{service: svc}
}

// HandleListProviders godoc
// @Summary      List providers
// @Description  Gets the catalog of configured AI backends and their models.
// @Tags         Providers
// @Produce      json
// @Success      200  {array}   llm.ProviderDescriptor
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/providers [get]
func (h *ProviderHandler) HandleListProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.service.List(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, providers)
}

// HandleAnalyze godoc
// @Summary      Analyze a note
// @Description  Runs a one-shot analysis (summary, topics, tags, connections
// @Description  or full) on the given note content.
// @Tags         Providers
// @Accept       json
// @Produce      json
// @Param        request  body      AnalyzeRequest  true  "Note content and analysis kind"
// @Success      200      {object}  llm.Analysis
// @Failure      400      {object}  ErrorResponse
// @Failure      502      {object}  ErrorResponse
// @Router       /v1/analyze [post]
func (h *ProviderHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(req); err != nil {
		respondWithError(w, err)
		return
	}

	analysis, err := h.service.Analyze(r.Context(), req.Content, llm.AnalysisKind(req.Kind))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, analysis)
}

package tokens

import (
	"fmt"

	apperrors "notewise/backend/internal/errors"
)

// ContextBudget partitions a model's input window across content categories.
// All values are estimated tokens. Invariant:
// CurrentNote + ConversationHistory + SearchResults + ReservedForOutput <= TotalBudget.
type ContextBudget struct {
	TotalBudget         int `json:"total_budget"`
	ReservedForOutput   int `json:"reserved_for_output"`
	CurrentNote         int `json:"current_note"`
	ConversationHistory int `json:"conversation_history"`
	SearchResults       int `json:"search_results"`
}

// Fixed shares of the usable window, in tenths. The current note gets the
// largest slice and also absorbs integer-division rounding so the three
// categories always sum to exactly the usable window.
const (
	historyTenths = 3
	searchTenths  = 2
)

// ComputeBudget splits modelMaxTokens - reservedForOutput across the note,
// history, and search categories. When the reservation meets or exceeds the
// model's capacity every category is clamped to zero and a BUDGET_EXHAUSTED
// error is returned alongside the zeroed budget.
func ComputeBudget(modelMaxTokens, reservedForOutput int) (*ContextBudget, error) {
	budget := &ContextBudget{
		TotalBudget:       modelMaxTokens,
		ReservedForOutput: reservedForOutput,
	}

	usable := modelMaxTokens - reservedForOutput
	if usable <= 0 {
		return budget, apperrors.NewAIError(
			apperrors.CodeBudgetExhausted,
			"",
			fmt.Sprintf("reserved output of %d tokens exceeds model capacity of %d", reservedForOutput, modelMaxTokens),
		)
	}

	budget.ConversationHistory = usable * historyTenths / 10
	budget.SearchResults = usable * searchTenths / 10
	budget.CurrentNote = usable - budget.ConversationHistory - budget.SearchResults
	return budget, nil
}

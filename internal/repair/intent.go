package repair

import (
	"encoding/json"

	"notewise/backend/internal/model"
)

// Outcome discriminates the result of an intent-detection parse.
type Outcome int

const (
	// OutcomeNone means the model decided no file operation is implied.
	OutcomeNone Outcome = iota
	// OutcomeOperations means a structured intent was recovered and awaits
	// user approval.
	OutcomeOperations
	// OutcomeClarification means the model needs more information before it
	// can propose operations.
	OutcomeClarification
	// OutcomeParseFailed means the response could not be recovered into any
	// known shape. Callers treat this the same as OutcomeNone.
	OutcomeParseFailed
)

// Result is the discriminated outcome of ParseIntent. It is always valid;
// ParseIntent never returns an error to its caller.
type Result struct {
	Outcome  Outcome
	Intent   *model.StructuredIntent
	Question string
}

// intentPayload mirrors the JSON shape the intent-detection prompt asks the
// model to produce.
type intentPayload struct {
	HasOperations      bool                  `json:"hasOperations"`
	Operations         []model.FileOperation `json:"operations"`
	Summary            string                `json:"summary"`
	NeedsClarification bool                  `json:"needsClarification"`
	Question           string                `json:"question"`
}

var validOperationTypes = map[string]bool{
	"create":        true,
	"modify":        true,
	"delete":        true,
	"create-folder": true,
}

// ParseIntent repairs raw model output and validates it into one of the
// known intent shapes. Any failure along the way degrades to
// OutcomeParseFailed rather than an error: a malformed intent response must
// never break the surrounding conversation.
func ParseIntent(raw string) Result {
	repaired, err := Repair(raw)
	if err != nil {
		return Result{Outcome: OutcomeParseFailed}
	}

	var payload intentPayload
	if err := json.Unmarshal([]byte(repaired), &payload); err != nil {
		return Result{Outcome: OutcomeParseFailed}
	}

	if payload.NeedsClarification && payload.Question != "" {
		return Result{Outcome: OutcomeClarification, Question: payload.Question}
	}

	if !payload.HasOperations || len(payload.Operations) == 0 {
		return Result{Outcome: OutcomeNone}
	}

	ops := make([]model.FileOperation, 0, len(payload.Operations))
	for _, op := range payload.Operations {
		if op.Path == "" || !validOperationTypes[op.Type] {
			continue
		}
		ops = append(ops, op)
	}
	if len(ops) == 0 {
		return Result{Outcome: OutcomeNone}
	}

	return Result{
		Outcome: OutcomeOperations,
		Intent: &model.StructuredIntent{
			Operations: ops,
			Summary:    payload.Summary,
			// Intents extracted from model output are never trusted without
			// explicit user approval.
			RequiresApproval: true,
		},
	}
}

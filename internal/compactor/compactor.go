// Package compactor reduces a long conversation history to a bounded recent
// window sized to the history token budget. Compaction is lossy and
// best-effort: it never fails, it only degrades fidelity.
package compactor

import (
	"unicode/utf8"

	"notewise/backend/internal/model"
	"notewise/backend/internal/tokens"
)

// Compact keeps at most keepCount most-recent messages, preserving
// oldest-first order, and truncates each kept message's content to fit
// perMessageTokenBudget. Content is always trimmed from the end so a system
// preamble embedded at the head of long content stays intact.
func Compact(messages []model.Message, keepCount, perMessageTokenBudget int) []model.Message {
	if keepCount <= 0 || len(messages) == 0 {
		return []model.Message{}
	}

	start := 0
	if len(messages) > keepCount {
		start = len(messages) - keepCount
	}

	kept := make([]model.Message, 0, len(messages)-start)
	for _, msg := range messages[start:] {
		msg.Content = Truncate(msg.Content, perMessageTokenBudget)
		msg.TokenCount = tokens.Estimate(msg.Content)
		kept = append(kept, msg)
	}
	return kept
}

// Truncate trims s from the end until its token estimate fits the budget,
// cutting only at rune boundaries. The orchestrator also uses it to size
// note content and search excerpts to their budget categories.
func Truncate(s string, budget int) string {
	if budget <= 0 {
		return ""
	}
	maxBytes := budget * tokens.ApproxBytesPerToken
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

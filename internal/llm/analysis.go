package llm

import (
	"strings"
	"unicode"
)

// AnalysisKind selects which facet of a note an Analyze call extracts.
// The set is closed; every adapter produces the Full variant through the
// same field-by-field extraction rules so callers never branch on backend
// identity.
type AnalysisKind string

const (
	AnalysisSummary     AnalysisKind = "summary"
	AnalysisTopics      AnalysisKind = "topics"
	AnalysisTags        AnalysisKind = "tags"
	AnalysisConnections AnalysisKind = "connections"
	AnalysisFull        AnalysisKind = "full"
)

// Analysis is the fixed result shape of an Analyze call. Fields not covered
// by the requested kind are left at their zero values.
type Analysis struct {
	Kind        AnalysisKind `json:"kind"`
	Summary     string       `json:"summary,omitempty"`
	Topics      []string     `json:"topics,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Connections []string     `json:"connections,omitempty"`
}

// analysisPrompt builds the instruction sent for an Analyze call. The
// labeled-section format below is what extractAnalysis scrapes, so the two
// must stay in sync.
func analysisPrompt(content string, kind AnalysisKind) string {
	var b strings.Builder
	b.WriteString("Analyze the following note. Respond in plain text using exactly these labeled sections")
	switch kind {
	case AnalysisSummary:
		b.WriteString(":\nSummary: <one or two sentences>\n")
	case AnalysisTopics:
		b.WriteString(":\nTopics: <comma-separated list>\n")
	case AnalysisTags:
		b.WriteString(":\nTags: <comma-separated list of short tags>\n")
	case AnalysisConnections:
		b.WriteString(":\nConnections: <comma-separated list of related concepts>\n")
	default:
		b.WriteString(":\nSummary: <one or two sentences>\nTopics: <comma-separated list>\nTags: <comma-separated list of short tags>\nConnections: <comma-separated list of related concepts>\n")
	}
	b.WriteString("\nNote:\n")
	b.WriteString(content)
	return b.String()
}

// extractAnalysis turns free-form model prose into an Analysis. Backends in
// use here have no native JSON mode for analysis calls, so this is an
// explicit best-effort extractor with a documented fallback default per
// field: Summary falls back to the first non-empty line of the prose, list
// fields fall back to empty slices. This path is deliberately separate from
// the strict-JSON repair pipeline; the two failure modes must never be
// conflated.
func extractAnalysis(text string, kind AnalysisKind) *Analysis {
	a := &Analysis{Kind: kind}

	switch kind {
	case AnalysisSummary:
		a.Summary = extractSection(text, "summary")
	case AnalysisTopics:
		a.Topics = extractList(text, "topics")
	case AnalysisTags:
		a.Tags = extractList(text, "tags")
	case AnalysisConnections:
		a.Connections = extractList(text, "connections")
	default:
		a.Kind = AnalysisFull
		a.Summary = extractSection(text, "summary")
		a.Topics = extractList(text, "topics")
		a.Tags = extractList(text, "tags")
		a.Connections = extractList(text, "connections")
	}
	return a
}

// extractSection returns the text following a "<label>:" heading up to the
// next heading, or the first non-empty line when the label is absent.
func extractSection(text, label string) string {
	lines := strings.Split(text, "\n")
	var collected []string
	capturing := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if capturing {
			if trimmed == "" || isHeading(trimmed) {
				break
			}
			collected = append(collected, trimmed)
			continue
		}
		if rest, ok := headingValue(trimmed, label); ok {
			capturing = true
			if rest != "" {
				collected = append(collected, rest)
			}
		}
	}
	if len(collected) > 0 {
		return strings.Join(collected, " ")
	}
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// extractList collects the bullet or comma-separated items under a
// "<label>:" heading. Absent label yields an empty slice.
func extractList(text, label string) []string {
	items := []string{}
	lines := strings.Split(text, "\n")
	capturing := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !capturing {
			rest, ok := headingValue(trimmed, label)
			if !ok {
				continue
			}
			capturing = true
			if rest != "" {
				items = append(items, splitItems(rest)...)
			}
			continue
		}
		if trimmed == "" || isHeading(trimmed) {
			break
		}
		if bullet := strings.TrimLeft(trimmed, "-*• \t"); bullet != trimmed {
			items = append(items, cleanItem(bullet))
		} else {
			items = append(items, splitItems(trimmed)...)
		}
	}
	return items
}

// headingValue matches "Label: rest" case-insensitively, tolerating
// markdown emphasis and numbering around the label.
func headingValue(line, label string) (string, bool) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", false
	}
	head := strings.ToLower(strings.Trim(line[:idx], "#*_-0123456789. \t"))
	if head != label {
		return "", false
	}
	return strings.TrimSpace(line[idx+1:]), true
}

func isHeading(line string) bool {
	idx := strings.IndexByte(line, ':')
	if idx <= 0 || idx > 40 {
		return false
	}
	for _, r := range line[:idx] {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) && !strings.ContainsRune("#*_-.", r) {
			return false
		}
	}
	return true
}

func splitItems(s string) []string {
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if item := cleanItem(p); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func cleanItem(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`+"`*_")
	return strings.TrimSpace(s)
}

package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const analysisProse = `Summary: A note about weekly meal planning and shopping.

Topics: cooking, budgeting, planning

Tags:
- meals
- shopping

Connections: recipe collection, pantry inventory
`

func TestExtractAnalysis_Full(t *testing.T) {
	a := extractAnalysis(analysisProse, AnalysisFull)

	assert.Equal(t, AnalysisFull, a.Kind)
	assert.Equal(t, "A note about weekly meal planning and shopping.", a.Summary)
	assert.Equal(t, []string{"cooking", "budgeting", "planning"}, a.Topics)
	assert.Equal(t, []string{"meals", "shopping"}, a.Tags)
	assert.Equal(t, []string{"recipe collection", "pantry inventory"}, a.Connections)
}

func TestExtractAnalysis_SingleKinds(t *testing.T) {
	summary := extractAnalysis(analysisProse, AnalysisSummary)
	assert.NotEmpty(t, summary.Summary)
	assert.Empty(t, summary.Topics)

	topics := extractAnalysis(analysisProse, AnalysisTopics)
	assert.Equal(t, []string{"cooking", "budgeting", "planning"}, topics.Topics)
	assert.Empty(t, topics.Summary)
}

func TestExtractAnalysis_MarkdownDecoratedHeadings(t *testing.T) {
	prose := "## Summary: the gist of it\n**Tags:** one, two\n"
	a := extractAnalysis(prose, AnalysisFull)
	assert.Equal(t, "the gist of it", a.Summary)
	assert.Equal(t, []string{"one", "two"}, a.Tags)
}

func TestExtractAnalysis_FallbackDefaults(t *testing.T) {
	// No recognizable sections: summary falls back to the first non-empty
	// line, list fields to empty slices.
	a := extractAnalysis("The model just rambled here.\nMore rambling.", AnalysisFull)
	assert.Equal(t, "The model just rambled here.", a.Summary)
	assert.Empty(t, a.Topics)
	assert.Empty(t, a.Tags)
	assert.Empty(t, a.Connections)

	empty := extractAnalysis("", AnalysisFull)
	require.NotNil(t, empty)
	assert.Empty(t, empty.Summary)
}

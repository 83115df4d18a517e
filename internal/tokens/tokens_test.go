package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "notewise/backend/internal/errors"
)

func TestEstimate(t *testing.T) {
	assert.Equal(t, 0, Estimate(""))
	assert.Equal(t, 1, Estimate("a"))
	assert.Equal(t, 1, Estimate("abcd"))
	assert.Equal(t, 2, Estimate("abcde"))
	assert.Equal(t, 25, Estimate(strings.Repeat("x", 100)))
}

func TestEstimateMessages(t *testing.T) {
	total := EstimateMessages([]string{"abcd", "efgh", ""})
	assert.Equal(t, 2, total)
}

func TestComputeBudget_CategoriesSumExactly(t *testing.T) {
	// Rounding must be absorbed by the note category, so the three
	// categories sum to exactly the usable window for any input.
	cases := []struct {
		max      int
		reserved int
	}{
		{8192, 1024},
		{4096, 0},
		{100, 1},
		{7, 3},
		{200000, 8192},
		{1, 0},
	}
	for _, tc := range cases {
		budget, err := ComputeBudget(tc.max, tc.reserved)
		require.NoError(t, err, "max=%d reserved=%d", tc.max, tc.reserved)

		usable := tc.max - tc.reserved
		sum := budget.CurrentNote + budget.ConversationHistory + budget.SearchResults
		assert.Equal(t, usable, sum, "max=%d reserved=%d", tc.max, tc.reserved)
		assert.GreaterOrEqual(t, budget.CurrentNote, 0)
		assert.GreaterOrEqual(t, budget.ConversationHistory, 0)
		assert.GreaterOrEqual(t, budget.SearchResults, 0)
		assert.LessOrEqual(t, sum+budget.ReservedForOutput, budget.TotalBudget)
	}
}

func TestComputeBudget_NoteGetsLargestShare(t *testing.T) {
	budget, err := ComputeBudget(10000, 2000)
	require.NoError(t, err)
	assert.Greater(t, budget.CurrentNote, budget.ConversationHistory)
	assert.Greater(t, budget.ConversationHistory, budget.SearchResults)
}

func TestComputeBudget_Exhausted(t *testing.T) {
	t.Run("reservation equals capacity", func(t *testing.T) {
		budget, err := ComputeBudget(4096, 4096)
		require.Error(t, err)

		aiErr, ok := apperrors.AsAIError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeBudgetExhausted, aiErr.Code)

		assert.Zero(t, budget.CurrentNote)
		assert.Zero(t, budget.ConversationHistory)
		assert.Zero(t, budget.SearchResults)
	})

	t.Run("reservation exceeds capacity", func(t *testing.T) {
		budget, err := ComputeBudget(100, 500)
		require.Error(t, err)
		assert.Zero(t, budget.CurrentNote)
		assert.Zero(t, budget.ConversationHistory)
		assert.Zero(t, budget.SearchResults)
	})
}

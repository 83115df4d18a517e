package tokens

// ApproxBytesPerToken is the approximate number of bytes per token. A rough
// heuristic that works reasonably well for English text; good enough for
// budget decisions, not for exact billing.
const ApproxBytesPerToken = 4

// Estimate approximates the number of language-model tokens a piece of text
// will consume. Deterministic and pure; empty text yields 0, non-empty text
// yields at least 1.
func Estimate(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + ApproxBytesPerToken - 1) / ApproxBytesPerToken
}

// EstimateMessages sums the estimate across a slice of message contents.
func EstimateMessages(contents []string) int {
	total := 0
	for _, c := range contents {
		total += Estimate(c)
	}
	return total
}

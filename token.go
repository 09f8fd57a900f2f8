package excerpt

import "context"

// TokenCounter counts tokens in text for a specific model.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

// Estimator approximates the token cost of a text span.
type Estimator func(text string) int

// EstimateTokens approximates how many model tokens text will consume.
//
// It is a heuristic, not a tokenizer: CJK ideographs cost 1.5 tokens each,
// runs of ASCII letters cost 1.3 tokens per word, and every other character
// costs 0.5 tokens once 5 characters per counted word have been set aside.
// The result is the ceiling of the sum and is never negative.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	var runes, cjk, words int
	inWord := false
	for _, r := range text {
		runes++
		switch {
		case r >= 0x4E00 && r <= 0x9FFF:
			cjk++
			inWord = false
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			if !inWord {
				words++
			}
			inWord = true
		default:
			inWord = false
		}
	}

	other := runes - cjk - words*5
	if other < 0 {
		other = 0
	}

	// Weights are kept in tenths so the ceiling is exact.
	tenths := cjk*15 + words*13 + other*5
	return (tenths + 9) / 10
}

// Ensure HeuristicCounter implements TokenCounter at compile time.
var _ TokenCounter = HeuristicCounter{}

// HeuristicCounter adapts EstimateTokens to the TokenCounter interface.
type HeuristicCounter struct{}

// CountTokens returns EstimateTokens(text). It never fails.
func (HeuristicCounter) CountTokens(_ context.Context, text string) (int, error) {
	return EstimateTokens(text), nil
}

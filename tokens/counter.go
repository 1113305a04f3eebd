// Package tokens provides token counting for conversation text.
//
// The engine measures conversations against a token budget on every
// sanitization step, so counters must be deterministic, pure, and cheap to
// call repeatedly. Two implementations are provided: a character-ratio
// estimator (~4 characters per token) and a counter backed by the Anthropic
// token-counting API with automatic fallback to estimation.
package tokens

import (
	"unicode/utf8"
)

// DefaultCharsPerToken is the default character-to-token ratio.
// Approximately 4 characters equals 1 token for English text.
const DefaultCharsPerToken = 4.0

// Counter estimates token counts for text.
type Counter interface {
	// Count returns the token count for the given text.
	Count(text string) int
}

// EstimatingCounter uses a character-to-token ratio for estimation.
type EstimatingCounter struct {
	// CharsPerToken is the average characters per token.
	// Default is 4, which works well for English text.
	CharsPerToken float64
}

// NewEstimatingCounter creates a token counter with the default ratio.
func NewEstimatingCounter() *EstimatingCounter {
	return &EstimatingCounter{CharsPerToken: DefaultCharsPerToken}
}

// NewEstimatingCounterWithRatio creates a token counter with a custom ratio.
// If charsPerToken is <= 0, the default ratio is used.
func NewEstimatingCounterWithRatio(charsPerToken float64) *EstimatingCounter {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	return &EstimatingCounter{CharsPerToken: charsPerToken}
}

// Count estimates the number of tokens in the given text. Runes are counted
// rather than bytes so multi-byte text does not inflate the estimate. Any
// non-empty text counts as at least one token.
func (c *EstimatingCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	runeCount := utf8.RuneCountInString(text)
	n := int(float64(runeCount)/c.CharsPerToken + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}

// Estimate is a convenience function using the default estimator.
func Estimate(text string) int {
	return NewEstimatingCounter().Count(text)
}

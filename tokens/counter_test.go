package tokens

import (
	"testing"
)

func TestEstimatingCounterCount(t *testing.T) {
	counter := NewEstimatingCounter()

	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{
			name:     "empty string",
			text:     "",
			expected: 0,
		},
		{
			name:     "short string",
			text:     "hi",
			expected: 1, // 2/4 = 0.5, rounds to 1
		},
		{
			name:     "4 chars",
			text:     "test",
			expected: 1,
		},
		{
			name:     "8 chars",
			text:     "12345678",
			expected: 2,
		},
		{
			name:     "16 chars",
			text:     "0123456789abcdef",
			expected: 4,
		},
		{
			name:     "multi-byte runes count as runes",
			text:     "日本語テスト文章です", // 10 runes
			expected: 3,            // 10/4 = 2.5, rounds to 3
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := counter.Count(tt.text)
			if got != tt.expected {
				t.Errorf("Count(%q) = %d, want %d", tt.text, got, tt.expected)
			}
		})
	}
}

func TestEstimatingCounterNonZero(t *testing.T) {
	// Any non-empty string counts as at least 1 token.
	counter := NewEstimatingCounter()
	for _, text := range []string{"a", "ab", "abc", "1", ".", " "} {
		if got := counter.Count(text); got < 1 {
			t.Errorf("Count(%q) = %d, expected at least 1", text, got)
		}
	}
}

func TestEstimatingCounterCustomRatio(t *testing.T) {
	counter := NewEstimatingCounterWithRatio(2)
	if got := counter.Count("12345678"); got != 4 {
		t.Errorf("Count with ratio 2 = %d, want 4", got)
	}

	// Non-positive ratios fall back to the default.
	fallback := NewEstimatingCounterWithRatio(-1)
	if fallback.CharsPerToken != DefaultCharsPerToken {
		t.Errorf("CharsPerToken = %v, want %v", fallback.CharsPerToken, DefaultCharsPerToken)
	}
}

func TestEstimate(t *testing.T) {
	if got := Estimate("12345678"); got != 2 {
		t.Errorf("Estimate = %d, want 2", got)
	}
}

func TestAPICounterNilClientEstimates(t *testing.T) {
	counter := NewAPICounter(nil, "claude-3-5-haiku-20241022")

	if !counter.UsingFallback() {
		t.Error("expected nil-client counter to report fallback")
	}

	want := NewEstimatingCounter().Count("some conversation text")
	if got := counter.Count("some conversation text"); got != want {
		t.Errorf("Count = %d, want estimation result %d", got, want)
	}

	if got := counter.Count(""); got != 0 {
		t.Errorf("Count(\"\") = %d, want 0", got)
	}
}

package tokens

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
)

// APICounter counts tokens with the Anthropic token-counting API, falling
// back to character-based estimation when the API is unavailable or a call
// fails. Once a call fails the counter stays on the fallback; the budget
// loop recounts after every replacement and must not alternate between two
// sources mid-run.
type APICounter struct {
	client   *anthropic.Client
	model    string
	estimate *EstimatingCounter
	fallback bool
}

// NewAPICounter creates an APICounter for the given model. A nil client
// yields a counter that always estimates.
func NewAPICounter(client *anthropic.Client, model string) *APICounter {
	return &APICounter{
		client:   client,
		model:    model,
		estimate: NewEstimatingCounter(),
	}
}

// Count returns the token count for the given text. The Counter interface is
// synchronous and context-free, so API calls use the background context;
// use CountContext from a request path that carries deadlines.
func (c *APICounter) Count(text string) int {
	return c.CountContext(context.Background(), text)
}

// CountContext counts tokens with the given context.
func (c *APICounter) CountContext(ctx context.Context, text string) int {
	if text == "" {
		return 0
	}
	if c.client == nil || c.fallback {
		return c.estimate.Count(text)
	}

	result, err := c.client.Messages.CountTokens(ctx, anthropic.MessageCountTokensParams{
		Model: anthropic.Model(c.model),
		Messages: []anthropic.MessageParam{
			{
				Role:    anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(text)},
			},
		},
	})
	if err != nil {
		c.fallback = true
		return c.estimate.Count(text)
	}
	return int(result.InputTokens)
}

// UsingFallback reports whether the counter has switched to estimation.
func (c *APICounter) UsingFallback() bool {
	return c.client == nil || c.fallback
}

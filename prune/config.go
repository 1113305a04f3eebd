package prune

import (
	"fmt"

	"github.com/prunekit/prunekit/budget"
	"github.com/prunekit/prunekit/msgid"
	"github.com/prunekit/prunekit/snapshot"
	"github.com/prunekit/prunekit/tokens"
	"github.com/prunekit/prunekit/tooltag"
	"github.com/prunekit/prunekit/types"
)

// Default configuration values.
const (
	// DefaultBudgetTokens is the fallback token budget when resolution
	// fails or yields zero.
	DefaultBudgetTokens = 50 * 1024

	// DefaultMinUnsanitized is the sanitization safety floor: the minimum
	// number of tool-bearing candidates that stay untouched even if the
	// budget remains exceeded.
	DefaultMinUnsanitized = 6

	// DefaultInlinePayloadThreshold is the minimum inner payload length,
	// in bytes, before a tool-call payload is replaced.
	DefaultInlinePayloadThreshold = 500
)

// Logger interface for engine logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a no-op implementation of Logger.
type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...any) {}
func (noopLogger) Info(msg string, args ...any)  {}
func (noopLogger) Warn(msg string, args ...any)  {}
func (noopLogger) Error(msg string, args ...any) {}

// Config holds engine configuration. The zero value is usable: ApplyDefaults
// fills in an estimating token counter, the static model registry, and the
// default thresholds.
type Config struct {
	// Budget is the token budget configuration value: an integer, a
	// unit-suffixed string ("50k"), an arithmetic expression ("50*1024"),
	// or a fraction of the model's context window (0.5).
	Budget any

	// Model is the model name consulted when Budget is a fraction of a
	// context window.
	Model string

	// DefaultBudget is the fallback when Budget cannot be resolved.
	// Default: DefaultBudgetTokens.
	DefaultBudget int

	// MinUnsanitized is the sanitization safety floor.
	// Default: DefaultMinUnsanitized.
	MinUnsanitized int

	// InlinePayloadThreshold is the minimum tool-call payload length, in
	// bytes, before the payload is replaced.
	// Default: DefaultInlinePayloadThreshold.
	InlinePayloadThreshold int

	// StrictIDs makes ID validation fail the prune instead of dropping
	// unknown IDs with a warning. The conversation is returned unmodified
	// on failure. Default: false (lenient).
	StrictIDs bool

	// Counter counts tokens. Default: tokens.NewEstimatingCounter().
	Counter tokens.Counter

	// Resolver resolves Budget into a concrete token count.
	// Default: a resolver over the static model registry.
	Resolver *budget.Resolver

	// Extractor derives canonical message IDs.
	// Default: msgid.NewExtractor().
	Extractor *msgid.Extractor

	// Detector recognizes tool markup. Default: tooltag.NewDetector().
	Detector *tooltag.Detector

	// Sink receives a snapshot of the final conversation after each prune
	// that modified it. Emission is best-effort. Default: snapshot.NopSink.
	Sink snapshot.Sink

	// OnIDPrune, when set, is called after the ID deletion phase with the
	// working conversation, the number of messages removed, and the phase
	// warnings. Notification only; it cannot alter the prune.
	OnIDPrune func(conv types.Conversation, removed int, warnings []string)

	// OnSanitize, when set, is called after the sanitization phase with
	// the working conversation and the number of messages rewritten.
	OnSanitize func(conv types.Conversation, sanitized int)

	// Logger receives engine diagnostics. Default: no-op.
	Logger Logger
}

// DefaultConfig returns a Config with the standard defaults applied.
func DefaultConfig() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.DefaultBudget == 0 {
		c.DefaultBudget = DefaultBudgetTokens
	}
	if c.MinUnsanitized == 0 {
		c.MinUnsanitized = DefaultMinUnsanitized
	}
	if c.InlinePayloadThreshold == 0 {
		c.InlinePayloadThreshold = DefaultInlinePayloadThreshold
	}
	if c.Counter == nil {
		c.Counter = tokens.NewEstimatingCounter()
	}
	if c.Resolver == nil {
		c.Resolver = budget.NewResolver(budget.NewStaticRegistry())
	}
	c.Resolver.WithDefaults(c.DefaultBudget, 0)
	if c.Extractor == nil {
		c.Extractor = msgid.NewExtractor()
	}
	if c.Detector == nil {
		c.Detector = tooltag.NewDetector()
	}
	if c.Sink == nil {
		c.Sink = snapshot.NopSink{}
	}
	if c.Logger == nil {
		c.Logger = noopLogger{}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DefaultBudget < 0 {
		return fmt.Errorf("%w: default budget must be non-negative, got %d", ErrInvalidConfig, c.DefaultBudget)
	}
	if c.MinUnsanitized < 0 {
		return fmt.Errorf("%w: min unsanitized must be non-negative, got %d", ErrInvalidConfig, c.MinUnsanitized)
	}
	if c.InlinePayloadThreshold < 0 {
		return fmt.Errorf("%w: inline payload threshold must be non-negative, got %d", ErrInvalidConfig, c.InlinePayloadThreshold)
	}
	return nil
}

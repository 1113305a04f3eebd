// Package msgid derives canonical short message identifiers.
//
// A message ID is an 8-character lowercase identifier used to target a
// specific message for deletion. The source of truth, in priority order:
//
//  1. The explicit MessageID field on the message.
//  2. A hint embedded in content: [[message_id: xxxxxxxx]]
//  3. The legacy embedded form: message_id: xxxxxxxx
//
// Extraction is represented as an ordered list of strategy functions tried in
// sequence, so patterns can be added or removed without touching call sites.
package msgid

import (
	"regexp"
	"strings"

	"github.com/prunekit/prunekit/types"
)

// IDLength is the canonical message ID length.
const IDLength = 8

// Strategy attempts to derive an ID from a message. It returns the raw match
// and true on success. Strategies must not mutate the message.
type Strategy func(msg *types.Message) (string, bool)

var (
	// Markers are matched case-insensitively; only the first occurrence
	// in the content counts.
	hintPattern   = regexp.MustCompile(`(?i)\[\[message_id:\s*([0-9a-z]{8})\]\]`)
	legacyPattern = regexp.MustCompile(`(?i)\bmessage_id:\s*([0-9a-z]{8})\b`)
)

// ExplicitField extracts the ID from the message's MessageID field.
func ExplicitField(msg *types.Message) (string, bool) {
	id := strings.TrimSpace(msg.MessageID)
	if id == "" {
		return "", false
	}
	return id, true
}

// HintMarker extracts the ID from the preferred [[message_id: xxxxxxxx]]
// marker embedded in content.
func HintMarker(msg *types.Message) (string, bool) {
	m := hintPattern.FindStringSubmatch(msg.Content)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// LegacyMarker extracts the ID from the legacy "message_id: xxxxxxxx" form.
func LegacyMarker(msg *types.Message) (string, bool) {
	m := legacyPattern.FindStringSubmatch(msg.Content)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// DefaultStrategies is the standard priority order.
var DefaultStrategies = []Strategy{ExplicitField, HintMarker, LegacyMarker}

// Extractor resolves message IDs by trying strategies in order.
type Extractor struct {
	strategies []Strategy
}

// NewExtractor creates an extractor with the default strategy order.
func NewExtractor() *Extractor {
	return &Extractor{strategies: DefaultStrategies}
}

// NewExtractorWithStrategies creates an extractor with a custom strategy
// order. An empty list falls back to the defaults.
func NewExtractorWithStrategies(strategies ...Strategy) *Extractor {
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}
	return &Extractor{strategies: strategies}
}

// Extract returns the canonical ID for the message, or "" if no strategy
// matches. The result is normalized to lowercase. A message that matches no
// pattern simply has no ID; that is not an error.
func (e *Extractor) Extract(msg *types.Message) string {
	if msg == nil {
		return ""
	}
	for _, s := range e.strategies {
		if id, ok := s(msg); ok {
			return Normalize(id)
		}
	}
	return ""
}

// ExtractAll maps each message in the conversation to its canonical ID.
// The returned slice is index-aligned with the conversation; messages
// without an ID map to "".
func (e *Extractor) ExtractAll(conv types.Conversation) []string {
	ids := make([]string, len(conv))
	for i, msg := range conv {
		ids[i] = e.Extract(msg)
	}
	return ids
}

// Normalize lowercases an ID. Length handling is the validator's concern;
// extraction only canonicalizes case.
func Normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Extract is a convenience function using the default extractor.
func Extract(msg *types.Message) string {
	return NewExtractor().Extract(msg)
}

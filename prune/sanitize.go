package prune

import (
	"fmt"
	"strings"

	"github.com/prunekit/prunekit/tokens"
	"github.com/prunekit/prunekit/tooltag"
	"github.com/prunekit/prunekit/types"
)

// ToolResultPlaceholder is the fixed sentence that replaces a cleared
// tool-result body.
const ToolResultPlaceholder = "Content cleared to save tokens. Call the tool again if this output is needed."

// ToolCallPlaceholder replaces an oversized tool-call inner payload.
const ToolCallPlaceholder = "[payload cleared to save tokens]"

// sanitizer progressively replaces oversized tool payloads until the
// conversation fits the budget or the safety floor is reached. It rewrites
// content in place and never removes or reorders messages, so the message
// count is invariant and the token count is monotonically non-increasing.
type sanitizer struct {
	detector        *tooltag.Detector
	counter         tokens.Counter
	minUnsanitized  int
	inlineThreshold int
}

// apply sanitizes candidates in conversation order. Before each candidate
// the current token count is recomputed against the full serialized
// conversation; the loop halts as soon as the budget is met or no more than
// minUnsanitized candidates would remain untouched. Recounting on every step
// is quadratic in the candidate count, which is acceptable at conversation
// scale and is what makes the stopping point exact.
//
// Returns how many messages were modified.
func (s *sanitizer) apply(conv types.Conversation, budgetTokens int) int {
	indices, regions := s.detector.Candidates(conv)

	modified := 0
	for i, idx := range indices {
		if s.counter.Count(conv.Serialize()) <= budgetTokens {
			break
		}
		// Safety floor: keep at least minUnsanitized candidates untouched.
		if len(indices)-i <= s.minUnsanitized {
			break
		}

		if s.sanitizeMessage(conv[idx], regions[i]) {
			modified++
		}
	}
	return modified
}

// sanitizeMessage rewrites one candidate. Tool results are cleared entirely,
// keeping the tool_name and success attributes; tool calls only have their
// inner payload replaced, and only when it exceeds the inline threshold.
func (s *sanitizer) sanitizeMessage(msg *types.Message, region tooltag.Region) bool {
	switch region.Kind {
	case tooltag.KindToolResult:
		msg.Content = toolResultPlaceholder(region)
		return true

	case tooltag.KindToolCall:
		if region.PayloadLen() <= s.inlineThreshold {
			return false
		}
		msg.Content = msg.Content[:region.PayloadStart] + ToolCallPlaceholder + msg.Content[region.PayloadEnd:]
		return true
	}
	return false
}

// toolResultPlaceholder builds the compact replacement for a cleared tool
// result, preserving the original attributes.
func toolResultPlaceholder(region tooltag.Region) string {
	var b strings.Builder
	b.WriteString("<tool_result")
	if region.Tool != "" {
		fmt.Fprintf(&b, " tool_name='%s'", region.Tool)
	}
	if region.Success != "" {
		fmt.Fprintf(&b, " success='%s'", region.Success)
	}
	b.WriteString(">")
	b.WriteString(ToolResultPlaceholder)
	b.WriteString("</tool_result>")
	return b.String()
}

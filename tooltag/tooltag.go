// Package tooltag recognizes tool-call and tool-result payload regions inside
// message text.
//
// Tool markup is semi-structured XML-ish text emitted by an agent loop:
//
//	<write_to_file><path>...</path><content>...</content></write_to_file>
//	<replace_in_file><path>...</path><diff>...</diff></replace_in_file>
//	<tool_result tool_name='X' success='true'>...</tool_result>
//
// Each known tool is recognized by its own Matcher implementation, so adding
// a new tool type is a matter of implementing one interface and registering
// it with the Detector.
package tooltag

import (
	"fmt"
	"regexp"

	"github.com/prunekit/prunekit/types"
)

// Kind distinguishes the two candidate categories for sanitization.
type Kind int

const (
	// KindToolResult marks a full tool-result message (role=user).
	KindToolResult Kind = iota

	// KindToolCall marks a tool invocation message (role=assistant) with an
	// inner payload region.
	KindToolCall
)

// Region describes a recognized tool payload inside message content.
type Region struct {
	// Kind is the candidate category.
	Kind Kind

	// Tool is the tool name: the tag name for tool calls, or the tool_name
	// attribute for tool results.
	Tool string

	// Success is the raw success attribute value of a tool result, or ""
	// when absent. Tool calls leave it empty.
	Success string

	// PayloadStart and PayloadEnd bound the inner payload (the text inside
	// the <content>/<diff> tags) for tool calls. Tool results cover the
	// whole message, so both are zero.
	PayloadStart int
	PayloadEnd   int
}

// PayloadLen returns the inner payload length in bytes.
func (r Region) PayloadLen() int {
	return r.PayloadEnd - r.PayloadStart
}

// Matcher recognizes one tool's markup inside message content.
type Matcher interface {
	// Tool returns the tool name this matcher recognizes.
	Tool() string

	// Match scans content for the tool's markup and returns the first
	// recognized region.
	Match(content string) (Region, bool)
}

// payloadMatcher recognizes a tool invocation tag with a single inner
// payload region, e.g. write_to_file's <content> or replace_in_file's <diff>.
type payloadMatcher struct {
	tool    string
	payload string
	re      *regexp.Regexp
}

func newPayloadMatcher(tool, payloadTag string) *payloadMatcher {
	// Submatch 1 bounds the inner payload. (?s) lets payloads span lines.
	pattern := fmt.Sprintf(`(?is)<%[1]s\b.*?<%[2]s>(.*?)</%[2]s>.*?</%[1]s>`, tool, payloadTag)
	return &payloadMatcher{
		tool:    tool,
		payload: payloadTag,
		re:      regexp.MustCompile(pattern),
	}
}

func (m *payloadMatcher) Tool() string { return m.tool }

func (m *payloadMatcher) Match(content string) (Region, bool) {
	loc := m.re.FindStringSubmatchIndex(content)
	if loc == nil || loc[2] < 0 {
		return Region{}, false
	}
	return Region{
		Kind:         KindToolCall,
		Tool:         m.tool,
		PayloadStart: loc[2],
		PayloadEnd:   loc[3],
	}, true
}

// NewWriteToFileMatcher recognizes <write_to_file> invocations; the payload
// lives in the <content> region.
func NewWriteToFileMatcher() Matcher {
	return newPayloadMatcher("write_to_file", "content")
}

// NewReplaceInFileMatcher recognizes <replace_in_file> invocations; the
// payload lives in the <diff> region.
func NewReplaceInFileMatcher() Matcher {
	return newPayloadMatcher("replace_in_file", "diff")
}

// toolResultMatcher recognizes <tool_result> regions. Attribute values may be
// single- or double-quoted.
type toolResultMatcher struct {
	open    *regexp.Regexp
	name    *regexp.Regexp
	success *regexp.Regexp
}

// NewToolResultMatcher recognizes <tool_result tool_name='X' success='...'>
// regions.
func NewToolResultMatcher() Matcher {
	return &toolResultMatcher{
		open:    regexp.MustCompile(`(?is)<tool_result\b([^>]*)>.*?</tool_result>`),
		name:    regexp.MustCompile(`(?i)\btool_name\s*=\s*(?:'([^']*)'|"([^"]*)")`),
		success: regexp.MustCompile(`(?i)\bsuccess\s*=\s*(?:'([^']*)'|"([^"]*)")`),
	}
}

func (m *toolResultMatcher) Tool() string { return "tool_result" }

func (m *toolResultMatcher) Match(content string) (Region, bool) {
	tag := m.open.FindStringSubmatch(content)
	if tag == nil {
		return Region{}, false
	}
	attrs := tag[1]

	region := Region{Kind: KindToolResult}
	if nm := m.name.FindStringSubmatch(attrs); nm != nil {
		region.Tool = firstNonEmpty(nm[1], nm[2])
	}
	if sc := m.success.FindStringSubmatch(attrs); sc != nil {
		region.Success = firstNonEmpty(sc[1], sc[2])
	}
	return region, true
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// Detector classifies messages as sanitization candidates using a set of
// registered matchers. Tool-result markup is only recognized on user
// messages, tool-call markup only on assistant messages.
type Detector struct {
	resultMatcher Matcher
	callMatchers  []Matcher
}

// NewDetector creates a detector with the standard matcher set.
func NewDetector() *Detector {
	return &Detector{
		resultMatcher: NewToolResultMatcher(),
		callMatchers: []Matcher{
			NewWriteToFileMatcher(),
			NewReplaceInFileMatcher(),
		},
	}
}

// RegisterCallMatcher adds a matcher for an additional tool invocation tag.
func (d *Detector) RegisterCallMatcher(m Matcher) {
	d.callMatchers = append(d.callMatchers, m)
}

// Detect reports whether the message carries recognizable tool markup and
// returns the matched region. Role gating follows the markup conventions:
// results arrive on user turns, calls on assistant turns.
func (d *Detector) Detect(msg *types.Message) (Region, bool) {
	if msg == nil {
		return Region{}, false
	}
	switch msg.Role {
	case types.RoleUser:
		return d.resultMatcher.Match(msg.Content)
	case types.RoleAssistant:
		for _, m := range d.callMatchers {
			if region, ok := m.Match(msg.Content); ok {
				return region, true
			}
		}
	}
	return Region{}, false
}

// Candidates returns the conversation indices carrying tool markup, in
// original conversation order, paired with their matched regions.
func (d *Detector) Candidates(conv types.Conversation) ([]int, []Region) {
	var indices []int
	var regions []Region
	for i, msg := range conv {
		if region, ok := d.Detect(msg); ok {
			indices = append(indices, i)
			regions = append(regions, region)
		}
	}
	return indices, regions
}

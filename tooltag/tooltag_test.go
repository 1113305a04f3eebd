package tooltag

import (
	"strings"
	"testing"

	"github.com/prunekit/prunekit/types"
)

func TestToolResultMatcher(t *testing.T) {
	matcher := NewToolResultMatcher()

	tests := []struct {
		name        string
		content     string
		wantMatch   bool
		wantTool    string
		wantSuccess string
	}{
		{
			name:        "single quoted attributes",
			content:     "<tool_result tool_name='read_file' success='true'>file body</tool_result>",
			wantMatch:   true,
			wantTool:    "read_file",
			wantSuccess: "true",
		},
		{
			name:        "double quoted attributes",
			content:     `<tool_result tool_name="grep" success="false">no matches</tool_result>`,
			wantMatch:   true,
			wantTool:    "grep",
			wantSuccess: "false",
		},
		{
			name:      "no attributes",
			content:   "<tool_result>bare</tool_result>",
			wantMatch: true,
		},
		{
			name:        "multiline body",
			content:     "prefix <tool_result tool_name='ls' success='true'>\nline one\nline two\n</tool_result> suffix",
			wantMatch:   true,
			wantTool:    "ls",
			wantSuccess: "true",
		},
		{
			name:      "no tool markup",
			content:   "just a normal message",
			wantMatch: false,
		},
		{
			name:      "unclosed tag",
			content:   "<tool_result tool_name='x'>never closed",
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region, ok := matcher.Match(tt.content)
			if ok != tt.wantMatch {
				t.Fatalf("Match() ok = %v, want %v", ok, tt.wantMatch)
			}
			if !ok {
				return
			}
			if region.Kind != KindToolResult {
				t.Errorf("Kind = %v, want KindToolResult", region.Kind)
			}
			if region.Tool != tt.wantTool {
				t.Errorf("Tool = %q, want %q", region.Tool, tt.wantTool)
			}
			if region.Success != tt.wantSuccess {
				t.Errorf("Success = %q, want %q", region.Success, tt.wantSuccess)
			}
		})
	}
}

func TestWriteToFileMatcher(t *testing.T) {
	matcher := NewWriteToFileMatcher()

	content := "<write_to_file><path>main.go</path><content>package main\n\nfunc main() {}\n</content></write_to_file>"
	region, ok := matcher.Match(content)
	if !ok {
		t.Fatal("expected match")
	}
	if region.Kind != KindToolCall {
		t.Errorf("Kind = %v, want KindToolCall", region.Kind)
	}
	if region.Tool != "write_to_file" {
		t.Errorf("Tool = %q, want write_to_file", region.Tool)
	}

	payload := content[region.PayloadStart:region.PayloadEnd]
	want := "package main\n\nfunc main() {}\n"
	if payload != want {
		t.Errorf("payload = %q, want %q", payload, want)
	}
	if region.PayloadLen() != len(want) {
		t.Errorf("PayloadLen = %d, want %d", region.PayloadLen(), len(want))
	}
}

func TestReplaceInFileMatcher(t *testing.T) {
	matcher := NewReplaceInFileMatcher()

	content := "<replace_in_file><path>a.go</path><diff>-old\n+new\n</diff></replace_in_file>"
	region, ok := matcher.Match(content)
	if !ok {
		t.Fatal("expected match")
	}
	if got := content[region.PayloadStart:region.PayloadEnd]; got != "-old\n+new\n" {
		t.Errorf("payload = %q", got)
	}

	// The path region is not the payload.
	if _, ok := matcher.Match("<replace_in_file><path>a.go</path></replace_in_file>"); ok {
		t.Error("expected no match without a diff region")
	}
}

func TestDetectorRoleGating(t *testing.T) {
	detector := NewDetector()

	resultContent := "<tool_result tool_name='ls' success='true'>out</tool_result>"
	callContent := "<write_to_file><path>x</path><content>" + strings.Repeat("x", 50) + "</content></write_to_file>"

	tests := []struct {
		name      string
		msg       *types.Message
		wantMatch bool
		wantKind  Kind
	}{
		{
			name:      "tool result on user message",
			msg:       &types.Message{Role: types.RoleUser, Content: resultContent},
			wantMatch: true,
			wantKind:  KindToolResult,
		},
		{
			name:      "tool result markup on assistant message is ignored",
			msg:       &types.Message{Role: types.RoleAssistant, Content: resultContent},
			wantMatch: false,
		},
		{
			name:      "tool call on assistant message",
			msg:       &types.Message{Role: types.RoleAssistant, Content: callContent},
			wantMatch: true,
			wantKind:  KindToolCall,
		},
		{
			name:      "tool call markup on user message is ignored",
			msg:       &types.Message{Role: types.RoleUser, Content: callContent},
			wantMatch: false,
		},
		{
			name:      "system messages are never candidates",
			msg:       &types.Message{Role: types.RoleSystem, Content: resultContent},
			wantMatch: false,
		},
		{
			name:      "nil message",
			msg:       nil,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region, ok := detector.Detect(tt.msg)
			if ok != tt.wantMatch {
				t.Fatalf("Detect() ok = %v, want %v", ok, tt.wantMatch)
			}
			if ok && region.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", region.Kind, tt.wantKind)
			}
		})
	}
}

func TestDetectorCandidatesOrder(t *testing.T) {
	detector := NewDetector()
	conv := types.Conversation{
		{Role: types.RoleSystem, Content: "prompt"},
		{Role: types.RoleUser, Content: "<tool_result tool_name='a'>one</tool_result>"},
		{Role: types.RoleAssistant, Content: "plain reply"},
		{Role: types.RoleUser, Content: "<tool_result tool_name='b'>two</tool_result>"},
		{Role: types.RoleAssistant, Content: "<write_to_file><path>x</path><content>body</content></write_to_file>"},
	}

	indices, regions := detector.Candidates(conv)
	wantIndices := []int{1, 3, 4}
	if len(indices) != len(wantIndices) {
		t.Fatalf("got %d candidates, want %d", len(indices), len(wantIndices))
	}
	for i, want := range wantIndices {
		if indices[i] != want {
			t.Errorf("indices[%d] = %d, want %d", i, indices[i], want)
		}
	}
	if regions[0].Kind != KindToolResult || regions[2].Kind != KindToolCall {
		t.Errorf("unexpected region kinds: %v, %v", regions[0].Kind, regions[2].Kind)
	}
}

type shellMatcher struct{}

func (shellMatcher) Tool() string { return "execute_command" }

func (shellMatcher) Match(content string) (Region, bool) {
	const open, close = "<execute_command>", "</execute_command>"
	start := strings.Index(content, open)
	if start < 0 {
		return Region{}, false
	}
	end := strings.Index(content[start:], close)
	if end < 0 {
		return Region{}, false
	}
	return Region{
		Kind:         KindToolCall,
		Tool:         "execute_command",
		PayloadStart: start + len(open),
		PayloadEnd:   start + end,
	}, true
}

func TestRegisterCallMatcher(t *testing.T) {
	detector := NewDetector()
	detector.RegisterCallMatcher(shellMatcher{})

	msg := &types.Message{Role: types.RoleAssistant, Content: "<execute_command>ls -la</execute_command>"}
	region, ok := detector.Detect(msg)
	if !ok {
		t.Fatal("expected custom matcher to match")
	}
	if region.Tool != "execute_command" {
		t.Errorf("Tool = %q, want execute_command", region.Tool)
	}
	if got := msg.Content[region.PayloadStart:region.PayloadEnd]; got != "ls -la" {
		t.Errorf("payload = %q, want %q", got, "ls -la")
	}
}

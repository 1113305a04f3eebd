package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/prunekit/prunekit/types"
)

// HTMLSink renders each snapshot as a standalone HTML transcript. Message
// content is rendered as markdown and sanitized before inclusion; embedded
// tool markup survives as escaped text rather than live HTML.
type HTMLSink struct {
	dir      string
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

// NewHTMLSink creates a sink writing transcripts into dir.
func NewHTMLSink(dir string) *HTMLSink {
	return &HTMLSink{
		dir:      dir,
		markdown: goldmark.New(),
		policy:   bluemonday.UGCPolicy(),
	}
}

// Emit writes the snapshot as an HTML transcript.
func (s *HTMLSink) Emit(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">")
	fmt.Fprintf(&buf, "<title>conversation %s</title>", html.EscapeString(snap.ConversationID))
	buf.WriteString("</head><body>\n")
	fmt.Fprintf(&buf, "<h1>Conversation %s</h1>\n", html.EscapeString(snap.ConversationID))
	fmt.Fprintf(&buf, "<p>captured %s, %d messages</p>\n",
		snap.CapturedAt.Format("2006-01-02 15:04:05 MST"), len(snap.Messages))

	for i, msg := range snap.Messages {
		fmt.Fprintf(&buf, "<section class=%q>\n", string(msg.Role))
		fmt.Fprintf(&buf, "<h2>#%d %s", i+1, html.EscapeString(string(msg.Role)))
		if msg.MessageID != "" {
			fmt.Fprintf(&buf, " <code>%s</code>", html.EscapeString(msg.MessageID))
		}
		buf.WriteString("</h2>\n")
		buf.WriteString(s.renderContent(msg))
		buf.WriteString("</section>\n")
	}
	buf.WriteString("</body></html>\n")

	name := fmt.Sprintf("%s-%s.html", snap.CapturedAt.Format("20060102T150405"), snap.ID)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// renderContent converts message markdown to sanitized HTML. If rendering
// fails the raw content is escaped into a <pre> block instead.
func (s *HTMLSink) renderContent(msg *types.Message) string {
	var rendered bytes.Buffer
	if err := s.markdown.Convert([]byte(msg.Content), &rendered); err != nil {
		return "<pre>" + html.EscapeString(msg.Content) + "</pre>\n"
	}
	return s.policy.Sanitize(rendered.String())
}

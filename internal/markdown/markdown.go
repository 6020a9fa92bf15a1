// Package markdown renders normalized conversation records as Markdown
// transcript text.
package markdown

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/wesm/chatmd/internal/extract"
)

const noMessagesPlaceholder = "*No messages found in this conversation.*\n"

// FormatMessage renders a single message record as a Markdown block:
// a bold sender line with an optional italic timestamp, then the text.
func FormatMessage(msg gjson.Result) string {
	var b strings.Builder
	b.WriteString("**")
	b.WriteString(extract.Sender(msg))
	b.WriteString(":**")
	if ts, ok := extract.Timestamp(msg); ok {
		b.WriteString(" *(")
		b.WriteString(ts)
		b.WriteString(")*")
	}
	b.WriteString("\n")
	b.WriteString(extract.Text(msg))
	b.WriteString("\n")
	return b.String()
}

// RenderConversation renders a whole conversation as a Markdown
// document: title heading, an optional metadata section, then one block
// per message. Non-object entries in the message list are skipped. A
// conversation with no message list at all gets a placeholder line.
func RenderConversation(title string, conv gjson.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)

	created := conv.Get("created_at")
	updated := conv.Get("updated_at")
	if created.Exists() || updated.Exists() {
		b.WriteString("## Metadata\n")
		if created.Exists() {
			fmt.Fprintf(&b, "- Created: %s\n", created.String())
		}
		if updated.Exists() {
			fmt.Fprintf(&b, "- Updated: %s\n", updated.String())
		}
		b.WriteString("\n---\n\n")
	}

	msgs := extract.Messages(conv)
	if len(msgs) == 0 {
		b.WriteString(noMessagesPlaceholder)
		return b.String()
	}
	for _, msg := range msgs {
		if !msg.IsObject() {
			continue
		}
		b.WriteString(FormatMessage(msg))
		b.WriteString("\n")
	}
	return b.String()
}

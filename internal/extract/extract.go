// Package extract locates conversations, messages, and message fields
// inside chat exports of unknown shape. Export tools disagree on field
// names, so every lookup probes an ordered alias list and falls back to
// a default instead of failing.
package extract

import (
	"strings"
	"time"
	"unicode"

	"github.com/tidwall/gjson"
)

// Alias lists, in priority order. First match wins. The order is part
// of the output contract: changing it changes which field a mixed-schema
// export resolves to.
var (
	wrapperAliases     = []string{"conversations", "chats", "data", "items"}
	messageListAliases = []string{"chat_messages", "messages", "conversation", "history"}
	titleAliases       = []string{"name", "title", "conversation_title", "subject"}
	senderAliases      = []string{"sender", "role", "author", "from"}
	textAliases        = []string{"text", "content", "message", "body"}
	timestampAliases   = []string{"timestamp", "created_at", "time", "date"}
)

const (
	titleFallback   = "Untitled_Conversation"
	senderFallback  = "Unknown"
	timestampLayout = "2006-01-02 15:04:05"

	// Epoch seconds outside this range cannot be rendered as a
	// calendar date; the timestamp is omitted rather than reported
	// as an error.
	minEpoch = -62135596800 // year 1
	maxEpoch = 253402300799 // year 9999
)

// Conversations returns the list of conversation records under root.
// An array root is the list itself; an object root is unwrapped through
// the first wrapper alias holding an array, or treated as a single
// conversation when none matches. Only one level is ever unwrapped.
// Scalar roots hold no conversations.
func Conversations(root gjson.Result) []gjson.Result {
	if root.IsArray() {
		return root.Array()
	}
	if !root.IsObject() {
		return nil
	}
	for _, key := range wrapperAliases {
		if v := root.Get(key); v.IsArray() {
			if items := v.Array(); len(items) > 0 {
				return items
			}
			// An empty wrapper list stops the probe; the object
			// itself becomes the single conversation below.
			break
		}
	}
	return []gjson.Result{root}
}

// Messages returns the message list of a conversation record. A field
// that matches an alias but is not an array does not win; probing
// continues with the next alias. A conversation that is itself an
// array is its own message list.
func Messages(conv gjson.Result) []gjson.Result {
	for _, key := range messageListAliases {
		if v := conv.Get(key); v.IsArray() {
			return v.Array()
		}
	}
	if conv.IsArray() {
		return conv.Array()
	}
	return nil
}

// Title resolves a display title for a conversation record: the first
// non-empty title alias, else the first 50 characters of the first
// message's text prefixed "Conversation_", else "Untitled_Conversation".
func Title(conv gjson.Result) string {
	for _, key := range titleAliases {
		if v := conv.Get(key); truthy(v) {
			return v.String()
		}
	}
	if msgs := Messages(conv); len(msgs) > 0 {
		if first := Text(msgs[0]); first != "" {
			return "Conversation_" + truncateRunes(first, 50)
		}
	}
	return titleFallback
}

// Sender resolves the sender of a message. Unlike Title, presence alone
// wins: an empty sender field still stops the probe. The value is
// stringified and capitalized.
func Sender(msg gjson.Result) string {
	for _, key := range senderAliases {
		if v := msg.Get(key); v.Exists() {
			return capitalize(v.String())
		}
	}
	return senderFallback
}

// Text resolves the text content of a message. The first present text
// alias wins regardless of type: a string is used as-is, an object is
// unwrapped one level through its "text" field, and an array is joined
// from its string parts and {"text": ...} object parts with newlines.
func Text(msg gjson.Result) string {
	for _, key := range textAliases {
		if v := msg.Get(key); v.Exists() {
			return flattenText(v)
		}
	}
	return ""
}

func flattenText(v gjson.Result) string {
	if v.IsArray() {
		var parts []string
		v.ForEach(func(_, part gjson.Result) bool {
			switch {
			case part.Type == gjson.String:
				parts = append(parts, part.Str)
			case part.IsObject():
				if t := part.Get("text"); t.Exists() {
					parts = append(parts, t.String())
				}
			}
			return true
		})
		return strings.Join(parts, "\n")
	}
	if v.IsObject() {
		if t := v.Get("text"); t.Exists() {
			return t.String()
		}
		return ""
	}
	return v.String()
}

// Timestamp resolves the timestamp of a message. The first present
// alias wins. Numeric values are Unix epoch seconds rendered in local
// time; strings are returned verbatim. Falsy values (0, "", null,
// false) and unrenderable epochs are omitted, never errors.
func Timestamp(msg gjson.Result) (string, bool) {
	for _, key := range timestampAliases {
		if v := msg.Get(key); v.Exists() {
			return renderTimestamp(v)
		}
	}
	return "", false
}

func renderTimestamp(v gjson.Result) (string, bool) {
	switch v.Type {
	case gjson.Number:
		if v.Num == 0 || v.Num < minEpoch || v.Num > maxEpoch {
			return "", false
		}
		return time.Unix(int64(v.Num), 0).Format(timestampLayout), true
	case gjson.String:
		if v.Str == "" {
			return "", false
		}
		return v.Str, true
	case gjson.True:
		return "true", true
	case gjson.JSON:
		return v.Raw, true
	default:
		// null and false are falsy; no timestamp.
		return "", false
	}
}

// truthy reports whether a value counts as a usable title: empty
// strings, 0, false, null, missing fields, and empty containers all
// fall through to the next alias.
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	case gjson.True:
		return true
	case gjson.JSON:
		empty := true
		v.ForEach(func(_, _ gjson.Result) bool {
			empty = false
			return false
		})
		return !empty
	default:
		return false
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func truncateRunes(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen])
}

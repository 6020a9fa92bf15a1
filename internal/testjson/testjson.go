// Package testjson provides shared JSON fixture builders for chat
// export test data. Used by the extract, markdown, and convert test
// packages.
package testjson

import "encoding/json"

// Message returns a message record with role and text fields.
func Message(role, text string) map[string]any {
	return map[string]any{
		"role": role,
		"text": text,
	}
}

// TimedMessage returns a message record with a sender, text, and
// timestamp field. ts may be a number (epoch seconds) or a string.
func TimedMessage(sender, text string, ts any) map[string]any {
	return map[string]any{
		"sender":    sender,
		"text":      text,
		"timestamp": ts,
	}
}

// Conversation returns a conversation record with a name and a
// chat_messages list.
func Conversation(name string, msgs ...map[string]any) map[string]any {
	list := make([]any, len(msgs))
	for i, m := range msgs {
		list[i] = m
	}
	return map[string]any{
		"name":          name,
		"chat_messages": list,
	}
}

// Export returns a JSON document wrapping the conversations under a
// "conversations" key.
func Export(convs ...map[string]any) string {
	list := make([]any, len(convs))
	for i, c := range convs {
		list[i] = c
	}
	return MustMarshal(map[string]any{"conversations": list})
}

// ExportList returns a JSON document whose root is the conversation
// list itself.
func ExportList(convs ...map[string]any) string {
	list := make([]any, len(convs))
	for i, c := range convs {
		list[i] = c
	}
	return MustMarshal(list)
}

// MustMarshal marshals v to a JSON string, panicking on failure.
// Fixture maps built in tests never fail to marshal.
func MustMarshal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

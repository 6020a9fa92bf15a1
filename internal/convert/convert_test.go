package convert

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesm/chatmd/internal/testjson"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conversations.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runConvert(t *testing.T, content string) (Result, string, string, error) {
	t.Helper()
	outDir := filepath.Join(t.TempDir(), "out")
	var buf strings.Builder
	res, err := Run(Options{
		InputPath: writeInput(t, content),
		OutputDir: outDir,
	}, &buf)
	return res, outDir, buf.String(), err
}

func mdFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRun_WrappedExport(t *testing.T) {
	content := `{"chats":[{"name":"Demo","chat_messages":[` +
		`{"role":"user","text":"Hi"},{"role":"assistant","text":"Hello"}]}]}`
	res, outDir, out, err := runConvert(t, content)
	require.NoError(t, err)

	assert.Equal(t, Result{Conversations: 1, Converted: 1}, res)
	assert.Equal(t, []string{"Demo.md"}, mdFiles(t, outDir))

	data, err := os.ReadFile(filepath.Join(outDir, "Demo.md"))
	require.NoError(t, err)
	doc := string(data)
	assert.True(t, strings.HasPrefix(doc, "# Demo\n\n"))
	user := strings.Index(doc, "**User:**\nHi\n")
	asst := strings.Index(doc, "**Assistant:**\nHello\n")
	require.GreaterOrEqual(t, user, 0)
	require.GreaterOrEqual(t, asst, 0)
	assert.Less(t, user, asst)

	assert.Contains(t, out, "Found 1 conversations to convert.")
	assert.Contains(t, out, "Successfully created: ")
	assert.Contains(t, out, "Conversion complete!")
}

func TestRun_OneFilePerConversation(t *testing.T) {
	content := testjson.Export(
		testjson.Conversation("Alpha", testjson.Message("user", "a")),
		testjson.Conversation("Beta", testjson.Message("user", "b")),
		testjson.Conversation("Gamma"),
	)
	res, outDir, _, err := runConvert(t, content)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Converted)
	assert.ElementsMatch(t,
		[]string{"Alpha.md", "Beta.md", "Gamma.md"}, mdFiles(t, outDir))
}

func TestRun_CollisionSuffix(t *testing.T) {
	content := testjson.Export(
		testjson.Conversation("Demo", testjson.Message("user", "one")),
		testjson.Conversation("Demo", testjson.Message("user", "two")),
		testjson.Conversation("Demo", testjson.Message("user", "three")),
	)
	_, outDir, _, err := runConvert(t, content)
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"Demo.md", "Demo_1.md", "Demo_2.md"}, mdFiles(t, outDir))
}

func TestRun_CollisionWithExistingFile(t *testing.T) {
	outDir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(outDir, "Demo.md"), []byte("old"), 0o644))

	content := testjson.Export(
		testjson.Conversation("Demo", testjson.Message("user", "hi")))
	var buf strings.Builder
	_, err := Run(Options{
		InputPath: writeInput(t, content),
		OutputDir: outDir,
	}, &buf)
	require.NoError(t, err)

	old, err := os.ReadFile(filepath.Join(outDir, "Demo.md"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(old))
	assert.FileExists(t, filepath.Join(outDir, "Demo_1.md"))
}

func TestRun_UntitledConversations(t *testing.T) {
	t.Run("multiple get positional names", func(t *testing.T) {
		_, outDir, _, err := runConvert(t, `[{},{}]`)
		require.NoError(t, err)
		assert.ElementsMatch(t,
			[]string{"Conversation_1.md", "Conversation_2.md"},
			mdFiles(t, outDir))
	})

	t.Run("a single one keeps the generic title", func(t *testing.T) {
		_, outDir, _, err := runConvert(t, `{"foo":"bar"}`)
		require.NoError(t, err)
		assert.Equal(t, []string{"Untitled_Conversation.md"}, mdFiles(t, outDir))

		data, err := os.ReadFile(
			filepath.Join(outDir, "Untitled_Conversation.md"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "# Untitled_Conversation\n")
		assert.Contains(t, string(data),
			"*No messages found in this conversation.*\n")
	})
}

func TestRun_LoadErrors(t *testing.T) {
	t.Run("missing input file", func(t *testing.T) {
		outDir := filepath.Join(t.TempDir(), "out")
		var buf strings.Builder
		_, err := Run(Options{
			InputPath: filepath.Join(t.TempDir(), "nope.json"),
			OutputDir: outDir,
		}, &buf)
		require.Error(t, err)
		assert.Contains(t, buf.String(), "was not found")
		assert.Empty(t, mdFiles(t, outDir))
	})

	t.Run("malformed JSON", func(t *testing.T) {
		_, outDir, out, err := runConvert(t, `{"chats": [`)
		require.Error(t, err)
		assert.Contains(t, out, "not a valid JSON file")
		assert.Empty(t, mdFiles(t, outDir))
	})
}

func TestRun_NoConversations(t *testing.T) {
	for _, content := range []string{`[]`, `42`, `"hello"`} {
		res, outDir, out, err := runConvert(t, content)
		require.NoError(t, err, "content %s", content)
		assert.Zero(t, res.Conversations)
		assert.Contains(t, out, "No conversations found in the JSON file.")
		assert.Empty(t, mdFiles(t, outDir))
	}
}

func TestRun_CreatesOutputDir(t *testing.T) {
	_, outDir, out, err := runConvert(t,
		testjson.ExportList(testjson.Conversation("Demo")))
	require.NoError(t, err)
	assert.DirExists(t, outDir)
	assert.Contains(t, out, "Created directory: "+outDir)
}

func TestRun_Metadata(t *testing.T) {
	content := `[{"name":"Demo","created_at":"2024-01-01",` +
		`"updated_at":"2024-02-02","chat_messages":[{"role":"user","text":"hi"}]}]`
	_, outDir, _, err := runConvert(t, content)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "Demo.md"))
	require.NoError(t, err)
	doc := string(data)
	assert.Contains(t, doc, "## Metadata\n")
	assert.Contains(t, doc, "- Created: 2024-01-01\n")
	assert.Contains(t, doc, "- Updated: 2024-02-02\n")
	assert.Contains(t, doc, "\n---\n\n")
}

func TestRun_TimestampRendering(t *testing.T) {
	content := testjson.Export(
		testjson.Conversation("Timed",
			testjson.TimedMessage("alice", "hi", 1700000000),
			testjson.TimedMessage("bob", "later", "2024-01-01")))
	_, outDir, _, err := runConvert(t, content)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "Timed.md"))
	require.NoError(t, err)
	doc := string(data)
	epoch := time.Unix(1700000000, 0).Format("2006-01-02 15:04:05")
	assert.Contains(t, doc, "**Alice:** *("+epoch+")*\nhi\n")
	assert.Contains(t, doc, "**Bob:** *(2024-01-01)*\nlater\n")
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain", "Demo", "Demo"},
		{"spaces become underscores", "My Great Chat", "My_Great_Chat"},
		{"illegal characters removed", `a\b/c*d?e:f"g<h>i|j`, "abcdefghij"},
		{"surrounding dots trimmed", ".hidden.", "hidden"},
		{"only dots", "...", "Untitled"},
		{"empty", "", "Untitled"},
		{"only illegal characters", `\/|<>`, "Untitled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.title))
		})
	}

	t.Run("caps length at 100 characters", func(t *testing.T) {
		got := SanitizeFilename(strings.Repeat("x", 250))
		assert.Len(t, got, 100)
	})

	t.Run("never returns unsafe output", func(t *testing.T) {
		inputs := []string{
			"", " ", "...", `C:\Users\me`, "a/b/c", "what?",
			strings.Repeat("?", 300), "tab\tand newline\n",
			"émoji 🎉 title", `"quoted"`,
		}
		for _, in := range inputs {
			got := SanitizeFilename(in)
			assert.NotEmpty(t, got, "input %q", in)
			assert.LessOrEqual(t, len([]rune(got)), 100, "input %q", in)
			assert.False(t, strings.ContainsAny(got, `\/*?:"<>|`),
				"input %q produced %q", in, got)
		}
	})
}

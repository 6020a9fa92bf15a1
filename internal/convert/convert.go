// Package convert drives a conversion run: it loads a JSON export,
// extracts conversation records, and writes one Markdown transcript per
// conversation with collision-free filenames.
package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/wesm/chatmd/internal/extract"
	"github.com/wesm/chatmd/internal/markdown"
)

const maxStemLen = 100

// Options holds the inputs of a conversion run.
type Options struct {
	InputPath string
	OutputDir string
}

// Result summarizes a conversion run.
type Result struct {
	Conversations int
	Converted     int
	Failed        int
}

// Run converts every conversation in the export at opts.InputPath into
// a Markdown file under opts.OutputDir, reporting progress to out.
//
// Load failures (missing file, unreadable file, invalid JSON) abort the
// run and are returned after being reported. A write failure for one
// conversation is reported and skipped; the run continues.
func Run(opts Options, out io.Writer) (Result, error) {
	if _, err := os.Stat(opts.OutputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
			fmt.Fprintf(out, "Error creating output directory: %v\n", err)
			return Result{}, fmt.Errorf("creating output dir: %w", err)
		}
		fmt.Fprintf(out, "Created directory: %s\n", opts.OutputDir)
	}

	data, err := os.ReadFile(opts.InputPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(out, "Error: the file '%s' was not found.\n",
				opts.InputPath)
		} else {
			fmt.Fprintf(out, "Error reading file: %v\n", err)
		}
		return Result{}, fmt.Errorf("reading %s: %w", opts.InputPath, err)
	}
	if !gjson.ValidBytes(data) {
		fmt.Fprintf(out, "Error: the file '%s' is not a valid JSON file.\n",
			opts.InputPath)
		return Result{}, fmt.Errorf("parsing %s: invalid JSON", opts.InputPath)
	}

	convs := extract.Conversations(gjson.ParseBytes(data))
	if len(convs) == 0 {
		fmt.Fprintln(out, "No conversations found in the JSON file.")
		return Result{}, nil
	}
	fmt.Fprintf(out, "Found %d conversations to convert.\n", len(convs))

	res := Result{Conversations: len(convs)}
	used := make(map[string]struct{})
	for i, conv := range convs {
		title := extract.Title(conv)
		// A generic fallback title is disambiguated by position,
		// but only when the run has more than one conversation.
		if title == "Untitled_Conversation" && len(convs) > 1 {
			title = fmt.Sprintf("Conversation_%d", i+1)
		}

		path := uniquePath(opts.OutputDir, SanitizeFilename(title), used)
		content := markdown.RenderConversation(title, conv)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			fmt.Fprintf(out, "Error processing conversation %d: %v\n", i+1, err)
			res.Failed++
			continue
		}
		fmt.Fprintf(out, "Successfully created: %s\n", path)
		res.Converted++
	}

	fmt.Fprintf(out,
		"\nConversion complete! Check the '%s' directory for your markdown files.\n",
		opts.OutputDir)
	return res, nil
}

var illegalFilenameChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// SanitizeFilename converts an arbitrary title into a safe filename
// stem: illegal path characters are removed, spaces become
// underscores, surrounding spaces and dots are trimmed, and the result
// is capped at 100 characters. An empty result becomes "Untitled".
func SanitizeFilename(title string) string {
	s := illegalFilenameChars.ReplaceAllString(title, "")
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.Trim(s, ". ")
	if r := []rune(s); len(r) > maxStemLen {
		s = string(r[:maxStemLen])
	}
	if s == "" {
		return "Untitled"
	}
	return s
}

// uniquePath returns an unused .md path for stem under dir, suffixing
// _1, _2, ... until the name is free both in this run and on disk, and
// records the chosen name in used.
func uniquePath(dir, stem string, used map[string]struct{}) string {
	name := stem + ".md"
	for n := 1; taken(dir, name, used); n++ {
		name = fmt.Sprintf("%s_%d.md", stem, n)
	}
	used[name] = struct{}{}
	return filepath.Join(dir, name)
}

func taken(dir, name string, used map[string]struct{}) bool {
	if _, ok := used[name]; ok {
		return true
	}
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}

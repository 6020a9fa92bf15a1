// Package analyze prints a shallow type/key summary of a JSON export so
// the shape can be inspected before conversion. It never affects
// conversion output.
package analyze

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	maxKeysShown = 5
	maxDepth     = 3
)

// Run reads and parses the file at path and prints a structure report
// to w. Errors are reported to w as well as returned; callers are free
// to ignore them since analysis is purely diagnostic.
func Run(path string, w io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "Error analyzing file: %v\n", err)
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		fmt.Fprintf(w, "Error analyzing file: '%s' is not valid JSON\n", path)
		return fmt.Errorf("parsing %s: invalid JSON", path)
	}
	root := gjson.ParseBytes(data)

	fmt.Fprintln(w, "=== JSON Structure Analysis ===")
	fmt.Fprintf(w, "Root type: %s\n", typeName(root))

	switch {
	case root.IsArray():
		items := root.Array()
		fmt.Fprintf(w, "Number of items: %d\n", len(items))
		if len(items) > 0 {
			fmt.Fprintln(w, "\nFirst item structure:")
			printShape(w, items[0], 2)
		}
	case root.IsObject():
		fmt.Fprintf(w, "Root keys: [%s]\n", strings.Join(keys(root), ", "))
		fmt.Fprintln(w, "\nStructure:")
		printShape(w, root, 2)
	}
	return nil
}

// printShape prints up to the first 5 keys of an object, or the first
// element of an array, recursing two spaces deeper per level until the
// depth limit.
func printShape(w io.Writer, v gjson.Result, indent int) {
	if indent > maxDepth*2 {
		return
	}
	prefix := strings.Repeat(" ", indent)

	if v.IsObject() {
		n := 0
		v.ForEach(func(key, value gjson.Result) bool {
			fmt.Fprintf(w, "%s%s: %s\n", prefix, key.Str, typeName(value))
			if value.IsObject() || value.IsArray() {
				printShape(w, value, indent+2)
			}
			n++
			return n < maxKeysShown
		})
		return
	}
	if v.IsArray() {
		items := v.Array()
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(w, "%s[0]: %s\n", prefix, typeName(items[0]))
		if items[0].IsObject() || items[0].IsArray() {
			printShape(w, items[0], indent+2)
		}
	}
}

func keys(obj gjson.Result) []string {
	var out []string
	obj.ForEach(func(key, _ gjson.Result) bool {
		out = append(out, key.Str)
		return true
	})
	return out
}

func typeName(v gjson.Result) string {
	switch {
	case v.IsObject():
		return "object"
	case v.IsArray():
		return "array"
	}
	switch v.Type {
	case gjson.String:
		return "string"
	case gjson.Number:
		return "number"
	case gjson.True, gjson.False:
		return "boolean"
	default:
		return "null"
	}
}

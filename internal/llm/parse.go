package llm

import (
	"encoding/json"
	"strings"
	"unicode"
)

// Backend output is never trusted. These helpers turn raw completions into
// the expected shape or fall back to a safe default; they never fail.

// ParseStringList extracts a JSON array of strings from a completion.
// Code fences and surrounding prose are tolerated. Anything that is not an
// array made entirely of strings yields an empty, non-nil slice.
func ParseStringList(content string) []string {
	ids, _ := ParseStringListOK(content)
	return ids
}

// ParseStringListOK is ParseStringList that also reports whether the
// completion held a string array. A completion that is valid JSON on its own
// is taken as is: an object wrapping an array is not a list.
func ParseStringListOK(content string) ([]string, bool) {
	content = stripFences(content)

	if ids, ok := decodeStringList(content); ok {
		return ids, true
	}
	if json.Valid([]byte(content)) {
		return []string{}, false
	}

	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return []string{}, false
	}
	if ids, ok := decodeStringList(content[start : end+1]); ok {
		return ids, true
	}
	return []string{}, false
}

func decodeStringList(s string) ([]string, bool) {
	var ids []string
	if err := json.Unmarshal([]byte(s), &ids); err != nil {
		return nil, false
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, true
}

// ParseBool reads a yes/no decision from a completion. A bare JSON boolean
// wins; otherwise the first standalone lowercase "true" or "false" token
// decides. No token means false.
func ParseBool(content string) bool {
	b, _ := ParseBoolOK(content)
	return b
}

// ParseBoolOK is ParseBool that also reports whether a decision was found.
func ParseBoolOK(content string) (value, ok bool) {
	content = stripFences(content)

	var b bool
	if err := json.Unmarshal([]byte(content), &b); err == nil {
		return b, true
	}

	tokens := strings.FieldsFunc(content, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, tok := range tokens {
		switch tok {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

// stripFences trims whitespace and removes a surrounding markdown code fence.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		// Remove first and last lines (```json and ```)
		if len(lines) > 2 {
			content = strings.Join(lines[1:len(lines)-1], "\n")
		}
	}
	return strings.TrimSpace(content)
}

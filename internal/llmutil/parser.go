// internal/llmutil/parser.go
package llmutil

import (
	"regexp"
	"strings"
)

var (
	// Regex definitions use \x60 (hex representation) for backticks because Go raw strings cannot contain backticks.

	// jsonObjectRegex extracts a JSON object if the response is wrapped in markdown.
	jsonObjectRegex = regexp.MustCompile("(?s)\x60\x60\x60(?:json|JSON)?\\s*({.*})\\s*\x60\x60\x60")
)

// UnwrapJSON isolates the JSON object inside a model reply. Models asked for
// structured output still occasionally wrap it in a markdown fence or a line
// of prose; both are peeled off. Text with no recognizable object is returned
// trimmed and unchanged so the decoder can report the real problem.
func UnwrapJSON(response string) string {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "{") {
		return response
	}

	// 1. Markdown fence.
	if strings.HasPrefix(response, "```") {
		if matches := jsonObjectRegex.FindStringSubmatch(response); len(matches) > 1 {
			return matches[1]
		}
	}

	// 2. Object embedded in conversational text.
	first := strings.Index(response, "{")
	last := strings.LastIndex(response, "}")
	if first != -1 && last > first {
		return response[first : last+1]
	}
	return response
}

// truncateString truncates a string to a maximum length.
func truncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	// Simple truncation; does not account for rune boundaries but sufficient for error messages.
	return s[:maxLen] + "..."
}

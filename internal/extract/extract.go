// Package extract pulls JSON payloads out of free-form language model
// output. Models wrap their answers in markdown fences, preambles and
// sign-offs, so the raw completion is rarely parseable as is.
package extract

import "strings"

// FromText returns the most likely JSON payload inside text. It strips
// markdown code fences, then falls back to scanning for the outermost
// array or object span, preferring an array when one opens first. When
// no structure is found the trimmed input is returned unchanged; the
// caller's JSON parser decides whether the result is usable. Extraction
// itself never fails.
func FromText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.TrimSpace(text)

	if idx := strings.Index(text, "```json"); idx != -1 {
		start := idx + len("```json")
		if end := strings.Index(text[start:], "```"); end != -1 {
			text = strings.TrimSpace(text[start : start+end])
		}
	} else if idx := strings.Index(text, "```"); idx != -1 {
		start := idx + len("```")
		if end := strings.Index(text[start:], "```"); end != -1 {
			text = strings.TrimSpace(text[start : start+end])
		}
	}

	arrayStart := strings.Index(text, "[")
	arrayEnd := strings.LastIndex(text, "]")
	objectStart := strings.Index(text, "{")
	objectEnd := strings.LastIndex(text, "}")

	// An array that opens before any object wins, so that a list of
	// records containing objects is not mistaken for a single object
	if arrayStart != -1 && (objectStart == -1 || arrayStart < objectStart) {
		if arrayEnd > arrayStart {
			return text[arrayStart : arrayEnd+1]
		}
	}
	if objectStart != -1 && objectEnd > objectStart {
		return text[objectStart : objectEnd+1]
	}
	return text
}

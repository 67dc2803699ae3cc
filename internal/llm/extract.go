package llm

import "strings"

// findSpan returns the text from the first open delimiter to the last close delimiter.
func findSpan(s string, open, closing byte) (string, bool) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, closing)
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// FindObject is ExtractObject that also reports whether a span was found.
func FindObject(s string) (string, bool) {
	return findSpan(s, '{', '}')
}

// FindSuggestions is ExtractSuggestions that also reports whether a span was found.
func FindSuggestions(s string) (string, bool) {
	if span, ok := findSpan(s, '[', ']'); ok {
		return span, true
	}
	if span, ok := findSpan(s, '{', '}'); ok {
		return "[" + span + "]", true
	}
	return "", false
}

// ExtractObject pulls the outermost JSON object out of model text, or "{}".
func ExtractObject(s string) string {
	if span, ok := FindObject(s); ok {
		return span
	}
	return "{}"
}

// ExtractArray pulls the outermost JSON array out of model text, or "[]".
func ExtractArray(s string) string {
	if span, ok := findSpan(s, '[', ']'); ok {
		return span
	}
	return "[]"
}

// ExtractSuggestions prefers an array span and wraps a lone object as a one-element array.
func ExtractSuggestions(s string) string {
	if span, ok := FindSuggestions(s); ok {
		return span
	}
	return "[]"
}

package metrics

import (
	"fmt"
	"strings"
	"unicode"
)

// Labels for the error types the HTTP requester actually produces: protocol
// errors, url.Error transport wrappers and per-request deadline hits.
// Anything else falls through to the generic humanizer.
var errorLabels = map[string]string{
	"runner.HTTPError":              "HTTP error response",
	"url.Error":                     "Request URL error",
	"context.deadlineExceededError": "Context deadline exceeded",
}

// FriendlyErrorName turns a recorded error type name (as produced by %T,
// possibly truncated by the collector) into a human-readable label.
func FriendlyErrorName(typeName string) string {
	name := strings.TrimPrefix(strings.TrimSpace(typeName), "*")
	if name == "" {
		return "Unknown error"
	}

	if label, ok := errorLabels[name]; ok {
		return label
	}

	if idx := strings.LastIndex(name, "/"); idx != -1 {
		name = name[idx+1:]
	}
	pkg := ""
	if idx := strings.Index(name, "."); idx != -1 {
		pkg, name = name[:idx], name[idx+1:]
	}

	pretty := splitCamelCase(name)
	if pretty == "" {
		pretty = name
	}
	if pkg != "" && pkg != "main" {
		return fmt.Sprintf("%s (%s)", pretty, pkg)
	}
	return pretty
}

// splitCamelCase turns a Go type name into spaced words, keeping acronyms
// intact ("OpError" to "Op Error", "HTTPError" to "HTTP Error").
func splitCamelCase(name string) string {
	runes := []rune(name)
	if len(runes) == 0 {
		return ""
	}

	var words []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		boundary := false
		switch {
		case unicode.IsUpper(cur) && unicode.IsLower(prev):
			boundary = true
		case unicode.IsUpper(cur) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			boundary = true
		case unicode.IsDigit(cur) && !unicode.IsDigit(prev):
			boundary = true
		}
		if boundary {
			words = append(words, titleWord(string(runes[start:i])))
			start = i
		}
	}
	words = append(words, titleWord(string(runes[start:])))
	return strings.Join(words, " ")
}

// titleWord capitalizes a single word, leaving acronyms as-is.
func titleWord(word string) string {
	for _, r := range word {
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			runes := []rune(strings.ToLower(word))
			runes[0] = unicode.ToUpper(runes[0])
			return string(runes)
		}
	}
	return word
}

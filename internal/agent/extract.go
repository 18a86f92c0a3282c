package agent

import "strings"

const (
	jsonOpenTag  = "<json>"
	jsonCloseTag = "</json>"
)

// extractJSONObject pulls a JSON object out of a model response. It tries,
// in order: the <json></json> delimiters the prompt asks for, a markdown
// code fence, and finally the outermost brace pair. The second return value
// is false when no candidate was found at all.
func extractJSONObject(raw string) (string, bool) {
	if candidate, ok := betweenMarkers(raw, jsonOpenTag, jsonCloseTag); ok {
		return candidate, true
	}
	if candidate, ok := fencedBlock(raw); ok {
		return candidate, true
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return strings.TrimSpace(raw[start : end+1]), true
	}
	return "", false
}

func betweenMarkers(raw, open, close string) (string, bool) {
	start := strings.Index(raw, open)
	if start < 0 {
		return "", false
	}
	rest := raw[start+len(open):]
	end := strings.Index(rest, close)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

func fencedBlock(raw string) (string, bool) {
	start := strings.Index(raw, "```")
	if start < 0 {
		return "", false
	}
	rest := raw[start+3:]
	// Skip a language tag such as "json" on the fence line.
	if newline := strings.Index(rest, "\n"); newline >= 0 {
		rest = rest[newline+1:]
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

package bru

import (
	"regexp"
	"strings"

	"github.com/mark3labs/bru2openapi/internal/jsonvalue"
)

var fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// ExtractPayload finds the example JSON embedded in a docs block. A fenced
// ```json section takes precedence; otherwise the whole text is tried, then
// the first line that opens an object or array. It reports false when no
// value decodes.
func ExtractPayload(docs string) (jsonvalue.Value, bool) {
	if m := fencedJSONRe.FindStringSubmatch(docs); m != nil {
		v, err := jsonvalue.ParseString(strings.TrimSpace(m[1]))
		if err != nil {
			return jsonvalue.Value{}, false
		}
		return v, true
	}

	trimmed := strings.TrimSpace(docs)
	if trimmed == "" {
		return jsonvalue.Value{}, false
	}
	if v, err := jsonvalue.ParseString(trimmed); err == nil {
		return v, true
	}

	// Prose followed by an example.
	lines := strings.Split(trimmed, "\n")
	for i, line := range lines {
		l := strings.TrimSpace(line)
		if !strings.HasPrefix(l, "{") && !strings.HasPrefix(l, "[") {
			continue
		}
		rest := strings.Join(lines[i:], "\n")
		if v, err := jsonvalue.ParsePrefix(rest); err == nil && !v.IsPrimitive() {
			return v, true
		}
		break
	}
	return jsonvalue.Value{}, false
}

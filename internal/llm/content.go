package llm

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// decodeContent turns provider output into Response content. Without a
// schema the text passes through. With one, the JSON object is cut out of
// any surrounding prose or markdown fence and validated.
func decodeContent(schema *Schema, text string) (json.RawMessage, error) {
	if schema == nil {
		return json.RawMessage(text), nil
	}
	obj, ok := extractJSONObject(text)
	if !ok {
		return nil, &ErrInvalidResponse{
			Content: json.RawMessage(text),
			Err:     fmt.Errorf("no JSON object in response"),
		}
	}
	raw := json.RawMessage(obj)
	if err := validateResponse(schema, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// extractJSONObject returns the outermost {...} span of s.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// schemaInstruction describes the schema in prose for providers that only
// support a generic JSON mode.
func schemaInstruction(schema *Schema) string {
	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return "Reply ONLY with a valid JSON object."
	}
	var b strings.Builder
	b.WriteString("Reply ONLY with a valid JSON object")
	if schema.Description != "" {
		fmt.Fprintf(&b, " (%s)", schema.Description)
	}
	b.WriteString(" conforming to this JSON Schema. Do not include any text outside the JSON object.\n")
	b.Write(def)
	return b.String()
}

// withoutKeywords returns a deep copy of a schema definition with the given
// keywords removed at every level.
func withoutKeywords(def map[string]any, keywords ...string) map[string]any {
	out := make(map[string]any, len(def))
	for k, v := range def {
		if slices.Contains(keywords, k) {
			continue
		}
		switch tv := v.(type) {
		case map[string]any:
			out[k] = withoutKeywords(tv, keywords...)
		default:
			out[k] = v
		}
	}
	return out
}

package stage

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/hupe1980/llmcouncil/core"
)

// ValidateReply enforces a stage's declared response contract against a raw
// model reply. A reply flagged as refused yields core.RefusalError regardless
// of contract type, independent of content. For a text contract any non-empty
// reply is valid. For a JSON contract the reply must parse as a structured
// document containing every declared required key; extra keys are permitted.
//
// The returned raw message is the extracted JSON document for JSON contracts,
// nil for text contracts.
func ValidateReply(def *Definition, raw string, refused bool) (json.RawMessage, error) {
	if refused {
		return nil, &core.RefusalError{}
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &core.ParseError{Reason: "empty reply"}
	}

	if def.Contract.Type == ContractText {
		return nil, nil
	}

	doc := extractJSON(trimmed)
	if doc == "" {
		return nil, &core.ParseError{Reason: "reply is not a structured document"}
	}

	for _, key := range def.Contract.RequiredKeys {
		if !gjson.Get(doc, key).Exists() {
			return nil, &core.ParseError{Reason: "missing required key " + key}
		}
	}

	return json.RawMessage(doc), nil
}

// extractJSON returns the JSON document embedded in a reply, or "" if none.
// Models routinely wrap JSON in markdown fences or surrounding prose, so the
// validator tolerates both before rejecting.
func extractJSON(s string) string {
	if gjson.Valid(s) && (strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")) {
		return s
	}

	// Strip a markdown code fence if present.
	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			inner := strings.TrimSpace(rest[:end])
			if gjson.Valid(inner) {
				return inner
			}
		}
	}

	// Last resort: widest brace-delimited span.
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		inner := s[start : end+1]
		if gjson.Valid(inner) {
			return inner
		}
	}

	return ""
}

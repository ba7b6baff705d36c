package ai

import (
	"encoding/json"
	"strings"
)

// DecodeObject parses a JSON object out of free-form model output.
//
// The whole text is tried first, then the span from the first '{' to the
// last '}'. When neither decodes into T the fallback is returned and the
// boolean is false.
func DecodeObject[T any](text string, fallback T) (T, bool) {
	for _, candidate := range objectCandidates(text) {
		var out T
		if err := json.Unmarshal([]byte(candidate), &out); err == nil {
			return out, true
		}
	}
	return fallback, false
}

// ExtractObject returns the raw JSON object found in text using the same two
// stages as DecodeObject.
func ExtractObject(text string) (json.RawMessage, bool) {
	for _, candidate := range objectCandidates(text) {
		if strings.HasPrefix(candidate, "{") && json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate), true
		}
	}
	return nil, false
}

func objectCandidates(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	candidates := []string{trimmed}
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		if span := trimmed[start : end+1]; span != trimmed {
			candidates = append(candidates, span)
		}
	}
	return candidates
}

package screening

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// ParseResult is the outcome of parse-with-fallback: either the model's
// JSON (Fallback=false) or the section default (Fallback=true, Err set).
type ParseResult struct {
	Data     json.RawMessage
	Fallback bool
	Err      error
}

// ParseSection turns raw model text into section data. Text sections are
// wrapped as {"text": ...}; JSON sections are unfenced and validated.
func ParseSection(raw string, expectJSON bool, def json.RawMessage) ParseResult {
	raw = strings.TrimSpace(raw)
	if !expectJSON {
		data, err := json.Marshal(map[string]string{"text": raw})
		if err != nil {
			return ParseResult{Data: def, Fallback: true, Err: err}
		}
		return ParseResult{Data: data}
	}
	data, err := extractJSON(raw)
	if err != nil {
		return ParseResult{Data: def, Fallback: true, Err: err}
	}
	return ParseResult{Data: data}
}

func extractJSON(raw string) (json.RawMessage, error) {
	if raw == "" {
		return nil, errors.New("empty response")
	}
	if candidate := stripCodeFences(raw); json.Valid([]byte(candidate)) {
		return json.RawMessage(candidate), nil
	}
	// Models sometimes wrap the fenced block in prose.
	if m := fencedBlockRe.FindStringSubmatch(raw); len(m) == 2 {
		candidate := strings.TrimSpace(m[1])
		if json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate), nil
		}
	}
	return nil, fmt.Errorf("malformed json response (%d chars)", len(raw))
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
	}
	return s
}

package bullets

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrMalformedResponse is the internal signal that an LLM reply could not
// be parsed into a bullet array; it triggers the local fallback.
var ErrMalformedResponse = errors.New("bullets: malformed llm response")

// ExtractJSONArray pulls the first balanced top-level JSON array out of a
// completion that may be wrapped in prose or code fences, and decodes it
// into strings. Non-string elements fail the whole parse.
func ExtractJSONArray(text string) ([]string, error) {
	start := strings.IndexByte(text, '[')
	if start < 0 {
		return nil, ErrMalformedResponse
	}
	depth := 0
	inString := false
	escaped := false
	end := -1
scan:
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '[':
			depth++
		case c == ']':
			depth--
			if depth == 0 {
				end = i
				break scan
			}
		}
	}
	if end < 0 {
		return nil, ErrMalformedResponse
	}
	var out []string
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, errors.Join(ErrMalformedResponse, err)
	}
	return out, nil
}

package assistant

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractedCall is one function invocation lifted out of the model's text.
// Parameters stay raw here; each call kind decodes its own typed record at
// dispatch time.
type ExtractedCall struct {
	Name       string          `json:"name"`
	Parameters json.RawMessage `json:"parameters"`
}

type Extraction struct {
	Calls     []ExtractedCall
	CleanText string
}

const callMarker = "[FUNCTION:"

// defaultFiller replaces a reply that is empty once call markup is stripped.
// The caller must never see an empty message.
const defaultFiller = "Certo! Posso ajudar com mais alguma coisa?"

// Extract scans the model's raw response for `[FUNCTION: name {...}]`
// markers. Well-formed payloads become calls, in source order. A marker whose
// payload is not a valid JSON object is skipped (logged, not fatal) but still
// stripped from the clean text. The payload is located by balanced-brace
// scanning, not a regex, so nested objects and arrays in parameters survive
// intact; gjson is the only validity check applied here.
func Extract(raw string) Extraction {
	var calls []ExtractedCall
	var clean strings.Builder

	rest := raw
	for {
		idx := strings.Index(rest, callMarker)
		if idx < 0 {
			clean.WriteString(rest)
			break
		}
		clean.WriteString(rest[:idx])

		name, payload, size, ok := scanMarker(rest[idx:])
		if !ok {
			// Doesn't complete the name+brace shape. Keep the text and
			// resume scanning after the marker prefix.
			clean.WriteString(rest[idx : idx+len(callMarker)])
			rest = rest[idx+len(callMarker):]
			continue
		}
		rest = rest[idx+size:]

		if !gjson.Valid(payload) || !gjson.Parse(payload).IsObject() {
			slog.Warn("skipping malformed function call", "name", name)
			continue
		}
		calls = append(calls, ExtractedCall{Name: name, Parameters: json.RawMessage(payload)})
	}

	text := strings.TrimSpace(clean.String())
	if text == "" {
		text = defaultFiller
	}
	return Extraction{Calls: calls, CleanText: text}
}

// scanMarker parses one marker at the start of s (which begins with
// callMarker). It returns the function name, the raw JSON payload, and the
// total byte length of the marker including the closing bracket.
func scanMarker(s string) (name, payload string, size int, ok bool) {
	i := len(callMarker)
	i = skipSpaces(s, i)

	start := i
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	if i == start {
		return "", "", 0, false
	}
	name = s[start:i]

	i = skipSpaces(s, i)
	if i >= len(s) || s[i] != '{' {
		return "", "", 0, false
	}

	payloadStart := i
	depth := 0
	inString := false
	escaped := false
	for ; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				payload = s[payloadStart : i+1]
				j := skipSpaces(s, i+1)
				if j < len(s) && s[j] == ']' {
					return name, payload, j + 1, true
				}
				return "", "", 0, false
			}
		}
	}
	return "", "", 0, false // unterminated payload
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func isIdentChar(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

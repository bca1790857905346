package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// SchemaValidator validates a parsed struct after JSON extraction.
// Returns nil if valid, or a descriptive error if invalid.
type SchemaValidator[T any] func(T) error

// ExtractJSON extracts a JSON object of type T from raw LLM text output.
// It handles markdown code fences, leading/trailing text, comments, and
// numbers written as ".5". If validator is non-nil, the extracted value is
// validated before return.
func ExtractJSON[T any](raw string, validator SchemaValidator[T]) (T, error) {
	var zero T

	block := firstBalanced(stripCodeFences(raw), '{', '}')
	if block == "" {
		return zero, fmt.Errorf("%w: no JSON object found in response", ErrInvalidOutput)
	}

	var result T
	if err := json.Unmarshal([]byte(cleanJSON(block)), &result); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}

	if validator != nil {
		if err := validator(result); err != nil {
			return zero, fmt.Errorf("%w: validation failed: %v", ErrInvalidOutput, err)
		}
	}

	return result, nil
}

// ExtractJSONArray extracts the first top-level JSON array of T elements.
func ExtractJSONArray[T any](raw string) ([]T, error) {
	block := firstBalanced(stripCodeFences(raw), '[', ']')
	if block == "" {
		return nil, fmt.Errorf("%w: no JSON array found in response", ErrInvalidOutput)
	}
	var result []T
	if err := json.Unmarshal([]byte(cleanJSON(block)), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	return result, nil
}

// RecoverObjects salvages complete objects from the array stored under key
// in a possibly truncated response. Each returned object parsed on its own;
// a trailing partial object is dropped.
func RecoverObjects(raw, key string) []json.RawMessage {
	re := regexp.MustCompile(`"` + regexp.QuoteMeta(key) + `"\s*:\s*\[`)
	loc := re.FindStringIndex(raw)
	if loc == nil {
		return nil
	}

	var out []json.RawMessage
	sc := scanner{}
	depth, start := 0, -1
	body := raw[loc[1]:]
	for i := 0; i < len(body); i++ {
		if !sc.structural(body[i]) {
			continue
		}
		switch body[i] {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				candidate := cleanJSON(body[start : i+1])
				if json.Valid([]byte(candidate)) {
					out = append(out, json.RawMessage(candidate))
				}
				start = -1
			}
		case ']':
			if depth == 0 {
				return out
			}
		}
	}
	return out
}

// scanner tracks whether a byte stream position is inside a JSON string.
type scanner struct {
	inString bool
	escaped  bool
}

// structural feeds c to the scanner and reports whether c is outside any
// string literal (quotes themselves are not structural).
func (s *scanner) structural(c byte) bool {
	switch {
	case s.escaped:
		s.escaped = false
		return false
	case c == '\\' && s.inString:
		s.escaped = true
		return false
	case c == '"':
		s.inString = !s.inString
		return false
	}
	return !s.inString
}

// stripCodeFences removes markdown fence lines (```json or ```).
func stripCodeFences(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// firstBalanced returns the first balanced open...close block in s.
func firstBalanced(s string, open, close byte) string {
	start := strings.IndexByte(s, open)
	if start == -1 {
		return ""
	}
	sc := scanner{}
	depth := 0
	for i := start; i < len(s); i++ {
		if !sc.structural(s[i]) {
			continue
		}
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// cleanJSON drops // and /* */ comments and rewrites ".8" as "0.8" outside
// string literals. Models emit both despite instructions.
func cleanJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	sc := scanner{}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if !sc.structural(c) {
			b.WriteByte(c)
			continue
		}

		if c == '/' && i+1 < len(s) && s[i+1] == '/' {
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}
			continue
		}
		if c == '/' && i+1 < len(s) && s[i+1] == '*' {
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				break
			}
			i += end + 3
			continue
		}

		if c == '.' && i+1 < len(s) && isDigit(s[i+1]) && isNumericBoundary(lastNonSpace(b.String())) {
			b.WriteByte('0')
		}
		b.WriteByte(c)
	}
	return b.String()
}

func lastNonSpace(s string) byte {
	s = strings.TrimRight(s, " \n\r\t")
	if s == "" {
		return 0
	}
	return s[len(s)-1]
}

func isNumericBoundary(c byte) bool {
	switch c {
	case 0, ':', ',', '[', '{', '-':
		return true
	default:
		return false
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

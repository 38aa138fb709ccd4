package jsonutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNoJSONObject = errors.New("no json object found")

// DecodeWithFallback decodes raw into out. When raw is not plain JSON it
// strips markdown code fences and retries with the first balanced {...}
// object in the text.
func DecodeWithFallback(raw string, out any) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrNoJSONObject
	}
	firstErr := json.Unmarshal([]byte(raw), out)
	if firstErr == nil {
		return nil
	}

	candidate := stripCodeFence(raw)
	if candidate != raw {
		if err := json.Unmarshal([]byte(candidate), out); err == nil {
			return nil
		}
	}

	obj, ok := firstObject(candidate)
	if !ok {
		return fmt.Errorf("%w: %v", ErrNoJSONObject, firstErr)
	}
	if err := json.Unmarshal([]byte(obj), out); err != nil {
		return err
	}
	return nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		return ""
	}
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

// firstObject scans for the first balanced object, ignoring braces inside
// string literals.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
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
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

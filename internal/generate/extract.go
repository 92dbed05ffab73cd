package generate

import (
	"encoding/json"
	"fmt"
	"strings"

	"sitecopy-backend/internal/content"
)

// ExtractCandidate decodes a candidate from raw generator output. Providers
// frequently wrap the JSON payload in prose or fenced markdown blocks, so
// this strips fences and scans for the outermost object before decoding.
func ExtractCandidate(raw string) (content.Candidate, error) {
	payload := strings.TrimSpace(raw)
	if payload == "" {
		return content.Candidate{}, fmt.Errorf("empty response: %w", ErrParse)
	}

	payload = stripFences(payload)
	payload = sliceObject(payload)
	if payload == "" {
		return content.Candidate{}, fmt.Errorf("no JSON object in response: %w", ErrParse)
	}

	var c content.Candidate
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return content.Candidate{}, fmt.Errorf("decode candidate: %v: %w", err, ErrParse)
	}
	if c.IsEmpty() {
		return content.Candidate{}, fmt.Errorf("decoded candidate is empty: %w", ErrParse)
	}
	return c, nil
}

// stripFences removes a surrounding ```json ... ``` block if present.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// sliceObject returns the substring from the first '{' through its matching
// close brace, tracking strings so braces inside values don't miscount.
func sliceObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

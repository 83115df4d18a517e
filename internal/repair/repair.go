// Package repair normalizes near-JSON model output into valid JSON before
// strict parsing. The locally hosted backend routinely produces JSON with
// literal control characters inside string values, truncated closing braces,
// or markdown fencing around the payload; this package recovers a parseable
// object from all three without ever failing hard.
package repair

import (
	"strings"

	apperrors "notewise/backend/internal/errors"
)

// Repair applies the normalization pipeline to raw text and returns the
// repaired JSON string. The steps run in a fixed order: strip markdown
// fencing, isolate the outermost brace span, escape raw control characters
// inside strings, close truncated braces, then drop trailing commas. Repair
// is the identity (modulo surrounding noise) on already well-formed input.
// It never panics; inputs with no object at all yield a PARSE_FAILED error.
func Repair(raw string) (string, error) {
	s := stripFences(raw)

	s, ok := braceSpan(s)
	if !ok {
		return "", apperrors.NewAIError(apperrors.CodeParseFailed, "", "no JSON object found in response")
	}

	s = escapeControlsInStrings(s)
	s = closeTruncatedBraces(s)
	s = dropTrailingCommas(s)
	s = normalizeCarriageReturns(s)
	return s, nil
}

// stripFences removes a leading and trailing markdown code fence, with or
// without a language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	// Drop the opening fence line ("```" or "```json").
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(s[:len(s)-3])
	}
	return s
}

// braceSpan discards everything outside the first '{' and the last '}',
// defending against leading and trailing commentary. When the closing brace
// is missing (truncated generation) the span runs to the end of the text.
func braceSpan(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(s, '}')
	if end > start {
		return s[start : end+1], true
	}
	return s[start:], true
}

// escapeControlsInStrings performs a single left-to-right scan, tracking
// whether the cursor is inside a quoted string, and replaces raw newline,
// carriage-return, and tab characters found inside strings with their
// two-character escaped forms. Characters outside strings pass through
// unchanged.
func escapeControlsInStrings(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			b.WriteByte(c)
			continue
		}
		switch {
		case inString && c == '\\':
			escaped = true
			b.WriteByte(c)
		case c == '"':
			inString = !inString
			b.WriteByte(c)
		case inString && c == '\n':
			b.WriteString(`\n`)
		case inString && c == '\r':
			b.WriteString(`\r`)
		case inString && c == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// closeTruncatedBraces appends the number of '}' characters needed to close
// an object whose generation stopped mid-way. Braces inside strings are not
// counted; this runs after the escape pass so string boundaries are sound.
func closeTruncatedBraces(s string) string {
	if strings.HasSuffix(strings.TrimSpace(s), "}") {
		return s
	}
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == '{':
			depth++
		case !inString && c == '}':
			depth--
		}
	}
	// An unterminated string also needs closing before the braces can.
	if inString {
		s += `"`
	}
	if depth > 0 {
		s += strings.Repeat("}", depth)
	}
	return s
}

// dropTrailingCommas removes a comma whose next non-whitespace character is
// a closing brace or bracket. String contents are left untouched.
func dropTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			b.WriteByte(c)
			continue
		}
		if inString {
			if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			b.WriteByte(c)
			continue
		}
		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}
		if c == ',' {
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue // skip the comma, keep scanning from the whitespace
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// normalizeCarriageReturns rewrites stray carriage returns (all of which are
// outside strings after the escape pass) to plain newlines.
func normalizeCarriageReturns(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

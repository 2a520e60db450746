package parsing

import (
	"strings"
	"unicode"
)

const fence = "```"

// ExtractFenced returns the body of the first ``` code fence in s.
// An optional language tag on the opening fence line is skipped. Without a fence
// the whole string is returned trimmed; an unclosed fence yields everything after it.
func ExtractFenced(s string) string {
	start := strings.Index(s, fence)
	if start < 0 {
		return strings.TrimSpace(s)
	}

	rest := s[start+len(fence):]
	nl := strings.IndexByte(rest, '\n')
	closing := strings.Index(rest, fence)
	if nl >= 0 && (closing < 0 || nl < closing) {
		if isLanguageTag(strings.TrimSpace(rest[:nl])) {
			rest = rest[nl+1:]
		}
	} else {
		rest = stripInlineTag(rest)
	}

	if end := strings.Index(rest, fence); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// stripInlineTag drops a tag such as "json" from a fence that opens and closes on
// one line. The tag must start with a letter and be followed by whitespace.
func stripInlineTag(s string) string {
	end := strings.IndexFunc(s, unicode.IsSpace)
	if end <= 0 {
		return s
	}
	tag := s[:end]
	if !unicode.IsLetter(rune(tag[0])) || !isLanguageTag(tag) {
		return s
	}
	switch tag {
	case "true", "false", "null":
		return s
	}
	return s[end:]
}

// isLanguageTag reports whether the text after an opening fence is an info string
// such as "json" rather than content.
func isLanguageTag(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '+', r == '.':
		default:
			return false
		}
	}
	return true
}

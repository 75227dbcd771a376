package domain

import (
	"strings"
	"unicode"
)

// NormalizeText prepares pasted text for prompting and chunking:
//   - trims leading/trailing whitespace
//   - converts Windows line endings to "\n"
//   - compresses runs of spaces and tabs into one space
//
// Case, punctuation and paragraph breaks are preserved.
func NormalizeText(text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if r == ' ' || r == '\t' {
			if prevSpace {
				continue
			}
			prevSpace = true
			b.WriteByte(' ')
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// RunePrefix returns at most n runes of s, cut at the last whitespace
// boundary when one exists in the second half of the prefix.
func RunePrefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	cut := n
	for i := n; i > n/2; i-- {
		if unicode.IsSpace(runes[i]) {
			cut = i
			break
		}
	}
	return strings.TrimSpace(string(runes[:cut]))
}

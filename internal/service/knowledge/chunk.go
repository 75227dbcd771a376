package knowledge

import (
	"strings"
	"unicode"

	"github.com/heartmarshall/myenglish-adapter/internal/domain"
)

// separators are tried in order when looking for a chunk boundary.
var separators = [][]rune{[]rune("\n\n"), []rune("\n"), []rune(". "), []rune(" ")}

// Split cuts text into chunks of at most size runes where consecutive
// chunks share about overlap runes. Boundaries prefer paragraph, line,
// sentence and word breaks in the second half of each window and fall
// back to a hard cut.
func Split(text string, size, overlap int) []string {
	runes := []rune(domain.NormalizeText(text))
	if len(runes) == 0 || size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := min(start+size, len(runes))
		cut := end
		if end < len(runes) {
			cut = boundary(runes, start+size/2, end)
		}

		if c := strings.TrimSpace(string(runes[start:cut])); c != "" {
			chunks = append(chunks, c)
		}
		if cut >= len(runes) {
			break
		}

		next := cut - overlap
		if next <= start {
			next = cut
		} else {
			// Start after a word break inside the overlap when there is one.
			for j := next; j < cut; j++ {
				if unicode.IsSpace(runes[j-1]) {
					next = j
					break
				}
			}
		}
		start = next
	}
	return chunks
}

// boundary returns the cut position just after the best separator in
// runes[lo:hi], or hi when there is none.
func boundary(runes []rune, lo, hi int) int {
	for _, sep := range separators {
		if i := lastIndex(runes[lo:hi], sep); i >= 0 {
			return lo + i + len(sep)
		}
	}
	return hi
}

func lastIndex(s, sep []rune) int {
	for i := len(s) - len(sep); i >= 0; i-- {
		match := true
		for j, r := range sep {
			if s[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

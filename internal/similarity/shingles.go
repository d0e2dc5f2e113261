package similarity

import (
	"strings"
)

// Shingles returns the character n-grams of name, word by word. Each word is
// padded with a single space on both sides, so n-grams never span words and
// word boundaries count. A padded word shorter than n is emitted whole.
// Repeated n-grams are returned once per occurrence.
func Shingles(name string, n int) []string {
	words := strings.Fields(strings.ToLower(name))
	if len(words) == 0 {
		return nil
	}

	var out []string
	for _, word := range words {
		padded := []rune(" " + word + " ")
		if len(padded) <= n {
			out = append(out, string(padded))
			continue
		}
		for i := 0; i+n <= len(padded); i++ {
			out = append(out, string(padded[i:i+n]))
		}
	}
	return out
}

// shingleCounts folds shingles into term frequencies.
func shingleCounts(shingles []string) map[string]int {
	counts := make(map[string]int, len(shingles))
	for _, s := range shingles {
		counts[s]++
	}
	return counts
}

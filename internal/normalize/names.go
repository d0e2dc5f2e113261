package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// legalSuffixes are organisation-form tokens dropped from the end of a name.
// "corporation" and "company" stay: they are often part of the trading name.
var legalSuffixes = map[string]bool{
	"ltd":          true,
	"limited":      true,
	"plc":          true,
	"llp":          true,
	"llc":          true,
	"lp":           true,
	"inc":          true,
	"incorporated": true,
	"corp":         true,
	"co":           true,
	"cic":          true,
	"gmbh":         true,
	"lda":          true,
	"pty":          true,
	"bv":           true,
	"ag":           true,
	"sa":           true,
	"sarl":         true,
	"srl":          true,
	"spa":          true,
}

// Name normalizes an organisation name for matching: compatibility folded,
// lowercase, no diacritics or punctuation, single spaces, trailing
// legal-entity suffixes removed. Name(Name(x)) == Name(x).
func Name(raw string) string {
	s := strings.ToLower(foldRunes(strings.ToLower(raw)))
	s = strings.ReplaceAll(s, "&", " and ")

	b := strings.Builder{}
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	tokens := strings.Fields(b.String())
	tokens = trimSuffixes(tokens)
	return strings.Join(tokens, " ")
}

// Names normalizes every name in the list.
func Names(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = Name(n)
	}
	return out
}

// trimSuffixes drops trailing legal suffixes and a dangling "and" left
// behind by "& Co". The last token is always kept.
func trimSuffixes(tokens []string) []string {
	for len(tokens) > 1 {
		last := tokens[len(tokens)-1]
		if !legalSuffixes[last] && last != "and" {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}

// foldRunes applies compatibility decomposition, so fullwidth and other
// presentation forms become their plain letters, and drops combining marks.
func foldRunes(s string) string {
	t := transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	if normalized, _, err := transform.String(t, s); err == nil {
		return normalized
	}
	return s
}

package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "limited suffix",
			input: "Acme Limited",
			want:  "acme",
		},
		{
			name:  "ltd with punctuation",
			input: "ACME LTD.",
			want:  "acme",
		},
		{
			name:  "ampersand and co",
			input: "Smith & Co. Ltd",
			want:  "smith",
		},
		{
			name:  "ampersand in the middle is kept",
			input: "Marks & Spencer PLC",
			want:  "marks and spencer",
		},
		{
			name:  "diacritics",
			input: "Société Générale SA",
			want:  "societe generale",
		},
		{
			name:  "fullwidth letters and suffix",
			input: "ＡＣＭＥ ＬＴＤ",
			want:  "acme",
		},
		{
			name:  "fullwidth ampersand",
			input: "Ｍａｒｋｓ ＆ Ｓｐｅｎｃｅｒ",
			want:  "marks and spencer",
		},
		{
			name:  "corporation is part of the name",
			input: "British Broadcasting Corporation",
			want:  "british broadcasting corporation",
		},
		{
			name:  "suffix-only name keeps one token",
			input: "Ltd Ltd",
			want:  "ltd",
		},
		{
			name:  "whitespace collapsed",
			input: "  The   Guardian\tMedia  Group ",
			want:  "the guardian media group",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "digits kept",
			input: "3M United Kingdom P.L.C.",
			want:  "3m united kingdom p l c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Name(tt.input))
		})
	}
}

func TestNames(t *testing.T) {
	got := Names([]string{"Acme Ltd", "Acme Limited"})
	assert.Equal(t, []string{"acme", "acme"}, got)
}

// orgNameGen draws names from a Latin alphabet with accents, fullwidth
// forms, punctuation and legal suffixes.
func orgNameGen() *rapid.Generator[string] {
	words := []string{
		"Acme", "British", "Gas", "Société", "Générale", "&", "Co.", "Ltd",
		"LIMITED", "plc", "Media", "Crème", "Brûlée", "Studio", "and", "Inc",
		"3D", "(UK)", "-", "Zürich", "Ångström", "the", "ＡＣＭＥ", "ＬＴＤ",
	}
	return rapid.Custom(func(t *rapid.T) string {
		count := rapid.IntRange(0, 6).Draw(t, "wordCount")
		parts := make([]string, count)
		for i := 0; i < count; i++ {
			parts[i] = rapid.SampledFrom(words).Draw(t, "word")
		}
		sep := rapid.SampledFrom([]string{" ", "  ", ", ", "\t"}).Draw(t, "sep")
		return strings.Join(parts, sep)
	})
}

func TestPropertyNameIdempotent(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		raw := orgNameGen().Draw(t, "name")
		once := Name(raw)
		if twice := Name(once); twice != once {
			t.Fatalf("Name not idempotent: %q -> %q -> %q", raw, once, twice)
		}
	})
}

func TestPropertyNameDeterministicAndClean(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		raw := orgNameGen().Draw(t, "name")
		got := Name(raw)
		if got != Name(raw) {
			t.Fatalf("Name not deterministic for %q", raw)
		}
		if got != strings.ToLower(got) {
			t.Fatalf("Name(%q) = %q is not lowercase", raw, got)
		}
		if strings.Contains(got, "  ") || strings.TrimSpace(got) != got {
			t.Fatalf("Name(%q) = %q has stray whitespace", raw, got)
		}
	})
}

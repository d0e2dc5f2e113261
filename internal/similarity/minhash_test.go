package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestShingles(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want []string
	}{
		{name: "single word", in: "acme", n: 3, want: []string{" ac", "acm", "cme", "me "}},
		{name: "two words", in: "ab cd", n: 3, want: []string{" ab", "ab ", " cd", "cd "}},
		{name: "short word emitted whole", in: "a", n: 3, want: []string{" a "}},
		{name: "lowercased", in: "AB", n: 3, want: []string{" ab", "ab "}},
		{name: "empty", in: "   ", n: 3, want: nil},
		{name: "repeats kept", in: "aa aa", n: 3, want: []string{" aa", "aa ", " aa", "aa "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Shingles(tt.in, tt.n))
		})
	}
}

func TestMinHasher_SignatureLength(t *testing.T) {
	m := NewMinHasher(64, 1)
	assert.Len(t, m.Signature([]string{"a", "b"}), 64)
	assert.Nil(t, m.Signature(nil))
}

func TestMinHasher_IgnoresOrderAndDuplicates(t *testing.T) {
	m := NewMinHasher(128, 1)
	a := m.Signature([]string{"x", "y", "z"})
	b := m.Signature([]string{"z", "x", "y", "x"})
	assert.Equal(t, a, b)
	assert.Equal(t, 1.0, Jaccard(a, b))
}

func TestMinHasher_SeedChangesSignature(t *testing.T) {
	set := []string{"one", "two", "three"}
	assert.NotEqual(t, NewMinHasher(16, 1).Signature(set), NewMinHasher(16, 2).Signature(set))
}

func TestJaccard_Degenerate(t *testing.T) {
	assert.Equal(t, 0.0, Jaccard(nil, nil))
	assert.Equal(t, 0.0, Jaccard([]uint64{1}, []uint64{1, 2}))
}

func TestJaccard_Estimate(t *testing.T) {
	m := NewMinHasher(256, 1)
	var a, b []string
	for i := 0; i < 100; i++ {
		a = append(a, string(rune('a'+i%26))+string(rune('A'+i/26)))
	}
	// b shares half of a.
	b = append(b, a[:50]...)
	for i := 0; i < 50; i++ {
		b = append(b, "other"+string(rune('a'+i%26))+string(rune('A'+i/26)))
	}
	// true Jaccard is 50/150
	got := Jaccard(m.Signature(a), m.Signature(b))
	assert.InDelta(t, 1.0/3.0, got, 0.12)
}

func TestJaccard_Properties(t *testing.T) {
	m := NewMinHasher(32, 7)
	word := rapid.StringMatching(`[a-e]{1,4}`)
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.SliceOfN(word, 1, 8).Draw(t, "a")
		b := rapid.SliceOfN(word, 1, 8).Draw(t, "b")
		sa, sb := m.Signature(a), m.Signature(b)

		j := Jaccard(sa, sb)
		require.GreaterOrEqual(t, j, 0.0)
		require.LessOrEqual(t, j, 1.0)
		require.Equal(t, j, Jaccard(sb, sa))
		require.Equal(t, 1.0, Jaccard(sa, sa))
	})
}

package records

import (
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []NameRecord
		wantErr bool
	}{
		{
			name:  "keeps file order",
			input: `{"9": "BBC", "10": "British Gas", "2": "Acme Ltd"}`,
			want: []NameRecord{
				{ID: "9", Name: "BBC"},
				{ID: "10", Name: "British Gas"},
				{ID: "2", Name: "Acme Ltd"},
			},
		},
		{
			name:  "empty object",
			input: `{}`,
			want:  nil,
		},
		{
			name:  "duplicate names are kept",
			input: `{"a": "Acme Ltd", "b": "Acme Ltd"}`,
			want: []NameRecord{
				{ID: "a", Name: "Acme Ltd"},
				{ID: "b", Name: "Acme Ltd"},
			},
		},
		{
			name:    "array is rejected",
			input:   `["Acme"]`,
			wantErr: true,
		},
		{
			name:    "numeric value is rejected",
			input:   `{"1": 3}`,
			wantErr: true,
		},
		{
			name:    "truncated object",
			input:   `{"1": "Acme"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(strings.NewReader(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteThenLoadJSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	recs := []NameRecord{
		{ID: "z", Name: `Quote "Co" Ltd`},
		{ID: "a", Name: "Åland Café"},
	}

	require.NoError(t, WriteJSON(fs, "cache/names.json", recs))

	exists, err := afero.Exists(fs, "cache/names.json.tmp")
	require.NoError(t, err)
	assert.False(t, exists)

	got, err := LoadJSON(fs, "cache/names.json")
	require.NoError(t, err)
	assert.Equal(t, recs, got)
}

func TestLoadJSONMissingFile(t *testing.T) {
	_, err := LoadJSON(afero.NewMemMapFs(), "nope.json")
	require.Error(t, err)
}

func TestHead(t *testing.T) {
	recs := make([]NameRecord, 15000)
	for i := range recs {
		recs[i] = NameRecord{ID: fmt.Sprint(i), Name: fmt.Sprintf("org %d", i)}
	}

	head := Head(recs, 10000)
	require.Len(t, head, 10000)
	assert.Equal(t, "0", head[0].ID)
	assert.Equal(t, "9999", head[9999].ID)

	assert.Len(t, Head(recs, 0), 15000)
	assert.Len(t, Head(recs[:5], 10000), 5)
}

func TestWithNames(t *testing.T) {
	recs := []NameRecord{{ID: "1", Name: "Acme Ltd"}}
	got := WithNames(recs, []string{"acme"})
	assert.Equal(t, []NameRecord{{ID: "1", Name: "acme"}}, got)
	assert.Equal(t, "Acme Ltd", recs[0].Name)

	assert.Panics(t, func() { WithNames(recs, nil) })
}

// Package records loads and writes the {identifier: name} lookups that feed
// the matcher. File order is significant: a record's position in its list is
// the index used by the similarity engine and the result assembler.
package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrInvalidRecord is returned when a lookup file is not a flat
// {identifier: name} object.
var ErrInvalidRecord = errors.New("invalid name record")

// NameRecord pairs an opaque identifier with a display name
type NameRecord struct {
	ID   string
	Name string
}

// LoadJSON reads a JSON object of identifier → name, keeping file order.
func LoadJSON(fs afero.Fs, path string) ([]NameRecord, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open name cache %s: %w", path, err)
	}
	defer f.Close()

	recs, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode name cache %s: %w", path, err)
	}
	return recs, nil
}

// Decode parses an ordered {identifier: name} object from r.
func Decode(r io.Reader) ([]NameRecord, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: expected object, got %v", ErrInvalidRecord, tok)
	}

	var recs []NameRecord
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		id, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: non-string key %v", ErrInvalidRecord, keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := valTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: value for %q is not a string", ErrInvalidRecord, id)
		}
		recs = append(recs, NameRecord{ID: id, Name: name})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return recs, nil
}

// Encode writes records as an ordered JSON object.
func Encode(w io.Writer, recs []NameRecord) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, rec := range recs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(rec.ID)
		if err != nil {
			return err
		}
		val, err := json.Marshal(rec.Name)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteJSON writes records to path via a temporary file and a rename, so a
// failed write never leaves a truncated cache behind.
func WriteJSON(fs afero.Fs, path string, recs []NameRecord) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}
	if err := Encode(f, recs); err != nil {
		f.Close()
		fs.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		fs.Remove(tmp)
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

// Head returns the first n records; n <= 0 keeps them all.
func Head(recs []NameRecord, n int) []NameRecord {
	if n <= 0 || len(recs) <= n {
		return recs
	}
	return recs[:n]
}

// Names returns the name column.
func Names(recs []NameRecord) []string {
	names := make([]string, len(recs))
	for i, rec := range recs {
		names[i] = rec.Name
	}
	return names
}

// WithNames returns a copy of recs carrying the given names, position by
// position. It panics if the lengths differ.
func WithNames(recs []NameRecord, names []string) []NameRecord {
	if len(recs) != len(names) {
		panic(fmt.Sprintf("records: %d records but %d names", len(recs), len(names)))
	}
	out := make([]NameRecord, len(recs))
	for i, rec := range recs {
		out[i] = NameRecord{ID: rec.ID, Name: names[i]}
	}
	return out
}

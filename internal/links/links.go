// Package links reads finished match tables as organisation to company
// links, labelled for the source they were matched from.
package links

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/spf13/afero"

	"github.com/nestauk/createch/internal/match"
	"github.com/nestauk/createch/internal/sources"
)

// DefaultMinScore is the score links must reach to be used for enrichment.
const DefaultMinScore = 70

// Link ties a source organisation to a Companies House company.
type Link struct {
	SourceID      string
	SourceName    string
	CompanyNumber string
	CHName        string
	SimMean       float64
}

var prefixes = map[string]string{
	sources.GtR:        "gtr",
	sources.Crunchbase: "cb",
}

// Header returns the column names used for source.
func Header(source string) ([]string, error) {
	prefix, ok := prefixes[source]
	if !ok {
		return nil, fmt.Errorf("%w: no match table for %q", sources.ErrUnknownSource, source)
	}
	return []string{prefix + "_id", prefix + "_name", "company_number", "ch_name", "sim_mean"}, nil
}

// FromRows relabels match table rows as links. The left side of a match
// table is the source organisation, the right side the company.
func FromRows(rows []match.Row) []Link {
	out := make([]Link, len(rows))
	for i, r := range rows {
		out[i] = Link{
			SourceID:      r.LeftID,
			SourceName:    r.LeftName,
			CompanyNumber: r.RightID,
			CHName:        r.RightName,
			SimMean:       r.Score,
		}
	}
	return out
}

// Load reads the match table at path as links for source.
func Load(fs afero.Fs, path, source string) ([]Link, error) {
	if _, err := Header(source); err != nil {
		return nil, err
	}
	rows, err := match.ReadCSV(fs, path)
	if err != nil {
		return nil, err
	}
	return FromRows(rows), nil
}

// FilterScore keeps the links whose score is at least minScore.
func FilterScore(links []Link, minScore float64) []Link {
	out := make([]Link, 0, len(links))
	for _, l := range links {
		if l.SimMean >= minScore {
			out = append(out, l)
		}
	}
	return out
}

// Write writes links as CSV with the column names of source.
func Write(w io.Writer, source string, links []Link) error {
	header, err := Header(source)
	if err != nil {
		return err
	}
	cw := gocsv.DefaultCSVWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write links header: %w", err)
	}
	for _, l := range links {
		rec := []string{
			l.SourceID,
			l.SourceName,
			l.CompanyNumber,
			l.CHName,
			strconv.FormatFloat(l.SimMean, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write link: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

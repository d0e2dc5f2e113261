// Package sources fetches organisation names from the data warehouse.
package sources

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownSource is returned for a source name that is not registered.
var ErrUnknownSource = errors.New("unknown source")

// Source names
const (
	GtR            = "gtr"
	Crunchbase     = "crunchbase"
	CompaniesHouse = "companies_house"
)

// Source describes where a source's names live in the warehouse.
type Source struct {
	Name       string
	Table      string
	IDColumn   string
	NameColumn string
	// Dedupe collapses repeated identifiers, keeping the last name seen.
	Dedupe bool
}

var registry = map[string]Source{
	GtR: {
		Name:       GtR,
		Table:      "gtr_organisations",
		IDColumn:   "id",
		NameColumn: "name",
	},
	Crunchbase: {
		Name:       Crunchbase,
		Table:      "crunchbase_organizations",
		IDColumn:   "id",
		NameColumn: "name",
	},
	CompaniesHouse: {
		Name:       CompaniesHouse,
		Table:      "organisationname",
		IDColumn:   "company_number",
		NameColumn: "name",
		Dedupe:     true,
	},
}

// Lookup returns the registered source called name.
func Lookup(name string) (Source, error) {
	src, ok := registry[name]
	if !ok {
		return Source{}, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
	return src, nil
}

// Registered lists the registered source names in sorted order.
func Registered() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

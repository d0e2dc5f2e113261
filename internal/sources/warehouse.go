package sources

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/nestauk/createch/internal/records"
)

// Warehouse reads name tables from the postgres data warehouse.
type Warehouse struct {
	db *sql.DB
}

// NewWarehouse creates a warehouse reader over db.
func NewWarehouse(db *sql.DB) *Warehouse {
	return &Warehouse{db: db}
}

// Names returns the (id, name) pairs of src with nulls removed, in the order
// the warehouse returns them.
func (w *Warehouse) Names(ctx context.Context, src Source) ([]records.NameRecord, error) {
	query := fmt.Sprintf(
		"SELECT %[1]s, %[2]s FROM %[3]s WHERE %[1]s IS NOT NULL AND %[2]s IS NOT NULL",
		pq.QuoteIdentifier(src.IDColumn),
		pq.QuoteIdentifier(src.NameColumn),
		pq.QuoteIdentifier(src.Table),
	)

	rows, err := w.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s names: %w", src.Name, err)
	}
	defer rows.Close()

	var recs []records.NameRecord
	for rows.Next() {
		var rec records.NameRecord
		if err := rows.Scan(&rec.ID, &rec.Name); err != nil {
			return nil, fmt.Errorf("failed to scan %s name: %w", src.Name, err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s names: %w", src.Name, err)
	}

	if src.Dedupe {
		before := len(recs)
		recs = dedupeByID(recs)
		log.Debug().Str("source", src.Name).Int("rows", before).Int("kept", len(recs)).Msg("deduplicated names")
	}
	return recs, nil
}

// Ping checks the warehouse is reachable.
func (w *Warehouse) Ping(ctx context.Context) error {
	if err := w.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping warehouse: %w", err)
	}
	return nil
}

// dedupeByID keeps one record per id: the last name seen for it, at the
// position where the id first appeared.
func dedupeByID(recs []records.NameRecord) []records.NameRecord {
	pos := make(map[string]int, len(recs))
	out := make([]records.NameRecord, 0, len(recs))
	for _, rec := range recs {
		if i, ok := pos[rec.ID]; ok {
			out[i].Name = rec.Name
			continue
		}
		pos[rec.ID] = len(out)
		out = append(out, rec)
	}
	return out
}

// Count returns the number of named rows of src.
func (w *Warehouse) Count(ctx context.Context, src Source) (int, error) {
	query := fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE %s IS NOT NULL",
		pq.QuoteIdentifier(src.Table),
		pq.QuoteIdentifier(src.NameColumn),
	)
	var n int
	if err := w.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s names: %w", src.Name, err)
	}
	return n, nil
}

package match

import (
	"errors"
	"fmt"

	"github.com/nestauk/createch/internal/records"
	"github.com/nestauk/createch/internal/similarity"
)

// ErrIndexOutOfRange is returned when a selected pair points outside the
// record lists it is joined against.
var ErrIndexOutOfRange = errors.New("index out of range")

// Row is one line of the match table. The _y columns describe the left
// (query) record, the _x columns its best right-hand match.
type Row struct {
	LeftID    string  `csv:"index_y" json:"index_y"`
	LeftName  string  `csv:"names_y" json:"names_y"`
	RightID   string  `csv:"index_x" json:"index_x"`
	RightName string  `csv:"names_x" json:"names_x"`
	Score     float64 `csv:"score" json:"score"`
}

// Assemble joins selected pairs back to their records by position.
func Assemble(left, right []records.NameRecord, selected []similarity.Pair) ([]Row, error) {
	rows := make([]Row, 0, len(selected))
	for _, p := range selected {
		if p.Left < 0 || p.Left >= len(left) {
			return nil, fmt.Errorf("%w: left index %d, %d records", ErrIndexOutOfRange, p.Left, len(left))
		}
		if p.Right < 0 || p.Right >= len(right) {
			return nil, fmt.Errorf("%w: right index %d, %d records", ErrIndexOutOfRange, p.Right, len(right))
		}
		l, r := left[p.Left], right[p.Right]
		rows = append(rows, Row{
			LeftID:    l.ID,
			LeftName:  l.Name,
			RightID:   r.ID,
			RightName: r.Name,
			Score:     p.Score,
		})
	}
	return rows, nil
}

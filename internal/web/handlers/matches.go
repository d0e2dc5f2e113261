package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/nestauk/createch/internal/match"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

// MatchesHandler serves a loaded match table
type MatchesHandler struct {
	rows []match.Row
	byID map[string]int
}

// NewMatchesHandler indexes rows by left identifier
func NewMatchesHandler(rows []match.Row) *MatchesHandler {
	byID := make(map[string]int, len(rows))
	for i, r := range rows {
		if _, dup := byID[r.LeftID]; !dup {
			byID[r.LeftID] = i
		}
	}
	return &MatchesHandler{rows: rows, byID: byID}
}

// ListResponse is a page of matches
type ListResponse struct {
	Total   int         `json:"total"`
	Offset  int         `json:"offset"`
	Limit   int         `json:"limit"`
	Matches []match.Row `json:"matches"`
}

// StatsResponse summarises the table
type StatsResponse struct {
	TotalMatches int      `json:"total_matches"`
	MeanScore    float64  `json:"mean_score"`
	MinScore     float64  `json:"min_score"`
	MaxScore     float64  `json:"max_score"`
	Buckets      []Bucket `json:"buckets"`
}

// Bucket counts matches with From <= score < To (the last bucket includes 100)
type Bucket struct {
	From  int `json:"from"`
	To    int `json:"to"`
	Count int `json:"count"`
}

// ListMatches returns matches with score >= min_score, paged by limit/offset
func (h *MatchesHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	minScore := parseFloat(query.Get("min_score"), 0)
	limit := parseIntParam(query.Get("limit"), defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit // Limit maximum page size
	}
	offset := parseIntParam(query.Get("offset"), 0)
	if offset < 0 {
		offset = 0
	}

	filtered := make([]match.Row, 0, len(h.rows))
	for _, row := range h.rows {
		if row.Score >= minScore {
			filtered = append(filtered, row)
		}
	}

	resp := ListResponse{Total: len(filtered), Offset: offset, Limit: limit, Matches: []match.Row{}}
	if offset < len(filtered) {
		resp.Matches = filtered[offset:min(offset+limit, len(filtered))]
	}
	writeJSON(w, resp)
}

// GetMatch returns the match of one left identifier
func (h *MatchesHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	i, ok := h.byID[id]
	if !ok {
		http.Error(w, "Match not found", http.StatusNotFound)
		return
	}
	writeJSON(w, h.rows[i])
}

// GetStats returns score statistics for the whole table
func (h *MatchesHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := StatsResponse{TotalMatches: len(h.rows)}
	for from := 0; from < 100; from += 10 {
		stats.Buckets = append(stats.Buckets, Bucket{From: from, To: from + 10})
	}

	if len(h.rows) > 0 {
		stats.MinScore = math.Inf(1)
		stats.MaxScore = math.Inf(-1)
		var total float64
		for _, row := range h.rows {
			total += row.Score
			stats.MinScore = math.Min(stats.MinScore, row.Score)
			stats.MaxScore = math.Max(stats.MaxScore, row.Score)
			b := int(row.Score) / 10
			if b > 9 {
				b = 9
			}
			if b < 0 {
				b = 0
			}
			stats.Buckets[b].Count++
		}
		stats.MeanScore = total / float64(len(h.rows))
	}
	writeJSON(w, stats)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Encoding error", http.StatusInternalServerError)
	}
}

func parseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return defaultVal
}

func parseFloat(s string, defaultVal float64) float64 {
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return defaultVal
}

package similarity

import (
	"math"
	"sort"
)

// sparseVector is an L2-normalised TF-IDF vector with terms sorted by id.
type sparseVector struct {
	terms   []int32
	weights []float64
}

type posting struct {
	row    int32
	weight float64
}

// vocabulary maps shingles to term ids and smooth inverse document
// frequencies fitted on the combined left and right corpus.
type vocabulary struct {
	ngram int
	ids   map[string]int32
	idf   []float64
}

// fitVocabulary assigns term ids in first-seen order (left corpus, then
// right) and computes idf = ln((1+N)/(1+df)) + 1.
func fitVocabulary(ngram int, corpora ...[]string) *vocabulary {
	v := &vocabulary{ngram: ngram, ids: make(map[string]int32)}

	var df []int
	docs := 0
	for _, corpus := range corpora {
		for _, name := range corpus {
			docs++
			for term := range shingleCounts(Shingles(name, ngram)) {
				id, ok := v.ids[term]
				if !ok {
					id = int32(len(df))
					v.ids[term] = id
					df = append(df, 0)
				}
				df[id]++
			}
		}
	}

	v.idf = make([]float64, len(df))
	for id, n := range df {
		v.idf[id] = math.Log(float64(1+docs)/float64(1+n)) + 1
	}
	return v
}

// vector builds the normalised TF-IDF vector of name. Terms outside the
// vocabulary are ignored.
func (v *vocabulary) vector(name string) sparseVector {
	counts := shingleCounts(Shingles(name, v.ngram))
	if len(counts) == 0 {
		return sparseVector{}
	}

	terms := make([]int32, 0, len(counts))
	for term := range counts {
		if id, ok := v.ids[term]; ok {
			terms = append(terms, id)
		}
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i] < terms[j] })

	byID := make(map[int32]int, len(counts))
	for term, n := range counts {
		if id, ok := v.ids[term]; ok {
			byID[id] = n
		}
	}

	weights := make([]float64, len(terms))
	var norm float64
	for i, id := range terms {
		w := float64(byID[id]) * v.idf[id]
		weights[i] = w
		norm += w * w
	}
	if norm == 0 {
		return sparseVector{}
	}
	norm = math.Sqrt(norm)
	for i := range weights {
		weights[i] /= norm
	}
	return sparseVector{terms: terms, weights: weights}
}

// invertedIndex holds the right-hand vectors by term.
type invertedIndex struct {
	postings [][]posting
}

func buildIndex(v *vocabulary, names []string) *invertedIndex {
	idx := &invertedIndex{postings: make([][]posting, len(v.idf))}
	for row, name := range names {
		vec := v.vector(name)
		for i, term := range vec.terms {
			idx.postings[term] = append(idx.postings[term], posting{row: int32(row), weight: vec.weights[i]})
		}
	}
	return idx
}

// accumulator collects dot products for one left row at a time.
type accumulator struct {
	sums    []float64
	touched []int32
}

func newAccumulator(rows int) *accumulator {
	return &accumulator{sums: make([]float64, rows)}
}

// cosine returns every right row with a positive dot product against vec,
// in ascending row order, with its cosine similarity. The accumulator is
// left zeroed for the next row.
func (a *accumulator) cosine(idx *invertedIndex, vec sparseVector, fn func(row int32, cos float64)) {
	a.touched = a.touched[:0]
	for i, term := range vec.terms {
		wl := vec.weights[i]
		for _, p := range idx.postings[term] {
			if a.sums[p.row] == 0 {
				a.touched = append(a.touched, p.row)
			}
			a.sums[p.row] += wl * p.weight
		}
	}

	sort.Slice(a.touched, func(i, j int) bool { return a.touched[i] < a.touched[j] })
	for _, row := range a.touched {
		cos := a.sums[row]
		a.sums[row] = 0
		if cos > 1 {
			cos = 1
		}
		fn(row, cos)
	}
}

// Package search 는 전처리된 문서 토큰으로 TF-IDF 역색인을 만들고 코사인 유사도로 순위를 매긴다.
package search

import (
	"math"
	"slices"
)

// Document: 검색 대상 문서입니다. ID 는 발행일(DDMMYYYY)입니다.
type Document struct {
	ID       string   `json:"document_id"`
	Location string   `json:"document_location"`
	Tokens   []string `json:"tokens"`
}

// Index: 불변 TF-IDF 색인입니다. 생성 후에는 동시 읽기에 안전합니다.
type Index struct {
	docIDs    []string
	locations map[string]string
	weights   map[string]map[string]float64
	norms     map[string]float64
	df        map[string]int
	postings  map[string][]string
	tokens    int
}

// Build: 문서 목록으로 색인을 만듭니다. 같은 ID 가 반복되면 마지막 문서가 쓰입니다.
// TF 는 count/total, IDF 는 ln(N/df) 입니다.
func Build(docs []Document) *Index {
	byID := make(map[string]Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}

	ix := &Index{
		docIDs:    make([]string, 0, len(byID)),
		locations: make(map[string]string, len(byID)),
		weights:   make(map[string]map[string]float64, len(byID)),
		norms:     make(map[string]float64, len(byID)),
		df:        make(map[string]int),
		postings:  make(map[string][]string),
	}

	counts := make(map[string]map[string]int, len(byID))
	for id, d := range byID {
		ix.docIDs = append(ix.docIDs, id)
		ix.locations[id] = d.Location
		ix.tokens += len(d.Tokens)

		tc := make(map[string]int, len(d.Tokens))
		for _, t := range d.Tokens {
			tc[t]++
		}
		counts[id] = tc
		for t := range tc {
			ix.df[t]++
		}
	}
	slices.Sort(ix.docIDs)

	n := float64(len(ix.docIDs))
	for _, id := range ix.docIDs {
		tc := counts[id]
		total := float64(len(byID[id].Tokens))
		w := make(map[string]float64, len(tc))
		var sq float64
		for t, c := range tc {
			v := float64(c) / total * math.Log(n/float64(ix.df[t]))
			w[t] = v
			sq += v * v
			ix.postings[t] = append(ix.postings[t], id)
		}
		ix.weights[id] = w
		ix.norms[id] = math.Sqrt(sq)
	}
	return ix
}

// Len 은 문서 수다.
func (ix *Index) Len() int { return len(ix.docIDs) }

// TokenCount 는 색인된 전체 토큰 수다.
func (ix *Index) TokenCount() int { return ix.tokens }

// Vocabulary 는 정렬된 용어 목록이다.
func (ix *Index) Vocabulary() []string {
	terms := make([]string, 0, len(ix.df))
	for t := range ix.df {
		terms = append(terms, t)
	}
	slices.Sort(terms)
	return terms
}

// DocumentFrequency 는 용어가 등장한 문서 수다.
func (ix *Index) DocumentFrequency(term string) int { return ix.df[term] }

// Postings: 용어가 등장한 문서 ID 목록(정렬됨)의 복사본입니다.
func (ix *Index) Postings(term string) []string {
	return slices.Clone(ix.postings[term])
}

// InvertedIndex: 용어 → 문서 ID 목록 전체를 반환합니다.
func (ix *Index) InvertedIndex() map[string][]string {
	out := make(map[string][]string, len(ix.postings))
	for t, ids := range ix.postings {
		out[t] = slices.Clone(ids)
	}
	return out
}

// Weight 는 문서 안에서 용어의 TF-IDF 가중치다.
func (ix *Index) Weight(docID, term string) float64 {
	return ix.weights[docID][term]
}

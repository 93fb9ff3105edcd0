package search

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

const (
	// DefaultTopK 는 기본 결과 수다.
	DefaultTopK = 10
	// DefaultTitleSuffix 는 문서 제목 뒤에 붙는 간행물 이름이다.
	DefaultTitleSuffix = "Haddas Eritrea"

	idLayout    = "02012006"
	titleLayout = "January 02, 2006"
)

// DocumentRef: 검색 결과 한 건입니다.
type DocumentRef struct {
	ID       string  `json:"doc_id"`
	Title    string  `json:"doc_title"`
	Location string  `json:"doc_location"`
	Score    float64 `json:"score"`
}

// Title: 문서 ID(DDMMYYYY)를 "January 02, 2006 - <suffix>" 형태로 바꿉니다.
// 날짜로 해석되지 않는 ID 는 그대로 사용합니다.
func Title(id, suffix string) string {
	head := id
	if ts, err := time.Parse(idLayout, id); err == nil {
		head = ts.Format(titleLayout)
	}
	if suffix == "" {
		return head
	}
	return head + " - " + suffix
}

// Search 는 질의 토큰과 문서 벡터의 코사인 유사도로 상위 topK 문서를 반환한다.
// 질의 가중치는 freq*ln(N/(1+df)) 이며 색인에 없는 용어는 가중치 0 이다.
// 점수가 0 이하인 문서는 제외한다.
// 동점은 문서 ID 오름차순이다.
func (ix *Index) Search(query []string, topK int, titleSuffix string) []DocumentRef {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(query) == 0 || ix.Len() == 0 {
		return []DocumentRef{}
	}

	n := float64(ix.Len())
	qf := make(map[string]int, len(query))
	for _, t := range query {
		qf[t]++
	}

	qw := make(map[string]float64, len(qf))
	var qsq float64
	for t, f := range qf {
		df := ix.df[t]
		if df == 0 {
			continue
		}
		v := float64(f) * math.Log(n/float64(1+df))
		qw[t] = v
		qsq += v * v
	}
	qnorm := math.Sqrt(qsq)
	if qnorm == 0 {
		return []DocumentRef{}
	}

	// 질의 용어가 등장한 문서만 후보가 된다.
	candidates := make(map[string]struct{})
	for t := range qw {
		for _, id := range ix.postings[t] {
			candidates[id] = struct{}{}
		}
	}

	results := make([]DocumentRef, 0, len(candidates))
	for id := range candidates {
		dnorm := ix.norms[id]
		if dnorm == 0 {
			continue
		}
		var dot float64
		dw := ix.weights[id]
		for t, v := range qw {
			dot += v * dw[t]
		}
		score := dot / (qnorm * dnorm)
		if score <= 0 {
			continue
		}
		results = append(results, DocumentRef{
			ID:       id,
			Title:    Title(id, titleSuffix),
			Location: ix.locations[id],
			Score:    score,
		})
	}

	slices.SortFunc(results, func(a, b DocumentRef) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// Location 은 문서 ID 의 기본 PDF 경로다.
func Location(pdfDir, id string) string {
	return fmt.Sprintf("%s/haddas_eritra_%s.pdf", pdfDir, id)
}

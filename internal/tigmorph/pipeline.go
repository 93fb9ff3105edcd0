// Package tigmorph 는 티그리냐어 텍스트를 검색용 토큰으로 바꾸는 형태소 전처리기다.
package tigmorph

import (
	"math"
	"slices"
	"unicode/utf8"
)

const (
	minTokenLength = 3
	// DefaultPercentile 은 문서 전처리에서 저빈도 토큰을 자르는 백분위다.
	DefaultPercentile = 10.0
)

// Preprocessor: Tokenize → Normalize → 불용어 제거 → Stem → Filter 파이프라인입니다. 동시 사용에 안전합니다.
type Preprocessor struct {
	stopwords  map[string]struct{}
	stemmer    *Stemmer
	percentile float64
}

// NewPreprocessor: 사전으로 전처리기를 만듭니다.
func NewPreprocessor(lex *Lexicon) *Preprocessor {
	return &Preprocessor{
		stopwords:  lex.StopwordSet(),
		stemmer:    NewStemmer(lex),
		percentile: DefaultPercentile,
	}
}

// Process: 문서 본문용 전처리입니다. 3글자 미만 토큰과 빈도 하위 백분위 토큰을 제거합니다.
func (p *Preprocessor) Process(text string) []string {
	stems := p.stems(text)
	if len(stems) == 0 {
		return []string{}
	}

	freq := make(map[string]int, len(stems))
	for _, s := range stems {
		freq[s]++
	}
	counts := make([]float64, 0, len(freq))
	for _, c := range freq {
		counts = append(counts, float64(c))
	}
	threshold := Percentile(counts, p.percentile)

	out := make([]string, 0, len(stems))
	for _, s := range stems {
		if utf8.RuneCountInString(s) >= minTokenLength && float64(freq[s]) >= threshold {
			out = append(out, s)
		}
	}
	return out
}

// ProcessQuery: 질의용 전처리입니다. 짧은 질의에서는 빈도 필터를 적용하지 않습니다.
func (p *Preprocessor) ProcessQuery(text string) []string {
	stems := p.stems(text)
	out := make([]string, 0, len(stems))
	for _, s := range stems {
		if utf8.RuneCountInString(s) >= minTokenLength {
			out = append(out, s)
		}
	}
	return out
}

func (p *Preprocessor) stems(text string) []string {
	words := Tokenize(text)
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = Normalize(w)
		if _, stop := p.stopwords[w]; stop {
			continue
		}
		out = append(out, p.stemmer.Stem(w))
	}
	return out
}

// Percentile: 선형 보간 백분위(0~100)를 계산합니다. 빈 입력이면 0.
func Percentile(values []float64, pct float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	pct = math.Max(0, math.Min(100, pct))
	pos := pct / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac
}

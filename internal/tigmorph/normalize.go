package tigmorph

import (
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

type seriesMapping struct {
	from, to rune
	orders   int
}

// 발음이 같은 자음 행을 하나로 모은다. orders 는 1차부터 몇 차수까지 옮길지다.
var seriesMappings = []seriesMapping{
	{from: 'ሀ', to: 'ሐ', orders: 7},
	{from: 'ኀ', to: 'ሐ', orders: 7},
	{from: 'ሠ', to: 'ሰ', orders: 8},
	{from: 'ቐ', to: 'ቀ', orders: 7},
	{from: 'ቘ', to: 'ቈ', orders: 6},
	{from: 'ዐ', to: 'አ', orders: 7},
	{from: 'ፀ', to: 'ጸ', orders: 7},
}

var singleMappings = map[rune]rune{
	'ኇ': 'ሗ',
	'ኋ': 'ሗ',
	'ጏ': 'ጓ',
	'ቇ': 'ቋ',
}

var seriesTable = func() map[rune]rune {
	out := make(map[rune]rune, 64)
	for _, m := range seriesMappings {
		for i := 0; i < m.orders; i++ {
			from, to := m.from+rune(i), m.to+rune(i)
			if assigned(from) && assigned(to) {
				out[from] = to
			}
		}
	}
	for from, to := range singleMappings {
		out[from] = to
	}
	return out
}()

func normalizeRune(r rune) rune {
	if to, ok := seriesTable[r]; ok {
		return to
	}
	return r
}

var normalizer = runes.Map(normalizeRune)

// Normalize: 발음이 같은 음절 계열을 대표 계열로 통일합니다.
func Normalize(text string) string {
	out, _, err := transform.String(normalizer, text)
	if err != nil {
		return text
	}
	return out
}

package tigmorph

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/unicode/rangetable"
)

// 축약 표기에 쓰이는 따옴표 계열
var contractionMarks = runes.In(rangetable.New(
	'\u0027', '\u2018', '\u2019', '\u2032', '\u02BC', '\u0060', '\u00B4',
))

var englishPunctuation = runes.In(rangetable.New(
	'.', ',', '!', '?', ':', ';', '\'', '"',
	'\u201C', '\u201D', '\u2018', '\u2019',
	'\u2010', '\u2013', '\u2014',
	'(', ')', '[', ']', '{', '}',
	'\u2026', '/', '\\', '&', '*',
))

// 에티오피아 문장부호 ፡ ። ፣ ፤ ፥ ፦ ፧ ፨
func isEthiopicPunctuation(r rune) bool {
	return r >= 0x1361 && r <= 0x1368
}

var ethiopicPunctuationToSpace = runes.Map(func(r rune) rune {
	if isEthiopicPunctuation(r) {
		return ' '
	}
	return r
})

var englishPunctuationRemover = runes.Remove(englishPunctuation)

// 에티오피아 문장부호는 단어 구분자이므로 공백으로, 영문 문장부호는 제거한다.
// Chain 은 내부 버퍼를 가지므로 호출마다 새로 만든다.
func newPunctuationRemover() transform.Transformer {
	return transform.Chain(ethiopicPunctuationToSpace, englishPunctuationRemover)
}

// cutContraction: 첫 따옴표부터 뒤를 잘라냅니다 (예: ሰሙን’ዚ → ሰሙን).
func cutContraction(word string) string {
	if idx := strings.IndexFunc(word, contractionMarks.Contains); idx >= 0 {
		return word[:idx]
	}
	return word
}

// Tokenize: NFC 정규화, 축약 처리, 문장부호 제거 후 음절 문자로만 이루어진 단어만 남깁니다.
func Tokenize(text string) []string {
	text = norm.NFC.String(text)

	words := strings.Fields(text)
	for i, word := range words {
		words[i] = cutContraction(word)
	}

	stripped, _, err := transform.String(newPunctuationRemover(), strings.Join(words, " "))
	if err != nil {
		return nil
	}

	out := make([]string, 0, len(words))
	for _, word := range strings.Fields(stripped) {
		if allLetters(word) {
			out = append(out, word)
		}
	}
	return out
}

func allLetters(word string) bool {
	for _, r := range word {
		if !IsLetter(r) {
			return false
		}
	}
	return true
}

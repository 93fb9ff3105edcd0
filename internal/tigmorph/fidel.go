package tigmorph

import (
	"strings"
	"unicode"
)

// 음소 표기 규칙
//
// 음절 하나는 자음 행의 첫 글자(행 기준 문자) + 선택적 순음 표지 W + 선택적 모음으로 표기한다.
// 모음 e u i a E o, 6번째 차수는 모음이 없다. አ 행은 성문 자음으로 어근 자음 수에 포함하지 않는다.
const (
	syllableStart rune = 0x1200
	syllableEnd   rune = 0x135A
	glottal       rune = 'አ'
	labialMark    rune = 'W'
	noVowel       rune = 0
	invalidVowel  rune = -1
)

var orderVowels = [7]rune{'e', 'u', 'i', 'a', 'E', noVowel, 'o'}

// 순음화 블록 시작 → 소유 자음 행
var labialBlocks = map[rune]rune{
	0x1248: 0x1240, // ቈ ← ቀ
	0x1258: 0x1250, // ቘ ← ቐ
	0x1288: 0x1280, // ኈ ← ኀ
	0x12B0: 0x12A8, // ኰ ← ከ
	0x12C0: 0x12B8, // ዀ ← ኸ
	0x1310: 0x1308, // ጐ ← ገ
}

var labialBlockVowels = [8]rune{'e', invalidVowel, 'i', 'a', 'E', noVowel, invalidVowel, invalidVowel}

var labialBlockOf = func() map[rune]rune {
	out := make(map[rune]rune, len(labialBlocks))
	for block, row := range labialBlocks {
		out[row] = block
	}
	return out
}()

type syllable struct {
	cons   rune
	labial bool
	vowel  rune
}

func isVowel(r rune) bool {
	switch r {
	case 'e', 'u', 'i', 'a', 'E', 'o':
		return true
	}
	return false
}

// ፘ ፙ ፚ 는 행 구조를 따르지 않아 글자 자체를 자음으로 취급한다.
func isOpaque(r rune) bool {
	return r >= 0x1358 && r <= 0x135A
}

func assigned(r rune) bool {
	return r >= syllableStart && r <= syllableEnd && unicode.Is(unicode.Ethiopic, r)
}

// IsLetter: 에티오피아 음절 문자(숫자, 문장부호 제외)인지 확인합니다.
func IsLetter(r rune) bool {
	_, ok := decompose(r)
	return ok
}

func decompose(r rune) (syllable, bool) {
	if !assigned(r) {
		return syllable{}, false
	}
	if isOpaque(r) {
		return syllable{cons: r}, true
	}

	base := r &^ 7
	off := int(r - base)
	if owner, ok := labialBlocks[base]; ok {
		vowel := labialBlockVowels[off]
		if vowel == invalidVowel {
			return syllable{}, false
		}
		return syllable{cons: owner, labial: true, vowel: vowel}, true
	}
	if off < len(orderVowels) {
		return syllable{cons: base, vowel: orderVowels[off]}, true
	}

	switch {
	case base == glottal:
		return syllable{cons: glottal, vowel: 'e'}, true
	case labialBlockOf[base] != 0:
		return syllable{cons: base, labial: true, vowel: 'o'}, true
	default:
		return syllable{cons: base, labial: true, vowel: 'a'}, true
	}
}

func compose(s syllable) (rune, bool) {
	var r rune
	switch {
	case isOpaque(s.cons):
		if s.labial || s.vowel != noVowel {
			return 0, false
		}
		r = s.cons
	case !s.labial:
		off := vowelIndex(orderVowels[:], s.vowel)
		if off < 0 {
			return 0, false
		}
		r = s.cons + rune(off)
	case s.cons == glottal:
		return 0, false
	default:
		block, hasBlock := labialBlockOf[s.cons]
		switch {
		case s.vowel == 'o' && hasBlock:
			r = s.cons + 7
		case hasBlock:
			off := vowelIndex(labialBlockVowels[:], s.vowel)
			if off < 0 {
				return 0, false
			}
			r = block + rune(off)
		case s.vowel == 'a':
			r = s.cons + 7
		default:
			return 0, false
		}
	}
	if !assigned(r) {
		return 0, false
	}
	return r, true
}

func vowelIndex(table []rune, vowel rune) int {
	for i, v := range table {
		if v == vowel {
			return i
		}
	}
	return -1
}

// transliterate: 음절 문자열을 음소 표기로 바꿉니다. 음절 문자가 아닌 글자가 있으면 false.
func transliterate(word string) (string, bool) {
	var b strings.Builder
	for _, r := range word {
		s, ok := decompose(r)
		if !ok {
			return "", false
		}
		b.WriteRune(s.cons)
		if s.labial {
			b.WriteRune(labialMark)
		}
		if s.vowel != noVowel {
			b.WriteRune(s.vowel)
		}
	}
	return b.String(), true
}

// transcribe: 음소 표기를 음절 문자열로 되돌립니다. 자음 없이 남은 모음은 성문 자음에 붙입니다.
func transcribe(phonemic string) (string, bool) {
	rs := []rune(phonemic)
	var b strings.Builder
	for i := 0; i < len(rs); {
		var s syllable
		switch {
		case isVowel(rs[i]):
			s = syllable{cons: glottal, vowel: rs[i]}
			i++
		case rs[i] == labialMark:
			return "", false
		default:
			s.cons = rs[i]
			i++
			if i < len(rs) && rs[i] == labialMark {
				s.labial = true
				i++
			}
			if i < len(rs) && isVowel(rs[i]) {
				s.vowel = rs[i]
				i++
			}
		}
		r, ok := compose(s)
		if !ok {
			return "", false
		}
		b.WriteRune(r)
	}
	return b.String(), true
}

// root: 음소 표기에서 어근 자음만 남깁니다.
func root(phonemic string) string {
	var b strings.Builder
	for _, r := range phonemic {
		if isVowel(r) || r == labialMark || r == glottal {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func radicals(phonemic string) int {
	n := 0
	for _, r := range phonemic {
		if isVowel(r) || r == labialMark || r == glottal {
			continue
		}
		n++
	}
	return n
}

package tigmorph

import "strings"

// minRadicals 는 어간이 유지해야 하는 최소 어근 자음 수다.
const minRadicals = 3

type phonemicPair struct {
	prefix, suffix string
}

// Stemmer: 음소 표기 위에서 접사와 중첩 음절을 제거합니다.
// 각 단계는 어근 자음이 3개를 넘을 때만 적용되고, 3개 이상을 남깁니다.
type Stemmer struct {
	pairs    []phonemicPair
	prefixes []string
	suffixes []string
}

// NewStemmer: 사전의 접사를 음소 표기로 미리 변환해 둡니다.
func NewStemmer(lex *Lexicon) *Stemmer {
	s := &Stemmer{}
	for _, p := range lex.PrefixSuffixPairs {
		prefix, okP := transliterate(p.Prefix)
		suffix, okS := transliterate(p.Suffix)
		if okP && okS {
			s.pairs = append(s.pairs, phonemicPair{prefix: prefix, suffix: suffix})
		}
	}
	s.prefixes = transliterateAll(lex.Prefixes)
	s.suffixes = transliterateAll(lex.Suffixes)
	return s
}

func transliterateAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if p, ok := transliterate(w); ok && p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Stem: 접두사-접미사 쌍, 이중 중첩, 접두사, 접미사, 단일 중첩 순서로 제거합니다.
func (s *Stemmer) Stem(word string) string {
	word = s.removePrefixSuffixPair(word)
	word = removeDoubleReduplication(word)
	word = s.removePrefix(word)
	word = s.removeSuffix(word)
	return removeSingleReduplication(word)
}

func (s *Stemmer) removePrefixSuffixPair(word string) string {
	return onPhonemic(word, func(p string) string {
		for _, pair := range s.pairs {
			if radicals(p) <= minRadicals {
				break
			}
			if len(p) < len(pair.prefix)+len(pair.suffix) ||
				!strings.HasPrefix(p, pair.prefix) || !strings.HasSuffix(p, pair.suffix) {
				continue
			}
			if radicals(p)-radicals(pair.prefix+pair.suffix) >= minRadicals {
				p = p[len(pair.prefix) : len(p)-len(pair.suffix)]
			}
		}
		return p
	})
}

func (s *Stemmer) removePrefix(word string) string {
	return onPhonemic(word, func(p string) string {
		for _, prefix := range s.prefixes {
			if radicals(p) <= minRadicals {
				break
			}
			if strings.HasPrefix(p, prefix) && radicals(p)-radicals(prefix) >= minRadicals {
				p = p[len(prefix):]
			}
		}
		return p
	})
}

func (s *Stemmer) removeSuffix(word string) string {
	return onPhonemic(word, func(p string) string {
		for _, suffix := range s.suffixes {
			if radicals(p) <= minRadicals {
				break
			}
			if strings.HasSuffix(p, suffix) && radicals(p)-radicals(suffix) >= minRadicals {
				p = p[:len(p)-len(suffix)]
			}
		}
		return p
	})
}

// onPhonemic 는 음소 표기로 바꿔 fn 을 적용하고 되돌린다. 되돌릴 수 없으면 원래 단어를 쓴다.
func onPhonemic(word string, fn func(string) string) string {
	phonemic, ok := transliterate(word)
	if !ok {
		return word
	}
	out, ok := transcribe(fn(phonemic))
	if !ok {
		return word
	}
	return out
}

// removeDoubleReduplication: 두 음절 반복(예: ገልጠምጠም)의 두 번째 반복을 지웁니다.
func removeDoubleReduplication(word string) string {
	phonemic, ok := transliterate(word)
	if !ok || radicals(phonemic) < minRadicals+2 {
		return word
	}
	rs := []rune(word)
	for i := 0; i+3 < len(rs); i++ {
		if rs[i] == rs[i+2] && rs[i+1] == rs[i+3] {
			return string(rs[:i+2]) + string(rs[i+4:])
		}
	}
	return word
}

// removeSingleReduplication: 같은 자음을 가진 인접 음절(예: ሰባቢሩ) 중 앞 음절을 지웁니다.
func removeSingleReduplication(word string) string {
	phonemic, ok := transliterate(word)
	if !ok || radicals(phonemic) < minRadicals+1 {
		return word
	}
	rs := []rune(word)
	for i := 0; i+1 < len(rs); i++ {
		if syllableRoot(rs[i]) == syllableRoot(rs[i+1]) {
			return string(rs[:i]) + string(rs[i+1:])
		}
	}
	return word
}

func syllableRoot(r rune) string {
	p, _ := transliterate(string(r))
	return root(p)
}

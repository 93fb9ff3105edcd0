package tigmorph

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon/default.yaml
var defaultLexiconYAML []byte

// ErrEmptyLexicon 은 사전에 불용어/접사가 하나도 없을 때 반환된다.
var ErrEmptyLexicon = errors.New("lexicon is empty")

// AffixPair: 함께 붙는 접두사-접미사 쌍입니다.
type AffixPair struct {
	Prefix string `yaml:"prefix"`
	Suffix string `yaml:"suffix"`
}

// Lexicon: 불용어와 접사 목록입니다. 모든 항목은 정규화된 형태로 보관됩니다.
type Lexicon struct {
	Version           int         `yaml:"version"`
	Stopwords         []string    `yaml:"stopwords"`
	Prefixes          []string    `yaml:"prefixes"`
	Suffixes          []string    `yaml:"suffixes"`
	PrefixSuffixPairs []AffixPair `yaml:"prefix_suffix_pairs"`
}

// DefaultLexicon: 내장 사전을 반환합니다.
func DefaultLexicon() (*Lexicon, error) {
	return ParseLexicon(defaultLexiconYAML)
}

// LoadLexicon: path 의 YAML 사전을 읽습니다. path 가 비어 있으면 내장 사전을 사용합니다.
func LoadLexicon(path string) (*Lexicon, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultLexicon()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	lex, err := ParseLexicon(data)
	if err != nil {
		return nil, fmt.Errorf("lexicon %s: %w", path, err)
	}
	return lex, nil
}

// ParseLexicon: YAML 을 파싱하고 항목을 정규화합니다.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}

	lex.Stopwords = cleanEntries(lex.Stopwords)
	lex.Prefixes = cleanEntries(lex.Prefixes)
	lex.Suffixes = cleanEntries(lex.Suffixes)

	pairs := lex.PrefixSuffixPairs[:0]
	for _, p := range lex.PrefixSuffixPairs {
		prefix := Normalize(strings.TrimSpace(p.Prefix))
		suffix := Normalize(strings.TrimSpace(p.Suffix))
		if prefix == "" || suffix == "" {
			continue
		}
		pairs = append(pairs, AffixPair{Prefix: prefix, Suffix: suffix})
	}
	lex.PrefixSuffixPairs = pairs

	if len(lex.Stopwords)+len(lex.Prefixes)+len(lex.Suffixes)+len(lex.PrefixSuffixPairs) == 0 {
		return nil, ErrEmptyLexicon
	}
	return &lex, nil
}

// 빈 항목, 중복, 음절 문자가 아닌 항목을 걸러낸다. 순서는 유지한다.
func cleanEntries(entries []string) []string {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		entry = Normalize(strings.TrimSpace(entry))
		if entry == "" || !allLetters(entry) {
			continue
		}
		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		out = append(out, entry)
	}
	return out
}

// StopwordSet: 불용어 조회용 집합을 만듭니다.
func (l *Lexicon) StopwordSet() map[string]struct{} {
	set := make(map[string]struct{}, len(l.Stopwords))
	for _, w := range l.Stopwords {
		set[w] = struct{}{}
	}
	return set
}

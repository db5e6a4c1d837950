package analyzer

import (
	"sort"
	"strings"

	"github.com/kljensen/snowball"
	"github.com/surgebase/porter2"
)

// NoneStemmer returns words unchanged.
type NoneStemmer struct{}

func (NoneStemmer) Stem(word string) string { return word }

func (NoneStemmer) Clean(tokens []string) []string { return tokens }

// Porter2Stemmer applies the English Porter2 algorithm.
type Porter2Stemmer struct{}

// NewPorter2Stemmer creates a new Porter2 stemmer.
func NewPorter2Stemmer() *Porter2Stemmer {
	return &Porter2Stemmer{}
}

func (p *Porter2Stemmer) Stem(word string) string {
	return porter2.Stem(word)
}

func (p *Porter2Stemmer) Clean(tokens []string) []string {
	return stemAll(p, tokens)
}

// SnowballStemmer applies a Snowball stemmer for one of its supported languages.
type SnowballStemmer struct {
	language string
}

// NewSnowballStemmer creates a stemmer for a Snowball language name such as
// "french" or "spanish".
func NewSnowballStemmer(language string) (*SnowballStemmer, error) {
	if _, err := snowball.Stem("test", language, true); err != nil {
		return nil, err
	}
	return &SnowballStemmer{language: language}, nil
}

// Stem returns the stem of word, or word itself if Snowball rejects it.
func (s *SnowballStemmer) Stem(word string) string {
	stemmed, err := snowball.Stem(word, s.language, true)
	if err != nil {
		return word
	}
	return stemmed
}

func (s *SnowballStemmer) Clean(tokens []string) []string {
	return stemAll(s, tokens)
}

// AffixRules drive AffixStemmer. Suffix groups strip at most one entry each;
// prefixes strip up to MaxPrefixes times.
type AffixRules struct {
	MinStem     int          `yaml:"min_stem"`
	MaxPrefixes int          `yaml:"max_prefixes"`
	Particles   []string     `yaml:"particles"`
	Possessives []string     `yaml:"possessives"`
	Suffixes    []string     `yaml:"suffixes"`
	Prefixes    []PrefixRule `yaml:"prefixes"`
}

// PrefixRule removes Prefix and prepends Replace, only when the remainder
// starts with one of the letters in Before (any letter when Before is empty).
type PrefixRule struct {
	Prefix  string `yaml:"prefix"`
	Replace string `yaml:"replace"`
	Before  string `yaml:"before"`
}

// AffixStemmer strips inflectional and derivational affixes for
// agglutinative languages without a dictionary. Order: particle,
// possessive, first prefix, derivational suffix, further prefixes.
type AffixStemmer struct {
	rules AffixRules
}

// NewAffixStemmer creates a stemmer from rules. Longer affixes are tried
// first; rules sharing a prefix keep their given order.
func NewAffixStemmer(rules AffixRules) *AffixStemmer {
	rules.Particles = byLengthDesc(rules.Particles)
	rules.Possessives = byLengthDesc(rules.Possessives)
	rules.Suffixes = byLengthDesc(rules.Suffixes)

	prefixes := make([]PrefixRule, len(rules.Prefixes))
	copy(prefixes, rules.Prefixes)
	sort.SliceStable(prefixes, func(i, j int) bool {
		return len(prefixes[i].Prefix) > len(prefixes[j].Prefix)
	})
	rules.Prefixes = prefixes

	if rules.MinStem < 1 {
		rules.MinStem = 1
	}
	if rules.MaxPrefixes < 1 {
		rules.MaxPrefixes = 1
	}
	return &AffixStemmer{rules: rules}
}

func (a *AffixStemmer) Stem(word string) string {
	w := a.stripSuffix(word, a.rules.Particles)
	w = a.stripSuffix(w, a.rules.Possessives)

	w, _ = a.stripPrefix(w)
	w = a.stripSuffix(w, a.rules.Suffixes)

	for i := 1; i < a.rules.MaxPrefixes; i++ {
		next, ok := a.stripPrefix(w)
		if !ok {
			break
		}
		w = next
	}
	return w
}

func (a *AffixStemmer) Clean(tokens []string) []string {
	return stemAll(a, tokens)
}

func (a *AffixStemmer) stripSuffix(word string, suffixes []string) string {
	for _, suf := range suffixes {
		if strings.HasSuffix(word, suf) && len(word)-len(suf) >= a.rules.MinStem {
			return word[:len(word)-len(suf)]
		}
	}
	return word
}

func (a *AffixStemmer) stripPrefix(word string) (string, bool) {
	for _, rule := range a.rules.Prefixes {
		if !strings.HasPrefix(word, rule.Prefix) {
			continue
		}
		rest := word[len(rule.Prefix):]
		if rule.Before != "" && (rest == "" || !strings.ContainsRune(rule.Before, rune(rest[0]))) {
			continue
		}
		stem := rule.Replace + rest
		if len(stem) < a.rules.MinStem {
			continue
		}
		return stem, true
	}
	return word, false
}

func byLengthDesc(words []string) []string {
	out := make([]string, len(words))
	copy(out, words)
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i]) > len(out[j])
	})
	return out
}

func stemAll(s interface{ Stem(string) string }, tokens []string) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = s.Stem(tok)
	}
	return out
}

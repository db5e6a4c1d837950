package analyzer

import (
	"strings"

	"essaysim/internal/port"
)

// StopwordFilter drops tokens found in a stopword list, ignoring case.
type StopwordFilter struct {
	words map[string]struct{}
}

// NewStopwordFilter creates a filter over words.
func NewStopwordFilter(words []string) *StopwordFilter {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[strings.ToLower(w)] = struct{}{}
	}
	return &StopwordFilter{words: m}
}

func (f *StopwordFilter) IsStopword(word string) bool {
	_, ok := f.words[strings.ToLower(word)]
	return ok
}

func (f *StopwordFilter) Clean(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if f.IsStopword(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func (f *StopwordFilter) Len() int {
	return len(f.words)
}

// NoneCleaner returns tokens unchanged.
type NoneCleaner struct{}

func (NoneCleaner) Clean(tokens []string) []string { return tokens }

// LanguageCleaner removes stopwords, then stems what is left.
type LanguageCleaner struct {
	stopwords *StopwordFilter
	stemmer   port.Stemmer
}

// NewLanguageCleaner creates a cleaner from a stopword filter and a stemmer.
func NewLanguageCleaner(stopwords *StopwordFilter, stemmer port.Stemmer) *LanguageCleaner {
	return &LanguageCleaner{stopwords: stopwords, stemmer: stemmer}
}

func (c *LanguageCleaner) Clean(tokens []string) []string {
	return c.stemmer.Clean(c.stopwords.Clean(tokens))
}

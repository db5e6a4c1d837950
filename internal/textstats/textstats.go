// Package textstats computes descriptive statistics of a response text.
package textstats

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrUnknownItem is returned by ParseItems for names it does not know.
var ErrUnknownItem = errors.New("textstats: unknown item")

type Item string

const (
	Chars                 Item = "chars"
	Words                 Item = "words"
	Sentences             Item = "sentences"
	Paragraphs            Item = "paragraphs"
	UniqueWords           Item = "uniquewords"
	LongWords             Item = "longwords"
	CharsPerSentence      Item = "charspersentence"
	WordsPerSentence      Item = "wordspersentence"
	LongWordsPerSentence  Item = "longwordspersentence"
	SentencesPerParagraph Item = "sentencesperparagraph"
	LexicalDensity        Item = "lexicaldensity"
	FogIndex              Item = "fogindex"
)

// AllItems lists every item in display order.
var AllItems = []Item{
	Chars, Words, Sentences, Paragraphs, UniqueWords, LongWords,
	CharsPerSentence, WordsPerSentence, LongWordsPerSentence,
	SentencesPerParagraph, LexicalDensity, FogIndex,
}

// ParseItems parses a comma separated item list. Blank entries are skipped
// and duplicates keep their first position.
func ParseItems(s string) ([]Item, error) {
	var items []Item
	seen := make(map[Item]bool)
	for _, part := range strings.Split(s, ",") {
		name := Item(strings.ToLower(strings.TrimSpace(part)))
		if name == "" {
			continue
		}
		if !known(name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownItem, string(name))
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		items = append(items, name)
	}
	return items, nil
}

func known(item Item) bool {
	for _, it := range AllItems {
		if it == item {
			return true
		}
	}
	return false
}

// Value is one computed statistic.
type Value struct {
	Item  Item    `json:"item"`
	Value float64 `json:"value"`
}

// Stats holds the raw counts of a text.
type Stats struct {
	Chars       int
	Words       int
	Sentences   int
	Paragraphs  int
	UniqueWords int
	LongWords   int
}

var (
	wordPattern      = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)
	sentenceBoundary = regexp.MustCompile(`[.!?]+`)
	paragraphBreak   = regexp.MustCompile(`\n[ \t\r\f\v]*\n`)
)

// Analyze counts the raw statistics of text.
func Analyze(text string) Stats {
	words := wordPattern.FindAllString(text, -1)

	s := Stats{
		Chars: utf8.RuneCountInString(text),
		Words: len(words),
	}

	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[strings.ToLower(w)] = struct{}{}
		if Syllables(w) >= 3 {
			s.LongWords++
		}
	}
	s.UniqueWords = len(unique)

	s.Sentences = countSegments(sentenceBoundary.Split(text, -1))
	s.Paragraphs = countSegments(paragraphBreak.Split(text, -1))
	if s.Words > 0 {
		s.Sentences = max(s.Sentences, 1)
		s.Paragraphs = max(s.Paragraphs, 1)
	}
	return s
}

func countSegments(parts []string) int {
	n := 0
	for _, p := range parts {
		if wordPattern.MatchString(p) {
			n++
		}
	}
	return n
}

// Value returns the requested statistic.
func (s Stats) Value(item Item) float64 {
	switch item {
	case Chars:
		return float64(s.Chars)
	case Words:
		return float64(s.Words)
	case Sentences:
		return float64(s.Sentences)
	case Paragraphs:
		return float64(s.Paragraphs)
	case UniqueWords:
		return float64(s.UniqueWords)
	case LongWords:
		return float64(s.LongWords)
	case CharsPerSentence:
		return ratio(s.Chars, s.Sentences)
	case WordsPerSentence:
		return ratio(s.Words, s.Sentences)
	case LongWordsPerSentence:
		return ratio(s.LongWords, s.Sentences)
	case SentencesPerParagraph:
		return ratio(s.Sentences, s.Paragraphs)
	case LexicalDensity:
		return ratio(s.UniqueWords, s.Words) * 100
	case FogIndex:
		return 0.4 * (ratio(s.Words, s.Sentences) + 100*ratio(s.LongWords, s.Words))
	}
	return 0
}

// Compute returns the requested statistics of text in the order given.
func Compute(text string, items []Item) []Value {
	s := Analyze(text)
	out := make([]Value, len(items))
	for i, item := range items {
		out[i] = Value{Item: item, Value: s.Value(item)}
	}
	return out
}

// Syllables estimates the syllable count of an English word by counting
// vowel groups, discounting a final silent e.
func Syllables(word string) int {
	word = strings.ToLower(word)
	count := 0
	prevVowel := false
	for _, r := range word {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}
	if count > 1 && strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") {
		count--
	}
	if count == 0 && strings.IndexFunc(word, unicode.IsLetter) >= 0 {
		count = 1
	}
	return count
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

package textstats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "The quick brown fox jumps. It is beautiful!\n\nAnother paragraph here."

func TestAnalyze(t *testing.T) {
	s := Analyze(sample)
	assert.Equal(t, Stats{
		Chars:       68,
		Words:       11,
		Sentences:   3,
		Paragraphs:  2,
		UniqueWords: 11,
		LongWords:   3,
	}, s)
}

func TestCompute(t *testing.T) {
	got := Compute(sample, AllItems)
	want := map[Item]float64{
		Chars:                 68,
		Words:                 11,
		Sentences:             3,
		Paragraphs:            2,
		UniqueWords:           11,
		LongWords:             3,
		CharsPerSentence:      68.0 / 3,
		WordsPerSentence:      11.0 / 3,
		LongWordsPerSentence:  1,
		SentencesPerParagraph: 1.5,
		LexicalDensity:        100,
		FogIndex:              12.375757575757577,
	}

	require.Len(t, got, len(AllItems))
	for i, v := range got {
		assert.Equal(t, AllItems[i], v.Item)
		assert.InDelta(t, want[v.Item], v.Value, 1e-9, string(v.Item))
	}
}

func TestComputeEmpty(t *testing.T) {
	for _, v := range Compute("", AllItems) {
		assert.Zero(t, v.Value, string(v.Item))
	}
}

func TestComputeWithoutTerminator(t *testing.T) {
	s := Analyze("no full stop here")
	assert.Equal(t, 1, s.Sentences)
	assert.Equal(t, 1, s.Paragraphs)
}

func TestLexicalDensity(t *testing.T) {
	got := Compute("The the cat.", []Item{LexicalDensity})
	assert.InDelta(t, 200.0/3, got[0].Value, 1e-9)
}

func TestParseItems(t *testing.T) {
	items, err := ParseItems(" Words, chars,,words , fogindex")
	require.NoError(t, err)
	assert.Equal(t, []Item{Words, Chars, FogIndex}, items)

	items, err = ParseItems("")
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = ParseItems("words,syllables")
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestSyllables(t *testing.T) {
	tests := map[string]int{
		"cat":       1,
		"here":      1,
		"table":     2,
		"beautiful": 3,
		"rhythm":    1,
		"education": 4,
		"x":         1,
	}
	for word, want := range tests {
		assert.Equal(t, want, Syllables(word), word)
	}
}

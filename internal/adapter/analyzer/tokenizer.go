package analyzer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	disallowed   = regexp.MustCompile(`[^a-z -]`)
	spaceRuns    = regexp.MustCompile(` +`)
	brokenHyphen = strings.NewReplacer("- ", "")
)

// Tokenizer normalizes text and splits it into lowercase terms.
type Tokenizer struct {
	foldAccents bool
}

// NewTokenizer creates a new Tokenizer. With foldAccents set, diacritics are
// stripped before filtering so that accented letters survive as a-z.
func NewTokenizer(foldAccents bool) *Tokenizer {
	return &Tokenizer{foldAccents: foldAccents}
}

// Tokenize splits text into terms. Empty input yields no terms.
func (t *Tokenizer) Tokenize(text string) []string {
	return splitTerms(t.Normalize(text))
}

// Normalize lowercases text, replaces everything outside a-z, space and
// hyphen with a space, collapses spaces and joins words broken by "- ".
func (t *Tokenizer) Normalize(text string) string {
	text = strings.ToLower(text)
	if t.foldAccents {
		text = foldAccents(text)
	}
	text = disallowed.ReplaceAllString(text, " ")
	text = spaceRuns.ReplaceAllString(text, " ")
	text = brokenHyphen.Replace(text)
	return strings.TrimSpace(text)
}

func foldAccents(text string) string {
	// A chain carries state, so one is built per call.
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(chain, text)
	if err != nil {
		return text
	}
	return out
}

// splitTerms splits on whitespace and control characters and drops
// fragments without a letter.
func splitTerms(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r) || unicode.In(r, unicode.Z)
	})

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if strings.IndexFunc(f, unicode.IsLetter) < 0 {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

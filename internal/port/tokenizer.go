package port

// Tokenizer turns raw text into a sequence of normalized terms.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Cleaner removes noise terms and canonicalizes the rest.
type Cleaner interface {
	Clean(tokens []string) []string
}

// Stemmer reduces a word to its canonical form.
type Stemmer interface {
	Stem(word string) string

	// Clean stems every token.
	Clean(tokens []string) []string
}

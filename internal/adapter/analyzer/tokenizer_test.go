package analyzer

import (
	"reflect"
	"testing"
)

func TestTokenizer_Tokenize(t *testing.T) {
	tok := NewTokenizer(false)

	tests := []struct {
		input    string
		expected []string
	}{
		{"", []string{}},
		{"Hello, World!", []string{"hello", "world"}},
		{"  many   spaces\there ", []string{"many", "spaces", "here"}},
		{"state-of-the-art", []string{"state-of-the-art"}},
		{"self- service desk", []string{"selfservice", "desk"}},
		{"a - b", []string{"a", "b"}},
		{"trailing -", []string{"trailing"}},
		{"numbers 123 vanish", []string{"numbers", "vanish"}},
		{"?!...", []string{}},
		{"line\nbreaks\r\nare spaces", []string{"line", "breaks", "are", "spaces"}},
		{"café", []string{"caf"}},
	}

	for _, tt := range tests {
		got := tok.Tokenize(tt.input)
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("Tokenize(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestTokenizer_FoldAccents(t *testing.T) {
	tok := NewTokenizer(true)

	got := tok.Tokenize("L'élève a été très ÉTONNÉ, señor")
	want := []string{"l", "eleve", "a", "ete", "tres", "etonne", "senor"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize with folding = %q, want %q", got, want)
	}
}

func TestTokenizer_Normalize(t *testing.T) {
	tok := NewTokenizer(false)

	if got := tok.Normalize("  Re-Use,  the   well- known   pattern. "); got != "re-use the wellknown pattern" {
		t.Errorf("Normalize = %q", got)
	}
}

func TestTokenizer_ConcurrentUse(t *testing.T) {
	tok := NewTokenizer(true)
	done := make(chan []string)
	for i := 0; i < 8; i++ {
		go func() {
			done <- tok.Tokenize("Çà et là, déjà vu")
		}()
	}
	want := []string{"ca", "et", "la", "deja", "vu"}
	for i := 0; i < 8; i++ {
		if got := <-done; !reflect.DeepEqual(got, want) {
			t.Errorf("concurrent Tokenize = %q, want %q", got, want)
		}
	}
}

func TestSplitTerms(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"hello world", 2},
		{"hello-world", 1},
		{"- -- ---", 0},
		{"a b", 2},
	}

	for _, tt := range tests {
		words := splitTerms(tt.input)
		if len(words) != tt.expected {
			t.Errorf("splitTerms(%q) = %d terms, want %d: %v", tt.input, len(words), tt.expected, words)
		}
	}
}

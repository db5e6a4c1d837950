package analyzer

import (
	"reflect"
	"strings"
	"testing"
)

func TestPorter2Stemmer(t *testing.T) {
	s := NewPorter2Stemmer()

	tests := map[string]string{
		"running":      "run",
		"testing":      "test",
		"software":     "softwar",
		"requirements": "requir",
		"defects":      "defect",
	}
	for word, want := range tests {
		if got := s.Stem(word); got != want {
			t.Errorf("Stem(%q) = %q, want %q", word, got, want)
		}
	}
}

func TestNoneStemmer(t *testing.T) {
	var s NoneStemmer
	if got := s.Stem("running"); got != "running" {
		t.Errorf("Stem = %q, want input unchanged", got)
	}
	in := []string{"a", "b"}
	if got := s.Clean(in); !reflect.DeepEqual(got, in) {
		t.Errorf("Clean = %v", got)
	}
}

func TestSnowballStemmer(t *testing.T) {
	en, err := NewSnowballStemmer("english")
	if err != nil {
		t.Fatalf("english: %v", err)
	}
	if got := en.Stem("running"); got != "run" {
		t.Errorf("english Stem(running) = %q, want run", got)
	}

	for lang, word := range map[string]string{"french": "parlements", "spanish": "bibliotecas"} {
		s, err := NewSnowballStemmer(lang)
		if err != nil {
			t.Fatalf("%s: %v", lang, err)
		}
		got := s.Stem(word)
		if len(got) >= len(word) || !strings.HasPrefix(word, got) {
			t.Errorf("%s Stem(%q) = %q, want a shorter prefix", lang, word, got)
		}
	}
}

func TestSnowballStemmer_UnknownLanguage(t *testing.T) {
	if _, err := NewSnowballStemmer("klingon"); err == nil {
		t.Error("expected error for unsupported snowball language")
	}
}

func TestAffixStemmer(t *testing.T) {
	assets, err := LoadAssets(EmbeddedAssets())
	if err != nil {
		t.Fatalf("LoadAssets: %v", err)
	}
	var rules *AffixRules
	for _, a := range assets {
		if a.Code == "id" {
			rules = a.Affix
		}
	}
	if rules == nil {
		t.Fatal("id asset has no affix rules")
	}
	s := NewAffixStemmer(*rules)

	tests := map[string]string{
		"membaca":      "baca",
		"membacakan":   "baca",
		"menulis":      "tulis",
		"menyapu":      "sapu",
		"bukunya":      "buku",
		"bermainlah":   "main",
		"pembelajaran": "ajar",
		"dimakan":      "makan",
		"meja":         "meja",
		"buku":         "buku",
	}
	for word, want := range tests {
		if got := s.Stem(word); got != want {
			t.Errorf("Stem(%q) = %q, want %q", word, got, want)
		}
	}
}

func TestAffixStemmer_MinStem(t *testing.T) {
	s := NewAffixStemmer(AffixRules{
		MinStem:  3,
		Suffixes: []string{"an", "s"},
		Prefixes: []PrefixRule{{Prefix: "un"}},
	})

	tests := map[string]string{
		"cats":   "cat",
		"ban":    "ban",
		"undone": "done",
		"unit":   "unit",
	}
	for word, want := range tests {
		if got := s.Stem(word); got != want {
			t.Errorf("Stem(%q) = %q, want %q", word, got, want)
		}
	}
}

func TestStopwordFilter(t *testing.T) {
	f := NewStopwordFilter([]string{"The", "of"})

	got := f.Clean([]string{"the", "THE", "state", "Of", "art"})
	want := []string{"state", "art"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Clean = %v, want %v", got, want)
	}
	if f.Len() != 2 {
		t.Errorf("Len = %d, want 2", f.Len())
	}
}

func TestLanguageCleaner(t *testing.T) {
	c := NewLanguageCleaner(NewStopwordFilter([]string{"are"}), NewPorter2Stemmer())

	got := c.Clean([]string{"running", "dogs", "are", "playing"})
	want := []string{"run", "dog", "play"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Clean = %v, want %v", got, want)
	}
}

package analyzer

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"testing/fstest"
)

func TestDefaultRegistry_Codes(t *testing.T) {
	r, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry: %v", err)
	}

	want := []string{"en", "es", "fr", "id", "none"}
	if got := r.Codes(); !reflect.DeepEqual(got, want) {
		t.Errorf("Codes = %v, want %v", got, want)
	}
	if got := r.Name("en"); got != "English" {
		t.Errorf("Name(en) = %q", got)
	}
}

func TestRegistry_LookupUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Lookup("xx")
	if !errors.Is(err, ErrUnknownLanguage) {
		t.Errorf("expected ErrUnknownLanguage, got %v", err)
	}
}

func TestRegistry_NoneLanguage(t *testing.T) {
	r := NewRegistry()

	lang, err := r.Lookup(" NONE ")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	got := lang.Terms("The running dogs")
	want := []string{"the", "running", "dogs"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Terms = %v, want %v", got, want)
	}
}

func TestRegistry_EnglishTerms(t *testing.T) {
	r, err := DefaultRegistry()
	if err != nil {
		t.Fatal(err)
	}
	lang, err := r.Lookup("en")
	if err != nil {
		t.Fatal(err)
	}

	got := lang.Terms("Software testing is a process of evaluating a software application to ensure it meets requirements.")
	want := []string{"softwar", "test", "process", "evalu", "softwar", "applic", "ensur", "meet", "requir"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Terms = %v, want %v", got, want)
	}
}

func TestRegistry_FrenchFoldsAccents(t *testing.T) {
	r, err := DefaultRegistry()
	if err != nil {
		t.Fatal(err)
	}
	lang, err := r.Lookup("fr")
	if err != nil {
		t.Fatal(err)
	}

	for _, term := range lang.Terms("Les élèves et le professeur") {
		if term == "les" || term == "et" || term == "le" {
			t.Errorf("stopword %q survived", term)
		}
		for _, r := range term {
			if r < 'a' || r > 'z' {
				t.Errorf("term %q has non a-z rune %q", term, r)
			}
		}
	}
}

func TestRegistry_LookupCachesLanguage(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.Register("xx", "Test", func() (*Language, error) {
		calls++
		return &Language{Code: "xx", Tokenizer: NewTokenizer(false), Cleaner: NoneCleaner{}, Stemmer: NoneStemmer{}}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Lookup("xx"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("factory called %d times, want 1", calls)
	}
}

func TestRegistry_FactoryError(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("boom")
	r.Register("xx", "Broken", func() (*Language, error) { return nil, boom })

	if _, err := r.Lookup("xx"); !errors.Is(err, boom) {
		t.Errorf("expected factory error, got %v", err)
	}
}

func TestRegistry_RegisterAssetsOverrides(t *testing.T) {
	r, err := DefaultRegistry()
	if err != nil {
		t.Fatal(err)
	}

	fsys := fstest.MapFS{
		"en.yaml":    {Data: []byte("code: en\nname: Plain English\nstopwords: [cat]\n")},
		"zz.yaml":    {Data: []byte("code: zz\nstemmer: none\n")},
		"README.txt": {Data: []byte("ignored")},
	}
	if err := r.RegisterAssets(fsys); err != nil {
		t.Fatalf("RegisterAssets: %v", err)
	}

	lang, err := r.Lookup("en")
	if err != nil {
		t.Fatal(err)
	}
	got := lang.Terms("the cat is running")
	want := []string{"the", "is", "running"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Terms = %v, want %v", got, want)
	}
	if _, err := r.Lookup("zz"); err != nil {
		t.Errorf("Lookup(zz): %v", err)
	}
}

func TestParseAsset_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "code: [unterminated"},
		{"missing code", "name: Nothing\n"},
		{"reserved code", "code: none\n"},
		{"unknown stemmer", "code: xx\nstemmer: magic\n"},
		{"bad snowball language", "code: xx\nstemmer: snowball\nsnowball: klingon\n"},
		{"affix without rules", "code: xx\nstemmer: affix\n"},
	}

	for _, tt := range tests {
		if _, err := ParseAsset([]byte(tt.data)); !errors.Is(err, ErrInvalidAsset) {
			t.Errorf("%s: expected ErrInvalidAsset, got %v", tt.name, err)
		}
	}
}

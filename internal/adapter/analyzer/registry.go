package analyzer

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"essaysim/internal/port"
)

// NoLanguage is the reserved code for the pipeline without stopwords or stemming.
const NoLanguage = "none"

// ErrUnknownLanguage is returned by Lookup for codes without a registration.
var ErrUnknownLanguage = errors.New("analyzer: unknown language")

// Language bundles the per-language pipeline stages. All fields are safe for
// concurrent use.
type Language struct {
	Code      string
	Name      string
	Tokenizer port.Tokenizer
	Cleaner   port.Cleaner
	Stemmer   port.Stemmer
}

// Terms tokenizes and cleans text.
func (l *Language) Terms(text string) []string {
	return l.Cleaner.Clean(l.Tokenizer.Tokenize(text))
}

// Factory constructs a Language.
type Factory func() (*Language, error)

// Registry maps language codes to factories and caches what they build.
type Registry struct {
	mu        sync.Mutex
	factories map[string]Factory
	names     map[string]string
	built     map[string]*Language
}

// NewRegistry creates a Registry holding only NoLanguage.
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		names:     make(map[string]string),
		built:     make(map[string]*Language),
	}
	r.Register(NoLanguage, "No language", func() (*Language, error) {
		return &Language{
			Code:      NoLanguage,
			Name:      "No language",
			Tokenizer: NewTokenizer(false),
			Cleaner:   NoneCleaner{},
			Stemmer:   NoneStemmer{},
		}, nil
	})
	return r
}

// DefaultRegistry creates a Registry with the embedded languages.
func DefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	if err := r.RegisterAssets(EmbeddedAssets()); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds or replaces the factory for code.
func (r *Registry) Register(code, name string, f Factory) {
	code = normalizeCode(code)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[code] = f
	r.names[code] = name
	delete(r.built, code)
}

// RegisterAssets registers every language asset found at the root of fsys.
// Later registrations for the same code replace earlier ones.
func (r *Registry) RegisterAssets(fsys fs.FS) error {
	assets, err := LoadAssets(fsys)
	if err != nil {
		return err
	}
	for _, a := range assets {
		r.Register(a.Code, a.Name, a.Build)
	}
	return nil
}

// Lookup returns the Language for code, building it on first use.
func (r *Registry) Lookup(code string) (*Language, error) {
	code = normalizeCode(code)

	r.mu.Lock()
	defer r.mu.Unlock()

	if lang, ok := r.built[code]; ok {
		return lang, nil
	}
	f, ok := r.factories[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, code)
	}
	lang, err := f()
	if err != nil {
		return nil, fmt.Errorf("build language %q: %w", code, err)
	}
	r.built[code] = lang
	return lang, nil
}

// Codes returns the registered codes in sorted order.
func (r *Registry) Codes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	codes := make([]string, 0, len(r.factories))
	for code := range r.factories {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Name returns the display name registered for code.
func (r *Registry) Name(code string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.names[normalizeCode(code)]
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

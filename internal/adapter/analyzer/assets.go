package analyzer

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"essaysim/internal/port"
)

// ErrInvalidAsset is returned for a language asset that cannot be used.
var ErrInvalidAsset = errors.New("analyzer: invalid language asset")

//go:embed assets/*.yaml
var embeddedAssets embed.FS

// EmbeddedAssets returns the language assets compiled into the binary.
func EmbeddedAssets() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// Stemmer kinds accepted in an asset.
const (
	StemmerNone     = "none"
	StemmerPorter2  = "porter2"
	StemmerSnowball = "snowball"
	StemmerAffix    = "affix"
)

// Asset is the on-disk description of one language.
type Asset struct {
	Code        string      `yaml:"code"`
	Name        string      `yaml:"name"`
	Stemmer     string      `yaml:"stemmer"`
	Snowball    string      `yaml:"snowball"`
	FoldAccents bool        `yaml:"fold_accents"`
	Stopwords   []string    `yaml:"stopwords"`
	Affix       *AffixRules `yaml:"affix"`
}

// ParseAsset decodes and validates a YAML language asset.
func ParseAsset(data []byte) (*Asset, error) {
	var a Asset
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAsset, err)
	}

	a.Code = strings.ToLower(strings.TrimSpace(a.Code))
	if a.Code == "" {
		return nil, fmt.Errorf("%w: missing code", ErrInvalidAsset)
	}
	if a.Code == NoLanguage {
		return nil, fmt.Errorf("%w: code %q is reserved", ErrInvalidAsset, NoLanguage)
	}
	if a.Name == "" {
		a.Name = a.Code
	}
	if a.Stemmer == "" {
		a.Stemmer = StemmerNone
	}

	switch a.Stemmer {
	case StemmerNone, StemmerPorter2:
	case StemmerSnowball:
		if _, err := NewSnowballStemmer(a.Snowball); err != nil {
			return nil, fmt.Errorf("%w: %s: snowball language %q: %v", ErrInvalidAsset, a.Code, a.Snowball, err)
		}
	case StemmerAffix:
		if a.Affix == nil {
			return nil, fmt.Errorf("%w: %s: affix stemmer without rules", ErrInvalidAsset, a.Code)
		}
	default:
		return nil, fmt.Errorf("%w: %s: unknown stemmer %q", ErrInvalidAsset, a.Code, a.Stemmer)
	}
	return &a, nil
}

// LoadAssets reads every *.yaml file at the root of fsys.
func LoadAssets(fsys fs.FS) ([]*Asset, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	var assets []*Asset
	for _, e := range entries {
		if e.IsDir() || (path.Ext(e.Name()) != ".yaml" && path.Ext(e.Name()) != ".yml") {
			continue
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, err
		}
		a, err := ParseAsset(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		assets = append(assets, a)
	}
	return assets, nil
}

// Build constructs the Language described by the asset.
func (a *Asset) Build() (*Language, error) {
	var stemmer port.Stemmer
	switch a.Stemmer {
	case StemmerPorter2:
		stemmer = NewPorter2Stemmer()
	case StemmerSnowball:
		s, err := NewSnowballStemmer(a.Snowball)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAsset, err)
		}
		stemmer = s
	case StemmerAffix:
		stemmer = NewAffixStemmer(*a.Affix)
	default:
		stemmer = NoneStemmer{}
	}

	return &Language{
		Code:      a.Code,
		Name:      a.Name,
		Tokenizer: NewTokenizer(a.FoldAccents),
		Cleaner:   NewLanguageCleaner(NewStopwordFilter(a.Stopwords), stemmer),
		Stemmer:   stemmer,
	}, nil
}

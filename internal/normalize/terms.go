package normalize

import (
	_ "embed"
	"fmt"
	"maps"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	pkgconfig "github.com/starford/doclinks/pkg/config"
)

//go:embed terms.yaml
var defaultTermsYAML []byte

// Category groups terms handled by one normalization pass.
type Category string

// Term categories.
const (
	CategoryFrontMatter Category = "front_matter"
	CategoryAdmonition  Category = "admonition"
)

var categories = []Category{CategoryFrontMatter, CategoryAdmonition}

// Terms is the {locale: {category: terms}} table. Locale term lists are
// positional: the i-th term translates English[category][i].
type Terms struct {
	EmbedPermissions string                           `yaml:"embed_permissions"`
	English          map[Category][]string            `yaml:"english"`
	Locales          map[string]map[Category][]string `yaml:"locales"`
}

// Validate checks that every locale code is a known language and that every
// locale covers each category with the same number of terms as English.
func (t *Terms) Validate() error {
	if err := validation.ValidateStruct(t,
		validation.Field(&t.EmbedPermissions, validation.Required),
		validation.Field(&t.English, validation.Required),
		validation.Field(&t.Locales, validation.Required),
	); err != nil {
		return err
	}
	for _, cat := range categories {
		if len(t.English[cat]) == 0 {
			return fmt.Errorf("terms: english %s is empty", cat)
		}
	}
	for code, byCat := range t.Locales {
		if _, err := language.ParseBase(code); err != nil {
			return fmt.Errorf("terms: locale %q: %w", code, err)
		}
		for _, cat := range categories {
			if got, want := len(byCat[cat]), len(t.English[cat]); got != want {
				return fmt.Errorf("terms: locale %q %s has %d terms, want %d", code, cat, got, want)
			}
		}
	}
	return nil
}

// LocaleCodes returns the configured locales in lexical order.
func (t *Terms) LocaleCodes() []string {
	return slices.Sorted(maps.Keys(t.Locales))
}

// clone deep-copies the table with every term in NFC form, so the caller's
// maps can change without affecting a built Normalizer.
func (t *Terms) clone() Terms {
	out := Terms{
		EmbedPermissions: t.EmbedPermissions,
		English:          make(map[Category][]string, len(t.English)),
		Locales:          make(map[string]map[Category][]string, len(t.Locales)),
	}
	for cat, terms := range t.English {
		out.English[cat] = nfc(terms)
	}
	for code, byCat := range t.Locales {
		m := make(map[Category][]string, len(byCat))
		for cat, terms := range byCat {
			m[cat] = nfc(terms)
		}
		out.Locales[code] = m
	}
	return out
}

func nfc(terms []string) []string {
	out := make([]string, len(terms))
	for i, s := range terms {
		out[i] = norm.NFC.String(s)
	}
	return out
}

// ParseTerms decodes and validates a YAML term table.
func ParseTerms(data []byte) (Terms, error) {
	var t Terms
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Terms{}, fmt.Errorf("terms: parse: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Terms{}, err
	}
	return t, nil
}

// DefaultTerms returns the built-in term table.
func DefaultTerms() Terms {
	t, err := ParseTerms(defaultTermsYAML)
	if err != nil {
		panic(fmt.Sprintf("normalize: embedded terms: %v", err))
	}
	return t
}

// LoadTerms reads a term table from a YAML file.
func LoadTerms(filename string) (Terms, error) {
	var t Terms
	if err := pkgconfig.Load(filename, &t); err != nil {
		return Terms{}, err
	}
	return t, nil
}

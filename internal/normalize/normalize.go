// Package normalize undoes over-eager machine translation of markup that must
// stay English: front-matter keys, admonition keywords and iframe permissions.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

type rule struct {
	re          *regexp.Regexp
	replacement string
}

// Normalizer applies the text-normalization passes. It is immutable once
// built and safe to share.
type Normalizer struct {
	frontMatter []rule
	admonitions []rule
	allowRe     *regexp.Regexp
	permissions string
}

var allowRe = regexp.MustCompile(`allow="([^"]*)"`)

// New compiles the passes for terms. Locales are applied in lexical order.
func New(terms Terms) (*Normalizer, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	t := terms.clone()
	n := &Normalizer{
		allowRe:     allowRe,
		permissions: t.EmbedPermissions,
	}

	fmKeys := t.English[CategoryFrontMatter]
	admKeys := t.English[CategoryAdmonition]
	for _, code := range t.LocaleCodes() {
		for i, term := range t.Locales[code][CategoryFrontMatter] {
			r, err := frontMatterRule(term, fmKeys[i])
			if err != nil {
				return nil, fmt.Errorf("normalize: locale %s: %w", code, err)
			}
			n.frontMatter = append(n.frontMatter, r)
		}
		for i, term := range t.Locales[code][CategoryAdmonition] {
			re, err := regexp.Compile(`(?i)!!! *` + regexp.QuoteMeta(term))
			if err != nil {
				return nil, fmt.Errorf("normalize: locale %s: %w", code, err)
			}
			n.admonitions = append(n.admonitions, rule{re: re, replacement: "!!! " + admKeys[i]})
		}
	}
	return n, nil
}

// Default builds a Normalizer from the embedded term table.
func Default() *Normalizer {
	n, err := New(DefaultTerms())
	if err != nil {
		panic(err)
	}
	return n
}

// frontMatterRule maps a translated key back to English. A translated
// "comments" line becomes "comments: true" whatever its value was.
func frontMatterRule(term, key string) (rule, error) {
	if key == "comments" {
		re, err := regexp.Compile(`(?im)^` + regexp.QuoteMeta(term) + ` *[：:][^\r\n]*`)
		return rule{re: re, replacement: key + ": true"}, err
	}
	re, err := regexp.Compile(`(?im)^` + regexp.QuoteMeta(term) + ` *[：:] *`)
	return rule{re: re, replacement: key + ": "}, err
}

// Apply runs every pass in order: front matter, admonitions, embeds.
func (n *Normalizer) Apply(text string) string {
	text = n.FrontMatter(text)
	text = n.Admonitions(text)
	return n.EmbedPermissions(text)
}

// FrontMatter rewrites translated keys inside the leading front-matter block.
// Text outside the block is untouched.
func (n *Normalizer) FrontMatter(text string) string {
	start, end, ok := frontMatterBounds(text)
	if !ok {
		return text
	}
	block := text[start:end]
	for _, r := range n.frontMatter {
		block = r.re.ReplaceAllLiteralString(block, r.replacement)
	}
	return text[:start] + block + text[end:]
}

// Admonitions rewrites "!!! <translated>" to "!!! <english>".
func (n *Normalizer) Admonitions(text string) string {
	for _, r := range n.admonitions {
		text = r.re.ReplaceAllLiteralString(text, r.replacement)
	}
	return text
}

// EmbedPermissions replaces allow="..." attributes that do not start with the
// canonical permission list.
func (n *Normalizer) EmbedPermissions(text string) string {
	canonical := `allow="` + n.permissions + `"`
	return n.allowRe.ReplaceAllStringFunc(text, func(m string) string {
		value := m[len(`allow="`) : len(m)-1]
		if strings.HasPrefix(value, n.permissions) {
			return m
		}
		return canonical
	})
}

// frontMatterBounds returns the byte range of the YAML between the leading
// "---" delimiters.
func frontMatterBounds(text string) (int, int, bool) {
	const delim = "---"
	start := len(text) - len(strings.TrimLeft(text, "\n\r"))
	if !strings.HasPrefix(text[start:], delim) {
		return 0, 0, false
	}
	bodyStart := start + len(delim)
	idx := strings.Index(text[bodyStart:], "\n"+delim)
	if idx < 0 {
		return 0, 0, false
	}
	return bodyStart, bodyStart + idx + 1, true
}

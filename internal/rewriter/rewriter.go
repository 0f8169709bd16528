// Package rewriter applies link resolution and text normalization to one document.
package rewriter

import (
	"strings"

	"github.com/starford/doclinks/internal/linkmatch"
	"github.com/starford/doclinks/internal/models"
)

// LinkResolver classifies a link found in the document at docPath.
type LinkResolver interface {
	Resolve(link models.Link, docPath, langDir string) models.Resolution
}

// TextNormalizer is a stateless text pass run after link substitution.
type TextNormalizer interface {
	Apply(text string) string
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithLinks toggles link rewriting.
func WithLinks(enabled bool) Option {
	return func(r *Rewriter) {
		r.links = enabled
	}
}

// WithNormalizer enables the text-normalization passes.
func WithNormalizer(n TextNormalizer) Option {
	return func(r *Rewriter) {
		r.normalizer = n
	}
}

// Rewriter computes the new text of a document.
type Rewriter struct {
	resolver   LinkResolver
	normalizer TextNormalizer
	links      bool
}

// New creates a Rewriter. Link rewriting is on and normalization off unless
// configured otherwise.
func New(resolver LinkResolver, opts ...Option) *Rewriter {
	r := &Rewriter{resolver: resolver, links: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rewrite returns the rewritten text of the document at docPath inside
// langDir. Links are matched once against the original text and all
// substitutions are applied in a single pass, so one replacement never shifts
// another.
func (r *Rewriter) Rewrite(text, docPath, langDir string) (string, models.FileReport) {
	report := models.FileReport{Path: docPath}
	out := text

	if r.links {
		var resolved []models.Resolution
		for link := range linkmatch.All(text) {
			res := r.resolver.Resolve(link, docPath, langDir)
			report.Add(res.Outcome)
			if res.Outcome == models.OutcomeRewritten {
				resolved = append(resolved, res)
			}
		}
		out = substitute(text, resolved)
	}

	if r.normalizer != nil {
		out = r.normalizer.Apply(out)
	}

	report.Changed = out != text
	return out, report
}

// substitute replaces each rewritten link span in text. resolved must be in
// document order.
func substitute(text string, resolved []models.Resolution) string {
	if len(resolved) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, res := range resolved {
		b.WriteString(text[last:res.Link.Start])
		b.WriteString(models.Link{Text: res.Link.Text, Target: res.NewTarget}.Raw())
		last = res.Link.End
	}
	b.WriteString(text[last:])
	return b.String()
}

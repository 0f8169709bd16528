// Package walker runs rewrite passes over the language subtrees of a document tree.
package walker

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/starford/doclinks/internal/apperr"
	"github.com/starford/doclinks/internal/models"
	"github.com/starford/doclinks/internal/storage"
)

// languageRe matches two-character locale directory names.
var languageRe = regexp.MustCompile(`^[\p{L}\p{Nd}_]{2}$`)

// DocumentRewriter computes the new text of one document.
type DocumentRewriter interface {
	Rewrite(text, docPath, langDir string) (string, models.FileReport)
}

// Walker enumerates language subtrees and rewrites their markdown files one
// at a time. Every file is read, rewritten and written back before the next.
type Walker struct {
	store     storage.Provider
	rewriter  DocumentRewriter
	reference string
	dryRun    bool
	logger    *slog.Logger
}

// Option configures a Walker.
type Option func(*Walker)

// WithDryRun computes rewrites without writing files.
func WithDryRun(enabled bool) Option {
	return func(w *Walker) {
		w.dryRun = enabled
	}
}

// WithLogger sets the walker's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Walker) {
		w.logger = logger
	}
}

// New creates a Walker over store whose reference subtree is named reference.
func New(store storage.Provider, rw DocumentRewriter, reference string, opts ...Option) *Walker {
	w := &Walker{
		store:     store,
		rewriter:  rw,
		reference: reference,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Reference returns the reference subtree name.
func (w *Walker) Reference() string {
	return w.reference
}

// Languages returns the language subtrees under the root in lexical order.
func (w *Walker) Languages() ([]string, error) {
	if !w.store.Exists(w.reference) {
		return nil, fmt.Errorf("walker: %w: %s", apperr.ErrNoReference, w.reference)
	}
	dirs, err := w.store.Dirs()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, d := range dirs {
		if d != w.reference && languageRe.MatchString(d) {
			out = append(out, d)
		}
	}
	return out, nil
}

// LanguageOf returns the language subtree a root-relative path belongs to.
func (w *Walker) LanguageOf(p string) (string, bool) {
	first, _, found := strings.Cut(p, "/")
	if !found || first == w.reference || !languageRe.MatchString(first) {
		return "", false
	}
	return first, true
}

// Run processes every language subtree. The first I/O failure stops the run.
func (w *Walker) Run() (models.Summary, error) {
	var summary models.Summary
	langs, err := w.Languages()
	if err != nil {
		return summary, err
	}
	summary.Languages = langs

	for _, lang := range langs {
		if err := w.processLanguage(lang, &summary); err != nil {
			return summary, err
		}
	}

	w.logger.Info("walker: run complete",
		slog.Int("languages", len(summary.Languages)),
		slog.Int("files", summary.Files),
		slog.Int("files_changed", summary.FilesChanged),
		slog.Int("links_unchanged", summary.Unchanged),
		slog.Int("links_rewritten", summary.Rewritten),
		slog.Int("links_broken", summary.Broken),
		slog.Bool("dry_run", w.dryRun))
	return summary, nil
}

func (w *Walker) processLanguage(lang string, summary *models.Summary) error {
	w.logger.Info("walker: processing language directory", slog.String("language", lang))
	files, err := w.store.List(lang)
	if err != nil {
		return err
	}
	for _, f := range files {
		report, err := w.ProcessFile(f, lang)
		if err != nil {
			return err
		}
		summary.Merge(report)
	}
	return nil
}

// ProcessFile runs one rewrite pass over the document at p. The file is
// written back only when its text changed.
func (w *Walker) ProcessFile(p, lang string) (models.FileReport, error) {
	w.logger.Debug("walker: processing file", slog.String("path", p))

	text, err := w.store.Read(p)
	if err != nil {
		return models.FileReport{Path: p}, fmt.Errorf("walker: %w", err)
	}
	out, report := w.rewriter.Rewrite(text, p, lang)
	if !report.Changed || w.dryRun {
		return report, nil
	}
	if err := w.store.Write(p, out); err != nil {
		return report, fmt.Errorf("walker: %w", err)
	}
	w.logger.Debug("walker: wrote file", slog.String("path", p))
	return report, nil
}

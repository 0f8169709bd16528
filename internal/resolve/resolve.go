// Package resolve decides whether a markdown link target exists in its own
// language subtree and, when it does not, redirects it to the reference subtree.
package resolve

import (
	"log/slog"
	"path"
	"strings"

	"github.com/starford/doclinks/internal/models"
	"github.com/starford/doclinks/internal/storage"
)

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the diagnostics sink.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithAbsoluteLinks makes rewritten links root-relative ("/install.md")
// instead of walking up with "../". This mode has not been verified against
// a published site and is off unless requested.
func WithAbsoluteLinks(enabled bool) Option {
	return func(r *Resolver) {
		r.absolute = enabled
	}
}

// Resolver resolves links against a document tree. Paths are slash-separated
// and relative to the tree root.
type Resolver struct {
	store     storage.Exister
	reference string
	absolute  bool
	logger    *slog.Logger
}

// New creates a Resolver for a tree whose reference subtree is named reference.
func New(store storage.Exister, reference string, opts ...Option) *Resolver {
	r := &Resolver{
		store:     store,
		reference: reference,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve classifies link, found in the document at docPath inside the
// language subtree langDir. A missing target is never an error: it yields
// OutcomeBroken and a warning.
func (r *Resolver) Resolve(link models.Link, docPath, langDir string) models.Resolution {
	res := models.Resolution{Link: link, Outcome: models.OutcomeBroken}
	docDir := path.Dir(docPath)

	target := link.Target
	if !path.IsAbs(target) {
		target = path.Join(docDir, target)
	}
	target = withMarkdownExt(target)
	if escapesRoot(target) {
		r.warnBroken(link, docPath)
		return res
	}

	if r.store.Exists(target) {
		res.Outcome = models.OutcomeUnchanged
		res.Path = target
		return res
	}

	rel, inLang := within(target, langDir)
	if !inLang {
		// Links written against the shared top-level namespace land at the
		// root; the reference subtree backs that namespace.
		shared := path.Join(r.reference, target)
		if firstSegment(target) != r.reference && r.store.Exists(shared) {
			res.Outcome = models.OutcomeUnchanged
			res.Path = shared
			return res
		}
		r.warnBroken(link, docPath)
		return res
	}

	candidate := path.Join(r.reference, rel)
	if !r.store.Exists(candidate) {
		r.warnBroken(link, docPath)
		return res
	}

	res.Outcome = models.OutcomeRewritten
	res.Path = candidate
	if r.absolute {
		res.NewTarget = "/" + StripReference(candidate, r.reference)
	} else {
		res.NewTarget = RelativeLink(docDir, candidate, r.reference)
	}

	r.logger.Info("rewrite: redirected link",
		slog.String("text", link.Text),
		slog.String("from", link.Raw()),
		slog.String("to", models.Link{Text: link.Text, Target: res.NewTarget}.Raw()),
		slog.String("document", docPath))
	return res
}

func (r *Resolver) warnBroken(link models.Link, docPath string) {
	r.logger.Warn("rewrite: broken link",
		slog.String("text", link.Text),
		slog.String("target", link.Target),
		slog.String("document", docPath),
		slog.String("reference", r.reference))
}

// RelativeLink builds the link from a document directory to a root-relative
// candidate: one "../" per directory level of docDir, then the candidate with
// the reference segment stripped.
func RelativeLink(docDir, candidate, reference string) string {
	prefix := strings.Repeat("../", depth(docDir))
	return StripReference(prefix+candidate, reference)
}

// StripReference removes the first path segment equal to reference, unless
// that segment is the last one. Later occurrences are left alone.
func StripReference(p, reference string) string {
	segs := strings.Split(p, "/")
	for i := 0; i < len(segs)-1; i++ {
		if segs[i] == reference {
			return strings.Join(append(segs[:i:i], segs[i+1:]...), "/")
		}
	}
	return p
}

func depth(dir string) int {
	if dir == "" || dir == "." {
		return 0
	}
	return len(strings.Split(dir, "/"))
}

func withMarkdownExt(p string) string {
	if strings.HasSuffix(p, storage.MarkdownExt) {
		return p
	}
	return p + storage.MarkdownExt
}

func escapesRoot(p string) bool {
	return p == "." || p == ".." || strings.HasPrefix(p, "../") || path.IsAbs(p)
}

// within returns p relative to dir when p lies inside dir.
func within(p, dir string) (string, bool) {
	prefix := dir + "/"
	if !strings.HasPrefix(p, prefix) {
		return "", false
	}
	return p[len(prefix):], true
}

func firstSegment(p string) string {
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return p
}

package resolve

import (
	"bytes"
	"log/slog"
	"path"
	"strings"
	"testing"

	"github.com/starford/doclinks/internal/models"
)

type memTree map[string]struct{}

func newMemTree(files ...string) memTree {
	m := memTree{}
	for _, f := range files {
		for p := f; p != "." && p != ""; p = path.Dir(p) {
			m[p] = struct{}{}
		}
	}
	return m
}

func (m memTree) Exists(p string) bool {
	_, ok := m[p]
	return ok
}

func testResolver(tree memTree, opts ...Option) (*Resolver, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(tree, "en", append([]Option{WithLogger(logger)}, opts...)...), &buf
}

// published resolves target from docDir the way a rendered site does: a path
// landing at the root level is served by the reference subtree.
func published(docDir, target, reference string) string {
	p := path.Join(docDir, target)
	if first, _, _ := strings.Cut(p, "/"); first != reference && len(first) != 2 {
		return path.Join(reference, p)
	}
	return p
}

func TestResolve_Unchanged(t *testing.T) {
	tree := newMemTree("fr/install.md", "en/install.md")
	r, buf := testResolver(tree)

	link := models.Link{Text: "Setup", Target: "../install.md"}
	res := r.Resolve(link, "fr/guides/start.md", "fr")
	if res.Outcome != models.OutcomeUnchanged {
		t.Fatalf("outcome = %v, want unchanged", res.Outcome)
	}
	if res.NewTarget != "" {
		t.Errorf("new target = %q, want empty", res.NewTarget)
	}
	if res.Path != "fr/install.md" {
		t.Errorf("path = %q", res.Path)
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected diagnostics: %s", buf.String())
	}
}

func TestResolve_RewrittenToReference(t *testing.T) {
	tree := newMemTree("fr/guides/start.md", "en/install.md")
	r, buf := testResolver(tree)

	link := models.Link{Text: "Setup", Target: "../install.md"}
	res := r.Resolve(link, "fr/guides/start.md", "fr")
	if res.Outcome != models.OutcomeRewritten {
		t.Fatalf("outcome = %v, want rewritten", res.Outcome)
	}
	if res.NewTarget != "../../install.md" {
		t.Errorf("new target = %q, want %q", res.NewTarget, "../../install.md")
	}
	if got := published("fr/guides", res.NewTarget, "en"); got != "en/install.md" {
		t.Errorf("published target = %q, want en/install.md", got)
	}
	for _, seg := range strings.Split(res.NewTarget, "/") {
		if seg == "en" {
			t.Errorf("reference segment visible in %q", res.NewTarget)
		}
	}
	out := buf.String()
	for _, want := range []string{"redirected link", "Setup", "../install.md", "../../install.md", "fr/guides/start.md"} {
		if !strings.Contains(out, want) {
			t.Errorf("diagnostic missing %q: %s", want, out)
		}
	}
}

func TestResolve_RewrittenVaryingDepth(t *testing.T) {
	tree := newMemTree("en/a.md", "en/x/y/b.md")
	r, _ := testResolver(tree)

	cases := []struct {
		doc, target, want string
	}{
		{"fr/index.md", "a.md", "../a.md"},
		{"fr/x/index.md", "../a.md", "../../a.md"},
		{"fr/x/index.md", "y/b.md", "../../x/y/b.md"},
		{"fr/x/y/z/deep.md", "../b.md", "../../../../x/y/b.md"},
	}
	for _, c := range cases {
		res := r.Resolve(models.Link{Text: "t", Target: c.target}, c.doc, "fr")
		if res.Outcome != models.OutcomeRewritten {
			t.Errorf("%s -> %s: outcome = %v", c.doc, c.target, res.Outcome)
			continue
		}
		if res.NewTarget != c.want {
			t.Errorf("%s -> %s: new target = %q, want %q", c.doc, c.target, res.NewTarget, c.want)
		}
		if got := published(path.Dir(c.doc), res.NewTarget, "en"); got != res.Path {
			t.Errorf("%s: published %q, want %q", c.doc, got, res.Path)
		}
	}
}

func TestResolve_Broken(t *testing.T) {
	tree := newMemTree("fr/guides/start.md", "en/install.md")
	r, buf := testResolver(tree)

	link := models.Link{Text: "API", Target: "../api/missing.md"}
	res := r.Resolve(link, "fr/guides/start.md", "fr")
	if res.Outcome != models.OutcomeBroken {
		t.Fatalf("outcome = %v, want broken", res.Outcome)
	}
	if res.NewTarget != "" || res.Path != "" {
		t.Errorf("broken resolution carries target: %+v", res)
	}
	if n := strings.Count(buf.String(), "broken link"); n != 1 {
		t.Errorf("diagnostics = %d, want 1: %s", n, buf.String())
	}
	if !strings.Contains(buf.String(), "API") {
		t.Errorf("diagnostic missing display text: %s", buf.String())
	}
}

func TestResolve_SharedNamespaceIsUnchanged(t *testing.T) {
	tree := newMemTree("en/install.md")
	r, _ := testResolver(tree)

	// Output of an earlier rewrite pass.
	res := r.Resolve(models.Link{Text: "Setup", Target: "../../install.md"}, "fr/guides/start.md", "fr")
	if res.Outcome != models.OutcomeUnchanged {
		t.Fatalf("outcome = %v, want unchanged", res.Outcome)
	}
	if res.Path != "en/install.md" {
		t.Errorf("path = %q", res.Path)
	}
}

// A reference directory named like a language makes rewriting ambiguous:
// the rewritten link reads as a language-relative link on the next pass.
func TestResolve_LanguageNamedReferenceDir(t *testing.T) {
	tree := newMemTree("en/fr/x.md", "en/x.md")
	r, _ := testResolver(tree)

	first := r.Resolve(models.Link{Text: "N", Target: "fr/x.md"}, "fr/index.md", "fr")
	if first.Outcome != models.OutcomeRewritten || first.NewTarget != "../fr/x.md" {
		t.Fatalf("first pass = %v %q, want rewritten ../fr/x.md", first.Outcome, first.NewTarget)
	}
	if first.Path != "en/fr/x.md" {
		t.Errorf("first pass path = %q, want en/fr/x.md", first.Path)
	}

	second := r.Resolve(models.Link{Text: "N", Target: first.NewTarget}, "fr/index.md", "fr")
	if second.Outcome != models.OutcomeRewritten || second.NewTarget != "../x.md" {
		t.Fatalf("second pass = %v %q, want rewritten ../x.md", second.Outcome, second.NewTarget)
	}
	if second.Path != "en/x.md" {
		t.Errorf("second pass path = %q, want en/x.md", second.Path)
	}
}

func TestResolve_EscapingRootIsBroken(t *testing.T) {
	tree := newMemTree("en/install.md")
	r, _ := testResolver(tree)

	for _, target := range []string{"../../../install.md", "/install.md"} {
		res := r.Resolve(models.Link{Text: "x", Target: target}, "fr/guides/start.md", "fr")
		if res.Outcome != models.OutcomeBroken {
			t.Errorf("%s: outcome = %v, want broken", target, res.Outcome)
		}
	}
}

func TestResolve_ReferenceLinkMissing(t *testing.T) {
	tree := newMemTree("en/install.md")
	r, _ := testResolver(tree)

	res := r.Resolve(models.Link{Text: "x", Target: "../en/gone.md"}, "fr/start.md", "fr")
	if res.Outcome != models.OutcomeBroken {
		t.Errorf("outcome = %v, want broken", res.Outcome)
	}
}

func TestResolve_AbsoluteLinks(t *testing.T) {
	tree := newMemTree("en/guides/install.md")
	r, _ := testResolver(tree, WithAbsoluteLinks(true))

	res := r.Resolve(models.Link{Text: "x", Target: "install.md"}, "fr/guides/start.md", "fr")
	if res.Outcome != models.OutcomeRewritten {
		t.Fatalf("outcome = %v", res.Outcome)
	}
	if res.NewTarget != "/guides/install.md" {
		t.Errorf("new target = %q", res.NewTarget)
	}
}

func TestStripReference(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"../en/install.md", "../install.md"},
		{"../../en/guides/install.md", "../../guides/install.md"},
		{"../../../en/a/b/c.md", "../../../a/b/c.md"},
		{"../en/guides/en/page.md", "../guides/en/page.md"},
		{"../guides/en", "../guides/en"},
		{"../guides/en.md", "../guides/en.md"},
		{"../english/x.md", "../english/x.md"},
		{"en/x.md", "x.md"},
		{"x.md", "x.md"},
	}
	for _, c := range cases {
		if got := StripReference(c.in, "en"); got != c.want {
			t.Errorf("StripReference(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRelativeLink(t *testing.T) {
	cases := []struct {
		dir, candidate, want string
	}{
		{"fr", "en/a.md", "../a.md"},
		{"fr/guides", "en/install.md", "../../install.md"},
		{"fr/a/b/c", "en/a/x.md", "../../../../a/x.md"},
	}
	for _, c := range cases {
		if got := RelativeLink(c.dir, c.candidate, "en"); got != c.want {
			t.Errorf("RelativeLink(%q, %q) = %q, want %q", c.dir, c.candidate, got, c.want)
		}
	}
}

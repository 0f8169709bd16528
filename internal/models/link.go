// Package models defines the domain types shared by the link engine.
package models

// Outcome is the terminal classification of a single link after resolution.
type Outcome int

const (
	// OutcomeUnchanged means the target exists where the link points.
	OutcomeUnchanged Outcome = iota
	// OutcomeRewritten means the target was missing locally but found in the
	// reference subtree; the link gets a new target.
	OutcomeRewritten
	// OutcomeBroken means the target exists in neither subtree.
	OutcomeBroken
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeRewritten:
		return "rewritten"
	case OutcomeBroken:
		return "broken"
	}
	return "unknown"
}

// Link is one inline markdown link found in a document.
type Link struct {
	Text   string // display text, kept verbatim
	Target string // raw target path as written, ending in .md
	Start  int    // byte offset of '[' in the document
	End    int    // byte offset just past ')'
}

// Resolution is the result of resolving one link.
type Resolution struct {
	Link    Link
	Outcome Outcome
	// NewTarget is set only for OutcomeRewritten.
	NewTarget string
	// Path is the root-relative file the link reaches; empty when broken.
	Path string
}

// Raw renders the link as it appears in the source text.
func (l Link) Raw() string {
	return "[" + l.Text + "](" + l.Target + ")"
}

// FileReport summarises one rewrite pass over a single document.
type FileReport struct {
	Path      string
	Unchanged int
	Rewritten int
	Broken    int
	Changed   bool
}

// Add counts a resolution outcome.
func (r *FileReport) Add(o Outcome) {
	switch o {
	case OutcomeUnchanged:
		r.Unchanged++
	case OutcomeRewritten:
		r.Rewritten++
	case OutcomeBroken:
		r.Broken++
	}
}

// Summary aggregates file reports over a whole run.
type Summary struct {
	Languages    []string
	Files        int
	FilesChanged int
	Unchanged    int
	Rewritten    int
	Broken       int
}

// Merge folds a file report into the summary.
func (s *Summary) Merge(r FileReport) {
	s.Files++
	if r.Changed {
		s.FilesChanged++
	}
	s.Unchanged += r.Unchanged
	s.Rewritten += r.Rewritten
	s.Broken += r.Broken
}

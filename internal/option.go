package internal

import "io"

// Mode selects what Run does with the document tree.
type Mode string

// Run modes.
const (
	// ModeFix rewrites every language document once.
	ModeFix Mode = "fix"
	// ModeCheck computes rewrites without writing and fails if any are pending.
	ModeCheck Mode = "check"
	// ModeWatch runs a fix pass, then keeps rewriting as files change.
	ModeWatch Mode = "watch"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	mode      Mode
	logOutput io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithMode sets the run mode. The default is ModeFix.
func WithMode(mode Mode) Option {
	return func(a *application) {
		a.mode = mode
	}
}

// WithLogOutput redirects log and diagnostic output. The default is stdout.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}

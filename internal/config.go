package internal

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

var dirNameRe = regexp.MustCompile(`^[^/\\.][^/\\]*$`)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Docs    DocsConfig        `yaml:"docs"`
	Rewrite RewriteConfig     `yaml:"rewrite"`
	Terms   TermsConfig       `yaml:"terms"`
	Watch   WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Docs.Validate(); err != nil {
		return fmt.Errorf("docs: %w", err)
	}
	if err := c.Watch.Validate(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.Required, validation.In(LogFormatText, LogFormatJSON)),
	)
}

// DocsConfig locates the document tree.
type DocsConfig struct {
	// Root is the directory holding the reference and language subtrees.
	Root string `yaml:"root"`
	// Reference is the name of the canonical subtree.
	Reference string `yaml:"reference"`
}

// Validate validates the docs configuration.
func (c *DocsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.Reference, validation.Required, validation.Match(dirNameRe)),
	)
}

// RewriteConfig toggles the passes run over each document.
type RewriteConfig struct {
	Links bool `yaml:"links"`
	Text  bool `yaml:"text"`
	// AbsoluteLinks emits root-relative links. Unverified; off by default.
	AbsoluteLinks bool `yaml:"absolute_links"`
	DryRun        bool `yaml:"dry_run"`
}

// TermsConfig points at an optional term table replacing the built-in one.
type TermsConfig struct {
	File string `yaml:"file"`
}

// WatchConfig holds watch-mode settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Required, validation.Min(10*time.Millisecond)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatText,
		},
		Docs: DocsConfig{
			Root:      "./docs",
			Reference: "en",
		},
		Rewrite: RewriteConfig{
			Links: true,
			Text:  true,
		},
		Watch: WatchConfig{
			Debounce: 250 * time.Millisecond,
		},
	}
}

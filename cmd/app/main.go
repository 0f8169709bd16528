package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/doclinks/internal"
	pkgconfig "github.com/starford/doclinks/pkg/config"
)

const defaultConfigFile = "doclinks.yaml"

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to config file",
			DefaultText: defaultConfigFile,
			Value:       defaultConfigFile,
			Sources:     cli.EnvVars("DOCLINKS_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "root",
			Aliases: []string{"r"},
			Usage:   "Documentation root holding the reference and language directories",
			Sources: cli.EnvVars("DOCLINKS_ROOT"),
		},
		&cli.StringFlag{
			Name:    "reference",
			Usage:   "Name of the reference directory",
			Sources: cli.EnvVars("DOCLINKS_REFERENCE"),
		},
		&cli.BoolFlag{
			Name:  "links",
			Usage: "Redirect links to files missing from a language directory",
			Value: true,
		},
		&cli.BoolFlag{
			Name:  "text",
			Usage: "Restore English front-matter keys, admonitions and embed permissions",
			Value: true,
		},
		&cli.BoolFlag{
			Name:  "absolute-links",
			Usage: "Emit root-relative links (unverified)",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.EnvVars("DOCLINKS_LOG_LEVEL"),
		},
	}
}

// loadConfig builds the configuration from defaults, the config file and
// flags, in increasing priority.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	configPath := cmd.String("config")

	load := pkgconfig.LoadOptional[internal.Config]
	if cmd.IsSet("config") {
		load = pkgconfig.Load[internal.Config]
	}
	if err := load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if root := cmd.Args().First(); root != "" {
		cfg.Docs.Root = root
	}
	if cmd.IsSet("root") {
		cfg.Docs.Root = cmd.String("root")
	}
	if cmd.IsSet("reference") {
		cfg.Docs.Reference = cmd.String("reference")
	}
	if cmd.IsSet("links") {
		cfg.Rewrite.Links = cmd.Bool("links")
	}
	if cmd.IsSet("text") {
		cfg.Rewrite.Text = cmd.Bool("text")
	}
	if cmd.IsSet("absolute-links") {
		cfg.Rewrite.AbsoluteLinks = cmd.Bool("absolute-links")
	}
	if cmd.IsSet("log-level") {
		if err := cfg.App.LogLevel.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func action(mode internal.Mode) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		opts := []internal.Option{
			internal.WithConfig(cfg),
			internal.WithMode(mode),
		}

		if err := internal.Run(ctx, opts...); err != nil {
			return fmt.Errorf("app run error: %w", err)
		}
		return nil
	}
}

func main() {
	cmd := &cli.Command{
		Name:      "doclinks",
		Usage:     "Keep translated documentation trees linked to their reference tree",
		ArgsUsage: "[docs-root]",
		Action:    action(internal.ModeFix),
		Flags:     flags(),
		Commands: []*cli.Command{
			{
				Name:      "fix",
				Usage:     "Rewrite links and normalize text in every language directory",
				ArgsUsage: "[docs-root]",
				Action:    action(internal.ModeFix),
				Flags:     flags(),
			},
			{
				Name:      "check",
				Usage:     "Report pending rewrites without writing; fails if any file would change",
				ArgsUsage: "[docs-root]",
				Action:    action(internal.ModeCheck),
				Flags:     flags(),
			},
			{
				Name:      "watch",
				Usage:     "Fix once, then keep fixing as files change",
				ArgsUsage: "[docs-root]",
				Action:    action(internal.ModeWatch),
				Flags:     flags(),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

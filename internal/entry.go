// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/doclinks/internal/apperr"
	"github.com/starford/doclinks/internal/normalize"
	"github.com/starford/doclinks/internal/resolve"
	"github.com/starford/doclinks/internal/rewriter"
	"github.com/starford/doclinks/internal/storage"
	"github.com/starford/doclinks/internal/walker"
	"github.com/starford/doclinks/internal/watcher"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{
		mode:      ModeFix,
		logOutput: os.Stdout,
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := newLogger(app.logOutput, cfg.App)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("mode", string(app.mode)),
		slog.String("docs_root", cfg.Docs.Root),
		slog.String("reference", cfg.Docs.Reference),
		slog.Bool("links", cfg.Rewrite.Links),
		slog.Bool("text", cfg.Rewrite.Text),
		slog.Bool("absolute_links", cfg.Rewrite.AbsoluteLinks),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.NewFS(cfg.Docs.Root)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	w, err := buildWalker(cfg, app.mode, store, logger)
	if err != nil {
		return err
	}

	summary, err := w.Run()
	if err != nil {
		return fmt.Errorf("rewrite pass: %w", err)
	}

	switch app.mode {
	case ModeCheck:
		if summary.FilesChanged > 0 {
			return fmt.Errorf("%w: %d of %d files", apperr.ErrChangesPending, summary.FilesChanged, summary.Files)
		}
		return nil
	case ModeWatch:
		return watch(ctx, cfg, store, w, logger)
	}
	return nil
}

func newLogger(out io.Writer, cfg ApplicationConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

// buildWalker wires resolver, normalizer and rewriter for one run.
func buildWalker(cfg *Config, mode Mode, store *storage.FS, logger *slog.Logger) (*walker.Walker, error) {
	rwOpts := []rewriter.Option{rewriter.WithLinks(cfg.Rewrite.Links)}
	if cfg.Rewrite.Text {
		terms := normalize.DefaultTerms()
		if cfg.Terms.File != "" {
			loaded, err := normalize.LoadTerms(cfg.Terms.File)
			if err != nil {
				return nil, fmt.Errorf("load terms: %w", err)
			}
			terms = loaded
		}
		n, err := normalize.New(terms)
		if err != nil {
			return nil, fmt.Errorf("build normalizer: %w", err)
		}
		rwOpts = append(rwOpts, rewriter.WithNormalizer(n))
	}

	res := resolve.New(store, cfg.Docs.Reference,
		resolve.WithLogger(logger),
		resolve.WithAbsoluteLinks(cfg.Rewrite.AbsoluteLinks))

	return walker.New(store, rewriter.New(res, rwOpts...), cfg.Docs.Reference,
		walker.WithLogger(logger),
		walker.WithDryRun(cfg.Rewrite.DryRun || mode == ModeCheck)), nil
}

// watch keeps the tree consistent until ctx is cancelled or a signal arrives.
func watch(ctx context.Context, cfg *Config, store *storage.FS, w *walker.Walker, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return watcher.Watch(gCtx, w, store.Root(), cfg.Watch.Debounce, logger, nil)
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
			logger.Info("Context cancelled, stopping watcher")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Watcher error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Watcher stopped successfully")
	return nil
}

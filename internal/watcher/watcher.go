// Package watcher re-runs rewrite passes when files in a document tree change.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/doclinks/internal/checksum"
	"github.com/starford/doclinks/internal/models"
	"github.com/starford/doclinks/internal/storage"
)

// Event kinds passed to EventCallback.
const (
	EventFile = "file" // one language document was processed
	EventPass = "pass" // a full pass over all language subtrees finished
)

// EventCallback is called after each watcher-driven pass.
type EventCallback func(kind string, path string)

// Processor runs rewrite passes; *walker.Walker satisfies it.
type Processor interface {
	Reference() string
	LanguageOf(p string) (string, bool)
	ProcessFile(p, lang string) (models.FileReport, error)
	Run() (models.Summary, error)
}

// Watch starts an fsnotify watcher on root and processes change events until
// ctx is cancelled. A changed language document is rewritten on its own; a
// file appearing in or leaving the reference subtree schedules a debounced
// full pass, since it can turn broken links into redirectable ones.
func Watch(ctx context.Context, proc Processor, root string, debounce time.Duration, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	s := &session{
		proc:   proc,
		root:   root,
		logger: logger,
		cb:     cb,
		seen:   make(map[string]string),
	}

	var passTimer *time.Timer
	var passCh <-chan time.Time

	schedulePass := func() {
		if passTimer == nil {
			passTimer = time.NewTimer(debounce)
			passCh = passTimer.C
		} else {
			passTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if passTimer != nil {
				passTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-passCh:
			s.fullPass()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			inReference := rel == proc.Reference() || strings.HasPrefix(rel, proc.Reference()+"/")

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", rel),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", rel))
					}
					if inReference {
						schedulePass()
					} else {
						s.processDir(ev.Name)
					}
					continue
				}
			}

			if !strings.HasSuffix(rel, storage.MarkdownExt) {
				continue
			}

			if inReference {
				if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					schedulePass()
				}
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				s.processFile(rel)
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(s.seen, rel)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// session holds per-watch state. It is only touched from the event loop.
type session struct {
	proc   Processor
	root   string
	logger *slog.Logger
	cb     EventCallback
	// seen maps a document to the checksum of its text after the last pass,
	// so the write event caused by our own rewrite is skipped.
	seen map[string]string
}

func (s *session) processFile(rel string) {
	lang, ok := s.proc.LanguageOf(rel)
	if !ok {
		return
	}
	abs := filepath.Join(s.root, filepath.FromSlash(rel))
	sum, err := checksum.File(abs)
	if err != nil {
		// Removed between the event and now.
		return
	}
	if s.seen[rel] == sum {
		return
	}

	report, err := s.proc.ProcessFile(rel, lang)
	if err != nil {
		s.logger.Error("watcher: rewrite failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if sum, err := checksum.File(abs); err == nil {
		s.seen[rel] = sum
	}
	s.logger.Debug("watcher: processed",
		slog.String("path", rel),
		slog.Int("rewritten", report.Rewritten),
		slog.Int("broken", report.Broken))
	if s.cb != nil {
		s.cb(EventFile, rel)
	}
}

func (s *session) processDir(dir string) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(p, storage.MarkdownExt) {
			return nil
		}
		rel, relErr := filepath.Rel(s.root, p)
		if relErr != nil {
			return nil
		}
		s.processFile(filepath.ToSlash(rel))
		return nil
	})
}

func (s *session) fullPass() {
	summary, err := s.proc.Run()
	if err != nil {
		s.logger.Error("watcher: full pass failed", slog.String("error", err.Error()))
		return
	}
	// Checksums from before the pass are stale for rewritten files.
	clear(s.seen)
	s.logger.Debug("watcher: full pass done", slog.Int("files_changed", summary.FilesChanged))
	if s.cb != nil {
		s.cb(EventPass, "")
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

// Package watch reports media files that appear in a directory once they
// stop changing.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultExtensions are the inputs picked up when none are configured.
var DefaultExtensions = []string{
	".avi", ".flv", ".m4v", ".mkv", ".mov", ".mp4", ".mpeg", ".mpg", ".ogv", ".ts", ".vob", ".webm", ".wmv",
}

// Watcher watches a single directory, not recursively.
type Watcher struct {
	dir    string
	exts   map[string]bool
	settle time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithExtensions replaces the accepted file extensions.
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) {
		w.exts = make(map[string]bool, len(exts))
		for _, e := range exts {
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			w.exts[strings.ToLower(e)] = true
		}
	}
}

// WithSettle sets how long a file must be quiet before it is reported.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// New returns a Watcher for dir.
func New(dir string, opts ...Option) *Watcher {
	w := &Watcher{dir: dir, settle: 2 * time.Second}
	WithExtensions(DefaultExtensions...)(w)
	for _, o := range opts {
		o(w)
	}
	return w
}

// minTick bounds how often pending files are checked.
const minTick = time.Millisecond

func (w *Watcher) tick() time.Duration {
	return max(w.settle/4, minTick)
}

// Accepts reports whether path has one of the watched extensions.
func (w *Watcher) Accepts(path string) bool {
	return w.exts[strings.ToLower(filepath.Ext(path))]
}

// Run calls handle for each settled file until ctx is done. handle runs on
// the watching goroutine, so events queue up while it works.
func (w *Watcher) Run(ctx context.Context, handle func(ctx context.Context, path string)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return err
	}
	slog.Info("watching", "dir", w.dir, "settle", w.settle)

	pending := make(map[string]time.Time)
	tick := time.NewTicker(w.tick())
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			switch {
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				delete(pending, ev.Name)
			case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
				if w.Accepts(ev.Name) {
					pending[ev.Name] = time.Now()
				}
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "dir", w.dir, "err", err)
		case now := <-tick.C:
			for path, last := range pending {
				if now.Sub(last) < w.settle {
					continue
				}
				delete(pending, path)
				handle(ctx, path)
				if ctx.Err() != nil {
					return nil
				}
			}
		}
	}
}

package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sandroweb/html-template-project/internal/events"
	ferrors "github.com/sandroweb/html-template-project/internal/foundation/errors"
	"github.com/sandroweb/html-template-project/internal/logfields"
)

// listener publishes FileTouched for changes below the watched directories.
type listener struct {
	root    string
	bus     *events.Bus
	logger  *slog.Logger
	watcher *fsnotify.Watcher
}

// newListener watches every directory below each of dirs recursively and
// each of files' parent directories. All paths are relative to root.
func newListener(root string, dirs, files []string, bus *events.Bus, logger *slog.Logger) (*listener, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.WatchError("create file watcher").WithCause(err).Build()
	}
	l := &listener{root: root, bus: bus, logger: logger, watcher: w}
	for _, d := range dirs {
		if err := l.addRecursive(filepath.Join(root, d)); err != nil {
			_ = w.Close()
			return nil, err
		}
	}
	for _, f := range files {
		dir := filepath.Dir(filepath.Join(root, f))
		if err := w.Add(dir); err != nil {
			logger.Warn("Watch add failed", logfields.Path(dir), logfields.Error(err))
		}
	}
	return l, nil
}

func (l *listener) close() error { return l.watcher.Close() }

func (l *listener) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			l.handle(ctx, ev)
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.logger.Warn("File watcher error", logfields.Error(err))
		}
	}
}

func (l *listener) handle(ctx context.Context, ev fsnotify.Event) {
	if shouldIgnoreEvent(ev.Name) || ev.Op == fsnotify.Chmod {
		return
	}
	if ev.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = l.addRecursive(ev.Name)
		}
	}
	rel, err := filepath.Rel(l.root, ev.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	l.logger.Debug("File change detected", logfields.Path(rel), slog.String("op", ev.Op.String()))
	if err := l.bus.Publish(ctx, events.FileTouched{Path: rel, Op: ev.Op.String(), At: time.Now()}); err != nil {
		l.logger.Debug("File change dropped", logfields.Path(rel), logfields.Error(err))
	}
}

func (l *listener) addRecursive(root string) error {
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return ferrors.WatchError("stat watch root").WithCause(err).WithContext("path", root).Build()
	}
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := l.watcher.Add(p); err != nil {
				l.logger.Warn("Watch add failed", logfields.Path(p), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent reports editor swap files and other noise.
func shouldIgnoreEvent(p string) bool {
	base := filepath.Base(p)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db":
		return true
	}
	return false
}

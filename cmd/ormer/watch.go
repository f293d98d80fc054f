package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hlop3z/ormer/internal/alerr"
)

// watchDebounce collapses the burst of events an editor save produces.
const watchDebounce = 150 * time.Millisecond

// watchFiles calls run once, then again after every change to one of paths,
// until ctx is cancelled. Parent directories are watched so that editors
// replacing a file through a rename are noticed too.
func watchFiles(ctx context.Context, paths []string, run func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return alerr.Wrap(alerr.ErrDocumentRead, err, "file watcher failed")
	}
	defer watcher.Close()

	watched := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return alerr.Wrap(alerr.ErrDocumentRead, err, "failed to resolve path").WithFile(p)
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return alerr.Wrap(alerr.ErrDocumentRead, err, "failed to watch directory").With("path", dir)
		}
	}

	run()

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			slog.Debug("watch: change", "path", event.Name, "op", event.Op.String())
			timer.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch: watcher error", "error", err)
		case <-timer.C:
			run()
		}
	}
}

func joinPaths(paths []string) string {
	return strings.Join(paths, ", ")
}

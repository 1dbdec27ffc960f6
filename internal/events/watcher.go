package events

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"image-catalog/internal/catalog"
	"image-catalog/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Watcher publishes events for image files appearing in or leaving a
// directory tree.
type Watcher struct {
	root string
	pub  Publisher
	done chan struct{}
}

// NewWatcher creates a watcher for the tree at root.
func NewWatcher(root string, pub Publisher) *Watcher {
	return &Watcher{root: root, pub: pub, done: make(chan struct{})}
}

// Start registers every directory below root and processes events in the
// background until ctx is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	count := w.addTree(watcher, w.root, false)
	logging.Info("Watching %d directories under %s", count, w.root)

	go func() {
		defer close(w.done)
		defer func() {
			if err := watcher.Close(); err != nil {
				logging.Error("failed to close file watcher: %v", err)
			}
		}()
		w.process(ctx, watcher)
	}()
	return nil
}

// Done is closed once the watcher has stopped.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// addTree watches dir and everything below it. With announce set, images
// already present are published as added; that covers directories moved in
// whole.
func (w *Watcher) addTree(watcher *fsnotify.Watcher, dir string, announce bool) int {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if addErr := watcher.Add(path); addErr != nil {
				logging.Warn("failed to add path to watcher %s: %v", path, addErr)
			} else {
				count++
			}
			return nil
		}
		if announce {
			w.publish(ImageAdded, path)
		}
		return nil
	})
	if err != nil {
		logging.Error("Failed to walk directory for watcher: %v", err)
	}
	return count
}

func (w *Watcher) process(ctx context.Context, watcher *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			w.handle(watcher, event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Error("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) handle(watcher *fsnotify.Watcher, event fsnotify.Event) {
	switch {
	case event.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			if !w.hidden(event.Name) {
				w.addTree(watcher, event.Name, true)
			}
			return
		}
		w.publish(ImageAdded, event.Name)

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.publish(ImageRemoved, event.Name)
	}
}

// hidden reports whether any element of name below root is dot-prefixed.
func (w *Watcher) hidden(name string) bool {
	rel, err := filepath.Rel(w.root, name)
	if err != nil {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") && part != "." {
			return true
		}
	}
	return false
}

// publish sends an event for name when it is a catalogued image.
func (w *Watcher) publish(eventType, name string) {
	rel, err := filepath.Rel(w.root, name)
	if err != nil || w.hidden(name) {
		return
	}
	rel = filepath.ToSlash(rel)
	if !(catalog.Filter{}).Match(rel) {
		return
	}
	w.pub.Publish(NewEvent(eventType, rel))
}

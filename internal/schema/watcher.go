package schema

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"docdesigner/internal/domain"
)

// ReloadHandler is called after a schema file was reloaded.
type ReloadHandler func(dt domain.DocumentType)

// Watcher reloads schema files into a Catalog when they change on disk, so
// the data-key list offered in the designer follows edits to the files.
type Watcher struct {
	catalog  *Catalog
	watcher  *fsnotify.Watcher
	onReload ReloadHandler
	logger   *log.Logger
	done     chan struct{}
}

// Watch starts watching dir. The directory must exist.
func Watch(c *Catalog, dir string, logger *log.Logger, onReload ReloadHandler) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	w := &Watcher{
		catalog:  c,
		watcher:  fw,
		onReload: onReload,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go w.watchLoop()
	return w, nil
}

// Close stops the watcher and waits for its loop to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("schema watcher error", "err", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	dt, ok := DocumentTypeOf(event.Name)
	if !ok {
		return
	}
	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		if _, err := w.catalog.LoadFile(event.Name); err != nil {
			// Editors often write a file in several steps; keep the last good list.
			w.logger.Warn("schema reload failed", "file", event.Name, "err", err)
			return
		}
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.catalog.Reset(dt)
	default:
		return
	}
	w.logger.Debug("schema reloaded", "documentType", dt)
	if w.onReload != nil {
		w.onReload(dt)
	}
}

package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to a single config file. The directory is
// watched rather than the file, so editors that replace the file on save
// are noticed as well.
type Watcher struct {
	fsw     *fsnotify.Watcher
	file    string
	changes chan struct{}
	wg      sync.WaitGroup
}

func NewWatcher(cfile string) (*Watcher, error) {
	abs, err := filepath.Abs(cfile)
	if err != nil {
		return nil, fmt.Errorf("can't resolve config path %s: %w", cfile, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("can't create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("can't watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		fsw:     fsw,
		file:    abs,
		changes: make(chan struct{}, 1),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Changes delivers one notification per burst of file events that was
// not yet consumed.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

func (w *Watcher) Close() error {
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.file {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			slog.Debug("Config file changed", "file", w.file, "op", ev.Op.String())
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("Config watcher error", "error", err)
		}
	}
}

package server

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tartampluch/go-together/internal/config"
)

// Watcher reports writes to the journal database made by other processes, such as
// a CLI command run while the feed server is up.
type Watcher struct {
	Dir     string
	Changes <-chan struct{}

	changes  chan struct{}
	done     chan struct{}
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// NewWatcher watches dir for changes to the database file and its WAL.
func NewWatcher(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrWatcher, err)
	}
	ch := make(chan struct{}, config.ChannelBufferSize)
	return &Watcher{
		Dir:      dir,
		Changes:  ch,
		changes:  ch,
		done:     make(chan struct{}),
		watcher:  fw,
		debounce: config.WatchDebounce,
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.Dir); err != nil {
		_ = w.watcher.Close()
		return fmt.Errorf("%s: %w", config.ErrWatcher, err)
	}
	slog.Info(config.MsgWatchStart,
		config.LogKeyComponent, config.CompWatcher,
		config.LogKeyPath, w.Dir,
	)
	go w.loop()
	return nil
}

// Stop closes the watcher and waits for the loop to exit. Changes is closed afterwards.
func (w *Watcher) Stop() {
	_ = w.watcher.Close()
	<-w.done
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	var pending time.Time
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if !pending.IsZero() {
					w.emit()
				}
				return
			}
			if !isJournalFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
				pending = time.Now()
			}

		case <-ticker.C:
			if !pending.IsZero() && time.Since(pending) >= w.debounce {
				w.emit()
				pending = time.Time{}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn(config.ErrWatcher,
				config.LogKeyComponent, config.CompWatcher,
				config.LogKeyError, err,
			)
		}
	}
}

// emit coalesces: if a change is already queued the new one is dropped.
func (w *Watcher) emit() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

// isJournalFile matches journal.db and its -wal / -shm companions.
func isJournalFile(name string) bool {
	return strings.HasPrefix(filepath.Base(name), config.DatabaseFileName)
}

package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/Gaurav-Gosain/dashpanel/internal/logging"
)

// ChangedMsg reports that the layout file was modified by another process.
// It is delivered to the terminal dashboard as a Bubble Tea message.
type ChangedMsg struct {
	Path string
}

// DefaultDebounce is the quiet period a burst of file events must end with
// before the watcher reports it.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reports writes to a FileKV's backing file. The parent directory
// is watched rather than the file because writes replace the file by rename.
type Watcher struct {
	path     string
	debounce time.Duration
	log      *log.Logger
}

// NewWatcher watches path. A zero debounce uses DefaultDebounce.
func NewWatcher(path string, debounce time.Duration, logger *log.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     path,
		debounce: debounce,
		log:      logging.OrDiscard(logger),
	}
}

// Run blocks until ctx is done. A burst of creates, writes and renames of
// the file is reported once, on this goroutine, after the debounce period
// passes with no further events. A burst still pending when ctx ends is
// dropped.
func (w *Watcher) Run(ctx context.Context, onChange func(ChangedMsg)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.log.Debug("watching layout file", "path", w.path)

	quiet := time.NewTimer(w.debounce)
	quiet.Stop()
	defer quiet.Stop()

	base := filepath.Base(w.path)
	var pending fsnotify.Op
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			pending |= ev.Op
			quiet.Reset(w.debounce)
		case <-quiet.C:
			w.log.Debug("layout file changed", "path", w.path, "op", pending.String())
			pending = 0
			onChange(ChangedMsg{Path: w.path})
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("file watcher error", "err", err)
		}
	}
}

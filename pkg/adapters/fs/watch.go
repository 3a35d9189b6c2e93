package fs

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/YaroslavMizgirev/shelf/pkg/core"
)

// debounceDelay coalesces the burst of events an atomic rename produces.
const debounceDelay = 50 * time.Millisecond

// Watch emits an event whenever the named document is created, modified or
// removed. The directory is watched rather than the file, because atomic
// writes replace the file. Bursts are coalesced into their last event.
func (r *Repository) Watch(ctx context.Context, name string) (<-chan core.Event, error) {
	target, err := r.resolve(name)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	events := make(chan core.Event, 16)
	r.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(events)
		defer r.setWatcherActive(false)
		defer watcher.Close()
		return r.watchLoop(ctx, watcher, target, name, events)
	}, lifecycle.WithErrorHandler(r.reportWatchError))

	return events, nil
}

func (r *Repository) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, target, name string, events chan<- core.Event) error {
	timer := time.NewTimer(debounceDelay)
	timer.Stop()
	var pending *core.Event

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			if r.config.Logger != nil {
				r.config.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())
			}
			if filepath.Clean(event.Name) != target || strings.HasPrefix(filepath.Base(event.Name), TempFilePrefix) {
				continue
			}
			eType := mapEventType(event)
			if eType == "" {
				continue
			}
			pending = &core.Event{Type: eType, Name: name, Timestamp: time.Now().Unix()}
			timer.Reset(debounceDelay)

		case <-timer.C:
			if pending == nil {
				continue
			}
			select {
			case events <- *pending:
			case <-ctx.Done():
				return nil
			}
			pending = nil

		case wErr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			r.reportWatchError(wErr)
		}
	}
}

func mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	default:
		return ""
	}
}

func (r *Repository) reportWatchError(err error) {
	if r.config.Logger != nil {
		r.config.Logger.Error("watcher error", "error", err)
	}
	if r.config.ErrorHandler != nil {
		r.config.ErrorHandler(err)
	}
}

package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/Gaurav-Gosain/dashpanel/internal/engine"
	"github.com/Gaurav-Gosain/dashpanel/internal/gesture"
	"github.com/Gaurav-Gosain/dashpanel/internal/widget"
)

// Event is an engine notification waiting to be shown as a toast.
type Event struct {
	Message string
	Type    string // "info", "success", "warning", "error"
}

// EventFeed is the engine observer of the terminal dashboard. Engine
// callbacks may come from any goroutine, so events are queued and the
// dashboard drains them on its own update loop.
type EventFeed struct {
	engine.NopObserver

	mu     sync.Mutex
	events []Event
	titles *widget.Registry
}

var _ engine.Observer = (*EventFeed)(nil)

// NewEventFeed returns an empty feed that names panels through titles.
func NewEventFeed(titles *widget.Registry) *EventFeed {
	if titles == nil {
		titles = widget.Default()
	}
	return &EventFeed{titles: titles}
}

func (f *EventFeed) push(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

// Drain returns and clears the queued events.
func (f *EventFeed) Drain() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.events
	f.events = nil
	return out
}

// OnCommit reports persistence failures and collision handling.
func (f *EventFeed) OnCommit(_ context.Context, out gesture.Outcome, err error) {
	title := f.titles.Title(out.ID)
	switch {
	case err != nil:
		f.push(Event{Message: fmt.Sprintf("Failed to save %s: %v", title, err), Type: "error"})
	case out.Kind == gesture.Drag && out.Resolved:
		f.push(Event{Message: title + " moved to a free spot", Type: "info"})
	case out.Kind == gesture.Resize && out.Collided:
		f.push(Event{Message: title + " now overlaps another panel", Type: "warning"})
	}
}

// OnPresetLoaded confirms a preset load.
func (f *EventFeed) OnPresetLoaded(_ context.Context, name string, visible []string) {
	f.push(Event{Message: fmt.Sprintf("Loaded preset %q (%d panels)", name, len(visible)), Type: "success"})
}

// OnReset confirms a reset or reports the storage failure.
func (f *EventFeed) OnReset(_ context.Context, _ []string, err error) {
	if err != nil {
		f.push(Event{Message: "Layout reset, but " + err.Error(), Type: "error"})
		return
	}
	f.push(Event{Message: "Layout reset to defaults", Type: "success"})
}

package engine

import (
	"context"

	"github.com/Gaurav-Gosain/dashpanel/internal/gesture"
)

// Observer receives layout events after the engine lock is released.
// Implementations must not block.
type Observer interface {
	// OnCommit fires after a drag or resize end was committed.
	OnCommit(ctx context.Context, out gesture.Outcome, err error)

	// OnPresetLoaded fires after a preset replaced the layout.
	OnPresetLoaded(ctx context.Context, name string, visible []string)

	// OnReset fires after the layout was re-cascaded and storage purged.
	OnReset(ctx context.Context, visible []string, err error)

	// OnReload fires after the layout was re-read from storage.
	OnReload(ctx context.Context)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) OnCommit(context.Context, gesture.Outcome, error)  {}
func (NopObserver) OnPresetLoaded(context.Context, string, []string) {}
func (NopObserver) OnReset(context.Context, []string, error)         {}
func (NopObserver) OnReload(context.Context)                         {}

var _ Observer = NopObserver{}

// Observers fans every event out to each member in order.
type Observers []Observer

func (o Observers) OnCommit(ctx context.Context, out gesture.Outcome, err error) {
	for _, ob := range o {
		ob.OnCommit(ctx, out, err)
	}
}

func (o Observers) OnPresetLoaded(ctx context.Context, name string, visible []string) {
	for _, ob := range o {
		ob.OnPresetLoaded(ctx, name, visible)
	}
}

func (o Observers) OnReset(ctx context.Context, visible []string, err error) {
	for _, ob := range o {
		ob.OnReset(ctx, visible, err)
	}
}

func (o Observers) OnReload(ctx context.Context) {
	for _, ob := range o {
		ob.OnReload(ctx)
	}
}

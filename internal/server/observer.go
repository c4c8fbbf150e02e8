package server

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/Gaurav-Gosain/dashpanel/internal/engine"
	"github.com/Gaurav-Gosain/dashpanel/internal/gesture"
	"github.com/Gaurav-Gosain/dashpanel/internal/logging"
)

// LogObserver writes engine events to a logger. The headless server has no
// screen to toast on.
type LogObserver struct {
	log *log.Logger
}

var _ engine.Observer = (*LogObserver)(nil)

// NewLogObserver returns an observer logging to logger.
func NewLogObserver(logger *log.Logger) *LogObserver {
	return &LogObserver{log: logging.OrDiscard(logger)}
}

func (o *LogObserver) OnCommit(_ context.Context, out gesture.Outcome, err error) {
	if err != nil {
		o.log.Error("commit failed", "panel", out.ID, "gesture", out.Gesture, "err", err)
		return
	}
	o.log.Info("committed",
		"panel", out.ID,
		"kind", out.Kind,
		"x", out.Final.X, "y", out.Final.Y,
		"width", out.Final.Width, "height", out.Final.Height,
		"collided", out.Collided,
	)
}

func (o *LogObserver) OnPresetLoaded(_ context.Context, name string, visible []string) {
	o.log.Info("preset loaded", "preset", name, "panels", len(visible))
}

func (o *LogObserver) OnReset(_ context.Context, visible []string, err error) {
	if err != nil {
		o.log.Error("reset incomplete", "err", err)
		return
	}
	o.log.Info("layout reset", "panels", len(visible))
}

func (o *LogObserver) OnReload(context.Context) {
	o.log.Info("layout reloaded from storage")
}

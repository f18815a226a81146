package daemon

import (
	"log/slog"

	"github.com/1broseidon/splitwm/internal/platform"
)

// EventHandler consumes window-system events.
type EventHandler interface {
	HandleEvent(ev platform.Event)
}

// StateSynchronizer forwards window-system events to the window manager,
// logging each one and shielding the event loop from handler panics.
type StateSynchronizer struct {
	handler EventHandler
	logger  *slog.Logger
}

// NewStateSynchronizer creates a new state synchronizer.
func NewStateSynchronizer(handler EventHandler, logger *slog.Logger) *StateSynchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateSynchronizer{
		handler: handler,
		logger:  logger,
	}
}

// Attach subscribes to source.
func (s *StateSynchronizer) Attach(source platform.EventSource) error {
	return source.Subscribe(s.Handle)
}

// Handle delivers one event.
func (s *StateSynchronizer) Handle(ev platform.Event) {
	defer func() {
		if err := recover(); err != nil {
			s.logger.Error("event handler panic recovered",
				"event", ev.Kind.String(),
				"window_id", ev.Window,
				"error", err)
		}
	}()

	s.logger.Debug("window event", "event", ev.Kind.String(), "window_id", ev.Window)
	s.handler.HandleEvent(ev)
}

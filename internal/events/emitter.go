package events

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
)

// Dispatcher is an in-process Emitter that calls registered handlers
// synchronously, in registration order.
type Dispatcher struct {
	handlers []Handler
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		handlers: make([]Handler, 0),
		logger:   logger.With("component", "event_dispatcher"),
	}
}

// RegisterHandler adds a new event handler to receive events.
func (d *Dispatcher) RegisterHandler(handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, handler)
	d.logger.Debug("registered new event handler", "handler_count", len(d.handlers))
}

// Emit delivers the event to every registered handler.
// Delivery stops at the first handler error, which is returned wrapped; the
// caller is expected to roll back the surrounding transaction.
func (d *Dispatcher) Emit(ctx context.Context, tx *sql.Tx, event Event) error {
	d.mu.RLock()
	handlers := make([]Handler, len(d.handlers))
	copy(handlers, d.handlers)
	d.mu.RUnlock()

	d.logger.Debug("emitting event",
		"event_id", event.EventID(),
		"event_type", event.EventType(),
		"handler_count", len(handlers))

	if len(handlers) == 0 {
		d.logger.Warn("no handlers registered for event",
			"event_id", event.EventID(),
			"event_type", event.EventType())
		return nil
	}

	for i, handler := range handlers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := handler.HandleEvent(ctx, tx, event); err != nil {
			d.logger.Error("handler failed to process event",
				"error", err,
				"handler_index", i,
				"event_id", event.EventID(),
				"event_type", event.EventType())
			return fmt.Errorf("handling %s event: %w", event.EventType(), err)
		}
	}

	return nil
}

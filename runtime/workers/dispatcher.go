package workers

import (
	"context"
	"log/slog"

	"chat-hub/contract"
	"chat-hub/domain/event"
)

// Dispatcher consumes domain events from a channel and fans them out:
// room-scoped events reach the room's live connections, everything else
// (presence) reaches every registered connection. Permanent sinks
// (projections, metrics) receive each event best-effort on the side.
//
// No delivery, ordering across connections, or retry guarantees are made;
// the Dispatcher is glue between the domain and the hub, not a broker.
type Dispatcher struct {
	log    *slog.Logger
	hub    contract.IHub
	events chan event.DomainEvent
	sinks  []contract.EventSink
}

func NewDispatcher(log *slog.Logger, hub contract.IHub, events chan event.DomainEvent) Dispatcher {
	return Dispatcher{log: log, hub: hub, events: events}
}

// Add attaches permanent sinks, one Consume call per event each.
func (w Dispatcher) Add(sinks ...contract.EventSink) Dispatcher {
	w.sinks = append(w.sinks, sinks...)
	return w
}

func (w Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping dispatcher")
			return nil
		case evt, ok := <-w.events:
			if !ok {
				return nil
			}
			w.route(evt)
			w.fanout(ctx, evt)
		}
	}
}

func (w Dispatcher) route(evt event.DomainEvent) {
	if scoped, ok := evt.(event.RoomScoped); ok {
		delivered := w.hub.BroadcastToRoom(scoped.Room(), evt)
		w.log.Debug("Routed room event", "tag", evt.Tag(), "room", scoped.Room(), "delivered", delivered)
		return
	}
	delivered := w.hub.Broadcast(evt)
	w.log.Debug("Routed global event", "tag", evt.Tag(), "delivered", delivered)
}

func (w Dispatcher) fanout(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range w.sinks {
		if err := sink.Consume(ctx, evt); err != nil {
			w.log.Warn("Sink rejected event", "tag", evt.Tag(), "error", err)
		}
	}
}

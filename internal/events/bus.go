// Package events provides the in-process event bus connecting device
// monitoring, profile application and API consumers.
package events

import (
	"github.com/kelindar/event"
)

// Bus wraps a kelindar/event dispatcher for event broadcasting.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers. The generic
// event.Publish needs the concrete type, hence the switch.
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case DeviceAttachedEvent:
		event.Publish(b.dispatcher, e)
	case DeviceDetachedEvent:
		event.Publish(b.dispatcher, e)
	case ControlsAppliedEvent:
		event.Publish(b.dispatcher, e)
	case ProfileReloadedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes a typed handler function; the parameter type
// determines which events it receives. Returns an unsubscribe function.
//
//	unsub := bus.Subscribe(func(e DeviceAttachedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(DeviceAttachedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(DeviceDetachedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ControlsAppliedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ProfileReloadedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}

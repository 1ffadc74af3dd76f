package events

import (
	"sync"
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	bus := New()

	var mu sync.Mutex
	var got []DeviceAttachedEvent
	done := make(chan struct{}, 1)

	unsub := bus.Subscribe(func(e DeviceAttachedEvent) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
		done <- struct{}{}
	})
	defer unsub()

	bus.Publish(DeviceAttachedEvent{DevicePath: "/dev/video0", DeviceName: "C920"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never received the event")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0].DevicePath != "/dev/video0" {
		t.Errorf("got %+v", got)
	}
}

func TestSubscriberTypeIsolation(t *testing.T) {
	bus := New()

	detached := make(chan DeviceDetachedEvent, 1)
	unsub := bus.Subscribe(func(e DeviceDetachedEvent) {
		detached <- e
	})
	defer unsub()

	// An attached event must not reach a detached subscriber.
	bus.Publish(DeviceAttachedEvent{DevicePath: "/dev/video0"})
	bus.Publish(DeviceDetachedEvent{DevicePath: "/dev/video1"})

	select {
	case e := <-detached:
		if e.DevicePath != "/dev/video1" {
			t.Errorf("got %+v, want detach for /dev/video1", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("detached subscriber never received its event")
	}

	select {
	case e := <-detached:
		t.Errorf("unexpected extra event: %+v", e)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := New()

	received := make(chan struct{}, 4)
	unsub := bus.Subscribe(func(e ControlsAppliedEvent) {
		received <- struct{}{}
	})

	bus.Publish(ControlsAppliedEvent{DevicePath: "/dev/video0", Count: 1})
	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never received the event")
	}

	unsub()
	bus.Publish(ControlsAppliedEvent{DevicePath: "/dev/video0", Count: 2})
	select {
	case <-received:
		t.Error("received an event after unsubscribe")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnknownHandlerIsNoop(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(e struct{}) {})
	// Must not panic or block.
	unsub()
}

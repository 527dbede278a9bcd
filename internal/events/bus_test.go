package events

import (
	"testing"
	"time"

	"github.com/universa-bio/origin/internal/core"
)

func TestBus_PublishAndSubscribe(t *testing.T) {
	bus := NewBus(10)
	defer bus.Close()

	sub := bus.Subscribe()
	bus.Publish(NewStageCompleted("s1", core.StageRefine))

	select {
	case ev := <-sub.Events():
		se, ok := ev.(StageEvent)
		if !ok || se.Stage != core.StageRefine || se.SessionID() != "s1" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("event not delivered")
	}
}

func TestBus_TypeFiltering(t *testing.T) {
	bus := NewBus(10)
	defer bus.Close()

	sub := bus.Subscribe(TypeStageFailed)
	bus.Publish(NewStageCompleted("s1", core.StageRefine))
	bus.Publish(NewStageFailed("s1", core.StageGenerate, "boom"))

	select {
	case ev := <-sub.Events():
		if ev.EventType() != TypeStageFailed {
			t.Fatalf("filter leaked event type %s", ev.EventType())
		}
	case <-time.After(time.Second):
		t.Fatalf("event not delivered")
	}
}

func TestBus_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := NewBus(1)
	defer bus.Close()

	bus.Subscribe() // never drained
	bus.Publish(NewStagePending("s1", core.StageRefine))
	bus.Publish(NewStagePending("s1", core.StageGenerate))

	if bus.Dropped() != 1 {
		t.Fatalf("expected 1 dropped event, got %d", bus.Dropped())
	}
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus(10)
	defer bus.Close()

	sub := bus.Subscribe()
	bus.Unsubscribe(sub)
	if _, ok := <-sub.Events(); ok {
		t.Fatalf("expected closed channel after unsubscribe")
	}
}

func TestBus_PublishAfterClose(t *testing.T) {
	bus := NewBus(10)
	sub := bus.Subscribe()
	bus.Close()
	bus.Publish(NewWorkflowReset("s1")) // must not panic
	if _, ok := <-sub.Events(); ok {
		t.Fatalf("expected closed channel after bus close")
	}
}

package orchestration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tinvok/voxchat/core/events"
)

func TestEventLoopDispatchesInOrder(t *testing.T) {
	loop := newEventLoop()

	var mu sync.Mutex
	var seen []string
	dispatched := make(chan struct{}, eventQueueCapacity)
	dispatch := func(_ context.Context, event events.Event) {
		mu.Lock()
		seen = append(seen, event.(events.TranscriptReceived).Transcript)
		mu.Unlock()
		dispatched <- struct{}{}
	}

	if !loop.Start(context.Background(), dispatch) {
		t.Fatalf("expected the loop to start")
	}
	defer loop.Stop()

	inputs := []string{"first", "second", "third"}
	for _, input := range inputs {
		if !loop.Post(events.NewTranscriptReceived(input)) {
			t.Fatalf("expected %q to be accepted", input)
		}
	}

	for range inputs {
		select {
		case <-dispatched:
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for dispatch")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for i, input := range inputs {
		if seen[i] != input {
			t.Fatalf("expected event %d to be %q, got %q", i, input, seen[i])
		}
	}
}

func TestEventLoopStartsOnlyOnce(t *testing.T) {
	loop := newEventLoop()
	dispatch := func(context.Context, events.Event) {}

	if !loop.Start(context.Background(), dispatch) {
		t.Fatalf("expected the first start to succeed")
	}
	defer loop.Stop()

	if loop.Start(context.Background(), dispatch) {
		t.Fatalf("expected the second start to be rejected")
	}
}

func TestEventLoopRejectsNilDispatch(t *testing.T) {
	loop := newEventLoop()

	if loop.Start(context.Background(), nil) {
		t.Fatalf("expected start without a dispatch function to fail")
	}
}

func TestEventLoopDropsEventsAfterStop(t *testing.T) {
	loop := newEventLoop()
	if !loop.Start(context.Background(), func(context.Context, events.Event) {}) {
		t.Fatalf("expected the loop to start")
	}

	loop.Stop()
	loop.AwaitDone()

	if loop.Post(events.NewTranscriptReceived("late")) {
		t.Fatalf("expected events after stop to be dropped")
	}
	if loop.CanIngest() {
		t.Fatalf("expected a stopped loop to refuse ingestion")
	}
}

func TestEventLoopAwaitDoneWithoutStartReturns(t *testing.T) {
	loop := newEventLoop()
	loop.Stop()

	done := make(chan struct{})
	go func() {
		loop.AwaitDone()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected AwaitDone to return for a never-started loop")
	}
}

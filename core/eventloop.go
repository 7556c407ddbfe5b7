package orchestration

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/tinvok/voxchat/core/events"
)

const eventQueueCapacity = 16

// eventLoop is the single logical thread of control: queued events are
// dispatched one at a time, each handled to completion before the next is
// taken. All orchestrator state transitions happen inside dispatch.
//
// Post blocks when the queue is full, which is safe backpressure for every
// producer except the dispatch goroutine itself. Handlers must therefore
// never Post synchronously; outcomes produced inside dispatch are either
// applied inline or posted from a spawned goroutine.
type eventLoop struct {
	queue   chan events.Event
	closeCh chan struct{}
	done    chan struct{}

	startOnce sync.Once
	endOnce   sync.Once

	started atomic.Bool
}

func newEventLoop() *eventLoop {
	return &eventLoop{
		queue:   make(chan events.Event, eventQueueCapacity),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (loop *eventLoop) CanIngest() bool {
	if loop == nil {
		return false
	}

	select {
	case <-loop.closeCh:
		return false
	default:
		return true
	}
}

func (loop *eventLoop) Start(baseCtx context.Context, dispatch func(context.Context, events.Event)) (started bool) {
	if loop == nil || dispatch == nil || !loop.CanIngest() {
		return false
	}

	loop.startOnce.Do(func() {
		if !loop.CanIngest() {
			return
		}

		started = true
		loop.started.Store(true)
		go func() {
			defer close(loop.done)

			for {
				select {
				case <-loop.closeCh:
					return
				case event := <-loop.queue:
					if !loop.CanIngest() {
						return
					}
					dispatch(baseCtx, event)
				}
			}
		}()
	})

	return started
}

// Post queues an event for dispatch. It reports false when the loop has been
// stopped and the event was dropped.
func (loop *eventLoop) Post(event events.Event) bool {
	if loop == nil || !loop.CanIngest() {
		return false
	}

	select {
	case <-loop.closeCh:
		return false
	case loop.queue <- event:
		return true
	}
}

func (loop *eventLoop) Stop() {
	if loop == nil {
		return
	}

	loop.endOnce.Do(func() { close(loop.closeCh) })
}

func (loop *eventLoop) AwaitDone() {
	if loop == nil {
		return
	}

	if loop.started.Load() {
		<-loop.done
	}
}

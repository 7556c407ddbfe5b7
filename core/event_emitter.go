package orchestration

import "github.com/tinvok/voxchat/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

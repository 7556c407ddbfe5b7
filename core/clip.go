package orchestration

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Clip is an opaque handle to one synthesized, not-yet-played audio resource.
//
// A clip is created by the synthesis queue, owned exclusively by the playback
// sequencer once enqueued, and released when its single playback attempt
// terminates or the queue is flushed. A clip is played at most once.
type Clip struct {
	ID          string
	ContentType string
	Size        int

	data     []byte
	released atomic.Bool
}

func newClip(audio []byte, contentType string) *Clip {
	return &Clip{
		ID:          uuid.NewString(),
		ContentType: contentType,
		Size:        len(audio),
		data:        audio,
	}
}

// Bytes returns the audio payload, or nil once the clip has been released.
func (c *Clip) Bytes() []byte {
	if c == nil || c.released.Load() {
		return nil
	}

	return c.data
}

// Release frees the audio payload. Repeated calls are ignored.
func (c *Clip) Release() {
	if c == nil || !c.released.CompareAndSwap(false, true) {
		return
	}

	c.data = nil
}

// IsReleased reports whether the clip's resource has been freed.
func (c *Clip) IsReleased() bool {
	return c != nil && c.released.Load()
}

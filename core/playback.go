package orchestration

import (
	"fmt"

	"github.com/tinvok/voxchat/core/events"
)

// playbackSequencer plays queued clips strictly one at a time, advancing on
// the terminal event of the in-flight clip, success or failure alike. A
// single bad clip never silences the rest of the reply.
//
// The sequencer is only ever driven from the dispatch loop, so its state
// needs no locking; the sink's completion callback re-enters through the
// event queue, never directly.
type playbackSequencer struct {
	sink AudioSink

	queue    []*Clip
	inFlight *Clip

	emit eventEmitter
}

func newPlaybackSequencer(sink AudioSink, emit eventEmitter) *playbackSequencer {
	if emit == nil {
		emit = noopEventEmitter
	}

	return &playbackSequencer{sink: sink, emit: emit}
}

// IsEmpty reports whether no clip is queued or in flight.
func (s *playbackSequencer) IsEmpty() bool {
	if s == nil {
		return true
	}

	return s.inFlight == nil && len(s.queue) == 0
}

// InFlight returns the clip currently bound to the playback device, or nil.
func (s *playbackSequencer) InFlight() *Clip {
	if s == nil {
		return nil
	}

	return s.inFlight
}

func (s *playbackSequencer) QueueLen() int {
	if s == nil {
		return 0
	}

	return len(s.queue)
}

// Enqueue appends a clip and starts playback when the sequencer is idle.
func (s *playbackSequencer) Enqueue(clip *Clip) {
	if s == nil || clip == nil {
		return
	}

	s.queue = append(s.queue, clip)
	if s.inFlight == nil {
		s.advance()
	}
}

// HandleTerminal consumes the terminal event of the in-flight clip and
// advances the queue. Terminal events for clips that are no longer in flight
// (e.g. arriving after a flush) are ignored. It reports whether the event was
// consumed.
func (s *playbackSequencer) HandleTerminal(clipID string, playErr error) bool {
	if s == nil || s.inFlight == nil || s.inFlight.ID != clipID {
		return false
	}

	if playErr != nil {
		logger.Warn("clip playback failed, skipping to next",
			"clip_id", clipID, "error", playErr)
	}

	s.inFlight.Release()
	s.inFlight = nil
	s.advance()
	return true
}

// Flush discards the remaining queue, stops the in-flight clip, and leaves
// the sequencer empty. Used for barge-in and shutdown.
func (s *playbackSequencer) Flush() {
	if s == nil {
		return
	}

	if s.inFlight != nil {
		if s.sink != nil {
			if err := s.sink.Stop(); err != nil {
				logger.Warn("failed to stop playback device during flush", "error", err)
			}
		}
		s.inFlight.Release()
		s.inFlight = nil
	}

	for _, clip := range s.queue {
		clip.Release()
	}
	s.queue = nil
}

// advance binds the queue head to the playback device, or settles into the
// empty state when nothing is queued. Clips the device rejects outright are
// skipped in the same pass.
func (s *playbackSequencer) advance() {
	if s.inFlight != nil {
		// Single-device contract: a second bind while one clip is in flight
		// is a programming error, not a recoverable condition.
		panic(fmt.Sprintf("playback sequencer: advance with clip %s in flight", s.inFlight.ID))
	}

	for len(s.queue) > 0 {
		clip := s.queue[0]
		s.queue = s.queue[1:]

		if s.sink == nil {
			// No playback device: drop the clip like a rejected one. Emitting
			// a failure event here would post from inside dispatch and could
			// wedge the loop on a full queue.
			logger.Warn("no playback device, dropping clip", "clip_id", clip.ID)
			clip.Release()
			continue
		}

		clipID := clip.ID
		err := s.sink.Play(clip.Bytes(), func(playErr error) {
			if playErr != nil {
				s.emit(events.NewClipFailed(clipID, fmt.Errorf("%w: %v", ErrPlaybackError, playErr)))
				return
			}
			s.emit(events.NewClipFinished(clipID))
		})
		if err != nil {
			logger.Warn("playback device rejected clip, skipping to next",
				"clip_id", clip.ID, "error", err)
			clip.Release()
			continue
		}

		s.inFlight = clip
		return
	}
}

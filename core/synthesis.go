package orchestration

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/tinvok/voxchat/core/events"
	"github.com/tinvok/voxchat/core/texttospeech"
	"go.opentelemetry.io/otel/codes"
)

// synthesisQueue requests audio for reply text without blocking the dispatch
// loop. Multiple synthesis requests may be in flight at once; results enter
// the playback queue in the order their synthesis completed.
//
// Flush bumps the generation counter so results still in flight for
// discarded text are dropped at dispatch instead of being queued.
type synthesisQueue struct {
	// client stores the configured synthesis implementation.
	client Synthesizer

	voiceID string
	timeout time.Duration

	generation atomic.Uint64

	emit eventEmitter
}

func newSynthesisQueue(client Synthesizer, emit eventEmitter) *synthesisQueue {
	if emit == nil {
		emit = noopEventEmitter
	}

	return &synthesisQueue{client: client, emit: emit}
}

func (q *synthesisQueue) set(client Synthesizer) {
	if q != nil {
		q.client = client
	}
}

func (q *synthesisQueue) isConfigured() bool {
	return q != nil && q.client != nil
}

// Generation returns the current synthesis generation. Results tagged with an
// older generation were flushed while in flight.
func (q *synthesisQueue) Generation() uint64 {
	if q == nil {
		return 0
	}

	return q.generation.Load()
}

// Flush invalidates every synthesis request currently in flight.
func (q *synthesisQueue) Flush() {
	if q == nil {
		return
	}

	q.generation.Add(1)
}

// Enqueue issues one synthesis request for text and returns immediately. The
// outcome arrives later as a ClipReady or SynthesisFailed event.
func (q *synthesisQueue) Enqueue(ctx context.Context, text string) {
	if q == nil {
		return
	}

	generation := q.generation.Load()

	if q.client == nil {
		// Emitted from a goroutine: Enqueue runs inside dispatch and a
		// synchronous post could wedge the loop on a full queue.
		go q.emit(events.NewSynthesisFailed(fmt.Errorf("%w: no synthesizer configured", ErrUpstreamFailure), generation))
		return
	}

	go func() {
		ctx, span := tracer.Start(ctx, "synthesize reply audio")
		defer span.End()

		if q.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, q.timeout)
			defer cancel()
		}

		opts := []texttospeech.SynthesisOption{}
		if q.voiceID != "" {
			opts = append(opts, texttospeech.WithVoiceID(q.voiceID))
		}

		result, err := q.client.Synthesize(ctx, text, opts...)
		if err != nil {
			err := fmt.Errorf("%w: synthesis request failed: %v", ErrUpstreamFailure, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			q.emit(events.NewSynthesisFailed(err, generation))
			return
		}
		if result == nil || len(result.Audio) == 0 {
			err := fmt.Errorf("%w: synthesis returned no audio", ErrUpstreamFailure)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			q.emit(events.NewSynthesisFailed(err, generation))
			return
		}

		q.emit(events.NewClipReady(result.Audio, result.ContentType, generation))
	}()
}

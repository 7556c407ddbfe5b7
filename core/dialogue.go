package orchestration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tinvok/voxchat/core/completion"
	"github.com/tinvok/voxchat/core/events"
	"go.opentelemetry.io/otel/codes"
)

// Generation policy for the completion service. Fixed, not user-exposed.
const (
	completionMaxOutputTokens = 1000
	completionTemperature     = 0.7
)

// dialoguePipeline sends one transcript to the completion service and turns
// the outcome into a ReplyReady or ReplyFailed event. Exactly one request per
// transcript, no automatic retry.
type dialoguePipeline struct {
	// client stores the configured completion implementation.
	client Completer

	timeout time.Duration

	emit eventEmitter
}

func newDialoguePipeline(client Completer, emit eventEmitter) *dialoguePipeline {
	if emit == nil {
		emit = noopEventEmitter
	}

	return &dialoguePipeline{client: client, emit: emit}
}

func (p *dialoguePipeline) set(client Completer) {
	if p != nil {
		p.client = client
	}
}

func (p *dialoguePipeline) isConfigured() bool {
	return p != nil && p.client != nil
}

// Request issues the chat request for transcript and returns immediately.
// Empty transcripts are rejected locally, before any network call.
func (p *dialoguePipeline) Request(ctx context.Context, transcript string) error {
	if p == nil {
		return nil
	}

	if strings.TrimSpace(transcript) == "" {
		return fmt.Errorf("%w: empty transcript", ErrInvalidInput)
	}

	if p.client == nil {
		// Emitted from a goroutine: Request runs inside dispatch and a
		// synchronous post could wedge the loop on a full queue.
		go p.emit(events.NewReplyFailed(fmt.Errorf("%w: no completion client configured", ErrUpstreamFailure)))
		return nil
	}

	go func() {
		ctx, span := tracer.Start(ctx, "request chat reply")
		defer span.End()

		if p.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.timeout)
			defer cancel()
		}

		reply, err := p.client.Complete(ctx, transcript,
			completion.WithMaxOutputTokens(completionMaxOutputTokens),
			completion.WithTemperature(completionTemperature),
		)
		if err != nil {
			err := fmt.Errorf("%w: completion request failed: %v", ErrUpstreamFailure, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			p.emit(events.NewReplyFailed(err))
			return
		}

		p.emit(events.NewReplyReady(strings.TrimSpace(reply)))
	}()

	return nil
}

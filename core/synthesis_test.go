package orchestration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tinvok/voxchat/core/events"
	"github.com/tinvok/voxchat/core/texttospeech"
)

type optionCapturingSynthesizer struct {
	options texttospeech.SynthesisOptions
}

func (s *optionCapturingSynthesizer) Synthesize(_ context.Context, text string, opts ...texttospeech.SynthesisOption) (*texttospeech.Result, error) {
	for _, opt := range opts {
		opt(&s.options)
	}
	return &texttospeech.Result{Audio: []byte(text), ContentType: "audio/wav"}, nil
}

type emptyResultSynthesizer struct{}

func (emptyResultSynthesizer) Synthesize(context.Context, string, ...texttospeech.SynthesisOption) (*texttospeech.Result, error) {
	return &texttospeech.Result{ContentType: "audio/wav"}, nil
}

func awaitEvent(t *testing.T, eventCh chan events.Event) events.Event {
	t.Helper()

	select {
	case event := <-eventCh:
		return event
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for a synthesis event")
		return nil
	}
}

func TestSynthesisQueueEmitsAClipForSuccessfulResults(t *testing.T) {
	eventCh := make(chan events.Event, 1)
	queue := newSynthesisQueue(&fakeSynthesizer{}, func(event events.Event) { eventCh <- event })

	queue.Enqueue(context.Background(), "hello")

	event := awaitEvent(t, eventCh)
	clip, ok := event.(events.ClipReady)
	if !ok {
		t.Fatalf("expected a clip event, got %T", event)
	}
	if got := string(clip.Audio); got != "audio:hello" {
		t.Fatalf("unexpected audio payload %q", got)
	}
	if clip.ContentType != "audio/wav" {
		t.Fatalf("unexpected content type %q", clip.ContentType)
	}
	if clip.Generation != 0 {
		t.Fatalf("expected initial generation 0, got %d", clip.Generation)
	}
}

func TestSynthesisQueueTagsResultsWithTheGenerationAtEnqueueTime(t *testing.T) {
	eventCh := make(chan events.Event, 1)
	queue := newSynthesisQueue(&fakeSynthesizer{}, func(event events.Event) { eventCh <- event })

	queue.Flush()
	queue.Flush()
	queue.Enqueue(context.Background(), "hello")

	clip, ok := awaitEvent(t, eventCh).(events.ClipReady)
	if !ok || clip.Generation != 2 {
		t.Fatalf("expected a clip tagged with generation 2, got %#v", clip)
	}
	if got := queue.Generation(); got != 2 {
		t.Fatalf("expected generation 2, got %d", got)
	}
}

func TestSynthesisQueueWrapsProviderFailures(t *testing.T) {
	eventCh := make(chan events.Event, 1)
	queue := newSynthesisQueue(&fakeSynthesizer{err: errors.New("voice service down")},
		func(event events.Event) { eventCh <- event })

	queue.Enqueue(context.Background(), "hello")

	failure, ok := awaitEvent(t, eventCh).(events.SynthesisFailed)
	if !ok {
		t.Fatalf("expected a synthesis failure event")
	}
	if !errors.Is(failure.Err, ErrUpstreamFailure) {
		t.Fatalf("expected an upstream failure, got %v", failure.Err)
	}
}

func TestSynthesisQueueTreatsEmptyAudioAsAFailure(t *testing.T) {
	eventCh := make(chan events.Event, 1)
	queue := newSynthesisQueue(emptyResultSynthesizer{}, func(event events.Event) { eventCh <- event })

	queue.Enqueue(context.Background(), "hello")

	failure, ok := awaitEvent(t, eventCh).(events.SynthesisFailed)
	if !ok || !errors.Is(failure.Err, ErrUpstreamFailure) {
		t.Fatalf("expected an upstream failure for empty audio, got %#v", failure)
	}
}

func TestSynthesisQueueFailsWithoutAClient(t *testing.T) {
	eventCh := make(chan events.Event, 1)
	queue := newSynthesisQueue(nil, func(event events.Event) { eventCh <- event })

	queue.Enqueue(context.Background(), "hello")

	failure, ok := awaitEvent(t, eventCh).(events.SynthesisFailed)
	if !ok || !errors.Is(failure.Err, ErrUpstreamFailure) {
		t.Fatalf("expected an upstream failure, got %#v", failure)
	}
	if failure.Generation != queue.Generation() {
		t.Fatalf("expected the failure tagged with the current generation")
	}
}

func TestSynthesisQueuePassesTheConfiguredVoice(t *testing.T) {
	eventCh := make(chan events.Event, 1)
	synthesizer := &optionCapturingSynthesizer{}
	queue := newSynthesisQueue(synthesizer, func(event events.Event) { eventCh <- event })
	queue.voiceID = "narrator"

	queue.Enqueue(context.Background(), "hello")
	awaitEvent(t, eventCh)

	if synthesizer.options.VoiceID != "narrator" {
		t.Fatalf("expected voice %q to be requested, got %q", "narrator", synthesizer.options.VoiceID)
	}
}

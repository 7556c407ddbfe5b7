package orchestration

import (
	"context"
	"errors"
	"testing"

	"github.com/tinvok/voxchat/core/events"
	"github.com/tinvok/voxchat/core/speechtotext"
)

type callbackRecognizer struct {
	onTranscript func(string)
	startErr     error
	stopCalls    int
}

func (r *callbackRecognizer) Start(_ context.Context, opts ...speechtotext.RecognitionOption) error {
	if r.startErr != nil {
		return r.startErr
	}

	options := speechtotext.RecognitionOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	r.onTranscript = options.TranscriptCallback
	return nil
}

func (r *callbackRecognizer) Stop() error {
	r.stopCalls++
	return nil
}

func TestSpeechCaptureForwardsFoldedTranscriptsWhileArmed(t *testing.T) {
	var emitted []events.Event
	recognizer := &callbackRecognizer{}
	capture := newSpeechCapture(recognizer, func(event events.Event) { emitted = append(emitted, event) })

	if err := capture.Start(context.Background()); err != nil {
		t.Fatalf("expected capture to start, got %v", err)
	}
	capture.Arm()

	recognizer.onTranscript("What is the Capital of France?")

	if len(emitted) != 1 {
		t.Fatalf("expected one transcript event, got %d", len(emitted))
	}
	transcript := emitted[0].(events.TranscriptReceived)
	if transcript.Transcript != "what is the capital of france?" {
		t.Fatalf("expected a folded transcript, got %q", transcript.Transcript)
	}
}

func TestSpeechCaptureDiscardsTranscriptsWhileDisarmed(t *testing.T) {
	var emitted []events.Event
	recognizer := &callbackRecognizer{}
	capture := newSpeechCapture(recognizer, func(event events.Event) { emitted = append(emitted, event) })

	if err := capture.Start(context.Background()); err != nil {
		t.Fatalf("expected capture to start, got %v", err)
	}

	recognizer.onTranscript("heard before arming")

	capture.Arm()
	capture.Disarm()
	recognizer.onTranscript("heard while disarmed")

	if len(emitted) != 0 {
		t.Fatalf("expected disarmed transcripts to be discarded, got %d events", len(emitted))
	}
}

func TestSpeechCaptureStartRequiresAClient(t *testing.T) {
	capture := newSpeechCapture(nil, nil)

	if err := capture.Start(context.Background()); !errors.Is(err, ErrCapabilityUnavailable) {
		t.Fatalf("expected capability unavailable, got %v", err)
	}
}

func TestSpeechCaptureArmBeforeStartIsANoOp(t *testing.T) {
	capture := newSpeechCapture(&callbackRecognizer{}, nil)

	capture.Arm()

	if capture.IsArmed() {
		t.Fatalf("expected arming an unstarted capture to do nothing")
	}
}

func TestSpeechCaptureCloseStopsTheSessionOnce(t *testing.T) {
	recognizer := &callbackRecognizer{}
	capture := newSpeechCapture(recognizer, nil)

	if err := capture.Start(context.Background()); err != nil {
		t.Fatalf("expected capture to start, got %v", err)
	}
	capture.Arm()

	if err := capture.Close(); err != nil {
		t.Fatalf("expected clean close, got %v", err)
	}
	if err := capture.Close(); err != nil {
		t.Fatalf("expected repeated close to be a no-op, got %v", err)
	}

	if recognizer.stopCalls != 1 {
		t.Fatalf("expected one stop call, got %d", recognizer.stopCalls)
	}
	if capture.IsArmed() {
		t.Fatalf("expected capture to be disarmed after close")
	}
}

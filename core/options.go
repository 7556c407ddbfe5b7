package orchestration

import (
	"context"
	"strings"
	"time"

	"github.com/tinvok/voxchat/core/completion"
	"github.com/tinvok/voxchat/core/speechtotext"
	"github.com/tinvok/voxchat/core/texttospeech"
)

type OrchestratorOption func(*Orchestrator)

// Recognizer is a continuous speech recognition client: once started it
// emits one callback per finalized utterance until stopped.
type Recognizer interface {
	Start(ctx context.Context, opts ...speechtotext.RecognitionOption) error
	Stop() error
}

func WithRecognizer(client Recognizer) OrchestratorOption {
	return func(o *Orchestrator) {
		o.capture.set(client)
	}
}

// Completer turns a non-empty prompt into reply text.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts ...completion.PromptOption) (string, error)
}

func WithCompleter(client Completer) OrchestratorOption {
	return func(o *Orchestrator) {
		o.dialogue.set(client)
	}
}

// Synthesizer turns reply text into one audio clip payload.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, opts ...texttospeech.SynthesisOption) (*texttospeech.Result, error)
}

func WithSynthesizer(client Synthesizer) OrchestratorOption {
	return func(o *Orchestrator) {
		o.synthesis.set(client)
	}
}

// AudioSink is the single playback device. Play begins asynchronous playback
// of one clip payload and invokes onDone exactly once with the terminal
// outcome; Stop halts the current payload and resets its position.
type AudioSink interface {
	Play(audio []byte, onDone func(error)) error
	Stop() error
}

func WithAudioSink(sink AudioSink) OrchestratorOption {
	return func(o *Orchestrator) {
		o.sequencer.sink = sink
	}
}

// WithSynthesisVoice selects the voice forwarded with every synthesis
// request. Empty leaves the synthesizer's own default in place.
func WithSynthesisVoice(voiceID string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.synthesis.voiceID = voiceID
	}
}

// WithRequestTimeout bounds each completion and synthesis round-trip so a
// hung request can never leave capture disarmed indefinitely.
func WithRequestTimeout(timeout time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if timeout <= 0 {
			return
		}

		o.requestTimeout = timeout
	}
}

// WithInterruptKeywords replaces the barge-in keyword set. Matching is
// case-folded substring containment.
func WithInterruptKeywords(keywords ...string) OrchestratorOption {
	return func(o *Orchestrator) {
		folded := make([]string, 0, len(keywords))
		for _, keyword := range keywords {
			keyword = strings.ToLower(strings.TrimSpace(keyword))
			if keyword != "" {
				folded = append(folded, keyword)
			}
		}
		if len(folded) > 0 {
			o.interruptKeywords = folded
		}
	}
}

type RunOptions struct {
	onStateChanged    func(state State)
	onTranscript      func(transcript string)
	onTurnAppended    func(turn Turn)
	onPlaybackStarted func(clipID string)
	onPlaybackEnded   func()
	onBargeIn         func()
	onError           func(err error)
}

type RunOption func(*RunOptions)

// WithStateChangedCallback registers a callback for orchestrator mode
// transitions. The callback runs inline on the dispatch loop and should not
// block.
func WithStateChangedCallback(callback func(state State)) RunOption {
	return func(o *RunOptions) {
		o.onStateChanged = callback
	}
}

// WithTranscriptCallback registers a callback for every finalized transcript
// the capture adapter emits, including those consumed by barge-in.
func WithTranscriptCallback(callback func(transcript string)) RunOption {
	return func(o *RunOptions) {
		o.onTranscript = callback
	}
}

// WithTurnAppendedCallback registers a callback invoked after each turn is
// appended to the conversation log. Rendering layers consume this instead of
// polling Conversation.
func WithTurnAppendedCallback(callback func(turn Turn)) RunOption {
	return func(o *RunOptions) {
		o.onTurnAppended = callback
	}
}

func WithPlaybackStartedCallback(callback func(clipID string)) RunOption {
	return func(o *RunOptions) {
		o.onPlaybackStarted = callback
	}
}

// WithPlaybackEndedCallback registers a callback invoked when the playback
// queue drains back to empty.
func WithPlaybackEndedCallback(callback func()) RunOption {
	return func(o *RunOptions) {
		o.onPlaybackEnded = callback
	}
}

func WithBargeInCallback(callback func()) RunOption {
	return func(o *RunOptions) {
		o.onBargeIn = callback
	}
}

// WithErrorCallback registers a callback for every recovered failure. The
// conversation log receives a generic error turn regardless; this callback
// carries the diagnostic detail.
func WithErrorCallback(callback func(err error)) RunOption {
	return func(o *RunOptions) {
		o.onError = callback
	}
}

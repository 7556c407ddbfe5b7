package events

const (
	// KindTranscriptReceived identifies one finalized utterance from the
	// capture adapter.
	KindTranscriptReceived Kind = "user_input.transcript_final"
	// KindReplayRequested asks the orchestrator to speak the last assistant
	// reply again.
	KindReplayRequested Kind = "user_input.replay_requested"
	// KindCaptureToggled flips the user-facing microphone switch.
	KindCaptureToggled Kind = "user_input.capture_toggled"
)

// TranscriptReceived carries a finalized utterance, normalized to lower case
// by the capture adapter.
type TranscriptReceived struct {
	Base
	Transcript string
}

// NewTranscriptReceived creates a finalized-transcript event.
func NewTranscriptReceived(transcript string) TranscriptReceived {
	return TranscriptReceived{Base: NewBase(KindTranscriptReceived), Transcript: transcript}
}

// ReplayRequested asks for the last assistant reply to be synthesized and
// played again.
type ReplayRequested struct {
	Base
}

// NewReplayRequested creates a replay request event.
func NewReplayRequested() ReplayRequested {
	return ReplayRequested{Base: NewBase(KindReplayRequested)}
}

// CaptureToggled carries the desired state of the microphone switch. The
// switch expresses user intent only; the orchestrator still keeps the
// microphone closed while playback is pending.
type CaptureToggled struct {
	Base
	Requested bool
}

// NewCaptureToggled creates a microphone switch event.
func NewCaptureToggled(requested bool) CaptureToggled {
	return CaptureToggled{Base: NewBase(KindCaptureToggled), Requested: requested}
}

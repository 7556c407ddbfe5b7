package events

const (
	// KindClipFinished identifies an in-flight clip that played to completion.
	KindClipFinished Kind = "playback.clip_finished"
	// KindClipFailed identifies an in-flight clip the device rejected or aborted.
	KindClipFailed Kind = "playback.clip_failed"
)

// ClipFinished marks successful completion of the in-flight clip.
type ClipFinished struct {
	Base
	ClipID string
}

// NewClipFinished creates a clip-finished event.
func NewClipFinished(clipID string) ClipFinished {
	return ClipFinished{Base: NewBase(KindClipFinished), ClipID: clipID}
}

// ClipFailed marks device-level failure of the in-flight clip.
type ClipFailed struct {
	Base
	ClipID string
	Err    error
}

// NewClipFailed creates a clip-failed event.
func NewClipFailed(clipID string, err error) ClipFailed {
	return ClipFailed{Base: NewBase(KindClipFailed), ClipID: clipID, Err: err}
}

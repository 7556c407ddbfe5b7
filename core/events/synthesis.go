package events

const (
	// KindClipReady identifies a finished synthesis request.
	KindClipReady Kind = "synthesis.clip_ready"
	// KindSynthesisFailed identifies a synthesis request that ended in an error.
	KindSynthesisFailed Kind = "synthesis.failed"
)

// ClipReady carries the synthesized audio for one reply, together with the
// generation the synthesis request was issued under. Results from a
// generation older than the current one were flushed while in flight and are
// dropped at dispatch.
type ClipReady struct {
	Base
	Audio       []byte
	ContentType string
	Generation  uint64
}

// NewClipReady creates a clip-ready event.
func NewClipReady(audio []byte, contentType string, generation uint64) ClipReady {
	return ClipReady{
		Base:        NewBase(KindClipReady),
		Audio:       audio,
		ContentType: contentType,
		Generation:  generation,
	}
}

// SynthesisFailed carries the terminal error of a synthesis request.
type SynthesisFailed struct {
	Base
	Err        error
	Generation uint64
}

// NewSynthesisFailed creates a synthesis-failed event.
func NewSynthesisFailed(err error, generation uint64) SynthesisFailed {
	return SynthesisFailed{Base: NewBase(KindSynthesisFailed), Err: err, Generation: generation}
}

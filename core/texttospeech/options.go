package texttospeech

import "github.com/tinvok/voxchat/core/audio"

// Result is one finished synthesis: the raw audio payload in the requested
// container and the content type the service reported for it.
type Result struct {
	Audio       []byte
	ContentType string
}

type SynthesisOptions struct {
	// VoiceID selects the synthesis voice. Empty means the client default.
	VoiceID string

	EncodingInfo audio.EncodingInfo
}

type SynthesisOption func(*SynthesisOptions)

func WithVoiceID(voiceID string) SynthesisOption {
	return func(o *SynthesisOptions) {
		o.VoiceID = voiceID
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) SynthesisOption {
	return func(o *SynthesisOptions) {
		if encodingInfo.IsZero() {
			return
		}

		o.EncodingInfo = encodingInfo
	}
}

package speechtotext

import "github.com/tinvok/voxchat/core/audio"

type RecognitionOptions struct {
	// TranscriptCallback is called once per finalized utterance, however
	// short, with the recognized text verbatim.
	TranscriptCallback func(transcript string)
	// ErrorCallback is called when the recognition session encounters an
	// error it cannot recover from.
	ErrorCallback func(error)

	EncodingInfo audio.EncodingInfo
}

type RecognitionOption func(*RecognitionOptions)

func WithTranscriptCallback(callback func(transcript string)) RecognitionOption {
	return func(o *RecognitionOptions) {
		o.TranscriptCallback = callback
	}
}

func WithErrorCallback(callback func(error)) RecognitionOption {
	return func(o *RecognitionOptions) {
		o.ErrorCallback = callback
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) RecognitionOption {
	return func(o *RecognitionOptions) {
		if encodingInfo.IsZero() {
			return
		}

		o.EncodingInfo = encodingInfo
	}
}

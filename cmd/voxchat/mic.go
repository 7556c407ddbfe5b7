package main

import (
	"context"
	"log/slog"

	"github.com/tinvok/voxchat/core/audio"
	"github.com/tinvok/voxchat/core/speechtotext"
	"github.com/tinvok/voxchat/core/speechtotext/deepgram"
)

// audioSource is a microphone backend: it delivers raw capture frames and
// describes their encoding.
type audioSource interface {
	Stream(ctx context.Context, onAudio func(audio []byte)) error
	EncodingInfo() audio.EncodingInfo
}

// micRecognizer binds a microphone backend to the recognition service:
// captured frames are pushed straight into the streaming session.
type micRecognizer struct {
	client *deepgram.Client
	source audioSource
}

func newMicRecognizer(client *deepgram.Client, source audioSource) *micRecognizer {
	return &micRecognizer{client: client, source: source}
}

func (m *micRecognizer) Start(ctx context.Context, opts ...speechtotext.RecognitionOption) error {
	opts = append(opts, speechtotext.WithEncodingInfo(m.source.EncodingInfo()))
	if err := m.client.Start(ctx, opts...); err != nil {
		return err
	}

	go func() {
		err := m.source.Stream(ctx, func(frame []byte) {
			if err := m.client.SendAudio(frame); err != nil {
				slog.Debug("dropping capture frame", "error", err)
			}
		})
		if err != nil {
			slog.Warn("microphone capture stopped", "error", err)
		}
	}()

	return nil
}

func (m *micRecognizer) Stop() error {
	return m.client.Stop()
}

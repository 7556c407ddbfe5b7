// Package miniaudio provides the local audio device layer: a playback sink
// for synthesized clips and a microphone capture feed for speech recognition.
package miniaudio

import (
	"context"
	"fmt"

	"github.com/gen2brain/malgo"
	"github.com/tinvok/voxchat/core/audio"
)

type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext
	playbackClient
	captureClient
}

func NewClient() (*Client, error) {
	audioCtx, err := malgo.InitContext(
		nil,
		malgo.ContextConfig{},
		func(message string) {},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}

	client := Client{
		audioContext: audioCtx,
	}

	if err := client.playbackClient.Init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize playback client: %w", err)
	}

	if err := client.playbackClient.Start(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to start playback device: %w", err)
	}

	if err := client.captureClient.Init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize capture client: %w", err)
	}

	return &client, nil
}

// Play queues one synthesized clip on the playback device and invokes onDone
// when the device has consumed the last of its samples. WAV containers are
// unwrapped to raw samples first.
func (c *Client) Play(clipAudio []byte, onDone func(error)) error {
	samples, err := wavData(clipAudio)
	if err != nil {
		return fmt.Errorf("failed to decode clip: %w", err)
	}

	if err := c.playbackClient.SendAudio(samples); err != nil {
		return fmt.Errorf("failed to queue clip audio: %w", err)
	}

	if onDone != nil {
		if err := c.playbackClient.Mark("", func(string) { onDone(nil) }); err != nil {
			return fmt.Errorf("failed to mark clip end: %w", err)
		}
	}

	return nil
}

// Stop drops whatever is queued on the playback device, pending end-of-clip
// callbacks included. The device itself keeps running so the next Play is
// immediate.
func (c *Client) Stop() error {
	c.playbackClient.ClearBuffer()
	return nil
}

// Stream starts delivering raw microphone audio until StopStream.
func (c *Client) Stream(_ context.Context, onAudio func(audio []byte)) error {
	return c.captureClient.Start(onAudio)
}

// StopStream halts microphone capture.
func (c *Client) StopStream() error {
	return c.captureClient.Stop()
}

func (c *Client) Close() {
	_ = c.captureClient.Uninit()
	_ = c.playbackClient.Uninit()
	_ = c.audioContext.Uninit()
	c.audioContext.Free()
}

// EncodingInfo describes the microphone feed, not the playback side.
func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.GetCaptureEncodingInfo()
}

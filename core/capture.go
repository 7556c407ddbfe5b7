package orchestration

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/tinvok/voxchat/core/events"
	"github.com/tinvok/voxchat/core/speechtotext"
)

// speechCapture wraps the configured continuous recognition client. The
// session runs for the whole conversation; the mic gate arms and disarms the
// facade, and transcripts recognized while disarmed are discarded so the
// assistant's own speech can never come back as user input.
type speechCapture struct {
	// client stores the configured recognition implementation.
	client Recognizer

	// armed reports whether finalized transcripts are currently forwarded.
	armed atomic.Bool
	// running reports whether the recognition session has been started.
	running atomic.Bool

	// onArmedChanged toggles the microphone indicator.
	onArmedChanged func(armed bool)

	emit eventEmitter
}

func newSpeechCapture(client Recognizer, emit eventEmitter) *speechCapture {
	if emit == nil {
		emit = noopEventEmitter
	}

	return &speechCapture{
		client:         client,
		onArmedChanged: func(bool) {},
		emit:           emit,
	}
}

func (c *speechCapture) set(client Recognizer) {
	if c != nil {
		c.client = client
	}
}

func (c *speechCapture) isConfigured() bool {
	return c != nil && c.client != nil
}

func (c *speechCapture) IsArmed() bool {
	return c != nil && c.armed.Load()
}

// Start opens the continuous recognition session. Without a configured
// client it fails with ErrCapabilityUnavailable and the caller degrades to a
// disabled-mic mode instead of crashing.
func (c *speechCapture) Start(ctx context.Context) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("%w: no speech recognition client configured", ErrCapabilityUnavailable)
	}

	if !c.running.CompareAndSwap(false, true) {
		return nil
	}

	err := c.client.Start(ctx,
		speechtotext.WithTranscriptCallback(func(transcript string) {
			if !c.armed.Load() {
				return
			}
			// Transcripts are normalized to lower case at the source so
			// downstream keyword matching and the conversation log agree.
			c.emit(events.NewTranscriptReceived(strings.ToLower(transcript)))
		}),
		speechtotext.WithErrorCallback(func(err error) {
			logger.Warn("speech recognition session error", "error", err)
		}),
	)
	if err != nil {
		c.running.Store(false)
		return fmt.Errorf("failed to start speech recognition: %w", err)
	}

	return nil
}

func (c *speechCapture) Arm() {
	if c == nil || !c.running.Load() {
		return
	}

	if c.armed.CompareAndSwap(false, true) {
		c.onArmedChanged(true)
	}
}

func (c *speechCapture) Disarm() {
	if c == nil {
		return
	}

	if c.armed.CompareAndSwap(true, false) {
		c.onArmedChanged(false)
	}
}

func (c *speechCapture) Close() error {
	if c == nil || c.client == nil {
		return nil
	}

	c.Disarm()
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}

	if err := c.client.Stop(); err != nil {
		return fmt.Errorf("failed to stop speech recognition client: %w", err)
	}

	return nil
}

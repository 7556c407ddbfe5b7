package miniaudio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/tinvok/voxchat/core/audio"
)

// captureClient records microphone input as signed 16-bit mono PCM at the
// shared capture rate and hands each period to the registered callback.
type captureClient struct {
	device *malgo.Device

	onAudio func(audio []byte)

	mu sync.Mutex
}

func (c *captureClient) Init(audioContext *malgo.AllocatedContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format)

	config := malgo.DefaultDeviceConfig(malgo.Capture)
	config.SampleRate = uint32(audio.CaptureSampleRate)
	config.Capture.Format = format
	config.Capture.Channels = 1
	config.Alsa.NoMMap = 1
	config.PerformanceProfile = malgo.LowLatency
	// 10ms periods keep recognizer latency low without starving ALSA.
	config.PeriodSizeInFrames = audio.CaptureSampleRate / 100
	config.Periods = 3

	device, err := malgo.InitDevice(audioContext.Context, config, malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			n := int(frameCount) * bytesPerFrame
			if n == 0 || len(pInput) < n {
				return
			}

			c.mu.Lock()
			deliver := c.onAudio
			c.mu.Unlock()
			if deliver == nil {
				return
			}

			// The device reuses pInput between callbacks; hand off a copy.
			chunk := make([]byte, n)
			copy(chunk, pInput)
			deliver(chunk)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize capture device: %w", err)
	}

	c.device = device
	return nil
}

func (c *captureClient) Start(onAudio func(audio []byte)) error {
	c.mu.Lock()
	if c.device == nil {
		c.mu.Unlock()
		return fmt.Errorf("device not initialized")
	}
	if c.device.IsStarted() {
		c.mu.Unlock()
		return nil
	}
	c.onAudio = onAudio
	device := c.device
	c.mu.Unlock()

	// Started outside the lock so the first data callback cannot deadlock
	// against it.
	if err := device.Start(); err != nil {
		c.mu.Lock()
		c.onAudio = nil
		c.mu.Unlock()
		return fmt.Errorf("failed to start capture device: %w", err)
	}

	return nil
}

func (c *captureClient) Stop() error {
	c.mu.Lock()
	if c.device == nil {
		c.mu.Unlock()
		return fmt.Errorf("device not initialized")
	}
	if !c.device.IsStarted() {
		c.mu.Unlock()
		return nil
	}
	device := c.device
	c.mu.Unlock()

	if err := device.Stop(); err != nil {
		return fmt.Errorf("failed to stop device: %w", err)
	}

	c.mu.Lock()
	c.onAudio = nil
	c.mu.Unlock()
	return nil
}

func (c *captureClient) Uninit() error {
	c.mu.Lock()
	device := c.device
	c.device = nil
	c.onAudio = nil
	c.mu.Unlock()

	// Uninit waits for in-flight data callbacks, which take the mutex.
	if device != nil {
		device.Uninit()
	}
	return nil
}

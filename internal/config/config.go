// Package config provides the configuration schema and loader for the
// voxchat assistant.
package config

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// AudioBackend selects the local audio device layer.
type AudioBackend string

const (
	// AudioBackendMiniaudio uses miniaudio for both capture and playback.
	AudioBackendMiniaudio AudioBackend = "miniaudio"

	// AudioBackendPortaudio uses portaudio for capture; playback still runs
	// through miniaudio.
	AudioBackendPortaudio AudioBackend = "portaudio"

	// AudioBackendNone disables local audio devices. The assistant degrades
	// to text input over HTTP.
	AudioBackendNone AudioBackend = "none"
)

// IsValid reports whether b is a recognised audio backend.
func (b AudioBackend) IsValid() bool {
	switch b {
	case AudioBackendMiniaudio, AudioBackendPortaudio, AudioBackendNone:
		return true
	}
	return false
}

// Config is the root configuration structure. It is typically loaded from a
// YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Providers    ProvidersConfig    `yaml:"providers"`
	Audio        AudioConfig        `yaml:"audio"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
}

// ServerConfig holds network and logging settings for the HTTP surface.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":3000").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// ProvidersConfig declares the external service for each pipeline stage.
type ProvidersConfig struct {
	Completion  ProviderEntry `yaml:"completion"`
	Recognition ProviderEntry `yaml:"recognition"`
	Synthesis   ProviderEntry `yaml:"synthesis"`
}

// ProviderEntry is the common configuration block shared by all provider
// stages.
type ProviderEntry struct {
	// APIKey is the authentication key for the provider's API. Empty values
	// fall back to the stage's environment variable.
	APIKey string `yaml:"api_key"`

	// Model selects a specific model within the provider. Empty uses the
	// client's built-in default.
	Model string `yaml:"model"`

	// VoiceID selects the synthesis voice. Only meaningful for the synthesis
	// stage.
	VoiceID string `yaml:"voice_id"`
}

// AudioConfig selects and tunes the local device layer.
type AudioConfig struct {
	Backend AudioBackend `yaml:"backend"`

	// BufferSize is the capture buffer size in frames. Only used by the
	// portaudio backend.
	BufferSize int `yaml:"buffer_size"`
}

// OrchestratorConfig tunes conversation behavior.
type OrchestratorConfig struct {
	// RequestTimeout bounds each completion and synthesis round-trip.
	RequestTimeout string `yaml:"request_timeout"`

	// InterruptKeywords replaces the built-in barge-in keyword set
	// ("stop", "cancel") when non-empty.
	InterruptKeywords []string `yaml:"interrupt_keywords"`
}

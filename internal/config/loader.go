package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted for API keys the file leaves empty.
const (
	EnvCompletionAPIKey  = "GEMINI_API_KEY"
	EnvRecognitionAPIKey = "DEEPGRAM_API_KEY"
	EnvSynthesisAPIKey   = "CARTESIA_API_KEY"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, fills API keys from the
// environment, and validates the result. Useful in tests where configs are
// constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}

	applyDefaults(cfg)
	applyEnvironment(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":3000"
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if cfg.Audio.Backend == "" {
		cfg.Audio.Backend = AudioBackendMiniaudio
	}
	if cfg.Audio.BufferSize == 0 {
		cfg.Audio.BufferSize = 512
	}
}

func applyEnvironment(cfg *Config) {
	if cfg.Providers.Completion.APIKey == "" {
		cfg.Providers.Completion.APIKey = os.Getenv(EnvCompletionAPIKey)
	}
	if cfg.Providers.Recognition.APIKey == "" {
		cfg.Providers.Recognition.APIKey = os.Getenv(EnvRecognitionAPIKey)
	}
	if cfg.Providers.Synthesis.APIKey == "" {
		cfg.Providers.Synthesis.APIKey = os.Getenv(EnvSynthesisAPIKey)
	}
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Audio.Backend != "" && !cfg.Audio.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("audio.backend %q is invalid; valid values: miniaudio, portaudio, none", cfg.Audio.Backend))
	}
	if cfg.Audio.BufferSize < 0 {
		errs = append(errs, fmt.Errorf("audio.buffer_size %d must not be negative", cfg.Audio.BufferSize))
	}

	if cfg.Orchestrator.RequestTimeout != "" {
		if d, err := time.ParseDuration(cfg.Orchestrator.RequestTimeout); err != nil {
			errs = append(errs, fmt.Errorf("orchestrator.request_timeout %q is not a duration: %v", cfg.Orchestrator.RequestTimeout, err))
		} else if d <= 0 {
			errs = append(errs, fmt.Errorf("orchestrator.request_timeout %q must be positive", cfg.Orchestrator.RequestTimeout))
		}
	}

	if cfg.Providers.Completion.APIKey == "" {
		slog.Warn("providers.completion.api_key is empty; chat replies will fail",
			"env", EnvCompletionAPIKey)
	}
	if cfg.Providers.Recognition.APIKey == "" {
		slog.Warn("providers.recognition.api_key is empty; running without speech capture",
			"env", EnvRecognitionAPIKey)
	}
	if cfg.Providers.Synthesis.APIKey == "" {
		slog.Warn("providers.synthesis.api_key is empty; replies will not be spoken",
			"env", EnvSynthesisAPIKey)
	}

	return errors.Join(errs...)
}

// Timeout returns the configured orchestrator timeout, or zero when unset,
// leaving the orchestrator default in place.
func (c OrchestratorConfig) Timeout() time.Duration {
	if c.RequestTimeout == "" {
		return 0
	}

	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0
	}
	return d
}

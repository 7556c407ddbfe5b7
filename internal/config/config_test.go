package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadFromReaderAppliesDefaults(t *testing.T) {
	t.Setenv(EnvCompletionAPIKey, "")
	t.Setenv(EnvRecognitionAPIKey, "")
	t.Setenv(EnvSynthesisAPIKey, "")

	cfg, err := LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("expected an empty config to load, got %v", err)
	}

	if cfg.Server.ListenAddr != ":3000" {
		t.Fatalf("expected default listen address :3000, got %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.LogLevel != LogInfo {
		t.Fatalf("expected default log level info, got %q", cfg.Server.LogLevel)
	}
	if cfg.Audio.Backend != AudioBackendMiniaudio {
		t.Fatalf("expected default audio backend miniaudio, got %q", cfg.Audio.Backend)
	}
	if cfg.Audio.BufferSize != 512 {
		t.Fatalf("expected default buffer size 512, got %d", cfg.Audio.BufferSize)
	}
	if got := cfg.Orchestrator.Timeout(); got != 0 {
		t.Fatalf("expected unset timeout to return 0, got %v", got)
	}
}

func TestLoadFromReaderParsesAFullConfig(t *testing.T) {
	input := `
server:
  listen_addr: ":8080"
  log_level: debug
providers:
  completion:
    api_key: gem-key
    model: gemini-1.5-pro
  recognition:
    api_key: dg-key
  synthesis:
    api_key: ca-key
    voice_id: narrator
audio:
  backend: portaudio
  buffer_size: 1024
orchestrator:
  request_timeout: 30s
  interrupt_keywords: [stop, cancel, enough]
`

	cfg, err := LoadFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}

	if cfg.Server.ListenAddr != ":8080" || cfg.Server.LogLevel != LogDebug {
		t.Fatalf("unexpected server config: %#v", cfg.Server)
	}
	if cfg.Providers.Completion.Model != "gemini-1.5-pro" {
		t.Fatalf("unexpected completion model %q", cfg.Providers.Completion.Model)
	}
	if cfg.Providers.Synthesis.VoiceID != "narrator" {
		t.Fatalf("unexpected voice id %q", cfg.Providers.Synthesis.VoiceID)
	}
	if cfg.Audio.Backend != AudioBackendPortaudio || cfg.Audio.BufferSize != 1024 {
		t.Fatalf("unexpected audio config: %#v", cfg.Audio)
	}
	if got := cfg.Orchestrator.Timeout(); got != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %v", got)
	}
	if len(cfg.Orchestrator.InterruptKeywords) != 3 {
		t.Fatalf("unexpected interrupt keywords: %v", cfg.Orchestrator.InterruptKeywords)
	}
}

func TestLoadFromReaderFillsAPIKeysFromEnvironment(t *testing.T) {
	t.Setenv(EnvCompletionAPIKey, "gem-env")
	t.Setenv(EnvRecognitionAPIKey, "dg-env")
	t.Setenv(EnvSynthesisAPIKey, "ca-env")

	input := `
providers:
  completion:
    api_key: gem-file
`

	cfg, err := LoadFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}

	if cfg.Providers.Completion.APIKey != "gem-file" {
		t.Fatalf("expected the file value to win, got %q", cfg.Providers.Completion.APIKey)
	}
	if cfg.Providers.Recognition.APIKey != "dg-env" {
		t.Fatalf("expected env fallback for recognition, got %q", cfg.Providers.Recognition.APIKey)
	}
	if cfg.Providers.Synthesis.APIKey != "ca-env" {
		t.Fatalf("expected env fallback for synthesis, got %q", cfg.Providers.Synthesis.APIKey)
	}
}

func TestLoadFromReaderRejectsUnknownFields(t *testing.T) {
	if _, err := LoadFromReader(strings.NewReader("serverr:\n  listen_addr: ':1'\n")); err == nil {
		t.Fatalf("expected unknown fields to be rejected")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"log level", "server:\n  log_level: loud\n"},
		{"audio backend", "audio:\n  backend: pulseaudio\n"},
		{"buffer size", "audio:\n  buffer_size: -1\n"},
		{"timeout format", "orchestrator:\n  request_timeout: soon\n"},
		{"timeout sign", "orchestrator:\n  request_timeout: -5s\n"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := LoadFromReader(strings.NewReader(c.input)); err == nil {
				t.Fatalf("expected %s to be rejected", c.name)
			}
		})
	}
}

func TestMissingAPIKeysAreNotFatal(t *testing.T) {
	t.Setenv(EnvCompletionAPIKey, "")
	t.Setenv(EnvRecognitionAPIKey, "")
	t.Setenv(EnvSynthesisAPIKey, "")

	if _, err := LoadFromReader(strings.NewReader("server:\n  log_level: warn\n")); err != nil {
		t.Fatalf("expected missing keys to load with a warning only, got %v", err)
	}
}

func TestTimeoutIgnoresMalformedDurations(t *testing.T) {
	c := OrchestratorConfig{RequestTimeout: "soon"}
	if got := c.Timeout(); got != 0 {
		t.Fatalf("expected malformed duration to return 0, got %v", got)
	}
}

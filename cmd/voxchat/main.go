package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	orchestration "github.com/tinvok/voxchat/core"
	"github.com/tinvok/voxchat/core/audio/miniaudio"
	"github.com/tinvok/voxchat/core/audio/portaudio"
	"github.com/tinvok/voxchat/core/completion/gemini"
	"github.com/tinvok/voxchat/core/speechtotext/deepgram"
	"github.com/tinvok/voxchat/core/texttospeech/cartesia"
	"github.com/tinvok/voxchat/internal/config"
	"github.com/tinvok/voxchat/internal/httpserver"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	configureLogging(cfg.Server.LogLevel)

	completer := gemini.NewClient(cfg.Providers.Completion.APIKey, cfg.Providers.Completion.Model)
	synthesizer := cartesia.NewClient(
		cfg.Providers.Synthesis.APIKey,
		cfg.Providers.Synthesis.Model,
		cfg.Providers.Synthesis.VoiceID,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recognizer, sink, closeAudio := buildAudioStack(cfg)
	defer closeAudio()

	opts := []orchestration.OrchestratorOption{
		orchestration.WithCompleter(completer),
		orchestration.WithSynthesizer(synthesizer),
		orchestration.WithSynthesisVoice(cfg.Providers.Synthesis.VoiceID),
	}
	if recognizer != nil {
		opts = append(opts, orchestration.WithRecognizer(recognizer))
	}
	if sink != nil {
		opts = append(opts, orchestration.WithAudioSink(sink))
	}
	if timeout := cfg.Orchestrator.Timeout(); timeout > 0 {
		opts = append(opts, orchestration.WithRequestTimeout(timeout))
	}
	if len(cfg.Orchestrator.InterruptKeywords) > 0 {
		opts = append(opts, orchestration.WithInterruptKeywords(cfg.Orchestrator.InterruptKeywords...))
	}

	orchestrator := orchestration.NewOrchestrator(opts...)
	defer orchestrator.Close()

	runOpts := []orchestration.RunOption{
		orchestration.WithStateChangedCallback(func(state orchestration.State) {
			slog.Debug("conversation state changed", "state", state)
		}),
		orchestration.WithTurnAppendedCallback(func(turn orchestration.Turn) {
			slog.Info("conversation turn", "role", turn.Role, "content", turn.Content)
		}),
		orchestration.WithErrorCallback(func(err error) {
			slog.Warn("conversation pipeline failure", "error", err)
		}),
	}
	if err := orchestrator.Run(ctx, runOpts...); err != nil {
		if !errors.Is(err, orchestration.ErrCapabilityUnavailable) {
			slog.Error("failed to start conversation", "error", err)
			os.Exit(1)
		}
		slog.Warn("running without speech capture; submit text via POST /api/transcript")
	}

	server := httpserver.New(cfg.Server.ListenAddr,
		httpserver.NewHandlers(completer, synthesizer, orchestrator))

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Server.ListenAddr)
		serverErrors <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	case sig := <-sigChan:
		slog.Info("shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

// loadConfig reads the file at path, falling back to defaults plus
// environment variables when the default file is absent.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) && path == "config.yaml" {
		return config.LoadFromReader(strings.NewReader(""))
	}
	return config.Load(path)
}

func configureLogging(level config.LogLevel) {
	var slogLevel slog.Level
	switch level {
	case config.LogDebug:
		slogLevel = slog.LevelDebug
	case config.LogWarn:
		slogLevel = slog.LevelWarn
	case config.LogError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel})))
}

// buildAudioStack assembles the local device layer and the recognition
// client. Any stage that cannot be built is returned nil: the orchestrator
// degrades instead of crashing.
func buildAudioStack(cfg *config.Config) (orchestration.Recognizer, orchestration.AudioSink, func()) {
	if cfg.Audio.Backend == config.AudioBackendNone {
		return nil, nil, func() {}
	}

	if cfg.Providers.Recognition.APIKey == "" {
		slog.Warn("no recognition api key; local audio disabled")
		return nil, nil, func() {}
	}

	switch cfg.Audio.Backend {
	case config.AudioBackendPortaudio:
		source, err := portaudio.NewClient(cfg.Audio.BufferSize)
		if err != nil {
			slog.Warn("failed to open portaudio capture; local audio disabled", "error", err)
			return nil, nil, func() {}
		}
		recognizer := newMicRecognizer(
			deepgram.NewClient(cfg.Providers.Recognition.APIKey), source)
		return recognizer, nil, source.Close

	default:
		devices, err := miniaudio.NewClient()
		if err != nil {
			slog.Warn("failed to open audio devices; local audio disabled", "error", err)
			return nil, nil, func() {}
		}
		recognizer := newMicRecognizer(
			deepgram.NewClient(cfg.Providers.Recognition.APIKey), devices)
		return recognizer, devices, devices.Close
	}
}

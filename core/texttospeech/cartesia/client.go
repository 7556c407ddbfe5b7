// Package cartesia implements the synthesis client against Cartesia's
// /tts/bytes REST API.
package cartesia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tinvok/voxchat/core/audio"
	"github.com/tinvok/voxchat/core/texttospeech"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/codes"
)

const (
	url        = "https://api.cartesia.ai/tts/bytes"
	apiVersion = "2024-06-10"

	// DefaultModel is used when the caller does not pick one.
	DefaultModel = "sonic-english"
	// DefaultVoiceID is used when neither the client nor the request selects
	// a voice.
	DefaultVoiceID = "f108a63d-d60b-4860-97ac-bef30bb81940"

	fallbackContentType = "audio/wav"

	// Synthesized payloads larger than this indicate a runaway request, not a
	// reply.
	maxAudioBytes = 64 << 20
)

type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	voiceID    string
}

// NewClient creates a Cartesia synthesis client. Empty model and voiceID
// select DefaultModel and DefaultVoiceID.
func NewClient(apiKey string, model string, voiceID string) *Client {
	if model == "" {
		model = DefaultModel
	}
	if voiceID == "" {
		voiceID = DefaultVoiceID
	}

	return &Client{
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		apiKey:     apiKey,
		model:      model,
		voiceID:    voiceID,
	}
}

// Synthesize renders text to one complete audio payload. The content type is
// taken from the response header, falling back to audio/wav when the service
// omits it.
func (c *Client) Synthesize(ctx context.Context, text string, opts ...texttospeech.SynthesisOption) (*texttospeech.Result, error) {
	if c == nil {
		return nil, fmt.Errorf("cartesia client is nil")
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("cartesia api key missing")
	}
	if text == "" {
		return nil, fmt.Errorf("nothing to synthesize")
	}

	ctx, span := tracer.Start(ctx, "cartesia synthesize bytes")
	defer span.End()

	options := texttospeech.SynthesisOptions{
		VoiceID:      c.voiceID,
		EncodingInfo: audio.GetDefaultEncodingInfo(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.VoiceID == "" {
		options.VoiceID = c.voiceID
	}

	reqBody := synthesisRequest{
		ModelID:    c.model,
		Transcript: text,
		Voice:      voice{Mode: "id", ID: options.VoiceID},
		OutputFormat: outputFormat{
			Container:  options.EncodingInfo.Container,
			Encoding:   options.EncodingInfo.Format.Name(),
			SampleRate: options.EncodingInfo.SampleRate,
		},
	}

	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(requestBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Cartesia-Version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("cartesia error: status=%d body=%s", resp.StatusCode, string(body))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	audioBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading audio payload: %w", err)
	}
	if len(audioBytes) == 0 {
		return nil, fmt.Errorf("cartesia returned no audio")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = fallbackContentType
	}

	logger.Debug("cartesia audio received",
		"voice_id", options.VoiceID, "bytes", len(audioBytes), "content_type", contentType)

	return &texttospeech.Result{Audio: audioBytes, ContentType: contentType}, nil
}

type synthesisRequest struct {
	ModelID      string       `json:"model_id"`
	Transcript   string       `json:"transcript"`
	Voice        voice        `json:"voice"`
	OutputFormat outputFormat `json:"output_format"`
}

type voice struct {
	Mode string `json:"mode"`
	ID   string `json:"id"`
}

type outputFormat struct {
	Container  string `json:"container"`
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
}

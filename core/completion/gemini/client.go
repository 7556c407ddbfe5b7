// Package gemini implements the completion client against Google's Gemini
// generateContent REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tinvok/voxchat/core/completion"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/codes"
)

const (
	baseURL = "https://generativelanguage.googleapis.com/v1beta/models"

	// DefaultModel is used when the caller does not pick one.
	DefaultModel = "gemini-1.5-flash-latest"

	roleUser = "user"
)

type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
}

// NewClient creates a Gemini completion client. An empty model selects
// DefaultModel. Request deadlines come from the caller's context.
func NewClient(apiKey string, model string) *Client {
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		apiKey:     apiKey,
		model:      model,
	}
}

// Complete sends prompt as a single user message and returns the first
// candidate's text, trimmed.
func (c *Client) Complete(ctx context.Context, prompt string, opts ...completion.PromptOption) (string, error) {
	if c == nil {
		return "", fmt.Errorf("gemini client is nil")
	}
	if c.apiKey == "" {
		return "", fmt.Errorf("gemini api key missing")
	}

	ctx, span := tracer.Start(ctx, "gemini generate content")
	defer span.End()

	options := completion.PromptOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	reqBody := generateContentRequest{
		Contents: []content{{
			Role:  roleUser,
			Parts: []part{{Text: prompt}},
		}},
	}
	if options.MaxOutputTokens > 0 || options.Temperature != nil {
		reqBody.GenerationConfig = &generationConfig{
			MaxOutputTokens: options.MaxOutputTokens,
			Temperature:     options.Temperature,
		}
	}

	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("error marshalling JSON: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(requestBodyBytes))
	if err != nil {
		return "", fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("gemini error: status=%d body=%s", resp.StatusCode, string(body))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	var responseBody generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&responseBody); err != nil {
		return "", fmt.Errorf("error unmarshalling JSON: %w", err)
	}

	reply := responseBody.firstText()
	logger.Debug("gemini reply received", "model", c.model, "length", len(reply))
	return strings.TrimSpace(reply), nil
}

type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason,omitempty"`
	} `json:"candidates"`
}

func (r generateContentResponse) firstText() string {
	if len(r.Candidates) == 0 {
		return ""
	}

	var text strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String()
}

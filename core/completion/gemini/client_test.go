package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/tinvok/voxchat/core/completion"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newStubbedClient(rt roundTripFunc) *Client {
	client := NewClient("test-key", "")
	client.httpClient = &http.Client{Transport: rt}
	return client
}

func TestCompleteSendsTheExpectedRequest(t *testing.T) {
	var captured *http.Request
	var capturedBody generateContentRequest

	client := newStubbedClient(func(req *http.Request) (*http.Response, error) {
		captured = req
		if err := json.NewDecoder(req.Body).Decode(&capturedBody); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		return jsonResponse(http.StatusOK,
			`{"candidates":[{"content":{"parts":[{"text":"  Paris.  "}]}}]}`), nil
	})

	reply, err := client.Complete(context.Background(), "what is the capital of france?",
		completion.WithMaxOutputTokens(1000),
		completion.WithTemperature(0.7),
	)
	if err != nil {
		t.Fatalf("expected completion to succeed, got %v", err)
	}
	if reply != "Paris." {
		t.Fatalf("expected trimmed reply %q, got %q", "Paris.", reply)
	}

	if captured.Method != http.MethodPost {
		t.Fatalf("expected a POST request, got %s", captured.Method)
	}
	if !strings.HasSuffix(captured.URL.Path, "/"+DefaultModel+":generateContent") {
		t.Fatalf("unexpected request path %q", captured.URL.Path)
	}
	if got := captured.Header.Get("x-goog-api-key"); got != "test-key" {
		t.Fatalf("expected the api key header, got %q", got)
	}

	if len(capturedBody.Contents) != 1 || capturedBody.Contents[0].Role != roleUser {
		t.Fatalf("unexpected contents: %#v", capturedBody.Contents)
	}
	if got := capturedBody.Contents[0].Parts[0].Text; got != "what is the capital of france?" {
		t.Fatalf("unexpected prompt %q", got)
	}
	if capturedBody.GenerationConfig == nil {
		t.Fatalf("expected a generation config")
	}
	if capturedBody.GenerationConfig.MaxOutputTokens != 1000 {
		t.Fatalf("expected max output tokens 1000, got %d", capturedBody.GenerationConfig.MaxOutputTokens)
	}
	if capturedBody.GenerationConfig.Temperature == nil || *capturedBody.GenerationConfig.Temperature != 0.7 {
		t.Fatalf("expected temperature 0.7, got %v", capturedBody.GenerationConfig.Temperature)
	}
}

func TestCompleteConcatenatesCandidateParts(t *testing.T) {
	client := newStubbedClient(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK,
			`{"candidates":[{"content":{"parts":[{"text":"Par"},{"text":"is."}]}}]}`), nil
	})

	reply, err := client.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("expected completion to succeed, got %v", err)
	}
	if reply != "Paris." {
		t.Fatalf("expected concatenated parts, got %q", reply)
	}
}

func TestCompleteReturnsEmptyForNoCandidates(t *testing.T) {
	client := newStubbedClient(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"candidates":[]}`), nil
	})

	reply, err := client.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("expected completion to succeed, got %v", err)
	}
	if reply != "" {
		t.Fatalf("expected an empty reply, got %q", reply)
	}
}

func TestCompleteReportsUpstreamStatusErrors(t *testing.T) {
	client := newStubbedClient(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusTooManyRequests, `{"error":{"message":"quota"}}`), nil
	})

	if _, err := client.Complete(context.Background(), "hello"); err == nil {
		t.Fatalf("expected an error for a non-200 status")
	} else if !strings.Contains(err.Error(), "status=429") {
		t.Fatalf("expected the status in the error, got %v", err)
	}
}

func TestCompleteRequiresAnAPIKey(t *testing.T) {
	client := NewClient("", "")

	if _, err := client.Complete(context.Background(), "hello"); err == nil {
		t.Fatalf("expected an error without an api key")
	}
}

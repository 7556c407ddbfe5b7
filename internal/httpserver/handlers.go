package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	orchestration "github.com/tinvok/voxchat/core"
	"github.com/tinvok/voxchat/core/audio"
	"github.com/tinvok/voxchat/core/completion"
)

// Generation policy for direct chat requests, matching the orchestrator's
// dialogue stage.
const (
	chatMaxOutputTokens = 1000
	chatTemperature     = 0.7
)

type Handlers struct {
	Completer    orchestration.Completer
	Synthesizer  orchestration.Synthesizer
	Orchestrator *orchestration.Orchestrator
}

func NewHandlers(completer orchestration.Completer, synthesizer orchestration.Synthesizer, orchestrator *orchestration.Orchestrator) Handlers {
	return Handlers{Completer: completer, Synthesizer: synthesizer, Orchestrator: orchestrator}
}

func (h Handlers) Register(e *echo.Echo) {
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.POST("/api/chat", h.chat)
	e.POST("/api/tts", h.tts)
	e.POST("/api/transcript", h.transcript)
	e.GET("/api/conversation", h.conversation)
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// chat proxies one message to the completion service, stateless with respect
// to the spoken conversation.
func (h Handlers) chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "message is required"})
	}

	if h.Completer == nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "no completion service configured"})
	}

	reply, err := h.Completer.Complete(c.Request().Context(), req.Message,
		completion.WithMaxOutputTokens(chatMaxOutputTokens),
		completion.WithTemperature(chatTemperature),
	)
	if err != nil {
		c.Echo().Logger.Errorf("chat completion failed: %v", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to generate response"})
	}
	if strings.TrimSpace(reply) == "" {
		c.Echo().Logger.Error("chat completion returned no content")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to generate response"})
	}

	return c.JSON(http.StatusOK, chatResponse{Response: reply})
}

type ttsRequest struct {
	Text string `json:"text"`
}

// tts renders text to one audio payload and returns the raw bytes.
func (h Handlers) tts(c echo.Context) error {
	var req ttsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "text is required"})
	}

	if h.Synthesizer == nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "no synthesis service configured"})
	}

	result, err := h.Synthesizer.Synthesize(c.Request().Context(), req.Text)
	if err != nil {
		c.Echo().Logger.Errorf("speech synthesis failed: %v", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to generate speech"})
	}

	contentType := result.ContentType
	if !audio.IsSupportedContentType(contentType) {
		c.Echo().Logger.Errorf("synthesis returned unsupported content type %q", contentType)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to generate speech"})
	}

	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.Blob(http.StatusOK, contentType, result.Audio)
}

type transcriptRequest struct {
	Transcript string `json:"transcript"`
}

// transcript injects an utterance into the running conversation, the text
// fallback for hosts without a microphone.
func (h Handlers) transcript(c echo.Context) error {
	var req transcriptRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	if h.Orchestrator == nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "no conversation is running"})
	}

	if err := h.Orchestrator.SubmitTranscript(req.Transcript); err != nil {
		if errors.Is(err, orchestration.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "transcript is required"})
		}
		c.Echo().Logger.Errorf("failed to submit transcript: %v", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to submit transcript"})
	}

	return c.NoContent(http.StatusAccepted)
}

type conversationResponse struct {
	State orchestration.State  `json:"state"`
	Turns []orchestration.Turn `json:"turns"`
}

func (h Handlers) conversation(c echo.Context) error {
	if h.Orchestrator == nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "no conversation is running"})
	}

	return c.JSON(http.StatusOK, conversationResponse{
		State: h.Orchestrator.State(),
		Turns: h.Orchestrator.Conversation(),
	})
}

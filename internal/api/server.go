// Package api exposes one generation session over HTTP. The session is
// single-threaded by construction, so the server serializes requests onto it
// with a mutex; concurrency lives in the HTTP layer only.
package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/prattle/internal/tokenizer"
)

// Session is the slice of the generation session the server needs.
type Session interface {
	Generate(prompt []int) ([][]int, error)
	BatchSize() int
	Model() string
}

// Server handles completion requests against one session.
type Server struct {
	mu      sync.Mutex
	session Session
	codec   tokenizer.Codec
	samples int // default samples per request
	clock   func() time.Time
}

// NewServer builds a server over a session and its codec. defaultSamples is
// used when a request does not ask for a specific count.
func NewServer(session Session, codec tokenizer.Codec, defaultSamples int) *Server {
	if defaultSamples <= 0 {
		defaultSamples = 1
	}
	return &Server{
		session: session,
		codec:   codec,
		samples: defaultSamples,
		clock:   time.Now,
	}
}

// Register mounts the API routes.
func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/completions", s.handleCompletions)
	e.GET("/healthz", s.handleHealth)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "model": s.session.Model()})
}

func (s *Server) handleCompletions(c *echo.Context) error {
	req, err := decodeJSON[CompletionRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return writeBadRequest(c, "prompt must not be empty")
	}

	samples := req.Samples
	if samples == 0 {
		samples = s.samples
	}
	batch := s.session.BatchSize()
	if samples <= 0 || samples%batch != 0 {
		return writeBadRequest(c, fmt.Sprintf("samples (%d) must be a positive multiple of batch size (%d)", samples, batch))
	}

	prompt, err := s.codec.Encode(req.Prompt)
	if err != nil {
		return writeBadRequest(c, fmt.Sprintf("encode prompt: %v", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	completions := make([]Completion, 0, samples)
	for round := 0; round < samples/batch; round++ {
		outs, err := s.session.Generate(prompt)
		if err != nil {
			return writeError(c, http.StatusInternalServerError, "generation_error", err.Error())
		}
		for _, cont := range outs {
			text, err := s.codec.Decode(cont)
			if err != nil {
				return writeError(c, http.StatusInternalServerError, "generation_error", fmt.Sprintf("decode sample: %v", err))
			}
			completions = append(completions, Completion{
				Index: len(completions) + 1,
				Text:  text,
			})
		}
	}

	return c.JSON(http.StatusOK, CompletionResponse{
		ID:          "cmpl_" + uuid.NewString(),
		Object:      "completion",
		Created:     s.clock().Unix(),
		Model:       s.session.Model(),
		Completions: completions,
	})
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var v T
	data, err := io.ReadAll(r)
	if err != nil {
		return v, fmt.Errorf("read request body: %w", err)
	}
	if len(data) == 0 {
		return v, fmt.Errorf("empty request body")
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("parse request body: %w", err)
	}
	return v, nil
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
		},
	})
}

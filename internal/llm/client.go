// Package llm talks to the Ollama model server and turns its free-form replies into
// validated ratings and suggestions.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/schema"
)

// ErrTimeout matches every *TimeoutError through errors.Is.
var ErrTimeout = errors.New("model request timed out")

// TimeoutError reports that a single model call ran out of its own time budget.
type TimeoutError struct {
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("model request timed out after %s", e.Budget)
}

// Is makes errors.Is(err, ErrTimeout) hold.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// TransportError covers connection failures and non-2xx replies.
// StatusCode is zero when no response was received.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("model server returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("model server unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError means the server answered but the envelope was unusable.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid model response: %s: %v", e.Reason, e.Err)
	}
	return "invalid model response: " + e.Reason
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// maxReplyBytes caps the generate envelope read into memory.
const maxReplyBytes = 8 << 20

// Generator sends a prompt and returns the raw model text.
type Generator interface {
	Generate(ctx context.Context, prompt string, timeout time.Duration) (string, error)
}

// Client is the HTTP client for Ollama's generate and tags endpoints.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	model         string
	temperature   float64
	healthTimeout time.Duration
	detailed      bool
	maxReply      int64
	logger        *slog.Logger
}

var (
	_ Generator            = &Client{} // Compile-time check
	_ contract.ModelProber = &Client{} // Compile-time check
)

// NewClient creates a model client from the validated configuration.
func NewClient(cfg *contract.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = contract.DiscardLogger()
	}
	return &Client{
		httpClient:    &http.Client{},
		baseURL:       strings.TrimRight(cfg.OllamaURL, "/"),
		model:         cfg.Model,
		temperature:   cfg.Temperature,
		healthTimeout: cfg.HealthTimeout,
		detailed:      cfg.DetailedLogging,
		maxReply:      maxReplyBytes,
		logger:        logger,
	}
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Format  string          `json:"format"`
	Options generateOptions `json:"options"`
	Stream  bool            `json:"stream"`
}

type generateResponse struct {
	Response *string `json:"response"`
}

// Generate posts one non-streaming prompt to /api/generate.
// The timeout applies to this call only; cancelling ctx returns ctx's error instead.
func (c *Client) Generate(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Format:  "json",
		Options: generateOptions{Temperature: c.temperature},
		Stream:  false,
	})
	if err != nil {
		return "", err
	}

	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if c.detailed {
		c.logger.Debug("model request", "model", c.model, "timeout", timeout, "prompt", prompt)
	}
	start := time.Now()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.classify(ctx, callCtx, timeout, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, c.maxReply+1))
	if err != nil {
		return "", c.classify(ctx, callCtx, timeout, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &TransportError{StatusCode: resp.StatusCode, Body: excerpt(string(payload), 512)}
	}
	if int64(len(payload)) > c.maxReply {
		return "", &ProtocolError{Reason: fmt.Sprintf("envelope larger than %d bytes", c.maxReply)}
	}

	var envelope generateResponse
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return "", &ProtocolError{Reason: "undecodable envelope", Err: err}
	}
	if envelope.Response == nil {
		return "", &ProtocolError{Reason: "missing 'response' field"}
	}
	if *envelope.Response == "" {
		return "", &ProtocolError{Reason: "empty 'response' field"}
	}

	c.logger.Debug("model response received", "elapsed", time.Since(start), "bytes", len(*envelope.Response))
	if c.detailed {
		c.logger.Debug("model response", "response", *envelope.Response)
	}
	return *envelope.Response, nil
}

// classify maps a failed call onto parent cancellation, the per-call timeout or a transport error.
func (c *Client) classify(parent, call context.Context, timeout time.Duration, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(call.Err(), context.DeadlineExceeded) {
		c.logger.Warn("model request timed out", "timeout", timeout)
		return &TimeoutError{Budget: timeout}
	}
	return &TransportError{Err: err}
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// CheckHealth lists the installed models through /api/tags.
func (c *Client) CheckHealth(ctx context.Context) schema.OllamaStatus {
	status := schema.OllamaStatus{BaseURL: c.baseURL, Model: c.model}

	if c.healthTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.healthTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		status.Error = fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return status
	}
	status.Reachable = true

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		status.Error = fmt.Sprintf("undecodable tags response: %v", err)
		return status
	}
	for _, m := range tags.Models {
		status.Models = append(status.Models, m.Name)
		if m.Name == c.model || strings.HasPrefix(m.Name, c.model+":") {
			status.ModelAvailable = true
		}
	}
	return status
}

func excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

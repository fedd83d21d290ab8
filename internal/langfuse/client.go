// Package langfuse is a small HTTP client for the Langfuse ingestion and
// prompt APIs. Coaching insights are recorded as traces, with the sync score
// attached as a score. Without credentials the client is a no-op.
package langfuse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/blaisecz/cognitive-sync/pkg/logger"
	"github.com/google/uuid"
)

const requestTimeout = 5 * time.Second

// Client records LLM generations in Langfuse.
type Client interface {
	IsEnabled() bool
	// CreateTrace records a trace and returns its ID. The ID is returned
	// even when delivery fails so callers can still correlate.
	CreateTrace(ctx context.Context, in TraceInput) (string, error)
	// CreateScore attaches a numeric score to a trace.
	CreateScore(ctx context.Context, in ScoreInput) error
}

// TraceInput describes one trace.
type TraceInput struct {
	ID       string // generated when empty
	UserID   string
	Name     string // e.g. "cognitive-insights"
	Input    any
	Output   any
	Tags     []string
	Metadata map[string]any
}

// ScoreInput describes a score on an existing trace.
type ScoreInput struct {
	TraceID string
	Name    string // e.g. "sync_score"
	Value   float64
	Comment string
}

// Config holds the Langfuse connection settings.
type Config struct {
	BaseURL     string
	PublicKey   string
	SecretKey   string
	Environment string
	Logger      *logger.Logger
}

// Enabled reports whether every credential is set.
func (c Config) Enabled() bool {
	return c.BaseURL != "" && c.PublicKey != "" && c.SecretKey != ""
}

type client struct {
	cfg        Config
	log        *logger.Logger
	httpClient *http.Client
}

// NewClient creates a client. Missing credentials yield a disabled client.
func NewClient(cfg Config) Client {
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	if cfg.Enabled() {
		log.Info("langfuse enabled", "base_url", cfg.BaseURL, "environment", cfg.Environment)
	} else {
		log.Info("langfuse disabled", "reason", missingSetting(cfg))
	}

	return &client{
		cfg:        cfg,
		log:        log,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func missingSetting(cfg Config) string {
	switch {
	case cfg.BaseURL == "":
		return "LANGFUSE_BASE_URL is empty"
	case cfg.PublicKey == "":
		return "LANGFUSE_PUBLIC_KEY is empty"
	case cfg.SecretKey == "":
		return "LANGFUSE_SECRET_KEY is empty"
	default:
		return ""
	}
}

func (c *client) IsEnabled() bool {
	return c.cfg.Enabled()
}

func (c *client) CreateTrace(ctx context.Context, in TraceInput) (string, error) {
	if !c.IsEnabled() {
		return "", nil
	}

	traceID := in.ID
	if traceID == "" {
		traceID = uuid.New().String()
	}

	metadata := make(map[string]any, len(in.Metadata)+1)
	for k, v := range in.Metadata {
		metadata[k] = v
	}
	if c.cfg.Environment != "" {
		metadata["environment"] = c.cfg.Environment
	}

	err := c.send(ctx, newEvent("trace-create", traceBody{
		ID:       traceID,
		Name:     in.Name,
		UserID:   in.UserID,
		Input:    in.Input,
		Output:   in.Output,
		Tags:     in.Tags,
		Metadata: metadata,
	}))
	if err != nil {
		return traceID, fmt.Errorf("create trace: %w", err)
	}
	return traceID, nil
}

func (c *client) CreateScore(ctx context.Context, in ScoreInput) error {
	if !c.IsEnabled() {
		return nil
	}

	err := c.send(ctx, newEvent("score-create", scoreBody{
		ID:      uuid.New().String(),
		TraceID: in.TraceID,
		Name:    in.Name,
		Value:   in.Value,
		Comment: in.Comment,
	}))
	if err != nil {
		return fmt.Errorf("create score: %w", err)
	}
	return nil
}

func newEvent(kind string, body any) ingestionEvent {
	return ingestionEvent{
		ID:        uuid.New().String(),
		Type:      kind,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Body:      body,
	}
}

func (c *client) send(ctx context.Context, events ...ingestionEvent) error {
	body, err := json.Marshal(batchPayload{Batch: events})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/public/ingestion", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.PublicKey, c.cfg.SecretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("ingestion failed with status %d", resp.StatusCode)
	}
	return nil
}

type batchPayload struct {
	Batch []ingestionEvent `json:"batch"`
}

type ingestionEvent struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Body      any    `json:"body"`
}

type traceBody struct {
	ID       string         `json:"id"`
	Name     string         `json:"name,omitempty"`
	UserID   string         `json:"userId,omitempty"`
	Input    any            `json:"input,omitempty"`
	Output   any            `json:"output,omitempty"`
	Tags     []string       `json:"tags,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type scoreBody struct {
	ID      string  `json:"id"`
	TraceID string  `json:"traceId"`
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Comment string  `json:"comment,omitempty"`
}

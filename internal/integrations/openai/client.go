package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"code-agent/internal/config"
	"code-agent/internal/domain"
)

// chatRequest is the minimal request shape for the Chat Completions endpoint.
// Model is omitted on the Azure path, where the deployment id in the URL
// selects the model.
type chatRequest struct {
	Model       string               `json:"model,omitempty"`
	Messages    []domain.ChatMessage `json:"messages"`
	Temperature *float64             `json:"temperature,omitempty"`
	MaxTokens   *int                 `json:"max_tokens,omitempty"`
}

// chatResponse is the minimal response shape returned by the Chat Completions
// endpoint. Only the first choice is consumed.
type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index   int                `json:"index"`
		Message domain.ChatMessage `json:"message"`
	} `json:"choices"`
}

type embeddingRequest struct {
	Model string   `json:"model,omitempty"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// ChatOptions carries per-call overrides. Zero values defer to the
// configuration: empty Model means cfg.FastLLMModel, nil Temperature means
// cfg.Temperature, zero MaxTokens is not sent at all.
type ChatOptions struct {
	Model       string
	Temperature *float64
	MaxTokens   int
}

// Client is a focused client for OpenAI-compatible chat-completion and
// embedding endpoints, with Azure deployment routing when configured.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Client over the given read-only configuration.
func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("openai: config must not be nil")
	}
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		return nil, errors.New("openai: api key must not be empty")
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// ChatCompletion sends an ordered conversation to the completion endpoint and
// returns the text content of the first returned choice. Faults are returned
// as *GatewayError after logging; no retry is performed here, callers own
// retry policy.
func (c *Client) ChatCompletion(ctx context.Context, messages []domain.ChatMessage, opts ChatOptions) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("openai: messages must not be empty")
	}

	model := opts.Model
	if model == "" {
		model = c.cfg.FastLLMModel
	}
	temperature := c.cfg.Temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}

	payload := chatRequest{
		Messages:    messages,
		Temperature: &temperature,
	}
	if opts.MaxTokens > 0 {
		payload.MaxTokens = &opts.MaxTokens
	}

	endpoint, err := c.endpointFor(model, "chat/completions")
	if err != nil {
		return "", err
	}
	if !c.cfg.UseAzure {
		payload.Model = model
	}

	requestID := uuid.NewString()
	start := time.Now()
	if c.cfg.DebugMode {
		c.logger.Debug("creating chat completion",
			"request_id", requestID,
			"model", model,
			"temperature", temperature,
			"max_tokens", opts.MaxTokens,
		)
	}

	raw, err := c.postJSON(ctx, endpoint, payload)
	if err != nil {
		gwErr := classify(model, err)
		c.logFault(gwErr, requestID)
		return "", gwErr
	}

	var resp chatResponse
	if decErr := json.Unmarshal(raw, &resp); decErr != nil {
		return "", &GatewayError{Kind: KindProviderFault, Model: model, Err: fmt.Errorf("decode response: %w", decErr)}
	}
	if len(resp.Choices) == 0 {
		return "", &GatewayError{Kind: KindNoResponse, Model: model}
	}

	if c.cfg.DebugMode {
		c.logger.Debug("chat completion finished",
			"request_id", requestID,
			"model", model,
			"duration", time.Since(start),
		)
	}
	return resp.Choices[0].Message.Content, nil
}

// CreateEmbedding returns the embedding vector for the given text, taken from
// the first data entry of the response. Fault policy matches ChatCompletion.
func (c *Client) CreateEmbedding(ctx context.Context, text string) ([]float64, error) {
	model := c.cfg.EmbeddingModel

	payload := embeddingRequest{Input: []string{text}}
	endpoint, err := c.endpointFor(model, "embeddings")
	if err != nil {
		return nil, err
	}
	if !c.cfg.UseAzure {
		payload.Model = model
	}

	requestID := uuid.NewString()
	raw, err := c.postJSON(ctx, endpoint, payload)
	if err != nil {
		gwErr := classify(model, err)
		c.logFault(gwErr, requestID)
		return nil, gwErr
	}

	var resp embeddingResponse
	if decErr := json.Unmarshal(raw, &resp); decErr != nil {
		return nil, &GatewayError{Kind: KindProviderFault, Model: model, Err: fmt.Errorf("decode response: %w", decErr)}
	}
	if len(resp.Data) == 0 {
		return nil, &GatewayError{Kind: KindNoResponse, Model: model}
	}
	return resp.Data[0].Embedding, nil
}

// endpointFor builds the request URL for one API operation. The Azure path
// resolves the model name to a deployment id; the direct path keeps the model
// name in the request body instead.
func (c *Client) endpointFor(model, operation string) (string, error) {
	if c.cfg.UseAzure {
		deployment, err := c.cfg.AzureDeploymentIDForModel(model)
		if err != nil {
			return "", err
		}
		base := strings.TrimRight(c.cfg.AzureAPIBase, "/")
		return fmt.Sprintf("%s/openai/deployments/%s/%s?api-version=%s",
			base, url.PathEscape(deployment), operation, url.QueryEscape(c.cfg.AzureAPIVersion)), nil
	}
	base := strings.TrimRight(c.cfg.OpenAIAPIBase, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	if !strings.HasSuffix(base, "/v1") {
		base += "/v1"
	}
	return base + "/" + operation, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.UseAzure {
		req.Header.Set("api-key", c.cfg.OpenAIAPIKey)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIAPIKey)
	}

	res, err := c.resolvedHTTPClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        endpoint,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}

// resolvedHTTPClient returns the configured HTTP client, or a default with a
// 60s timeout if none was set (e.g. in tests that nil out the field).
func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}

func (c *Client) logFault(err *GatewayError, requestID string) {
	switch err.Kind {
	case KindRateLimited:
		c.logger.Warn("provider rate limit reached", "request_id", requestID, "model", err.Model, "err", err.Err)
	default:
		c.logger.Error("provider request failed", "request_id", requestID, "model", err.Model, "err", err.Err)
	}
}

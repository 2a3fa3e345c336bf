package screenshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the production Snapdock API endpoint.
	DefaultBaseURL = "https://api.snapdock.io"

	// DefaultTimeout bounds every API call unless overridden with WithTimeout.
	DefaultTimeout = 60 * time.Second

	userAgent = "snapdock-go/1.0.0"

	screenshotPath = "/v1/screenshot"
	batchPath      = "/v1/batch"
	usagePath      = "/v1/usage"
)

// Client wraps the Snapdock screenshot API
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Snapdock client. It fails before any network
// activity when the API key is empty.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, &ValidationError{
			APIError: APIError{Code: "MISSING_API_KEY", Message: "API key is required"},
			Field:    "apiKey",
		}
	}

	client := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		timeout: DefaultTimeout,
		logger:  zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	// Ensure base URL ends without slash
	client.baseURL = strings.TrimRight(client.baseURL, "/")

	if client.httpClient == nil {
		client.httpClient = &http.Client{}
	}

	return client, nil
}

// do performs a single authenticated API request and returns the raw
// response body together with the response headers. Non-2xx responses are
// turned into typed errors by classifyError and returned as-is; they are
// never wrapped a second time here.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, http.Header, error) {
	requestURL := c.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	// Every call gets its own deadline; cancel releases the timer on all
	// exit paths.
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().
		Str("method", method).
		Str("url", requestURL).
		Msg("Making Snapdock API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, &NetworkError{
				APIError: APIError{
					Code:    "TIMEOUT",
					Message: fmt.Sprintf("request timed out after %s", c.timeout),
				},
				Err: err,
			}
		}
		return nil, nil, &NetworkError{
			APIError: APIError{Code: "NETWORK_ERROR", Message: err.Error()},
			Err:      err,
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &NetworkError{
			APIError: APIError{
				Code:    "NETWORK_ERROR",
				Message: fmt.Sprintf("failed to read response body: %v", err),
			},
			Err: err,
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, nil, classifyError(resp.StatusCode, data, resp.Header)
	}

	return data, resp.Header, nil
}

// Capture renders a single screenshot and returns the raw image bytes
// together with the response metadata.
func (c *Client) Capture(ctx context.Context, opts CaptureOptions) (*CaptureResult, error) {
	opts.Options = opts.Options.withDefaults()

	data, header, err := c.do(ctx, http.MethodPost, screenshotPath, opts)
	if err != nil {
		return nil, err
	}

	contentType := header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	durationMS := 0
	if v := header.Get("X-Duration-Ms"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			durationMS = parsed
		}
	}

	result := &CaptureResult{
		Data:        data,
		ContentType: contentType,
		Size:        len(data),
		DurationMS:  durationMS,
		Cached:      header.Get("X-Cache") == "HIT",
	}

	c.logger.Debug().
		Str("url", opts.URL).
		Int("size", result.Size).
		Int("duration_ms", result.DurationMS).
		Bool("cached", result.Cached).
		Msg("Captured screenshot")

	return result, nil
}

// CaptureBatch submits up to MaxBatchURLs targets in a single request. The
// server resolves every URL and reports per-item outcomes; the decoded
// result is returned unchanged.
func (c *Client) CaptureBatch(ctx context.Context, opts BatchOptions) (*BatchResult, error) {
	opts.Options = opts.Options.withDefaults()

	data, _, err := c.do(ctx, http.MethodPost, batchPath, opts)
	if err != nil {
		return nil, err
	}

	var result BatchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse batch response: %w", err)
	}

	c.logger.Debug().
		Int("total", result.Summary.Total).
		Int("succeeded", result.Summary.Succeeded).
		Int("failed", result.Summary.Failed).
		Msg("Batch capture completed")

	return &result, nil
}

// Usage returns the current quota consumption and plan limits.
func (c *Client) Usage(ctx context.Context) (*UsageSnapshot, error) {
	data, _, err := c.do(ctx, http.MethodGet, usagePath, nil)
	if err != nil {
		return nil, err
	}

	var snapshot UsageSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse usage response: %w", err)
	}

	return &snapshot, nil
}

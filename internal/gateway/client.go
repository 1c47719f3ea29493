// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway provides the HTTP client for the chat gateway API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jeranaias/tickerchat/internal/logging"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the gateway client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnavailable
	ErrTypeTimeout
	ErrTypeRateLimited
	ErrTypeQuotaExceeded
	ErrTypeInvalidResponse
	ErrTypeConnection
)

// Sentinel errors for easy checking.
var (
	ErrUnavailable   = &ClientError{Type: ErrTypeUnavailable, Message: "gateway is not reachable"}
	ErrTimeout       = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrRateLimited   = &ClientError{Type: ErrTypeRateLimited, Message: "too many requests, slow down"}
	ErrQuotaExceeded = &ClientError{Type: ErrTypeQuotaExceeded, Message: "usage quota exceeded"}
)

// IsRateLimited checks if an error is a rate limit rejection.
func IsRateLimited(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeRateLimited
	}
	return errors.Is(err, ErrRateLimited)
}

// IsQuotaExceeded checks if an error is a quota rejection.
func IsQuotaExceeded(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeQuotaExceeded
	}
	return errors.Is(err, ErrQuotaExceeded)
}

// IsUnavailable checks if an error indicates the gateway is unreachable.
func IsUnavailable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUnavailable
	}
	return errors.Is(err, ErrUnavailable)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the gateway client.
type ClientConfig struct {
	// BaseURL is the gateway root URL (default: http://127.0.0.1:8000)
	BaseURL string

	// Timeout for non-streaming requests (default: 30s)
	Timeout time.Duration

	// StreamTimeout bounds a full streaming turn (default: 2m, 0 = none)
	StreamTimeout time.Duration

	// MaxRetries for idempotent requests (default: 2)
	MaxRetries int

	// RetryDelay between retries (default: 500ms)
	RetryDelay time.Duration

	// RequestsPerSecond rate-limits outgoing requests (default: 4, 0 = unlimited)
	RequestsPerSecond float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "http://127.0.0.1:8000",
		Timeout:           30 * time.Second,
		StreamTimeout:     2 * time.Minute,
		MaxRetries:        2,
		RetryDelay:        500 * time.Millisecond,
		RequestsPerSecond: 4,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// modelCacheTTL bounds how long the model catalog is reused.
const modelCacheTTL = time.Hour

// Client handles communication with the chat gateway.
//
// The Client is thread-safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter

	// Model catalog cache
	cacheMu     sync.Mutex
	modelCache  []ModelInfo
	cacheLoaded time.Time
}

// NewClient creates a new gateway client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new gateway client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8000"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.StreamTimeout == 0 {
		config.StreamTimeout = 2 * time.Minute
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 2
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = 500 * time.Millisecond
	}

	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(limit, 2),
	}
}

// Config returns the client configuration.
func (c *Client) Config() *ClientConfig {
	return c.config
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckReachable verifies that the gateway answers at all.
func (c *Client) CheckReachable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/v1/health", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return &ClientError{
			Type:    ErrTypeUnavailable,
			Message: "gateway unhealthy: " + resp.Status,
		}
	}
	return nil
}

// =============================================================================
// MODEL OPERATIONS
// =============================================================================

// ListModels retrieves the model catalog, serving a cached copy for up to
// an hour. The catalog changes rarely and the UI asks for it on every
// session open.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	c.cacheMu.Lock()
	if c.modelCache != nil && time.Since(c.cacheLoaded) < modelCacheTTL {
		cached := make([]ModelInfo, len(c.modelCache))
		copy(cached, c.modelCache)
		c.cacheMu.Unlock()
		return cached, nil
	}
	c.cacheMu.Unlock()

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/v1/ai/models", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.doWithRetry(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return nil, err
	}

	var models []ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode model list", Cause: err}
	}

	c.cacheMu.Lock()
	c.modelCache = models
	c.cacheLoaded = time.Now()
	c.cacheMu.Unlock()

	return models, nil
}

// SaveModelSelection persists the chosen model for this session. Failures
// are logged and swallowed; the selection still applies locally.
func (c *Client) SaveModelSelection(ctx context.Context, sessionID, modelID string) {
	body, err := json.Marshal(SaveModelRequest{SessionID: sessionID, Model: modelID})
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/v1/config/model", bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.L().Debug("model selection save failed", zap.Error(err))
		return
	}
	drainAndClose(resp.Body)
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// StreamCallback is called for each chunk received during streaming.
type StreamCallback func(chunk StreamChunk)

// ChatStream sends a chat turn and calls the callback for each chunk.
// The callback is called synchronously in the order chunks are received.
// Returns when streaming is complete or an error occurs.
func (c *Client) ChatStream(ctx context.Context, reqData ChatRequest, callback StreamCallback) error {
	endpoint := c.config.BaseURL + "/api/v1/stock/chat/" + url.PathEscape(reqData.Ticker)
	return c.stream(ctx, endpoint, reqData, callback)
}

// DeepAnalysisStream requests a deep analysis for ticker and streams the
// result through the callback.
func (c *Client) DeepAnalysisStream(ctx context.Context, ticker string, reqData DeepAnalysisRequest, callback StreamCallback) error {
	endpoint := c.config.BaseURL + "/api/v1/stock/chat/" + url.PathEscape(ticker) + "/deep"
	return c.stream(ctx, endpoint, reqData, callback)
}

// stream issues the POST and pumps the response through a StreamReader.
func (c *Client) stream(ctx context.Context, endpoint string, payload any, callback StreamCallback) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	if c.config.StreamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.StreamTimeout)
		defer cancel()
	}

	// Use a client without timeout for streaming (timeout handled via context)
	streamClient := &http.Client{}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := streamClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return ErrTimeout
		}
		return ErrUnavailable
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return err
	}

	reader := NewStreamReader(resp.Body)
	if err := reader.Process(ctx, callback); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return err
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// wait applies the client-side rate limiter.
func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return &ClientError{Type: ErrTypeConnection, Message: "rate limiter interrupted", Cause: err}
	}
	return nil
}

// doWithRetry retries idempotent requests on transport errors.
func (c *Client) doWithRetry(req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(c.config.RetryDelay):
			}
		}

		resp, err := c.httpClient.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
	}
	return nil, lastErr
}

// statusError maps a non-2xx response to a typed client error.
func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusForbidden, http.StatusPaymentRequired:
		return ErrQuotaExceeded
	}

	var gwErr gatewayError
	if err := json.NewDecoder(resp.Body).Decode(&gwErr); err == nil && gwErr.message() != "" {
		return &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: gwErr.message(),
		}
	}
	return &ClientError{
		Type:    ErrTypeInvalidResponse,
		Message: "request failed: " + resp.Status,
	}
}

// Helper to drain response body
func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, r)
	r.Close()
}

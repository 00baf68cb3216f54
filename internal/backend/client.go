// Package backend talks to the Vibella chat server over HTTP/JSON.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	chatPath   = "/chat"
	healthPath = "/"

	// RequestIDHeader carries the per-request id for backend log correlation.
	RequestIDHeader = "X-Request-ID"
)

var ErrMissingResponse = errors.New("response field missing from reply")

type ChatRequest struct {
	Message string `json:"message"`
	Image   string `json:"image,omitempty"`
}

type ChatResponse struct {
	Response *string `json:"response"`
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// HTTPError is returned for non-2xx replies from the chat endpoint.
type HTTPError struct {
	StatusCode int
	Detail     string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client. nil is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets a per-request timeout. Zero means none. The caller's
// http.Client is copied, never modified.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = timeout
		c.httpClient = &hc
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: NewHTTPClient(0),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewHTTPClient builds the transport used for backend calls.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Chat posts req to /chat and returns the reply text.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)

	logger := c.logger.With(zap.String("request_id", requestID))
	logger.Debug("Sending chat request",
		zap.Int("message_len", len(req.Message)),
		zap.Bool("has_image", req.Image != ""))

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Warn("Chat request failed", zap.Error(err))
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	logger.Debug("Chat response received",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := decodeHTTPError(resp)
		logger.Warn("Chat request rejected",
			zap.Int("status", httpErr.StatusCode),
			zap.String("detail", httpErr.Detail))
		return "", httpErr
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if chatResp.Response == nil {
		return "", ErrMissingResponse
	}
	return *chatResp.Response, nil
}

// Ping issues GET / and reports whether the backend answered with 2xx.
func (c *Client) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("health request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{StatusCode: resp.StatusCode}
	}
	return nil
}

// Close releases idle keep-alive connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func decodeHTTPError(resp *http.Response) *HTTPError {
	httpErr := &HTTPError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return httpErr
	}

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return httpErr
	}

	raw := bytes.TrimSpace(body.Detail)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return httpErr
	}

	var detail string
	if err := json.Unmarshal(raw, &detail); err == nil {
		httpErr.Detail = detail
	} else {
		httpErr.Detail = string(raw)
	}
	return httpErr
}

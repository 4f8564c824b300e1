package downstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aescanero/demo-backend/pkg/ports"
	"go.uber.org/zap"
)

const (
	opHealth = "health"
	opQuery  = "query"

	maxResponseBytes = 10 << 20
)

// Config holds downstream client configuration
type Config struct {
	BaseURL string
	// Transport overrides http.DefaultTransport, mainly for tests
	Transport http.RoundTripper
	Metrics   ports.MetricsCollector
	Logger    *zap.Logger
}

// Client talks to the downstream database service
type Client struct {
	baseURL   string
	endpoint  string
	transport http.RoundTripper
	metrics   ports.MetricsCollector
	logger    *zap.Logger

	once       sync.Once
	httpClient *http.Client
}

// QueryResult is the relayed downstream response
type QueryResult struct {
	StatusCode int
	Body       json.RawMessage
}

// NewClient creates a client; no connection is made until the first call
func NewClient(cfg *Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		endpoint:  strings.TrimRight(cfg.BaseURL, "/"),
		transport: cfg.Transport,
		metrics:   cfg.Metrics,
		logger:    logger,
	}
}

// BaseURL returns the downstream URL exactly as configured
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) client() *http.Client {
	c.once.Do(func() {
		c.httpClient = &http.Client{Transport: c.transport}
		c.logger.Debug("downstream client initialized", zap.String("base_url", c.baseURL))
	})
	return c.httpClient
}

// CheckHealth calls GET {base}/health. A 200 response returns nil;
// any other status returns an *Error of kind status.
func (c *Client) CheckHealth(ctx context.Context, timeout time.Duration) error {
	start := time.Now()
	err := c.checkHealth(ctx, timeout)
	c.record(opHealth, start, err)
	return err
}

func (c *Client) checkHealth(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/health", nil)
	if err != nil {
		return &Error{Op: opHealth, Kind: ErrorKindTransport, Err: err}
	}

	resp, err := c.client().Do(req)
	if err != nil {
		return classify(opHealth, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode != http.StatusOK {
		return &Error{Op: opHealth, Kind: ErrorKindStatus, StatusCode: resp.StatusCode}
	}
	return nil
}

// Query posts payload to {base}/query and returns the downstream status
// and JSON body as-is. Non-2xx statuses are not errors; a body that is
// not valid JSON is.
func (c *Client) Query(ctx context.Context, payload json.RawMessage, timeout time.Duration) (*QueryResult, error) {
	start := time.Now()
	res, err := c.query(ctx, payload, timeout)
	c.record(opQuery, start, err)
	return res, err
}

func (c *Client) query(ctx context.Context, payload json.RawMessage, timeout time.Duration) (*QueryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/query", bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Op: opQuery, Kind: ErrorKindTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client().Do(req)
	if err != nil {
		return nil, classify(opQuery, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classify(opQuery, err)
	}

	if !json.Valid(body) {
		return nil, &Error{
			Op:         opQuery,
			Kind:       ErrorKindDecode,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("response is not valid JSON (%d bytes)", len(body)),
		}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		return nil, &Error{Op: opQuery, Kind: ErrorKindDecode, StatusCode: resp.StatusCode, Err: err}
	}

	return &QueryResult{
		StatusCode: resp.StatusCode,
		Body:       compact.Bytes(),
	}, nil
}

func (c *Client) record(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
		c.logger.Warn("downstream call failed",
			zap.String("op", op),
			zap.String("kind", outcome),
			zap.Error(err))
	}
	if c.metrics != nil {
		c.metrics.ObserveDownstreamCall(op, outcome, time.Since(start))
	}
}

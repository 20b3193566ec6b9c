// Package bridge is the client for the upstream MLS listings API
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/n3t-leo/miamicondos/config"
	"github.com/n3t-leo/miamicondos/internal/models"
)

// Result origins reported to API callers
const (
	SourceBridge = "bridge"
	SourceMock   = "mock"
	SourceDB     = "db"
)

// Client fetches and normalizes listings from the upstream API, or from a
// MockSource when mock mode is enabled.
type Client struct {
	cfg        config.BridgeConfig
	logger     *logrus.Logger
	httpClient *http.Client
	mock       *MockSource
	sleep      func(ctx context.Context, d time.Duration) error
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSleep replaces the wait used between rate-limited retries
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = sleep }
}

// WithMockSource replaces the built-in mock listings
func WithMockSource(m *MockSource) Option {
	return func(c *Client) { c.mock = m }
}

func NewClient(cfg config.BridgeConfig, logger *logrus.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	c := &Client{
		cfg:        cfg,
		logger:     logger,
		httpClient: &http.Client{},
		mock:       NewMockSource(DefaultMockListings()),
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source names where SearchProperties results come from
func (c *Client) Source() string {
	if c.cfg.UseMock {
		return SourceMock
	}
	return SourceBridge
}

type listingsResponse struct {
	Records json.RawMessage `json:"records"`
	Total   *float64        `json:"total"`
}

// SearchProperties runs one search against the upstream. Failures are always
// returned as *APIError.
func (c *Client) SearchProperties(ctx context.Context, params models.SearchParams) (models.SearchResult, error) {
	if c.cfg.UseMock {
		return c.mock.Search(params), nil
	}

	endpoint := listingsURL(c.cfg.BaseURL, c.cfg.Dataset, c.cfg.ServerToken, BuildQuery(params))
	body, err := c.fetchWithRetries(ctx, endpoint)
	if err != nil {
		return models.SearchResult{}, err
	}

	var payload listingsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.SearchResult{}, NewClientError(fmt.Errorf("failed to decode listings response: %w", err))
	}

	var records []Record
	if len(payload.Records) > 0 {
		if err := json.Unmarshal(payload.Records, &records); err != nil {
			c.logger.WithError(err).Warn("Upstream records field is not an array")
			records = nil
		}
	}

	properties := make([]models.Property, 0, len(records))
	for _, record := range records {
		properties = append(properties, NormalizeRecord(record, c.cfg.Dataset))
	}

	total := len(properties)
	if payload.Total != nil {
		total = int(*payload.Total)
	}
	offset, limit := params.EffectiveOffset(), params.EffectiveLimit()
	hasMore := offset+len(properties) < total

	c.logger.WithFields(logrus.Fields{
		"dataset":  c.cfg.Dataset,
		"returned": len(properties),
		"total":    total,
		"offset":   offset,
	}).Debug("Fetched listings from upstream")

	return models.NewSearchResult(properties, total, hasMore, offset+limit), nil
}

// fetchWithRetries retries 429 responses up to MaxRetries times. Every other
// outcome is final.
func (c *Client) fetchWithRetries(ctx context.Context, endpoint string) ([]byte, error) {
	for attempt := 1; ; attempt++ {
		statusCode, body, err := c.get(ctx, endpoint)
		if err != nil {
			return nil, err
		}

		if statusCode == http.StatusTooManyRequests && attempt <= c.cfg.MaxRetries {
			delay := Backoff(attempt)
			c.logger.WithFields(logrus.Fields{
				"attempt":  attempt,
				"delay_ms": delay.Milliseconds(),
			}).Warn("Upstream rate limited, backing off")
			if err := c.sleep(ctx, delay); err != nil {
				return nil, classify(err)
			}
			continue
		}

		if statusCode < 200 || statusCode > 299 {
			c.logger.WithFields(logrus.Fields{
				"status_code": statusCode,
				"attempt":     attempt,
			}).Error("Upstream request failed")
			return nil, newStatusError(statusCode, body)
		}
		return body, nil
	}
}

// get performs one request bounded by the configured timeout
func (c *Client) get(ctx context.Context, endpoint string) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, NewClientError(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, classify(err)
	}
	return resp.StatusCode, body, nil
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewTimeoutError()
	}
	// url.Error carries the full request URL, access token included
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	return NewClientError(err)
}

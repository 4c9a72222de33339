package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultTimeout = 10 * time.Second

// Config holds connection details for the question bank service.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// RequestOptions carries the optional query string and JSON body.
type RequestOptions struct {
	Query map[string]string
	JSON  any
}

// Response is the raw outcome of a request. Non-2xx statuses are returned
// as responses, not errors; callers decide what counts as success.
type Response struct {
	Status int
	Body   []byte
}

// Client issues JSON requests against the question bank REST API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	metrics    *Metrics
	logger     zerolog.Logger
}

func NewClient(cfg Config, httpClient *http.Client, metrics *Metrics, logger zerolog.Logger) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: httpClient,
		metrics:    metrics,
		logger:     logger.With().Str("component", "questionbank_transport").Logger(),
	}
}

// Request sends method to path and returns the status and body. Only
// transport failures (build, network, body read) are returned as errors.
func (c *Client) Request(ctx context.Context, method, path string, opts RequestOptions) (*Response, error) {
	endpoint := c.buildURL(path, opts.Query)

	var body io.Reader
	if opts.JSON != nil {
		data, err := json.Marshal(opts.JSON)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if opts.JSON != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.observe(method, "error", elapsed.Seconds())
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Str("request_id", requestID).Msg("request failed")
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.metrics.observe(method, strconv.Itoa(resp.StatusCode), elapsed.Seconds())
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Str("request_id", requestID).
		Msg("question bank request")

	return &Response{Status: resp.StatusCode, Body: data}, nil
}

func (c *Client) buildURL(path string, query map[string]string) string {
	endpoint := c.baseURL + path
	if len(query) == 0 {
		return endpoint
	}
	values := url.Values{}
	for k, v := range query {
		values.Set(k, v)
	}
	return endpoint + "?" + values.Encode()
}

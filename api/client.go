/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	// DefaultBaseURL is where the backend listens in a local setup.
	DefaultBaseURL = "http://localhost:8000"
	// PathPrefix is the canonical versioned prefix of every endpoint.
	PathPrefix = "/api/v1"
	// IdempotencyHeader carries the caller's de-duplication key on creates.
	IdempotencyHeader = "Idempotency-Key"

	// DefaultRecordLimit matches the backend's default page size.
	DefaultRecordLimit = 100
	// MaxRecordLimit is the largest page the backend serves.
	MaxRecordLimit = 1000

	readCachePrefix = "read:"
)

// Cache stores raw read responses for the staleness window.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// Client talks to the risk-assessment backend.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	cache       Cache
	readRetries uint64
	retryDelay  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithCache enables caching of read responses.
func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithReadRetries sets how many times a failed read is retried.
func WithReadRetries(n uint64, delay time.Duration) Option {
	return func(c *Client) {
		c.readRetries = n
		c.retryDelay = delay
	}
}

// NewClient returns a client for the backend at baseURL. A trailing
// /api/v1 on baseURL is accepted and folded into the canonical prefix.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	base = strings.TrimSuffix(base, PathPrefix)

	if base == "" {
		return nil, ErrEmptyBaseURL
	}

	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:     base,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		readRetries: 1,
		retryDelay:  time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the normalised backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type callOptions struct {
	idempotencyKey string
}

// CallOption adjusts a single write call.
type CallOption func(*callOptions)

// IdempotencyKey sends key so the backend can de-duplicate a retried create.
func IdempotencyKey(key string) CallOption {
	return func(o *callOptions) {
		o.idempotencyKey = key
	}
}

// IdempotencyKeyOf returns the key set by opts, if any.
func IdempotencyKeyOf(opts ...CallOption) string {
	return collectCallOptions(opts).idempotencyKey
}

func collectCallOptions(opts []CallOption) callOptions {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// operation names the generic failure text of one endpoint.
type operation struct {
	name     string
	failure  string
	notFound string
}

var (
	opCreateUser    = operation{name: "create_user", failure: "Failed to create user!"}
	opCreateRecord  = operation{name: "create_record", failure: "Failed to create diabetes record", notFound: "User not found"}
	opGetAssessment = operation{name: "get_assessment", failure: "Failed to fetch health assessment"}
	opGetRecords    = operation{name: "get_records", failure: "Failed to fetch records"}
	opGetAnalysis   = operation{name: "get_analysis", failure: "Failed to fetch analysis"}
	opGetInsights   = operation{name: "get_insights", failure: "Failed to fetch insights"}
	opGetAttempts   = operation{name: "get_attempts", failure: "Failed to fetch upload attempts"}
	opUploadDataset = operation{name: "upload_dataset", failure: "Failed to upload file"}
)

const unexpectedErrorMsg = "An unexpected error occurred"

type response struct {
	status int
	body   []byte
}

func (c *Client) endpoint(path string, query url.Values) string {
	target := c.baseURL + PathPrefix + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	return target
}

func (c *Client) send(ctx context.Context, op operation, req *http.Request) (*response, error) {
	start := time.Now()

	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		logger.Warn("backend request failed", "op", op.name, "method", req.Method, "url", req.URL.String(), "error", err)
		return nil, newError(KindNetwork, 0, unexpectedErrorMsg, err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn("Failed to close response body", "op", op.name, "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindNetwork, resp.StatusCode, unexpectedErrorMsg, err)
	}

	logger.Debug("backend request",
		"op", op.name,
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &response{status: resp.StatusCode, body: body}, nil
}

// classify turns a non-2xx response into an *Error.
func classify(op operation, res *response) *Error {
	detail := detailFrom(res.body)

	message := detail
	if message == "" {
		message = op.failure
	}

	switch {
	case res.status == http.StatusConflict:
		return newError(KindConflict, res.status, message, nil)
	case res.status == http.StatusNotFound:
		if op.notFound != "" {
			message = op.notFound
		}

		return newError(KindNotFound, res.status, message, nil)
	case res.status >= 400 && res.status < 500:
		return newError(KindValidation, res.status, message, nil)
	default:
		return newError(KindNetwork, res.status, message, nil)
	}
}

// detailFrom extracts the backend's "detail" field. Validation failures carry
// a list of objects with a "msg" each.
func detailFrom(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}

	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
		Loc []any  `json:"loc"`
	}

	if err := json.Unmarshal(envelope.Detail, &items); err != nil {
		return ""
	}

	msgs := make([]string, 0, len(items))
	for _, item := range items {
		if item.Msg == "" {
			continue
		}

		if field := fieldFromLoc(item.Loc); field != "" {
			msgs = append(msgs, field+": "+item.Msg)
		} else {
			msgs = append(msgs, item.Msg)
		}
	}

	return strings.Join(msgs, "; ")
}

func fieldFromLoc(loc []any) string {
	if len(loc) == 0 {
		return ""
	}

	if field, ok := loc[len(loc)-1].(string); ok && field != "body" {
		return field
	}

	return ""
}

// getJSON performs a cached, retried read.
func (c *Client) getJSON(ctx context.Context, op operation, path string, query url.Values, out any) error {
	key := readCachePrefix + path
	if len(query) > 0 {
		key += "?" + query.Encode()
	}

	if c.cache != nil {
		cached, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			logger.Warn("read cache lookup failed", "key", key, "error", err)
		} else if ok {
			if err := json.Unmarshal(cached, out); err == nil {
				return nil
			}

			logger.Warn("discarding undecodable cache entry", "key", key)
		}
	}

	var body []byte

	backoff := retry.WithMaxRetries(c.readRetries, retry.NewConstant(c.retryDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, query), nil)
		if err != nil {
			return newError(KindNetwork, 0, op.failure, err)
		}

		req.Header.Set("Accept", "application/json")

		res, err := c.send(ctx, op, req)
		if err != nil {
			return retry.RetryableError(err)
		}

		if res.status < 200 || res.status > 299 {
			apiErr := classify(op, res)
			if apiErr.Kind == KindNetwork {
				return retry.RetryableError(apiErr)
			}

			return apiErr
		}

		body = res.body

		return nil
	})
	if err != nil {
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			return newError(KindNetwork, 0, op.failure, err)
		}

		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return newError(KindNetwork, http.StatusOK, op.failure, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, body); err != nil {
			logger.Warn("read cache store failed", "key", key, "error", err)
		}
	}

	return nil
}

// postJSON performs a single write. Writes are never retried.
func (c *Client) postJSON(ctx context.Context, op operation, path string, in any, callOpts callOptions) (*response, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", op.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), bytes.NewReader(payload))
	if err != nil {
		return nil, newError(KindNetwork, 0, op.failure, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if callOpts.idempotencyKey != "" {
		req.Header.Set(IdempotencyHeader, callOpts.idempotencyKey)
	}

	return c.send(ctx, op, req)
}

// InvalidateReads drops every cached read so the next call refetches.
func (c *Client) InvalidateReads(ctx context.Context) error {
	if c.cache == nil {
		return nil
	}

	if err := c.cache.InvalidatePrefix(ctx, readCachePrefix); err != nil {
		return fmt.Errorf("failed to invalidate cached reads: %w", err)
	}

	return nil
}

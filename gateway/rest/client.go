// Package rest implements the gateway interfaces against the hosted
// platform's PostgREST-style HTTP API and its storage endpoint.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskboard/client/domain"
)

// Config carries the gateway endpoint and credentials. URL and AnonKey
// are required; their absence is a fatal startup condition handled by
// the config loader.
type Config struct {
	URL         string
	AnonKey     string
	AccessToken string
	Bucket      string
	Timeout     time.Duration
}

// Client is a thin fasthttp wrapper shared by the table gateways and
// the object store.
type Client struct {
	cfg    Config
	http   *fasthttp.Client
	logger *zap.Logger
}

// NewClient validates the configuration and builds the shared HTTP
// client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.URL == "" || cfg.AnonKey == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "gateway URL and anon key are required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "attachments"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   &fasthttp.Client{Name: "taskboard-client"},
		logger: logger,
	}, nil
}

// Ping checks gateway reachability with a cheap read against the REST
// root. Used by the connectivity monitor.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, fasthttp.MethodGet, "/rest/v1/", "", nil, "", nil)
}

// do issues one request and decodes the JSON response into out when out
// is non-nil. Gateway failures come back as classified domain errors so
// call sites can reconcile without inspecting status codes.
func (c *Client) do(ctx context.Context, method, path, query string, body []byte, contentType string, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	uri := strings.TrimRight(c.cfg.URL, "/") + path
	if query != "" {
		uri += "?" + query
	}
	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	req.Header.Set("apikey", c.cfg.AnonKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer())
	if len(body) > 0 {
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.SetContentType(contentType)
		req.SetBody(body)
	}
	if method != fasthttp.MethodGet {
		req.Header.Set("Prefer", "return=minimal")
	}

	if err := c.http.DoTimeout(req, resp, c.timeout(ctx)); err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "gateway request failed", err)
	}

	status := resp.StatusCode()
	if status >= http.StatusBadRequest {
		return mapStatus(status, resp.Body())
	}
	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return domain.WrapError(domain.ErrCodeInternal, "gateway response decode failed", err)
		}
	}
	return nil
}

func (c *Client) bearer() string {
	if c.cfg.AccessToken != "" {
		return c.cfg.AccessToken
	}
	return c.cfg.AnonKey
}

func (c *Client) timeout(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < c.cfg.Timeout {
			return remaining
		}
	}
	return c.cfg.Timeout
}

func mapStatus(status int, body []byte) error {
	detail := fmt.Errorf("status %d: %s", status, truncate(body, 256))
	switch {
	case status == http.StatusUnauthorized:
		return domain.WrapError(domain.ErrCodeUnauthorized, "gateway rejected credentials", detail)
	case status == http.StatusForbidden:
		return domain.WrapError(domain.ErrCodeForbidden, "gateway denied access", detail)
	case status == http.StatusNotFound:
		return domain.WrapError(domain.ErrCodeNotFound, "resource not found", detail)
	case status == http.StatusConflict:
		return domain.WrapError(domain.ErrCodeConflict, "gateway reported a conflict", detail)
	case status >= http.StatusInternalServerError:
		return domain.WrapError(domain.ErrCodeUnavailable, "gateway error", detail)
	default:
		return domain.WrapError(domain.ErrCodeInvalid, "gateway rejected request", detail)
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

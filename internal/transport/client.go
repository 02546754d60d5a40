// Package transport issues the keyless GET requests made against the catalog API.
package transport

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agentstation/catalogmirror/pkg/constants"
	"github.com/agentstation/catalogmirror/pkg/errors"
)

// Client wraps an http.Client with a per-request timeout.
type Client struct {
	http    *http.Client
	timeout time.Duration
	headers http.Header
}

// Option configures a Client.
type Option func(*Client)

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// New creates a transport client; a non-positive timeout uses the default.
func New(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}
	c := &Client{
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
		headers: http.Header{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET request with the client's headers applied.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.NewValidationError("url", rawURL, err.Error())
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, errors.NewTimeoutError("GET "+rawURL, c.timeout.String(), err.Error())
		}
		return nil, err
	}
	return resp, nil
}

// JoinURL resolves each path against base in turn, the way a browser resolves
// relative links. A path without a trailing slash replaces the last segment.
func JoinURL(base string, paths ...string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", errors.NewValidationError("api_url", base, err.Error())
	}
	for _, p := range paths {
		ref, err := url.Parse(p)
		if err != nil {
			return "", errors.NewValidationError("path", p, err.Error())
		}
		u = u.ResolveReference(ref)
	}
	return u.String(), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// EnsureTrailingSlash appends "/" so the path acts as a directory when joined.
func EnsureTrailingSlash(p string) string {
	if p == "" || strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}

// internal/common/http/client.go
package http

import (
	"context"
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client is a timeout-bound HTTP client shared by the geocoding and
// distance-matrix adapters. The timeout covers the whole exchange including
// body read.
type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// DoWithContext binds the request to ctx so callers can cancel in-flight
// lookups when their job deadline expires.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}

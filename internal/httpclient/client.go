// Package httpclient is the HTTP transport used for catalog and manifest
// fetches. Redirects are followed; responses are size-capped.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds a single GET including body read.
	DefaultTimeout = 10 * time.Second

	// MaxResponseSize caps catalog and manifest bodies (10MB); indexes are
	// small YAML documents, anything bigger is a misbehaving server.
	MaxResponseSize = 10 * 1024 * 1024

	// UserAgent identifies us to repository mirrors.
	UserAgent = "cellar/1.0"
)

// Client is the transport contract the backend depends on.
type Client interface {
	// Get performs an HTTP GET and returns the response body.
	Get(ctx context.Context, url string) ([]byte, error)
}

// DefaultClient is the stock implementation over net/http.
type DefaultClient struct {
	client *http.Client
}

// NewDefaultClient builds a client with the given timeout; zero means
// DefaultTimeout.
func NewDefaultClient(timeout time.Duration) Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &DefaultClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Get performs an HTTP GET request.
func (c *DefaultClient) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewHTTPError(resp.StatusCode, url, resp.Status)
	}

	limited := io.LimitReader(resp.Body, MaxResponseSize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeds maximum allowed size of %d bytes", MaxResponseSize)
	}

	return body, nil
}

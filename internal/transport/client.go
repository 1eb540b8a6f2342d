// Package transport performs the HTTP round trips of the provider API clients
// and turns every failure into a *channels.UpstreamError.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"adsmanager/internal/channels"
)

// DefaultTimeout bounds a single provider call. Media uploads share it.
const DefaultTimeout = 2 * time.Minute

// Timeout returns the timeout of httpClient, or DefaultTimeout when it has none.
// Clients that wrap httpClient in a signing transport carry it over with this.
func Timeout(httpClient *http.Client) time.Duration {
	if httpClient != nil && httpClient.Timeout > 0 {
		return httpClient.Timeout
	}
	return DefaultTimeout
}

// Request describes one provider API call. At most one of JSON and Form is set.
type Request struct {
	Method string
	URL    string
	Query  url.Values
	JSON   any
	Form   url.Values
	Header http.Header
}

// Client sends Requests for a single provider.
type Client struct {
	provider   string
	httpClient *http.Client
}

// New returns a Client; a nil httpClient gets DefaultTimeout.
func New(provider string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{provider: provider, httpClient: httpClient}
}

// Provider returns the provider name used in errors.
func (c *Client) Provider() string { return c.provider }

// Do sends req and decodes a 2xx JSON response into out (skipped when out is nil).
// It returns the raw response body alongside any error.
func (c *Client) Do(ctx context.Context, op string, req Request, out any) ([]byte, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, c.fail(op, 0, nil, err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.fail(op, 0, nil, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(op, resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, c.fail(op, resp.StatusCode, body, nil)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return body, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return body, c.fail(op, resp.StatusCode, body, fmt.Errorf("failed to parse response: %w", err))
	}
	return body, nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := req.URL
	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + req.Query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.JSON != nil:
		b, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	case req.Form != nil:
		body = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	return httpReq, nil
}

func (c *Client) fail(op string, status int, body []byte, err error) error {
	return &channels.UpstreamError{
		Provider:   c.provider,
		Op:         op,
		StatusCode: status,
		Body:       body,
		Err:        err,
	}
}

package transport

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"

	"adsmanager/internal/channels"
)

// DefaultMaxMediaBytes caps a fetched media file.
const DefaultMaxMediaBytes = 64 << 20

// Fetcher downloads referenced media.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher is a Fetcher over plain HTTP GET.
type HTTPFetcher struct {
	Client   *http.Client
	MaxBytes int64
}

// NewFetcher returns an HTTPFetcher with default limits.
func NewFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:   &http.Client{Timeout: DefaultTimeout},
		MaxBytes: DefaultMaxMediaBytes,
	}
}

// Fetch returns the body of mediaURL. Non-2xx responses and network errors
// are reported as *channels.UpstreamError.
func (f *HTTPFetcher) Fetch(ctx context.Context, mediaURL string) ([]byte, error) {
	op := "fetch " + mediaURL
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, &channels.UpstreamError{Provider: "media", Op: op, Err: err}
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &channels.UpstreamError{Provider: "media", Op: op, Err: err}
	}
	defer resp.Body.Close()

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxMediaBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &channels.UpstreamError{Provider: "media", Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &channels.UpstreamError{Provider: "media", Op: op, StatusCode: resp.StatusCode, Body: body}
	}
	if int64(len(body)) > limit {
		return nil, &channels.UpstreamError{
			Provider: "media", Op: op, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("media exceeds %d bytes", limit),
		}
	}
	return body, nil
}

// Media is a fetched file ready to embed in an upload payload.
type Media struct {
	Name   string
	Size   int
	Base64 string
}

// FetchMedia fetches mediaURL and base64-encodes it.
func FetchMedia(ctx context.Context, f Fetcher, mediaURL string) (*Media, error) {
	data, err := f.Fetch(ctx, mediaURL)
	if err != nil {
		return nil, err
	}
	return &Media{
		Name:   BaseName(mediaURL),
		Size:   len(data),
		Base64: base64.StdEncoding.EncodeToString(data),
	}, nil
}

// BaseName returns the last path element of a URL, ignoring its query string.
func BaseName(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(rawURL)
}

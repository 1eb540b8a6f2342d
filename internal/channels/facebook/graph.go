package facebook

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"adsmanager/internal/transport"
)

const (
	DefaultBaseURL    = "https://graph.facebook.com"
	DefaultAPIVersion = "v19.0"
)

// API is the subset of the Graph API the channel uses. Paths are relative
// to the versioned root, e.g. "act_123/campaigns".
type API interface {
	Get(ctx context.Context, path string, query url.Values, out any) ([]byte, error)
	Post(ctx context.Context, path string, params any, out any) ([]byte, error)
	Delete(ctx context.Context, path string, params any, out any) ([]byte, error)
}

// GraphClient is the HTTP implementation of API.
type GraphClient struct {
	baseURL     string
	accessToken string
	http        *transport.Client
}

var _ API = (*GraphClient)(nil)

// NewGraphClient returns a client authenticated with config.AccessToken.
func NewGraphClient(config Config, httpClient *http.Client) *GraphClient {
	base := config.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	version := config.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	return &GraphClient{
		baseURL:     strings.TrimRight(base, "/") + "/" + version,
		accessToken: config.AccessToken,
		http:        transport.New("facebook", httpClient),
	}
}

func (c *GraphClient) Get(ctx context.Context, path string, query url.Values, out any) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *GraphClient) Post(ctx context.Context, path string, params any, out any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, nil, params, out)
}

func (c *GraphClient) Delete(ctx context.Context, path string, params any, out any) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, path, nil, params, out)
}

func (c *GraphClient) do(ctx context.Context, method, path string, query url.Values, body any, out any) ([]byte, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.accessToken)
	return c.http.Do(ctx, method+" "+path, transport.Request{
		Method: method,
		URL:    c.baseURL + "/" + strings.TrimLeft(path, "/"),
		Query:  query,
		JSON:   body,
		Header: header,
	}, out)
}

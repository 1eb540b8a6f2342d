package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dghubble/oauth1"

	"adsmanager/internal/channels"
	"adsmanager/internal/transport"
)

const (
	DefaultBaseURL    = "https://ads-api.twitter.com"
	DefaultUploadURL  = "https://upload.twitter.com"
	DefaultAPIVersion = "12"

	uploadPath = "1.1/media/upload.json"
)

// API is the subset of the Ads API the channel uses. Paths are relative to
// the versioned root, e.g. "accounts/abc/campaigns", and out receives the
// data field of the response envelope. Upload talks to the media upload
// host, whose responses have no envelope.
type API interface {
	Get(ctx context.Context, path string, query url.Values, out any) ([]byte, error)
	Post(ctx context.Context, path string, params url.Values, out any) ([]byte, error)
	PostJSON(ctx context.Context, path string, body any, out any) ([]byte, error)
	Put(ctx context.Context, path string, params url.Values, out any) ([]byte, error)
	Delete(ctx context.Context, path string, out any) ([]byte, error)
	Upload(ctx context.Context, params url.Values, out any) ([]byte, error)
}

// AdsClient is the HTTP implementation of API. Every request is signed
// with OAuth 1.0a HMAC-SHA1.
type AdsClient struct {
	baseURL   string
	uploadURL string
	http      *transport.Client
}

var _ API = (*AdsClient)(nil)

// NewAdsClient returns a client signing with the credentials of config.
// httpClient, when set, is the base transport of the signed client.
func NewAdsClient(config Config, httpClient *http.Client) *AdsClient {
	ctx := context.Background()
	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth1.HTTPClient, httpClient)
	}
	signed := oauth1.NewConfig(config.ConsumerKey, config.ConsumerSecret).
		Client(ctx, oauth1.NewToken(config.AccessTokenKey, config.AccessTokenSecret))
	signed.Timeout = transport.Timeout(httpClient)

	base := config.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	version := config.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	upload := config.UploadURL
	if upload == "" {
		upload = DefaultUploadURL
	}

	return &AdsClient{
		baseURL:   strings.TrimRight(base, "/") + "/" + version,
		uploadURL: strings.TrimRight(upload, "/") + "/" + uploadPath,
		http:      transport.New("twitter", signed),
	}
}

func (c *AdsClient) Get(ctx context.Context, path string, query url.Values, out any) ([]byte, error) {
	return c.do(ctx, path, transport.Request{Method: http.MethodGet, Query: query}, out)
}

func (c *AdsClient) Post(ctx context.Context, path string, params url.Values, out any) ([]byte, error) {
	return c.do(ctx, path, transport.Request{Method: http.MethodPost, Form: params}, out)
}

func (c *AdsClient) PostJSON(ctx context.Context, path string, body any, out any) ([]byte, error) {
	return c.do(ctx, path, transport.Request{Method: http.MethodPost, JSON: body}, out)
}

func (c *AdsClient) Put(ctx context.Context, path string, params url.Values, out any) ([]byte, error) {
	return c.do(ctx, path, transport.Request{Method: http.MethodPut, Form: params}, out)
}

func (c *AdsClient) Delete(ctx context.Context, path string, out any) ([]byte, error) {
	return c.do(ctx, path, transport.Request{Method: http.MethodDelete}, out)
}

func (c *AdsClient) Upload(ctx context.Context, params url.Values, out any) ([]byte, error) {
	op := "POST media/upload " + params.Get("command")
	return c.http.Do(ctx, op, transport.Request{Method: http.MethodPost, URL: c.uploadURL, Form: params}, out)
}

// envelope wraps every Ads API response.
type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []apiError      `json:"errors"`
}

type apiError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Parameter string `json:"parameter"`
}

func (c *AdsClient) do(ctx context.Context, path string, req transport.Request, out any) ([]byte, error) {
	op := req.Method + " " + path
	req.URL = c.baseURL + "/" + strings.TrimLeft(path, "/")
	raw, err := c.http.Do(ctx, op, req, nil)
	if err != nil {
		return raw, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return raw, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return raw, &channels.UpstreamError{Provider: "twitter", Op: op, Body: raw, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	// Batch endpoints report rejected items in a 2xx response.
	if len(env.Errors) > 0 {
		e := env.Errors[0]
		return raw, &channels.UpstreamError{Provider: "twitter", Op: op, Body: raw, Err: errors.New(e.Code + ": " + e.Message)}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return raw, &channels.UpstreamError{Provider: "twitter", Op: op, Body: raw, Err: fmt.Errorf("failed to parse response data: %w", err)}
		}
	}
	return raw, nil
}

package googleads

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"adsmanager/internal/transport"
)

const (
	DefaultBaseURL    = "https://googleads.googleapis.com"
	DefaultAPIVersion = "v17"

	adwordsScope = "https://www.googleapis.com/auth/adwords"
)

// API posts a JSON body to a path under the versioned root, e.g.
// "customers/123/googleAds:mutate". Every Google Ads REST call the channel
// makes is a POST.
type API interface {
	Post(ctx context.Context, path string, body any, out any) ([]byte, error)
}

// RESTClient is the HTTP implementation of API. Requests carry an OAuth2
// access token minted from the refresh token.
type RESTClient struct {
	baseURL string
	header  http.Header
	http    *transport.Client
}

var _ API = (*RESTClient)(nil)

// NewRESTClient returns a client for config. httpClient, when set, is used
// both for token refreshes and as the base transport of API calls.
func NewRESTClient(config Config, httpClient *http.Client) *RESTClient {
	oauthConfig := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{adwordsScope},
	}
	if config.TokenURL != "" {
		oauthConfig.Endpoint.TokenURL = config.TokenURL
	}

	ctx := context.Background()
	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}
	client := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: config.RefreshToken}))
	client.Timeout = transport.Timeout(httpClient)

	header := http.Header{}
	header.Set("developer-token", config.DeveloperToken)
	if id := customerID(config.LoginCustomerID); id != "" {
		header.Set("login-customer-id", id)
	}

	base := config.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	version := config.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}

	return &RESTClient{
		baseURL: strings.TrimRight(base, "/") + "/" + version,
		header:  header,
		http:    transport.New("google", client),
	}
}

func (c *RESTClient) Post(ctx context.Context, path string, body any, out any) ([]byte, error) {
	return c.http.Do(ctx, "POST "+path, transport.Request{
		Method: http.MethodPost,
		URL:    c.baseURL + "/" + strings.TrimLeft(path, "/"),
		JSON:   body,
		Header: c.header,
	}, out)
}

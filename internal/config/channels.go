package config

import (
	"fmt"
	"net/http"

	"adsmanager/internal/channels"
	"adsmanager/internal/channels/facebook"
	"adsmanager/internal/channels/googleads"
	"adsmanager/internal/channels/twitter"
	"adsmanager/internal/transport"
)

// ChannelConfig declares one channel. Exactly the block named by Type is read.
type ChannelConfig struct {
	ID   string `yaml:"id" validate:"required"`
	Type string `yaml:"type" validate:"required,oneof=facebook google twitter"`

	Facebook *FacebookChannel `yaml:"facebook,omitempty"`
	Google   *GoogleChannel   `yaml:"google,omitempty"`
	Twitter  *TwitterChannel  `yaml:"twitter,omitempty"`
}

// FacebookChannel holds Facebook credentials and campaign defaults.
type FacebookChannel struct {
	facebook.Config `yaml:",inline"`
	Defaults        facebook.DefaultValues `yaml:"defaults,omitempty"`
}

// GoogleChannel holds Google Ads credentials and campaign defaults.
type GoogleChannel struct {
	googleads.Config `yaml:",inline"`
	Defaults         googleads.DefaultValues `yaml:"defaults,omitempty"`
}

// TwitterChannel holds Twitter Ads credentials and campaign defaults.
type TwitterChannel struct {
	twitter.Config `yaml:",inline"`
	Defaults       twitter.DefaultValues `yaml:"defaults,omitempty"`
}

func (c ChannelConfig) validateBlock() error {
	var present bool
	switch c.Type {
	case TypeFacebook:
		present = c.Facebook != nil
	case TypeGoogle:
		present = c.Google != nil
	case TypeTwitter:
		present = c.Twitter != nil
	default:
		return fmt.Errorf("invalid channel type: %s (valid: %v)", c.Type, ValidTypes)
	}
	if !present {
		return fmt.Errorf("missing %q block for type %s", c.Type, c.Type)
	}
	return nil
}

// Build constructs the declared channels in file order. Channels whose
// credentials are incomplete are still returned; they report
// IsConfigured() == false and fail every operation with ErrNotConfigured.
func (c *Config) Build() ([]channels.Channel, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: transport.DefaultTimeout}
	if c.HTTP.Timeout > 0 {
		httpClient.Timeout = c.HTTP.Timeout
	}
	fetcher := transport.NewFetcher()
	fetcher.Client = httpClient

	out := make([]channels.Channel, 0, len(c.Channels))
	for _, ch := range c.Channels {
		built, err := ch.build(httpClient, fetcher)
		if err != nil {
			return nil, err
		}
		out = append(out, built)
	}
	return out, nil
}

func (c ChannelConfig) build(httpClient *http.Client, fetcher transport.Fetcher) (channels.Channel, error) {
	switch c.Type {
	case TypeFacebook:
		fb := facebook.New(c.ID, &c.Facebook.Config,
			facebook.WithHTTPClient(httpClient),
			facebook.WithFetcher(fetcher))
		fb.SetDefaultValues(c.Facebook.Defaults)
		return fb, nil
	case TypeGoogle:
		g := googleads.New(c.ID, &c.Google.Config,
			googleads.WithHTTPClient(httpClient),
			googleads.WithFetcher(fetcher))
		g.SetDefaultValues(c.Google.Defaults)
		return g, nil
	case TypeTwitter:
		tw := twitter.New(c.ID, &c.Twitter.Config,
			twitter.WithHTTPClient(httpClient),
			twitter.WithFetcher(fetcher))
		tw.SetDefaultValues(c.Twitter.Defaults)
		return tw, nil
	}
	return nil, fmt.Errorf("channel %s: %w: %s", c.ID, channels.ErrInvalidInput, c.Type)
}

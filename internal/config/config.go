// Package config loads the adsmanager configuration: the channels to
// register, their credentials and default values, and logging options.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"adsmanager/internal/channels/facebook"
	"adsmanager/internal/channels/googleads"
	"adsmanager/internal/channels/twitter"
)

// Channel types understood by Build.
const (
	TypeFacebook = "facebook"
	TypeGoogle   = "google"
	TypeTwitter  = "twitter"
)

// ValidTypes lists the supported channel types.
var ValidTypes = []string{TypeFacebook, TypeGoogle, TypeTwitter}

// Config is the top-level configuration file.
type Config struct {
	Channels []ChannelConfig `yaml:"channels" validate:"dive"`
	Logging  LoggingConfig   `yaml:"logging"`
	HTTP     HTTPConfig      `yaml:"http"`
}

// HTTPConfig tunes the HTTP clients shared by every channel.
type HTTPConfig struct {
	// Timeout bounds a single provider call. Zero means the transport default.
	Timeout time.Duration `yaml:"timeout,omitempty" validate:"gte=0"`
}

// DefaultConfig returns a configuration with no channels and logging off.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Enabled: false,
			Verbose: false,
			JSON:    false,
		},
	}
}

// Example returns a config declaring one channel of each type, with
// credentials read from environment variables.
func Example() *Config {
	cfg := DefaultConfig()
	cfg.Logging.Enabled = true
	cfg.Channels = []ChannelConfig{
		{ID: "facebook", Type: TypeFacebook, Facebook: &FacebookChannel{Config: facebook.Config{
			AccessToken: "${FACEBOOK_ACCESS_TOKEN}",
			AdAccountID: "${FACEBOOK_AD_ACCOUNT_ID}",
		}}},
		{ID: "google", Type: TypeGoogle, Google: &GoogleChannel{Config: googleads.Config{
			ClientID:          "${GOOGLE_ADS_CLIENT_ID}",
			ClientSecret:      "${GOOGLE_ADS_CLIENT_SECRET}",
			CustomerAccountID: "${GOOGLE_ADS_CUSTOMER_ACCOUNT_ID}",
			DeveloperToken:    "${GOOGLE_ADS_DEVELOPER_TOKEN}",
			RefreshToken:      "${GOOGLE_ADS_REFRESH_TOKEN}",
		}}},
		{ID: "twitter", Type: TypeTwitter, Twitter: &TwitterChannel{Config: twitter.Config{
			AccessTokenKey:    "${TWITTER_ACCESS_TOKEN_KEY}",
			AccessTokenSecret: "${TWITTER_ACCESS_TOKEN_SECRET}",
			AdAccountID:       "${TWITTER_AD_ACCOUNT_ID}",
			ConsumerKey:       "${TWITTER_CONSUMER_KEY}",
			ConsumerSecret:    "${TWITTER_CONSUMER_SECRET}",
		}}},
	}
	return cfg
}

// LoadEnv loads the given .env files into the process environment. Variables
// already set are kept. Missing files are skipped when no file was named
// explicitly.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Load reads the YAML config at path. ${VAR} references are expanded from the
// environment before parsing, so credentials can live in a .env file loaded
// with LoadEnv. A missing file yields DefaultConfig.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes c to path as YAML.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides lets ADSMANAGER_* variables override logging settings.
func (c *Config) applyEnvOverrides() {
	if v, ok := envBool("ADSMANAGER_LOG"); ok {
		c.Logging.Enabled = v
	}
	if v, ok := envBool("ADSMANAGER_VERBOSE"); ok {
		c.Logging.Verbose = v
	}
	if v, ok := envBool("ADSMANAGER_LOG_JSON"); ok {
		c.Logging.JSON = v
	}
	if v := os.Getenv("ADSMANAGER_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.HTTP.Timeout = d
		}
	}
}

func envBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that every channel has a unique id, a known type and the
// provider block matching that type.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	seen := make(map[string]bool, len(c.Channels))
	for i, ch := range c.Channels {
		if seen[ch.ID] {
			return fmt.Errorf("duplicate channel id: %s", ch.ID)
		}
		seen[ch.ID] = true

		if err := ch.validateBlock(); err != nil {
			return fmt.Errorf("channels[%d] (%s): %w", i, ch.ID, err)
		}
	}

	return nil
}

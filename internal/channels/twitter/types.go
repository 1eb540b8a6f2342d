package twitter

import "adsmanager/internal/channels"

// Entity statuses of campaigns and line items.
const (
	StatusActive = "ACTIVE"
	StatusDraft  = "DRAFT"
	StatusPaused = "PAUSED"
)

// Config holds the OAuth 1.0a credentials of the Ads API.
type Config struct {
	AccessTokenKey    string `yaml:"access_token_key" json:"access_token_key"`
	AccessTokenSecret string `yaml:"access_token_secret" json:"access_token_secret"`
	AdAccountID       string `yaml:"ad_account_id" json:"ad_account_id"`
	ConsumerKey       string `yaml:"consumer_key" json:"consumer_key"`
	ConsumerSecret    string `yaml:"consumer_secret" json:"consumer_secret"`

	// Optional overrides.
	APIVersion string `yaml:"api_version,omitempty" json:"api_version,omitempty"`
	BaseURL    string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	UploadURL  string `yaml:"upload_url,omitempty" json:"upload_url,omitempty"`
}

func (c Config) fields() []channels.Field {
	return []channels.Field{
		{Name: "accessTokenKey", Value: c.AccessTokenKey, Required: true},
		{Name: "accessTokenSecret", Value: c.AccessTokenSecret, Required: true},
		{Name: "adAccountId", Value: c.AdAccountID, Required: true},
		{Name: "consumerKey", Value: c.ConsumerKey, Required: true},
		{Name: "consumerSecret", Value: c.ConsumerSecret, Required: true},
	}
}

func (c Config) merge(update Config) Config {
	c.AccessTokenKey = channels.MergeString(c.AccessTokenKey, update.AccessTokenKey)
	c.AccessTokenSecret = channels.MergeString(c.AccessTokenSecret, update.AccessTokenSecret)
	c.AdAccountID = channels.MergeString(c.AdAccountID, update.AdAccountID)
	c.ConsumerKey = channels.MergeString(c.ConsumerKey, update.ConsumerKey)
	c.ConsumerSecret = channels.MergeString(c.ConsumerSecret, update.ConsumerSecret)
	c.APIVersion = channels.MergeString(c.APIVersion, update.APIVersion)
	c.BaseURL = channels.MergeString(c.BaseURL, update.BaseURL)
	c.UploadURL = channels.MergeString(c.UploadURL, update.UploadURL)
	return c
}

// CampaignFields are the campaign settings. Budgets are in minor units and
// times are ISO 8601.
type CampaignFields struct {
	DailyBudget         int64  `yaml:"daily_budget,omitempty" json:"daily_budget,omitempty"`
	TotalBudget         int64  `yaml:"total_budget,omitempty" json:"total_budget,omitempty"`
	FundingInstrumentID string `yaml:"funding_instrument_id,omitempty" json:"funding_instrument_id,omitempty"`
	StartTime           string `yaml:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime             string `yaml:"end_time,omitempty" json:"end_time,omitempty"`
}

// LineItemFields are the line item settings. Empty fields on creation fall
// back to a promoted-tweets awareness line item bidding on a target.
type LineItemFields struct {
	BidAmount   int64    `yaml:"bid_amount,omitempty" json:"bid_amount,omitempty"`
	BidType     string   `yaml:"bid_type,omitempty" json:"bid_type,omitempty"`
	Objective   string   `yaml:"objective,omitempty" json:"objective,omitempty"`
	Placements  []string `yaml:"placements,omitempty" json:"placements,omitempty"`
	ProductType string   `yaml:"product_type,omitempty" json:"product_type,omitempty"`
}

// TweetData is the input of CreateAd: a promoted-only tweet posted as
// AsUserID. A website card is attached when URL is set, using the first
// media item as its image.
type TweetData struct {
	AsUserID  string   `yaml:"as_user_id,omitempty" json:"as_user_id,omitempty"`
	Text      string   `yaml:"text,omitempty" json:"text,omitempty"`
	Headline  string   `yaml:"headline,omitempty" json:"headline,omitempty"`
	URL       string   `yaml:"url,omitempty" json:"url,omitempty"`
	MediaURLs []string `yaml:"media_urls,omitempty" json:"media_urls,omitempty"`
}

// CampaignData is the input of CreateCampaign. One of Tweet and TweetID must
// be set; AudienceID names an existing custom audience.
type CampaignData struct {
	Name   string `yaml:"name" json:"name"`
	Status string `yaml:"status,omitempty" json:"status,omitempty"`

	Campaign   CampaignFields `yaml:"campaign" json:"campaign"`
	LineItem   LineItemFields `yaml:"line_item" json:"line_item"`
	AudienceID string         `yaml:"audience_id" json:"audience_id"`
	Tweet      *TweetData     `yaml:"tweet,omitempty" json:"tweet,omitempty"`
	TweetID    string         `yaml:"tweet_id,omitempty" json:"tweet_id,omitempty"`
}

// CampaignUpdate is the input of UpdateCampaign; nil sections are left alone.
type CampaignUpdate struct {
	Name     string          `yaml:"name,omitempty" json:"name,omitempty"`
	Status   string          `yaml:"status,omitempty" json:"status,omitempty"`
	Campaign *CampaignFields `yaml:"campaign,omitempty" json:"campaign,omitempty"`
	LineItem *LineItemFields `yaml:"line_item,omitempty" json:"line_item,omitempty"`
}

// DefaultValues are overlaid beneath caller input.
type DefaultValues struct {
	Campaign CampaignFields `yaml:"campaign,omitempty" json:"campaign,omitempty"`
	LineItem LineItemFields `yaml:"line_item,omitempty" json:"line_item,omitempty"`
	Tweet    TweetData      `yaml:"tweet,omitempty" json:"tweet,omitempty"`
}

// AudienceData is the input of CreateCustomAudience.
type AudienceData struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

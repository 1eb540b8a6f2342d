package facebook

import "adsmanager/internal/channels"

// Campaign and ad-set statuses.
const (
	StatusActive   = "ACTIVE"
	StatusArchived = "ARCHIVED"
	StatusDeleted  = "DELETED"
	StatusPaused   = "PAUSED"
)

// Config holds the Marketing API credentials.
type Config struct {
	AccessToken string `yaml:"access_token" json:"access_token"`
	AdAccountID string `yaml:"ad_account_id" json:"ad_account_id"`

	// Optional overrides.
	APIVersion string `yaml:"api_version,omitempty" json:"api_version,omitempty"`
	BaseURL    string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
}

func (c Config) fields() []channels.Field {
	return []channels.Field{
		{Name: "accessToken", Value: c.AccessToken, Required: true},
		{Name: "adAccountId", Value: c.AdAccountID, Required: true},
	}
}

func (c Config) merge(update Config) Config {
	c.AccessToken = channels.MergeString(c.AccessToken, update.AccessToken)
	c.AdAccountID = channels.MergeString(c.AdAccountID, update.AdAccountID)
	c.APIVersion = channels.MergeString(c.APIVersion, update.APIVersion)
	c.BaseURL = channels.MergeString(c.BaseURL, update.BaseURL)
	return c
}

// CampaignFields are the campaign-level settings. Budgets are in minor units.
type CampaignFields struct {
	DailyBudget       int64  `yaml:"daily_budget,omitempty" json:"daily_budget,omitempty"`
	LifetimeBudget    int64  `yaml:"lifetime_budget,omitempty" json:"lifetime_budget,omitempty"`
	Objective         string `yaml:"objective,omitempty" json:"objective,omitempty"`
	SpecialAdCategory string `yaml:"special_ad_category,omitempty" json:"special_ad_category,omitempty"`
}

// AdSetFields are the ad-set settings. Times are ISO 8601.
type AdSetFields struct {
	BidAmount        int64  `yaml:"bid_amount,omitempty" json:"bid_amount,omitempty"`
	BillingEvent     string `yaml:"billing_event,omitempty" json:"billing_event,omitempty"`
	EndTime          string `yaml:"end_time,omitempty" json:"end_time,omitempty"`
	OptimizationGoal string `yaml:"optimization_goal,omitempty" json:"optimization_goal,omitempty"`
	StartTime        string `yaml:"start_time,omitempty" json:"start_time,omitempty"`
}

// AudienceFields are the custom-audience settings that may be defaulted.
type AudienceFields struct {
	CustomerFileSource string `yaml:"customer_file_source,omitempty" json:"customer_file_source,omitempty"`
	Description        string `yaml:"description,omitempty" json:"description,omitempty"`
}

// AudienceData is the input of CreateCustomAudience.
type AudienceData struct {
	Name           string `yaml:"name" json:"name"`
	AudienceFields `yaml:",inline" json:",inline"`
}

// AdCreativeData is the input of CreateAd. ImageURL is fetched and uploaded.
type AdCreativeData struct {
	Name             string `yaml:"name,omitempty" json:"name,omitempty"`
	PageID           string `yaml:"page_id" json:"page_id" validate:"required"`
	CallToActionType string `yaml:"call_to_action_type,omitempty" json:"call_to_action_type,omitempty"`
	Description      string `yaml:"description,omitempty" json:"description,omitempty"`
	Headline         string `yaml:"headline,omitempty" json:"headline,omitempty"`
	ImageURL         string `yaml:"image_url" json:"image_url" validate:"required,url"`
	Link             string `yaml:"link" json:"link" validate:"required,url"`
	Text             string `yaml:"text" json:"text"`
}

// CampaignData is the input of CreateCampaign. Exactly one of CustomAudience
// and CustomAudienceID, and one of AdCreatives and AdCreativeIDs, must be set.
type CampaignData struct {
	Name   string `yaml:"name" json:"name"`
	Status string `yaml:"status" json:"status"`

	Campaign CampaignFields `yaml:"campaign" json:"campaign"`
	AdSet    AdSetFields    `yaml:"ad_set" json:"ad_set"`

	CustomAudience   *AudienceFields `yaml:"custom_audience,omitempty" json:"custom_audience,omitempty"`
	CustomAudienceID string          `yaml:"custom_audience_id,omitempty" json:"custom_audience_id,omitempty"`

	AdCreatives   []AdCreativeData `yaml:"ad_creatives,omitempty" json:"ad_creatives,omitempty"`
	AdCreativeIDs []string         `yaml:"ad_creative_ids,omitempty" json:"ad_creative_ids,omitempty"`
}

// CampaignUpdate is the input of UpdateCampaign; nil sections are left alone.
type CampaignUpdate struct {
	Name     string          `yaml:"name,omitempty" json:"name,omitempty"`
	Status   string          `yaml:"status,omitempty" json:"status,omitempty"`
	Campaign *CampaignFields `yaml:"campaign,omitempty" json:"campaign,omitempty"`
	AdSet    *AdSetFields    `yaml:"ad_set,omitempty" json:"ad_set,omitempty"`
}

// DefaultValues are overlaid beneath caller input.
type DefaultValues struct {
	Campaign       CampaignFields `yaml:"campaign,omitempty" json:"campaign,omitempty"`
	AdSet          AdSetFields    `yaml:"ad_set,omitempty" json:"ad_set,omitempty"`
	CustomAudience AudienceFields `yaml:"custom_audience,omitempty" json:"custom_audience,omitempty"`
}

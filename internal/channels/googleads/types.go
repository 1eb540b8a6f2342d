package googleads

import "adsmanager/internal/channels"

// Advertising channel types the adapter can compose ads for.
const (
	ChannelTypeDisplay = "DISPLAY"
	ChannelTypeSearch  = "SEARCH"
)

// Campaign statuses.
const (
	StatusEnabled = "ENABLED"
	StatusPaused  = "PAUSED"
	StatusRemoved = "REMOVED"
)

// Config holds the Google Ads API credentials. CustomerAccountID may contain dashes.
type Config struct {
	ClientID          string `yaml:"client_id" json:"client_id"`
	ClientSecret      string `yaml:"client_secret" json:"client_secret"`
	CustomerAccountID string `yaml:"customer_account_id" json:"customer_account_id"`
	DeveloperToken    string `yaml:"developer_token" json:"developer_token"`
	LoginCustomerID   string `yaml:"login_customer_id,omitempty" json:"login_customer_id,omitempty"`
	RefreshToken      string `yaml:"refresh_token" json:"refresh_token"`

	// Optional overrides.
	APIVersion string `yaml:"api_version,omitempty" json:"api_version,omitempty"`
	BaseURL    string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	TokenURL   string `yaml:"token_url,omitempty" json:"token_url,omitempty"`
}

func (c Config) fields() []channels.Field {
	return []channels.Field{
		{Name: "clientId", Value: c.ClientID, Required: true},
		{Name: "clientSecret", Value: c.ClientSecret, Required: true},
		{Name: "customerAccountId", Value: c.CustomerAccountID, Required: true},
		{Name: "developerToken", Value: c.DeveloperToken, Required: true},
		{Name: "loginCustomerId", Value: c.LoginCustomerID},
		{Name: "refreshToken", Value: c.RefreshToken, Required: true},
	}
}

func (c Config) merge(update Config) Config {
	c.ClientID = channels.MergeString(c.ClientID, update.ClientID)
	c.ClientSecret = channels.MergeString(c.ClientSecret, update.ClientSecret)
	c.CustomerAccountID = channels.MergeString(c.CustomerAccountID, update.CustomerAccountID)
	c.DeveloperToken = channels.MergeString(c.DeveloperToken, update.DeveloperToken)
	c.LoginCustomerID = channels.MergeString(c.LoginCustomerID, update.LoginCustomerID)
	c.RefreshToken = channels.MergeString(c.RefreshToken, update.RefreshToken)
	c.APIVersion = channels.MergeString(c.APIVersion, update.APIVersion)
	c.BaseURL = channels.MergeString(c.BaseURL, update.BaseURL)
	c.TokenURL = channels.MergeString(c.TokenURL, update.TokenURL)
	return c
}

// BudgetFields configure the campaign budget. Amounts are in minor units.
type BudgetFields struct {
	DailyAmount int64 `yaml:"daily_amount,omitempty" json:"daily_amount,omitempty"`
}

// BiddingConfig holds the optional bidding strategy parameters. Amounts are in minor units.
type BiddingConfig struct {
	CpcBidCeilingAmount int64   `yaml:"cpc_bid_ceiling_amount,omitempty" json:"cpc_bid_ceiling_amount,omitempty"`
	TargetCpaAmount     int64   `yaml:"target_cpa_amount,omitempty" json:"target_cpa_amount,omitempty"`
	TargetRoas          float64 `yaml:"target_roas,omitempty" json:"target_roas,omitempty"`
}

// CampaignFields are the campaign settings. Dates are ISO 8601.
type CampaignFields struct {
	AdvertisingChannelType string         `yaml:"advertising_channel_type,omitempty" json:"advertising_channel_type,omitempty"`
	BiddingStrategyType    string         `yaml:"bidding_strategy_type,omitempty" json:"bidding_strategy_type,omitempty"`
	BiddingStrategyConfig  *BiddingConfig `yaml:"bidding_strategy_config,omitempty" json:"bidding_strategy_config,omitempty"`
	StartDate              string         `yaml:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate                string         `yaml:"end_date,omitempty" json:"end_date,omitempty"`
}

// CampaignCriteria target the campaign by language and country.
type CampaignCriteria struct {
	LanguageCodes        []string `yaml:"language_codes,omitempty" json:"language_codes,omitempty"`
	LocationCountryCodes []string `yaml:"location_country_codes,omitempty" json:"location_country_codes,omitempty"`
}

// AdGroupCriteria are the ad group keywords, matched broadly.
type AdGroupCriteria struct {
	Keywords []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
}

// AdGroupAdData is the responsive ad. Search ads use Headlines, Descriptions
// and DisplayURLPaths; display ads also need BusinessName and the images.
type AdGroupAdData struct {
	BusinessName     string   `yaml:"business_name,omitempty" json:"business_name,omitempty"`
	CallToActionText string   `yaml:"call_to_action_text,omitempty" json:"call_to_action_text,omitempty"`
	Descriptions     []string `yaml:"descriptions,omitempty" json:"descriptions,omitempty"`
	DisplayURLPaths  []string `yaml:"display_url_paths,omitempty" json:"display_url_paths,omitempty"`
	Headlines        []string `yaml:"headlines,omitempty" json:"headlines,omitempty"`
	ImageURLs        []string `yaml:"image_urls,omitempty" json:"image_urls,omitempty"`
	SquareImageURLs  []string `yaml:"square_image_urls,omitempty" json:"square_image_urls,omitempty"`
	URL              string   `yaml:"url,omitempty" json:"url,omitempty"`
}

// CampaignData is the input of CreateCampaign.
type CampaignData struct {
	Name   string `yaml:"name" json:"name"`
	Status string `yaml:"status,omitempty" json:"status,omitempty"`

	CampaignBudget   BudgetFields     `yaml:"campaign_budget" json:"campaign_budget"`
	Campaign         CampaignFields   `yaml:"campaign" json:"campaign"`
	CampaignCriteria CampaignCriteria `yaml:"campaign_criteria,omitempty" json:"campaign_criteria,omitempty"`
	AdGroupCriteria  AdGroupCriteria  `yaml:"ad_group_criteria,omitempty" json:"ad_group_criteria,omitempty"`
	AdGroupAd        AdGroupAdData    `yaml:"ad_group_ad" json:"ad_group_ad"`
}

// CampaignUpdate is the input of UpdateCampaign; nil sections are left alone.
// Criteria sections replace the existing criteria of the same kind.
type CampaignUpdate struct {
	Name             string            `yaml:"name,omitempty" json:"name,omitempty"`
	Status           string            `yaml:"status,omitempty" json:"status,omitempty"`
	CampaignBudget   *BudgetFields     `yaml:"campaign_budget,omitempty" json:"campaign_budget,omitempty"`
	Campaign         *CampaignFields   `yaml:"campaign,omitempty" json:"campaign,omitempty"`
	CampaignCriteria *CampaignCriteria `yaml:"campaign_criteria,omitempty" json:"campaign_criteria,omitempty"`
	AdGroupCriteria  *AdGroupCriteria  `yaml:"ad_group_criteria,omitempty" json:"ad_group_criteria,omitempty"`
}

// AdGroupAdDefaults are the ad fields that may be defaulted.
type AdGroupAdDefaults struct {
	BusinessName     string `yaml:"business_name,omitempty" json:"business_name,omitempty"`
	CallToActionText string `yaml:"call_to_action_text,omitempty" json:"call_to_action_text,omitempty"`
}

// DefaultValues are overlaid beneath caller input.
type DefaultValues struct {
	CampaignBudget   BudgetFields      `yaml:"campaign_budget,omitempty" json:"campaign_budget,omitempty"`
	Campaign         CampaignFields    `yaml:"campaign,omitempty" json:"campaign,omitempty"`
	CampaignCriteria CampaignCriteria  `yaml:"campaign_criteria,omitempty" json:"campaign_criteria,omitempty"`
	AdGroupCriteria  AdGroupCriteria   `yaml:"ad_group_criteria,omitempty" json:"ad_group_criteria,omitempty"`
	AdGroupAd        AdGroupAdDefaults `yaml:"ad_group_ad,omitempty" json:"ad_group_ad,omitempty"`
}

// UserListData is the input of CreateCustomAudience. A MembershipLifeSpan of
// 10000 days means no expiry.
type UserListData struct {
	Name               string `yaml:"name" json:"name"`
	Description        string `yaml:"description,omitempty" json:"description,omitempty"`
	MembershipLifeSpan int64  `yaml:"membership_life_span,omitempty" json:"membership_life_span,omitempty"`
}

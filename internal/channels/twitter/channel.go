// Package twitter implements the Twitter Ads API channel.
//
// A campaign is created by a linear chain gated on the target custom
// audience: campaign, line item, tweet, promoted tweet, targeting criterion
// and finally the line item status. A failure part-way leaves the earlier
// entities live on the account.
package twitter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"adsmanager/internal/channels"
	"adsmanager/internal/convert"
	"adsmanager/internal/transport"
)

// Channel is the Twitter adapter.
type Channel struct {
	*channels.Base

	config   Config
	defaults DefaultValues
	api      API
	account  string

	newAPI     func(Config) API
	httpClient *http.Client
	fetcher    transport.Fetcher
	hash       channels.Hasher
	now        func() time.Time
}

var _ channels.Provider[TweetData, CampaignData, CampaignUpdate, AudienceData, DefaultValues, Config] = (*Channel)(nil)

// Option configures a Channel.
type Option func(*Channel)

// WithHTTPClient sets the base HTTP client of the default signed client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Channel) { c.httpClient = client }
}

// WithAPIFactory replaces the Ads API client constructor.
func WithAPIFactory(factory func(Config) API) Option {
	return func(c *Channel) { c.newAPI = factory }
}

// WithFetcher sets the fetcher used to download tweet media.
func WithFetcher(f transport.Fetcher) Option {
	return func(c *Channel) { c.fetcher = f }
}

// WithHasher replaces the audience-user digest.
func WithHasher(h channels.Hasher) Option {
	return func(c *Channel) { c.hash = h }
}

// WithClock sets the time source of audience membership effective times.
func WithClock(now func() time.Time) Option {
	return func(c *Channel) { c.now = now }
}

// New returns a Twitter channel. A nil or incomplete config leaves it
// unconfigured until SetConfig supplies the missing fields.
func New(id string, config *Config, opts ...Option) *Channel {
	c := &Channel{
		Base:    channels.NewBase(id),
		fetcher: transport.NewFetcher(),
		hash:    channels.SHA256Hex,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.newAPI == nil {
		c.newAPI = func(cfg Config) API { return NewAdsClient(cfg, c.httpClient) }
	}
	if config != nil {
		c.config = *config
		c.rebuild()
	}
	return c
}

// SetConfig merges the non-empty fields of config and rebuilds the client
// once every required field is present.
func (c *Channel) SetConfig(config Config) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.config = c.config.merge(config)
	c.rebuild()
}

// SetDefaultValues replaces the defaults overlaid beneath caller input.
func (c *Channel) SetDefaultValues(defaults DefaultValues) {
	c.Mu.Lock()
	c.defaults = defaults
	c.Mu.Unlock()
}

// IsConfigured reports whether the API client has been built.
func (c *Channel) IsConfigured() bool {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.api != nil
}

// rebuild must be called with Mu held.
func (c *Channel) rebuild() {
	if len(channels.MissingFields(c.config.fields())) > 0 {
		return
	}
	c.api = c.newAPI(c.config)
	c.account = "accounts/" + c.config.AdAccountID
}

type session struct {
	api      API
	account  string
	defaults DefaultValues
}

func (c *Channel) session() (session, error) {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	if c.api == nil {
		return session{}, channels.NotConfiguredError(c.ID(), channels.MissingFields(c.config.fields()))
	}
	return session{api: c.api, account: c.account, defaults: c.defaults}, nil
}

// CreateAd uploads the tweet media, attaches a website card when a URL is
// given and posts a promoted-only tweet. The returned ID is the tweet id.
func (c *Channel) CreateAd(ctx context.Context, data TweetData) (*channels.Ad, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}
	tweet, err := effectiveTweet(s.defaults, data)
	if err != nil {
		return nil, err
	}
	return c.createTweet(ctx, s, tweet, c.RunLogger("create_ad"))
}

// effectiveTweet overlays the tweet defaults and checks the result.
func effectiveTweet(defaults DefaultValues, data TweetData) (TweetData, error) {
	tweet, err := channels.Overlay(defaults.Tweet, data)
	if err != nil {
		return TweetData{}, fmt.Errorf("failed to apply defaults: %w", err)
	}
	if tweet.Text == "" && len(tweet.MediaURLs) == 0 {
		return TweetData{}, channels.InvalidInputf("tweet needs text or media")
	}
	if tweet.URL != "" && len(tweet.MediaURLs) == 0 {
		return TweetData{}, channels.InvalidInputf("a website card needs at least one media url")
	}
	return tweet, nil
}

func (c *Channel) createTweet(ctx context.Context, s session, tweet TweetData, log *zap.Logger) (*channels.Ad, error) {
	keys, err := c.uploadAll(ctx, s, tweet.MediaURLs, tweet.AsUserID, log)
	if err != nil {
		return nil, err
	}

	var cardURI string
	if tweet.URL != "" {
		title := tweet.Headline
		if title == "" {
			title = tweet.URL
		}
		card := composeWebsiteCard(keys[0], tweet.Text, title, tweet.URL)
		log.Info("Creating website card", zap.Any("payload", card))
		var created cardResponse
		if _, err := s.api.Post(ctx, s.account+"/cards/website", card.values(), &created); err != nil {
			return nil, fmt.Errorf("failed to create website card: %w", err)
		}
		cardURI = created.CardURI
	}

	payload := composeTweet(tweet, keys, cardURI)
	log.Info("Creating tweet", zap.Any("payload", payload))
	var created tweetResponse
	raw, err := s.api.Post(ctx, s.account+"/tweet", payload.values(), &created)
	if err != nil {
		return nil, fmt.Errorf("failed to create tweet: %w", err)
	}

	log.Info("Tweet created", zap.String("tweet_id", created.id()))
	return &channels.Ad{ID: created.id(), Raw: raw}, nil
}

// CreateCampaign creates an active campaign with one line item promoting a
// tweet to a custom audience. The line item is created paused and only
// switched to the requested status (ACTIVE by default) once it is fully
// targeted. The audience is checked first: a too-small audience fails
// before anything is created.
func (c *Channel) CreateCampaign(ctx context.Context, data CampaignData) (*channels.Campaign, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}
	if data.TweetID == "" && data.Tweet == nil {
		return nil, channels.InvalidInputf("either a tweet id or a tweet is required")
	}
	if data.AudienceID == "" {
		return nil, channels.InvalidInputf("an audience id is required")
	}

	var tweet TweetData
	if data.Tweet != nil {
		if tweet, err = effectiveTweet(s.defaults, *data.Tweet); err != nil {
			return nil, err
		}
	}
	campaignFields, err := channels.Overlay(s.defaults.Campaign, data.Campaign)
	if err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	lineItemFields, err := channels.Overlay(s.defaults.LineItem, data.LineItem)
	if err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	campaignPayload, err := composeCampaign(data.Name+" - Campaign", StatusActive, campaignFields)
	if err != nil {
		return nil, err
	}
	status := data.Status
	if status == "" {
		status = StatusActive
	}

	log := c.RunLogger("create_campaign")

	log.Info("Checking custom audience", zap.String("audience_id", data.AudienceID))
	var audience audienceResponse
	if _, err := s.api.Get(ctx, s.account+"/custom_audiences/"+data.AudienceID, nil, &audience); err != nil {
		return nil, fmt.Errorf("failed to look up custom audience: %w", err)
	}
	if audience.tooSmall() {
		return nil, fmt.Errorf("%w: custom audience %s", channels.ErrAudienceTooSmall, data.AudienceID)
	}

	log.Info("Creating campaign", zap.Any("payload", campaignPayload))
	var campaign idResponse
	raw, err := s.api.Post(ctx, s.account+"/campaigns", campaignPayload.values(), &campaign)
	if err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}
	log = log.With(zap.String("campaign_id", campaign.ID))

	lineItemPayload := composeLineItem(campaign.ID, data.Name+" - Group", StatusPaused, withLineItemDefaults(lineItemFields))
	log.Info("Creating line item", zap.Any("payload", lineItemPayload))
	var lineItem idResponse
	if _, err := s.api.Post(ctx, s.account+"/line_items", lineItemPayload.values(), &lineItem); err != nil {
		return nil, fmt.Errorf("failed to create line item: %w", err)
	}

	tweetID := data.TweetID
	if data.Tweet != nil {
		ad, err := c.createTweet(ctx, s, tweet, log)
		if err != nil {
			return nil, err
		}
		tweetID = ad.ID
	}

	promoted := composePromotedTweet(lineItem.ID, tweetID)
	log.Info("Creating promoted tweet", zap.Any("payload", promoted))
	if _, err := s.api.Post(ctx, s.account+"/promoted_tweets", promoted.values(), nil); err != nil {
		return nil, fmt.Errorf("failed to create promoted tweet: %w", err)
	}

	criterion := composeTargetingCriterion(lineItem.ID, data.AudienceID)
	log.Info("Creating targeting criterion", zap.Any("payload", criterion))
	if _, err := s.api.Post(ctx, s.account+"/targeting_criteria", criterion.values(), nil); err != nil {
		return nil, fmt.Errorf("failed to create targeting criterion: %w", err)
	}

	log.Info("Updating line item status", zap.String("line_item_id", lineItem.ID), zap.String("status", status))
	if _, err := s.api.Put(ctx, s.account+"/line_items/"+lineItem.ID, params{"entity_status": status}.values(), nil); err != nil {
		return nil, fmt.Errorf("failed to update line item status: %w", err)
	}

	log.Info("Campaign created")
	return &channels.Campaign{
		ID:     campaign.ID,
		Name:   data.Name + " - Campaign",
		Status: status,
		Resources: map[string]string{
			"line_item":       lineItem.ID,
			"tweet":           tweetID,
			"custom_audience": data.AudienceID,
		},
		Raw: raw,
	}, nil
}

// UpdateCampaign applies the non-nil sections of data and returns the
// campaign as stored afterwards. Only the first line item of the campaign
// is updated.
func (c *Channel) UpdateCampaign(ctx context.Context, campaignID string, data CampaignUpdate) (*channels.Campaign, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}
	path := s.account + "/campaigns/" + campaignID
	log := c.RunLogger("update_campaign").With(zap.String("campaign_id", campaignID))

	if data.Campaign != nil {
		payload, err := composeCampaign("", "", *data.Campaign)
		if err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			log.Info("Updating campaign", zap.Any("payload", payload))
			if _, err := s.api.Put(ctx, path, payload.values(), nil); err != nil {
				return nil, fmt.Errorf("failed to update campaign: %w", err)
			}
		}
	}

	if data.LineItem != nil {
		var lineItems []idResponse
		if _, err := s.api.Get(ctx, s.account+"/line_items", url.Values{"campaign_ids": {campaignID}}, &lineItems); err != nil {
			return nil, fmt.Errorf("failed to look up line items: %w", err)
		}
		if len(lineItems) == 0 {
			return nil, channels.InvalidInputf("campaign %s has no line item", campaignID)
		}
		payload := composeLineItem("", "", "", *data.LineItem)
		if len(payload) > 0 {
			log.Info("Updating line item", zap.String("line_item_id", lineItems[0].ID), zap.Any("payload", payload))
			if _, err := s.api.Put(ctx, s.account+"/line_items/"+lineItems[0].ID, payload.values(), nil); err != nil {
				return nil, fmt.Errorf("failed to update line item: %w", err)
			}
		}
	}

	if data.Name != "" || data.Status != "" {
		payload := params{}
		payload.set("name", data.Name)
		payload.set("entity_status", data.Status)
		log.Info("Updating campaign name and status", zap.Any("payload", payload))
		if _, err := s.api.Put(ctx, path, payload.values(), nil); err != nil {
			return nil, fmt.Errorf("failed to update campaign: %w", err)
		}
	}

	var campaign entityResponse
	raw, err := s.api.Get(ctx, path, nil, &campaign)
	if err != nil {
		return nil, fmt.Errorf("failed to read campaign: %w", err)
	}
	log.Info("Campaign updated")
	return &channels.Campaign{ID: campaign.ID, Name: campaign.Name, Status: campaign.EntityStatus, Raw: raw}, nil
}

// UpdateCampaignStatus sets the campaign entity status.
func (c *Channel) UpdateCampaignStatus(ctx context.Context, campaignID, status string) (string, error) {
	s, err := c.session()
	if err != nil {
		return "", err
	}
	if status == "" {
		return "", channels.InvalidInputf("status is required")
	}
	log := c.RunLogger("update_campaign_status")
	log.Info("Updating campaign status", zap.String("campaign_id", campaignID), zap.String("status", status))
	if _, err := s.api.Put(ctx, s.account+"/campaigns/"+campaignID, params{"entity_status": status}.values(), nil); err != nil {
		return "", fmt.Errorf("failed to update campaign status: %w", err)
	}
	log.Info("Campaign status updated", zap.String("campaign_id", campaignID))
	return campaignID, nil
}

// DeleteCampaign deletes the campaign.
func (c *Channel) DeleteCampaign(ctx context.Context, campaignID string) (string, error) {
	s, err := c.session()
	if err != nil {
		return "", err
	}
	log := c.RunLogger("delete_campaign")
	log.Info("Deleting campaign", zap.String("campaign_id", campaignID))
	if _, err := s.api.Delete(ctx, s.account+"/campaigns/"+campaignID, nil); err != nil {
		return "", fmt.Errorf("failed to delete campaign: %w", err)
	}
	log.Info("Campaign deleted", zap.String("campaign_id", campaignID))
	return campaignID, nil
}

// CreateCustomAudience creates an empty custom audience. It cannot be
// targeted until enough users have been added.
func (c *Channel) CreateCustomAudience(ctx context.Context, data AudienceData) (*channels.Audience, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}
	if data.Name == "" {
		return nil, channels.InvalidInputf("custom audience name is required")
	}
	payload := params{"name": data.Name}
	payload.set("description", data.Description)

	log := c.RunLogger("create_custom_audience")
	log.Info("Creating custom audience", zap.Any("payload", payload))
	var created idResponse
	raw, err := s.api.Post(ctx, s.account+"/custom_audiences", payload.values(), &created)
	if err != nil {
		return nil, fmt.Errorf("failed to create custom audience: %w", err)
	}
	log.Info("Custom audience created", zap.String("audience_id", created.ID))
	return &channels.Audience{ID: created.ID, Raw: raw}, nil
}

// CreateCustomAudienceUsers adds hashed users to a custom audience. The
// membership starts now and ends at data.ExpiresAt when set.
func (c *Channel) CreateCustomAudienceUsers(ctx context.Context, audienceID string, data channels.UserData) (*channels.AudienceUsersResult, error) {
	return c.audienceUsers(ctx, operationUpdate, audienceID, data)
}

// DeleteCustomAudienceUsers removes hashed users from a custom audience.
func (c *Channel) DeleteCustomAudienceUsers(ctx context.Context, audienceID string, data channels.UserData) (*channels.AudienceUsersResult, error) {
	return c.audienceUsers(ctx, operationDelete, audienceID, data)
}

func (c *Channel) audienceUsers(ctx context.Context, operationType, audienceID string, data channels.UserData) (*channels.AudienceUsersResult, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}
	hashed, err := channels.HashUsers(data, c.hash)
	if err != nil {
		return nil, err
	}
	expiresAt, err := convert.FormatDateTime(data.ExpiresAt)
	if err != nil {
		return nil, channels.InvalidInputf("expires at: %v", err)
	}
	body := composeAudienceUsers(operationType, c.now().UTC().Format(time.RFC3339), expiresAt, hashed)

	log := c.RunLogger("custom_audience_users").With(zap.String("audience_id", audienceID))
	log.Info("Sending custom audience users", zap.String("operation", operationType), zap.Int("users", len(hashed)))
	raw, err := s.api.PostJSON(ctx, s.account+"/custom_audiences/"+audienceID+"/users", body, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to send custom audience users: %w", err)
	}
	log.Info("Custom audience users sent", zap.Int("users", len(hashed)))
	return &channels.AudienceUsersResult{AudienceID: audienceID, Users: len(hashed), Raw: raw}, nil
}

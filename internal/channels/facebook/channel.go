// Package facebook implements the Facebook Marketing API channel.
//
// Campaign creation runs a linear chain: campaign, custom audience, ad set,
// ad creatives, then ads. Each step threads the id of the previous one. A
// failure part-way leaves the earlier entities live on the account.
package facebook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"adsmanager/internal/channels"
	"adsmanager/internal/schema"
	"adsmanager/internal/transport"
)

// Channel is the Facebook adapter.
type Channel struct {
	*channels.Base

	config   Config
	defaults DefaultValues
	api      API
	account  string

	newAPI     func(Config) API
	httpClient *http.Client
	fetcher    transport.Fetcher
	validator  channels.Validator
	hash       channels.Hasher
	now        func() time.Time
}

var _ channels.Provider[AdCreativeData, CampaignData, CampaignUpdate, AudienceData, DefaultValues, Config] = (*Channel)(nil)

// Option configures a Channel.
type Option func(*Channel)

// WithHTTPClient sets the HTTP client of the default Graph API client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Channel) { c.httpClient = client }
}

// WithAPIFactory replaces the Graph API client constructor.
func WithAPIFactory(factory func(Config) API) Option {
	return func(c *Channel) { c.newAPI = factory }
}

// WithFetcher sets the fetcher used to download creative images.
func WithFetcher(f transport.Fetcher) Option {
	return func(c *Channel) { c.fetcher = f }
}

// WithValidator replaces the payload validator. nil disables validation.
func WithValidator(v channels.Validator) Option {
	return func(c *Channel) { c.validator = v }
}

// WithHasher replaces the audience-user digest.
func WithHasher(h channels.Hasher) Option {
	return func(c *Channel) { c.hash = h }
}

// WithClock sets the time source used in generated names.
func WithClock(now func() time.Time) Option {
	return func(c *Channel) { c.now = now }
}

// New returns a Facebook channel. A nil or incomplete config leaves it
// unconfigured until SetConfig supplies the missing fields.
func New(id string, config *Config, opts ...Option) *Channel {
	c := &Channel{
		Base:      channels.NewBase(id),
		fetcher:   transport.NewFetcher(),
		validator: schema.New(),
		hash:      channels.SHA256Hex,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.newAPI == nil {
		c.newAPI = func(cfg Config) API { return NewGraphClient(cfg, c.httpClient) }
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
	c.account = "act_" + strings.TrimPrefix(c.config.AdAccountID, "act_")
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

func (c *Channel) millis() int64 { return c.now().UnixMilli() }

// CreateAd uploads the image behind data.ImageURL and creates an ad creative
// that references it.
func (c *Channel) CreateAd(ctx context.Context, data AdCreativeData) (*channels.Ad, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}
	return c.createAd(ctx, s, data, c.RunLogger("create_ad"))
}

func (c *Channel) createAd(ctx context.Context, s session, data AdCreativeData, log *zap.Logger) (*channels.Ad, error) {
	if err := channels.Check(c.validator, data); err != nil {
		return nil, fmt.Errorf("invalid ad creative: %w", err)
	}

	media, err := transport.FetchMedia(ctx, c.fetcher, data.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ad image: %w", err)
	}

	// The image bytes are never logged.
	log.Info("Creating ad image", zap.String("name", media.Name), zap.Int("bytes", media.Size))
	var image adImageResponse
	if _, err := s.api.Post(ctx, s.account+"/adimages", adImagePayload{Bytes: media.Base64, Name: media.Name}, &image); err != nil {
		return nil, fmt.Errorf("failed to create ad image: %w", err)
	}
	hash, ok := image.firstHash()
	if !ok {
		return nil, &channels.UpstreamError{Provider: "facebook", Op: "POST " + s.account + "/adimages", Err: errors.New("response has no image hash")}
	}

	payload := composeAdCreative(data, hash)
	log.Info("Creating ad creative", zap.Any("payload", payload))
	var created idResponse
	raw, err := s.api.Post(ctx, s.account+"/adcreatives", payload, &created)
	if err != nil {
		return nil, fmt.Errorf("failed to create ad creative: %w", err)
	}

	log.Info("Ad creative created", zap.String("ad_creative_id", created.ID))
	return &channels.Ad{ID: created.ID, Raw: raw}, nil
}

// CreateCampaign creates the campaign and everything it needs to deliver:
// an optional custom audience, one ad set, optional creatives and one ad per
// creative.
func (c *Channel) CreateCampaign(ctx context.Context, data CampaignData) (*channels.Campaign, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}
	if len(data.AdCreativeIDs) == 0 && len(data.AdCreatives) == 0 {
		return nil, channels.InvalidInputf("adCreativeIds or adCreatives is required")
	}
	if data.CustomAudienceID == "" && data.CustomAudience == nil {
		return nil, channels.InvalidInputf("customAudienceId or customAudience is required")
	}

	log := c.RunLogger("create_campaign")
	resources := make(map[string]string)

	// 1. Campaign
	campaignFields, err := channels.Overlay(s.defaults.Campaign, data.Campaign)
	if err != nil {
		return nil, fmt.Errorf("failed to apply campaign defaults: %w", err)
	}
	campaignPayload := composeCampaign(data.Name, data.Status, campaignFields)
	if err := channels.Check(c.validator, campaignPayload); err != nil {
		return nil, fmt.Errorf("invalid campaign: %w", err)
	}
	log.Info("Creating campaign", zap.Any("payload", campaignPayload))
	var campaign idResponse
	campaignRaw, err := s.api.Post(ctx, s.account+"/campaigns", campaignPayload, &campaign)
	if err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	// 2. Custom audience
	audienceID := data.CustomAudienceID
	if data.CustomAudience != nil {
		audience, err := c.createAudience(ctx, s, AudienceData{
			Name:           fmt.Sprintf("%s - Custom Audience - %d", data.Name, c.millis()),
			AudienceFields: *data.CustomAudience,
		}, log)
		if err != nil {
			return nil, err
		}
		audienceID = audience.ID
		resources["custom_audience"] = audienceID
	}

	// 3. Ad set
	adSetFields, err := channels.Overlay(s.defaults.AdSet, data.AdSet)
	if err != nil {
		return nil, fmt.Errorf("failed to apply ad set defaults: %w", err)
	}
	adSetPayload := composeAdSet(data.Name+" - Ad Set", data.Status, campaign.ID, audienceID, adSetFields)
	if err := channels.Check(c.validator, adSetPayload); err != nil {
		return nil, fmt.Errorf("invalid ad set: %w", err)
	}
	log.Info("Creating ad set", zap.Any("payload", adSetPayload))
	var adSet idResponse
	if _, err := s.api.Post(ctx, s.account+"/adsets", adSetPayload, &adSet); err != nil {
		return nil, fmt.Errorf("failed to create ad set: %w", err)
	}
	resources["ad_set"] = adSet.ID

	// 4. Ad creatives
	creativeIDs := data.AdCreativeIDs
	if len(data.AdCreatives) > 0 {
		creativeIDs = make([]string, len(data.AdCreatives))
		// Siblings of a failed creative run to completion.
		var g errgroup.Group
		for i, creative := range data.AdCreatives {
			creative.Name = fmt.Sprintf("%s - Ad Creative - %d", data.Name, c.millis())
			g.Go(func() error {
				ad, err := c.createAd(ctx, s, creative, log)
				if err != nil {
					return fmt.Errorf("ad creative %d: %w", i+1, err)
				}
				creativeIDs[i] = ad.ID
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for i, id := range creativeIDs {
			resources[fmt.Sprintf("ad_creative.%d", i+1)] = id
		}
	}

	// 5. Ads
	adIDs := make([]string, len(creativeIDs))
	var g errgroup.Group
	for i, creativeID := range creativeIDs {
		payload := composeAd(fmt.Sprintf("%s - Ad - %d", data.Name, i+1), data.Status, adSet.ID, creativeID)
		g.Go(func() error {
			log.Info("Creating ad", zap.Int("index", i+1), zap.Int("total", len(creativeIDs)), zap.Any("payload", payload))
			var ad idResponse
			if _, err := s.api.Post(ctx, s.account+"/ads", payload, &ad); err != nil {
				return fmt.Errorf("failed to create ad %d: %w", i+1, err)
			}
			adIDs[i] = ad.ID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, id := range adIDs {
		resources[fmt.Sprintf("ad.%d", i+1)] = id
	}

	log.Info("Campaign created", zap.String("campaign_id", campaign.ID))
	return &channels.Campaign{
		ID:        campaign.ID,
		Name:      data.Name,
		Status:    data.Status,
		Resources: resources,
		Raw:       campaignRaw,
	}, nil
}

// UpdateCampaign applies the non-nil sections of data. Only the first ad set
// of the campaign is updated.
func (c *Channel) UpdateCampaign(ctx context.Context, campaignID string, data CampaignUpdate) (*channels.Campaign, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}
	log := c.RunLogger("update_campaign").With(zap.String("campaign_id", campaignID))

	if data.AdSet != nil {
		var adSets listResponse
		if _, err := s.api.Get(ctx, campaignID+"/adsets", url.Values{"fields": {"id"}}, &adSets); err != nil {
			return nil, fmt.Errorf("failed to list ad sets: %w", err)
		}
		if len(adSets.Data) == 0 {
			return nil, channels.InvalidInputf("campaign %s has no ad set", campaignID)
		}
		adSetID := adSets.Data[0].ID
		payload := composeAdSet("", "", "", "", *data.AdSet)
		log.Info("Updating ad set", zap.String("ad_set_id", adSetID), zap.Any("payload", payload))
		if _, err := s.api.Post(ctx, adSetID, payload, nil); err != nil {
			return nil, fmt.Errorf("failed to update ad set: %w", err)
		}
	}

	if data.Campaign != nil {
		payload := composeCampaign("", "", *data.Campaign)
		log.Info("Updating campaign", zap.Any("payload", payload))
		if _, err := s.api.Post(ctx, campaignID, payload, nil); err != nil {
			return nil, fmt.Errorf("failed to update campaign: %w", err)
		}
	}

	if data.Name != "" || data.Status != "" {
		payload := statusPayload{Name: data.Name, Status: data.Status}
		log.Info("Updating campaign name and status", zap.Any("payload", payload))
		if _, err := s.api.Post(ctx, campaignID, payload, nil); err != nil {
			return nil, fmt.Errorf("failed to update campaign name and status: %w", err)
		}
	}

	var campaign campaignResponse
	raw, err := s.api.Get(ctx, campaignID, url.Values{"fields": {"id,name,status"}}, &campaign)
	if err != nil {
		return nil, fmt.Errorf("failed to read campaign: %w", err)
	}

	log.Info("Campaign updated")
	return &channels.Campaign{ID: campaign.ID, Name: campaign.Name, Status: campaign.Status, Raw: raw}, nil
}

// UpdateCampaignStatus sets the campaign status and returns the campaign id.
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
	if _, err := s.api.Post(ctx, campaignID, statusPayload{Status: status}, nil); err != nil {
		return "", fmt.Errorf("failed to update campaign status: %w", err)
	}
	log.Info("Campaign status updated", zap.String("campaign_id", campaignID))
	return campaignID, nil
}

// DeleteCampaign deletes the campaign and returns its id.
func (c *Channel) DeleteCampaign(ctx context.Context, campaignID string) (string, error) {
	s, err := c.session()
	if err != nil {
		return "", err
	}
	log := c.RunLogger("delete_campaign")
	log.Info("Deleting campaign", zap.String("campaign_id", campaignID))
	if _, err := s.api.Delete(ctx, campaignID, nil, nil); err != nil {
		return "", fmt.Errorf("failed to delete campaign: %w", err)
	}
	log.Info("Campaign deleted", zap.String("campaign_id", campaignID))
	return campaignID, nil
}

// CreateCustomAudience creates a CUSTOM audience, overlaying the audience defaults.
func (c *Channel) CreateCustomAudience(ctx context.Context, data AudienceData) (*channels.Audience, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}
	return c.createAudience(ctx, s, data, c.RunLogger("create_custom_audience"))
}

func (c *Channel) createAudience(ctx context.Context, s session, data AudienceData, log *zap.Logger) (*channels.Audience, error) {
	fields, err := channels.Overlay(s.defaults.CustomAudience, data.AudienceFields)
	if err != nil {
		return nil, fmt.Errorf("failed to apply custom audience defaults: %w", err)
	}
	payload := composeAudience(data.Name, fields)
	if err := channels.Check(c.validator, payload); err != nil {
		return nil, fmt.Errorf("invalid custom audience: %w", err)
	}

	log.Info("Creating custom audience", zap.Any("payload", payload))
	var created idResponse
	raw, err := s.api.Post(ctx, s.account+"/customaudiences", payload, &created)
	if err != nil {
		return nil, fmt.Errorf("failed to create custom audience: %w", err)
	}
	log.Info("Custom audience created", zap.String("custom_audience_id", created.ID))
	return &channels.Audience{ID: created.ID, Raw: raw}, nil
}

// CreateCustomAudienceUsers adds hashed users to the audience.
func (c *Channel) CreateCustomAudienceUsers(ctx context.Context, audienceID string, data channels.UserData) (*channels.AudienceUsersResult, error) {
	return c.audienceUsers(ctx, http.MethodPost, audienceID, data)
}

// DeleteCustomAudienceUsers removes hashed users from the audience.
func (c *Channel) DeleteCustomAudienceUsers(ctx context.Context, audienceID string, data channels.UserData) (*channels.AudienceUsersResult, error) {
	return c.audienceUsers(ctx, http.MethodDelete, audienceID, data)
}

func (c *Channel) audienceUsers(ctx context.Context, method, audienceID string, data channels.UserData) (*channels.AudienceUsersResult, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}
	hashed, err := channels.HashUsers(data, c.hash)
	if err != nil {
		return nil, err
	}

	payload := composeUsers(hashed)
	path := audienceID + "/users"
	log := c.RunLogger("custom_audience_users").With(zap.String("custom_audience_id", audienceID))
	log.Info("Sending custom audience users", zap.String("method", method), zap.Int("users", len(hashed)))

	var resp usersResponse
	var raw []byte
	if method == http.MethodDelete {
		raw, err = s.api.Delete(ctx, path, payload, &resp)
	} else {
		raw, err = s.api.Post(ctx, path, payload, &resp)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update custom audience users: %w", err)
	}

	log.Info("Custom audience users sent", zap.Int("received", resp.NumReceived), zap.Int("invalid", resp.NumInvalidEntries))
	return &channels.AudienceUsersResult{AudienceID: audienceID, Users: len(hashed), Raw: raw}, nil
}

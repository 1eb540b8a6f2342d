// Package googleads implements the Google Ads API channel.
//
// A campaign is created in a single googleAds:mutate batch: budget, campaign,
// criteria, ad group, keywords, image assets, the responsive ad and finally
// the status change. Resources created in the batch reference each other
// through negative temporary ids handed out by an arena.
package googleads

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"adsmanager/internal/channels"
	"adsmanager/internal/transport"
)

// Channel is the Google Ads adapter.
type Channel struct {
	*channels.Base

	config     Config
	defaults   DefaultValues
	api        API
	customerID string

	newAPI     func(Config) API
	httpClient *http.Client
	fetcher    transport.Fetcher
	hash       channels.Hasher
	now        func() time.Time
	tempStart  func() int64
}

// CreateAd is not supported, so the ad type parameter is left open.
var _ channels.Provider[any, CampaignData, CampaignUpdate, UserListData, DefaultValues, Config] = (*Channel)(nil)

// Option configures a Channel.
type Option func(*Channel)

// WithHTTPClient sets the base HTTP client of the default REST client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Channel) { c.httpClient = client }
}

// WithAPIFactory replaces the REST client constructor.
func WithAPIFactory(factory func(Config) API) Option {
	return func(c *Channel) { c.newAPI = factory }
}

// WithFetcher sets the fetcher used to download image assets.
func WithFetcher(f transport.Fetcher) Option {
	return func(c *Channel) { c.fetcher = f }
}

// WithHasher replaces the audience-user digest.
func WithHasher(h channels.Hasher) Option {
	return func(c *Channel) { c.hash = h }
}

// WithClock sets the time source used in generated names.
func WithClock(now func() time.Time) Option {
	return func(c *Channel) { c.now = now }
}

// WithTempIDStart sets the source of the first temporary id of each batch.
func WithTempIDStart(start func() int64) Option {
	return func(c *Channel) { c.tempStart = start }
}

// New returns a Google Ads channel. A nil or incomplete config leaves it
// unconfigured until SetConfig supplies the missing fields.
func New(id string, config *Config, opts ...Option) *Channel {
	c := &Channel{
		Base:      channels.NewBase(id),
		fetcher:   transport.NewFetcher(),
		hash:      channels.SHA256Hex,
		now:       time.Now,
		tempStart: randomStart,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.newAPI == nil {
		c.newAPI = func(cfg Config) API { return NewRESTClient(cfg, c.httpClient) }
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
	c.customerID = customerID(c.config.CustomerAccountID)
}

type session struct {
	api        API
	customerID string
	defaults   DefaultValues
}

func (c *Channel) session() (session, error) {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	if c.api == nil {
		return session{}, channels.NotConfiguredError(c.ID(), channels.MissingFields(c.config.fields()))
	}
	return session{api: c.api, customerID: c.customerID, defaults: c.defaults}, nil
}

func (s session) mutate(ctx context.Context, ops []mutateOperation) ([]string, []byte, error) {
	var resp mutateResponse
	raw, err := s.api.Post(ctx, "customers/"+s.customerID+"/googleAds:mutate", mutateRequest{MutateOperations: ops}, &resp)
	if err != nil {
		return nil, raw, err
	}
	names := resp.resourceNames()
	if len(names) != len(ops) {
		return nil, raw, &channels.UpstreamError{
			Provider: "google",
			Op:       "mutate",
			Body:     raw,
			Err:      fmt.Errorf("got %d results for %d operations", len(names), len(ops)),
		}
	}
	return names, raw, nil
}

func (s session) search(ctx context.Context, query string) ([]searchRow, error) {
	var rows []searchRow
	req := searchRequest{Query: query}
	for {
		var resp searchResponse
		if _, err := s.api.Post(ctx, "customers/"+s.customerID+"/googleAds:search", req, &resp); err != nil {
			return nil, err
		}
		rows = append(rows, resp.Results...)
		if resp.NextPageToken == "" {
			return rows, nil
		}
		req.PageToken = resp.NextPageToken
	}
}

// CreateAd is not supported; ads are created with their campaign.
func (c *Channel) CreateAd(ctx context.Context, _ any) (*channels.Ad, error) {
	if _, err := c.session(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("google ads: create ad: %w", channels.ErrNotImplemented)
}

type effectiveCampaign struct {
	budget           BudgetFields
	campaign         CampaignFields
	campaignCriteria CampaignCriteria
	adGroupCriteria  AdGroupCriteria
	ad               AdGroupAdData
}

func overlay(d DefaultValues, data CampaignData) (effectiveCampaign, error) {
	var e effectiveCampaign
	var err error
	if e.budget, err = channels.Overlay(d.CampaignBudget, data.CampaignBudget); err != nil {
		return e, err
	}
	if e.campaign, err = channels.Overlay(d.Campaign, data.Campaign); err != nil {
		return e, err
	}
	if e.campaignCriteria, err = channels.Overlay(d.CampaignCriteria, data.CampaignCriteria); err != nil {
		return e, err
	}
	if e.adGroupCriteria, err = channels.Overlay(d.AdGroupCriteria, data.AdGroupCriteria); err != nil {
		return e, err
	}
	adDefaults := AdGroupAdData{BusinessName: d.AdGroupAd.BusinessName, CallToActionText: d.AdGroupAd.CallToActionText}
	if e.ad, err = channels.Overlay(adDefaults, data.AdGroupAd); err != nil {
		return e, err
	}
	return e, nil
}

// prepared holds what CreateCampaign resolves over the network before the batch.
type prepared struct {
	languages []string
	locations []string
	images    []*transport.Media
	squares   []*transport.Media
}

// prepare resolves criteria constants and fetches image assets concurrently.
func (c *Channel) prepare(ctx context.Context, s session, criteria CampaignCriteria, imageURLs, squareURLs []string) (*prepared, error) {
	p := &prepared{
		images:  make([]*transport.Media, len(imageURLs)),
		squares: make([]*transport.Media, len(squareURLs)),
	}
	g, gctx := errgroup.WithContext(ctx)

	if len(criteria.LanguageCodes) > 0 {
		g.Go(func() error {
			rows, err := s.search(gctx, languageQuery(criteria.LanguageCodes))
			if err != nil {
				return fmt.Errorf("failed to look up languages: %w", err)
			}
			for _, r := range rows {
				if r.LanguageConstant != nil {
					p.languages = append(p.languages, r.LanguageConstant.ResourceName)
				}
			}
			return nil
		})
	}
	if len(criteria.LocationCountryCodes) > 0 {
		g.Go(func() error {
			rows, err := s.search(gctx, geoTargetQuery(criteria.LocationCountryCodes))
			if err != nil {
				return fmt.Errorf("failed to look up locations: %w", err)
			}
			for _, r := range rows {
				if r.GeoTargetConstant != nil {
					p.locations = append(p.locations, r.GeoTargetConstant.ResourceName)
				}
			}
			return nil
		})
	}

	fetch := func(dst []*transport.Media, urls []string) {
		for i, u := range urls {
			g.Go(func() error {
				m, err := transport.FetchMedia(gctx, c.fetcher, u)
				if err != nil {
					return fmt.Errorf("failed to fetch image asset: %w", err)
				}
				dst[i] = m
				return nil
			})
		}
	}
	fetch(p.images, imageURLs)
	fetch(p.squares, squareURLs)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return p, nil
}

// batch accumulates mutate operations and returns each one's index.
type batch struct {
	ops []mutateOperation
}

func (b *batch) add(op mutateOperation) int {
	b.ops = append(b.ops, op)
	return len(b.ops) - 1
}

// CreateCampaign creates the campaign, its targeting, one ad group and one
// responsive ad in a single batch. The returned ID is the campaign resource name.
func (c *Channel) CreateCampaign(ctx context.Context, data CampaignData) (*channels.Campaign, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}
	e, err := overlay(s.defaults, data)
	if err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	channelType := e.campaign.AdvertisingChannelType
	groupType, err := adGroupType(channelType)
	if err != nil {
		return nil, err
	}

	a := newArena(s.customerID, c.tempStart())
	budgetH := a.reserve(collectionBudgets)
	campaignH := a.reserve(collectionCampaigns)
	adGroupH := a.reserve(collectionAdGroups)
	imageHs := a.reserveN(collectionAssets, len(e.ad.ImageURLs))
	squareHs := a.reserveN(collectionAssets, len(e.ad.SquareImageURLs))

	// Everything that needs no network is composed up front so that invalid
	// input fails before any call.
	budget := composeBudget(fmt.Sprintf("%s - Budget - %d", data.Name, c.now().UnixMilli()), e.budget)
	budget.ResourceName = a.name(budgetH)

	camp, err := composeCampaign(data.Name, a.name(budgetH), e.campaign)
	if err != nil {
		return nil, err
	}
	camp.ResourceName = a.name(campaignH)
	camp.Status = StatusPaused

	group := adGroup{
		ResourceName: a.name(adGroupH),
		Campaign:     a.name(campaignH),
		Name:         data.Name + " - Ad Group",
		Status:       StatusEnabled,
		Type:         groupType,
	}
	keywords := composeKeywordCriteria(a.name(adGroupH), e.adGroupCriteria.Keywords)

	groupAd, err := composeAdGroupAd(a.name(adGroupH), channelType, e.ad, a.names(imageHs), a.names(squareHs))
	if err != nil {
		return nil, err
	}

	log := c.RunLogger("create_campaign")
	log.Info("Creating campaign",
		zap.String("name", data.Name),
		zap.String("channel_type", channelType),
		zap.Any("budget", budget),
		zap.Any("campaign", camp),
	)

	p, err := c.prepare(ctx, s, e.campaignCriteria, e.ad.ImageURLs, e.ad.SquareImageURLs)
	if err != nil {
		return nil, err
	}

	var b batch
	a.bind(budgetH, b.add(mutateOperation{CampaignBudgetOperation: &operation{Create: budget}}))
	a.bind(campaignH, b.add(mutateOperation{CampaignOperation: &operation{Create: camp}}))
	for _, crit := range composeCampaignCriteria(a.name(campaignH), p.languages, p.locations) {
		b.add(mutateOperation{CampaignCriterionOperation: &operation{Create: crit}})
	}
	a.bind(adGroupH, b.add(mutateOperation{AdGroupOperation: &operation{Create: group}}))
	for _, kw := range keywords {
		b.add(mutateOperation{AdGroupCriterionOperation: &operation{Create: kw}})
	}
	for i, m := range p.images {
		a.bind(imageHs[i], b.add(mutateOperation{AssetOperation: &operation{Create: composeAsset(a.name(imageHs[i]), m)}}))
	}
	for i, m := range p.squares {
		a.bind(squareHs[i], b.add(mutateOperation{AssetOperation: &operation{Create: composeAsset(a.name(squareHs[i]), m)}}))
	}
	adOp := b.add(mutateOperation{AdGroupAdOperation: &operation{Create: groupAd}})
	b.add(mutateOperation{CampaignOperation: &operation{
		Update:     campaign{ResourceName: a.name(campaignH), Status: campaignStatus(data.Status)},
		UpdateMask: "status",
	}})

	log.Info("Sending mutate batch", zap.Int("operations", len(b.ops)))
	results, raw, err := s.mutate(ctx, b.ops)
	if err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}
	if err := a.resolve(results); err != nil {
		return nil, &channels.UpstreamError{Provider: "google", Op: "mutate", Body: raw, Err: err}
	}

	campaignName := results[len(results)-1]
	resources := map[string]string{
		"campaign_budget": a.resolved(budgetH),
		"ad_group":        a.resolved(adGroupH),
		"ad_group_ad":     results[adOp],
	}
	for i, h := range imageHs {
		resources[fmt.Sprintf("image_asset.%d", i+1)] = a.resolved(h)
	}
	for i, h := range squareHs {
		resources[fmt.Sprintf("square_image_asset.%d", i+1)] = a.resolved(h)
	}

	log.Info("Campaign created", zap.String("campaign", campaignName))
	return &channels.Campaign{
		ID:        campaignName,
		Name:      data.Name,
		Status:    campaignStatus(data.Status),
		Resources: resources,
		Raw:       raw,
	}, nil
}

// UpdateCampaign applies the non-nil sections of data in one batch. Criteria
// sections delete the existing criteria of the same kind and recreate them.
// Only the first ad group of the campaign is considered.
func (c *Channel) UpdateCampaign(ctx context.Context, campaignID string, data CampaignUpdate) (*channels.Campaign, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}
	var status string
	if data.Status != "" {
		if status, err = updateStatus(data.Status); err != nil {
			return nil, err
		}
	}
	name := resourceName(s.customerID, collectionCampaigns, campaignID)
	log := c.RunLogger("update_campaign").With(zap.String("campaign", name))
	log.Info("Updating campaign")

	var b batch

	if data.AdGroupCriteria != nil {
		rows, err := s.search(ctx, "SELECT ad_group.resource_name FROM ad_group WHERE ad_group.campaign = "+
			gaqlString(name)+" AND ad_group.status != 'REMOVED' LIMIT 1")
		if err != nil {
			return nil, fmt.Errorf("failed to look up ad group: %w", err)
		}
		if len(rows) == 0 || rows[0].AdGroup == nil {
			return nil, channels.InvalidInputf("campaign %s has no ad group", name)
		}
		group := rows[0].AdGroup.ResourceName

		existing, err := s.search(ctx, "SELECT ad_group_criterion.resource_name FROM ad_group_criterion WHERE ad_group_criterion.ad_group = "+
			gaqlString(group)+" AND ad_group_criterion.type = 'KEYWORD' AND ad_group_criterion.status != 'REMOVED'")
		if err != nil {
			return nil, fmt.Errorf("failed to look up keywords: %w", err)
		}
		for _, r := range existing {
			if r.AdGroupCriterion != nil {
				b.add(mutateOperation{AdGroupCriterionOperation: &operation{Remove: r.AdGroupCriterion.ResourceName}})
			}
		}
		for _, kw := range composeKeywordCriteria(group, data.AdGroupCriteria.Keywords) {
			b.add(mutateOperation{AdGroupCriterionOperation: &operation{Create: kw}})
		}
	}

	if data.Campaign != nil {
		camp, err := composeCampaign("", "", *data.Campaign)
		if err != nil {
			return nil, err
		}
		// The channel type cannot change after creation.
		camp.AdvertisingChannelType = ""
		camp.ResourceName = name
		if err := addUpdate(&b, camp, func(op *operation) mutateOperation {
			return mutateOperation{CampaignOperation: op}
		}); err != nil {
			return nil, err
		}
	}

	if data.CampaignBudget != nil {
		rows, err := s.search(ctx, "SELECT campaign.resource_name, campaign.campaign_budget FROM campaign WHERE campaign.resource_name = "+gaqlString(name))
		if err != nil {
			return nil, fmt.Errorf("failed to look up campaign budget: %w", err)
		}
		if len(rows) == 0 || rows[0].Campaign == nil || rows[0].Campaign.CampaignBudget == "" {
			return nil, channels.InvalidInputf("campaign %s has no budget", name)
		}
		budget := campaignBudget{
			ResourceName: rows[0].Campaign.CampaignBudget,
			AmountMicros: composeBudget("", *data.CampaignBudget).AmountMicros,
		}
		if err := addUpdate(&b, budget, func(op *operation) mutateOperation {
			return mutateOperation{CampaignBudgetOperation: op}
		}); err != nil {
			return nil, err
		}
	}

	if data.CampaignCriteria != nil {
		existing, err := s.search(ctx, "SELECT campaign_criterion.resource_name FROM campaign_criterion WHERE campaign_criterion.campaign = "+
			gaqlString(name)+" AND campaign_criterion.type IN ('LANGUAGE', 'LOCATION')")
		if err != nil {
			return nil, fmt.Errorf("failed to look up campaign criteria: %w", err)
		}
		for _, r := range existing {
			if r.CampaignCriterion != nil {
				b.add(mutateOperation{CampaignCriterionOperation: &operation{Remove: r.CampaignCriterion.ResourceName}})
			}
		}
		p, err := c.prepare(ctx, s, *data.CampaignCriteria, nil, nil)
		if err != nil {
			return nil, err
		}
		for _, crit := range composeCampaignCriteria(name, p.languages, p.locations) {
			b.add(mutateOperation{CampaignCriterionOperation: &operation{Create: crit}})
		}
	}

	if data.Name != "" || data.Status != "" {
		update := campaign{ResourceName: name, Name: data.Name, Status: status}
		if err := addUpdate(&b, update, func(op *operation) mutateOperation {
			return mutateOperation{CampaignOperation: op}
		}); err != nil {
			return nil, err
		}
	}

	var raw []byte
	if len(b.ops) > 0 {
		log.Info("Sending mutate batch", zap.Int("operations", len(b.ops)))
		if _, raw, err = s.mutate(ctx, b.ops); err != nil {
			return nil, fmt.Errorf("failed to update campaign: %w", err)
		}
	}

	log.Info("Campaign updated")
	return &channels.Campaign{ID: name, Name: data.Name, Status: data.Status, Raw: raw}, nil
}

// addUpdate appends an update operation for resource with its field mask.
// Resources with no fields set are skipped.
func addUpdate(b *batch, resource any, wrap func(*operation) mutateOperation) error {
	mask, err := updateMask(resource)
	if err != nil {
		return fmt.Errorf("failed to build update mask: %w", err)
	}
	if mask == "" {
		return nil
	}
	b.add(wrap(&operation{Update: resource, UpdateMask: mask}))
	return nil
}

// UpdateCampaignStatus sets the campaign status and returns its resource name.
func (c *Channel) UpdateCampaignStatus(ctx context.Context, campaignID, status string) (string, error) {
	s, err := c.session()
	if err != nil {
		return "", err
	}
	if status == "" {
		return "", channels.InvalidInputf("status is required")
	}
	if status, err = updateStatus(status); err != nil {
		return "", err
	}
	name := resourceName(s.customerID, collectionCampaigns, campaignID)
	log := c.RunLogger("update_campaign_status")
	log.Info("Updating campaign status", zap.String("campaign", name), zap.String("status", status))

	op := mutateOperation{CampaignOperation: &operation{
		Update:     campaign{ResourceName: name, Status: status},
		UpdateMask: "status",
	}}
	if _, _, err := s.mutate(ctx, []mutateOperation{op}); err != nil {
		return "", fmt.Errorf("failed to update campaign status: %w", err)
	}
	log.Info("Campaign status updated", zap.String("campaign", name))
	return name, nil
}

// DeleteCampaign removes the campaign and returns its resource name.
func (c *Channel) DeleteCampaign(ctx context.Context, campaignID string) (string, error) {
	s, err := c.session()
	if err != nil {
		return "", err
	}
	name := resourceName(s.customerID, collectionCampaigns, campaignID)
	log := c.RunLogger("delete_campaign")
	log.Info("Deleting campaign", zap.String("campaign", name))

	op := mutateOperation{CampaignOperation: &operation{Remove: name}}
	if _, _, err := s.mutate(ctx, []mutateOperation{op}); err != nil {
		return "", fmt.Errorf("failed to delete campaign: %w", err)
	}
	log.Info("Campaign deleted", zap.String("campaign", name))
	return name, nil
}

// CreateCustomAudience creates a CRM-based user list matched on contact info.
func (c *Channel) CreateCustomAudience(ctx context.Context, data UserListData) (*channels.Audience, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}
	if data.Name == "" {
		return nil, channels.InvalidInputf("user list name is required")
	}
	list := composeUserList(data)
	log := c.RunLogger("create_custom_audience")
	log.Info("Creating user list", zap.Any("user_list", list))

	results, raw, err := s.mutate(ctx, []mutateOperation{{UserListOperation: &operation{Create: list}}})
	if err != nil {
		return nil, fmt.Errorf("failed to create user list: %w", err)
	}
	log.Info("User list created", zap.String("user_list", results[0]))
	return &channels.Audience{ID: results[0], Raw: raw}, nil
}

// CreateCustomAudienceUsers adds hashed users to a user list through an
// offline user data job.
func (c *Channel) CreateCustomAudienceUsers(ctx context.Context, audienceID string, data channels.UserData) (*channels.AudienceUsersResult, error) {
	return c.audienceUsers(ctx, false, audienceID, data)
}

// DeleteCustomAudienceUsers removes hashed users from a user list through an
// offline user data job.
func (c *Channel) DeleteCustomAudienceUsers(ctx context.Context, audienceID string, data channels.UserData) (*channels.AudienceUsersResult, error) {
	return c.audienceUsers(ctx, true, audienceID, data)
}

func (c *Channel) audienceUsers(ctx context.Context, remove bool, audienceID string, data channels.UserData) (*channels.AudienceUsersResult, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}
	hashed, err := channels.HashUsers(data, c.hash)
	if err != nil {
		return nil, err
	}

	list := resourceName(s.customerID, "userLists", audienceID)
	log := c.RunLogger("custom_audience_users").With(zap.String("user_list", list))
	log.Info("Creating offline user data job", zap.Int("users", len(hashed)), zap.Bool("remove", remove))

	var job resourceRef
	if _, err := s.api.Post(ctx, "customers/"+s.customerID+"/offlineUserDataJobs:create", createJobRequest{Job: offlineUserDataJob{
		Type:                          "CUSTOMER_MATCH_USER_LIST",
		CustomerMatchUserListMetadata: &customerMatchUserListMetadata{UserList: list},
	}}, &job); err != nil {
		return nil, fmt.Errorf("failed to create offline user data job: %w", err)
	}
	if job.ResourceName == "" {
		return nil, &channels.UpstreamError{Provider: "google", Op: "create offline user data job", Err: errors.New("response has no resource name")}
	}

	ops := make([]userDataOperation, len(hashed))
	for i, u := range hashed {
		if remove {
			ops[i].Remove = composeUserData(u)
		} else {
			ops[i].Create = composeUserData(u)
		}
	}
	if _, err := s.api.Post(ctx, job.ResourceName+":addOperations", addOperationsRequest{EnablePartialFailure: true, Operations: ops}, nil); err != nil {
		return nil, fmt.Errorf("failed to add offline user data job operations: %w", err)
	}

	raw, err := s.api.Post(ctx, job.ResourceName+":run", struct{}{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to run offline user data job: %w", err)
	}

	log.Info("Offline user data job started", zap.String("job", job.ResourceName))
	return &channels.AudienceUsersResult{AudienceID: list, Users: len(hashed), Raw: raw}, nil
}

package googleads

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"path"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"adsmanager/internal/channels"
)

var fixedNow = time.UnixMilli(1700000000000)

func newTestChannel(t *testing.T, api *fakeAPI, fetcher *fakeFetcher, opts ...Option) *Channel {
	t.Helper()
	base := []Option{
		WithAPIFactory(func(Config) API { return api }),
		WithFetcher(fetcher),
		WithClock(func() time.Time { return fixedNow }),
		WithTempIDStart(func() int64 { return -1000 }),
	}
	return New("google-main", &Config{
		ClientID:          "cid",
		ClientSecret:      "secret",
		CustomerAccountID: "123",
		DeveloperToken:    "dev",
		RefreshToken:      "rt",
	}, append(base, opts...)...)
}

func searchCampaign() CampaignData {
	return CampaignData{
		Name:           "Spring",
		CampaignBudget: BudgetFields{DailyAmount: 5000},
		Campaign: CampaignFields{
			AdvertisingChannelType: ChannelTypeSearch,
			BiddingStrategyType:    "TARGET_SPEND",
			BiddingStrategyConfig:  &BiddingConfig{CpcBidCeilingAmount: 150},
			StartDate:              "2024-03-01T10:00:00Z",
			EndDate:                "2024-04-01",
		},
		CampaignCriteria: CampaignCriteria{LanguageCodes: []string{"en"}, LocationCountryCodes: []string{"US"}},
		AdGroupCriteria:  AdGroupCriteria{Keywords: []string{"shoes", "boots"}},
		AdGroupAd: AdGroupAdData{
			Headlines:       []string{"Shoes", "Boots", "Sale"},
			Descriptions:    []string{"Spring sale", "Free shipping"},
			DisplayURLPaths: []string{"spring", "sale"},
			URL:             "https://example.com",
		},
	}
}

func TestCreateCampaignSearch(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	api := newFakeAPI()
	api.search["language_constant"] = []searchRow{{LanguageConstant: &resourceRef{ResourceName: "languageConstants/1000"}}}
	api.search["geo_target_constant"] = []searchRow{{GeoTargetConstant: &resourceRef{ResourceName: "geoTargetConstants/2840"}}}
	ch := newTestChannel(t, api, &fakeFetcher{})

	got, err := ch.CreateCampaign(context.Background(), searchCampaign())
	require.NoError(t, err)

	assert.Equal(t, "customers/123/campaigns/1001", got.ID)
	assert.Equal(t, StatusEnabled, got.Status)
	assert.Equal(t, "customers/123/campaignBudgets/1000", got.Resources["campaign_budget"])
	assert.Equal(t, "customers/123/adGroups/1002", got.Resources["ad_group"])
	assert.NotEmpty(t, got.Resources["ad_group_ad"])

	calls := api.snapshot()
	require.Len(t, calls, 3)
	assert.Equal(t, "customers/123/googleAds:mutate", calls[2].Path)

	const (
		budgetName   = "customers/123/campaignBudgets/-1000"
		campaignName = "customers/123/campaigns/-1001"
		adGroupName  = "customers/123/adGroups/-1002"
	)
	shared := false
	want := []mutateOperation{
		{CampaignBudgetOperation: &operation{Create: campaignBudget{
			ResourceName:     budgetName,
			Name:             "Spring - Budget - 1700000000000",
			AmountMicros:     50_000_000,
			DeliveryMethod:   "STANDARD",
			Period:           "DAILY",
			Type:             "STANDARD",
			ExplicitlyShared: &shared,
		}}},
		{CampaignOperation: &operation{Create: campaign{
			ResourceName:           campaignName,
			Name:                   "Spring",
			Status:                 StatusPaused,
			AdvertisingChannelType: ChannelTypeSearch,
			CampaignBudget:         budgetName,
			StartDate:              "2024-03-01",
			EndDate:                "2024-04-01",
			TargetSpend:            &targetSpend{CpcBidCeilingMicros: 1_500_000},
		}}},
		{CampaignCriterionOperation: &operation{Create: campaignCriterion{
			Campaign: campaignName, Status: StatusEnabled, Language: &languageInfo{LanguageConstant: "languageConstants/1000"},
		}}},
		{CampaignCriterionOperation: &operation{Create: campaignCriterion{
			Campaign: campaignName, Status: StatusEnabled, Location: &locationInfo{GeoTargetConstant: "geoTargetConstants/2840"},
		}}},
		{AdGroupOperation: &operation{Create: adGroup{
			ResourceName: adGroupName,
			Campaign:     campaignName,
			Name:         "Spring - Ad Group",
			Status:       StatusEnabled,
			Type:         "SEARCH_STANDARD",
		}}},
		{AdGroupCriterionOperation: &operation{Create: adGroupCriterion{
			AdGroup: adGroupName, Status: StatusEnabled, Keyword: &keywordInfo{Text: "shoes", MatchType: "BROAD"},
		}}},
		{AdGroupCriterionOperation: &operation{Create: adGroupCriterion{
			AdGroup: adGroupName, Status: StatusEnabled, Keyword: &keywordInfo{Text: "boots", MatchType: "BROAD"},
		}}},
		{AdGroupAdOperation: &operation{Create: adGroupAd{
			AdGroup: adGroupName,
			Status:  StatusEnabled,
			Ad: ad{
				FinalURLs: []string{"https://example.com"},
				ResponsiveSearchAd: &responsiveSearchAd{
					Headlines:    []adText{{Text: "Shoes"}, {Text: "Boots"}, {Text: "Sale"}},
					Descriptions: []adText{{Text: "Spring sale"}, {Text: "Free shipping"}},
					Path1:        "spring",
					Path2:        "sale",
				},
			},
		}}},
		{CampaignOperation: &operation{
			Update:     campaign{ResourceName: campaignName, Status: StatusEnabled},
			UpdateMask: "status",
		}},
	}

	mutates := api.mutates()
	require.Len(t, mutates, 1)
	if diff := cmp.Diff(want, mutates[0].MutateOperations); diff != "" {
		t.Errorf("mutate batch mismatch (-want +got):\n%s", diff)
	}
}

var tempName = regexp.MustCompile(`customers/123/\w+/-\d+`)

func TestCreateCampaignDisplayReferencesEarlierOperations(t *testing.T) {
	api := newFakeAPI()
	fetcher := &fakeFetcher{}
	ch := newTestChannel(t, api, fetcher)
	ch.SetDefaultValues(DefaultValues{
		Campaign:  CampaignFields{BiddingStrategyType: "MANUAL_CPC"},
		AdGroupAd: AdGroupAdDefaults{BusinessName: "Acme"},
	})

	data := CampaignData{
		Name:           "Display",
		Status:         StatusPaused,
		CampaignBudget: BudgetFields{DailyAmount: 1000},
		Campaign:       CampaignFields{AdvertisingChannelType: ChannelTypeDisplay},
		AdGroupAd: AdGroupAdData{
			Headlines:       []string{"Big sale", "Now"},
			Descriptions:    []string{"Everything"},
			ImageURLs:       []string{"https://cdn.example.com/a.png", "https://cdn.example.com/b.png"},
			SquareImageURLs: []string{"https://cdn.example.com/sq.png"},
			URL:             "https://example.com",
		},
	}
	got, err := ch.CreateCampaign(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, "customers/123/campaigns/1001", got.ID)
	assert.Equal(t, StatusPaused, got.Status)
	assert.Equal(t, "customers/123/assets/1003", got.Resources["image_asset.1"])
	assert.Equal(t, "customers/123/assets/1004", got.Resources["image_asset.2"])
	assert.Equal(t, "customers/123/assets/1005", got.Resources["square_image_asset.1"])
	assert.ElementsMatch(t, append(data.AdGroupAd.ImageURLs, data.AdGroupAd.SquareImageURLs...), fetcher.urls)

	mutates := api.mutates()
	require.Len(t, mutates, 1)
	ops := mutates[0].MutateOperations
	require.Len(t, ops, 8)

	// Every temporary name is created by an earlier operation before it is
	// referenced, and created ids strictly decrease.
	defined := map[string]bool{}
	var created []int64
	for i, op := range ops {
		_, inner := operationOf(op)
		own := resourceNameOf(inner.Create)
		raw, err := json.Marshal(op)
		require.NoError(t, err)
		for _, ref := range tempName.FindAllString(string(raw), -1) {
			if ref == own {
				continue
			}
			assert.True(t, defined[ref], "operation %d references %s before it is created", i, ref)
		}
		if own != "" {
			require.False(t, defined[own], "temporary name %s reused", own)
			defined[own] = true
			id, err := strconv.ParseInt(path.Base(own), 10, 64)
			require.NoError(t, err)
			created = append(created, id)
		}
	}
	assert.Equal(t, []int64{-1000, -1001, -1002, -1003, -1004, -1005}, created)

	img := ops[3].AssetOperation.Create.(asset)
	assert.Equal(t, "a.png", img.Name)
	assert.Equal(t, "IMAGE", img.Type)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("img:https://cdn.example.com/a.png")), img.ImageAsset.Data)

	rda := ops[6].AdGroupAdOperation.Create.(adGroupAd).Ad.ResponsiveDisplayAd
	require.NotNil(t, rda)
	assert.Equal(t, "Acme", rda.BusinessName)
	assert.Equal(t, adText{Text: "Big sale"}, rda.LongHeadline)
	assert.Equal(t, []adImage{{Asset: "customers/123/assets/-1003"}, {Asset: "customers/123/assets/-1004"}}, rda.MarketingImages)
	assert.Equal(t, []adImage{{Asset: "customers/123/assets/-1005"}}, rda.SquareMarketingImages)

	camp := ops[1].CampaignOperation.Create.(campaign)
	assert.Equal(t, &manualCpc{}, camp.ManualCpc)

	status := ops[7].CampaignOperation
	assert.Equal(t, campaign{ResourceName: "customers/123/campaigns/-1001", Status: StatusPaused}, status.Update)
}

func TestCreateCampaignFailsBeforeAnyCall(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CampaignData)
		target error
	}{
		{"unsupported channel type", func(d *CampaignData) { d.Campaign.AdvertisingChannelType = "VIDEO" }, channels.ErrUnsupportedChannelType},
		{"missing channel type", func(d *CampaignData) { d.Campaign.AdvertisingChannelType = "" }, channels.ErrUnsupportedChannelType},
		{"unknown bidding strategy", func(d *CampaignData) { d.Campaign.BiddingStrategyType = "COMMISSION" }, channels.ErrInvalidInput},
		{"bad start date", func(d *CampaignData) { d.Campaign.StartDate = "tomorrow" }, channels.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			fetcher := &fakeFetcher{}
			ch := newTestChannel(t, api, fetcher)

			data := searchCampaign()
			data.AdGroupAd.ImageURLs = []string{"https://cdn.example.com/a.png"}
			tt.mutate(&data)

			_, err := ch.CreateCampaign(context.Background(), data)
			assert.ErrorIs(t, err, tt.target)
			assert.Empty(t, api.snapshot())
			assert.Empty(t, fetcher.urls)
		})
	}
}

func TestCreateCampaignUpstreamFailures(t *testing.T) {
	t.Run("image fetch", func(t *testing.T) {
		api := newFakeAPI()
		ch := newTestChannel(t, api, &fakeFetcher{fail: true})
		data := searchCampaign()
		data.Campaign.AdvertisingChannelType = ChannelTypeDisplay
		data.AdGroupAd.ImageURLs = []string{"https://cdn.example.com/a.png"}

		_, err := ch.CreateCampaign(context.Background(), data)
		assert.ErrorIs(t, err, channels.ErrUpstream)
		assert.Empty(t, api.mutates())
	})

	t.Run("mutate rejected", func(t *testing.T) {
		api := newFakeAPI()
		api.failOn(":mutate")
		ch := newTestChannel(t, api, &fakeFetcher{})

		_, err := ch.CreateCampaign(context.Background(), searchCampaign())
		require.ErrorIs(t, err, channels.ErrUpstream)
		assert.Contains(t, err.Error(), "INVALID_ARGUMENT")
	})
}

func TestNotConfigured(t *testing.T) {
	api := newFakeAPI()
	ch := New("google-main", &Config{ClientID: "cid"}, WithAPIFactory(func(Config) API { return api }))
	assert.False(t, ch.IsConfigured())

	_, err := ch.CreateCampaign(context.Background(), searchCampaign())
	require.ErrorIs(t, err, channels.ErrNotConfigured)
	assert.Contains(t, err.Error(), "clientSecret, customerAccountId, developerToken, refreshToken")

	_, err = ch.DeleteCampaign(context.Background(), "1")
	assert.ErrorIs(t, err, channels.ErrNotConfigured)
	_, err = ch.CreateAd(context.Background(), nil)
	assert.ErrorIs(t, err, channels.ErrNotConfigured)

	var built Config
	ch = New("google-main", &Config{ClientID: "cid"}, WithAPIFactory(func(c Config) API { built = c; return api }))
	ch.SetConfig(Config{ClientSecret: "s", CustomerAccountID: "123-456-7890", DeveloperToken: "d", RefreshToken: "r"})
	assert.True(t, ch.IsConfigured())
	assert.Equal(t, "cid", built.ClientID)

	name, err := ch.DeleteCampaign(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, "customers/1234567890/campaigns/9", name)
}

func TestCreateAdNotImplemented(t *testing.T) {
	ch := newTestChannel(t, newFakeAPI(), &fakeFetcher{})
	_, err := ch.CreateAd(context.Background(), nil)
	assert.ErrorIs(t, err, channels.ErrNotImplemented)
}

func TestUpdateCampaign(t *testing.T) {
	const name = "customers/123/campaigns/9"
	api := newFakeAPI()
	api.search["ad_group"] = []searchRow{{AdGroup: &resourceRef{ResourceName: "customers/123/adGroups/55"}}}
	api.search["ad_group_criterion"] = []searchRow{{AdGroupCriterion: &resourceRef{ResourceName: "customers/123/adGroupCriteria/55~1"}}}
	api.search["campaign"] = []searchRow{{Campaign: &campaignRow{ResourceName: name, CampaignBudget: "customers/123/campaignBudgets/77"}}}
	api.search["campaign_criterion"] = []searchRow{{CampaignCriterion: &resourceRef{ResourceName: "customers/123/campaignCriteria/9~1000"}}}
	api.search["language_constant"] = []searchRow{{LanguageConstant: &resourceRef{ResourceName: "languageConstants/1002"}}}
	ch := newTestChannel(t, api, &fakeFetcher{})

	got, err := ch.UpdateCampaign(context.Background(), "9", CampaignUpdate{
		Name:             "Renamed",
		Status:           StatusPaused,
		CampaignBudget:   &BudgetFields{DailyAmount: 700},
		Campaign:         &CampaignFields{AdvertisingChannelType: ChannelTypeDisplay, EndDate: "2024-05-01"},
		CampaignCriteria: &CampaignCriteria{LanguageCodes: []string{"fr"}},
		AdGroupCriteria:  &AdGroupCriteria{Keywords: []string{"sandals"}},
	})
	require.NoError(t, err)
	assert.Equal(t, name, got.ID)
	assert.Equal(t, "Renamed", got.Name)

	want := []mutateOperation{
		{AdGroupCriterionOperation: &operation{Remove: "customers/123/adGroupCriteria/55~1"}},
		{AdGroupCriterionOperation: &operation{Create: adGroupCriterion{
			AdGroup: "customers/123/adGroups/55", Status: StatusEnabled, Keyword: &keywordInfo{Text: "sandals", MatchType: "BROAD"},
		}}},
		{CampaignOperation: &operation{Update: campaign{ResourceName: name, EndDate: "2024-05-01"}, UpdateMask: "endDate"}},
		{CampaignBudgetOperation: &operation{
			Update:     campaignBudget{ResourceName: "customers/123/campaignBudgets/77", AmountMicros: 7_000_000},
			UpdateMask: "amountMicros",
		}},
		{CampaignCriterionOperation: &operation{Remove: "customers/123/campaignCriteria/9~1000"}},
		{CampaignCriterionOperation: &operation{Create: campaignCriterion{
			Campaign: name, Status: StatusEnabled, Language: &languageInfo{LanguageConstant: "languageConstants/1002"},
		}}},
		{CampaignOperation: &operation{
			Update:     campaign{ResourceName: name, Name: "Renamed", Status: StatusPaused},
			UpdateMask: "name,status",
		}},
	}

	mutates := api.mutates()
	require.Len(t, mutates, 1)
	if diff := cmp.Diff(want, mutates[0].MutateOperations); diff != "" {
		t.Errorf("update batch mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateCampaignNothingToDo(t *testing.T) {
	api := newFakeAPI()
	ch := newTestChannel(t, api, &fakeFetcher{})

	got, err := ch.UpdateCampaign(context.Background(), "9", CampaignUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "customers/123/campaigns/9", got.ID)
	assert.Empty(t, api.snapshot())
}

func TestUpdateCampaignWithoutAdGroup(t *testing.T) {
	api := newFakeAPI()
	ch := newTestChannel(t, api, &fakeFetcher{})

	_, err := ch.UpdateCampaign(context.Background(), "9", CampaignUpdate{AdGroupCriteria: &AdGroupCriteria{Keywords: []string{"x"}}})
	assert.ErrorIs(t, err, channels.ErrInvalidInput)
	assert.Empty(t, api.mutates())
}

func TestUpdateStatusAndDelete(t *testing.T) {
	api := newFakeAPI()
	ch := newTestChannel(t, api, &fakeFetcher{})
	ctx := context.Background()

	name, err := ch.UpdateCampaignStatus(ctx, "customers/123/campaigns/9", StatusPaused)
	require.NoError(t, err)
	assert.Equal(t, "customers/123/campaigns/9", name)

	name, err = ch.DeleteCampaign(ctx, "9")
	require.NoError(t, err)
	assert.Equal(t, "customers/123/campaigns/9", name)

	_, err = ch.UpdateCampaignStatus(ctx, "9", "")
	assert.ErrorIs(t, err, channels.ErrInvalidInput)

	mutates := api.mutates()
	require.Len(t, mutates, 2)
	assert.Equal(t, []mutateOperation{{CampaignOperation: &operation{
		Update:     campaign{ResourceName: "customers/123/campaigns/9", Status: StatusPaused},
		UpdateMask: "status",
	}}}, mutates[0].MutateOperations)
	assert.Equal(t, []mutateOperation{{CampaignOperation: &operation{Remove: "customers/123/campaigns/9"}}}, mutates[1].MutateOperations)
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	api := newFakeAPI()
	api.search["ad_group"] = []searchRow{{AdGroup: &resourceRef{ResourceName: "customers/123/adGroups/55"}}}
	ch := newTestChannel(t, api, &fakeFetcher{})
	ctx := context.Background()

	_, err := ch.UpdateCampaignStatus(ctx, "42", "paused")
	require.ErrorIs(t, err, channels.ErrInvalidInput)
	assert.Contains(t, err.Error(), `"paused"`)

	_, err = ch.UpdateCampaign(ctx, "42", CampaignUpdate{
		Status:          "PAUSE",
		AdGroupCriteria: &AdGroupCriteria{Keywords: []string{"x"}},
	})
	require.ErrorIs(t, err, channels.ErrInvalidInput)

	assert.Empty(t, api.snapshot())
}

func TestCreateCustomAudience(t *testing.T) {
	api := newFakeAPI()
	ch := newTestChannel(t, api, &fakeFetcher{})

	got, err := ch.CreateCustomAudience(context.Background(), UserListData{Name: "Buyers", MembershipLifeSpan: 30})
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)

	mutates := api.mutates()
	require.Len(t, mutates, 1)
	assert.Equal(t, []mutateOperation{{UserListOperation: &operation{Create: userList{
		Name:               "Buyers",
		MembershipStatus:   "OPEN",
		MembershipLifeSpan: 30,
		CrmBasedUserList:   &crmBasedUserList{UploadKeyType: "CONTACT_INFO"},
	}}}}, mutates[0].MutateOperations)

	_, err = ch.CreateCustomAudience(context.Background(), UserListData{})
	assert.ErrorIs(t, err, channels.ErrInvalidInput)
}

func TestCustomAudienceUsers(t *testing.T) {
	users := channels.UserData{Users: []channels.User{
		{Email: " Foo@Bar.com ", Phone: "+1 555-0100"},
		{Email: "b@example.com"},
	}}
	wantUsers := []*userData{
		{UserIdentifiers: []userIdentifier{
			{HashedEmail: channels.SHA256Hex("foo@bar.com")},
			{HashedPhoneNumber: channels.SHA256Hex("+15550100")},
		}},
		{UserIdentifiers: []userIdentifier{{HashedEmail: channels.SHA256Hex("b@example.com")}}},
	}

	for _, remove := range []bool{false, true} {
		t.Run(strconv.FormatBool(remove), func(t *testing.T) {
			api := newFakeAPI()
			ch := newTestChannel(t, api, &fakeFetcher{})

			var (
				got *channels.AudienceUsersResult
				err error
			)
			if remove {
				got, err = ch.DeleteCustomAudienceUsers(context.Background(), "44", users)
			} else {
				got, err = ch.CreateCustomAudienceUsers(context.Background(), "44", users)
			}
			require.NoError(t, err)
			assert.Equal(t, "customers/123/userLists/44", got.AudienceID)
			assert.Equal(t, 2, got.Users)

			calls := api.snapshot()
			require.Len(t, calls, 3)
			assert.Equal(t, "customers/123/offlineUserDataJobs:create", calls[0].Path)
			assert.Equal(t, createJobRequest{Job: offlineUserDataJob{
				Type:                          "CUSTOMER_MATCH_USER_LIST",
				CustomerMatchUserListMetadata: &customerMatchUserListMetadata{UserList: "customers/123/userLists/44"},
			}}, calls[0].Body)

			assert.Equal(t, "customers/123/offlineUserDataJobs/77:addOperations", calls[1].Path)
			body := calls[1].Body.(addOperationsRequest)
			assert.True(t, body.EnablePartialFailure)
			require.Len(t, body.Operations, 2)
			for i, op := range body.Operations {
				if remove {
					assert.Nil(t, op.Create)
					assert.Equal(t, wantUsers[i], op.Remove)
				} else {
					assert.Nil(t, op.Remove)
					assert.Equal(t, wantUsers[i], op.Create)
				}
			}

			assert.Equal(t, "customers/123/offlineUserDataJobs/77:run", calls[2].Path)
		})
	}
}

func TestCustomAudienceUsersRejectsEmptyInput(t *testing.T) {
	api := newFakeAPI()
	ch := newTestChannel(t, api, &fakeFetcher{})

	_, err := ch.CreateCustomAudienceUsers(context.Background(), "44", channels.UserData{})
	assert.ErrorIs(t, err, channels.ErrInvalidInput)
	assert.Empty(t, api.snapshot())
}

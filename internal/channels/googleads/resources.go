package googleads

import (
	"encoding/json"
	"sort"
	"strings"
)

// Google Ads REST resources, in proto3 JSON form. Only the fields this
// adapter writes are declared.

type campaignBudget struct {
	ResourceName     string `json:"resourceName,omitempty"`
	Name             string `json:"name,omitempty"`
	AmountMicros     int64  `json:"amountMicros,omitempty,string"`
	DeliveryMethod   string `json:"deliveryMethod,omitempty"`
	Period           string `json:"period,omitempty"`
	Type             string `json:"type,omitempty"`
	ExplicitlyShared *bool  `json:"explicitlyShared,omitempty"`
}

type campaign struct {
	ResourceName           string `json:"resourceName,omitempty"`
	Name                   string `json:"name,omitempty"`
	Status                 string `json:"status,omitempty"`
	AdvertisingChannelType string `json:"advertisingChannelType,omitempty"`
	CampaignBudget         string `json:"campaignBudget,omitempty"`
	StartDate              string `json:"startDate,omitempty"`
	EndDate                string `json:"endDate,omitempty"`

	// Exactly one bidding field is set; see biddingStrategies.
	ManualCpc               *manualCpc               `json:"manualCpc,omitempty"`
	ManualCpm               *struct{}                `json:"manualCpm,omitempty"`
	TargetSpend             *targetSpend             `json:"targetSpend,omitempty"`
	TargetImpressionShare   *targetImpressionShare   `json:"targetImpressionShare,omitempty"`
	MaximizeConversions     *maximizeConversions     `json:"maximizeConversions,omitempty"`
	MaximizeConversionValue *maximizeConversionValue `json:"maximizeConversionValue,omitempty"`
	TargetCpa               *targetCpa               `json:"targetCpa,omitempty"`
	TargetRoas              *targetRoas              `json:"targetRoas,omitempty"`
}

type manualCpc struct {
	EnhancedCpcEnabled bool `json:"enhancedCpcEnabled,omitempty"`
}

type targetSpend struct {
	CpcBidCeilingMicros int64 `json:"cpcBidCeilingMicros,omitempty,string"`
}

type targetImpressionShare struct {
	Location               string `json:"location,omitempty"`
	LocationFractionMicros int64  `json:"locationFractionMicros,omitempty,string"`
	CpcBidCeilingMicros    int64  `json:"cpcBidCeilingMicros,omitempty,string"`
}

type maximizeConversions struct {
	TargetCpaMicros int64 `json:"targetCpaMicros,omitempty,string"`
}

type maximizeConversionValue struct {
	TargetRoas float64 `json:"targetRoas,omitempty"`
}

type targetCpa struct {
	TargetCpaMicros int64 `json:"targetCpaMicros,omitempty,string"`
}

type targetRoas struct {
	TargetRoas float64 `json:"targetRoas,omitempty"`
}

type campaignCriterion struct {
	ResourceName string        `json:"resourceName,omitempty"`
	Campaign     string        `json:"campaign,omitempty"`
	Status       string        `json:"status,omitempty"`
	Language     *languageInfo `json:"language,omitempty"`
	Location     *locationInfo `json:"location,omitempty"`
}

type languageInfo struct {
	LanguageConstant string `json:"languageConstant"`
}

type locationInfo struct {
	GeoTargetConstant string `json:"geoTargetConstant"`
}

type adGroup struct {
	ResourceName string `json:"resourceName,omitempty"`
	Campaign     string `json:"campaign,omitempty"`
	Name         string `json:"name,omitempty"`
	Status       string `json:"status,omitempty"`
	Type         string `json:"type,omitempty"`
}

type adGroupCriterion struct {
	AdGroup string       `json:"adGroup,omitempty"`
	Status  string       `json:"status,omitempty"`
	Keyword *keywordInfo `json:"keyword,omitempty"`
}

type keywordInfo struct {
	Text      string `json:"text"`
	MatchType string `json:"matchType"`
}

type asset struct {
	ResourceName string      `json:"resourceName,omitempty"`
	Name         string      `json:"name,omitempty"`
	Type         string      `json:"type,omitempty"`
	ImageAsset   *imageAsset `json:"imageAsset,omitempty"`
}

type imageAsset struct {
	Data string `json:"data"`
}

type adGroupAd struct {
	AdGroup string `json:"adGroup"`
	Status  string `json:"status"`
	Ad      ad     `json:"ad"`
}

type ad struct {
	FinalURLs           []string             `json:"finalUrls"`
	ResponsiveSearchAd  *responsiveSearchAd  `json:"responsiveSearchAd,omitempty"`
	ResponsiveDisplayAd *responsiveDisplayAd `json:"responsiveDisplayAd,omitempty"`
}

type adText struct {
	Text string `json:"text"`
}

type adImage struct {
	Asset string `json:"asset"`
}

type responsiveSearchAd struct {
	Headlines    []adText `json:"headlines"`
	Descriptions []adText `json:"descriptions"`
	Path1        string   `json:"path1,omitempty"`
	Path2        string   `json:"path2,omitempty"`
}

type responsiveDisplayAd struct {
	BusinessName          string    `json:"businessName"`
	CallToActionText      string    `json:"callToActionText,omitempty"`
	Headlines             []adText  `json:"headlines"`
	LongHeadline          adText    `json:"longHeadline"`
	Descriptions          []adText  `json:"descriptions"`
	MarketingImages       []adImage `json:"marketingImages"`
	SquareMarketingImages []adImage `json:"squareMarketingImages"`
}

type userList struct {
	Name               string            `json:"name"`
	Description        string            `json:"description,omitempty"`
	MembershipStatus   string            `json:"membershipStatus"`
	MembershipLifeSpan int64             `json:"membershipLifeSpan,omitempty,string"`
	CrmBasedUserList   *crmBasedUserList `json:"crmBasedUserList"`
}

type crmBasedUserList struct {
	UploadKeyType string `json:"uploadKeyType"`
}

// operation is one create, update or remove. Update carries the fields to
// change and UpdateMask names them.
type operation struct {
	Create     any    `json:"create,omitempty"`
	Update     any    `json:"update,omitempty"`
	UpdateMask string `json:"updateMask,omitempty"`
	Remove     string `json:"remove,omitempty"`
}

// mutateOperation is one entry of a googleAds:mutate batch. Exactly one field is set.
type mutateOperation struct {
	CampaignBudgetOperation    *operation `json:"campaignBudgetOperation,omitempty"`
	CampaignOperation          *operation `json:"campaignOperation,omitempty"`
	CampaignCriterionOperation *operation `json:"campaignCriterionOperation,omitempty"`
	AdGroupOperation           *operation `json:"adGroupOperation,omitempty"`
	AdGroupCriterionOperation  *operation `json:"adGroupCriterionOperation,omitempty"`
	AssetOperation             *operation `json:"assetOperation,omitempty"`
	AdGroupAdOperation         *operation `json:"adGroupAdOperation,omitempty"`
	UserListOperation          *operation `json:"userListOperation,omitempty"`
}

type mutateRequest struct {
	MutateOperations []mutateOperation `json:"mutateOperations"`
}

// mutateOperationResponse holds a single "<resource>Result" entry.
type mutateOperationResponse map[string]struct {
	ResourceName string `json:"resourceName"`
}

func (r mutateOperationResponse) resourceName() string {
	for _, v := range r {
		if v.ResourceName != "" {
			return v.ResourceName
		}
	}
	return ""
}

type mutateResponse struct {
	MutateOperationResponses []mutateOperationResponse `json:"mutateOperationResponses"`
}

func (r mutateResponse) resourceNames() []string {
	names := make([]string, len(r.MutateOperationResponses))
	for i, res := range r.MutateOperationResponses {
		names[i] = res.resourceName()
	}
	return names
}

type resourceRef struct {
	ResourceName string `json:"resourceName"`
}

type campaignRow struct {
	ResourceName   string `json:"resourceName"`
	CampaignBudget string `json:"campaignBudget"`
}

// searchRow is one GAQL result row; only the selected resource is set.
type searchRow struct {
	Campaign          *campaignRow `json:"campaign,omitempty"`
	AdGroup           *resourceRef `json:"adGroup,omitempty"`
	AdGroupCriterion  *resourceRef `json:"adGroupCriterion,omitempty"`
	CampaignCriterion *resourceRef `json:"campaignCriterion,omitempty"`
	LanguageConstant  *resourceRef `json:"languageConstant,omitempty"`
	GeoTargetConstant *resourceRef `json:"geoTargetConstant,omitempty"`
}

type searchRequest struct {
	Query     string `json:"query"`
	PageToken string `json:"pageToken,omitempty"`
}

type searchResponse struct {
	Results       []searchRow `json:"results"`
	NextPageToken string      `json:"nextPageToken,omitempty"`
}

type offlineUserDataJob struct {
	Type                          string                         `json:"type"`
	CustomerMatchUserListMetadata *customerMatchUserListMetadata `json:"customerMatchUserListMetadata"`
}

type customerMatchUserListMetadata struct {
	UserList string `json:"userList"`
}

type createJobRequest struct {
	Job offlineUserDataJob `json:"job"`
}

type userIdentifier struct {
	HashedEmail       string `json:"hashedEmail,omitempty"`
	HashedPhoneNumber string `json:"hashedPhoneNumber,omitempty"`
}

type userData struct {
	UserIdentifiers []userIdentifier `json:"userIdentifiers"`
}

type userDataOperation struct {
	Create *userData `json:"create,omitempty"`
	Remove *userData `json:"remove,omitempty"`
}

type addOperationsRequest struct {
	EnablePartialFailure bool                `json:"enablePartialFailure"`
	Operations           []userDataOperation `json:"operations"`
}

// updateMask lists the leaf field paths set in resource, excluding
// resourceName, in the comma-separated form the API expects.
func updateMask(resource any) (string, error) {
	b, err := json.Marshal(resource)
	if err != nil {
		return "", err
	}
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return "", err
	}
	delete(fields, "resourceName")

	var paths []string
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			p := prefix + k
			if nested, ok := v.(map[string]any); ok && len(nested) > 0 {
				walk(p+".", nested)
				continue
			}
			paths = append(paths, p)
		}
	}
	walk("", fields)
	sort.Strings(paths)
	return strings.Join(paths, ","), nil
}

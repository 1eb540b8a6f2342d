package googleads

import (
	"fmt"
	"strings"

	"adsmanager/internal/channels"
	"adsmanager/internal/convert"
	"adsmanager/internal/transport"
)

func composeBudget(name string, f BudgetFields) campaignBudget {
	shared := false
	return campaignBudget{
		Name:             name,
		AmountMicros:     convert.MinorToMicro(f.DailyAmount),
		DeliveryMethod:   "STANDARD",
		Period:           "DAILY",
		Type:             "STANDARD",
		ExplicitlyShared: &shared,
	}
}

func composeCampaign(name, budgetName string, f CampaignFields) (campaign, error) {
	start, err := convert.FormatDate(f.StartDate)
	if err != nil {
		return campaign{}, channels.InvalidInputf("start date: %v", err)
	}
	end, err := convert.FormatDate(f.EndDate)
	if err != nil {
		return campaign{}, channels.InvalidInputf("end date: %v", err)
	}

	c := campaign{
		Name:                   name,
		AdvertisingChannelType: f.AdvertisingChannelType,
		CampaignBudget:         budgetName,
		StartDate:              start,
		EndDate:                end,
	}
	if err := applyBidding(&c, f.BiddingStrategyType, f.BiddingStrategyConfig); err != nil {
		return campaign{}, err
	}
	return c, nil
}

// adGroupType maps the campaign channel type to the ad group type.
func adGroupType(channelType string) (string, error) {
	switch channelType {
	case ChannelTypeDisplay:
		return "DISPLAY_STANDARD", nil
	case ChannelTypeSearch:
		return "SEARCH_STANDARD", nil
	default:
		return "", fmt.Errorf("%w: %q", channels.ErrUnsupportedChannelType, channelType)
	}
}

// campaignStatus is the final status of a new campaign. Anything other than a
// known status enables it.
func campaignStatus(status string) string {
	if s, err := updateStatus(status); err == nil {
		return s
	}
	return StatusEnabled
}

// updateStatus checks a status requested for an existing campaign.
func updateStatus(status string) (string, error) {
	switch status {
	case StatusEnabled, StatusPaused, StatusRemoved:
		return status, nil
	default:
		return "", channels.InvalidInputf("campaign status %q is not supported (supported: %s, %s, %s)",
			status, StatusEnabled, StatusPaused, StatusRemoved)
	}
}

func texts(values []string) []adText {
	out := make([]adText, len(values))
	for i, v := range values {
		out[i] = adText{Text: v}
	}
	return out
}

func images(assetNames []string) []adImage {
	out := make([]adImage, len(assetNames))
	for i, name := range assetNames {
		out[i] = adImage{Asset: name}
	}
	return out
}

func composeAdGroupAd(adGroupName, channelType string, d AdGroupAdData, imageNames, squareNames []string) (adGroupAd, error) {
	out := adGroupAd{
		AdGroup: adGroupName,
		Status:  StatusEnabled,
		Ad:      ad{FinalURLs: []string{d.URL}},
	}

	switch channelType {
	case ChannelTypeSearch:
		rsa := &responsiveSearchAd{Headlines: texts(d.Headlines), Descriptions: texts(d.Descriptions)}
		if len(d.DisplayURLPaths) > 0 {
			rsa.Path1 = d.DisplayURLPaths[0]
		}
		if len(d.DisplayURLPaths) > 1 {
			rsa.Path2 = d.DisplayURLPaths[1]
		}
		out.Ad.ResponsiveSearchAd = rsa
	case ChannelTypeDisplay:
		if len(d.Headlines) == 0 {
			return adGroupAd{}, channels.InvalidInputf("display ads need at least one headline")
		}
		out.Ad.ResponsiveDisplayAd = &responsiveDisplayAd{
			BusinessName:          d.BusinessName,
			CallToActionText:      d.CallToActionText,
			Headlines:             texts(d.Headlines),
			LongHeadline:          adText{Text: d.Headlines[0]},
			Descriptions:          texts(d.Descriptions),
			MarketingImages:       images(imageNames),
			SquareMarketingImages: images(squareNames),
		}
	default:
		return adGroupAd{}, fmt.Errorf("%w: %q", channels.ErrUnsupportedChannelType, channelType)
	}
	return out, nil
}

func composeKeywordCriteria(adGroupName string, keywords []string) []adGroupCriterion {
	out := make([]adGroupCriterion, len(keywords))
	for i, kw := range keywords {
		out[i] = adGroupCriterion{
			AdGroup: adGroupName,
			Status:  StatusEnabled,
			Keyword: &keywordInfo{Text: kw, MatchType: "BROAD"},
		}
	}
	return out
}

// composeCampaignCriteria targets the campaign at the resolved language and
// geo target constants, languages first.
func composeCampaignCriteria(campaignName string, languages, locations []string) []campaignCriterion {
	out := make([]campaignCriterion, 0, len(languages)+len(locations))
	for _, l := range languages {
		out = append(out, campaignCriterion{Campaign: campaignName, Status: StatusEnabled, Language: &languageInfo{LanguageConstant: l}})
	}
	for _, l := range locations {
		out = append(out, campaignCriterion{Campaign: campaignName, Status: StatusEnabled, Location: &locationInfo{GeoTargetConstant: l}})
	}
	return out
}

func composeAsset(resourceName string, m *transport.Media) asset {
	return asset{
		ResourceName: resourceName,
		Name:         m.Name,
		Type:         "IMAGE",
		ImageAsset:   &imageAsset{Data: m.Base64},
	}
}

func composeUserList(d UserListData) userList {
	return userList{
		Name:               d.Name,
		Description:        d.Description,
		MembershipStatus:   "OPEN",
		MembershipLifeSpan: d.MembershipLifeSpan,
		CrmBasedUserList:   &crmBasedUserList{UploadKeyType: "CONTACT_INFO"},
	}
}

func composeUserData(u channels.HashedUser) *userData {
	ids := []userIdentifier{{HashedEmail: u.Email}}
	if u.Phone != "" {
		ids = append(ids, userIdentifier{HashedPhoneNumber: u.Phone})
	}
	return &userData{UserIdentifiers: ids}
}

// customerID strips the dashes of a displayed customer id.
func customerID(id string) string {
	return strings.ReplaceAll(id, "-", "")
}

// resourceName accepts either a full resource name or a bare id.
func resourceName(customer, collection, id string) string {
	if strings.HasPrefix(id, "customers/") {
		return id
	}
	return fmt.Sprintf("customers/%s/%s/%s", customer, collection, id)
}

var gaqlEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func gaqlString(s string) string {
	return "'" + gaqlEscaper.Replace(s) + "'"
}

func gaqlList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = gaqlString(v)
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}

func languageQuery(codes []string) string {
	return "SELECT language_constant.resource_name FROM language_constant WHERE language_constant.code IN " + gaqlList(codes)
}

func geoTargetQuery(countryCodes []string) string {
	return "SELECT geo_target_constant.resource_name FROM geo_target_constant WHERE geo_target_constant.country_code IN " +
		gaqlList(countryCodes) + " AND geo_target_constant.target_type = 'Country'"
}

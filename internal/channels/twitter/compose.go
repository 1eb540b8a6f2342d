package twitter

import (
	"encoding/json"
	"mime"
	"net/url"
	"path"
	"slices"
	"strconv"
	"strings"

	"adsmanager/internal/channels"
	"adsmanager/internal/convert"
)

// Line item settings used when neither defaults nor caller input set them.
const (
	defaultBidType     = "TARGET"
	defaultObjective   = "AWARENESS"
	defaultPlacement   = "ALL_ON_TWITTER"
	defaultProductType = "PROMOTED_TWEETS"

	mediaCategory = "TWEET_IMAGE"
)

// params is a form parameter set that skips empty values.
type params map[string]string

func (p params) set(key, value string) {
	if value != "" {
		p[key] = value
	}
}

func (p params) values() url.Values {
	v := make(url.Values, len(p))
	for key, value := range p {
		v.Set(key, value)
	}
	return v
}

func (p params) setMicros(key string, minor int64) {
	if minor != 0 {
		p[key] = strconv.FormatInt(convert.MinorToMicro(minor), 10)
	}
}

func (p params) setTime(key, value string) error {
	t, err := convert.FormatDateTime(value)
	if err != nil {
		return channels.InvalidInputf("%s: %v", key, err)
	}
	p.set(key, t)
	return nil
}

// composeCampaign renders the set campaign fields. The name and status are
// added only when non-empty so the result also serves updates.
func composeCampaign(name, status string, f CampaignFields) (params, error) {
	p := params{}
	p.set("name", name)
	p.set("entity_status", status)
	p.set("funding_instrument_id", f.FundingInstrumentID)
	p.setMicros("daily_budget_amount_local_micro", f.DailyBudget)
	p.setMicros("total_budget_amount_local_micro", f.TotalBudget)
	if err := p.setTime("start_time", f.StartTime); err != nil {
		return nil, err
	}
	if err := p.setTime("end_time", f.EndTime); err != nil {
		return nil, err
	}
	return p, nil
}

func composeLineItem(campaignID, name, status string, f LineItemFields) params {
	p := params{}
	p.set("campaign_id", campaignID)
	p.set("name", name)
	p.set("entity_status", status)
	p.setMicros("bid_amount_local_micro", f.BidAmount)
	p.set("bid_type", f.BidType)
	p.set("objective", f.Objective)
	p.set("placements", strings.Join(f.Placements, ","))
	p.set("product_type", f.ProductType)
	return p
}

// withLineItemDefaults fills the settings a new line item cannot go without.
func withLineItemDefaults(f LineItemFields) LineItemFields {
	if f.BidType == "" {
		f.BidType = defaultBidType
	}
	if f.Objective == "" {
		f.Objective = defaultObjective
	}
	if len(f.Placements) == 0 {
		f.Placements = []string{defaultPlacement}
	}
	if f.ProductType == "" {
		f.ProductType = defaultProductType
	}
	return f
}

func composePromotedTweet(lineItemID string, tweetIDs ...string) params {
	return params{
		"line_item_id": lineItemID,
		"tweet_ids":    strings.Join(tweetIDs, ","),
	}
}

func composeTargetingCriterion(lineItemID, audienceID string) params {
	return params{
		"line_item_id":    lineItemID,
		"operator_type":   "EQ",
		"targeting_type":  "CUSTOM_AUDIENCE",
		"targeting_value": audienceID,
	}
}

func composeWebsiteCard(mediaKey, name, title, websiteURL string) params {
	return params{
		"media_key":     mediaKey,
		"name":          name,
		"website_title": title,
		"website_url":   websiteURL,
	}
}

// composeTweet renders a promoted-only tweet.
func composeTweet(d TweetData, mediaKeys []string, cardURI string) params {
	p := params{"nullcast": "true"}
	p.set("as_user_id", d.AsUserID)
	p.set("text", d.Text)
	p.set("media_keys", strings.Join(mediaKeys, ","))
	p.set("card_uri", cardURI)
	return p
}

func composeMediaLibrary(fileName, mediaKey string) params {
	return params{
		"file_name":      fileName,
		"media_category": mediaCategory,
		"media_key":      mediaKey,
	}
}

func composeUploadInit(fileName string, size int, owners ...string) params {
	p := params{
		"command":        "INIT",
		"media_category": mediaCategory,
		"media_type":     mediaType(fileName),
		"total_bytes":    strconv.Itoa(size),
	}
	p.set("additional_owners", strings.Join(owners, ","))
	return p
}

func composeUploadAppend(mediaID, data string) params {
	return params{
		"command":       "APPEND",
		"media_data":    data,
		"media_id":      mediaID,
		"segment_index": "0",
	}
}

func composeUploadFinalize(mediaID string) params {
	return params{"command": "FINALIZE", "media_id": mediaID}
}

// mediaType guesses the MIME type from the file extension.
func mediaType(fileName string) string {
	if t := mime.TypeByExtension(strings.ToLower(path.Ext(fileName))); t != "" {
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = t[:i]
		}
		return t
	}
	return "application/octet-stream"
}

// Custom audience user operation types.
const (
	operationUpdate = "Update"
	operationDelete = "Delete"
)

type audienceUser struct {
	Email       []string `json:"email"`
	PhoneNumber []string `json:"phone_number,omitempty"`
}

type audienceUsersParams struct {
	EffectiveAt string         `json:"effective_at"`
	ExpiresAt   string         `json:"expires_at,omitempty"`
	Users       []audienceUser `json:"users"`
}

type audienceUsersOperation struct {
	OperationType string              `json:"operation_type"`
	Params        audienceUsersParams `json:"params"`
}

func composeAudienceUsers(operationType, effectiveAt, expiresAt string, users []channels.HashedUser) []audienceUsersOperation {
	out := make([]audienceUser, len(users))
	for i, u := range users {
		out[i] = audienceUser{Email: []string{u.Email}}
		if u.Phone != "" {
			out[i].PhoneNumber = []string{u.Phone}
		}
	}
	return []audienceUsersOperation{{
		OperationType: operationType,
		Params: audienceUsersParams{
			EffectiveAt: effectiveAt,
			ExpiresAt:   expiresAt,
			Users:       out,
		},
	}}
}

// Responses, decoded from the data field of the Ads API envelope.

type idResponse struct {
	ID string `json:"id"`
}

type entityResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	EntityStatus string `json:"entity_status"`
}

type audienceResponse struct {
	ID                   string   `json:"id"`
	Targetable           bool     `json:"targetable"`
	ReasonsNotTargetable []string `json:"reasons_not_targetable"`
}

func (a audienceResponse) tooSmall() bool {
	return slices.Contains(a.ReasonsNotTargetable, "TOO_SMALL")
}

// tweetResponse carries the tweet id both as a number and as a string.
type tweetResponse struct {
	ID    json.Number `json:"id"`
	IDStr string      `json:"id_str"`
}

func (t tweetResponse) id() string {
	if t.IDStr != "" {
		return t.IDStr
	}
	return t.ID.String()
}

type cardResponse struct {
	CardURI string `json:"card_uri"`
}

// mediaResponse is returned by the upload host without an envelope.
type mediaResponse struct {
	MediaIDString string `json:"media_id_string"`
	MediaKey      string `json:"media_key"`
}

package facebook

import (
	"sort"

	"adsmanager/internal/channels"
)

const audienceSubtypeCustom = "CUSTOM"

// Graph API request payloads. Every field is omitempty so the same shapes
// serve partial updates; the validate tags apply to creation only.

type campaignPayload struct {
	Name                string   `json:"name,omitempty" validate:"required"`
	Objective           string   `json:"objective,omitempty" validate:"required,oneof=LINK_CLICKS REACH OUTCOME_AWARENESS OUTCOME_TRAFFIC OUTCOME_ENGAGEMENT OUTCOME_LEADS OUTCOME_SALES OUTCOME_APP_PROMOTION"`
	SpecialAdCategories []string `json:"special_ad_categories,omitempty" validate:"required,dive,oneof=NONE CREDIT EMPLOYMENT HOUSING ISSUES_ELECTIONS_POLITICS"`
	Status              string   `json:"status,omitempty" validate:"required,oneof=ACTIVE ARCHIVED DELETED PAUSED"`
	DailyBudget         int64    `json:"daily_budget,omitempty" validate:"omitempty,min=1"`
	LifetimeBudget      int64    `json:"lifetime_budget,omitempty" validate:"omitempty,min=1"`
}

type adSetPayload struct {
	Name             string     `json:"name,omitempty" validate:"required"`
	CampaignID       string     `json:"campaign_id,omitempty" validate:"required"`
	BillingEvent     string     `json:"billing_event,omitempty" validate:"required,oneof=CLICKS IMPRESSIONS LINK_CLICKS"`
	OptimizationGoal string     `json:"optimization_goal,omitempty" validate:"required,oneof=IMPRESSIONS LINK_CLICKS REACH"`
	StartTime        string     `json:"start_time,omitempty" validate:"required"`
	EndTime          string     `json:"end_time,omitempty"`
	BidAmount        int64      `json:"bid_amount,omitempty" validate:"omitempty,min=1"`
	Status           string     `json:"status,omitempty" validate:"required,oneof=ACTIVE ARCHIVED DELETED PAUSED"`
	Targeting        *targeting `json:"targeting,omitempty" validate:"required"`
}

type targeting struct {
	CustomAudiences []objectRef `json:"custom_audiences" validate:"required,min=1,dive"`
}

type objectRef struct {
	ID string `json:"id" validate:"required"`
}

type audiencePayload struct {
	Name               string `json:"name,omitempty" validate:"required"`
	Subtype            string `json:"subtype,omitempty"`
	Description        string `json:"description,omitempty"`
	CustomerFileSource string `json:"customer_file_source,omitempty" validate:"omitempty,oneof=USER_PROVIDED_ONLY PARTNER_PROVIDED_ONLY BOTH_USER_AND_PARTNER_PROVIDED"`
}

type adImagePayload struct {
	Bytes string `json:"bytes"`
	Name  string `json:"name"`
}

type adCreativePayload struct {
	Name            string          `json:"name,omitempty"`
	ObjectStorySpec objectStorySpec `json:"object_story_spec"`
}

type objectStorySpec struct {
	PageID   string   `json:"page_id"`
	LinkData linkData `json:"link_data"`
}

type linkData struct {
	CallToAction *callToAction `json:"call_to_action,omitempty"`
	Description  string        `json:"description,omitempty"`
	ImageHash    string        `json:"image_hash"`
	Link         string        `json:"link"`
	Message      string        `json:"message,omitempty"`
	Name         string        `json:"name,omitempty"`
}

type callToAction struct {
	Type  string            `json:"type"`
	Value callToActionValue `json:"value"`
}

type callToActionValue struct {
	Link string `json:"link"`
}

type adPayload struct {
	Name     string      `json:"name"`
	AdSetID  string      `json:"adset_id"`
	Creative creativeRef `json:"creative"`
	Status   string      `json:"status"`
}

type creativeRef struct {
	CreativeID string `json:"creative_id"`
}

type statusPayload struct {
	Name   string `json:"name,omitempty"`
	Status string `json:"status,omitempty"`
}

// Hashed audience members, one row per user in schema order.
type usersPayload struct {
	Payload usersData `json:"payload"`
}

type usersData struct {
	Schema []string    `json:"schema"`
	Data   [][]*string `json:"data"`
}

var userSchema = []string{"EMAIL_SHA256", "PHONE_SHA256"}

// Graph API responses.

type idResponse struct {
	ID string `json:"id"`
}

type listResponse struct {
	Data []idResponse `json:"data"`
}

type campaignResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type adImageResponse struct {
	Images map[string]struct {
		Hash string `json:"hash"`
	} `json:"images"`
}

// firstHash returns the hash of the first image by name; a single upload
// yields exactly one entry.
func (r adImageResponse) firstHash() (string, bool) {
	names := make([]string, 0, len(r.Images))
	for name := range r.Images {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if h := r.Images[name].Hash; h != "" {
			return h, true
		}
	}
	return "", false
}

type usersResponse struct {
	AudienceID        string `json:"audience_id"`
	NumReceived       int    `json:"num_received"`
	NumInvalidEntries int    `json:"num_invalid_entries"`
}

func composeCampaign(name, status string, f CampaignFields) campaignPayload {
	p := campaignPayload{
		Name:           name,
		Objective:      f.Objective,
		Status:         status,
		DailyBudget:    f.DailyBudget,
		LifetimeBudget: f.LifetimeBudget,
	}
	if f.SpecialAdCategory != "" {
		p.SpecialAdCategories = []string{f.SpecialAdCategory}
	}
	return p
}

func composeAdSet(name, status, campaignID, audienceID string, f AdSetFields) adSetPayload {
	p := adSetPayload{
		Name:             name,
		CampaignID:       campaignID,
		BillingEvent:     f.BillingEvent,
		OptimizationGoal: f.OptimizationGoal,
		StartTime:        f.StartTime,
		EndTime:          f.EndTime,
		BidAmount:        f.BidAmount,
		Status:           status,
	}
	if audienceID != "" {
		p.Targeting = &targeting{CustomAudiences: []objectRef{{ID: audienceID}}}
	}
	return p
}

func composeAudience(name string, f AudienceFields) audiencePayload {
	return audiencePayload{
		Name:               name,
		Subtype:            audienceSubtypeCustom,
		Description:        f.Description,
		CustomerFileSource: f.CustomerFileSource,
	}
}

func composeAdCreative(data AdCreativeData, imageHash string) adCreativePayload {
	p := adCreativePayload{
		Name: data.Name,
		ObjectStorySpec: objectStorySpec{
			PageID: data.PageID,
			LinkData: linkData{
				Description: data.Description,
				ImageHash:   imageHash,
				Link:        data.Link,
				Message:     data.Text,
				Name:        data.Headline,
			},
		},
	}
	if data.CallToActionType != "" {
		p.ObjectStorySpec.LinkData.CallToAction = &callToAction{
			Type:  data.CallToActionType,
			Value: callToActionValue{Link: data.Link},
		}
	}
	return p
}

func composeAd(name, status, adSetID, creativeID string) adPayload {
	return adPayload{
		Name:     name,
		AdSetID:  adSetID,
		Creative: creativeRef{CreativeID: creativeID},
		Status:   status,
	}
}

func composeUsers(users []channels.HashedUser) usersPayload {
	rows := make([][]*string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []*string{hashCell(u.Email), hashCell(u.Phone)})
	}
	return usersPayload{Payload: usersData{Schema: userSchema, Data: rows}}
}

// hashCell is nil for a missing identifier so the column is sent as null.
func hashCell(hash string) *string {
	if hash == "" {
		return nil
	}
	return &hash
}

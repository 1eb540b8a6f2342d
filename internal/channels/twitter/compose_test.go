package twitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adsmanager/internal/channels"
)

func TestComposeCampaign(t *testing.T) {
	got, err := composeCampaign("", "", CampaignFields{EndTime: "2024-04-01T10:30:00+02:00"})
	require.NoError(t, err)
	assert.Equal(t, params{"end_time": "2024-04-01T10:30:00+02:00"}, got)

	_, err = composeCampaign("x", StatusActive, CampaignFields{EndTime: "someday"})
	assert.ErrorIs(t, err, channels.ErrInvalidInput)
}

func TestWithLineItemDefaults(t *testing.T) {
	assert.Equal(t, LineItemFields{
		BidType:     "TARGET",
		Objective:   "AWARENESS",
		Placements:  []string{"ALL_ON_TWITTER"},
		ProductType: "PROMOTED_TWEETS",
	}, withLineItemDefaults(LineItemFields{}))

	custom := LineItemFields{BidType: "AUTO", Objective: "ENGAGEMENTS", Placements: []string{"TWITTER_TIMELINE", "TWITTER_SEARCH"}, ProductType: "PROMOTED_TWEETS"}
	assert.Equal(t, custom, withLineItemDefaults(custom))
	assert.Equal(t, "TWITTER_TIMELINE,TWITTER_SEARCH", composeLineItem("", "", "", custom)["placements"])
}

func TestMediaType(t *testing.T) {
	assert.Equal(t, "image/png", mediaType("a.PNG"))
	assert.Equal(t, "image/jpeg", mediaType("photo.jpg"))
	assert.Equal(t, "application/octet-stream", mediaType("blob"))
}

func TestTooSmall(t *testing.T) {
	assert.True(t, audienceResponse{ReasonsNotTargetable: []string{"PROCESSING", "TOO_SMALL"}}.tooSmall())
	assert.False(t, audienceResponse{ReasonsNotTargetable: []string{"PROCESSING"}}.tooSmall())
	assert.False(t, audienceResponse{Targetable: true}.tooSmall())
}

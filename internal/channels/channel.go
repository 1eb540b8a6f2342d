// Package channels defines the capability contract shared by every ad network adapter,
// along with the pieces each adapter embeds: identity and logging, the credential gate,
// the default-value overlay, audience-user hashing and the pre-submission validator hook.
package channels

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// Channel is the provider-agnostic surface of an adapter. Operations whose
// arguments have the same shape on every network live here; the registry and
// the CLI work with this interface.
type Channel interface {
	ID() string
	SetLogger(logger *zap.Logger)
	IsConfigured() bool

	UpdateCampaignStatus(ctx context.Context, campaignID, status string) (string, error)
	DeleteCampaign(ctx context.Context, campaignID string) (string, error)

	CreateCustomAudienceUsers(ctx context.Context, audienceID string, data UserData) (*AudienceUsersResult, error)
	DeleteCustomAudienceUsers(ctx context.Context, audienceID string, data UserData) (*AudienceUsersResult, error)
}

// Provider is the full capability contract of an adapter, typed over the
// provider's own input shapes.
type Provider[AdData, CampaignData, CampaignUpdate, AudienceData, Defaults, Config any] interface {
	Channel

	CreateAd(ctx context.Context, data AdData) (*Ad, error)
	CreateCampaign(ctx context.Context, data CampaignData) (*Campaign, error)
	UpdateCampaign(ctx context.Context, campaignID string, data CampaignUpdate) (*Campaign, error)
	CreateCustomAudience(ctx context.Context, data AudienceData) (*Audience, error)

	SetDefaultValues(defaults Defaults)
	SetConfig(config Config)
}

// Ad is the handle of a created creative, post or tweet.
type Ad struct {
	ID  string          `json:"id"`
	Raw json.RawMessage `json:"raw,omitempty"`
}

// Campaign is the handle of the top-level created entity. Resources lists
// the sub-resources created alongside it, keyed by role.
type Campaign struct {
	ID        string            `json:"id"`
	Name      string            `json:"name,omitempty"`
	Status    string            `json:"status,omitempty"`
	Resources map[string]string `json:"resources,omitempty"`
	Raw       json.RawMessage   `json:"raw,omitempty"`
}

// Audience is the handle of a created audience segment.
type Audience struct {
	ID  string          `json:"id"`
	Raw json.RawMessage `json:"raw,omitempty"`
}

// AudienceUsersResult reports an audience membership change.
type AudienceUsersResult struct {
	AudienceID string          `json:"audience_id"`
	Users      int             `json:"users"`
	Raw        json.RawMessage `json:"raw,omitempty"`
}

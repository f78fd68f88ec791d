// ABOUTME: Core entity types for conversations and campaigns
// ABOUTME: Defines id-based identity, aggregate links, and display payloads
package models

import "time"

// EntityType names a tracked server-owned collection.
type EntityType string

const (
	TypeConversations EntityType = "conversations"
	TypeCampaigns     EntityType = "campaigns"
)

// Entity is a server-owned record with a stable integer id, unique within
// its type. The sync engine only ever relies on this identity; display
// fields are opaque to it.
type Entity interface {
	EntityID() int
}

// Conversation is a chat thread that may have spawned a campaign.
type Conversation struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Status      string     `json:"status,omitempty"`
	Tone        string     `json:"tone,omitempty"`
	HasCampaign bool       `json:"has_campaign,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`

	// Fields carries any backend attributes the client renders but does
	// not interpret.
	Fields map[string]any `json:"fields,omitempty"`
}

func (c Conversation) EntityID() int { return c.ID }

// Campaign is a marketing campaign. ConversationID links back to the
// conversation it was created from; zero means no link. The association is
// soft and bidirectional: neither side owns the other, and it is resolved
// by scanning the companion collection when needed.
type Campaign struct {
	ID             int        `json:"id"`
	Name           string     `json:"name"`
	Status         string     `json:"status,omitempty"`
	Tone           string     `json:"tone,omitempty"`
	ConversationID int        `json:"conversation_id,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`

	Fields map[string]any `json:"fields,omitempty"`
}

func (c Campaign) EntityID() int { return c.ID }

// Credits is the account's billing balance as reported by the backend.
type Credits struct {
	Balance   int        `json:"balance"`
	Plan      string     `json:"plan,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// DashboardStats is the aggregate overview document served by the backend.
type DashboardStats struct {
	TotalConversations int            `json:"total_conversations"`
	TotalCampaigns     int            `json:"total_campaigns"`
	CampaignsByStatus  map[string]int `json:"campaigns_by_status,omitempty"`
	CreditsUsed        int            `json:"credits_used,omitempty"`
	GeneratedAt        *time.Time     `json:"generated_at,omitempty"`
}

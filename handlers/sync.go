// ABOUTME: Sync engine MCP tool handlers
// ABOUTME: Implements list, delete, and refresh tools over the local snapshot state
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rallyhq/rally/engine"
	"github.com/rallyhq/rally/models"
)

type SyncHandlers struct {
	engine *engine.SyncEngine
}

func NewSyncHandlers(e *engine.SyncEngine) *SyncHandlers {
	return &SyncHandlers{engine: e}
}

type ConversationOutput struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Status      string `json:"status,omitempty"`
	Tone        string `json:"tone,omitempty"`
	HasCampaign bool   `json:"has_campaign"`
}

type CampaignOutput struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Status         string `json:"status,omitempty"`
	Tone           string `json:"tone,omitempty"`
	ConversationID int    `json:"conversation_id,omitempty"`
}

func conversationToOutput(c models.Conversation) ConversationOutput {
	return ConversationOutput{
		ID:          c.ID,
		Title:       c.Title,
		Status:      c.Status,
		Tone:        c.Tone,
		HasCampaign: c.HasCampaign,
	}
}

func campaignToOutput(c models.Campaign) CampaignOutput {
	return CampaignOutput{
		ID:             c.ID,
		Name:           c.Name,
		Status:         c.Status,
		Tone:           c.Tone,
		ConversationID: c.ConversationID,
	}
}

type ListConversationsInput struct {
	Refresh bool `json:"refresh,omitempty" jsonschema:"Fetch fresh data from the server before listing"`
	Limit   int  `json:"limit,omitempty" jsonschema:"Maximum number of results (default all)"`
}

type ListConversationsOutput struct {
	Conversations []ConversationOutput `json:"conversations"`
}

func (h *SyncHandlers) ListConversations(ctx context.Context, request *mcp.CallToolRequest, input ListConversationsInput) (*mcp.CallToolResult, ListConversationsOutput, error) {
	if input.Refresh {
		if err := h.engine.RefreshNow(ctx, engine.TargetConversations); err != nil {
			return nil, ListConversationsOutput{}, fmt.Errorf("refresh failed: %w", err)
		}
	}

	conversations := h.engine.Conversations.List()
	if input.Limit > 0 && len(conversations) > input.Limit {
		conversations = conversations[:input.Limit]
	}

	result := make([]ConversationOutput, len(conversations))
	for i, conversation := range conversations {
		result[i] = conversationToOutput(conversation)
	}

	return nil, ListConversationsOutput{Conversations: result}, nil
}

type ListCampaignsInput struct {
	Refresh bool   `json:"refresh,omitempty" jsonschema:"Fetch fresh data from the server before listing"`
	Status  string `json:"status,omitempty" jsonschema:"Filter by campaign status"`
}

type ListCampaignsOutput struct {
	Campaigns []CampaignOutput `json:"campaigns"`
}

func (h *SyncHandlers) ListCampaigns(ctx context.Context, request *mcp.CallToolRequest, input ListCampaignsInput) (*mcp.CallToolResult, ListCampaignsOutput, error) {
	if input.Refresh {
		if err := h.engine.RefreshNow(ctx, engine.TargetCampaigns); err != nil {
			return nil, ListCampaignsOutput{}, fmt.Errorf("refresh failed: %w", err)
		}
	}

	result := make([]CampaignOutput, 0)
	for _, campaign := range h.engine.Campaigns.List() {
		if input.Status != "" && campaign.Status != input.Status {
			continue
		}
		result = append(result, campaignToOutput(campaign))
	}

	return nil, ListCampaignsOutput{Campaigns: result}, nil
}

type DeleteInput struct {
	ID int `json:"id" jsonschema:"Entity ID to delete (required)"`
}

type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	Message string `json:"message,omitempty"`
}

func (h *SyncHandlers) DeleteConversation(ctx context.Context, request *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if input.ID == 0 {
		return nil, DeleteOutput{}, fmt.Errorf("id is required")
	}

	if err := h.engine.Deletes.DeleteConversation(ctx, input.ID); err != nil {
		return nil, DeleteOutput{Deleted: false, Message: err.Error()}, nil
	}

	return nil, DeleteOutput{Deleted: true}, nil
}

func (h *SyncHandlers) DeleteCampaign(ctx context.Context, request *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if input.ID == 0 {
		return nil, DeleteOutput{}, fmt.Errorf("id is required")
	}

	if err := h.engine.Deletes.DeleteCampaign(ctx, input.ID); err != nil {
		return nil, DeleteOutput{Deleted: false, Message: err.Error()}, nil
	}

	return nil, DeleteOutput{Deleted: true}, nil
}

type RefreshInput struct {
	Target string `json:"target,omitempty" jsonschema:"What to refresh: conversations, campaigns, dashboard, or all (default all)"`
}

type RefreshOutput struct {
	Refreshed string `json:"refreshed"`
}

func (h *SyncHandlers) Refresh(ctx context.Context, request *mcp.CallToolRequest, input RefreshInput) (*mcp.CallToolResult, RefreshOutput, error) {
	target := engine.TargetAll
	switch input.Target {
	case "", "all":
	case "conversations":
		target = engine.TargetConversations
	case "campaigns":
		target = engine.TargetCampaigns
	case "dashboard":
		target = engine.TargetDashboard
	default:
		return nil, RefreshOutput{}, fmt.Errorf("unknown target: %s", input.Target)
	}

	if err := h.engine.RefreshNow(ctx, target); err != nil {
		return nil, RefreshOutput{}, fmt.Errorf("refresh failed: %w", err)
	}

	return nil, RefreshOutput{Refreshed: string(target)}, nil
}

type DashboardInput struct {
	Refresh bool `json:"refresh,omitempty" jsonschema:"Fetch fresh data from the server first"`
}

type DashboardOutput struct {
	TotalConversations int            `json:"total_conversations"`
	TotalCampaigns     int            `json:"total_campaigns"`
	CampaignsByStatus  map[string]int `json:"campaigns_by_status,omitempty"`
	CreditsBalance     int            `json:"credits_balance"`
	CreditsPlan        string         `json:"credits_plan,omitempty"`
}

func (h *SyncHandlers) GetDashboard(ctx context.Context, request *mcp.CallToolRequest, input DashboardInput) (*mcp.CallToolResult, DashboardOutput, error) {
	if input.Refresh {
		if err := h.engine.RefreshNow(ctx, engine.TargetDashboard); err != nil {
			return nil, DashboardOutput{}, fmt.Errorf("refresh failed: %w", err)
		}
	}

	out := DashboardOutput{}
	if stats, ok := h.engine.Dashboard(); ok {
		out.TotalConversations = stats.TotalConversations
		out.TotalCampaigns = stats.TotalCampaigns
		out.CampaignsByStatus = stats.CampaignsByStatus
	}
	if credits, ok := h.engine.Credits(); ok {
		out.CreditsBalance = credits.Balance
		out.CreditsPlan = credits.Plan
	}

	return nil, out, nil
}

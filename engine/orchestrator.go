// ABOUTME: Cross-entity delete orchestration for conversation/campaign aggregate pairs
// ABOUTME: Optimistic removal with pending marks, one remote delete, rollback on failure
package engine

import (
	"context"
	"errors"

	"github.com/rallyhq/rally/models"
	"github.com/rallyhq/rally/store"
)

// ErrDeleteInFlight is returned when a delete is initiated for an id whose
// previous delete call has not yet resolved. Callers no-op on it.
var ErrDeleteInFlight = errors.New("delete already in flight for this entity")

// Deleter issues the remote delete calls.
type Deleter interface {
	DeleteConversation(ctx context.Context, id int) error
	DeleteCampaign(ctx context.Context, id int) error
}

// DeleteOrchestrator coordinates deletes over the conversation/campaign
// aggregate pair. Deleting either side optimistically removes both from
// every registry; only the primary entity's delete call is issued, the
// backend cascades the companion. On failure both removals roll back
// together. Callers are expected to confirm with the user before invoking
// either delete; the confirmation dialog gates the optimistic transition.
type DeleteOrchestrator struct {
	remote  Deleter
	pending *PendingTracker
	bus     *Bus
	store   store.Store

	sidebar       *Registry[models.Conversation]
	conversations *Registry[models.Conversation]
	campaigns     *Registry[models.Campaign]
}

// NewDeleteOrchestrator wires the orchestrator over the engine's registries.
func NewDeleteOrchestrator(
	remote Deleter,
	pending *PendingTracker,
	bus *Bus,
	st store.Store,
	sidebar, conversations *Registry[models.Conversation],
	campaigns *Registry[models.Campaign],
) *DeleteOrchestrator {
	return &DeleteOrchestrator{
		remote:        remote,
		pending:       pending,
		bus:           bus,
		store:         st,
		sidebar:       sidebar,
		conversations: conversations,
		campaigns:     campaigns,
	}
}

// DeleteCampaign deletes a campaign and, when one exists, its originating
// conversation from the local view.
func (o *DeleteOrchestrator) DeleteCampaign(ctx context.Context, campaignID int) error {
	if !o.pending.Mark(models.TypeCampaigns, campaignID) {
		return ErrDeleteInFlight
	}

	conversationID := o.conversationForCampaign(campaignID)
	if conversationID != 0 {
		o.pending.Mark(models.TypeConversations, conversationID)
	}

	removedCampaign, hadCampaign := o.campaigns.OptimisticRemove(campaignID)
	var sidebarConv, listConv models.Conversation
	var hadSidebar, hadList bool
	if conversationID != 0 {
		sidebarConv, hadSidebar = o.sidebar.OptimisticRemove(conversationID)
		listConv, hadList = o.conversations.OptimisticRemove(conversationID)
	}

	err := o.remote.DeleteCampaign(ctx, campaignID)

	o.pending.Unmark(models.TypeCampaigns, campaignID)
	if conversationID != 0 {
		o.pending.Unmark(models.TypeConversations, conversationID)
	}

	if err != nil {
		if hadCampaign {
			o.campaigns.OptimisticRestore(removedCampaign)
		}
		if hadSidebar {
			o.sidebar.OptimisticRestore(sidebarConv)
		}
		if hadList {
			o.conversations.OptimisticRestore(listConv)
		}
		return err
	}

	o.bus.Publish(TargetCampaigns)
	o.bus.Publish(TargetConversations)
	return nil
}

// DeleteConversation deletes a conversation and, when one exists, the
// campaign it spawned from the local view.
func (o *DeleteOrchestrator) DeleteConversation(ctx context.Context, conversationID int) error {
	if !o.pending.Mark(models.TypeConversations, conversationID) {
		return ErrDeleteInFlight
	}

	campaignID := o.campaignForConversation(conversationID)
	if campaignID != 0 {
		o.pending.Mark(models.TypeCampaigns, campaignID)
	}

	sidebarConv, hadSidebar := o.sidebar.OptimisticRemove(conversationID)
	listConv, hadList := o.conversations.OptimisticRemove(conversationID)
	var removedCampaign models.Campaign
	var hadCampaign bool
	if campaignID != 0 {
		removedCampaign, hadCampaign = o.campaigns.OptimisticRemove(campaignID)
	}

	err := o.remote.DeleteConversation(ctx, conversationID)

	o.pending.Unmark(models.TypeConversations, conversationID)
	if campaignID != 0 {
		o.pending.Unmark(models.TypeCampaigns, campaignID)
	}

	if err != nil {
		if hadSidebar {
			o.sidebar.OptimisticRestore(sidebarConv)
		}
		if hadList {
			o.conversations.OptimisticRestore(listConv)
		}
		if hadCampaign {
			o.campaigns.OptimisticRestore(removedCampaign)
		}
		return err
	}

	o.bus.Publish(TargetConversations)
	o.bus.Publish(TargetCampaigns)
	return nil
}

// conversationForCampaign resolves the originating conversation id, falling
// back to the snapshot store when the campaign registry has not hydrated.
func (o *DeleteOrchestrator) conversationForCampaign(campaignID int) int {
	if o.campaigns.Hydrated() {
		if campaign, ok := o.campaigns.Get(campaignID); ok {
			return campaign.ConversationID
		}
		return 0
	}
	if snapshot, ok := store.ReadJSON[[]models.Campaign](o.store, store.KeyCampaigns); ok {
		for _, campaign := range snapshot {
			if campaign.ID == campaignID {
				return campaign.ConversationID
			}
		}
	}
	return 0
}

// campaignForConversation scans the campaign registry for a foreign key
// back to the conversation, falling back to the snapshot store.
func (o *DeleteOrchestrator) campaignForConversation(conversationID int) int {
	if o.campaigns.Hydrated() {
		for _, campaign := range o.campaigns.List() {
			if campaign.ConversationID == conversationID {
				return campaign.ID
			}
		}
		return 0
	}
	if snapshot, ok := store.ReadJSON[[]models.Campaign](o.store, store.KeyCampaigns); ok {
		for _, campaign := range snapshot {
			if campaign.ConversationID == conversationID {
				return campaign.ID
			}
		}
	}
	return 0
}

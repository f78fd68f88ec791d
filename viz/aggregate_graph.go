// ABOUTME: Graphviz rendering of campaign-to-conversation links
// ABOUTME: Generates DOT source from the current snapshot data
package viz

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/rallyhq/rally/models"
)

// GenerateAggregateGraph renders campaigns and their source conversations as
// a DOT graph. Conversations without a campaign appear as isolated nodes.
func GenerateAggregateGraph(campaigns []models.Campaign, conversations []models.Conversation) (string, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	graph.SetLayout("dot")
	graph.SetRankDir(cgraph.LRRank)

	conversationNodes := make(map[int]*cgraph.Node)
	for _, conversation := range conversations {
		name := conversation.Title
		if name == "" {
			name = "conversation " + strconv.Itoa(conversation.ID)
		}
		node, _ := graph.CreateNodeByName(name)
		if node != nil {
			node.SetShape("box")
		}
		conversationNodes[conversation.ID] = node
	}

	for _, campaign := range campaigns {
		name := campaign.Name
		if name == "" {
			name = "campaign " + strconv.Itoa(campaign.ID)
		}
		campaignNode, _ := graph.CreateNodeByName(name)

		source, ok := conversationNodes[campaign.ConversationID]
		if !ok || source == nil {
			continue
		}
		edge, _ := graph.CreateEdgeByName("", source, campaignNode)
		if edge != nil && campaign.Status != "" {
			edge.SetLabel(campaign.Status)
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}

	return buf.String(), nil
}

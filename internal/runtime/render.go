package runtime

import (
	"context"

	"github.com/aretw0/carepath/pkg/domain"
)

// Render builds the view for the cursor's current node without moving it.
func (e *Engine) Render(_ context.Context, c *domain.Cursor) (*domain.View, error) {
	if c == nil {
		return nil, &domain.TraversalError{Err: domain.ErrUnknownNode}
	}
	node, ok := e.pathway.Node(c.CurrentNodeID)
	if !ok {
		return nil, &domain.TraversalError{NodeID: c.CurrentNodeID, Err: domain.ErrUnknownNode}
	}

	view := &domain.View{
		PathwayID: e.pathway.ID,
		Node:      node,
		Terminal:  node.Terminal(),
		Path:      append([]string(nil), c.Path...),
		History:   c.History.Known(),
	}
	if d, ok := node.(*domain.DecisionNode); ok {
		view.Prompt = renderPrompt(d)
	}
	return view, nil
}

func renderPrompt(d *domain.DecisionNode) *domain.Prompt {
	p := &domain.Prompt{Style: d.Style, Question: d.Question}
	if p.Question == "" {
		p.Question = d.Title
	}
	if d.Style != domain.StyleChild {
		p.Options = d.Labels()
	}
	return p
}

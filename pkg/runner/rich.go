package runner

import (
	"context"

	"github.com/aretw0/heartsquest/pkg/domain"
	"github.com/aretw0/heartsquest/pkg/ports"
)

// RichResponse combines the outcome of an intent with the screen it led to,
// for rich clients (Web, MCP, etc).
type RichResponse struct {
	Outcome domain.Outcome `json:"outcome"`
	View    domain.View    `json:"view"`
}

// DispatchAndView applies an intent and immediately derives the resulting view.
// This ensures that rich clients always receive the screen they just moved to,
// including after a rejected intent.
func DispatchAndView(ctx context.Context, flow ports.Flow, intent domain.Intent) (*RichResponse, error) {
	out, err := flow.Dispatch(ctx, intent)
	if err != nil {
		return nil, err
	}
	return &RichResponse{Outcome: out, View: flow.View()}, nil
}

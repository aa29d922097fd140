package fleetapi

import (
	"context"
	"errors"
	"net/http"
)

// ResetAutomations clears automation state for the given teams and policies so
// failing hosts are reported again.
func (c *Client) ResetAutomations(ctx context.Context, ids ResetAutomationIDs) error {
	if len(ids.TeamIDs) == 0 && len(ids.PolicyIDs) == 0 {
		return errors.New("fleet api: at least one team or policy id is required")
	}
	return c.do(ctx, request{
		op:     "reset_automations",
		method: http.MethodPost,
		path:   "/automations/reset",
		body:   ids,
	}, nil)
}

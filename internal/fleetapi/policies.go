package fleetapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// CreatePolicy saves a new policy. A nil or zero team id creates a global policy.
func (c *Client) CreatePolicy(ctx context.Context, teamID *uint, draft PolicyDraft) (Policy, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	if draft.Name == "" || strings.TrimSpace(draft.Query) == "" {
		return Policy{}, errors.New("fleet api: policy name and query are required")
	}

	path := "/global/policies"
	if teamID != nil && *teamID > 0 {
		path = idPath("/teams/%d/policies", *teamID)
	}

	var out struct {
		Policy Policy `json:"policy"`
	}
	err := c.do(ctx, request{
		op:     "create_policy",
		method: http.MethodPost,
		path:   path,
		body:   draft,
		schema: schemaPolicy,
	}, &out)
	return out.Policy, err
}

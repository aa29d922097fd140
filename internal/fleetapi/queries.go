package fleetapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ListQueries returns saved queries. With MergeInherited set, global queries are
// included alongside the team's own.
func (c *Client) ListQueries(ctx context.Context, opts ListQueriesOptions) (QueriesPage, error) {
	q := listQuery(opts.ListOptions, "name", "asc")
	for k, v := range teamQuery(opts.TeamID) {
		q[k] = v
	}
	if opts.MergeInherited && opts.TeamID != nil {
		q.Set("merge_inherited", "true")
	}
	if s := strings.TrimSpace(opts.Query); s != "" {
		q.Set("query", s)
	}
	if p := strings.TrimSpace(opts.Platform); p != "" {
		q.Set("platform", p)
	}

	var out QueriesPage
	err := c.do(ctx, request{
		op:     "list_queries",
		method: http.MethodGet,
		path:   "/queries",
		query:  q,
		schema: schemaQueries,
	}, &out)
	return out, err
}

// DeleteQueries removes saved queries by id and returns how many were deleted.
func (c *Client) DeleteQueries(ctx context.Context, ids []uint) (int, error) {
	if len(ids) == 0 {
		return 0, errors.New("fleet api: at least one query id is required")
	}
	var out struct {
		Deleted int `json:"deleted"`
	}
	err := c.do(ctx, request{
		op:     "delete_queries",
		method: http.MethodPost,
		path:   "/queries/delete",
		body: struct {
			IDs []uint `json:"ids"`
		}{IDs: ids},
		schema: schemaDeletedQueries,
	}, &out)
	return out.Deleted, err
}

package fleetapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ListActivities returns one page of the global activity feed.
func (c *Client) ListActivities(ctx context.Context, opts ListOptions) (ActivitiesPage, error) {
	var out ActivitiesPage
	err := c.do(ctx, request{
		op:     "list_activities",
		method: http.MethodGet,
		path:   "/activities",
		query:  listQuery(opts, "created_at", "desc"),
		schema: schemaActivities,
	}, &out)
	return out, err
}

// ListHostPastActivities returns completed activities for one host.
func (c *Client) ListHostPastActivities(ctx context.Context, hostID uint, opts ListOptions) (ActivitiesPage, error) {
	var out ActivitiesPage
	err := c.do(ctx, request{
		op:     "list_host_past_activities",
		method: http.MethodGet,
		path:   idPath("/hosts/%d/activities", hostID),
		query:  listQuery(opts, "", ""),
		schema: schemaActivities,
	}, &out)
	return out, err
}

// ListHostUpcomingActivities returns queued activities for one host.
func (c *Client) ListHostUpcomingActivities(ctx context.Context, hostID uint, opts ListOptions) (ActivitiesPage, error) {
	var out ActivitiesPage
	err := c.do(ctx, request{
		op:     "list_host_upcoming_activities",
		method: http.MethodGet,
		path:   idPath("/hosts/%d/activities/upcoming", hostID),
		query:  listQuery(opts, "", ""),
		schema: schemaActivities,
	}, &out)
	return out, err
}

// CancelHostUpcomingActivity removes a queued activity from a host.
func (c *Client) CancelHostUpcomingActivity(ctx context.Context, hostID uint, activityUUID string) error {
	activityUUID = strings.TrimSpace(activityUUID)
	if _, err := uuid.Parse(activityUUID); err != nil {
		return errors.New("fleet api: activity uuid is invalid")
	}
	return c.do(ctx, request{
		op:     "cancel_host_upcoming_activity",
		method: http.MethodDelete,
		path:   idPath("/hosts/%d/activities/upcoming/%s", hostID, activityUUID),
	}, nil)
}

func listQuery(opts ListOptions, defaultOrderKey, defaultOrderDirection string) url.Values {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(opts.PerPage))
	}
	orderKey := strings.TrimSpace(opts.OrderKey)
	if orderKey == "" {
		orderKey = defaultOrderKey
	}
	if orderKey != "" {
		q.Set("order_key", orderKey)
	}
	orderDirection := strings.TrimSpace(opts.OrderDirection)
	if orderDirection == "" {
		orderDirection = defaultOrderDirection
	}
	if orderDirection != "" {
		q.Set("order_direction", orderDirection)
	}
	return q
}

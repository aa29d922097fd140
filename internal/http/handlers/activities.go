package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fleet-console/fleet-console/internal/fleetapi"
	"github.com/fleet-console/fleet-console/internal/http/components"
	"github.com/fleet-console/fleet-console/internal/http/viewmodels"
	"github.com/fleet-console/fleet-console/internal/http/views"
	"github.com/fleet-console/fleet-console/internal/teamscope"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"golang.org/x/sync/errgroup"
)

func hasDetails(a fleetapi.Activity) bool {
	raw := bytes.TrimSpace(a.Details)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null")) && !bytes.Equal(raw, []byte("{}"))
}

func activityDetailsHref(a fleetapi.Activity, page int) string {
	href := fmt.Sprintf("/activities/%d/details", a.ID)
	if page > 0 {
		href += fmt.Sprintf("?page=%d", page)
	}
	return href
}

// HandleActivities renders the global activity feed.
func (h *Handlers) HandleActivities(c *echo.Context) error {
	ctx := c.Request().Context()
	page := parsePageParam(c)

	scope := h.Cache.NewScope()
	defer scope.Dispose()

	state := h.activitiesBinding(scope, page).Load(ctx)
	if state.IsError {
		return h.RenderError(c, state.Err)
	}

	data := h.activitiesViewData(c, page, state.Data)
	return h.RenderComponent(c, views.ActivitiesPage(data))
}

func (h *Handlers) activitiesViewData(c *echo.Context, page int, feed fleetapi.ActivitiesPage) viewmodels.ActivitiesViewData {
	now := h.now()
	items := make([]viewmodels.ActivityItemView, 0, len(feed.Activities))
	for _, a := range feed.Activities {
		item := components.NewActivityItem(a, components.ActivityItemOptions{
			HideShowDetails: !hasDetails(a),
			HideCancel:      true,
		})
		items = append(items, item.View(now, activityDetailsHref(a, page), ""))
	}

	data := viewmodels.ActivitiesViewData{
		Layout: h.LayoutData(c, "Activity", teamscope.AllTeamsID),
		Items:  items,
		Page:   page,
	}
	if len(items) == 0 {
		data.EmptyState = &viewmodels.EmptyState{
			Header: "Fleet has not recorded any activity",
			Info:   "Try editing a query, updating your policies, or running a live query.",
		}
	}
	data.PrevHref, data.NextHref = pageLinks(page, feed.Meta.HasPreviousResults, feed.Meta.HasNextResults, views.ActivitiesListURL)
	return data
}

// HandleActivityDetails opens the details modal of one activity on the feed
// page it was listed on.
func (h *Handlers) HandleActivityDetails(c *echo.Context) error {
	ctx := c.Request().Context()
	id, ok := parseUintParam(c.Param("id"))
	if !ok {
		return RenderNotFound(c)
	}
	page := parsePageParam(c)

	scope := h.Cache.NewScope()
	defer scope.Dispose()

	state := h.activitiesBinding(scope, page).Load(ctx)
	if state.IsError {
		return h.RenderError(c, state.Err)
	}

	var found *fleetapi.Activity
	for i := range state.Data.Activities {
		if state.Data.Activities[i].ID == id {
			found = &state.Data.Activities[i]
			break
		}
	}
	if found == nil {
		return RenderNotFound(c)
	}

	var details *viewmodels.ActivityDetailsViewData
	item := components.NewActivityItem(*found, components.ActivityItemOptions{
		HideShowDetails: !hasDetails(*found),
		HideCancel:      true,
	})
	item.OnShowDetails(func(d components.ShowDetailsData) {
		details = &viewmodels.ActivityDetailsViewData{
			ElementID:   viewmodels.ActivityElementID(*found),
			Type:        d.Type,
			Time:        viewmodels.ParseActivityTime(d.CreatedAt, h.now()),
			DetailsJSON: indentDetails(d.Details),
			CloseHref:   views.ActivitiesListURL(page),
		}
	})
	item.ClickShowDetails(&components.Event{})
	if details == nil {
		return RenderNotFound(c)
	}

	addVary(c, "HX-Request")
	if isHX(c) {
		return h.RenderComponent(c, views.ActivityDetails(*details))
	}
	data := h.activitiesViewData(c, page, state.Data)
	data.Details = details
	return h.RenderComponent(c, views.ActivitiesPage(data))
}

func indentDetails(raw json.RawMessage) string {
	if !hasDetails(fleetapi.Activity{Details: raw}) {
		return ""
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return string(raw)
	}
	return out.String()
}

// HandleHostActivities renders the upcoming and past activity of a host. The
// two lists load concurrently.
func (h *Handlers) HandleHostActivities(c *echo.Context) error {
	ctx := c.Request().Context()
	hostID, ok := parseUintParam(c.Param("id"))
	if !ok {
		return RenderNotFound(c)
	}
	page := parsePageParam(c)

	scope := h.Cache.NewScope()
	defer scope.Dispose()

	past := h.hostPastBinding(scope, hostID, page)
	upcoming := h.hostUpcomingBinding(scope, hostID, page)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return past.Load(gctx).Err })
	g.Go(func() error { return upcoming.Load(gctx).Err })
	if err := g.Wait(); err != nil {
		return h.renderAPIError(c, err)
	}

	now := h.now()
	canCancel := h.canCancelHostActivities()
	data := viewmodels.HostActivitiesViewData{
		Layout: h.LayoutData(c, "Host activity", teamscope.AllTeamsID),
		HostID: hostID,
	}
	for _, a := range upcoming.State().Data.Activities {
		item := components.NewActivityItem(a, components.ActivityItemOptions{
			HideShowDetails: true,
			DisableCancel:   !canCancel,
		})
		cancelHref := fmt.Sprintf("/hosts/%d/activities/upcoming/%s/cancel", hostID, a.UUID)
		data.Upcoming = append(data.Upcoming, item.View(now, "", cancelHref))
	}
	for _, a := range past.State().Data.Activities {
		item := components.NewActivityItem(a, components.ActivityItemOptions{
			HideShowDetails: true,
			HideCancel:      true,
		})
		data.Past = append(data.Past, item.View(now, "", ""))
	}
	if len(data.Upcoming) == 0 {
		data.UpcomingEmpty = &viewmodels.EmptyState{
			Header: "No pending activity",
			Info:   "Pending actions will appear here (scripts, software, lock, and wipe).",
		}
	}
	if len(data.Past) == 0 {
		data.PastEmpty = &viewmodels.EmptyState{
			Header: "No activity",
			Info:   "Completed actions will appear here (scripts, software, lock, and wipe).",
		}
	}
	return h.RenderComponent(c, views.HostActivitiesPage(data))
}

func (h *Handlers) canCancelHostActivities() bool {
	perms := h.permissions()
	return perms.IsGlobalAdmin() || perms.IsGlobalMaintainer()
}

// HandleCancelUpcomingActivity cancels one upcoming host activity and drops
// the cached host activity lists.
func (h *Handlers) HandleCancelUpcomingActivity(c *echo.Context) error {
	ctx := c.Request().Context()
	hostID, ok := parseUintParam(c.Param("id"))
	if !ok {
		return RenderNotFound(c)
	}
	activityUUID := strings.TrimSpace(c.Param("uuid"))
	if _, err := uuid.Parse(activityUUID); err != nil {
		return RenderNotFound(c)
	}

	requested := false
	item := components.NewActivityItem(fleetapi.Activity{UUID: activityUUID}, components.ActivityItemOptions{
		HideShowDetails: true,
		DisableCancel:   !h.canCancelHostActivities(),
	})
	item.OnCancel(func() { requested = true })
	item.ClickCancel(&components.Event{})
	if !requested {
		return h.RenderForbidden(c)
	}

	if err := h.API.CancelHostUpcomingActivity(ctx, hostID, activityUUID); err != nil {
		if fleetapi.IsStatus(err, http.StatusNotFound) {
			h.flashError(c, "Couldn't cancel activity", "The activity has already started or was canceled.")
		} else if fleetapi.StatusOf(err) != 0 {
			h.flashError(c, "Couldn't cancel activity", "Please try again.")
		} else {
			return h.RenderError(c, err)
		}
	} else {
		h.flashSuccess(c, "Activity canceled.")
	}

	h.Cache.Invalidate(kindHostUpcoming)
	h.Cache.Invalidate(kindHostPast)
	return redirect(c, fmt.Sprintf("/hosts/%d/activities", hostID))
}

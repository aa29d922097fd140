package handlers

import (
	"fmt"
	"strings"

	"github.com/fleet-console/fleet-console/internal/fleetapi"
	"github.com/fleet-console/fleet-console/internal/http/viewmodels"
	"github.com/fleet-console/fleet-console/internal/http/views"
	"github.com/fleet-console/fleet-console/internal/teamscope"
	"github.com/labstack/echo/v5"
)

// HandleHostPolicies renders the policies card of a host.
func (h *Handlers) HandleHostPolicies(c *echo.Context) error {
	hostID, ok := parseUintParam(c.Param("id"))
	if !ok {
		return RenderNotFound(c)
	}

	scope := h.Cache.NewScope()
	defer scope.Dispose()

	state := h.hostBinding(scope, hostID).Load(c.Request().Context())
	if state.IsError {
		return h.renderAPIError(c, state.Err)
	}

	data := h.hostPoliciesViewData(c, state.Data, false)
	data.RefetchHref = fmt.Sprintf("/hosts/%d/refetch", hostID)
	return h.RenderComponent(c, views.HostPoliciesPage(data))
}

// HandleDevicePolicies renders the policies card for the device user page,
// addressed by the device token instead of the host id.
func (h *Handlers) HandleDevicePolicies(c *echo.Context) error {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		return RenderNotFound(c)
	}

	scope := h.Cache.NewScope()
	defer scope.Dispose()

	state := h.deviceHostBinding(scope, token).Load(c.Request().Context())
	if state.IsError {
		return h.renderAPIError(c, state.Err)
	}

	data := h.hostPoliciesViewData(c, state.Data, true)
	data.DeviceToken = token
	return h.RenderComponent(c, views.HostPoliciesPage(data))
}

func (h *Handlers) hostPoliciesViewData(c *echo.Context, host fleetapi.Host, deviceUser bool) viewmodels.HostPoliciesViewData {
	team := teamscope.ID(teamscope.NoTeamID)
	if host.TeamID != nil {
		team = teamscope.ID(*host.TeamID)
	}
	name := host.DisplayName
	if name == "" {
		name = host.Hostname
	}

	data := viewmodels.HostPoliciesViewData{
		Layout:            h.LayoutData(c, name+" policies", teamscope.AllTeamsID),
		HostID:            host.ID,
		HostName:          name,
		Platform:          host.Platform,
		DeviceUser:        deviceUser,
		ShowViewAllColumn: !deviceUser,
	}
	if empty, ok := viewmodels.HostPoliciesEmptyState(host.Platform, deviceUser, len(host.Policies)); ok {
		data.EmptyState = &empty
		return data
	}
	data.FailingCount = viewmodels.FailingPolicyCount(host.Policies)
	data.Rows = viewmodels.HostPolicyRows(data.Layout.FleetURL, host.Policies, team, deviceUser)
	return data
}

// HandleHostRefetch asks the host to report new vitals and drops its cached
// detail.
func (h *Handlers) HandleHostRefetch(c *echo.Context) error {
	hostID, ok := parseUintParam(c.Param("id"))
	if !ok {
		return RenderNotFound(c)
	}
	if err := h.API.RefetchHost(c.Request().Context(), hostID); err != nil {
		if fleetapi.StatusOf(err) == 0 {
			return h.RenderError(c, err)
		}
		h.flashError(c, "Couldn't refetch host", "The host may be offline. Please try again later.")
	} else {
		h.flashSuccess(c, "Host is fetching fresh vitals.")
	}
	h.Cache.Invalidate(kindHost)
	return redirect(c, fmt.Sprintf("/hosts/%d/policies", hostID))
}

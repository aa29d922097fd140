package handlers

import (
	"fmt"
	"net/http"

	"github.com/fleet-console/fleet-console/internal/fleetapi"
	"github.com/fleet-console/fleet-console/internal/http/viewmodels"
	"github.com/fleet-console/fleet-console/internal/http/views"
	"github.com/fleet-console/fleet-console/internal/teamscope"
	"github.com/labstack/echo/v5"
)

// HandleSoftwareTitle renders the details of one software title. A title the
// backend refuses or does not know renders as "not detected".
func (h *Handlers) HandleSoftwareTitle(c *echo.Context) error {
	titleID, ok := parseUintParam(c.Param("id"))
	if !ok {
		return RenderNotFound(c)
	}
	team := h.currentTeam(c, teamscope.AllTeamsID)

	scope := h.Cache.NewScope()
	defer scope.Dispose()

	state := h.softwareTitleBinding(scope, titleID, team).Load(c.Request().Context())
	data := viewmodels.SoftwareTitleViewData{
		Layout:  h.LayoutData(c, "Software", team),
		TitleID: titleID,
		TeamID:  team,
	}
	if state.IsError {
		if !fleetapi.IsStatus(state.Err, http.StatusForbidden, http.StatusNotFound) {
			return h.RenderError(c, state.Err)
		}
		data.NotDetected = true
		return h.RenderComponent(c, views.SoftwareTitlePage(data))
	}

	h.fillSoftwareTitle(&data, state.Data)
	return h.RenderComponent(c, views.SoftwareTitlePage(data))
}

func (h *Handlers) fillSoftwareTitle(data *viewmodels.SoftwareTitleViewData, title fleetapi.SoftwareTitle) {
	now := h.now()
	perms := h.permissions()
	fleetURL := data.Layout.FleetURL

	data.Name = title.DisplayName
	if data.Name == "" {
		data.Name = title.Name
	}
	data.Layout.Title = data.Name + " | Software"
	data.TypeLabel = viewmodels.FormatSoftwareType(title.Source, title.ExtensionFor)
	if title.AppStoreApp != nil {
		data.IconURL = viewmodels.OptionalString(title.AppStoreApp.IconURL)
	}
	data.VersionCount = len(title.Versions)
	data.HostsCount = viewmodels.FormatCount(title.HostsCount)
	data.HostsHref = viewmodels.SoftwareTitleHostsHref(fleetURL, title.ID, 0, data.TeamID)
	if title.CountsUpdatedAt != nil {
		if rel, ok := viewmodels.ActivityRelativeTime(*title.CountsUpdatedAt, now); ok {
			data.CountsUpdatedAt = viewmodels.Some(rel)
		}
	}

	if viewmodels.ShowInstallerCard(data.TeamID, perms, title) {
		if info, ok := viewmodels.InstallerCardInfoFor(title); ok {
			data.ShowInstaller = true
			data.Installer = info
			data.InstallerAdded = viewmodels.ParseActivityTime(info.AddedTimestamp, now)
			data.CanDeleteInstaller = perms.IsGlobalAdmin() || perms.IsGlobalMaintainer() ||
				perms.IsTeamAdmin(data.TeamID) || perms.IsTeamMaintainer(data.TeamID)
		}
	}

	data.ShowVersions = viewmodels.ShowVersionsCard(title)
	data.IsIPadOrIOS = viewmodels.IsIpadOrIphoneSoftwareSource(title.Source)
	for _, v := range title.Versions {
		row := viewmodels.SoftwareVersionRow{
			Version:            v.Version,
			VulnerabilityCount: len(v.Vulnerabilities),
			HostsCount:         "---",
			HostsHref:          viewmodels.SoftwareTitleHostsHref(fleetURL, title.ID, v.ID, data.TeamID),
		}
		if v.HostsCount != nil {
			row.HostsCount = viewmodels.FormatCount(*v.HostsCount)
		}
		data.Versions = append(data.Versions, row)
	}
}

// HandleDeleteSoftwareInstaller removes the installer of a title for the
// current team. A title that still has versions stays on its page; otherwise
// the user goes back to the titles list.
func (h *Handlers) HandleDeleteSoftwareInstaller(c *echo.Context) error {
	ctx := c.Request().Context()
	titleID, ok := parseUintParam(c.Param("id"))
	if !ok {
		return RenderNotFound(c)
	}
	team := h.currentTeam(c, teamscope.AllTeamsID)
	if !team.IsTeam() && !team.IsNoTeam() {
		return echo.NewHTTPError(http.StatusBadRequest, "team_id is required")
	}

	if err := h.API.DeleteSoftwareInstaller(ctx, titleID, team.ForAPI()); err != nil {
		if fleetapi.StatusOf(err) == 0 {
			return h.RenderError(c, err)
		}
		h.flashError(c, "Couldn't delete installer", "Please try again.")
		return redirect(c, views.WithTeam(fmt.Sprintf("/software/titles/%d", titleID), team))
	}
	h.flashSuccess(c, "Successfully deleted.")

	scope := h.Cache.NewScope()
	defer scope.Dispose()

	state := h.softwareTitleBinding(scope, titleID, team).Refetch(ctx)
	if state.HasData && len(state.Data.Versions) > 0 {
		return redirect(c, views.WithTeam(fmt.Sprintf("/software/titles/%d", titleID), team))
	}
	return redirect(c, viewmodels.SoftwareTitlesHref(team))
}

// HandleSoftwareTitles sends the titles list to the Fleet UI, which owns it.
func (h *Handlers) HandleSoftwareTitles(c *echo.Context) error {
	team := h.currentTeam(c, teamscope.AllTeamsID)
	return c.Redirect(http.StatusSeeOther, h.fleetURL()+viewmodels.SoftwareTitlesHref(team))
}

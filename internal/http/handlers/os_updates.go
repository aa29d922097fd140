package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fleet-console/fleet-console/internal/fleetapi"
	"github.com/fleet-console/fleet-console/internal/http/viewmodels"
	"github.com/fleet-console/fleet-console/internal/http/views"
	"github.com/fleet-console/fleet-console/internal/querycache"
	"github.com/fleet-console/fleet-console/internal/teamscope"
	"github.com/labstack/echo/v5"
)

// osUpdatesPage carries the request-scoped state of one OS updates render.
type osUpdatesPage struct {
	team     teamscope.ID
	platform string
	form     *viewmodels.OSUpdatesTarget
	formErr  string
}

// HandleOSUpdates renders Controls > OS updates.
func (h *Handlers) HandleOSUpdates(c *echo.Context) error {
	return h.renderOSUpdates(c, osUpdatesPage{
		team:     h.currentTeam(c, teamscope.NoTeamID),
		platform: c.QueryParam("platform"),
	})
}

func (h *Handlers) renderOSUpdates(c *echo.Context, p osUpdatesPage) error {
	ctx := c.Request().Context()
	perms := h.permissions()
	canManage := perms.CanManageOSUpdates(p.team)

	data := viewmodels.OSUpdatesViewData{
		Layout: h.LayoutData(c, "OS updates", p.team),
		TeamID: p.team,
	}

	switch viewmodels.OSUpdatesPageGate(canManage, perms.IsPremiumTier(), false, nil) {
	case viewmodels.OSUpdatesRedirect:
		return redirect(c, views.WithTeam("/controls/os-settings", p.team))
	case viewmodels.OSUpdatesPremiumRequired:
		data.Gate = viewmodels.OSUpdatesPremiumRequired
		return h.RenderComponent(c, views.OSUpdatesPage(data))
	}

	scope := h.Cache.NewScope()
	defer scope.Dispose()

	// The config binding stays disabled on this page. The app mount owns the
	// read and saveOSUpdates refetches it.
	var cfg *fleetapi.AppConfig
	if appCfg, ok := h.State.Config(); ok {
		cfg = &appCfg
	}

	data.Gate = viewmodels.OSUpdatesPageGate(canManage, true, cfg == nil, cfg)
	if data.Gate != viewmodels.OSUpdatesReady {
		return h.RenderComponent(c, views.OSUpdatesPage(data))
	}

	team := h.teamBinding(scope, p.team, p.team.IsTeam())
	versions := h.osVersionsBinding(scope, p.team)
	team.Start(ctx)
	versions.Start(ctx)
	teamState := team.Wait(ctx)
	versionsState := versions.Wait(ctx)
	if teamState.IsError {
		return h.renderAPIError(c, teamState.Err)
	}
	if querycache.AnyLoading(teamState, versionsState) {
		data.Gate = viewmodels.OSUpdatesLoading
		return h.RenderComponent(c, views.OSUpdatesPage(data))
	}

	platform := viewmodels.SelectOSUpdatesPlatform(p.platform, cfg)
	data.SelectedPlatform = platform
	data.Tabs = viewmodels.OSUpdatesTabs(platform, p.team)
	data.ComingSoon = platform == viewmodels.PlatformAndroid
	data.IsFetching = teamState.IsFetching || versionsState.IsFetching

	var teamCfg *fleetapi.Team
	if teamState.HasData {
		teamCfg = &teamState.Data
	}
	if p.form != nil {
		data.Target = *p.form
	} else {
		data.Target = viewmodels.OSUpdatesTargetFor(platform, cfg, teamCfg)
	}
	data.FormError = p.formErr
	data.Nudge, data.ShowNudge = viewmodels.NudgePreviewFor(platform)

	if versionsState.IsError {
		data.VersionsError = true
	} else {
		fillOSVersions(&data, versionsState.Data, platform, h.now())
	}
	return h.RenderComponent(c, views.OSUpdatesPage(data))
}

// fillOSVersions lists the versions reported for the selected platform.
func fillOSVersions(data *viewmodels.OSUpdatesViewData, page fleetapi.OSVersionsPage, platform string, now time.Time) {
	if page.CountsUpdatedAt != nil {
		data.CountsUpdatedAt = viewmodels.ParseActivityTime(*page.CountsUpdatedAt, now)
	}
	for _, v := range page.OSVersions {
		if v.Platform != platform {
			continue
		}
		name := v.NameOnly
		if name == "" {
			name = v.Name
		}
		data.Versions = append(data.Versions, viewmodels.OSVersionRow{
			Name:       name,
			Version:    v.Version,
			Platform:   v.Platform,
			HostsCount: viewmodels.FormatCount(v.HostsCount),
		})
	}
}

// HandleOSUpdatesSave validates and saves the target of one platform, on the
// team when one is selected and on the app config otherwise.
func (h *Handlers) HandleOSUpdatesSave(c *echo.Context) error {
	ctx := c.Request().Context()
	team := h.currentTeam(c, teamscope.NoTeamID)
	perms := h.permissions()
	if !perms.IsPremiumTier() || !perms.CanManageOSUpdates(team) {
		return h.RenderForbidden(c)
	}

	target := viewmodels.OSUpdatesTarget{
		Platform:        strings.ToLower(strings.TrimSpace(c.FormValue("platform"))),
		MinimumVersion:  c.FormValue("minimum_version"),
		Deadline:        c.FormValue("deadline"),
		DeadlineDays:    c.FormValue("deadline_days"),
		GracePeriodDays: c.FormValue("grace_period_days"),
	}
	patch, err := viewmodels.OSUpdatesPatchFor(target)
	if err != nil {
		var verr viewmodels.ValidationError
		if !errors.As(err, &verr) {
			return h.RenderError(c, err)
		}
		return h.renderOSUpdates(c, osUpdatesPage{
			team:     team,
			platform: target.Platform,
			form:     &target,
			formErr:  verr.Error(),
		})
	}

	if err := h.saveOSUpdates(ctx, team, patch); err != nil {
		if fleetapi.StatusOf(err) == 0 {
			return h.RenderError(c, err)
		}
		return h.renderOSUpdates(c, osUpdatesPage{
			team:     team,
			platform: target.Platform,
			form:     &target,
			formErr:  "Couldn't update. Please try again.",
		})
	}

	h.flashSuccess(c, "Successfully updated minimum version!")
	return redirect(c, views.WithTeam("/controls/os-updates?platform="+target.Platform, team))
}

// saveOSUpdates writes the patch and refetches the binding it changed. The
// config refetch goes through the config binding so the shared app config is
// replaced by its single writer.
func (h *Handlers) saveOSUpdates(ctx context.Context, team teamscope.ID, patch fleetapi.OSUpdatesPatch) error {
	scope := h.Cache.NewScope()
	defer scope.Dispose()

	if team.IsTeam() {
		if _, err := h.API.UpdateTeamOSUpdates(ctx, uint(team), patch); err != nil {
			return err
		}
		h.Cache.Invalidate(kindTeam)
		return h.teamBinding(scope, team, true).Refetch(ctx).Err
	}
	if _, err := h.API.UpdateAppConfigOSUpdates(ctx, patch); err != nil {
		return err
	}
	return h.configBinding(scope, true).Refetch(ctx).Err
}

// HandleOSSettings is where users who cannot manage OS updates land.
func (h *Handlers) HandleOSSettings(c *echo.Context) error {
	team := h.currentTeam(c, teamscope.NoTeamID)
	return h.RenderComponent(c, views.OSSettingsPage(h.LayoutData(c, "OS settings", team)))
}

// HandleSetupExperience renders the setup assistant preview.
func (h *Handlers) HandleSetupExperience(c *echo.Context) error {
	team := h.currentTeam(c, teamscope.NoTeamID)
	return h.RenderComponent(c, views.SetupExperiencePage(viewmodels.SetupExperienceViewData{
		Layout: h.LayoutData(c, "Setup experience", team),
	}))
}

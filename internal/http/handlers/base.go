// Package handlers contains HTTP handler logic split by page.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/alexedwards/scs/v2"
	"github.com/fleet-console/fleet-console/internal/appstate"
	"github.com/fleet-console/fleet-console/internal/catalog"
	"github.com/fleet-console/fleet-console/internal/config"
	"github.com/fleet-console/fleet-console/internal/fleetapi"
	"github.com/fleet-console/fleet-console/internal/http/viewmodels"
	"github.com/fleet-console/fleet-console/internal/http/views"
	"github.com/fleet-console/fleet-console/internal/querycache"
	"github.com/fleet-console/fleet-console/internal/teamscope"
	"github.com/labstack/echo/v5"
)

const (
	// ContextKeyRequestID stores the request id (X-Request-ID) for logging and client error references.
	ContextKeyRequestID = "request_id"

	// InternalErrorCode is a stable error code safe to return to clients.
	InternalErrorCode = "INTERNAL_ERROR"
)

// FleetAPI is the subset of the Fleet REST API the pages use.
type FleetAPI interface {
	Me(ctx context.Context) (fleetapi.CurrentUser, error)
	GetAppConfig(ctx context.Context) (fleetapi.AppConfig, error)
	UpdateAppConfigOSUpdates(ctx context.Context, patch fleetapi.OSUpdatesPatch) (fleetapi.AppConfig, error)
	GetTeam(ctx context.Context, teamID uint) (fleetapi.TeamResponse, error)
	UpdateTeamOSUpdates(ctx context.Context, teamID uint, patch fleetapi.OSUpdatesPatch) (fleetapi.TeamResponse, error)
	ListOSVersions(ctx context.Context, teamID *uint) (fleetapi.OSVersionsPage, error)

	ListActivities(ctx context.Context, opts fleetapi.ListOptions) (fleetapi.ActivitiesPage, error)
	ListHostPastActivities(ctx context.Context, hostID uint, opts fleetapi.ListOptions) (fleetapi.ActivitiesPage, error)
	ListHostUpcomingActivities(ctx context.Context, hostID uint, opts fleetapi.ListOptions) (fleetapi.ActivitiesPage, error)
	CancelHostUpcomingActivity(ctx context.Context, hostID uint, activityUUID string) error

	GetHost(ctx context.Context, hostID uint) (fleetapi.Host, error)
	GetDeviceHost(ctx context.Context, deviceToken string) (fleetapi.Host, error)
	RefetchHost(ctx context.Context, hostID uint) error

	GetSoftwareTitle(ctx context.Context, titleID uint, teamID *uint) (fleetapi.SoftwareTitleResponse, error)
	DeleteSoftwareInstaller(ctx context.Context, titleID uint, teamID *uint) error

	ListQueries(ctx context.Context, opts fleetapi.ListQueriesOptions) (fleetapi.QueriesPage, error)
	DeleteQueries(ctx context.Context, ids []uint) (int, error)

	CreatePolicy(ctx context.Context, teamID *uint, draft fleetapi.PolicyDraft) (fleetapi.Policy, error)
	ResetAutomations(ctx context.Context, ids fleetapi.ResetAutomationIDs) error
}

// Handlers groups all HTTP handlers and shared dependencies.
type Handlers struct {
	Cfg      config.Config
	API      FleetAPI
	Cache    *querycache.Client
	State    *appstate.Store
	Sessions *scs.SessionManager
	Catalog  *catalog.Catalog

	// ConfigWriter is the only writer of State's app config. The app config
	// binding's OnSuccess is its sole user.
	ConfigWriter *appstate.ConfigWriter

	// Now is overridden in tests.
	Now func() time.Time
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// LayoutData builds the common layout data for page rendering.
func (h *Handlers) LayoutData(c *echo.Context, title string, team teamscope.ID) viewmodels.LayoutData {
	layout := viewmodels.LayoutData{
		Title:      title,
		ActivePath: c.Request().URL.Path,
		FleetURL:   h.fleetURL(),
		TeamID:     team,
		Toast:      h.popToast(c),
	}
	layout.RequestID, _ = c.Get(ContextKeyRequestID).(string)

	if h.State == nil {
		return layout
	}
	if cfg, ok := h.State.Config(); ok {
		layout.OrgName = cfg.OrgInfo.OrgName
		layout.OrgLogoURL = cfg.OrgInfo.OrgLogoURL
		layout.IsPremiumTier = cfg.IsPremium()
	}
	perms := h.State.Permissions()
	if me, ok := h.State.CurrentUser(); ok {
		layout.UserName = me.User.Name
		layout.UserEmail = me.User.Email
		if me.User.GlobalRole != nil {
			layout.UserRole = *me.User.GlobalRole
		}
		if layout.IsPremiumTier {
			layout.Teams = teamOptions(me, perms, team)
			layout.ShowTeamPicker = len(layout.Teams) > 0
		}
	}
	return layout
}

func teamOptions(me fleetapi.CurrentUser, perms appstate.Permissions, current teamscope.ID) []viewmodels.TeamOption {
	var opts []viewmodels.TeamOption
	if perms.IsOnGlobalTeam() {
		opts = append(opts,
			viewmodels.TeamOption{ID: teamscope.AllTeamsID, Name: "All teams"},
			viewmodels.TeamOption{ID: teamscope.NoTeamID, Name: "No team"},
		)
	}
	teams := me.AvailableTeams
	if len(teams) == 0 {
		teams = me.User.Teams
	}
	sorted := make([]fleetapi.UserTeam, len(teams))
	copy(sorted, teams)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})
	for _, t := range sorted {
		opts = append(opts, viewmodels.TeamOption{ID: teamscope.ID(t.ID), Name: t.Name})
	}
	for i := range opts {
		opts[i].Selected = opts[i].ID == current
	}
	return opts
}

// teamName returns the name of team among the teams visible to the current user.
func (h *Handlers) teamName(team teamscope.ID) string {
	if !team.IsTeam() || h.State == nil {
		return ""
	}
	me, ok := h.State.CurrentUser()
	if !ok {
		return ""
	}
	for _, list := range [][]fleetapi.UserTeam{me.AvailableTeams, me.User.Teams} {
		for _, t := range list {
			if teamscope.ID(t.ID) == team {
				return t.Name
			}
		}
	}
	return ""
}

func (h *Handlers) fleetURL() string {
	return strings.TrimRight(h.Cfg.FleetURL, "/")
}

func (h *Handlers) permissions() appstate.Permissions {
	if h.State == nil {
		return appstate.Permissions{}
	}
	return h.State.Permissions()
}

// RenderComponent renders a templ component as the response.
func (h *Handlers) RenderComponent(c *echo.Context, component templ.Component) error {
	return h.renderComponentStatus(c, http.StatusOK, component)
}

func (h *Handlers) renderComponentStatus(c *echo.Context, status int, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != http.StatusOK {
		c.Response().WriteHeader(status)
	}
	if err := component.Render(c.Request().Context(), c.Response()); err != nil {
		return h.RenderError(c, err)
	}
	return nil
}

// RenderError returns a plain text error response.
func (h *Handlers) RenderError(c *echo.Context, err error) error {
	requestID, _ := c.Get(ContextKeyRequestID).(string)
	path := ""
	if req := c.Request(); req != nil && req.URL != nil {
		path = req.URL.Path
	}
	method := ""
	if req := c.Request(); req != nil {
		method = req.Method
	}
	c.Logger().Error("http error",
		"request_id", requestID,
		"method", method,
		"path", path,
		"ip", c.RealIP(),
		"error", err,
	)

	msg := "Internal server error."
	if requestID != "" {
		msg = fmt.Sprintf("%s Reference: %s.", msg, requestID)
	}
	msg = fmt.Sprintf("%s Code: %s.", msg, InternalErrorCode)
	return c.String(http.StatusInternalServerError, msg)
}

// RenderNotFound returns a 404 response.
func RenderNotFound(c *echo.Context) error {
	return c.String(http.StatusNotFound, "404 page not found")
}

// RenderForbidden renders the layout with a permission message.
func (h *Handlers) RenderForbidden(c *echo.Context) error {
	layout := h.LayoutData(c, "Forbidden", teamscope.AllTeamsID)
	return h.renderComponentStatus(c, http.StatusForbidden,
		views.ErrorPage(layout, "Access denied", "You do not have permission to view this page."))
}

// renderAPIError maps backend failures to pages. A missing or forbidden
// resource renders as not found; everything else is an internal error.
func (h *Handlers) renderAPIError(c *echo.Context, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if fleetapi.IsStatus(err, http.StatusNotFound) {
		return RenderNotFound(c)
	}
	if fleetapi.IsStatus(err, http.StatusForbidden) {
		return h.RenderForbidden(c)
	}
	return h.RenderError(c, err)
}

// ParseBoolForm parses a form value as a boolean.
func ParseBoolForm(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// redirect sends a 303, or an HX-Redirect header for htmx requests.
func redirect(c *echo.Context, url string) error {
	addVary(c, "HX-Request")
	if isHX(c) {
		setHXRedirect(c, url)
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(http.StatusSeeOther, url)
}

// currentTeam reads team_id from the query or the form. Free tier has no teams.
func (h *Handlers) currentTeam(c *echo.Context, fallback teamscope.ID) teamscope.ID {
	if !h.permissions().IsPremiumTier() {
		return teamscope.AllTeamsID
	}
	raw := c.QueryParam("team_id")
	if raw == "" && c.Request().Method == http.MethodPost {
		raw = c.FormValue("team_id")
	}
	return teamscope.Parse(raw, fallback)
}

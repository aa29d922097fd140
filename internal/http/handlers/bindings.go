package handlers

import (
	"context"
	"errors"

	"github.com/fleet-console/fleet-console/internal/fleetapi"
	"github.com/fleet-console/fleet-console/internal/querycache"
	"github.com/fleet-console/fleet-console/internal/teamscope"
	"github.com/labstack/echo/v5"
	"golang.org/x/sync/errgroup"
)

// Cache kinds. Mutations invalidate by kind.
const (
	kindConfig            = "config"
	kindMe                = "me"
	kindTeam              = "team"
	kindOSVersions        = "os_versions"
	kindActivities        = "activities"
	kindHostPast          = "host_past_activities"
	kindHostUpcoming      = "host_upcoming_activities"
	kindHost              = "host"
	kindDeviceHost        = "device_host"
	kindSoftwareTitle     = "software_title"
	kindQueries           = "queries"
	activitiesPerPage     = 20
	hostActivitiesPerPage = 8
)

// configBinding reads the app config. Its OnSuccess is the only writer of the
// shared config.
func (h *Handlers) configBinding(scope *querycache.Scope, disabled bool) *querycache.Binding[fleetapi.AppConfig, fleetapi.AppConfig] {
	opts := querycache.Options[fleetapi.AppConfig, fleetapi.AppConfig]{Disabled: disabled}
	if h.ConfigWriter != nil {
		opts.OnSuccess = h.ConfigWriter.SetConfig
	}
	return querycache.Bind(scope, querycache.NewKey(kindConfig), h.API.GetAppConfig, opts)
}

func (h *Handlers) meBinding(scope *querycache.Scope) *querycache.Binding[fleetapi.CurrentUser, fleetapi.CurrentUser] {
	return querycache.Bind(scope, querycache.NewKey(kindMe), h.API.Me,
		querycache.Options[fleetapi.CurrentUser, fleetapi.CurrentUser]{OnSuccess: h.State.SetCurrentUser})
}

func (h *Handlers) teamBinding(scope *querycache.Scope, team teamscope.ID, enabled bool) *querycache.Binding[fleetapi.TeamResponse, fleetapi.Team] {
	return querycache.Bind(scope, querycache.NewKey(kindTeam, int(team)),
		func(ctx context.Context) (fleetapi.TeamResponse, error) {
			return h.API.GetTeam(ctx, uint(team))
		},
		querycache.Options[fleetapi.TeamResponse, fleetapi.Team]{
			Disabled: !enabled,
			Select:   func(r fleetapi.TeamResponse) fleetapi.Team { return r.Team },
		})
}

func (h *Handlers) osVersionsBinding(scope *querycache.Scope, team teamscope.ID) *querycache.Binding[fleetapi.OSVersionsPage, fleetapi.OSVersionsPage] {
	return querycache.Bind(scope, querycache.NewKey(kindOSVersions, int(team)),
		func(ctx context.Context) (fleetapi.OSVersionsPage, error) {
			return h.API.ListOSVersions(ctx, team.ForAPI())
		},
		querycache.Options[fleetapi.OSVersionsPage, fleetapi.OSVersionsPage]{})
}

func (h *Handlers) activitiesBinding(scope *querycache.Scope, page int) *querycache.Binding[fleetapi.ActivitiesPage, fleetapi.ActivitiesPage] {
	return querycache.Bind(scope, querycache.NewKey(kindActivities, page, activitiesPerPage),
		func(ctx context.Context) (fleetapi.ActivitiesPage, error) {
			return h.API.ListActivities(ctx, fleetapi.ListOptions{Page: page, PerPage: activitiesPerPage})
		},
		querycache.Options[fleetapi.ActivitiesPage, fleetapi.ActivitiesPage]{})
}

func (h *Handlers) hostPastBinding(scope *querycache.Scope, hostID uint, page int) *querycache.Binding[fleetapi.ActivitiesPage, fleetapi.ActivitiesPage] {
	return querycache.Bind(scope, querycache.NewKey(kindHostPast, hostID, page),
		func(ctx context.Context) (fleetapi.ActivitiesPage, error) {
			return h.API.ListHostPastActivities(ctx, hostID, fleetapi.ListOptions{Page: page, PerPage: hostActivitiesPerPage})
		},
		querycache.Options[fleetapi.ActivitiesPage, fleetapi.ActivitiesPage]{})
}

func (h *Handlers) hostUpcomingBinding(scope *querycache.Scope, hostID uint, page int) *querycache.Binding[fleetapi.ActivitiesPage, fleetapi.ActivitiesPage] {
	return querycache.Bind(scope, querycache.NewKey(kindHostUpcoming, hostID, page),
		func(ctx context.Context) (fleetapi.ActivitiesPage, error) {
			return h.API.ListHostUpcomingActivities(ctx, hostID, fleetapi.ListOptions{Page: page, PerPage: hostActivitiesPerPage})
		},
		querycache.Options[fleetapi.ActivitiesPage, fleetapi.ActivitiesPage]{})
}

func (h *Handlers) hostBinding(scope *querycache.Scope, hostID uint) *querycache.Binding[fleetapi.Host, fleetapi.Host] {
	return querycache.Bind(scope, querycache.NewKey(kindHost, hostID),
		func(ctx context.Context) (fleetapi.Host, error) { return h.API.GetHost(ctx, hostID) },
		querycache.Options[fleetapi.Host, fleetapi.Host]{})
}

func (h *Handlers) deviceHostBinding(scope *querycache.Scope, token string) *querycache.Binding[fleetapi.Host, fleetapi.Host] {
	return querycache.Bind(scope, querycache.NewKey(kindDeviceHost, token),
		func(ctx context.Context) (fleetapi.Host, error) { return h.API.GetDeviceHost(ctx, token) },
		querycache.Options[fleetapi.Host, fleetapi.Host]{})
}

func (h *Handlers) softwareTitleBinding(scope *querycache.Scope, titleID uint, team teamscope.ID) *querycache.Binding[fleetapi.SoftwareTitleResponse, fleetapi.SoftwareTitle] {
	return querycache.Bind(scope, querycache.NewKey(kindSoftwareTitle, titleID, int(team)),
		func(ctx context.Context) (fleetapi.SoftwareTitleResponse, error) {
			return h.API.GetSoftwareTitle(ctx, titleID, team.ForAPI())
		},
		querycache.Options[fleetapi.SoftwareTitleResponse, fleetapi.SoftwareTitle]{
			Select: func(r fleetapi.SoftwareTitleResponse) fleetapi.SoftwareTitle { return r.SoftwareTitle },
		})
}

func (h *Handlers) queriesBinding(scope *querycache.Scope, team teamscope.ID, search, platform string) *querycache.Binding[fleetapi.QueriesPage, fleetapi.QueriesPage] {
	return querycache.Bind(scope, querycache.NewKey(kindQueries, int(team), search, platform),
		func(ctx context.Context) (fleetapi.QueriesPage, error) {
			return h.API.ListQueries(ctx, fleetapi.ListQueriesOptions{
				TeamID:         team.ForAPI(),
				MergeInherited: team.IsTeam(),
				Query:          search,
				Platform:       platform,
			})
		},
		querycache.Options[fleetapi.QueriesPage, fleetapi.QueriesPage]{})
}

// LoadApp reads the app config and the current user concurrently and stores
// them. It is the console-wide mount that every page depends on.
func (h *Handlers) LoadApp(ctx context.Context) error {
	scope := h.Cache.NewScope()
	defer scope.Dispose()

	cfg := h.configBinding(scope, false)
	me := h.meBinding(scope)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return cfg.Load(gctx).Err })
	g.Go(func() error { return me.Load(gctx).Err })
	return g.Wait()
}

// RefreshApp refetches the app config and the current user, bypassing the
// cache. The refresh scheduler runs it.
func (h *Handlers) RefreshApp(ctx context.Context) error {
	scope := h.Cache.NewScope()
	defer scope.Dispose()

	cfgErr := h.configBinding(scope, true).Refetch(ctx).Err
	meErr := h.meBinding(scope).Refetch(ctx).Err
	return errors.Join(cfgErr, meErr)
}

// RequireApp makes sure the app config and current user are loaded before a
// page renders.
func (h *Handlers) RequireApp(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		_, hasConfig := h.State.Config()
		_, hasUser := h.State.CurrentUser()
		if !hasConfig || !hasUser {
			if err := h.LoadApp(c.Request().Context()); err != nil {
				return h.RenderError(c, err)
			}
		}
		return next(c)
	}
}

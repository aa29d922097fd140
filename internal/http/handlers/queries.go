package handlers

import (
	"net/http"
	"strings"

	"github.com/fleet-console/fleet-console/internal/fleetapi"
	"github.com/fleet-console/fleet-console/internal/http/components"
	"github.com/fleet-console/fleet-console/internal/http/viewmodels"
	"github.com/fleet-console/fleet-console/internal/http/views"
	"github.com/fleet-console/fleet-console/internal/teamscope"
	"github.com/labstack/echo/v5"
)

type queriesFilter struct {
	team     teamscope.ID
	search   string
	platform string
}

func (h *Handlers) parseQueriesFilter(c *echo.Context) queriesFilter {
	value := func(name string) string {
		if v := c.QueryParam(name); v != "" {
			return v
		}
		if c.Request().Method == http.MethodPost {
			return c.FormValue(name)
		}
		return ""
	}
	platform := strings.ToLower(strings.TrimSpace(value("platform")))
	if platform == "all" {
		platform = ""
	}
	return queriesFilter{
		team:     h.currentTeam(c, teamscope.AllTeamsID),
		search:   strings.TrimSpace(value("query")),
		platform: platform,
	}
}

// loadQueriesTable reads the queries of the filter and restores the session
// selection into a table.
func (h *Handlers) loadQueriesTable(c *echo.Context, f queriesFilter) (*components.QueriesTable, fleetapi.QueriesPage, error) {
	scope := h.Cache.NewScope()
	defer scope.Dispose()

	state := h.queriesBinding(scope, f.team, f.search, f.platform).Load(c.Request().Context())
	if state.IsError {
		return nil, fleetapi.QueriesPage{}, state.Err
	}

	rows := make([]viewmodels.EnhancedQuery, 0, len(state.Data.Queries))
	for _, q := range state.Data.Queries {
		rows = append(rows, viewmodels.EnhanceQuery(q, f.team))
	}
	perms := h.permissions()
	canSelect := perms.CanWriteQueries(f.team) && !perms.IsOnlyObserver()
	return components.NewQueriesTable(rows, canSelect, h.loadQuerySelection(c, f.team)), state.Data, nil
}

func (h *Handlers) queriesViewData(c *echo.Context, f queriesFilter, table *components.QueriesTable, page fleetapi.QueriesPage) viewmodels.QueriesViewData {
	perms := h.permissions()
	rows := table.Rows(h.now())
	data := viewmodels.QueriesViewData{
		Layout:        h.LayoutData(c, "Queries", f.team),
		TeamID:        f.team,
		SearchQuery:   f.search,
		Platform:      f.platform,
		Rows:          rows,
		TotalCount:    len(rows),
		CheckboxCount: table.Checkboxes(),
		AllChecked:    table.AllChecked(),
		SelectedCount: len(table.Selected()),
		CanWrite:      perms.CanWriteQueries(f.team),
	}
	if page.Count > data.TotalCount {
		data.TotalCount = page.Count
	}
	data.ShowCheckboxes = data.CheckboxCount > 0
	if len(rows) == 0 {
		empty := viewmodels.QueriesEmptyState(f.search, perms.IsPremiumTier(), f.team, perms.IsOnlyObserver())
		data.EmptyState = &empty
	}
	return data
}

// HandleQueries renders the manage-queries page, or only its table when htmx
// targets it.
func (h *Handlers) HandleQueries(c *echo.Context) error {
	f := h.parseQueriesFilter(c)
	table, page, err := h.loadQueriesTable(c, f)
	if err != nil {
		return h.RenderError(c, err)
	}
	data := h.queriesViewData(c, f, table, page)

	addVary(c, "HX-Request", "HX-Target")
	if isHX(c) && isHXTarget(c, views.QueriesTableTarget) {
		return h.RenderComponent(c, views.QueriesTable(data))
	}
	return h.RenderComponent(c, views.QueriesPage(data))
}

// HandleQueriesSelect toggles one row (id) or every row (all) and stores the
// selection in the session.
func (h *Handlers) HandleQueriesSelect(c *echo.Context) error {
	f := h.parseQueriesFilter(c)
	table, page, err := h.loadQueriesTable(c, f)
	if err != nil {
		return h.RenderError(c, err)
	}

	if ParseBoolForm(c.FormValue("all")) {
		table.ToggleAll()
	} else if id, ok := parseUintParam(c.FormValue("id")); ok {
		if !table.Toggle(id) {
			return echo.NewHTTPError(http.StatusBadRequest, "query is not selectable")
		}
	}
	h.saveQuerySelection(c, f.team, table.Selected())

	addVary(c, "HX-Request")
	if isHX(c) {
		return h.RenderComponent(c, views.QueriesTable(h.queriesViewData(c, f, table, page)))
	}
	return c.Redirect(http.StatusSeeOther, views.QueriesListURL(f.team, f.search, f.platform))
}

// HandleQueriesDelete deletes the checked queries. Posted ids that are not
// selectable in the current table are ignored.
func (h *Handlers) HandleQueriesDelete(c *echo.Context) error {
	f := h.parseQueriesFilter(c)
	table, _, err := h.loadQueriesTable(c, f)
	if err != nil {
		return h.RenderError(c, err)
	}

	if err := c.Request().ParseForm(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	var ids []uint
	for _, id := range parseIDList(c.Request().PostForm["id"]) {
		if table.IsChecked(id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return redirect(c, views.QueriesListURL(f.team, f.search, f.platform))
	}

	deleted, err := h.API.DeleteQueries(c.Request().Context(), ids)
	switch {
	case err == nil:
		if deleted == 1 {
			h.flashSuccess(c, "Successfully deleted query.")
		} else {
			h.flashSuccess(c, "Successfully deleted queries.")
		}
		h.saveQuerySelection(c, f.team, nil)
	case fleetapi.StatusOf(err) != 0:
		h.flashError(c, "Couldn't delete queries", "Please try again.")
	default:
		return h.RenderError(c, err)
	}

	h.Cache.Invalidate(kindQueries)
	return redirect(c, views.QueriesListURL(f.team, f.search, f.platform))
}

// HandleQueryTable renders the side panel documenting one osquery table. The
// name comes from the route or from the panel's own picker.
func (h *Handlers) HandleQueryTable(c *echo.Context) error {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		name = strings.TrimSpace(c.QueryParam("name"))
	}
	if h.Catalog == nil {
		return RenderNotFound(c)
	}
	if name == "" {
		names := h.Catalog.TableNames()
		if len(names) == 0 {
			return RenderNotFound(c)
		}
		name = names[0]
	}
	table, ok := h.Catalog.Table(name)
	if !ok {
		return RenderNotFound(c)
	}
	return h.RenderComponent(c, views.QuerySidePanel(viewmodels.QuerySidePanelData(table, h.Catalog.TableNames())))
}

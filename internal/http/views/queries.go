package views

import (
	"strings"

	"github.com/a-h/templ"
	"github.com/fleet-console/fleet-console/internal/http/viewmodels"
	"github.com/fleet-console/fleet-console/internal/teamscope"
)

// QueriesTableTarget is the element id swapped by the selection forms.
const QueriesTableTarget = "queries-table"

var queryPlatformFilters = []struct {
	value string
	label string
}{
	{value: "all", label: "All platforms"},
	{value: "darwin", label: "macOS"},
	{value: "windows", label: "Windows"},
	{value: "linux", label: "Linux"},
	{value: "chrome", label: "ChromeOS"},
}

// QueriesPage is the manage-queries page.
func QueriesPage(data viewmodels.QueriesViewData) templ.Component {
	return page(data.Layout, func(h *htmlWriter) {
		h.raw(`<section class="card manage-queries"><div class="card__header"><h1>Queries</h1>`)
		if data.CanWrite {
			h.raw(`<a class="button"`)
			h.href(data.Layout.FleetURL + WithTeam("/queries/new", data.TeamID))
			h.raw(`>Add query</a>`)
		}
		h.raw(`</div>`)

		h.raw(`<form class="manage-queries__filters" method="get" action="/queries"`)
		h.attr("hx-get", "/queries")
		h.attr("hx-target", "#"+QueriesTableTarget)
		h.attr("hx-select", "#"+QueriesTableTarget)
		h.attr("hx-swap", "outerHTML")
		h.attr("hx-push-url", "true")
		h.attr("hx-trigger", "input changed delay:300ms from:input[name='query'], change from:select, submit")
		h.raw(">")
		teamHidden(h, data.TeamID)
		h.raw(`<input type="search" name="query" placeholder="Search by name"`)
		h.attr("value", data.SearchQuery)
		h.raw(`><select name="platform">`)
		for _, opt := range queryPlatformFilters {
			h.raw("<option")
			h.attr("value", opt.value)
			h.boolAttr("selected", opt.value == data.Platform || (opt.value == "all" && data.Platform == ""))
			h.raw(">")
			h.text(opt.label)
			h.raw("</option>")
		}
		h.raw(`</select></form>`)

		queriesTable(h, data)
		h.raw(`</section><aside id="query-side-panel"></aside>`)
	})
}

// QueriesTable renders only the table, for htmx swaps.
func QueriesTable(data viewmodels.QueriesViewData) templ.Component {
	return fragment(func(h *htmlWriter) {
		queriesTable(h, data)
	})
}

func teamHidden(h *htmlWriter, team teamscope.ID) {
	if v := team.QueryValue(); v != "" {
		h.raw(`<input type="hidden" name="team_id"`)
		h.attr("value", v)
		h.raw(">")
	}
}

func selectionForm(h *htmlWriter, data viewmodels.QueriesViewData, name, value string, checked bool, label string) {
	h.raw(`<form class="checkbox-form" method="post" action="/queries/select"`)
	h.attr("hx-post", "/queries/select")
	h.attr("hx-target", "#"+QueriesTableTarget)
	h.attr("hx-swap", "outerHTML")
	h.raw(">")
	teamHidden(h, data.TeamID)
	if data.SearchQuery != "" {
		h.raw(`<input type="hidden" name="query"`)
		h.attr("value", data.SearchQuery)
		h.raw(">")
	}
	if data.Platform != "" {
		h.raw(`<input type="hidden" name="platform"`)
		h.attr("value", data.Platform)
		h.raw(">")
	}
	h.raw(`<button type="submit" role="checkbox" class="checkbox"`)
	h.attr("name", name)
	h.attr("value", value)
	if checked {
		h.attr("aria-checked", "true")
	} else {
		h.attr("aria-checked", "false")
	}
	h.attr("aria-label", label)
	h.raw(`></button></form>`)
}

func queriesTable(h *htmlWriter, data viewmodels.QueriesViewData) {
	h.raw(`<div`)
	h.attr("id", QueriesTableTarget)
	h.raw(">")
	if len(data.Rows) == 0 {
		emptyState(h, data.EmptyState)
		h.raw(`</div>`)
		return
	}

	h.raw(`<p class="manage-queries__count">`)
	h.text(viewmodels.FormatCount(uint(data.TotalCount)) + " " + viewmodels.Pluralize(uint(data.TotalCount), "query", "queries"))
	h.raw(`</p>`)

	if data.ShowCheckboxes && data.SelectedCount > 0 {
		h.raw(`<form class="manage-queries__bulk" method="post" action="/queries/delete">`)
		teamHidden(h, data.TeamID)
		for _, row := range data.Rows {
			if row.Checked {
				h.raw(`<input type="hidden" name="id"`)
				h.attr("value", FormatUint(row.ID))
				h.raw(">")
			}
		}
		h.raw(`<span>`)
		h.text(FormatInt(data.SelectedCount) + " selected")
		h.raw(`</span><button type="submit" class="button button--alert">Delete</button></form>`)
	}

	h.raw(`<table class="queries-table"><thead><tr>`)
	if data.ShowCheckboxes {
		h.raw(`<th class="queries-table__select">`)
		selectionForm(h, data, "all", "1", data.AllChecked, "Select all queries")
		h.raw(`</th>`)
	}
	h.raw(`<th>Name</th><th>Platform</th><th>Frequency</th><th>Performance impact</th><th>Automations</th><th>Author</th><th>Last modified</th></tr></thead><tbody>`)
	for _, row := range data.Rows {
		queryRow(h, data, row)
	}
	h.raw(`</tbody></table></div>`)
}

func queryRow(h *htmlWriter, data viewmodels.QueriesViewData, row viewmodels.QueryRow) {
	h.raw("<tr")
	h.attr("id", "query-"+FormatUint(row.ID))
	h.raw(">")
	if data.ShowCheckboxes {
		h.raw(`<td class="queries-table__select">`)
		if row.Selectable {
			selectionForm(h, data, "id", FormatUint(row.ID), row.Checked, "Select "+row.Name)
		}
		h.raw(`</td>`)
	}

	h.raw(`<td class="queries-table__name"><a`)
	h.href(data.Layout.FleetURL + WithTeam("/queries/"+FormatUint(row.ID), data.TeamID))
	h.raw(">")
	h.text(row.Name)
	h.raw("</a>")
	if row.ObserverCanRun {
		h.raw(`<span class="queries-table__observer-can-run"`)
		h.attr("title", viewmodels.ObserverCanRunTooltip)
		h.raw(`>*</span>`)
	}
	if row.Inherited {
		h.raw(`<span class="badge badge-inherited"`)
		h.attr("title", viewmodels.InheritedTooltip)
		h.raw(`>Inherited</span>`)
	}
	h.raw("</td><td>")
	labels := make([]string, 0, len(row.Platforms))
	for _, p := range row.Platforms {
		labels = append(labels, viewmodels.PlatformLabel(p))
	}
	h.text(strings.Join(labels, ", "))
	h.raw("</td><td>")
	h.text(row.Interval)
	h.raw("</td><td>")
	h.element("span", PerformanceBadgeClass(row.PerformanceImpact), row.PerformanceImpact)
	h.raw("</td><td>")
	if row.AutomationsOn {
		h.text("On")
	} else {
		h.text("Off")
	}
	h.raw("</td><td>")
	h.text(row.AuthorName)
	h.raw("</td><td>")
	if row.UpdatedAt.Valid {
		h.raw("<span")
		h.attr("title", row.UpdatedAt.Exact)
		h.raw(">")
		h.text(row.UpdatedAt.Relative)
		h.raw("</span>")
	}
	h.raw("</td></tr>")
}

// QuerySidePanel documents one osquery table.
func QuerySidePanel(data viewmodels.QuerySidePanelViewData) templ.Component {
	return fragment(func(h *htmlWriter) {
		h.raw(`<div class="query-side-panel"><div class="query-side-panel__header">`)
		h.raw(`<form method="get" action="/queries/tables" class="query-side-panel__picker"><select name="name"`)
		h.attr("hx-get", "/queries/tables")
		h.attr("hx-target", "#query-side-panel")
		h.raw(">")
		for _, name := range data.TableNames {
			h.raw("<option")
			h.attr("value", name)
			h.boolAttr("selected", name == data.Name)
			h.raw(">")
			h.text(name)
			h.raw("</option>")
		}
		h.raw(`</select></form>`)
		h.element("p", "query-side-panel__count", FormatInt(data.TableCount)+" tables")
		h.raw(`</div>`)

		h.raw(`<h2 class="query-side-panel__name">`)
		h.text(data.Name)
		if data.Evented {
			h.raw(` <span class="badge badge-secondary">EVENTED TABLE</span>`)
		}
		h.raw(`</h2>`)
		h.element("p", "query-side-panel__description", data.Description)
		if data.MDMRequired {
			h.raw(`<p class="query-side-panel__mdm">Requires <a href="https://fleetdm.com/docs/using-fleet/mdm-macos-setup" target="_blank" rel="noopener noreferrer">MDM</a></p>`)
		}
		if len(data.Platforms) > 0 {
			h.element("p", "query-side-panel__platforms", "Compatible with: "+strings.Join(data.Platforms, ", "))
		}

		h.raw(`<h3>Columns</h3><ul class="query-side-panel__columns">`)
		for _, col := range data.Columns {
			h.raw(`<li><span class="query-side-panel__column-name">`)
			h.text(col.Name)
			h.raw(`</span> <span class="query-side-panel__column-type">`)
			h.text(strings.ToUpper(col.Type))
			h.raw(`</span>`)
			if col.Required {
				h.raw(` <span class="badge badge-secondary">required</span>`)
			}
			if col.Description != "" {
				h.element("p", "", col.Description)
			}
			h.raw(`</li>`)
		}
		h.raw(`</ul>`)

		if examples, ok := data.Examples.Get(); ok {
			h.raw(`<h3>Example</h3>`)
			h.element("pre", "query-side-panel__example", examples)
		}
		if notes, ok := data.Notes.Get(); ok {
			h.raw(`<h3>Notes</h3>`)
			h.element("p", "query-side-panel__notes", notes)
		}
		h.raw(`<a class="query-side-panel__source" target="_blank" rel="noopener noreferrer"`)
		h.href(data.SourceURL)
		h.raw(`>Source</a></div>`)
	})
}

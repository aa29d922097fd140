package views

import (
	"github.com/a-h/templ"
	"github.com/fleet-console/fleet-console/internal/http/viewmodels"
)

// ActivityItem renders one feed row.
func ActivityItem(item viewmodels.ActivityItemView) templ.Component {
	return fragment(func(h *htmlWriter) {
		activityItem(h, item)
	})
}

func activityItem(h *htmlWriter, item viewmodels.ActivityItemView) {
	h.raw(`<div class="activity-item"`)
	h.attr("id", item.ElementID)
	h.attr("data-activity-type", item.Type)
	h.raw(">")

	h.raw(`<div class="activity-item__avatar">`)
	switch {
	case item.UseFleetAvatar:
		h.raw(`<span class="avatar avatar--fleet" aria-label="Fleet"></span>`)
	case item.UseAPIOnlyAvatar:
		h.raw(`<span class="avatar avatar--api-only" aria-label="API user"></span>`)
	default:
		h.raw(`<img class="avatar" alt="User avatar"`)
		h.attr("src", string(templ.URL(item.AvatarURL)))
		h.raw(">")
	}
	h.raw(`</div>`)

	h.raw(`<div class="activity-item__details-content"><p>`)
	h.element("b", "", item.ActorName)
	h.raw(" ")
	h.text(item.Description)
	h.raw(".</p>")
	if item.Time.Valid {
		h.raw(`<span class="activity-item__timestamp"`)
		h.attr("title", item.Time.Exact)
		h.raw(">")
		h.text(item.Time.Relative)
		h.raw("</span>")
	}
	h.raw(`</div>`)

	h.raw(`<div class="activity-item__actions">`)
	if item.Controls.ShowDetails != viewmodels.ControlAbsent {
		h.raw(`<a class="button button--icon activity-item__show-details"`)
		if item.DetailsHref != "" {
			h.href(item.DetailsHref)
			h.attr("hx-get", item.DetailsHref)
			h.attr("hx-target", "#activity-details")
			h.attr("hx-swap", "innerHTML")
		}
		h.raw(`>Show details</a>`)
	}
	switch item.Controls.Cancel {
	case viewmodels.ControlActive:
		h.raw(`<form class="activity-item__cancel" method="post"`)
		h.attr("action", item.CancelHref)
		h.raw(`><button type="submit" class="button button--icon">Cancel</button></form>`)
	case viewmodels.ControlInert:
		h.raw(`<button type="button" class="button button--icon activity-item__cancel" disabled aria-disabled="true">Cancel</button>`)
	}
	h.raw(`</div></div>`)
}

func activityList(h *htmlWriter, items []viewmodels.ActivityItemView, empty *viewmodels.EmptyState) {
	if len(items) == 0 {
		emptyState(h, empty)
		return
	}
	h.raw(`<div class="activity-feed">`)
	for _, item := range items {
		activityItem(h, item)
	}
	h.raw(`</div>`)
}

// ActivitiesPage is the global activity feed.
func ActivitiesPage(data viewmodels.ActivitiesViewData) templ.Component {
	return page(data.Layout, func(h *htmlWriter) {
		h.raw(`<section class="card activity-card"><h1>Activity</h1>`)
		activityList(h, data.Items, data.EmptyState)
		if data.PrevHref != "" || data.NextHref != "" {
			h.raw(`<nav class="pagination">`)
			pagerLink(h, data.PrevHref, "Previous")
			pagerLink(h, data.NextHref, "Next")
			h.raw(`</nav>`)
		}
		h.raw(`</section><div id="activity-details">`)
		if data.Details != nil {
			activityDetails(h, *data.Details)
		}
		h.raw(`</div>`)
	})
}

func pagerLink(h *htmlWriter, href, label string) {
	if href == "" {
		h.raw(`<span class="pagination__link" aria-disabled="true">`)
		h.text(label)
		h.raw(`</span>`)
		return
	}
	h.raw(`<a class="pagination__link"`)
	h.href(href)
	h.raw(">")
	h.text(label)
	h.raw("</a>")
}

// ActivityDetails is the details modal partial.
func ActivityDetails(data viewmodels.ActivityDetailsViewData) templ.Component {
	return fragment(func(h *htmlWriter) {
		activityDetails(h, data)
	})
}

func activityDetails(h *htmlWriter, data viewmodels.ActivityDetailsViewData) {
	h.raw(`<div class="modal activity-details" role="dialog"`)
	h.attr("aria-labelledby", data.ElementID+"-title")
	h.raw(`><h2`)
	h.attr("id", data.ElementID+"-title")
	h.raw(">")
	h.text(data.Type)
	h.raw("</h2>")
	if data.Time.Valid {
		h.element("p", "activity-details__time", data.Time.Exact)
	}
	if data.DetailsJSON != "" {
		h.element("pre", "activity-details__json", data.DetailsJSON)
	} else {
		h.element("p", "activity-details__empty", "No details for this activity.")
	}
	if data.CloseHref != "" {
		h.raw(`<a class="button"`)
		h.href(data.CloseHref)
		h.raw(">Done</a>")
	}
	h.raw(`</div>`)
}

// HostActivitiesPage shows the past and upcoming activity of one host.
func HostActivitiesPage(data viewmodels.HostActivitiesViewData) templ.Component {
	return page(data.Layout, func(h *htmlWriter) {
		h.raw(`<section class="card host-activity-card"><h1>Activity</h1>`)
		h.raw(`<div class="tabs"><h2>Upcoming</h2>`)
		activityList(h, data.Upcoming, data.UpcomingEmpty)
		h.raw(`<h2>Past</h2>`)
		activityList(h, data.Past, data.PastEmpty)
		h.raw(`</div></section><div id="activity-details"></div>`)
	})
}

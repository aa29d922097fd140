package views

import (
	"github.com/a-h/templ"
	"github.com/fleet-console/fleet-console/internal/http/viewmodels"
	"github.com/fleet-console/fleet-console/internal/teamscope"
)

// OSUpdatesPage is the Controls > OS updates page. Data.Gate decides whether
// the tabs render at all.
func OSUpdatesPage(data viewmodels.OSUpdatesViewData) templ.Component {
	return page(data.Layout, func(h *htmlWriter) {
		controlsNav(h, "/controls/os-updates", data.TeamID)
		h.raw(`<div class="os-updates">`)
		switch data.Gate {
		case viewmodels.OSUpdatesPremiumRequired:
			premiumFeatureMessage(h)
		case viewmodels.OSUpdatesLoading:
			spinner(h)
		case viewmodels.OSUpdatesTurnOnMDM:
			turnOnMDMMessage(h, data.Layout.FleetURL)
		case viewmodels.OSUpdatesReady:
			osUpdatesContent(h, data)
		}
		h.raw(`</div>`)
	})
}

func controlsNav(h *htmlWriter, active string, team teamscope.ID) {
	tabs := []navItem{
		{href: "/controls/os-updates", label: "OS updates"},
		{href: "/controls/os-settings", label: "OS settings"},
		{href: "/controls/setup-experience", label: "Setup experience"},
	}
	h.raw(`<nav class="controls-nav"><ul>`)
	for _, tab := range tabs {
		h.raw("<li")
		if tab.href == active {
			h.attr("class", "active")
		}
		h.raw("><a")
		href := tab.href
		if v := team.QueryValue(); v != "" {
			href += "?team_id=" + v
		}
		h.href(href)
		h.raw(">")
		h.text(tab.label)
		h.raw("</a></li>")
	}
	h.raw(`</ul></nav>`)
}

func premiumFeatureMessage(h *htmlWriter) {
	h.raw(`<div class="premium-feature-message"><p>This feature is included in Fleet Premium.</p>`)
	h.raw(`<a href="https://fleetdm.com/upgrade" target="_blank" rel="noopener noreferrer">Learn more</a></div>`)
}

func turnOnMDMMessage(h *htmlWriter, fleetURL string) {
	h.raw(`<div class="turn-on-mdm-message"><h2>Manage your hosts</h2>`)
	h.raw(`<p>MDM must be turned on to change settings on your hosts.</p><a class="button"`)
	h.href(fleetURL + "/settings/integrations/mdm")
	h.raw(`>Turn on</a></div>`)
}

func osUpdatesContent(h *htmlWriter, data viewmodels.OSUpdatesViewData) {
	h.raw(`<p class="os-updates__description">Remotely encourage the installation of software updates on hosts assigned to this team.</p>`)
	h.raw(`<div class="os-updates__content"><div class="os-updates__current-version-container">`)
	currentVersionSection(h, data)
	h.raw(`</div><div class="os-updates__target-container">`)
	targetSection(h, data)
	h.raw(`</div>`)
	if data.ShowNudge {
		h.raw(`<div class="os-updates__nudge-preview"><div class="card card--gray">`)
		h.element("h3", "", data.Nudge.Title)
		h.element("p", "", data.Nudge.Body)
		h.raw(`</div></div>`)
	}
	h.raw(`</div>`)
}

func currentVersionSection(h *htmlWriter, data viewmodels.OSUpdatesViewData) {
	h.raw(`<section class="current-version-section"><h2>Current versions</h2>`)
	if data.CountsUpdatedAt.Valid {
		h.raw(`<p class="current-version-section__updated"`)
		h.attr("title", data.CountsUpdatedAt.Exact)
		h.raw(">")
		h.text("Updated " + data.CountsUpdatedAt.Relative)
		h.raw("</p>")
	}
	switch {
	case data.VersionsError:
		emptyState(h, &viewmodels.EmptyState{
			Header: "Something went wrong",
			Info:   "Refresh the page or log in again. If this keeps happening, please file an issue.",
		})
	case len(data.Versions) == 0:
		emptyState(h, &viewmodels.EmptyState{
			Header: "No OS versions detected",
			Info:   "This report is updated every hour to protect the performance of your devices.",
		})
	default:
		h.raw(`<table class="os-versions-table"><thead><tr><th>OS type</th><th>Version</th><th>Hosts</th></tr></thead><tbody>`)
		for _, v := range data.Versions {
			h.raw("<tr><td>")
			h.text(v.Name)
			h.raw("</td><td>")
			h.text(v.Version)
			h.raw("</td><td>")
			h.text(v.HostsCount)
			h.raw("</td></tr>")
		}
		h.raw(`</tbody></table>`)
	}
	h.raw(`</section>`)
}

func targetSection(h *htmlWriter, data viewmodels.OSUpdatesViewData) {
	h.raw(`<section class="target-section"><h2>Target</h2><nav class="tabs"><ul>`)
	for _, tab := range data.Tabs {
		h.raw("<li")
		if tab.Selected {
			h.attr("class", "active")
		}
		h.raw("><a")
		h.href(tab.Href)
		h.raw(">")
		h.text(tab.Label)
		h.raw("</a></li>")
	}
	h.raw(`</ul></nav>`)

	if data.ComingSoon {
		h.element("p", "target-section__coming-soon", "Coming soon")
		h.raw(`</section>`)
		return
	}
	if data.IsFetching {
		spinner(h)
	}
	if data.FormError != "" {
		h.element("p", "form-error", data.FormError)
	}

	t := data.Target
	h.raw(`<form class="target-form" method="post"`)
	h.attr("action", WithTeam("/controls/os-updates", data.TeamID))
	h.raw(`><input type="hidden" name="platform"`)
	h.attr("value", t.Platform)
	h.raw(">")
	if t.Platform == viewmodels.PlatformWindows {
		numberField(h, "deadline_days", "Deadline", t.DeadlineDays, "Number of days the end user has before updates are installed and the host is forced to restart.")
		numberField(h, "grace_period_days", "Grace period", t.GracePeriodDays, "Number of days after the deadline the end user has before the host is forced to restart.")
	} else {
		textField(h, "minimum_version", "Minimum version", t.MinimumVersion, "The end user sees the window until their OS is at or above this version.")
		textField(h, "deadline", "Deadline", t.Deadline, "Updates are enforced at 7PM local time on this date (YYYY-MM-DD).")
	}
	h.raw(`<button type="submit" class="button">Save</button></form></section>`)
}

func textField(h *htmlWriter, name, label, value, help string) {
	h.raw(`<label class="form-field">`)
	h.text(label)
	h.raw(`<input type="text"`)
	h.attr("name", name)
	h.attr("value", value)
	h.raw(">")
	h.element("span", "form-field__help-text", help)
	h.raw(`</label>`)
}

func numberField(h *htmlWriter, name, label, value, help string) {
	h.raw(`<label class="form-field">`)
	h.text(label)
	h.raw(`<input type="number" min="0"`)
	h.attr("name", name)
	h.attr("value", value)
	h.raw(">")
	h.element("span", "form-field__help-text", help)
	h.raw(`</label>`)
}

// SetupExperiencePage shows the setup assistant preview card.
func SetupExperiencePage(data viewmodels.SetupExperienceViewData) templ.Component {
	return page(data.Layout, func(h *htmlWriter) {
		controlsNav(h, "/controls/setup-experience", data.Layout.TeamID)
		h.raw(`<div class="card card--gray setup-assistant-preview"><h3>End user experience</h3>`)
		h.raw(`<p>After the end user continues past the <b>Remote Management</b> screen, macOS Setup Assistant displays several screens by default.</p>`)
		h.raw(`<p>By adding an automatic enrollment profile you can customize which screens are displayed and more.</p>`)
		h.raw(`<img class="setup-assistant-preview__preview-img" src="/static/os-prefill-preview.gif" alt="OS setup preview"></div>`)
	})
}

// OSSettingsPage is the landing page for users who cannot manage OS updates.
func OSSettingsPage(layout viewmodels.LayoutData) templ.Component {
	return page(layout, func(h *htmlWriter) {
		controlsNav(h, "/controls/os-settings", layout.TeamID)
		h.raw(`<div class="os-settings"><p>Remotely enforce OS settings like disk encryption and custom profiles on hosts.</p><a`)
		h.href(layout.FleetURL + WithTeam("/controls/os-settings", layout.TeamID))
		h.raw(`>Manage OS settings in Fleet</a></div>`)
	})
}

package views

import (
	"github.com/a-h/templ"
	"github.com/fleet-console/fleet-console/internal/http/viewmodels"
)

// SoftwareTitlePage is the software title details page.
func SoftwareTitlePage(data viewmodels.SoftwareTitleViewData) templ.Component {
	return page(data.Layout, func(h *htmlWriter) {
		h.raw(`<div class="software-title-details">`)
		if data.NotDetected {
			h.raw(`<section class="card">`)
			emptyState(h, &viewmodels.EmptyState{
				Header: "Software not detected",
				Info:   "Expecting to see software? Check back later.",
			})
			h.raw(`</section></div>`)
			return
		}

		softwareSummary(h, data)
		if data.ShowInstaller {
			installerCard(h, data)
		}
		if data.ShowVersions {
			versionsCard(h, data)
		}
		h.raw(`</div>`)
	})
}

func softwareSummary(h *htmlWriter, data viewmodels.SoftwareTitleViewData) {
	h.raw(`<section class="card software-summary">`)
	if icon, ok := data.IconURL.Get(); ok {
		h.raw(`<img class="software-summary__icon" alt=""`)
		h.attr("src", string(templ.URL(icon)))
		h.raw(">")
	}
	h.element("h1", "", data.Name)
	h.raw(`<dl class="software-summary__data">`)
	h.raw(`<dt>Type</dt><dd>`)
	h.text(data.TypeLabel)
	h.raw(`</dd><dt>Versions</dt><dd>`)
	h.text(FormatInt(data.VersionCount))
	h.raw(`</dd><dt>Hosts</dt><dd>`)
	if data.HostsHref != "" {
		h.raw("<a")
		h.href(data.HostsHref)
		h.raw(">")
		h.text(data.HostsCount)
		h.raw("</a>")
	} else {
		h.text(data.HostsCount)
	}
	h.raw(`</dd></dl>`)
	if updated, ok := data.CountsUpdatedAt.Get(); ok {
		h.element("p", "software-summary__updated", "Updated "+updated)
	}
	h.raw(`</section>`)
}

func installerCard(h *htmlWriter, data viewmodels.SoftwareTitleViewData) {
	info := data.Installer
	h.raw(`<section class="card installer-card"`)
	h.attr("data-installer-kind", string(info.Kind))
	h.raw(">")
	h.element("h2", "", info.Name)
	if info.Version != "" {
		h.element("p", "installer-card__version", "Version "+info.Version)
	}
	if data.InstallerAdded.Valid {
		h.raw(`<p class="installer-card__added"`)
		h.attr("title", data.InstallerAdded.Exact)
		h.raw(">")
		h.text("Added " + data.InstallerAdded.Relative)
		h.raw("</p>")
	}
	if info.IsSelfService {
		h.raw(`<span class="badge badge-secondary">Self-service</span>`)
	}
	if st := info.Status; st != nil {
		h.raw(`<dl class="installer-card__status">`)
		statusCount(h, "Installed", st.Installed)
		statusCount(h, "Pending", st.PendingInstall+st.PendingUninstall)
		statusCount(h, "Failed", st.FailedInstall+st.FailedUninstall)
		h.raw(`</dl>`)
	}
	if data.CanDeleteInstaller {
		h.raw(`<form method="post"`)
		h.attr("action", WithTeam("/software/titles/"+FormatUint(data.TitleID)+"/installer/delete", data.TeamID))
		h.raw(`><button type="submit" class="button button--alert">Delete</button></form>`)
	}
	h.raw(`</section>`)
}

func statusCount(h *htmlWriter, label string, n uint) {
	h.raw("<dt>")
	h.text(label)
	h.raw("</dt><dd>")
	h.text(viewmodels.FormatCount(n))
	h.raw("</dd>")
}

func versionsCard(h *htmlWriter, data viewmodels.SoftwareTitleViewData) {
	h.raw(`<section class="card versions-card"><h2>Versions</h2>`)
	if len(data.Versions) == 0 {
		emptyState(h, &viewmodels.EmptyState{
			Header: "No versions detected for this software",
			Info:   "Expecting to see versions? Check back later.",
		})
		h.raw(`</section>`)
		return
	}
	h.raw(`<table class="versions-table"><thead><tr><th>Version</th>`)
	if !data.IsIPadOrIOS {
		h.raw(`<th>Vulnerabilities</th>`)
	}
	h.raw(`<th>Hosts</th></tr></thead><tbody>`)
	for _, v := range data.Versions {
		h.raw("<tr><td>")
		h.text(v.Version)
		h.raw("</td>")
		if !data.IsIPadOrIOS {
			h.raw("<td>")
			h.text(FormatInt(v.VulnerabilityCount))
			h.raw("</td>")
		}
		h.raw("<td>")
		if v.HostsHref != "" {
			h.raw("<a")
			h.href(v.HostsHref)
			h.raw(">")
			h.text(v.HostsCount)
			h.raw("</a>")
		} else {
			h.text(v.HostsCount)
		}
		h.raw("</td></tr>")
	}
	h.raw(`</tbody></table></section>`)
}

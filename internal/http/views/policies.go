package views

import (
	"github.com/a-h/templ"
	"github.com/fleet-console/fleet-console/internal/http/viewmodels"
)

// HostPoliciesPage is the policies card of a host or of the device user page.
func HostPoliciesPage(data viewmodels.HostPoliciesViewData) templ.Component {
	return page(data.Layout, func(h *htmlWriter) {
		hostPoliciesCard(h, data)
	})
}

func hostPoliciesCard(h *htmlWriter, data viewmodels.HostPoliciesViewData) {
	h.raw(`<section class="card policies-card" id="host-policies">`)
	h.raw(`<div class="card__header"><h2>Policies</h2>`)
	if data.RefetchHref != "" {
		h.raw(`<form method="post"`)
		h.attr("action", data.RefetchHref)
		h.raw(`><button type="submit" class="button button--text">Refetch</button></form>`)
	}
	h.raw(`</div>`)

	if data.EmptyState != nil {
		emptyState(h, data.EmptyState)
		h.raw(`</section>`)
		return
	}

	if data.FailingCount > 0 {
		h.raw(`<p class="policies-card__failing">`)
		if data.DeviceUser {
			h.text("Your device is failing ")
		} else {
			h.text("This host is failing ")
		}
		h.raw("<b>")
		h.text(FormatInt(data.FailingCount) + " " + viewmodels.Pluralize(uint(data.FailingCount), "policy", "policies"))
		h.raw("</b>. ")
		if data.DeviceUser {
			h.text("Click a policy below to see steps for resolving the failure.")
		} else {
			h.text("Click a policy below to see if there are steps you can take to resolve the issue(s).")
		}
		h.raw(`</p>`)
	}

	h.raw(`<table class="policies-table"><thead><tr><th>Name</th><th>Status</th>`)
	if data.ShowViewAllColumn {
		h.raw(`<th></th>`)
	}
	h.raw(`</tr></thead><tbody>`)
	for _, row := range data.Rows {
		h.raw("<tr")
		if row.Failing {
			h.attr("class", "policies-table__row--failing")
		}
		h.raw(">")
		h.raw("<td>")
		h.text(row.Name)
		if row.Critical {
			h.raw(` <span class="badge badge-critical">Critical</span>`)
		}
		h.raw("</td><td>")
		h.element("span", PolicyStatusBadgeClass(row.Status), row.Status)
		h.raw("</td>")
		if data.ShowViewAllColumn {
			h.raw("<td>")
			if row.Href != "" {
				h.raw(`<a class="policies-table__view-all"`)
				h.href(row.Href)
				h.raw(`>View all hosts</a>`)
			}
			h.raw("</td>")
		}
		h.raw("</tr>")
	}
	h.raw(`</tbody></table></section>`)
}

// AddPolicyPage lists the policy templates and the "create your own" action.
func AddPolicyPage(data viewmodels.AddPolicyViewData) templ.Component {
	return page(data.Layout, func(h *htmlWriter) {
		h.raw(`<div class="modal add-policy-modal" role="dialog" aria-labelledby="add-policy-title">`)
		h.raw(`<h1 id="add-policy-title">Add a policy</h1>`)
		h.raw(`<div class="add-policy-modal__intro">Choose a policy template to get started or `)
		h.raw(`<form class="inline-form" method="post"`)
		h.attr("action", WithTeam("/policies/new/templates", data.TeamID))
		h.raw(`><button type="submit" name="template" value="custom" class="button button--text-link">create your own policy</button></form>.</div>`)

		h.raw(`<ul class="add-policy-modal__templates">`)
		for _, tpl := range data.Templates {
			h.raw(`<li><form method="post"`)
			h.attr("action", WithTeam("/policies/new/templates", data.TeamID))
			h.raw(`><button type="submit" name="template" class="button button--list-item"`)
			h.attr("value", FormatInt(tpl.Key))
			h.raw(">")
			h.element("span", "add-policy-modal__name", tpl.Name)
			h.element("span", "add-policy-modal__description", tpl.Description)
			if tpl.MDMRequired {
				h.raw(`<span class="badge badge-secondary">Requires MDM</span>`)
			}
			h.raw(`</button></form></li>`)
		}
		h.raw(`</ul></div>`)
	})
}

// NewPolicyPage is the form that creates a policy from the session draft.
func NewPolicyPage(data viewmodels.NewPolicyViewData) templ.Component {
	return page(data.Layout, func(h *htmlWriter) {
		h.raw(`<section class="card new-policy"><h1>New policy</h1>`)
		if data.TeamLabel != "" {
			h.element("p", "new-policy__team", "Team: "+data.TeamLabel)
		}
		if data.Error != "" {
			h.element("p", "form-error", data.Error)
		}
		h.raw(`<form method="post" action="/policies/new">`)
		h.raw(`<input type="hidden" name="team_id"`)
		h.attr("value", FormatInt(int(data.Draft.TeamID)))
		h.raw(">")
		h.raw(`<label>Name<input type="text" name="name" required`)
		h.attr("value", data.Draft.Name)
		h.raw(`></label>`)
		h.raw(`<label>Query<textarea name="query" rows="8" required>`)
		h.text(data.Draft.Query)
		h.raw(`</textarea></label>`)
		h.raw(`<label>Description<textarea name="description" rows="3">`)
		h.text(data.Draft.Description)
		h.raw(`</textarea></label>`)
		h.raw(`<label>Resolution<textarea name="resolution" rows="3">`)
		h.text(data.Draft.Resolution)
		h.raw(`</textarea></label>`)
		h.raw(`<label>Platform<input type="text" name="platform" placeholder="darwin,windows,linux"`)
		h.attr("value", data.Draft.Platform)
		h.raw(`></label>`)
		h.raw(`<label class="checkbox"><input type="checkbox" name="critical" value="1"`)
		h.boolAttr("checked", data.Draft.Critical)
		h.raw(`> Critical</label>`)
		h.raw(`<button type="submit" class="button">Save</button></form></section>`)
	})
}

package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/fleet-console/fleet-console/internal/http/viewmodels"
)

type navItem struct {
	href  string
	label string
}

var navItems = []navItem{
	{href: "/activities", label: "Activity"},
	{href: "/queries", label: "Queries"},
	{href: "/controls/os-updates", label: "Controls"},
	{href: "/policies/new/templates", label: "Policies"},
}

// Layout is the page shell. The page body is passed as templ children.
func Layout(data viewmodels.LayoutData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		children := templ.GetChildren(ctx)
		ctx = templ.ClearChildren(ctx)
		h := newHTMLWriter(ctx, w)

		title := "Fleet"
		if data.Title != "" {
			title = data.Title + " | Fleet"
		}
		h.raw(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw("<title>")
		h.text(title)
		h.raw("</title>")
		h.raw(`<link rel="stylesheet" href="/static/app.css">`)
		h.raw(`<script src="/static/htmx.min.js" defer></script>`)
		h.raw(`</head><body hx-boost="true"`)
		if data.RequestID != "" {
			h.attr("data-request-id", data.RequestID)
		}
		h.raw(">")

		h.raw(`<header class="site-nav"><a class="site-nav__logo" href="/activities">`)
		if data.OrgLogoURL != "" {
			h.raw(`<img`)
			h.attr("src", string(templ.URL(data.OrgLogoURL)))
			h.attr("alt", data.OrgName)
			h.raw(">")
		} else {
			h.text(orDefault(data.OrgName, "Fleet"))
		}
		h.raw(`</a><nav><ul>`)
		for _, item := range navItems {
			h.raw("<li")
			if isActive(data.ActivePath, item.href) {
				h.attr("class", "active")
			}
			h.raw("><a")
			h.href(item.href)
			h.raw(">")
			h.text(item.label)
			h.raw("</a></li>")
		}
		h.raw(`</ul></nav>`)

		if data.ShowTeamPicker && len(data.Teams) > 0 {
			h.raw(`<form class="team-picker" method="get"`)
			h.attr("action", data.ActivePath)
			h.raw(`><select name="team_id" onchange="this.form.submit()">`)
			for _, team := range data.Teams {
				h.raw("<option")
				h.attr("value", FormatInt(int(team.ID)))
				h.boolAttr("selected", team.Selected)
				h.raw(">")
				h.text(team.Name)
				h.raw("</option>")
			}
			h.raw(`</select><noscript><button type="submit">Go</button></noscript></form>`)
		}

		if data.UserEmail != "" {
			h.raw(`<div class="user-menu"><span class="user-menu__name">`)
			h.text(orDefault(data.UserName, data.UserEmail))
			h.raw(`</span>`)
			if data.UserRole != "" {
				h.element("span", "user-menu__role", data.UserRole)
			}
			h.raw(`</div>`)
		}
		h.raw(`</header>`)

		if data.Toast != nil {
			h.raw(`<div role="status"`)
			h.attr("class", ToastClass(data.Toast.Category))
			h.raw(">")
			if data.Toast.Title != "" {
				h.element("strong", "toast__title", data.Toast.Title)
			}
			if data.Toast.Description != "" {
				h.element("p", "toast__description", data.Toast.Description)
			}
			h.raw(`</div>`)
		}

		h.raw(`<main id="main">`)
		h.component(children)
		h.raw(`</main></body></html>`)
		return h.err
	})
}

// ErrorPage is the full-page error boundary.
func ErrorPage(layout viewmodels.LayoutData, header, info string) templ.Component {
	return page(layout, func(h *htmlWriter) {
		h.raw(`<section class="page-error">`)
		h.element("h1", "", header)
		h.element("p", "", info)
		h.raw(`</section>`)
	})
}

func isActive(activePath, href string) bool {
	if activePath == href {
		return true
	}
	return len(activePath) > len(href) && activePath[:len(href)] == href && activePath[len(href)] == '/'
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func emptyState(h *htmlWriter, state *viewmodels.EmptyState) {
	if state == nil {
		return
	}
	h.raw(`<div class="empty-table">`)
	h.element("p", "empty-table__header", state.Header)
	if state.Info != "" {
		h.raw(`<p class="empty-table__info">`)
		h.text(state.Info)
		if state.LinkText != "" && state.LinkURL != "" {
			h.raw(" <a")
			h.href(state.LinkURL)
			h.raw(">")
			h.text(state.LinkText)
			h.raw("</a>")
		}
		h.raw(`</p>`)
	}
	h.raw(`</div>`)
}

func spinner(h *htmlWriter) {
	h.raw(`<div class="spinner" role="progressbar" aria-label="Loading"></div>`)
}

package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/fleet-console/fleet-console/internal/catalog"
	"github.com/fleet-console/fleet-console/internal/fleetapi"
	"github.com/fleet-console/fleet-console/internal/http/viewmodels"
	"github.com/fleet-console/fleet-console/internal/http/views"
	"github.com/fleet-console/fleet-console/internal/teamscope"
	"github.com/labstack/echo/v5"
)

const customPolicyTemplate = "custom"

// HandlePolicyTemplates renders the add-policy modal.
func (h *Handlers) HandlePolicyTemplates(c *echo.Context) error {
	team := h.currentTeam(c, teamscope.AllTeamsID)
	data := viewmodels.AddPolicyViewData{
		Layout:   h.LayoutData(c, "Add a policy", team),
		TeamID:   team,
		TeamName: h.teamName(team),
	}
	if h.Catalog != nil {
		for _, tpl := range h.Catalog.PolicyTemplates() {
			data.Templates = append(data.Templates, viewmodels.PolicyTemplateOption{
				Key:         tpl.Key,
				Name:        tpl.Name,
				Description: tpl.Description,
				MDMRequired: tpl.MDMRequired,
			})
		}
	}
	return h.RenderComponent(c, views.AddPolicyPage(data))
}

// HandlePolicyTemplateChoose stores a draft built from the chosen template, or
// a blank draft for "create your own", and opens the new policy form.
func (h *Handlers) HandlePolicyTemplateChoose(c *echo.Context) error {
	if h.Catalog == nil {
		return RenderNotFound(c)
	}
	team := h.currentTeam(c, teamscope.AllTeamsID)
	choice := strings.TrimSpace(c.FormValue("template"))

	var draft viewmodels.PolicyDraft
	if choice == customPolicyTemplate {
		draft = viewmodels.BlankPolicyDraft(h.Catalog.DefaultPolicy(), team)
	} else {
		key, err := strconv.Atoi(choice)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown template")
		}
		tpl, ok := h.Catalog.PolicyTemplate(key)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown template")
		}
		draft = viewmodels.PolicyDraftFromTemplate(tpl, team, h.teamName(team))
	}

	if err := h.savePolicyDraft(c, draft); err != nil {
		return h.RenderError(c, err)
	}
	return redirect(c, "/policies/new")
}

// HandleNewPolicy renders the new policy form from the session draft.
func (h *Handlers) HandleNewPolicy(c *echo.Context) error {
	draft, ok := h.loadPolicyDraft(c)
	if !ok {
		team := h.currentTeam(c, teamscope.AllTeamsID)
		draft = viewmodels.BlankPolicyDraft(h.defaultPolicy(), team)
	}
	return h.renderNewPolicy(c, draft, "")
}

func (h *Handlers) renderNewPolicy(c *echo.Context, draft viewmodels.PolicyDraft, formErr string) error {
	data := viewmodels.NewPolicyViewData{
		Layout: h.LayoutData(c, "New policy", draft.TeamID),
		Draft:  draft,
		Error:  formErr,
	}
	if draft.TeamID.IsTeam() {
		data.TeamLabel = h.teamName(draft.TeamID)
	}
	return h.RenderComponent(c, views.NewPolicyPage(data))
}

// HandleCreatePolicy creates the policy and opens it in Fleet.
func (h *Handlers) HandleCreatePolicy(c *echo.Context) error {
	draft := viewmodels.PolicyDraft{
		TeamID:      teamscope.Parse(c.FormValue("team_id"), teamscope.NoTeamID),
		Name:        strings.TrimSpace(c.FormValue("name")),
		Query:       strings.TrimSpace(c.FormValue("query")),
		Description: strings.TrimSpace(c.FormValue("description")),
		Resolution:  strings.TrimSpace(c.FormValue("resolution")),
		Platform:    strings.TrimSpace(c.FormValue("platform")),
		Critical:    ParseBoolForm(c.FormValue("critical")),
	}
	if draft.Name == "" || draft.Query == "" {
		return h.renderNewPolicy(c, draft, "Name and query are required.")
	}

	var teamID *uint
	if draft.TeamID.IsTeam() {
		teamID = draft.TeamID.ForAPI()
	}
	policy, err := h.API.CreatePolicy(c.Request().Context(), teamID, fleetapi.PolicyDraft{
		Name:        draft.Name,
		Query:       draft.Query,
		Description: draft.Description,
		Resolution:  draft.Resolution,
		Critical:    draft.Critical,
		Platform:    draft.Platform,
	})
	if err != nil {
		if fleetapi.StatusOf(err) == 0 {
			return h.RenderError(c, err)
		}
		msg := "Couldn't create policy. Please try again."
		if fleetapi.IsStatus(err, http.StatusConflict) {
			msg = "A policy with this name already exists."
		}
		return h.renderNewPolicy(c, draft, msg)
	}

	h.clearPolicyDraft(c)
	h.flashSuccess(c, "Policy created!")
	href := fmt.Sprintf("%s/policies/%d", h.fleetURL(), policy.ID)
	return c.Redirect(http.StatusSeeOther, views.WithTeam(href, draft.TeamID))
}

func (h *Handlers) defaultPolicy() catalog.PolicyTemplate {
	if h.Catalog == nil {
		return catalog.PolicyTemplate{}
	}
	return h.Catalog.DefaultPolicy()
}

// HandleResetAutomations resets the automations of the posted team and policy
// ids and returns to the page the form was posted from.
func (h *Handlers) HandleResetAutomations(c *echo.Context) error {
	if err := c.Request().ParseForm(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	form := c.Request().PostForm
	ids := fleetapi.ResetAutomationIDs{
		TeamIDs:   parseIDList(form["team_id"]),
		PolicyIDs: parseIDList(form["policy_id"]),
	}
	if len(ids.TeamIDs) == 0 && len(ids.PolicyIDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no automations selected")
	}

	if err := h.API.ResetAutomations(c.Request().Context(), ids); err != nil {
		if fleetapi.StatusOf(err) == 0 {
			return h.RenderError(c, err)
		}
		h.flashError(c, "Couldn't reset automations", "Please try again.")
	} else {
		h.flashSuccess(c, "Automations reset.")
	}
	return redirect(c, safeReturnTo(form.Get("return_to"), "/queries"))
}

// safeReturnTo accepts only local absolute paths.
func safeReturnTo(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, `/\`) {
		return fallback
	}
	return raw
}

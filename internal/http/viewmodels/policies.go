package viewmodels

import (
	"net/url"
	"strconv"

	"github.com/fleet-console/fleet-console/internal/catalog"
	"github.com/fleet-console/fleet-console/internal/fleetapi"
	"github.com/fleet-console/fleet-console/internal/teamscope"
)

const SupportLink = "https://fleetdm.com/support"

// Manage-hosts filter values for a policy response.
const (
	PolicyResponsePassing = "passing"
	PolicyResponseFailing = "failing"
)

func isAndroidPlatform(platform string) bool {
	return platform == "android"
}

// HostPoliciesEmptyState returns the message shown instead of the policy table.
// Platforms without policy support always get the support message. Other hosts
// get the generic message only when no policies are checked.
func HostPoliciesEmptyState(platform string, deviceUser bool, policyCount int) (EmptyState, bool) {
	switch {
	case platform == "ios" || platform == "ipados":
		devices := "iPhones"
		if platform == "ipados" {
			devices = "iPads"
		}
		return EmptyState{
			Header:   "Policies are not supported for this host",
			Info:     "Interested in detecting device health issues on " + devices + "?",
			LinkText: "Let us know",
			LinkURL:  SupportLink,
		}, true
	case isAndroidPlatform(platform):
		return EmptyState{
			Header:   "Policies are not supported for this host",
			Info:     "Interested in detecting device health issues on Android hosts?",
			LinkText: "Let us know",
			LinkURL:  SupportLink,
		}, true
	case policyCount == 0:
		if deviceUser {
			return EmptyState{
				Header: "No policies are checked on your device",
				Info:   "Expecting to see policies? Try selecting “Refetch” to ask your device to report new vitals.",
			}, true
		}
		return EmptyState{
			Header: "No policies are checked for this host",
			Info:   "Expecting to see policies? Try selecting “Refetch” to ask this host to report new vitals.",
		}, true
	default:
		return EmptyState{}, false
	}
}

// FailingPolicyCount counts policies whose latest response is a failure.
func FailingPolicyCount(policies []fleetapi.HostPolicy) int {
	n := 0
	for _, p := range policies {
		if p.Response == fleetapi.PolicyResponseFail {
			n++
		}
	}
	return n
}

// PolicyRowHref links a policy row to the host list filtered by that policy's
// response.
func PolicyRowHref(fleetURL string, policy fleetapi.HostPolicy, team teamscope.ID) string {
	response := PolicyResponseFailing
	if policy.Response == fleetapi.PolicyResponsePass {
		response = PolicyResponsePassing
	}
	values := url.Values{}
	values.Set("policy_id", strconv.FormatUint(uint64(policy.ID), 10))
	values.Set("policy_response", response)
	if v := team.QueryValue(); v != "" {
		values.Set("team_id", v)
	}
	return fleetURL + "/hosts/manage?" + values.Encode()
}

type HostPolicyRow struct {
	ID       uint
	Name     string
	Critical bool
	// Status is "Yes", "No" or "---" when the host has not responded yet.
	Status  string
	Failing bool
	Href    string
}

type HostPoliciesViewData struct {
	Layout LayoutData

	HostID      uint
	HostName    string
	Platform    string
	DeviceUser  bool
	DeviceToken string

	EmptyState   *EmptyState
	FailingCount int
	Rows         []HostPolicyRow
	// ShowViewAllColumn is false for device users.
	ShowViewAllColumn bool
	RefetchHref       string
}

// HostPolicyRows builds table rows. Failing rows sort first. Device users get
// no row links.
func HostPolicyRows(fleetURL string, policies []fleetapi.HostPolicy, team teamscope.ID, deviceUser bool) []HostPolicyRow {
	rows := make([]HostPolicyRow, 0, len(policies))
	for _, p := range policies {
		row := HostPolicyRow{ID: p.ID, Name: p.Name, Critical: p.Critical}
		switch p.Response {
		case fleetapi.PolicyResponsePass:
			row.Status = "Yes"
		case fleetapi.PolicyResponseFail:
			row.Status = "No"
			row.Failing = true
		default:
			row.Status = "---"
		}
		if !deviceUser {
			row.Href = PolicyRowHref(fleetURL, p, team)
		}
		rows = append(rows, row)
	}
	failing := make([]HostPolicyRow, 0, len(rows))
	other := make([]HostPolicyRow, 0, len(rows))
	for _, r := range rows {
		if r.Failing {
			failing = append(failing, r)
		} else {
			other = append(other, r)
		}
	}
	return append(failing, other...)
}

// PolicyDraft is the new-policy form state carried between the template picker
// and the policy editor.
type PolicyDraft struct {
	TeamID      teamscope.ID `json:"team_id"`
	Name        string       `json:"name"`
	Query       string       `json:"query"`
	Description string       `json:"description"`
	Resolution  string       `json:"resolution"`
	Critical    bool         `json:"critical"`
	Platform    string       `json:"platform"`
	FromDefault bool         `json:"from_default"`
}

// PolicyDraftFromTemplate seeds a draft from a template. The team name, when
// known, is appended to the policy name.
func PolicyDraftFromTemplate(tpl catalog.PolicyTemplate, team teamscope.ID, teamName string) PolicyDraft {
	name := tpl.Name
	if teamName != "" {
		name = tpl.Name + " (" + teamName + ")"
	}
	return PolicyDraft{
		TeamID:      team,
		Name:        name,
		Query:       tpl.Query,
		Description: tpl.Description,
		Resolution:  tpl.Resolution,
		Critical:    tpl.Critical,
		Platform:    tpl.Platform,
		FromDefault: true,
	}
}

// BlankPolicyDraft is "create your own policy". Pages without a real team
// create the policy globally.
func BlankPolicyDraft(defaultPolicy catalog.PolicyTemplate, currentTeam teamscope.ID) PolicyDraft {
	team := teamscope.ID(teamscope.NoTeamID)
	if currentTeam.IsTeam() {
		team = currentTeam
	}
	return PolicyDraft{TeamID: team, Query: defaultPolicy.Query}
}

type PolicyTemplateOption struct {
	Key         int
	Name        string
	Description string
	MDMRequired bool
}

type AddPolicyViewData struct {
	Layout LayoutData

	TeamID    teamscope.ID
	TeamName  string
	Templates []PolicyTemplateOption
}

type NewPolicyViewData struct {
	Layout LayoutData

	Draft     PolicyDraft
	TeamLabel string
	Error     string
}

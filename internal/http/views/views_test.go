package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/fleet-console/fleet-console/internal/http/viewmodels"
	"github.com/fleet-console/fleet-console/internal/teamscope"
	"golang.org/x/net/html"
)

func renderViewComponent(t *testing.T, component templ.Component) string {
	t.Helper()

	var buf bytes.Buffer
	if err := component.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render component: %v", err)
	}
	return buf.String()
}

// visibleText returns the text nodes of content joined by single spaces.
func visibleText(t *testing.T, content string) string {
	t.Helper()

	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "title") {
			return
		}
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(parts, " ")
}

func assertContains(t *testing.T, content, want string) {
	t.Helper()
	if !strings.Contains(content, want) {
		t.Fatalf("expected rendered HTML to contain %q", want)
	}
}

func assertNotContains(t *testing.T, content, disallowed string) {
	t.Helper()
	if strings.Contains(content, disallowed) {
		t.Fatalf("expected rendered HTML to not contain %q", disallowed)
	}
}

func TestLayoutWrapsPageBodyAndToast(t *testing.T) {
	t.Parallel()

	out := renderViewComponent(t, ErrorPage(viewmodels.LayoutData{
		Title:      "Activity",
		ActivePath: "/activities",
		UserEmail:  "admin@example.com",
		Toast:      &viewmodels.ToastViewData{Category: "success", Title: "Saved"},
	}, "Something went wrong", "Try again."))

	assertContains(t, out, `<title>Activity | Fleet</title>`)
	assertContains(t, out, `hx-boost="true"`)
	assertContains(t, out, `class="toast toast-success"`)
	assertContains(t, out, `<li class="active"><a href="/activities">`)
	assertContains(t, out, `<main id="main"><section class="page-error">`)
	assertContains(t, visibleText(t, out), "Something went wrong Try again.")
}

func TestLayoutEscapesUserText(t *testing.T) {
	t.Parallel()

	out := renderViewComponent(t, ErrorPage(viewmodels.LayoutData{
		UserEmail: "x@example.com",
		UserName:  `<script>alert(1)</script>`,
	}, "h", "i"))

	assertNotContains(t, out, "<script>alert(1)</script>")
	assertContains(t, out, "&lt;script&gt;")
}

func TestLayoutTeamPickerHiddenOnFreeTier(t *testing.T) {
	t.Parallel()

	teams := []viewmodels.TeamOption{{ID: teamscope.AllTeamsID, Name: "All teams", Selected: true}}
	out := renderViewComponent(t, ErrorPage(viewmodels.LayoutData{Teams: teams}, "h", "i"))
	assertNotContains(t, out, `name="team_id"`)

	out = renderViewComponent(t, ErrorPage(viewmodels.LayoutData{Teams: teams, ShowTeamPicker: true}, "h", "i"))
	assertContains(t, out, `<option value="-1" selected>All teams</option>`)
}

func TestActivityItemCancelControls(t *testing.T) {
	t.Parallel()

	base := viewmodels.ActivityItemView{
		ElementID:   "activity-abc",
		ActorName:   "Jane",
		Description: "ran a script",
		AvatarURL:   viewmodels.DefaultGravatarLink,
		DetailsHref: "/activities/abc/details",
		CancelHref:  "/hosts/1/activities/upcoming/abc/cancel",
	}

	active := base
	active.Controls = viewmodels.ActivityControls{ShowDetails: viewmodels.ControlActive, Cancel: viewmodels.ControlActive}
	out := renderViewComponent(t, ActivityItem(active))
	assertContains(t, out, `action="/hosts/1/activities/upcoming/abc/cancel"`)
	assertContains(t, out, "Show details")

	inert := base
	inert.Controls = viewmodels.ActivityControls{ShowDetails: viewmodels.ControlAbsent, Cancel: viewmodels.ControlInert}
	out = renderViewComponent(t, ActivityItem(inert))
	assertContains(t, out, `disabled aria-disabled="true">Cancel</button>`)
	assertNotContains(t, out, `action="/hosts/1/activities/upcoming/abc/cancel"`)
	assertNotContains(t, out, "Show details")

	absent := base
	absent.Controls = viewmodels.ActivityControls{ShowDetails: viewmodels.ControlActive, Cancel: viewmodels.ControlAbsent}
	out = renderViewComponent(t, ActivityItem(absent))
	assertNotContains(t, out, "Cancel")
}

func TestActivityItemOmitsInvalidTimestamp(t *testing.T) {
	t.Parallel()

	out := renderViewComponent(t, ActivityItem(viewmodels.ActivityItemView{
		ElementID: "activity-1",
		ActorName: "Jane",
		Time:      viewmodels.ActivityTime{},
	}))
	assertNotContains(t, out, "activity-item__timestamp")
	assertContains(t, out, `id="activity-1"`)

	out = renderViewComponent(t, ActivityItem(viewmodels.ActivityItemView{
		ElementID: "activity-2",
		Time:      viewmodels.ActivityTime{Valid: true, Relative: "2 hours ago", Exact: "Jun 1, 2024 11:00 UTC"},
	}))
	assertContains(t, out, `title="Jun 1, 2024 11:00 UTC">2 hours ago</span>`)
}

func TestHostPoliciesEmptyStateForIPhone(t *testing.T) {
	t.Parallel()

	state, _ := viewmodels.HostPoliciesEmptyState("ios", false, 3)
	out := renderViewComponent(t, HostPoliciesPage(viewmodels.HostPoliciesViewData{EmptyState: &state}))
	text := visibleText(t, out)
	assertContains(t, text, "Policies are not supported for this host")
	assertContains(t, text, "Interested in detecting device health issues on iPhones?")
	assertNotContains(t, out, "policies-table")
}

func TestHostPoliciesDeviceUserHasNoViewAllColumn(t *testing.T) {
	t.Parallel()

	rows := []viewmodels.HostPolicyRow{
		{ID: 1, Name: "Disk encryption", Status: "No", Failing: true, Href: "https://fleet.example.test/hosts/manage?policy_id=1"},
	}
	out := renderViewComponent(t, HostPoliciesPage(viewmodels.HostPoliciesViewData{
		DeviceUser:   true,
		FailingCount: 1,
		Rows:         rows,
	}))
	text := visibleText(t, out)
	assertContains(t, text, "Your device is failing 1 policy")
	assertNotContains(t, out, "View all hosts")

	out = renderViewComponent(t, HostPoliciesPage(viewmodels.HostPoliciesViewData{
		FailingCount:      2,
		Rows:              rows,
		ShowViewAllColumn: true,
	}))
	assertContains(t, visibleText(t, out), "This host is failing 2 policies")
	assertContains(t, out, `href="https://fleet.example.test/hosts/manage?policy_id=1"`)
}

func TestSoftwareTitleNotDetected(t *testing.T) {
	t.Parallel()

	out := renderViewComponent(t, SoftwareTitlePage(viewmodels.SoftwareTitleViewData{NotDetected: true}))
	text := visibleText(t, out)
	assertContains(t, text, "Software not detected")
	assertContains(t, text, "Expecting to see software? Check back later.")
	assertNotContains(t, out, "versions-card")
}

func TestSoftwareTitleHidesVulnerabilitiesForIOS(t *testing.T) {
	t.Parallel()

	out := renderViewComponent(t, SoftwareTitlePage(viewmodels.SoftwareTitleViewData{
		Name:         "Slack",
		ShowVersions: true,
		IsIPadOrIOS:  true,
		Versions:     []viewmodels.SoftwareVersionRow{{Version: "4.1", HostsCount: "3"}},
	}))
	assertContains(t, out, "versions-card")
	assertNotContains(t, out, "Vulnerabilities")
	assertNotContains(t, out, "installer-card")
}

func TestQueriesTableRendersOneCheckboxPerSelectableRowPlusSelectAll(t *testing.T) {
	t.Parallel()

	data := viewmodels.QueriesViewData{
		TeamID:         1,
		TotalCount:     3,
		ShowCheckboxes: true,
		CheckboxCount:  3,
		Rows: []viewmodels.QueryRow{
			{ID: 1, Name: "Global", Inherited: true},
			{ID: 2, Name: "Team A", Selectable: true},
			{ID: 3, Name: "Team B", Selectable: true, Checked: true},
		},
		SelectedCount: 1,
	}
	out := renderViewComponent(t, QueriesTable(data))

	if got := strings.Count(out, `role="checkbox"`); got != data.CheckboxCount {
		t.Fatalf("checkboxes = %d, want %d", got, data.CheckboxCount)
	}
	assertContains(t, out, `>Inherited</span>`)
	assertContains(t, out, `name="id" value="3" aria-checked="true"`)
	assertContains(t, out, `action="/queries/delete"`)
}

func TestQueriesEmptyStateMessages(t *testing.T) {
	t.Parallel()

	state := viewmodels.QueriesEmptyState("", true, 1, false)
	out := renderViewComponent(t, QueriesTable(viewmodels.QueriesViewData{EmptyState: &state}))
	assertContains(t, visibleText(t, out), "You don't have any queries that apply to this team")

	state = viewmodels.QueriesEmptyState("nothing", true, 1, false)
	out = renderViewComponent(t, QueriesTable(viewmodels.QueriesViewData{EmptyState: &state}))
	assertContains(t, visibleText(t, out), "No matching queries")
}

func TestOSUpdatesGates(t *testing.T) {
	t.Parallel()

	out := renderViewComponent(t, OSUpdatesPage(viewmodels.OSUpdatesViewData{Gate: viewmodels.OSUpdatesPremiumRequired}))
	assertContains(t, visibleText(t, out), "This feature is included in Fleet Premium.")
	assertNotContains(t, out, "target-section")

	out = renderViewComponent(t, OSUpdatesPage(viewmodels.OSUpdatesViewData{Gate: viewmodels.OSUpdatesLoading}))
	assertContains(t, out, `class="spinner"`)

	out = renderViewComponent(t, OSUpdatesPage(viewmodels.OSUpdatesViewData{Gate: viewmodels.OSUpdatesTurnOnMDM}))
	assertContains(t, out, "turn-on-mdm-message")
	assertNotContains(t, out, "current-version-section")
}

func TestOSUpdatesAndroidTabIsComingSoonWithoutNudge(t *testing.T) {
	t.Parallel()

	out := renderViewComponent(t, OSUpdatesPage(viewmodels.OSUpdatesViewData{
		Gate:             viewmodels.OSUpdatesReady,
		SelectedPlatform: viewmodels.PlatformAndroid,
		Tabs:             viewmodels.OSUpdatesTabs(viewmodels.PlatformAndroid, teamscope.NoTeamID),
		ComingSoon:       true,
	}))
	assertContains(t, visibleText(t, out), "Coming soon")
	assertNotContains(t, out, "os-updates__nudge-preview")
	assertNotContains(t, out, "target-form")
}

func TestOSUpdatesWindowsTargetForm(t *testing.T) {
	t.Parallel()

	nudge, _ := viewmodels.NudgePreviewFor(viewmodels.PlatformWindows)
	out := renderViewComponent(t, OSUpdatesPage(viewmodels.OSUpdatesViewData{
		Gate:             viewmodels.OSUpdatesReady,
		TeamID:           4,
		SelectedPlatform: viewmodels.PlatformWindows,
		Target:           viewmodels.OSUpdatesTarget{Platform: viewmodels.PlatformWindows, DeadlineDays: "5", GracePeriodDays: "2"},
		Nudge:            nudge,
		ShowNudge:        true,
	}))
	assertContains(t, out, `action="/controls/os-updates?team_id=4"`)
	assertContains(t, out, `name="deadline_days" value="5"`)
	assertContains(t, out, "End user experience on Windows")
	assertNotContains(t, out, `name="minimum_version"`)
}

func TestSetupExperiencePreview(t *testing.T) {
	t.Parallel()

	out := renderViewComponent(t, SetupExperiencePage(viewmodels.SetupExperienceViewData{}))
	text := visibleText(t, out)
	assertContains(t, text, "End user experience")
	assertContains(t, text, "macOS Setup Assistant displays several screens by default.")
}

func TestQuerySidePanelOptionalSections(t *testing.T) {
	t.Parallel()

	out := renderViewComponent(t, QuerySidePanel(viewmodels.QuerySidePanelViewData{
		Name:        "mdm_bridge",
		MDMRequired: true,
		Examples:    viewmodels.None[string](),
		Notes:       viewmodels.Some("Windows only."),
		SourceURL:   "https://www.fleetdm.com/tables/mdm_bridge",
		TableNames:  []string{"apps", "mdm_bridge"},
		TableCount:  2,
	}))
	assertContains(t, out, "query-side-panel__mdm")
	assertNotContains(t, out, "<h3>Example</h3>")
	assertContains(t, out, "Windows only.")
	assertContains(t, out, `<option value="mdm_bridge" selected>`)
}

func TestAddPolicyTemplatesPostTemplateKeys(t *testing.T) {
	t.Parallel()

	out := renderViewComponent(t, AddPolicyPage(viewmodels.AddPolicyViewData{
		TeamID:    2,
		Templates: []viewmodels.PolicyTemplateOption{{Key: 5, Name: "Is FileVault on?", MDMRequired: true}},
	}))
	assertContains(t, out, `action="/policies/new/templates?team_id=2"`)
	assertContains(t, out, `value="5"`)
	assertContains(t, out, `value="custom"`)
	assertContains(t, out, "Requires MDM")
}

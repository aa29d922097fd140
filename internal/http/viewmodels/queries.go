package viewmodels

import (
	"sort"
	"strings"

	"github.com/fleet-console/fleet-console/internal/fleetapi"
	"github.com/fleet-console/fleet-console/internal/teamscope"
)

// Performance impact labels for scheduled queries.
const (
	PerformanceMinimal      = "Minimal"
	PerformanceConsiderable = "Considerable"
	PerformanceExcessive    = "Excessive"
	PerformanceUndetermined = "Undetermined"
)

var allQueryPlatforms = []string{"darwin", "windows", "linux", "chrome"}

var platformLabels = map[string]string{
	"darwin":  "macOS",
	"windows": "Windows",
	"linux":   "Linux",
	"chrome":  "ChromeOS",
}

// PlatformLabel is the display name of an osquery platform.
func PlatformLabel(platform string) string {
	if label, ok := platformLabels[platform]; ok {
		return label
	}
	return platform
}

// EnhancedQuery is a saved query with the flags the queries table renders.
type EnhancedQuery struct {
	fleetapi.Query

	// Inherited is set for global queries listed on a team's page.
	Inherited         bool
	PerformanceImpact string
	Platforms         []string
}

// EnhanceQuery derives table flags. A query is inherited only when the page is
// scoped to a real team and the query has no team.
func EnhanceQuery(q fleetapi.Query, currentTeam teamscope.ID) EnhancedQuery {
	return EnhancedQuery{
		Query:             q,
		Inherited:         currentTeam.IsTeam() && q.TeamID == nil,
		PerformanceImpact: PerformanceImpact(q.Stats),
		Platforms:         QueryPlatforms(q.Platform),
	}
}

// PerformanceImpact buckets the p50 CPU time of a scheduled query.
func PerformanceImpact(stats fleetapi.QueryStats) string {
	if stats.TotalExecutions == nil || *stats.TotalExecutions == 0 {
		return PerformanceUndetermined
	}
	if stats.UserTimeP50 == nil || stats.SystemTimeP50 == nil {
		return PerformanceUndetermined
	}
	total := *stats.UserTimeP50 + *stats.SystemTimeP50
	switch {
	case total < 2000:
		return PerformanceMinimal
	case total < 4000:
		return PerformanceConsiderable
	default:
		return PerformanceExcessive
	}
}

// QueryPlatforms reads the comma separated platform field. An empty field
// targets every platform. The SQL is not inspected.
func QueryPlatforms(field string) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range strings.Split(field, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	if len(out) == 0 {
		return append([]string(nil), allQueryPlatforms...)
	}
	sort.SliceStable(out, func(i, j int) bool { return platformRank(out[i]) < platformRank(out[j]) })
	return out
}

func platformRank(p string) int {
	for i, known := range allQueryPlatforms {
		if p == known {
			return i
		}
	}
	return len(allQueryPlatforms)
}

// QueriesEmptyState is the message of an empty queries table.
func QueriesEmptyState(searchQuery string, isPremium bool, currentTeam teamscope.ID, isOnlyObserver bool) EmptyState {
	if strings.TrimSpace(searchQuery) != "" {
		return EmptyState{
			Header: "No matching queries",
			Info:   "No queries match the current search criteria.",
		}
	}

	state := EmptyState{
		Header: "You don't have any queries",
		Info:   "A query is a specific question you can ask about your devices.",
	}
	switch {
	case !isPremium:
	case currentTeam.IsAllTeams():
		state.Header = "You don't have any queries that apply to all teams"
	default:
		state.Header = "You don't have any queries that apply to this team"
	}
	if !isOnlyObserver {
		state.LinkText = "Import Fleet's standard query library"
		state.LinkURL = "https://fleetdm.com/docs/using-fleet/standard-query-library"
	}
	return state
}

const (
	InheritedTooltip      = "This query runs on all hosts."
	ObserverCanRunTooltip = "Observers can run this query."
)

type QueryRow struct {
	ID                uint
	Name              string
	Description       string
	Inherited         bool
	ObserverCanRun    bool
	PerformanceImpact string
	Platforms         []string
	Interval          string
	AutomationsOn     bool
	AuthorName        string
	UpdatedAt         ActivityTime

	Selectable bool
	Checked    bool
}

type QueriesViewData struct {
	Layout LayoutData

	TeamID      teamscope.ID
	SearchQuery string
	Platform    string

	Rows       []QueryRow
	TotalCount int
	EmptyState *EmptyState

	// Selection checkboxes. CheckboxCount includes the select-all box.
	ShowCheckboxes bool
	CheckboxCount  int
	AllChecked     bool
	SelectedCount  int

	CanWrite bool
}

// FormatInterval renders a schedule interval in seconds.
func FormatInterval(seconds uint) string {
	switch {
	case seconds == 0:
		return "Never"
	case seconds%86400 == 0:
		return pluralUnit(seconds/86400, "day")
	case seconds%3600 == 0:
		return pluralUnit(seconds/3600, "hour")
	case seconds%60 == 0:
		return pluralUnit(seconds/60, "minute")
	default:
		return pluralUnit(seconds, "second")
	}
}

func pluralUnit(n uint, unit string) string {
	return FormatCount(n) + " " + Pluralize(n, unit, unit+"s")
}

type QuerySidePanelViewData struct {
	Name        string
	Description string
	Platforms   []string
	Columns     []QueryTableColumn
	Examples    Optional[string]
	Notes       Optional[string]
	Evented     bool
	MDMRequired bool
	SourceURL   string
	TableNames  []string
	TableCount  int
}

type QueryTableColumn struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

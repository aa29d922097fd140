package views

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/fleet-console/fleet-console/internal/teamscope"
)

func FormatInt(v int) string {
	return strconv.Itoa(v)
}

func FormatUint(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func QueryEscape(v string) string {
	return url.QueryEscape(v)
}

// ActivitiesListURL is the activity feed link for page (zero-based).
func ActivitiesListURL(page int) string {
	if page <= 0 {
		return "/activities"
	}
	return "/activities?page=" + strconv.Itoa(page)
}

// QueriesListURL is the manage-queries link for the given filters.
func QueriesListURL(team teamscope.ID, query, platform string) string {
	values := url.Values{}
	if v := team.QueryValue(); v != "" {
		values.Set("team_id", v)
	}
	if query = strings.TrimSpace(query); query != "" {
		values.Set("query", query)
	}
	if platform = strings.TrimSpace(platform); platform != "" && platform != "all" {
		values.Set("platform", platform)
	}
	if len(values) == 0 {
		return "/queries"
	}
	return "/queries?" + values.Encode()
}

// WithTeam appends team_id to href unless team is the all-teams scope.
func WithTeam(href string, team teamscope.ID) string {
	v := team.QueryValue()
	if v == "" {
		return href
	}
	sep := "?"
	if strings.Contains(href, "?") {
		sep = "&"
	}
	return href + sep + "team_id=" + v
}

func PolicyStatusBadgeClass(status string) string {
	switch status {
	case "Yes":
		return "badge badge-success"
	case "No":
		return "badge badge-destructive"
	default:
		return "badge badge-secondary"
	}
}

func PerformanceBadgeClass(impact string) string {
	switch strings.ToLower(impact) {
	case "minimal":
		return "badge badge-success"
	case "considerable":
		return "badge badge-warning"
	case "excessive":
		return "badge badge-destructive"
	default:
		return "badge badge-secondary"
	}
}

func ToastClass(category string) string {
	switch category {
	case "success", "error", "warning":
		return "toast toast-" + category
	default:
		return "toast toast-info"
	}
}

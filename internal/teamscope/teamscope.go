// Package teamscope models the team selection a page is viewing, including the
// reserved "all teams" and "no team" sentinels.
package teamscope

import (
	"strconv"
	"strings"
)

const (
	// AllTeamsID is the aggregate scope across every team. It is never a real team id.
	AllTeamsID = -1
	// NoTeamID is the scope for hosts that are not assigned to any team.
	NoTeamID = 0
)

// ID is the team a page is scoped to. Values > 0 are real teams.
type ID int

// Parse reads a team_id route/query value. Missing or malformed values resolve to
// the fallback, which callers pick per page (most pages fall back to AllTeamsID).
func Parse(raw string, fallback ID) ID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < AllTeamsID {
		return fallback
	}
	return ID(n)
}

func (id ID) IsAllTeams() bool { return int(id) == AllTeamsID }

func (id ID) IsNoTeam() bool { return int(id) == NoTeamID }

// IsTeam reports whether id is a real team.
func (id ID) IsTeam() bool { return int(id) > 0 }

// ForAPI returns the team_id parameter for backend calls. The all-teams scope has
// no API value and returns nil; "no team" is sent as 0.
func (id ID) ForAPI() *uint {
	if id.IsAllTeams() {
		return nil
	}
	v := uint(id)
	return &v
}

// QueryValue is the team_id value used in console links. Empty means all teams.
func (id ID) QueryValue() string {
	if id.IsAllTeams() {
		return ""
	}
	return strconv.Itoa(int(id))
}

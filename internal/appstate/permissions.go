package appstate

import (
	"github.com/fleet-console/fleet-console/internal/fleetapi"
	"github.com/fleet-console/fleet-console/internal/teamscope"
)

// Fleet role names.
const (
	RoleAdmin        = "admin"
	RoleMaintainer   = "maintainer"
	RoleObserver     = "observer"
	RoleObserverPlus = "observer_plus"
	RoleGitOps       = "gitops"
)

// Permissions answers UX role checks. They hide controls the server would
// reject anyway; they are not an authorization boundary.
type Permissions struct {
	user    fleetapi.User
	premium bool
}

// NewPermissions builds permissions for a user and license tier.
func NewPermissions(user fleetapi.User, premium bool) Permissions {
	return Permissions{user: user, premium: premium}
}

func (p Permissions) IsPremiumTier() bool { return p.premium }

func (p Permissions) globalRole() string {
	if p.user.GlobalRole == nil {
		return ""
	}
	return *p.user.GlobalRole
}

func (p Permissions) IsOnGlobalTeam() bool { return p.globalRole() != "" }

func (p Permissions) IsGlobalAdmin() bool { return p.globalRole() == RoleAdmin }

func (p Permissions) IsGlobalMaintainer() bool { return p.globalRole() == RoleMaintainer }

func (p Permissions) IsGlobalObserver() bool {
	role := p.globalRole()
	return role == RoleObserver || role == RoleObserverPlus
}

func (p Permissions) teamRole(team teamscope.ID) string {
	if !team.IsTeam() {
		return ""
	}
	for _, t := range p.user.Teams {
		if int(t.ID) == int(team) {
			return t.Role
		}
	}
	return ""
}

func (p Permissions) IsTeamAdmin(team teamscope.ID) bool { return p.teamRole(team) == RoleAdmin }

func (p Permissions) IsTeamMaintainer(team teamscope.ID) bool {
	return p.teamRole(team) == RoleMaintainer
}

func (p Permissions) IsTeamObserver(team teamscope.ID) bool {
	role := p.teamRole(team)
	return role == RoleObserver || role == RoleObserverPlus
}

// IsAnyTeamObserverPlus reports whether the user is observer+ on at least one team.
func (p Permissions) IsAnyTeamObserverPlus() bool {
	for _, t := range p.user.Teams {
		if t.Role == RoleObserverPlus {
			return true
		}
	}
	return false
}

// IsOnlyObserver reports whether every role the user holds is an observer role.
func (p Permissions) IsOnlyObserver() bool {
	if p.IsOnGlobalTeam() {
		return p.IsGlobalObserver()
	}
	if len(p.user.Teams) == 0 {
		return false
	}
	for _, t := range p.user.Teams {
		if t.Role != RoleObserver && t.Role != RoleObserverPlus {
			return false
		}
	}
	return true
}

// CanViewInstallers reports whether installer details are visible in team.
func (p Permissions) CanViewInstallers(team teamscope.ID) bool {
	return p.IsOnGlobalTeam() || p.IsTeamAdmin(team) || p.IsTeamMaintainer(team) || p.IsTeamObserver(team)
}

// CanManageOSUpdates reports whether OS update targets are editable in team.
func (p Permissions) CanManageOSUpdates(team teamscope.ID) bool {
	return p.IsGlobalAdmin() || p.IsTeamAdmin(team)
}

// CanWriteQueries reports whether queries can be selected and deleted in team.
func (p Permissions) CanWriteQueries(team teamscope.ID) bool {
	return p.IsGlobalAdmin() || p.IsGlobalMaintainer() || p.IsTeamAdmin(team) || p.IsTeamMaintainer(team)
}

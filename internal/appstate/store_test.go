package appstate

import (
	"errors"
	"testing"

	"github.com/fleet-console/fleet-console/internal/fleetapi"
	"github.com/fleet-console/fleet-console/internal/teamscope"
)

func strPtr(s string) *string { return &s }

func TestConfigWriterIsSingle(t *testing.T) {
	t.Parallel()

	s := New()
	w, err := s.ClaimConfigWriter()
	if err != nil {
		t.Fatalf("ClaimConfigWriter error: %v", err)
	}
	if _, err := s.ClaimConfigWriter(); !errors.Is(err, ErrWriterClaimed) {
		t.Fatalf("second claim err = %v, want ErrWriterClaimed", err)
	}

	if _, ok := s.Config(); ok {
		t.Fatal("config should be absent before the first write")
	}
	w.SetConfig(fleetapi.AppConfig{License: fleetapi.License{Tier: fleetapi.TierPremium}})
	cfg, ok := s.Config()
	if !ok || !cfg.IsPremium() {
		t.Fatalf("config = %#v ok=%v", cfg, ok)
	}
	if !s.Permissions().IsPremiumTier() {
		t.Fatal("permissions should reflect the premium license")
	}
}

func TestConfigReturnsCopy(t *testing.T) {
	t.Parallel()

	s := New()
	w, _ := s.ClaimConfigWriter()
	w.SetConfig(fleetapi.AppConfig{})
	cfg, _ := s.Config()
	cfg.MDM.EnabledAndConfigured = true
	again, _ := s.Config()
	if again.MDM.EnabledAndConfigured {
		t.Fatal("mutating a snapshot leaked into the store")
	}
}

func TestPermissions(t *testing.T) {
	t.Parallel()

	teams := []fleetapi.UserTeam{
		{ID: 1, Role: RoleAdmin},
		{ID: 2, Role: RoleMaintainer},
		{ID: 3, Role: RoleObserverPlus},
	}
	tests := []struct {
		name  string
		user  fleetapi.User
		check func(Permissions) bool
		want  bool
	}{
		{"global admin", fleetapi.User{GlobalRole: strPtr(RoleAdmin)}, Permissions.IsGlobalAdmin, true},
		{"global observer plus", fleetapi.User{GlobalRole: strPtr(RoleObserverPlus)}, Permissions.IsGlobalObserver, true},
		{"team user not on global team", fleetapi.User{Teams: teams}, Permissions.IsOnGlobalTeam, false},
		{"team admin", fleetapi.User{Teams: teams}, func(p Permissions) bool { return p.IsTeamAdmin(1) }, true},
		{"team admin elsewhere", fleetapi.User{Teams: teams}, func(p Permissions) bool { return p.IsTeamAdmin(2) }, false},
		{"team maintainer", fleetapi.User{Teams: teams}, func(p Permissions) bool { return p.IsTeamMaintainer(2) }, true},
		{"team observer plus", fleetapi.User{Teams: teams}, func(p Permissions) bool { return p.IsTeamObserver(3) }, true},
		{"all teams has no team role", fleetapi.User{Teams: teams}, func(p Permissions) bool { return p.IsTeamAdmin(teamscope.AllTeamsID) }, false},
		{"any team observer plus", fleetapi.User{Teams: teams}, Permissions.IsAnyTeamObserverPlus, true},
		{"mixed roles are not only observer", fleetapi.User{Teams: teams}, Permissions.IsOnlyObserver, false},
		{"observer everywhere", fleetapi.User{Teams: []fleetapi.UserTeam{{ID: 1, Role: RoleObserver}}}, Permissions.IsOnlyObserver, true},
		{"global observer", fleetapi.User{GlobalRole: strPtr(RoleObserver)}, Permissions.IsOnlyObserver, true},
		{"no roles", fleetapi.User{}, Permissions.IsOnlyObserver, false},
		{"team admin manages os updates", fleetapi.User{Teams: teams}, func(p Permissions) bool { return p.CanManageOSUpdates(1) }, true},
		{"maintainer cannot manage os updates", fleetapi.User{GlobalRole: strPtr(RoleMaintainer)}, func(p Permissions) bool { return p.CanManageOSUpdates(1) }, false},
		{"team observer views installers", fleetapi.User{Teams: teams}, func(p Permissions) bool { return p.CanViewInstallers(3) }, true},
		{"outsider cannot view installers", fleetapi.User{Teams: teams}, func(p Permissions) bool { return p.CanViewInstallers(9) }, false},
		{"observer cannot write queries", fleetapi.User{GlobalRole: strPtr(RoleObserver)}, func(p Permissions) bool { return p.CanWriteQueries(1) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(NewPermissions(tt.user, false)); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPermissionsFromStore(t *testing.T) {
	t.Parallel()

	s := New()
	if s.Permissions().IsGlobalAdmin() {
		t.Fatal("empty store should grant nothing")
	}
	s.SetCurrentUser(fleetapi.CurrentUser{User: fleetapi.User{GlobalRole: strPtr(RoleAdmin)}})
	if !s.Permissions().IsGlobalAdmin() {
		t.Fatal("expected global admin")
	}
}

package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/fleet-console/fleet-console/internal/appstate"
	"github.com/fleet-console/fleet-console/internal/catalog"
	"github.com/fleet-console/fleet-console/internal/config"
	"github.com/fleet-console/fleet-console/internal/fleetapi"
	"github.com/fleet-console/fleet-console/internal/querycache"
	"github.com/labstack/echo/v5"
)

// fakeAPI answers from its fields and counts calls per operation.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	me          fleetapi.CurrentUser
	config      fleetapi.AppConfig
	team        fleetapi.Team
	osVersions  fleetapi.OSVersionsPage
	activities  fleetapi.ActivitiesPage
	hostPast    fleetapi.ActivitiesPage
	hostUpcome  fleetapi.ActivitiesPage
	host        fleetapi.Host
	title       fleetapi.SoftwareTitle
	titleErr    error
	queries     fleetapi.QueriesPage
	hostErr     error
	mutationErr error

	deletedQueries  []uint
	createdPolicy   fleetapi.PolicyDraft
	createdTeamID   *uint
	resetIDs        fleetapi.ResetAutomationIDs
	osUpdatesPatch  fleetapi.OSUpdatesPatch
	canceledUUID    string
	deletedTitleFor *uint
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: map[string]int{}}
}

func (f *fakeAPI) record(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeAPI) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeAPI) Me(context.Context) (fleetapi.CurrentUser, error) {
	f.record("me")
	return f.me, nil
}

func (f *fakeAPI) GetAppConfig(context.Context) (fleetapi.AppConfig, error) {
	f.record("get_config")
	return f.config, nil
}

func (f *fakeAPI) UpdateAppConfigOSUpdates(_ context.Context, patch fleetapi.OSUpdatesPatch) (fleetapi.AppConfig, error) {
	f.record("update_config")
	f.osUpdatesPatch = patch
	return f.config, f.mutationErr
}

func (f *fakeAPI) GetTeam(_ context.Context, teamID uint) (fleetapi.TeamResponse, error) {
	f.record("get_team")
	return fleetapi.TeamResponse{Team: f.team}, nil
}

func (f *fakeAPI) UpdateTeamOSUpdates(_ context.Context, teamID uint, patch fleetapi.OSUpdatesPatch) (fleetapi.TeamResponse, error) {
	f.record("update_team")
	f.osUpdatesPatch = patch
	return fleetapi.TeamResponse{Team: f.team}, f.mutationErr
}

func (f *fakeAPI) ListOSVersions(context.Context, *uint) (fleetapi.OSVersionsPage, error) {
	f.record("os_versions")
	return f.osVersions, nil
}

func (f *fakeAPI) ListActivities(context.Context, fleetapi.ListOptions) (fleetapi.ActivitiesPage, error) {
	f.record("activities")
	return f.activities, nil
}

func (f *fakeAPI) ListHostPastActivities(context.Context, uint, fleetapi.ListOptions) (fleetapi.ActivitiesPage, error) {
	f.record("host_past")
	return f.hostPast, nil
}

func (f *fakeAPI) ListHostUpcomingActivities(context.Context, uint, fleetapi.ListOptions) (fleetapi.ActivitiesPage, error) {
	f.record("host_upcoming")
	return f.hostUpcome, nil
}

func (f *fakeAPI) CancelHostUpcomingActivity(_ context.Context, _ uint, activityUUID string) error {
	f.record("cancel")
	f.canceledUUID = activityUUID
	return f.mutationErr
}

func (f *fakeAPI) GetHost(context.Context, uint) (fleetapi.Host, error) {
	f.record("host")
	return f.host, f.hostErr
}

func (f *fakeAPI) GetDeviceHost(context.Context, string) (fleetapi.Host, error) {
	f.record("device_host")
	return f.host, f.hostErr
}

func (f *fakeAPI) RefetchHost(context.Context, uint) error {
	f.record("refetch_host")
	return f.mutationErr
}

func (f *fakeAPI) GetSoftwareTitle(context.Context, uint, *uint) (fleetapi.SoftwareTitleResponse, error) {
	f.record("software_title")
	if f.titleErr != nil {
		return fleetapi.SoftwareTitleResponse{}, f.titleErr
	}
	return fleetapi.SoftwareTitleResponse{SoftwareTitle: f.title}, nil
}

func (f *fakeAPI) DeleteSoftwareInstaller(_ context.Context, _ uint, teamID *uint) error {
	f.record("delete_installer")
	f.deletedTitleFor = teamID
	return f.mutationErr
}

func (f *fakeAPI) ListQueries(context.Context, fleetapi.ListQueriesOptions) (fleetapi.QueriesPage, error) {
	f.record("queries")
	return f.queries, nil
}

func (f *fakeAPI) DeleteQueries(_ context.Context, ids []uint) (int, error) {
	f.record("delete_queries")
	f.deletedQueries = ids
	return len(ids), f.mutationErr
}

func (f *fakeAPI) CreatePolicy(_ context.Context, teamID *uint, draft fleetapi.PolicyDraft) (fleetapi.Policy, error) {
	f.record("create_policy")
	f.createdTeamID = teamID
	f.createdPolicy = draft
	return fleetapi.Policy{ID: 42, Name: draft.Name}, f.mutationErr
}

func (f *fakeAPI) ResetAutomations(_ context.Context, ids fleetapi.ResetAutomationIDs) error {
	f.record("reset_automations")
	f.resetIDs = ids
	return f.mutationErr
}

func strPtr(s string) *string { return &s }

func uintPtr(v uint) *uint { return &v }

func premiumConfig(mdm bool) fleetapi.AppConfig {
	var cfg fleetapi.AppConfig
	cfg.OrgInfo.OrgName = "Acme"
	cfg.License.Tier = fleetapi.TierPremium
	cfg.MDM.EnabledAndConfigured = mdm
	return cfg
}

func globalUser(role string) fleetapi.CurrentUser {
	return fleetapi.CurrentUser{User: fleetapi.User{ID: 1, Name: "Ada", Email: "ada@example.com", GlobalRole: strPtr(role)}}
}

type harness struct {
	h        *Handlers
	api      *fakeAPI
	e        *echo.Echo
	sessions *scs.SessionManager
	ctx      context.Context
}

// newHarness wires handlers to a fake API and primes the app state with cfg
// and user, the way the app mount does on the first request.
func newHarness(t *testing.T, cfg fleetapi.AppConfig, user fleetapi.CurrentUser) *harness {
	t.Helper()

	api := newFakeAPI()
	api.config = cfg
	api.me = user

	cache, err := querycache.NewClient(64, time.Minute)
	if err != nil {
		t.Fatalf("querycache.NewClient() error = %v", err)
	}
	state := appstate.New()
	writer, err := state.ClaimConfigWriter()
	if err != nil {
		t.Fatalf("ClaimConfigWriter() error = %v", err)
	}
	writer.SetConfig(cfg)
	state.SetCurrentUser(user)

	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog.Load() error = %v", err)
	}

	sessions := scs.New()
	ctx, err := sessions.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("sessions.Load() error = %v", err)
	}

	e := echo.New()
	e.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	return &harness{
		h: &Handlers{
			Cfg:          config.Config{FleetURL: "https://fleet.example.test/"},
			API:          api,
			Cache:        cache,
			State:        state,
			Sessions:     sessions,
			Catalog:      cat,
			ConfigWriter: writer,
			Now:          func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
		},
		api:      api,
		e:        e,
		sessions: sessions,
		ctx:      ctx,
	}
}

func (hs *harness) get(target string, params ...string) (*echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil).WithContext(hs.ctx)
	return hs.context(req, params)
}

func (hs *harness) post(target string, form url.Values, params ...string) (*echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode())).WithContext(hs.ctx)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return hs.context(req, params)
}

// params are name/value pairs of path parameters.
func (hs *harness) context(req *http.Request, params []string) (*echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := hs.e.NewContext(req, rec)
	if len(params) > 0 {
		var values echo.PathValues
		for i := 0; i+1 < len(params); i += 2 {
			values = append(values, echo.PathValue{Name: params[i], Value: params[i+1]})
		}
		c.SetPathValues(values)
	}
	return c, rec
}

func statusOf(err error) int {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 0
}

package fleetapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(req *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}
}

func newTestClient(t *testing.T, rt roundTripperFunc) *Client {
	t.Helper()

	c, err := New("https://fleet.example.test/", "secret-token", time.Second)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	transport, ok := c.HTTP.Transport.(*oauth2.Transport)
	if !ok {
		t.Fatalf("transport = %T, want *oauth2.Transport", c.HTTP.Transport)
	}
	transport.Base = rt
	return c
}

func TestNewValidatesInputs(t *testing.T) {
	t.Parallel()

	if _, err := New("", "tok", 0); err == nil {
		t.Fatal("expected error for missing base URL")
	}
	if _, err := New("ftp://fleet.example.test", "tok", 0); err == nil {
		t.Fatal("expected error for non-http base URL")
	}
	if _, err := New("https://fleet.example.test", "  ", 0); err == nil {
		t.Fatal("expected error for missing token")
	}
	c, err := New("https://fleet.example.test///", "tok", 0)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if c.BaseURL != "https://fleet.example.test" {
		t.Fatalf("BaseURL = %q", c.BaseURL)
	}
	if c.HTTP.Timeout != defaultTimeout {
		t.Fatalf("Timeout = %s, want %s", c.HTTP.Timeout, defaultTimeout)
	}
}

func TestRequestsCarryBearerToken(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if got := req.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("Authorization = %q", got)
		}
		if req.URL.Path != "/api/latest/fleet/config" {
			t.Errorf("path = %q", req.URL.Path)
		}
		return jsonResponse(req, http.StatusOK, `{"license":{"tier":"premium"},"mdm":{"enabled_and_configured":true}}`), nil
	})

	cfg, err := c.GetAppConfig(context.Background())
	if err != nil {
		t.Fatalf("GetAppConfig error: %v", err)
	}
	if !cfg.IsPremium() || !cfg.MDM.EnabledAndConfigured {
		t.Fatalf("unexpected config: %#v", cfg)
	}
}

func TestNon2xxReturnsAPIErrorWithoutRetry(t *testing.T) {
	t.Parallel()

	var calls int32
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return jsonResponse(req, http.StatusNotFound, `{"message":"Resource Not Found","errors":[{"name":"base","reason":"software title 9 was not found"}]}`), nil
	})

	_, err := c.GetSoftwareTitle(context.Background(), 9, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", apiErr.StatusCode)
	}
	if apiErr.Message != "software title 9 was not found" {
		t.Fatalf("message = %q", apiErr.Message)
	}
	if !IsStatus(err, http.StatusForbidden, http.StatusNotFound) {
		t.Fatal("IsStatus should match 404")
	}
	if IsStatus(err, http.StatusUnauthorized) {
		t.Fatal("IsStatus should not match 401")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestIsStatusIgnoresTransportErrors(t *testing.T) {
	t.Parallel()

	if IsStatus(errors.New("dial tcp: refused"), http.StatusNotFound) {
		t.Fatal("transport error should not match a status")
	}
	if StatusOf(nil) != 0 {
		t.Fatal("StatusOf(nil) should be 0")
	}
}

func TestInvalidShapeIsRejected(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(req, http.StatusOK, `{"software_title":{"id":"not-a-number","name":"Zoom"}}`), nil
	})

	_, err := c.GetSoftwareTitle(context.Background(), 1, nil)
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("error = %v, want ErrInvalidPayload", err)
	}
}

func TestGetSoftwareTitleDecodesOptionalInstallers(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if got := req.URL.Query().Get("team_id"); got != "0" {
			t.Errorf("team_id = %q, want 0", got)
		}
		return jsonResponse(req, http.StatusOK, `{"software_title":{
			"id":4,"name":"Firefox.app","source":"apps","hosts_count":3,
			"versions":[{"id":1,"version":"120.0"}],
			"software_package":null,
			"app_store_app":{"app_store_id":"42","name":"Firefox","latest_version":"121.0","created_at":"2024-05-01T00:00:00Z","self_service":true}
		}}`), nil
	})

	var noTeam uint
	resp, err := c.GetSoftwareTitle(context.Background(), 4, &noTeam)
	if err != nil {
		t.Fatalf("GetSoftwareTitle error: %v", err)
	}
	title := resp.SoftwareTitle
	if title.SoftwarePackage != nil {
		t.Fatal("software_package should be nil")
	}
	if title.AppStoreApp == nil || title.AppStoreApp.LatestVersion != "121.0" {
		t.Fatalf("app_store_app = %#v", title.AppStoreApp)
	}
	if !title.IsAvailableForInstall() {
		t.Fatal("title should be available for install")
	}
}

func TestListQueriesMergesInheritedForTeams(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		if q.Get("team_id") != "1" || q.Get("merge_inherited") != "true" || q.Get("query") != "openssl" {
			t.Errorf("query = %s", req.URL.RawQuery)
		}
		return jsonResponse(req, http.StatusOK, `{"queries":[{"id":1,"name":"Global","team_id":null},{"id":3,"name":"Team","team_id":1}],"count":2}`), nil
	})

	team := uint(1)
	page, err := c.ListQueries(context.Background(), ListQueriesOptions{TeamID: &team, MergeInherited: true, Query: " openssl "})
	if err != nil {
		t.Fatalf("ListQueries error: %v", err)
	}
	if len(page.Queries) != 2 || page.Queries[0].TeamID != nil || page.Queries[1].TeamID == nil {
		t.Fatalf("unexpected queries: %#v", page.Queries)
	}
}

func TestResetAutomationsPostsIDs(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPost || req.URL.Path != "/api/latest/fleet/automations/reset" {
			t.Errorf("request = %s %s", req.Method, req.URL.Path)
		}
		var body ResetAutomationIDs
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if len(body.TeamIDs) != 1 || body.TeamIDs[0] != 2 || len(body.PolicyIDs) != 2 {
			t.Errorf("body = %#v", body)
		}
		return jsonResponse(req, http.StatusOK, `{}`), nil
	})

	if err := c.ResetAutomations(context.Background(), ResetAutomationIDs{TeamIDs: []uint{2}, PolicyIDs: []uint{5, 6}}); err != nil {
		t.Fatalf("ResetAutomations error: %v", err)
	}
	if err := c.ResetAutomations(context.Background(), ResetAutomationIDs{}); err == nil {
		t.Fatal("expected error for empty ids")
	}
}

func TestCancelHostUpcomingActivityValidatesUUID(t *testing.T) {
	t.Parallel()

	var calls int32
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		if req.Method != http.MethodDelete {
			t.Errorf("method = %s", req.Method)
		}
		return jsonResponse(req, http.StatusNoContent, ``), nil
	})

	if err := c.CancelHostUpcomingActivity(context.Background(), 7, "not-a-uuid"); err == nil {
		t.Fatal("expected error for invalid uuid")
	}
	if err := c.CancelHostUpcomingActivity(context.Background(), 7, "0b8f6f5e-3c3c-4a86-9a4b-0e4d2c1f9a10"); err != nil {
		t.Fatalf("CancelHostUpcomingActivity error: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestExtractErrorMessageSkipsHTML(t *testing.T) {
	t.Parallel()

	if got := extractErrorMessage([]byte("<!DOCTYPE html><html></html>")); got != "" {
		t.Fatalf("message = %q, want empty", got)
	}
	if got := extractErrorMessage([]byte(`{"message":"forbidden"}`)); got != "forbidden" {
		t.Fatalf("message = %q", got)
	}
}

func TestNewLimiter(t *testing.T) {
	t.Parallel()

	if NewLimiter(0) != nil || NewLimiter(-1) != nil {
		t.Fatal("non-positive rps should disable limiting")
	}
	l := NewLimiter(0.5)
	if l == nil || l.Burst() != 1 {
		t.Fatalf("limiter = %+v, want burst 1", l)
	}
}

func TestLimiterWaitHonorsContext(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		return jsonResponse(req, http.StatusOK, `{}`), nil
	})
	c.Limiter = NewLimiter(0.001)
	c.Limiter.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.RefetchHost(ctx, 1); err == nil {
		t.Fatal("expected limiter wait to fail on a canceled context")
	}
	if calls.Load() != 0 {
		t.Fatalf("calls = %d, want 0", calls.Load())
	}
}

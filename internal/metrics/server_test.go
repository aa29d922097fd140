package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestListenAddr(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{raw: "", wantOK: false},
		{raw: "off", wantOK: false},
		{raw: " Disabled ", wantOK: false},
		{raw: "0", wantOK: false},
		{raw: ":9090", want: ":9090", wantOK: true},
		{raw: " 127.0.0.1:9100 ", want: "127.0.0.1:9100", wantOK: true},
	}
	for _, tt := range tests {
		got, ok := ListenAddr(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Fatalf("ListenAddr(%q) = %q, %v; want %q, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestStartServerDisabled(t *testing.T) {
	if errCh := StartServer(context.Background(), "off", nil); errCh != nil {
		t.Fatal("StartServer() returned a channel for a disabled listener")
	}
}

func TestHandlerExposesConsoleMetrics(t *testing.T) {
	ConfigRefreshesTotal.WithLabelValues("success").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if body := rec.Body.String(); !strings.Contains(body, "fleetconsole_config_refreshes_total") {
		t.Fatalf("metrics output missing config refresh counter")
	}
}

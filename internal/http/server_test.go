package httpapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fleet-console/fleet-console/internal/fleetapi"
	"github.com/fleet-console/fleet-console/internal/http/handlers"
	"github.com/labstack/echo/v5"
)

func newBareServer() *EchoServer {
	e := echo.New()
	e.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return &EchoServer{h: &handlers.Handlers{}, e: e}
}

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   []string
	}{
		{
			name:       "internal error is generic",
			err:        errors.New("fleet token=secret"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   []string{"Internal server error", "Reference: req-123", "Code: " + handlers.InternalErrorCode},
		},
		{
			name:       "echo not found",
			err:        echo.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   []string{"404 page not found"},
		},
		{
			name:       "not found message is dropped",
			err:        echo.NewHTTPError(http.StatusNotFound, "secret not found"),
			wantStatus: http.StatusNotFound,
			wantBody:   []string{"404 page not found"},
		},
		{
			name:       "bad request uses status text",
			err:        echo.NewHTTPError(http.StatusBadRequest, "secret bad request"),
			wantStatus: http.StatusBadRequest,
			wantBody:   []string{http.StatusText(http.StatusBadRequest)},
		},
		{
			name:       "fleet api status is honored",
			err:        fmt.Errorf("get title: %w", &fleetapi.APIError{StatusCode: http.StatusForbidden, Body: []byte("secret")}),
			wantStatus: http.StatusForbidden,
			wantBody:   []string{http.StatusText(http.StatusForbidden)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			es := newBareServer()
			rec := httptest.NewRecorder()
			c := es.e.NewContext(httptest.NewRequest(http.MethodGet, "http://example.com/queries", nil), rec)
			c.Set(handlers.ContextKeyRequestID, "req-123")

			es.httpErrorHandler(c, tt.err)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			body := rec.Body.String()
			if strings.Contains(body, "secret") {
				t.Fatalf("response leaked error details: %q", body)
			}
			for _, want := range tt.wantBody {
				if !strings.Contains(body, want) {
					t.Fatalf("body %q missing %q", body, want)
				}
			}
		})
	}
}

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: echo.ErrForbidden, want: http.StatusForbidden},
		{err: &fleetapi.APIError{StatusCode: http.StatusConflict}, want: http.StatusConflict},
		{err: &fleetapi.APIError{StatusCode: http.StatusFound}, want: http.StatusInternalServerError},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := httpStatusFromError(tt.err); got != tt.want {
			t.Fatalf("httpStatusFromError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestNewEchoServerRequiresHandlers(t *testing.T) {
	if _, err := NewEchoServer(nil); err == nil {
		t.Fatal("expected error for nil handlers")
	}
	if _, err := NewEchoServer(&handlers.Handlers{}); err == nil {
		t.Fatal("expected error for unconfigured handlers")
	}
}

func newRoutedServer() *EchoServer {
	es := newBareServer()
	es.e.Use(requestIDMiddleware)
	es.e.Use(routeLabelMiddleware)
	es.registerRoutes()
	return es
}

func TestHealthzThroughHandlerChain(t *testing.T) {
	es := newRoutedServer()

	rec := httptest.NewRecorder()
	es.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://example.com/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "ok" {
		t.Fatalf("body = %q, want ok", got)
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Fatal("response missing request id")
	}
}

func TestHandlerRejectsCrossOriginPost(t *testing.T) {
	es := newRoutedServer()

	req := httptest.NewRequest(http.MethodPost, "http://example.com/automations/reset", strings.NewReader("team_ids=1"))
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rec := httptest.NewRecorder()
	es.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	const valid = "0b9f3c1e-6a51-4d6f-9d8e-2f5a0c7b1e44"

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "valid uuid is kept", incoming: valid, keep: true},
		{name: "markup is replaced", incoming: "<script>"},
		{name: "missing is generated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
			if tt.incoming != "" {
				req.Header.Set(echo.HeaderXRequestID, tt.incoming)
			}
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(req, rec)

			var seen string
			handler := requestIDMiddleware(func(c *echo.Context) error {
				seen, _ = c.Get(handlers.ContextKeyRequestID).(string)
				return nil
			})
			if err := handler(c); err != nil {
				t.Fatalf("handler error = %v", err)
			}
			if seen == "" || rec.Header().Get(echo.HeaderXRequestID) != seen {
				t.Fatalf("request id %q not echoed in response header %q", seen, rec.Header().Get(echo.HeaderXRequestID))
			}
			if got := seen == tt.incoming; got != tt.keep {
				t.Fatalf("kept incoming id = %v, want %v (id %q)", got, tt.keep, seen)
			}
		})
	}
}

func TestStatusRecorderKeepsFirstStatus(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	rec.WriteHeader(http.StatusSeeOther)
	rec.WriteHeader(http.StatusInternalServerError)
	if rec.status != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.status, http.StatusSeeOther)
	}
}

func TestShutdownStopsServerBuiltBeforeStart(t *testing.T) {
	es := newRoutedServer()
	server := es.HTTPServer("127.0.0.1:0")

	if err := es.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := es.StartServer(server); !errors.Is(err, http.ErrServerClosed) {
		t.Fatalf("StartServer() error = %v, want %v", err, http.ErrServerClosed)
	}
}

func TestShutdownWithoutServer(t *testing.T) {
	if err := newBareServer().Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

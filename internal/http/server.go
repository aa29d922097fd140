package httpapp

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fleet-console/fleet-console/internal/fleetapi"
	"github.com/fleet-console/fleet-console/internal/http/handlers"
	"github.com/fleet-console/fleet-console/internal/metrics"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// EchoServer is the HTTP server wrapper.
type EchoServer struct {
	h   *handlers.Handlers
	e   *echo.Echo
	srv *http.Server
}

// NewEchoServer creates the console server around fully wired handlers.
func NewEchoServer(h *handlers.Handlers) (*EchoServer, error) {
	if h == nil || h.API == nil || h.Cache == nil || h.State == nil {
		return nil, errors.New("handlers are not configured")
	}
	es := &EchoServer{h: h, e: echo.New()}
	es.e.HTTPErrorHandler = es.httpErrorHandler
	es.e.Use(middleware.Recover())
	es.e.Use(requestIDMiddleware)
	es.e.Use(routeLabelMiddleware)
	es.registerRoutes()
	return es, nil
}

func (es *EchoServer) registerRoutes() {
	es.e.GET("/healthz", es.h.HandleHealthz)

	app := es.e.Group("", es.h.RequireApp)
	app.GET("/", es.h.HandleRoot)
	app.GET("/activities", es.h.HandleActivities)
	app.GET("/activities/:id/details", es.h.HandleActivityDetails)
	app.GET("/hosts/:id/activities", es.h.HandleHostActivities)
	app.POST("/hosts/:id/activities/upcoming/:uuid/cancel", es.h.HandleCancelUpcomingActivity)
	app.GET("/hosts/:id/policies", es.h.HandleHostPolicies)
	app.POST("/hosts/:id/refetch", es.h.HandleHostRefetch)
	app.GET("/device/:token/policies", es.h.HandleDevicePolicies)
	app.GET("/software/titles", es.h.HandleSoftwareTitles)
	app.GET("/software/titles/:id", es.h.HandleSoftwareTitle)
	app.POST("/software/titles/:id/installer/delete", es.h.HandleDeleteSoftwareInstaller)
	app.GET("/queries", es.h.HandleQueries)
	app.POST("/queries/select", es.h.HandleQueriesSelect)
	app.POST("/queries/delete", es.h.HandleQueriesDelete)
	app.GET("/queries/tables", es.h.HandleQueryTable)
	app.GET("/queries/tables/:name", es.h.HandleQueryTable)
	app.GET("/controls/os-updates", es.h.HandleOSUpdates)
	app.POST("/controls/os-updates", es.h.HandleOSUpdatesSave)
	app.GET("/controls/os-settings", es.h.HandleOSSettings)
	app.GET("/controls/setup-experience", es.h.HandleSetupExperience)
	app.GET("/policies/new/templates", es.h.HandlePolicyTemplates)
	app.POST("/policies/new/templates", es.h.HandlePolicyTemplateChoose)
	app.GET("/policies/new", es.h.HandleNewPolicy)
	app.POST("/policies/new", es.h.HandleCreatePolicy)
	app.POST("/automations/reset", es.h.HandleResetAutomations)

	if dir := strings.TrimSpace(es.h.Cfg.StaticDir); dir != "" {
		es.e.Static("/static", dir)
	}
}

// Handler returns the console with sessions, cross-origin protection and
// request metrics applied around the router.
func (es *EchoServer) Handler() http.Handler {
	var next http.Handler = es.e
	if es.h.Sessions != nil {
		next = es.h.Sessions.LoadAndSave(next)
	}
	next = http.NewCrossOriginProtection().Handler(next)
	return metricsHandler(next)
}

// HTTPServer builds the server that StartServer runs and Shutdown stops. Call
// it before starting the serve goroutine.
func (es *EchoServer) HTTPServer(addr string) *http.Server {
	es.srv = &http.Server{
		Addr:              addr,
		Handler:           es.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return es.srv
}

// StartServer serves with a server built by HTTPServer until Shutdown is called.
func (es *EchoServer) StartServer(server *http.Server) error {
	return server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (es *EchoServer) Shutdown(ctx context.Context) error {
	if es.srv == nil {
		return nil
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
	}
	return es.srv.Shutdown(ctx)
}

func (es *EchoServer) httpErrorHandler(c *echo.Context, err error) {
	if err == nil {
		return
	}
	status := httpStatusFromError(err)
	switch {
	case status == http.StatusNotFound:
		_ = handlers.RenderNotFound(c)
	case status >= http.StatusInternalServerError:
		_ = es.h.RenderError(c, err)
	default:
		_ = c.String(status, http.StatusText(status))
	}
}

func httpStatusFromError(err error) int {
	code := fleetapi.StatusOf(err)
	var sc interface{ StatusCode() int }
	if code == 0 && errors.As(err, &sc) {
		code = sc.StatusCode()
	}
	if code >= 400 && code <= 599 {
		return code
	}
	return http.StatusInternalServerError
}

// requestIDMiddleware keeps a well-formed incoming X-Request-ID or assigns a
// new one, and exposes it to handlers and the response.
func requestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		id := strings.TrimSpace(c.Request().Header.Get(echo.HeaderXRequestID))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(handlers.ContextKeyRequestID, id)
		c.Response().Header().Set(echo.HeaderXRequestID, id)
		return next(c)
	}
}

type routeLabelKey struct{}

// routeLabelMiddleware reports the matched route pattern to metricsHandler.
func routeLabelMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		if label, ok := c.Request().Context().Value(routeLabelKey{}).(*string); ok {
			*label = c.Path()
		}
		return next(c)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func metricsHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		label := "unmatched"
		r = r.WithContext(context.WithValue(r.Context(), routeLabelKey{}, &label))
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequestsTotal.WithLabelValues(label, strconv.Itoa(status)).Inc()
	})
}

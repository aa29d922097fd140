package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/fleet-console/fleet-console/internal/appstate"
	"github.com/fleet-console/fleet-console/internal/catalog"
	"github.com/fleet-console/fleet-console/internal/config"
	httpapp "github.com/fleet-console/fleet-console/internal/http"
	"github.com/fleet-console/fleet-console/internal/http/handlers"
	"github.com/fleet-console/fleet-console/internal/logging"
	"github.com/fleet-console/fleet-console/internal/metrics"
	"github.com/fleet-console/fleet-console/internal/querycache"
	"github.com/fleet-console/fleet-console/internal/sync"
	"github.com/spf13/cobra"
)

const (
	sessionCookieName = "fc_session"
	sessionLifetime   = 12 * time.Hour
	maxRefreshBackoff = 30 * time.Minute
)

var serveCmd = &cobra.Command{
	Use:         "serve",
	Short:       "Run the console HTTP server and the config refresh loop.",
	Args:        cobra.NoArgs,
	Annotations: structuredLog(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.CommandPath())
	},
}

func newSessionManager(cfg config.Config) *scs.SessionManager {
	sessions := scs.New()
	sessions.Lifetime = sessionLifetime
	sessions.Cookie.Name = sessionCookieName
	sessions.Cookie.HttpOnly = true
	sessions.Cookie.SameSite = http.SameSiteLaxMode
	sessions.Cookie.Secure = cfg.AuthCookieSecure
	return sessions
}

// newHandlers wires the console state around a Fleet client. The returned
// handlers own the only app config writer.
func newHandlers(cfg config.Config, api handlers.FleetAPI) (*handlers.Handlers, error) {
	cache, err := querycache.NewClient(cfg.QueryCacheSize, cfg.QueryStaleTime)
	if err != nil {
		return nil, err
	}
	cache.SetFetchTimeout(cfg.FleetRequestTimeout)
	state := appstate.New()
	writer, err := state.ClaimConfigWriter()
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return &handlers.Handlers{
		Cfg:          cfg,
		API:          api,
		Cache:        cache,
		State:        state,
		Sessions:     newSessionManager(cfg),
		Catalog:      cat,
		ConfigWriter: writer,
		Now:          time.Now,
	}, nil
}

func runServe(commandPath string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.BootstrapFromEnv(logging.BootstrapOptions{Command: commandPath, FleetURL: cfg.FleetURL})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newFleetClient(cfg)
	if err != nil {
		return err
	}
	h, err := newHandlers(cfg, client)
	if err != nil {
		return err
	}
	if err := h.LoadApp(ctx); err != nil {
		return fmt.Errorf("load fleet app config: %w", err)
	}

	scheduler := sync.Scheduler{
		Runner:     sync.NewTryLockRunner(sync.RunnerFunc(h.RefreshApp)),
		Interval:   cfg.ConfigRefreshInterval,
		MaxBackoff: maxRefreshBackoff,
		Logger:     logger,
	}
	go scheduler.Run(ctx)

	metricsErrCh := metrics.StartServer(ctx, cfg.MetricsAddr, logger)

	srv, err := httpapp.NewEchoServer(h)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	httpServer := srv.HTTPServer(cfg.HTTPAddr)
	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr)
		errCh <- srv.StartServer(httpServer)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-metricsErrCh:
		return fmt.Errorf("metrics server: %w", err)
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

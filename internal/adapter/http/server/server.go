// Package server exposes health and Prometheus metrics while a run is in progress.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Temutjin2k/taxi-ingest/internal/adapter/http/handler"
	"github.com/Temutjin2k/taxi-ingest/internal/adapter/http/middleware"
	"github.com/Temutjin2k/taxi-ingest/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-ingest/pkg/logger/wrapper"
)

const serverIPAddress = "%s:%d"

type API struct {
	mux    *http.ServeMux
	server *http.Server
	health *handler.Health
	m      *middleware.Middleware

	addr string
	log  logger.Logger
}

func New(port int, health *handler.Health, log logger.Logger) *API {
	api := &API{
		mux:    http.NewServeMux(),
		health: health,
		m:      middleware.NewMiddleware(log),
		addr:   fmt.Sprintf(serverIPAddress, "0.0.0.0", port),
		log:    log,
	}

	api.setupRoutes()

	api.server = &http.Server{
		Addr:              api.addr,
		Handler:           api.withMiddleware(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return api
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

// Run serves in the background. Listen errors are sent to errCh.
func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// Handler returns the routed mux wrapped in middleware.
func (a *API) Handler() http.Handler {
	return a.server.Handler
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	return a.m.Recover(a.m.Logging(a.mux))
}

package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/textextract/internal/metrics"
	"github.com/hyperifyio/textextract/internal/render"
	"github.com/hyperifyio/textextract/internal/server"
)

type App struct {
	cfg        Config
	metrics    *metrics.Metrics
	httpServer *http.Server
	listener   net.Listener
}

// Addr joins host and port into a listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// New validates cfg, wires the HTTP handler and binds the listener. Binding
// here rather than in Run lets callers learn the real address when Port is 0.
func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = shutdownTimeoutDefault
	}

	a := &App{cfg: cfg}
	if cfg.MetricsEnabled {
		a.metrics = metrics.New()
	}
	renderer := render.New(cfg.Style)
	srv := server.New(server.Options{
		Renderer:     renderer,
		Metrics:      a.metrics,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})
	a.httpServer = newHTTPServer(cfg, srv.Handler())

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", cfg.Addr())
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", cfg.Addr(), err)
	}
	a.listener = ln

	ev := log.Info().
		Str("addr", a.Addr()).
		Str("style", string(renderer.Profile().Style)).
		Bool("metrics", cfg.MetricsEnabled)
	switch {
	case cfg.MaxBodyBytes > 0:
		ev = ev.Str("max_body", humanize.IBytes(uint64(cfg.MaxBodyBytes)))
	case cfg.MaxBodyBytes < 0:
		ev = ev.Str("max_body", "unlimited")
	}
	ev.Msg("listening")
	return a, nil
}

// Addr is the bound listen address.
func (a *App) Addr() string {
	return a.listener.Addr().String()
}

// Close releases the listener when Run was never called.
func (a *App) Close() {
	if a.listener != nil {
		_ = a.listener.Close()
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully within
// ShutdownTimeout. A clean shutdown returns nil.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.httpServer.Serve(a.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Dur("timeout", a.cfg.ShutdownTimeout).Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

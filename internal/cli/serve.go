package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/greencart/api/controllers"
	"github.com/angelmondragon/greencart/api/routes"
	"github.com/angelmondragon/greencart/internal/remote/remotetest"
	"github.com/angelmondragon/greencart/pkg/env"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	addr        string
	fakeBackend bool
}

// NewServeCommand runs the UI bridge in front of a long-lived engine.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	serve := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the cart bridge API for the UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts, serve)
		},
	}

	cmd.Flags().StringVar(&serve.addr, "addr", "", "listen address (default :$PORT, then :$GREENCART_APP_PORT)")
	cmd.Flags().BoolVar(&serve.fakeBackend, "fake-backend", false, "run an in-process cart service with the demo catalog")

	return cmd
}

func runServe(ctx context.Context, opts *RootOptions, serve *serveOptions) error {
	logg := opts.logg
	cfg := opts.cfg

	baseURL := ""
	if serve.fakeBackend {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return WrapExitError(ExitCommandError, "starting fake cart service", err)
		}
		fake := &http.Server{Handler: remotetest.New(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := fake.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logg.Error(ctx, "fake cart service stopped", err)
			}
		}()
		defer fake.Close()
		baseURL = "http://" + ln.Addr().String()
		logg.Info(logg.WithField(ctx, "base_url", baseURL), "fake cart service started")
	}

	a, err := opts.build(ctx, baseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logg.Error(ctx, "failed to close cart engine", err)
		}
	}()

	checks := map[string]controllers.Pinger{}
	if a.Redis != nil {
		checks["redis"] = a.Redis
	}
	if a.DB != nil {
		checks["db"] = a.DB
	}

	a.Engine.Open(ctx)

	addr := serve.addr
	if addr == "" {
		addr = ":" + env.FirstNonEmpty(cfg.App.Port, "PORT")
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, a.Engine, a.Connectivity, a.Registry, checks),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "addr", addr), "starting cart bridge")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitFailure, "cart bridge stopped", err)
		}
		return nil
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down cart bridge")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutting down cart bridge", err)
	}
	return nil
}

package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bcdannyboy/optval/server"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pricing HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			if c.Flags().Changed("addr") {
				a.cfg.HTTP.Addr = addr
			}
			ctx, stop := signal.NotifyContext(c.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address (default from config)")
	return cmd
}

func serve(ctx context.Context, a *app) error {
	opts := []server.Option{
		server.WithLogger(a.logger),
		server.WithDefaults(a.defaults()),
		server.WithRequestTimeout(a.cfg.HTTP.RequestTimeout),
	}

	if url := a.cfg.Cache.RedisURL; url != "" {
		opt, err := redis.ParseURL(url)
		if err != nil {
			return err
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			a.logger.Warn("redis unreachable, results will not be cached until it recovers", zap.Error(err))
		}
		cancel()

		opts = append(opts, server.WithCache(server.NewRedisCache(rdb, a.cfg.Cache.TTL)))
		a.logger.Info("redis cache enabled", zap.Duration("ttl", a.cfg.Cache.TTL))
	}

	srv := &http.Server{
		Addr:         a.cfg.HTTP.Addr,
		Handler:      server.New(a.registry, opts...).Routes(),
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("optval listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	a.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("shutdown error", zap.Error(err))
		return err
	}
	a.logger.Info("optval stopped")
	return nil
}

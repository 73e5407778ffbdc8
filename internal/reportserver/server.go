package reportserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownGrace = 5 * time.Second

// Config captures the settings for serving journaled research.
type Config struct {
	Addr   string
	Jobs   JobSource
	DBPath string
	Logger *zap.Logger
}

// Serve lists journaled jobs and renders their reports on cfg.Addr until
// ctx is cancelled, then drains in-flight requests.
func Serve(ctx context.Context, cfg Config) error {
	if cfg.Addr == "" {
		return errors.New("reportserver: addr is required")
	}
	handler, err := NewHandler(cfg)
	if err != nil {
		return err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("reportserver: listen on %s: %w", cfg.Addr, err)
	}
	server := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	logger.Info("serving journal", zap.String("addr", listener.Addr().String()))

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	err = group.Wait()
	logger.Info("journal server stopped", zap.Error(err))
	return err
}

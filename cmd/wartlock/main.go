// @title           wartlock API
// @version         1.0
// @description     Local Warthog (WART) wallet: key management, signing and node access.
// @BasePath        /
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

	"github.com/AlexZinkM/wartlock/internal/api"
	"github.com/AlexZinkM/wartlock/internal/config"
	"github.com/AlexZinkM/wartlock/internal/logger"
	"github.com/AlexZinkM/wartlock/internal/store"
	"github.com/AlexZinkM/wartlock/warthog"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := config.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(config.GetLogLevel())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Fatal("wartlock stopped", zap.Error(err))
	}
}

func run(log *zap.Logger) error {
	st, err := store.Open(config.GetDBPath(), store.WithLogger(log))
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.EnsurePeer(config.GetPeerURL()); err != nil {
		return fmt.Errorf("failed to store default peer: %w", err)
	}

	svc := warthog.NewService(st, warthog.Config{
		DefaultPeer:  config.GetPeerURL(),
		CoinGeckoURL: config.GetCoinGeckoURL(),
		WartscanURL:  config.GetWartscanURL(),
		HTTPTimeout:  config.GetHTTPTimeout(),
	}, warthog.WithLogger(log))

	srv := &http.Server{
		Addr:              config.GetListenAddr(),
		Handler:           api.SetupRouter(svc, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr), zap.String("db", config.GetDBPath()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

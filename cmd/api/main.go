package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fastwager/wagercore/internal/api"
	"github.com/fastwager/wagercore/internal/gateway"
	"github.com/fastwager/wagercore/internal/infra/logging"
	"github.com/fastwager/wagercore/internal/infra/pgutils"
	pgaccounts "github.com/fastwager/wagercore/internal/repos/accounts/postgres"
	"github.com/fastwager/wagercore/internal/services/payments"
	"github.com/fastwager/wagercore/internal/services/signup"
	"github.com/fastwager/wagercore/internal/services/wager"
	"github.com/fastwager/wagercore/internal/services/wallet"
	"github.com/fastwager/wagercore/pkg/envconf"
	"github.com/fastwager/wagercore/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	dbConns, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add(func(context.Context) error {
		slog.Info("Close db pool")

		return dbConns.Close()
	})

	// --- Services ---
	orders := gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.KeyID, cfg.Gateway.KeySecret)

	walletSrv := wallet.New(dbConns)
	wagerSrv := wager.New(walletSrv)
	paymentsSrv := payments.New(dbConns, walletSrv, orders)
	signupSrv := signup.New(pgaccounts.New(dbConns))

	// --- HTTP server ---
	h := api.NewHandler(walletSrv, wagerSrv, paymentsSrv, signupSrv, cfg.Gateway.WebhookSecret)
	srv := api.NewServer(cfg.Port, h)

	// Register HTTP server graceful shutdown
	shutdownqueue.Add(func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	// Run server
	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started", "port", cfg.Port)

	// --- Wait until either context cancels or server errors out ---
	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}

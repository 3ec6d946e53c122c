package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"expansive/internal/amqp"
	"expansive/internal/cli"
	apphttp "expansive/internal/http"
	applog "expansive/internal/log"
	"expansive/internal/services"
)

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.UsingDefaultSecret() {
		logger.Warn("SECRET_KEY is unset, using the insecure development default")
	}

	repo := cli.InitStore(logger, cfg.SQLiteDBPath, cfg.BusyTimeout)
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("Failed to close store", applog.FieldError, err.Error())
		}
	}()

	// Event publishing is optional: without AMQP_URL the app runs standalone.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP, continuing without events",
				applog.FieldError, err.Error())
		} else {
			publisher = client
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("Failed to close AMQP client", applog.FieldError, err.Error())
				}
			}()
		}
	}

	accounts := services.NewAccountService(repo, cfg.SessionTTL)
	expenses := services.NewExpenseService(repo, publisher)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:         ":" + cfg.Port,
		Secret:       []byte(cfg.SecretKey),
		SecureCookie: !cfg.UsingDefaultSecret(),
		Logger:       logger,
	}, accounts, expenses)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return accounts.SweepSessions(gctx, cfg.SweepInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

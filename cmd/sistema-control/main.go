// Package main запускает HTTP-сервер системы управления продажами.
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

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roberto3101/sistema-control/internal/config"
	"github.com/roberto3101/sistema-control/internal/handler"
	"github.com/roberto3101/sistema-control/internal/middleware"
	"github.com/roberto3101/sistema-control/internal/model"
	"github.com/roberto3101/sistema-control/internal/repository"
	"github.com/roberto3101/sistema-control/internal/service"
)

type storage interface {
	service.Store
	Ping(ctx context.Context) error
	Close() error
}

func main() {
	// .env необязателен
	_ = godotenv.Load()

	cfg, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	sugar := logger.Sugar()

	store, err := openStorage(cfg, logger)
	if err != nil {
		sugar.Fatalw("storage initialization error", "error", err.Error())
	}
	defer store.Close()

	guard := service.NewInventoryGuard(store, logger)
	accounts := service.NewAccountService(store, logger)

	if err := ensureAdmin(context.Background(), accounts, cfg); err != nil {
		sugar.Fatalw("admin bootstrap error", "error", err.Error())
	}

	svc := handler.Services{
		Accounts:    accounts,
		Catalog:     service.NewCatalogService(store, guard, logger),
		Inventory:   guard,
		Orders:      service.NewOrderManager(store, guard, logger),
		Receipts:    service.NewReceiptIssuer(store, logger),
		Assignments: service.NewAssignmentManager(store, logger),
		Health:      store,
	}

	if cfg.AuthSecret == "" {
		sugar.Warn("AUTH_SECRET is empty, sessions will not survive a restart")
	}
	authMiddleware := middleware.NewAuthMiddleware(cfg.AuthSecret)
	h := handler.NewHandler(svc, logger, authMiddleware, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

func newLogger(level string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func openStorage(cfg *config.Config, logger *zap.Logger) (storage, error) {
	if cfg.DatabaseURI == "" {
		logger.Warn("DATABASE_URI is empty, using in-memory store")
		return repository.NewMemoryRepository(cfg.TxTimeout), nil
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI, cfg.TxTimeout)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func ensureAdmin(ctx context.Context, accounts *service.AccountService, cfg *config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	_, err := accounts.Register(ctx, service.RegisterInput{
		FullName: "Administrador",
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Role:     model.RoleAdmin,
	})
	if err != nil && !errors.Is(err, model.ErrUserExists) {
		return fmt.Errorf("register admin: %w", err)
	}
	return nil
}

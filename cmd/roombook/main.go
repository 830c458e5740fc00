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

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/config"
	"github.com/example/room-booking/internal/credential"
	httptransport "github.com/example/room-booking/internal/http"
	"github.com/example/room-booking/internal/logging"
	"github.com/example/room-booking/internal/notification"
	"github.com/example/room-booking/internal/persistence/sqlite"
	"github.com/example/room-booking/internal/session"
)

func main() {
	// Local development convenience; a missing .env file is not an error.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	pool, err := sqlite.NewConnectionPool(sqlite.DefaultConfig(cfg.SQLiteDSN))
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now
	secret := []byte(cfg.SessionSecret)

	sessions := session.NewManager(secret, cfg.SessionTTL, now)
	resetTokens := credential.NewResetTokens(secret, cfg.ResetTokenTTL, now)
	notifier := notification.NewDispatcher(map[notification.Channel]notification.Sender{
		notification.ChannelEmail: notification.NewLogSender(logger),
		notification.ChannelSMS:   notification.NewLogSender(logger),
	}, logger)

	userRepo := newUserRepositoryAdapter(sqlite.NewUserRepository(pool))
	roomRepo := newRoomRepositoryAdapter(sqlite.NewRoomRepository(pool))
	bookingRepo := newBookingRepositoryAdapter(sqlite.NewBookingRepository(pool))
	credentialStore := newCredentialStoreAdapter(sqlite.NewUserRepository(pool))

	userService := application.NewUserServiceWithLogger(userRepo, credential.HashPassword, resetTokens, notifier, idGenerator, now, logger)
	roomService := application.NewRoomServiceWithLogger(roomRepo, idGenerator, now, logger)
	bookingService := application.NewBookingServiceWithLogger(bookingRepo, roomRepo, userRepo, notifier, idGenerator, now, logger)
	authService := application.NewAuthServiceWithLogger(credentialStore, sessions, credential.VerifyPassword, logger)

	if err := roomService.SeedDefaultRooms(ctx, cfg.SeedRooms); err != nil {
		logger.Error("failed to seed room catalog", "error", err)
		os.Exit(1)
	}
	if cfg.BootstrapManagerEmail != "" {
		if _, err := userService.BootstrapManager(ctx, application.BootstrapManagerParams{
			Name:     cfg.BootstrapManagerName,
			Email:    cfg.BootstrapManagerEmail,
			Phone:    cfg.BootstrapManagerPhone,
			Password: cfg.BootstrapManagerPassword,
		}); err != nil {
			logger.Error("failed to bootstrap manager account", "error", err)
			os.Exit(1)
		}
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:     httptransport.NewAuthHandler(authService, userService, logger),
		Users:    httptransport.NewUserHandler(userService, logger),
		Rooms:    httptransport.NewRoomHandler(roomService, logger),
		Bookings: httptransport.NewBookingHandler(bookingService, logger),
		Session:  httptransport.RequireSession(sessions, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.RateLimit(rate.Limit(cfg.RateLimit), cfg.RateBurst, logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("room booking API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

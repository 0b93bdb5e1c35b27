package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"event-portal/internal/actions"
	"event-portal/internal/config"
	"event-portal/internal/guard"
	"event-portal/internal/handler"
	"event-portal/internal/notify"
	"event-portal/internal/router"
	"event-portal/internal/session"
	"event-portal/internal/upstream"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var (
		store   session.Store
		cleanup []func()
	)
	if cfg.RedisURL != "" {
		redisStore, err := session.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to configure redis session store: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisStore.Ping(pingCtx); err != nil {
			return nil, fmt.Errorf("failed to reach redis: %w", err)
		}
		slog.Info("session store ready", "backend", "redis")
		store = redisStore
		cleanup = append(cleanup, func() { _ = redisStore.Close() })
	} else {
		slog.Info("session store ready", "backend", "memory")
		store = session.NewMemoryStore()
	}

	cookies := session.NewCookies(cfg.SessionCookieName, cfg.SessionSecret)
	sessionGuard := guard.New(store, cookies)

	client := upstream.New(cfg.UpstreamBaseURL, cfg.UpstreamTimeout)
	notifier := notify.NewQueue(cfg.NotifyQueueCap)
	runner := actions.NewRunner(client, notifier)

	appRouter := router.New(cfg, sessionGuard, cookies, router.Handlers{
		Auth:          handler.NewAuthHandler(client, store, notifier),
		Events:        handler.NewEventsHandler(client, notifier),
		Admin:         handler.NewAdminHandler(client, runner, notifier),
		Hoster:        handler.NewHosterHandler(client, runner, notifier),
		Carousel:      handler.NewCarouselHandler(client, notifier),
		Notifications: handler.NewNotificationsHandler(notifier),
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      appRouter,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &App{server: server, cleanupFuncs: cleanup}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/weiawesome/wes-io-party/internal/config"
	"github.com/weiawesome/wes-io-party/internal/handler"
	"github.com/weiawesome/wes-io-party/internal/hub"
	"github.com/weiawesome/wes-io-party/internal/room"
	"github.com/weiawesome/wes-io-party/internal/store"
	pkglog "github.com/weiawesome/wes-io-party/pkg/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, ServiceName: "party-service"})
	logger := pkglog.L()

	logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting party-service")

	// Snapshot store; the service runs without persistence when Redis
	// is disabled or unreachable.
	var snapshots store.SnapshotStore
	if cfg.Redis.Enabled {
		s, err := store.NewRedisStore(store.RedisConfig{
			Address:     cfg.Redis.Address,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			KeyPrefix:   cfg.Redis.KeyPrefix,
			SnapshotTTL: cfg.Redis.SnapshotTTL,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("snapshot store unavailable, persistence disabled")
		} else {
			snapshots = s
			defer s.Close()
			logger.Info().Str("address", cfg.Redis.Address).Msg("connected to redis")
		}
	}

	// Create hub
	h := hub.NewHub()
	go h.Run()

	// Create room registry
	registry := room.NewRegistry(
		func(roomID string) room.Emitter { return hub.NewRoomEmitter(h, roomID) },
		snapshots,
		room.RegistryConfig{
			Room: room.Config{
				HeartbeatInterval: cfg.Room.HeartbeatInterval,
				VBrowserHost:      cfg.Room.VBrowserHost,
				VBrowserUser:      cfg.Room.VBrowserUser,
				VBrowserPass:      cfg.Room.VBrowserPass,
			},
			EvictionGrace:   cfg.Room.EvictionGrace,
			JanitorInterval: cfg.Room.JanitorInterval,
		},
	)

	// Create handlers
	wsCfg := hub.Config{
		PingInterval:   cfg.WebSocket.PingInterval,
		PongWait:       cfg.WebSocket.PongWait,
		WriteWait:      cfg.WebSocket.WriteWait,
		MaxMessageSize: cfg.WebSocket.MaxMessageSize,
	}
	wsHandler := handler.NewWSHandler(h, registry, wsCfg)
	httpHandler := handler.NewHTTPHandler(h, registry)

	// Setup routes
	router := mux.NewRouter()
	router.HandleFunc("/rooms/{room_id}/ws", wsHandler.HandleWebSocket)
	router.HandleFunc("/api/v1/rooms/{room_id}", httpHandler.GetRoomInfo).Methods("GET")
	router.HandleFunc("/health", httpHandler.HealthCheck).Methods("GET")

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      pkglog.HTTPMiddleware(logger)(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", addr).Msg("party-service listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := registry.Janitor(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down party-service")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		registry.SaveAll(shutdownCtx)
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("party-service exited with error")
		return
	}
	logger.Info().Msg("party-service stopped")
}

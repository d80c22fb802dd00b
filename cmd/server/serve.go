package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vikasavnish/movein/internal/api"
	"github.com/vikasavnish/movein/internal/cache"
	"github.com/vikasavnish/movein/internal/config"
	"github.com/vikasavnish/movein/internal/db"
	"github.com/vikasavnish/movein/internal/geocode"
	"github.com/vikasavnish/movein/internal/rental"
	"github.com/vikasavnish/movein/internal/tasks"
	"github.com/vikasavnish/movein/internal/websocket"
)

const (
	defaultSecretKey = "this is wildly unpredictable"
	shutdownTimeout  = 10 * time.Second
	statsInterval    = time.Minute
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate the schema and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg.Server.LogLevel)

	if cfg.Session.SecretKey == defaultSecretKey {
		log.Warn().Msg("SECRET_KEY is not set, sessions are signed with the development key")
	}

	// Initialize database connection
	database, err := db.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		return err
	}

	// Redis is optional; without it upstream responses are not cached.
	var responseCache cache.Cache
	redisClient, err := db.ConnectRedis(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to Redis, caching disabled")
	}
	if redisClient != nil {
		defer redisClient.Close()
		responseCache = cache.NewRedisCache(redisClient, "movein:")
	}

	httpClient := &http.Client{Timeout: cfg.Server.ClientTimeout}
	geocoder := geocode.NewClient(cfg.MapQuest.BaseURL, cfg.MapQuest.APIKey, httpClient, responseCache)
	estimator := rental.NewClient(cfg.Rental.BaseURL, cfg.Rental.APIKey, cfg.Rental.APIHost, httpClient, responseCache)

	// Initialize WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)

	taskManager := tasks.NewManager()
	taskManager.RegisterTask(tasks.NewStatsTask(database, wsHub, statsInterval))
	taskManager.StartAll()
	defer taskManager.StopAll()

	// Initialize router
	router, err := api.SetupRouter(database, wsHub, cfg, geocoder, estimator)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.NewHandler(router, cfg.Server),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Bool("cache", responseCache != nil).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/merchantops/sentinel/internal/config"
	"github.com/merchantops/sentinel/internal/monitoring"
	"github.com/merchantops/sentinel/internal/monitoring/api"
	"github.com/merchantops/sentinel/internal/monitoring/database"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Info().Msg("Starting sentinel monitoring server")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	db, err := database.New(cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	metricStore := database.NewPgMetricStore(db)
	alertStore := database.NewPgAlertStore(db)

	// dashboard pub/sub is optional; the engine runs without it
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Error().Err(err).Msg("redis unreachable; dashboard notifications disabled")
			rdb = nil
		}
	}

	engine := monitoring.New(cfg, metricStore, alertStore, rdb)
	engine.Start()
	defer engine.Stop()

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	if _, err := api.NewApi(engine, router, cfg.Server.AuthToken); err != nil {
		log.Fatal().Err(err).Msg("bind monitoring api failed.")
	}

	srv := &http.Server{Addr: cfg.Server.BindAddr, Handler: router}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Msgf("Starting server on %s", cfg.Server.BindAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("start sentinel api server failed.")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
	log.Info().Msg("sentinel server exit...")
}

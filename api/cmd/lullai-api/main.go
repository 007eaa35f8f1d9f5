// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	internal_alert "github.com/lullai/api/internal/alert"
	internal_auth "github.com/lullai/api/internal/auth"
	internal_capture "github.com/lullai/api/internal/capture"
	internal_classifier "github.com/lullai/api/internal/classifier"
	internal_retention "github.com/lullai/api/internal/retention"
	internal_store "github.com/lullai/api/internal/store"
	listen_routers "github.com/lullai/api/listen-api/router"
	"github.com/lullai/config"
	"github.com/lullai/pkg/commons"
	"github.com/lullai/pkg/connectors"
	"github.com/lullai/pkg/utils"
)

func main() {
	vConfig, err := config.InitConfig()
	if err != nil {
		log.Fatalf("unable to initialize configuration: %v", err)
	}
	cfg, err := config.GetApplicationConfig(vConfig)
	if err != nil {
		log.Fatalf("unable to load application configuration: %v", err)
	}

	logger, err := commons.NewApplicationLogger(
		commons.Name(cfg.Name),
		commons.Path(cfg.LogPath),
		commons.Level(cfg.LogLevel),
	)
	if err != nil {
		log.Fatalf("unable to initialize logger: %v", err)
	}

	if err := run(cfg, logger); err != nil {
		logger.Errorf("%s stopped: %v", cfg.Name, err)
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, logger commons.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redis, err := connectors.NewRedisConnector(&cfg.RedisConfig, logger)
	if err != nil {
		return fmt.Errorf("redis connector: %w", err)
	}
	defer redis.Close()

	var pgOpts []connectors.PostgresOption
	if cfg.StoreConfig.CacheTtlSeconds > 0 {
		pgOpts = append(pgOpts, connectors.WithQueryCache(redis, time.Duration(cfg.StoreConfig.CacheTtlSeconds)*time.Second))
	}
	postgres, err := connectors.NewPostgresConnector(&cfg.PostgresConfig, logger, pgOpts...)
	if err != nil {
		return fmt.Errorf("postgres connector: %w", err)
	}
	defer postgres.Close()

	if err := postgres.Migrate(); err != nil {
		return fmt.Errorf("schema migration: %w", err)
	}

	classifier, err := internal_classifier.GetClassifier(cfg, logger)
	if err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	manager, err := internal_capture.NewManager(cfg, classifier, logger)
	if err != nil {
		return fmt.Errorf("capture manager: %w", err)
	}

	local, err := internal_store.NewLocalStore(cfg.StoreConfig.LocalPath, logger)
	if err != nil {
		return fmt.Errorf("local store: %w", err)
	}
	remote := internal_store.NewPostgresStore(postgres, logger)
	store := internal_store.NewFailoverStore(remote, local, logger)

	alerts := internal_alert.NewDispatcher(cfg, logger)
	authService := internal_auth.NewService(cfg, logger, postgres, redis)

	// retention prunes the concrete backends directly, not the
	// failover wrapper
	sweeper := internal_retention.NewSweeper(cfg, logger, remote, local)
	if err := sweeper.Start(); err != nil {
		return fmt.Errorf("retention sweeper: %w", err)
	}
	defer sweeper.Stop()

	engine := newEngine(cfg)
	listen_routers.HealthCheckRoutes(cfg, engine, logger, postgres)
	listen_routers.AuthApiRoute(cfg, engine, logger, authService)
	listen_routers.ListenApiRoute(cfg, engine, logger, authService, manager)
	listen_routers.RecordingApiRoute(cfg, engine, logger, authService, store, alerts)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: engine,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("%s %s listening on %s", cfg.Name, cfg.Version, server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newEngine(cfg *config.AppConfig) *gin.Engine {
	if utils.FromEnvironmentStr(cfg.Environment) == utils.PRODUCTION {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(func(c *gin.Context) {
		traceId := c.GetHeader("x-request-id")
		if utils.IsEmpty(traceId) {
			traceId = uuid.New().String()
		}
		c.Request = c.Request.WithContext(commons.WithTraceId(c.Request.Context(), traceId))
		c.Header("x-request-id", traceId)
		c.Next()
	})

	corsConfig := cors.DefaultConfig()
	if utils.IsEmpty(cfg.CorsOrigins) || cfg.CorsOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(cfg.CorsOrigins, commons.SEPARATOR)
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, utils.HEADER_AUTH_KEY)
	engine.Use(cors.New(corsConfig))
	return engine
}

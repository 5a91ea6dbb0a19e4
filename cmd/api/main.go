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

	"menu-planner/internal/api"
	"menu-planner/internal/core/menu"
	"menu-planner/internal/infrastructure/config"
	"menu-planner/internal/infrastructure/persistence/cache"
	"menu-planner/internal/pkg/common"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := common.InitLogger(common.LoggerOptions{
		Level: cfg.LogLevel,
		File:  cfg.LogFile,
		Mode:  cfg.LogMode,
	}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("config loaded",
		zap.String("env", cfg.App.Env),
		zap.String("store", cfg.Store.Driver),
		zap.String("access_code", config.MaskSecret(cfg.Auth.SecretCode)),
		zap.Uint64("planner_seed", cfg.Planner.Seed),
	)

	ctx := context.Background()
	st, err := openStores(ctx, cfg)
	if err != nil {
		common.LogFatal("failed to open stores", zap.Error(err))
	}
	defer st.close()

	recipes := st.recipes
	if cfg.Cache.Enabled {
		recipes = cache.NewRepository(st.recipes, cfg.Cache.TTL)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// seed 0 draws from the clock
	planner := menu.NewPlanner(menu.NewRandom(cfg.Planner.Seed))
	service := menu.NewService(recipes, st.state, planner, menu.NewMetrics(registry))

	router, err := api.SetupRouter(cfg, api.Dependencies{
		Recipes:  recipes,
		Menu:     service,
		Pingers:  st.pingers,
		Registry: registry,
	})
	if err != nil {
		common.LogFatal("failed to setup router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("starting server",
			zap.Int("port", cfg.Server.Port),
			zap.String("version", cfg.App.Version),
			zap.Bool("debug", cfg.App.Debug),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("server exited")
}

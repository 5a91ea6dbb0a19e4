package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm/logger"

	"menu-planner/internal/api/handlers/health"
	"menu-planner/internal/core/menu"
	"menu-planner/internal/core/recipe"
	"menu-planner/internal/infrastructure/config"
	"menu-planner/internal/infrastructure/persistence/memory"
	"menu-planner/internal/infrastructure/persistence/redis"
	"menu-planner/internal/infrastructure/persistence/sqlite"
	"menu-planner/internal/pkg/common"
)

type stores struct {
	recipes recipe.Repository
	state   menu.StateStore
	pingers map[string]health.Pinger
	closers []func() error
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			common.LogWarn("failed to close store", zap.Error(err))
		}
	}
}

// openStores picks the backends for store.driver. The catalog lives in
// SQLite for both the sqlite and redis drivers; redis only holds the plan.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.Store.Driver == config.StoreMemory {
		state := memory.NewStateStore()
		return &stores{
			recipes: memory.NewRecipeRepository(),
			state:   state,
			pingers: map[string]health.Pinger{"state": state},
		}, nil
	}

	level := logger.Warn
	if cfg.App.Debug {
		level = logger.Info
	}
	db, err := sqlite.Open(cfg.Store.SQLitePath, level)
	if err != nil {
		return nil, err
	}
	catalog := sqlite.NewRecipeRepository(db)
	s := &stores{
		recipes: catalog,
		pingers: map[string]health.Pinger{"catalog": catalog},
		closers: []func() error{func() error { return sqlite.Close(db) }},
	}

	switch cfg.Store.Driver {
	case config.StoreSQLite:
		state := sqlite.NewStateRepository(db)
		s.state = state
		s.pingers["state"] = state
	case config.StoreRedis:
		state, err := redis.NewStateStore(ctx, redis.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
			Key:      cfg.Store.RedisKey,
		})
		if err != nil {
			s.close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s.state = state
		s.pingers["state"] = state
		s.closers = append(s.closers, state.Close)
	default:
		s.close()
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	common.LogInfo("stores opened",
		zap.String("driver", cfg.Store.Driver),
		zap.String("sqlite_path", cfg.Store.SQLitePath),
	)
	return s, nil
}

// Package redis keeps the current plan under a single Redis key.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"menu-planner/internal/core/menu"
	"menu-planner/internal/pkg/common"
)

// DefaultKey is used when no key is configured.
const DefaultKey = "menu-planner:state:current"

// Options selects the server and key.
type Options struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// StateStore implements menu.StateStore on Redis.
type StateStore struct {
	client *redis.Client
	key    string
}

// NewStateStore connects and pings the server.
func NewStateStore(ctx context.Context, opts Options) (*StateStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewStateStoreWithClient(client, opts.Key), nil
}

// NewStateStoreWithClient wraps an existing client.
func NewStateStoreWithClient(client *redis.Client, key string) *StateStore {
	if key == "" {
		key = DefaultKey
	}
	return &StateStore{client: client, key: key}
}

// Load returns nil, nil when the key is absent.
func (s *StateStore) Load(ctx context.Context) (*menu.State, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get menu state: %w", err)
	}

	var st menu.State
	if err := common.ParseJSONBytes(data, &st); err != nil {
		return nil, fmt.Errorf("failed to unmarshal menu state: %w", err)
	}
	return &st, nil
}

// Save overwrites the key. The state never expires.
func (s *StateStore) Save(ctx context.Context, st *menu.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal menu state: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set menu state: %w", err)
	}
	return nil
}

// Clear deletes the stored plan.
func (s *StateStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

// Ping checks the connection.
func (s *StateStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *StateStore) Close() error {
	return s.client.Close()
}

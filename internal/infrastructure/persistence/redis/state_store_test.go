package redis

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-planner/internal/core/menu"
	"menu-planner/internal/pkg/common"
)

func TestStateStoreRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	store, err := NewStateStore(ctx, Options{Addr: addr, Key: "menu-planner:test:" + common.GenerateUUID()})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Clear(context.Background())
		_ = store.Close()
	})

	st, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, st)

	state := &menu.State{Menu: menu.WeeklyPlan{{Day: 1}}, People: 3, DessertPeople: 2}
	state.Recompute()
	require.NoError(t, store.Save(ctx, state))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 3, loaded.People)
	assert.Equal(t, 2, loaded.DessertPeople)
	assert.Len(t, loaded.Menu, 1)
	assert.NoError(t, store.Ping(ctx))
}

func TestNewStateStoreWithClientDefaultsKey(t *testing.T) {
	s := NewStateStoreWithClient(nil, "")
	assert.Equal(t, DefaultKey, s.key)
}

package client_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokulpos/restaurant-pos/client"
	"github.com/gokulpos/restaurant-pos/models"
)

func newStateManager(t *testing.T) (*client.StateManager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	sm, err := client.OpenStateManager(path)
	require.NoError(t, err)
	t.Cleanup(func() { sm.Close() })
	return sm, path
}

func TestFreshStateGetsSessionID(t *testing.T) {
	sm, path := newStateManager(t)

	state := sm.Snapshot()
	assert.NotEmpty(t, state.SessionID)
	assert.Empty(t, state.ActiveOrders)

	// The file is written on open.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(raw))
}

func TestCorruptStateFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	sm, err := client.OpenStateManager(path)
	require.NoError(t, err)
	defer sm.Close()

	state := sm.Snapshot()
	assert.NotEmpty(t, state.SessionID)
	assert.Empty(t, state.PendingSync)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(raw), "corrupt file must be replaced with a valid one")
}

func TestStatePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	sm, err := client.OpenStateManager(path)
	require.NoError(t, err)

	require.NoError(t, sm.SetSession("staff", "Ravi"))
	require.NoError(t, sm.SetActiveOrder(3, client.ActiveOrder{
		StaffName:           "Ravi",
		Status:              "pending",
		Items:               models.ItemLines{{ItemName: "Chai", Quantity: 2, Price: 15}},
		PendingConfirmation: true,
	}))
	firstID := sm.Snapshot().SessionID
	require.NoError(t, sm.Close())

	sm, err = client.OpenStateManager(path)
	require.NoError(t, err)
	defer sm.Close()

	assert.Equal(t, firstID, sm.Snapshot().SessionID)
	role, staff := sm.Session()
	assert.Equal(t, "staff", role)
	assert.Equal(t, "Ravi", staff)

	order, ok := sm.ActiveOrder(3)
	require.True(t, ok)
	assert.True(t, order.PendingConfirmation)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Chai", order.Items[0].ItemName)
}

func TestConfirmActiveOrderReplacesDraft(t *testing.T) {
	sm, _ := newStateManager(t)

	require.NoError(t, sm.SetActiveOrder(2, client.ActiveOrder{
		StaffName:           "Ravi",
		Items:               models.ItemLines{{ItemName: "Stale Item", Quantity: 9, Price: 1}},
		PendingConfirmation: true,
	}))

	require.NoError(t, sm.ConfirmActiveOrder(2, client.ActiveOrder{
		OrderID:   17,
		StaffName: "Ravi",
		Status:    "pending",
		Items:     models.ItemLines{{ItemName: "Chai", Quantity: 1, Price: 15}},
	}))

	order, ok := sm.ActiveOrder(2)
	require.True(t, ok)
	assert.False(t, order.PendingConfirmation)
	assert.EqualValues(t, 17, order.OrderID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Chai", order.Items[0].ItemName, "confirmation must replace the draft, not merge it")

	require.NoError(t, sm.RemoveActiveOrder(2))
	_, ok = sm.ActiveOrder(2)
	assert.False(t, ok)
}

func TestClearSessionKeepsQueue(t *testing.T) {
	sm, _ := newStateManager(t)
	q := client.NewSyncQueue(sm, &fakeApplier{})
	ctx := context.Background()

	q.SetOnline(ctx, false)
	_, err := q.Enqueue(ctx, client.ActionCreateOrder, map[string]interface{}{"table_id": 1})
	require.NoError(t, err)
	require.NoError(t, sm.SetSession("staff", "Ravi"))
	require.NoError(t, sm.SetActiveOrder(1, client.ActiveOrder{StaffName: "Ravi"}))

	require.NoError(t, sm.ClearSession())

	role, staff := sm.Session()
	assert.Empty(t, role)
	assert.Empty(t, staff)
	_, ok := sm.ActiveOrder(1)
	assert.False(t, ok, "logout clears table drafts")
	assert.Len(t, sm.PendingItems(), 1, "logout must never drop queued writes")
}

func TestCachedListsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	sm, err := client.OpenStateManager(path)
	require.NoError(t, err)

	menu := []models.MenuItem{{ID: 1, Category: "Drinks", Name: "Chai", Price: 15}}
	require.NoError(t, sm.SetCachedList("menu", menu))
	require.NoError(t, sm.Close())

	sm, err = client.OpenStateManager(path)
	require.NoError(t, err)
	defer sm.Close()

	var cached []models.MenuItem
	ok, err := sm.CachedList("menu", &cached)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, cached, 1)
	assert.Equal(t, "Chai", cached[0].Name)

	ok, err = sm.CachedList("orders", &cached)
	require.NoError(t, err)
	assert.False(t, ok)
}

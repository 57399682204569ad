package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokulpos/restaurant-pos/client"
)

// fakeApplier records applied items and can be told to fail a number of
// times before succeeding.
type fakeApplier struct {
	mu        sync.Mutex
	applied   []client.SyncItem
	failTimes int
}

func (f *fakeApplier) Apply(ctx context.Context, item client.SyncItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTimes > 0 {
		f.failTimes--
		return errors.New("server unreachable")
	}
	f.applied = append(f.applied, item)
	return nil
}

func (f *fakeApplier) appliedActions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	actions := make([]string, len(f.applied))
	for i, item := range f.applied {
		actions[i] = item.Action
	}
	return actions
}

func newQueue(t *testing.T, applier client.Applier) (*client.SyncQueue, *client.StateManager) {
	t.Helper()
	sm, err := client.OpenStateManager(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	t.Cleanup(func() { sm.Close() })
	return client.NewSyncQueue(sm, applier), sm
}

func TestEnqueueAppliesImmediatelyWhenOnline(t *testing.T) {
	applier := &fakeApplier{}
	q, sm := newQueue(t, applier)

	_, err := q.Enqueue(context.Background(), client.ActionCreateOrder, map[string]interface{}{"table_id": 1})
	require.NoError(t, err)

	assert.Equal(t, []string{client.ActionCreateOrder}, applier.appliedActions())
	assert.Empty(t, q.Pending())
	assert.False(t, sm.Snapshot().LastSync.IsZero())
}

func TestOfflineWritesQueueInOrder(t *testing.T) {
	applier := &fakeApplier{}
	q, _ := newQueue(t, applier)
	ctx := context.Background()

	q.SetOnline(ctx, false)
	_, err := q.Enqueue(ctx, client.ActionCreateOrder, map[string]interface{}{"table_id": 1})
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, client.ActionCreateKitchenOrder, map[string]interface{}{"order_id": 1})
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, client.ActionCreateBill, map[string]interface{}{"order_id": 1})
	require.NoError(t, err)

	assert.Empty(t, applier.appliedActions())
	require.Len(t, q.Pending(), 3)

	q.SetOnline(ctx, true)

	assert.Equal(t, []string{
		client.ActionCreateOrder,
		client.ActionCreateKitchenOrder,
		client.ActionCreateBill,
	}, applier.appliedActions())
	assert.Empty(t, q.Pending())
}

func TestRepeatedOnlineSignalDoesNotRedrain(t *testing.T) {
	applier := &fakeApplier{failTimes: 100}
	q, _ := newQueue(t, applier)
	ctx := context.Background()

	q.SetOnline(ctx, false)
	_, err := q.Enqueue(ctx, client.ActionCreateOrder, map[string]interface{}{"table_id": 1})
	require.NoError(t, err)

	q.SetOnline(ctx, true) // drain: attempt 1
	q.SetOnline(ctx, true) // already online, no drain

	require.Len(t, q.Pending(), 1)
	assert.Equal(t, 1, q.Pending()[0].Retries)
}

func TestFailedItemRetriesThenSucceeds(t *testing.T) {
	applier := &fakeApplier{failTimes: 1}
	q, _ := newQueue(t, applier)
	ctx := context.Background()

	q.SetOnline(ctx, false)
	_, err := q.Enqueue(ctx, client.ActionUpdateOrder, map[string]interface{}{"id": 7, "status": "completed"})
	require.NoError(t, err)

	q.Drain(ctx)
	require.Len(t, q.Pending(), 1)
	assert.Equal(t, 1, q.Pending()[0].Retries)
	assert.Equal(t, client.SyncQueued, q.Pending()[0].State)

	q.Drain(ctx)
	assert.Empty(t, q.Pending())
	assert.Equal(t, []string{client.ActionUpdateOrder}, applier.appliedActions())
}

func TestItemAbandonedAfterMaxRetries(t *testing.T) {
	applier := &fakeApplier{failTimes: 1000}
	q, sm := newQueue(t, applier)
	ctx := context.Background()

	var abandoned []client.SyncItem
	q.OnAbandon = func(item client.SyncItem) { abandoned = append(abandoned, item) }

	q.SetOnline(ctx, false)
	item, err := q.Enqueue(ctx, client.ActionCreateBill, map[string]interface{}{"order_id": 9})
	require.NoError(t, err)

	q.Drain(ctx)
	q.Drain(ctx)
	q.Drain(ctx)

	assert.Empty(t, q.Pending())
	require.Len(t, abandoned, 1)
	assert.Equal(t, item.ID, abandoned[0].ID)
	assert.Equal(t, 3, abandoned[0].Retries)
	assert.Equal(t, client.SyncAbandoned, abandoned[0].State)

	parked := sm.AbandonedItems()
	require.Len(t, parked, 1)
	assert.Equal(t, item.ID, parked[0].ID)
}

// snoopingApplier reads the durable state file during each Apply call,
// capturing what a crash at that exact moment would leave behind.
type snoopingApplier struct {
	t    *testing.T
	path string
	// pending ids seen in the file at each Apply, oldest call first
	seen [][]string
}

func (s *snoopingApplier) Apply(ctx context.Context, item client.SyncItem) error {
	raw, err := os.ReadFile(s.path)
	require.NoError(s.t, err)
	var doc struct {
		PendingSync []client.SyncItem `json:"pending_sync"`
	}
	require.NoError(s.t, json.Unmarshal(raw, &doc))
	ids := make([]string, len(doc.PendingSync))
	for i, it := range doc.PendingSync {
		ids[i] = it.ID
	}
	s.seen = append(s.seen, ids)
	return nil
}

func TestDrainKeepsItemsDurableUntilApplied(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	sm, err := client.OpenStateManager(path)
	require.NoError(t, err)
	t.Cleanup(func() { sm.Close() })

	applier := &snoopingApplier{t: t, path: path}
	q := client.NewSyncQueue(sm, applier)
	ctx := context.Background()

	q.SetOnline(ctx, false)
	first, err := q.Enqueue(ctx, client.ActionCreateOrder, map[string]interface{}{"table_id": 1})
	require.NoError(t, err)
	second, err := q.Enqueue(ctx, client.ActionCreateBill, map[string]interface{}{"order_id": 1})
	require.NoError(t, err)

	q.SetOnline(ctx, true)

	// While the first item is in flight the file still holds both; an
	// item leaves the file only after its own Apply succeeds.
	require.Len(t, applier.seen, 2)
	assert.Equal(t, []string{first.ID, second.ID}, applier.seen[0])
	assert.Equal(t, []string{second.ID}, applier.seen[1])
	assert.Empty(t, q.Pending())
}

func TestQueueSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	sm, err := client.OpenStateManager(path)
	require.NoError(t, err)

	q := client.NewSyncQueue(sm, &fakeApplier{})
	ctx := context.Background()
	q.SetOnline(ctx, false)
	item, err := q.Enqueue(ctx, client.ActionCreateOrder, map[string]interface{}{"table_id": 5})
	require.NoError(t, err)
	require.NoError(t, sm.Close())

	reopened, err := client.OpenStateManager(path)
	require.NoError(t, err)
	defer reopened.Close()

	applier := &fakeApplier{}
	q2 := client.NewSyncQueue(reopened, applier)
	pending := q2.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, item.ID, pending[0].ID)

	q2.Drain(ctx)
	assert.Equal(t, []string{client.ActionCreateOrder}, applier.appliedActions())
}

package main

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokulpos/restaurant-pos/client"
	"github.com/gokulpos/restaurant-pos/live"
	"github.com/gokulpos/restaurant-pos/models"
	"github.com/gokulpos/restaurant-pos/router"
	"github.com/gokulpos/restaurant-pos/store"
	"github.com/gokulpos/restaurant-pos/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "pos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	hub := live.NewHub()
	srv := httptest.NewServer(router.SetupRouter(st, hub))
	t.Cleanup(srv.Close)
	return srv
}

// TestEndToEndOrderFlow walks the main service flow through the API
// client: connect live, place an order, send it to the kitchen, bill
// it, and see every step arrive as a live event.
func TestEndToEndOrderFlow(t *testing.T) {
	srv := startServer(t)
	api := client.NewAPIClient(srv.URL)
	ctx := context.Background()

	events := make(chan string, 16)
	for _, event := range []string{
		live.EventConnected,
		live.EventOrderCreated,
		live.EventKitchenOrderCreated,
		live.EventOrderUpdated,
		live.EventBillCreated,
	} {
		ev := event
		api.On(ev, func(json.RawMessage) { events <- ev })
	}

	require.NoError(t, api.Connect(ctx))
	defer api.Close()
	expectEvent(t, events, live.EventConnected)

	menu, err := api.Menu(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, menu)

	order, err := api.CreateOrder(ctx, store.OrderDraft{
		TableID:   1,
		StaffName: "Ravi",
		Items: models.ItemLines{
			{ItemName: menu[0].Name, Quantity: 2, Price: menu[0].Price},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, order.ID)
	expectEvent(t, events, live.EventOrderCreated)

	ko, err := api.CreateKitchenOrder(ctx, store.KitchenOrderDraft{
		OrderID:   order.ID,
		StaffName: order.StaffName,
		TableID:   order.TableID,
		Items:     models.ItemLines{{ItemName: menu[0].Name, Quantity: 2, Price: menu[0].Price}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.KitchenStatusPending, ko.Status)
	expectEvent(t, events, live.EventKitchenOrderCreated)

	completed := models.OrderStatusCompleted
	order, err = api.UpdateOrder(ctx, order.ID, store.OrderUpdate{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, completed, order.Status)
	expectEvent(t, events, live.EventOrderUpdated)

	bill, err := api.CreateBill(ctx, store.BillDraft{
		OrderID:   order.ID,
		TableID:   order.TableID,
		StaffName: order.StaffName,
		Items:     models.ItemLines{{ItemName: menu[0].Name, Quantity: 2, Price: menu[0].Price}},
		Subtotal:  order.Total,
		Total:     order.Total,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, bill.BillNumber)
	expectEvent(t, events, live.EventBillCreated)

	info, err := api.SystemInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "local", info.Database)
	assert.True(t, info.Realtime)
}

// TestOfflineQueueReplaysThroughAPI queues writes while "offline" and
// replays them through the real HTTP surface once connectivity returns.
func TestOfflineQueueReplaysThroughAPI(t *testing.T) {
	srv := startServer(t)
	api := client.NewAPIClient(srv.URL)
	ctx := context.Background()

	sm, err := client.OpenStateManager(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	defer sm.Close()

	queue := client.NewSyncQueue(sm, api)
	queue.SetOnline(ctx, false)

	_, err = queue.Enqueue(ctx, client.ActionCreateOrder, store.OrderDraft{
		TableID:   3,
		StaffName: "Meena",
		Items:     models.ItemLines{{ItemName: "Samosa", Quantity: 1, Price: 8}},
	})
	require.NoError(t, err)
	require.Len(t, queue.Pending(), 1)

	orders, err := api.Orders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders, "nothing reaches the server while offline")

	queue.SetOnline(ctx, true)
	assert.Empty(t, queue.Pending())

	orders, err = api.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Meena", orders[0].StaffName)
	assert.Equal(t, 8.0, orders[0].Total)
}

func expectEvent(t *testing.T, events <-chan string, want string) {
	t.Helper()
	select {
	case got := <-events:
		require.Equal(t, want, got)
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for %q event", want)
	}
}

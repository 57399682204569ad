package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gokulpos/restaurant-pos/live"
	"github.com/gokulpos/restaurant-pos/models"
	"github.com/gokulpos/restaurant-pos/store"
	"github.com/gokulpos/restaurant-pos/utils"
	"github.com/gorilla/websocket"
)

// Handler receives the raw data payload of a live event.
type Handler func(data json.RawMessage)

// APIClient is the terminal-side client for the POS server: REST calls
// for state, a websocket subscription for live events. It satisfies
// Applier, so the sync queue can replay queued writes through it.
type APIClient struct {
	BaseURL string

	httpc *http.Client

	mu       sync.Mutex
	conn     *websocket.Conn
	handlers map[string][]Handler
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		httpc:    &http.Client{Timeout: 15 * time.Second},
		handlers: make(map[string][]Handler),
	}
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (a *APIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: %s (%d)", method, path, env.Message, resp.StatusCode)
	}
	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

func (a *APIClient) get(ctx context.Context, path string, out interface{}) error {
	return a.do(ctx, http.MethodGet, path, nil, out)
}

// Menu
func (a *APIClient) Menu(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := a.get(ctx, "/api/menu", &items)
	return items, err
}

func (a *APIClient) AddMenuItem(ctx context.Context, draft store.MenuItemDraft) (models.MenuItem, error) {
	var item models.MenuItem
	err := a.do(ctx, http.MethodPost, "/api/menu", draft, &item)
	return item, err
}

func (a *APIClient) Staff(ctx context.Context) ([]models.StaffMember, error) {
	var staff []models.StaffMember
	err := a.get(ctx, "/api/staff", &staff)
	return staff, err
}

func (a *APIClient) Orders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := a.get(ctx, "/api/orders", &orders)
	return orders, err
}

func (a *APIClient) CreateOrder(ctx context.Context, draft store.OrderDraft) (models.Order, error) {
	var order models.Order
	err := a.do(ctx, http.MethodPost, "/api/orders", draft, &order)
	return order, err
}

func (a *APIClient) UpdateOrder(ctx context.Context, id uint, updates store.OrderUpdate) (models.Order, error) {
	var order models.Order
	err := a.do(ctx, http.MethodPatch, fmt.Sprintf("/api/orders/%d", id), updates, &order)
	return order, err
}

func (a *APIClient) KitchenOrders(ctx context.Context) ([]models.KitchenOrder, error) {
	var orders []models.KitchenOrder
	err := a.get(ctx, "/api/kitchen-orders", &orders)
	return orders, err
}

func (a *APIClient) CreateKitchenOrder(ctx context.Context, draft store.KitchenOrderDraft) (models.KitchenOrder, error) {
	var order models.KitchenOrder
	err := a.do(ctx, http.MethodPost, "/api/kitchen-orders", draft, &order)
	return order, err
}

func (a *APIClient) UpdateKitchenOrder(ctx context.Context, id uint, updates store.KitchenOrderUpdate) (models.KitchenOrder, error) {
	var order models.KitchenOrder
	err := a.do(ctx, http.MethodPatch, fmt.Sprintf("/api/kitchen-orders/%d", id), updates, &order)
	return order, err
}

func (a *APIClient) Bills(ctx context.Context, search string) ([]models.Bill, error) {
	path := "/api/bills"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}
	var bills []models.Bill
	err := a.get(ctx, path, &bills)
	return bills, err
}

func (a *APIClient) CreateBill(ctx context.Context, draft store.BillDraft) (models.Bill, error) {
	var bill models.Bill
	err := a.do(ctx, http.MethodPost, "/api/bills", draft, &bill)
	return bill, err
}

func (a *APIClient) Settings(ctx context.Context) (map[string]string, error) {
	var settings map[string]string
	err := a.get(ctx, "/api/settings", &settings)
	return settings, err
}

type SystemInfo struct {
	Database      string          `json:"database"`
	Realtime      bool            `json:"realtime"`
	Features      map[string]bool `json:"features"`
	LiveClients   int             `json:"live_clients"`
	UptimeSeconds int64           `json:"uptime_seconds"`
}

func (a *APIClient) SystemInfo(ctx context.Context) (SystemInfo, error) {
	var info SystemInfo
	err := a.get(ctx, "/api/system-info", &info)
	return info, err
}

// On registers a handler for a live event. Handlers run on the read
// loop goroutine, so they must not block.
func (a *APIClient) On(event string, fn Handler) {
	a.mu.Lock()
	a.handlers[event] = append(a.handlers[event], fn)
	a.mu.Unlock()
}

func (a *APIClient) dispatch(event string, data json.RawMessage) {
	a.mu.Lock()
	fns := append([]Handler(nil), a.handlers[event]...)
	a.mu.Unlock()
	for _, fn := range fns {
		fn(data)
	}
}

func (a *APIClient) wsURL() string {
	u := a.BaseURL
	u = strings.Replace(u, "https://", "wss://", 1)
	u = strings.Replace(u, "http://", "ws://", 1)
	return u + "/ws"
}

// Connect dials the live channel and starts dispatching events until
// the connection drops. Events carry no payload history; on connect
// the terminal should re-fetch whatever state it renders.
func (a *APIClient) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, a.wsURL(), nil)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.conn = conn
	a.mu.Unlock()

	go a.readLoop(conn)
	return nil
}

func (a *APIClient) readLoop(conn *websocket.Conn) {
	defer func() {
		conn.Close()
		a.mu.Lock()
		if a.conn == conn {
			a.conn = nil
		}
		a.mu.Unlock()
		a.dispatch(live.EventDisconnected, nil)
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			utils.ErrorLogger.Printf("live message decode: %v", err)
			continue
		}
		a.dispatch(msg.Event, msg.Data)
	}
}

// Close tears down the live connection if one is up.
func (a *APIClient) Close() error {
	a.mu.Lock()
	conn := a.conn
	a.conn = nil
	a.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gokulpos/restaurant-pos/utils"
	"github.com/google/uuid"
)

// Actions a terminal may queue while the server is unreachable.
const (
	ActionCreateOrder        = "create_order"
	ActionUpdateOrder        = "update_order"
	ActionCreateKitchenOrder = "create_kitchen_order"
	ActionUpdateKitchenOrder = "update_kitchen_order"
	ActionCreateBill         = "create_bill"
)

// Sync item lifecycle states.
const (
	SyncQueued    = "queued"
	SyncInFlight  = "in_flight"
	SyncApplied   = "applied"
	SyncAbandoned = "abandoned"
)

const maxRetries = 3

// SyncItem is one queued write. The payload is the exact request body
// the terminal would have sent; replaying it later must be equivalent.
type SyncItem struct {
	ID        string          `json:"id"`
	Action    string          `json:"action"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
	Retries   int             `json:"retries"`
	State     string          `json:"state"`
}

// Applier replays a queued item against the server.
type Applier interface {
	Apply(ctx context.Context, item SyncItem) error
}

// SyncQueue holds writes made while offline and replays them in order
// once the server is reachable again. Items are persisted through the
// state manager before the first attempt, so a crash mid-queue loses
// nothing.
type SyncQueue struct {
	mu      sync.Mutex
	state   *StateManager
	applier Applier
	online  bool

	// OnAbandon is called after an item exhausts its retries and is
	// moved to the abandoned list.
	OnAbandon func(SyncItem)
}

func NewSyncQueue(state *StateManager, applier Applier) *SyncQueue {
	return &SyncQueue{state: state, applier: applier, online: true}
}

// Enqueue records a write. When online the queue drains immediately,
// so the caller sees at most one round-trip of delay.
func (q *SyncQueue) Enqueue(ctx context.Context, action string, payload interface{}) (SyncItem, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return SyncItem{}, err
	}
	item := SyncItem{
		ID:        uuid.NewString(),
		Action:    action,
		Payload:   raw,
		Timestamp: time.Now(),
		State:     SyncQueued,
	}
	if err := q.state.appendPending(item); err != nil {
		return SyncItem{}, err
	}

	q.mu.Lock()
	online := q.online
	q.mu.Unlock()
	if online {
		q.Drain(ctx)
	}
	return item, nil
}

// SetOnline flips connectivity. The offline-to-online edge triggers a
// drain; repeated online signals do not.
func (q *SyncQueue) SetOnline(ctx context.Context, online bool) {
	q.mu.Lock()
	was := q.online
	q.online = online
	q.mu.Unlock()
	if online && !was {
		q.Drain(ctx)
	}
}

func (q *SyncQueue) Online() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.online
}

// Pending returns the queued items oldest first.
func (q *SyncQueue) Pending() []SyncItem {
	return q.state.PendingItems()
}

// Drain replays every currently queued item in order. The snapshot is
// taken without touching the durable document: an item leaves it only
// when it has been applied or moved to the abandoned list, so a crash
// mid-drain loses nothing. Items enqueued while the drain is running
// are picked up by the next drain, not this one. A failed item stays
// queued until it has been tried maxRetries times, after which it is
// parked on the abandoned list for manual review.
func (q *SyncQueue) Drain(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.state.PendingItems()
	for _, item := range items {
		item.State = SyncInFlight
		err := q.applier.Apply(ctx, item)
		if err == nil {
			if perr := q.state.removePending(item.ID); perr != nil {
				utils.ErrorLogger.Printf("remove applied sync item %s: %v", item.ID, perr)
			}
			q.state.markSynced()
			continue
		}

		item.Retries++
		if item.Retries < maxRetries {
			item.State = SyncQueued
			if perr := q.state.replacePending(item); perr != nil {
				utils.ErrorLogger.Printf("persist retry of sync item %s: %v", item.ID, perr)
			}
			utils.ErrorLogger.Printf("sync %s (%s) failed, retry %d/%d: %v", item.Action, item.ID, item.Retries, maxRetries, err)
			continue
		}

		item.State = SyncAbandoned
		if perr := q.state.abandonPending(item); perr != nil {
			utils.ErrorLogger.Printf("park abandoned sync item %s: %v", item.ID, perr)
		}
		utils.ErrorLogger.Printf("sync %s (%s) abandoned after %d attempts: %v", item.Action, item.ID, item.Retries, err)
		if q.OnAbandon != nil {
			q.OnAbandon(item)
		}
	}
}

// idPayload pulls the record id out of an update payload; the rest of
// the payload is forwarded as the update body.
type idPayload struct {
	ID uint `json:"id"`
}

// Apply lets the API client serve as the queue's Applier: each action
// maps onto the REST call the terminal would have made directly.
func (a *APIClient) Apply(ctx context.Context, item SyncItem) error {
	switch item.Action {
	case ActionCreateOrder:
		return a.do(ctx, http.MethodPost, "/api/orders", json.RawMessage(item.Payload), nil)
	case ActionCreateKitchenOrder:
		return a.do(ctx, http.MethodPost, "/api/kitchen-orders", json.RawMessage(item.Payload), nil)
	case ActionCreateBill:
		return a.do(ctx, http.MethodPost, "/api/bills", json.RawMessage(item.Payload), nil)
	case ActionUpdateOrder:
		var p idPayload
		if err := json.Unmarshal(item.Payload, &p); err != nil {
			return err
		}
		return a.do(ctx, http.MethodPatch, fmt.Sprintf("/api/orders/%d", p.ID), json.RawMessage(item.Payload), nil)
	case ActionUpdateKitchenOrder:
		var p idPayload
		if err := json.Unmarshal(item.Payload, &p); err != nil {
			return err
		}
		return a.do(ctx, http.MethodPatch, fmt.Sprintf("/api/kitchen-orders/%d", p.ID), json.RawMessage(item.Payload), nil)
	default:
		utils.ErrorLogger.Printf("unknown sync action %q (%s), dropping", item.Action, item.ID)
		return nil
	}
}

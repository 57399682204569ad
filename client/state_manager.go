package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gokulpos/restaurant-pos/models"
	"github.com/gokulpos/restaurant-pos/utils"
)

// ActiveOrder is a table's in-progress draft on this terminal. Until
// the server confirms it, PendingConfirmation stays true and the draft
// survives restarts.
type ActiveOrder struct {
	OrderID             uint             `json:"order_id,omitempty"`
	TableID             int              `json:"table_id"`
	StaffName           string           `json:"staff_name"`
	Status              string           `json:"status"`
	Items               models.ItemLines `json:"items"`
	PendingConfirmation bool             `json:"pending_confirmation"`
	LastModified        time.Time        `json:"last_modified"`
}

// State is everything a terminal persists between runs.
type State struct {
	SessionID    string              `json:"session_id"`
	CurrentRole  string              `json:"current_role"`
	CurrentStaff string              `json:"current_staff"`
	ActiveOrders map[int]ActiveOrder `json:"active_orders"`
	PendingSync  []SyncItem          `json:"pending_sync"`
	Abandoned    []SyncItem          `json:"abandoned"`
	// CachedLists holds the last server snapshot per entity (menu,
	// orders, ...) so a terminal with no backend at all can still
	// render something.
	CachedLists map[string]json.RawMessage `json:"cached_lists,omitempty"`
	LastSync    time.Time                  `json:"last_sync"`
}

func defaultState() State {
	return State{
		SessionID:    uuid.NewString(),
		ActiveOrders: make(map[int]ActiveOrder),
	}
}

// StateManager owns the terminal's state file. Every mutation is
// written through immediately; the autosave ticker is a safety net for
// mutations made directly on the snapshot.
type StateManager struct {
	mu    sync.Mutex
	path  string
	state State
	stop  chan struct{}
	once  sync.Once
}

// OpenStateManager loads the state file, falling back to a fresh state
// when the file is missing or corrupt. A corrupt file is an accepted
// loss: the terminal re-fetches server state on connect.
func OpenStateManager(path string) (*StateManager, error) {
	sm := &StateManager{path: path, state: defaultState(), stop: make(chan struct{})}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// first run
	case err != nil:
		return nil, err
	default:
		var loaded State
		if jerr := json.Unmarshal(raw, &loaded); jerr != nil {
			utils.ErrorLogger.Printf("state file %s is corrupt, starting fresh: %v", path, jerr)
		} else {
			if loaded.SessionID == "" {
				loaded.SessionID = uuid.NewString()
			}
			if loaded.ActiveOrders == nil {
				loaded.ActiveOrders = make(map[int]ActiveOrder)
			}
			sm.state = loaded
		}
	}

	if err := sm.save(); err != nil {
		return nil, err
	}
	return sm, nil
}

// save writes the state atomically: a temp file in the same directory,
// then rename. Callers hold sm.mu.
func (sm *StateManager) save() error {
	raw, err := json.MarshalIndent(sm.state, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(sm.path), ".state-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), sm.path)
}

// Save flushes the current state to disk.
func (sm *StateManager) Save() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.save()
}

// StartAutoSave flushes on the given interval until Close.
func (sm *StateManager) StartAutoSave(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := sm.Save(); err != nil {
					utils.ErrorLogger.Printf("autosave state: %v", err)
				}
			case <-sm.stop:
				return
			}
		}
	}()
}

// Close stops autosaving and writes a final snapshot.
func (sm *StateManager) Close() error {
	sm.once.Do(func() { close(sm.stop) })
	return sm.Save()
}

// Snapshot returns a copy of the current state.
func (sm *StateManager) Snapshot() State {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.copyState()
}

func (sm *StateManager) copyState() State {
	s := sm.state
	s.ActiveOrders = make(map[int]ActiveOrder, len(sm.state.ActiveOrders))
	for k, v := range sm.state.ActiveOrders {
		s.ActiveOrders[k] = v
	}
	s.PendingSync = append([]SyncItem(nil), sm.state.PendingSync...)
	s.Abandoned = append([]SyncItem(nil), sm.state.Abandoned...)
	if sm.state.CachedLists != nil {
		s.CachedLists = make(map[string]json.RawMessage, len(sm.state.CachedLists))
		for k, v := range sm.state.CachedLists {
			s.CachedLists[k] = v
		}
	}
	return s
}

// SetSession records who is using the terminal.
func (sm *StateManager) SetSession(role, staff string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.state.CurrentRole = role
	sm.state.CurrentStaff = staff
	return sm.save()
}

func (sm *StateManager) Session() (role, staff string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.state.CurrentRole, sm.state.CurrentStaff
}

// ClearSession logs the user out: role, staff, and table drafts reset,
// but the sync queue is untouched. A logout must never drop queued
// writes.
func (sm *StateManager) ClearSession() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.state.CurrentRole = ""
	sm.state.CurrentStaff = ""
	sm.state.ActiveOrders = make(map[int]ActiveOrder)
	return sm.save()
}

// SetActiveOrder stores a table's draft.
func (sm *StateManager) SetActiveOrder(tableID int, order ActiveOrder) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	order.TableID = tableID
	order.LastModified = time.Now()
	sm.state.ActiveOrders[tableID] = order
	return sm.save()
}

func (sm *StateManager) ActiveOrder(tableID int) (ActiveOrder, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	order, ok := sm.state.ActiveOrders[tableID]
	return order, ok
}

// ConfirmActiveOrder replaces the draft wholesale with the server's
// canonical record, clearing the pending flag. Merging fields would
// risk keeping stale lines the server never saw.
func (sm *StateManager) ConfirmActiveOrder(tableID int, confirmed ActiveOrder) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	confirmed.TableID = tableID
	confirmed.PendingConfirmation = false
	confirmed.LastModified = time.Now()
	sm.state.ActiveOrders[tableID] = confirmed
	return sm.save()
}

func (sm *StateManager) RemoveActiveOrder(tableID int) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.state.ActiveOrders, tableID)
	return sm.save()
}

func (sm *StateManager) appendPending(item SyncItem) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.state.PendingSync = append(sm.state.PendingSync, item)
	return sm.save()
}

// removePending drops one item by id once it has been applied. Items
// stay in the durable document while in flight, so a crash mid-drain
// loses nothing.
func (sm *StateManager) removePending(id string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.state.PendingSync = withoutItem(sm.state.PendingSync, id)
	return sm.save()
}

// replacePending persists an updated copy of a queued item (retry
// counter, state) in place.
func (sm *StateManager) replacePending(item SyncItem) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for i := range sm.state.PendingSync {
		if sm.state.PendingSync[i].ID == item.ID {
			sm.state.PendingSync[i] = item
			break
		}
	}
	return sm.save()
}

// abandonPending moves an item from the queue to the abandoned list in
// one flush, so it is never absent from both.
func (sm *StateManager) abandonPending(item SyncItem) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.state.PendingSync = withoutItem(sm.state.PendingSync, item.ID)
	sm.state.Abandoned = append(sm.state.Abandoned, item)
	return sm.save()
}

func withoutItem(items []SyncItem, id string) []SyncItem {
	kept := items[:0]
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	return kept
}

func (sm *StateManager) PendingItems() []SyncItem {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return append([]SyncItem(nil), sm.state.PendingSync...)
}

func (sm *StateManager) AbandonedItems() []SyncItem {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return append([]SyncItem(nil), sm.state.Abandoned...)
}

// SetCachedList stores the latest server snapshot of an entity list.
func (sm *StateManager) SetCachedList(name string, list interface{}) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.state.CachedLists == nil {
		sm.state.CachedLists = make(map[string]json.RawMessage)
	}
	sm.state.CachedLists[name] = raw
	return sm.save()
}

// CachedList loads a previously cached entity list; ok is false when
// nothing was cached under that name.
func (sm *StateManager) CachedList(name string, out interface{}) (bool, error) {
	sm.mu.Lock()
	raw, ok := sm.state.CachedLists[name]
	sm.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (sm *StateManager) markSynced() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.state.LastSync = time.Now()
	if err := sm.save(); err != nil {
		utils.ErrorLogger.Printf("persist sync timestamp: %v", err)
	}
}

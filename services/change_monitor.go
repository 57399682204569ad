package services

import (
	"time"

	"github.com/gokulpos/restaurant-pos/live"
	"github.com/gokulpos/restaurant-pos/models"
	"github.com/gokulpos/restaurant-pos/utils"
	"gorm.io/gorm"
)

// ChangeMonitor drains the trigger-fed db_changes table and re-emits
// each row change as a live event. It is the derived sourcing strategy
// for the change notifier: mutations from other processes sharing the
// managed database reach this process's clients through it.
type ChangeMonitor struct {
	DB       *gorm.DB
	Hub      live.Broadcaster
	Interval time.Duration
	stop     chan struct{}
}

func NewChangeMonitor(db *gorm.DB, hub live.Broadcaster) *ChangeMonitor {
	return &ChangeMonitor{
		DB:       db,
		Hub:      hub,
		Interval: time.Second,
		stop:     make(chan struct{}),
	}
}

func (cm *ChangeMonitor) Start() {
	go func() {
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cm.drain()
			case <-cm.stop:
				return
			}
		}
	}()
}

func (cm *ChangeMonitor) Stop() {
	close(cm.stop)
}

func (cm *ChangeMonitor) drain() {
	var changes []models.DBChange
	err := cm.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("processed = ?", false).
			Order("changed_at ASC, id ASC").
			Limit(100).
			Find(&changes).Error; err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		ids := make([]uint, 0, len(changes))
		for _, change := range changes {
			ids = append(ids, change.ID)
		}
		return tx.Model(&models.DBChange{}).Where("id IN ?", ids).Update("processed", true).Error
	})
	if err != nil {
		utils.ErrorLogger.Printf("change monitor drain failed: %v", err)
		return
	}

	for _, change := range changes {
		cm.emit(change)
	}
}

func (cm *ChangeMonitor) emit(change models.DBChange) {
	switch change.TableName {
	case "menu":
		cm.Hub.Broadcast(live.EventMenuUpdated, map[string]interface{}{
			"action": change.ActionType, "id": change.RecordID,
		})
	case "staff":
		cm.Hub.Broadcast(live.EventStaffUpdated, map[string]interface{}{
			"action": change.ActionType, "id": change.RecordID,
		})
	case "orders":
		var order models.Order
		if change.ActionType == models.ChangeDelete {
			return
		}
		if err := cm.DB.Preload("Items").First(&order, change.RecordID).Error; err != nil {
			utils.ErrorLogger.Printf("change monitor: fetch order %d: %v", change.RecordID, err)
			return
		}
		if change.ActionType == models.ChangeInsert {
			cm.Hub.Broadcast(live.EventOrderCreated, order)
		} else {
			cm.Hub.Broadcast(live.EventOrderUpdated, order)
		}
	case "kitchen_orders":
		var order models.KitchenOrder
		if change.ActionType == models.ChangeDelete {
			return
		}
		if err := cm.DB.First(&order, change.RecordID).Error; err != nil {
			utils.ErrorLogger.Printf("change monitor: fetch kitchen order %d: %v", change.RecordID, err)
			return
		}
		if change.ActionType == models.ChangeInsert {
			cm.Hub.Broadcast(live.EventKitchenOrderCreated, order)
		} else {
			cm.Hub.Broadcast(live.EventKitchenOrderUpdated, order)
		}
	case "bills":
		if change.ActionType != models.ChangeInsert {
			return
		}
		var bill models.Bill
		if err := cm.DB.First(&bill, change.RecordID).Error; err != nil {
			utils.ErrorLogger.Printf("change monitor: fetch bill %d: %v", change.RecordID, err)
			return
		}
		cm.Hub.Broadcast(live.EventBillCreated, bill)
	case "settings":
		var setting models.Setting
		if err := cm.DB.Where("`key` = ?", change.RecordKey).First(&setting).Error; err != nil {
			utils.ErrorLogger.Printf("change monitor: fetch setting %q: %v", change.RecordKey, err)
			return
		}
		cm.Hub.Broadcast(live.EventSettingUpdated, setting)
	}
}

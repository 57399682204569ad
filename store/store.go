package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gokulpos/restaurant-pos/models"
	"github.com/gokulpos/restaurant-pos/utils"
	"gorm.io/gorm"
)

const (
	ModeManaged = "managed"
	ModeLocal   = "local"
)

// Store is the uniform data API over the two persistence backends. The
// active implementation is selected once at boot (config.OpenStore);
// call sites never branch on the backend.
//
// Reads degrade: on backend failure they log and return an empty or
// default result so the UI stays usable offline. Writes return the
// error so callers can decide to queue and retry, and on success return
// the canonical record as stored (backend-assigned ids and timestamps),
// never an echo of the input.
type Store interface {
	Mode() string
	SupportsChangeCapture() bool

	Menu(ctx context.Context) []models.MenuItem
	AddMenuItem(ctx context.Context, draft MenuItemDraft) (models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uint) error
	BulkUpdateMenu(ctx context.Context, drafts []MenuItemDraft) ([]models.MenuItem, error)

	Staff(ctx context.Context) []models.StaffMember
	AddStaff(ctx context.Context, name string) (models.StaffMember, error)
	DeleteStaff(ctx context.Context, id uint) error

	Orders(ctx context.Context) []models.Order
	CreateOrder(ctx context.Context, draft OrderDraft) (models.Order, error)
	UpdateOrder(ctx context.Context, id uint, updates OrderUpdate) (models.Order, error)

	KitchenOrders(ctx context.Context) []models.KitchenOrder
	CreateKitchenOrder(ctx context.Context, draft KitchenOrderDraft) (models.KitchenOrder, error)
	UpdateKitchenOrder(ctx context.Context, id uint, updates KitchenOrderUpdate) (models.KitchenOrder, error)

	Bills(ctx context.Context, search string) []models.Bill
	Bill(ctx context.Context, id uint) (models.Bill, bool)
	CreateBill(ctx context.Context, draft BillDraft) (models.Bill, error)

	Settings(ctx context.Context) map[string]string
	UpdateSetting(ctx context.Context, key, value string) (models.Setting, error)

	StaffPerformance(ctx context.Context) []StaffPerformance
	PopularItems(ctx context.Context) []PopularItem
	DailySales(ctx context.Context, days int) []DailySalesPoint
	HourlySales(ctx context.Context) []HourlySalesPoint

	Close() error
}

type MenuItemDraft struct {
	Category string  `json:"category"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
}

func (d MenuItemDraft) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("menu item name is required")
	}
	if d.Price < 0 {
		return fmt.Errorf("menu item %q: price must be >= 0", d.Name)
	}
	return nil
}

type OrderDraft struct {
	TableID   int              `json:"table_id"`
	StaffName string           `json:"staff_name"`
	Status    string           `json:"status,omitempty"`
	Items     models.ItemLines `json:"items"`
}

// OrderUpdate changes status and metadata only; an order's item set and
// total are fixed at creation.
type OrderUpdate struct {
	Status  *string `json:"status,omitempty"`
	TableID *int    `json:"table_id,omitempty"`
}

type KitchenOrderDraft struct {
	OrderID   uint             `json:"order_id"`
	BatchID   int64            `json:"batch_id"`
	StaffName string           `json:"staff_name"`
	TableID   int              `json:"table_id"`
	Items     models.ItemLines `json:"items"`
	Status    string           `json:"status,omitempty"`
}

type KitchenOrderUpdate struct {
	Status *string `json:"status,omitempty"`
}

type BillDraft struct {
	OrderID   uint             `json:"order_id"`
	TableID   int              `json:"table_id"`
	StaffName string           `json:"staff_name"`
	Items     models.ItemLines `json:"items"`
	Subtotal  float64          `json:"subtotal"`
	Tax       float64          `json:"tax"`
	Total     float64          `json:"total"`
}

func logReadError(backend, op string, err error) {
	utils.ErrorLogger.Printf("[%s] read %s failed, returning empty result: %v", backend, op, err)
}

// ensureStaff lazily creates a staff member (and their default
// permission row) on the first order placed under that name.
func ensureStaff(tx *gorm.DB, name string) error {
	var member models.StaffMember
	err := tx.Where("name = ?", name).First(&member).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	member = models.StaffMember{Name: name, Email: models.StaffEmail(name), Role: "staff"}
	if err := tx.Create(&member).Error; err != nil {
		return err
	}
	return tx.Create(&models.StaffPermission{StaffID: member.ID, AllowedStaffIDs: "[]"}).Error
}

func settingsFromRows(rows []models.Setting) map[string]string {
	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		settings[row.Key] = row.Value
	}
	return settings
}

func migrate(db *gorm.DB, extra ...interface{}) error {
	tables := []interface{}{
		&models.MenuItem{},
		&models.StaffMember{},
		&models.StaffPermission{},
		&models.Order{},
		&models.OrderItem{},
		&models.KitchenOrder{},
		&models.Bill{},
		&models.Setting{},
	}
	return db.AutoMigrate(append(tables, extra...)...)
}

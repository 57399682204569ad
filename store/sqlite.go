package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gokulpos/restaurant-pos/models"
	"github.com/gokulpos/restaurant-pos/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLite is the embedded fallback backend, used when the managed
// service is unreachable or unconfigured. It keeps the terminal fully
// usable with no network at all.
type SQLite struct {
	db *gorm.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %q: %w", path, err)
	}
	if err := db.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
		utils.ErrorLogger.Printf("[local] enabling WAL failed: %v", err)
	}
	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrate sqlite store: %w", err)
	}
	if err := seedDefaults(db, true); err != nil {
		return nil, fmt.Errorf("seed sqlite store: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Mode() string                { return ModeLocal }
func (s *SQLite) SupportsChangeCapture() bool { return false }

// Gorm exposes the underlying handle for tests.
func (s *SQLite) Gorm() *gorm.DB { return s.db }

func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLite) Menu(ctx context.Context) []models.MenuItem {
	var items []models.MenuItem
	if err := s.db.WithContext(ctx).Order("category, name").Find(&items).Error; err != nil {
		logReadError(ModeLocal, "menu", err)
		return []models.MenuItem{}
	}
	return items
}

func (s *SQLite) AddMenuItem(ctx context.Context, draft MenuItemDraft) (models.MenuItem, error) {
	if err := draft.validate(); err != nil {
		return models.MenuItem{}, err
	}
	item := models.MenuItem{Category: draft.Category, Name: draft.Name, Price: draft.Price}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return models.MenuItem{}, err
	}
	return item, nil
}

func (s *SQLite) DeleteMenuItem(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.MenuItem{}, id).Error
}

// BulkUpdateMenu has replace-all semantics. Delete and insert run in
// one transaction; an insert failure (constraint violation included)
// rolls the whole menu back to its pre-call snapshot.
func (s *SQLite) BulkUpdateMenu(ctx context.Context, drafts []MenuItemDraft) ([]models.MenuItem, error) {
	items := make([]models.MenuItem, 0, len(drafts))
	for _, d := range drafts {
		items = append(items, models.MenuItem{Category: d.Category, Name: d.Name, Price: d.Price})
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM menu").Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Menu(ctx), nil
}

func (s *SQLite) Staff(ctx context.Context) []models.StaffMember {
	var staff []models.StaffMember
	if err := s.db.WithContext(ctx).Order("name").Find(&staff).Error; err != nil {
		logReadError(ModeLocal, "staff", err)
		return []models.StaffMember{}
	}
	return staff
}

// AddStaff is two-step: the staff row, then the default permission row.
// A failed second step deletes the first so a staff member without
// permissions is never observably persisted.
func (s *SQLite) AddStaff(ctx context.Context, name string) (models.StaffMember, error) {
	if strings.TrimSpace(name) == "" {
		return models.StaffMember{}, errors.New("staff name is required")
	}
	member := models.StaffMember{Name: name, Email: models.StaffEmail(name), Role: "staff"}
	if err := s.db.WithContext(ctx).Create(&member).Error; err != nil {
		return models.StaffMember{}, err
	}
	perm := models.StaffPermission{StaffID: member.ID, AllowedStaffIDs: "[]"}
	if err := s.db.WithContext(ctx).Create(&perm).Error; err != nil {
		if delErr := s.db.WithContext(ctx).Delete(&models.StaffMember{}, member.ID).Error; delErr != nil {
			utils.ErrorLogger.Printf("[local] rollback of staff %q failed: %v", name, delErr)
		}
		return models.StaffMember{}, fmt.Errorf("create staff permissions for %q: %w", name, err)
	}
	return member, nil
}

func (s *SQLite) DeleteStaff(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("staff_id = ?", id).Delete(&models.StaffPermission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.StaffMember{}, id).Error
	})
}

func (s *SQLite) Orders(ctx context.Context) []models.Order {
	var orders []models.Order
	if err := s.db.WithContext(ctx).Preload("Items").Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		logReadError(ModeLocal, "orders", err)
		return []models.Order{}
	}
	return orders
}

func (s *SQLite) CreateOrder(ctx context.Context, draft OrderDraft) (models.Order, error) {
	status := draft.Status
	if status == "" {
		status = models.OrderStatusPending
	}
	var orderID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureStaff(tx, draft.StaffName); err != nil {
			return err
		}
		order := models.Order{TableID: draft.TableID, StaffName: draft.StaffName, Status: status}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		var total float64
		for _, line := range draft.Items {
			qty := line.Quantity
			if qty < 1 {
				qty = 1
			}
			item := models.OrderItem{OrderID: order.ID, ItemName: line.ItemName, Quantity: qty, Price: line.Price}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			total += line.Price * float64(qty)
		}
		if err := tx.Model(&order).Update("total", utils.Round2(total)).Error; err != nil {
			return err
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	return s.orderByID(ctx, orderID)
}

func (s *SQLite) UpdateOrder(ctx context.Context, id uint, updates OrderUpdate) (models.Order, error) {
	fields := map[string]interface{}{}
	if updates.Status != nil {
		fields["status"] = *updates.Status
		if *updates.Status == models.OrderStatusCompleted {
			fields["completed_at"] = time.Now()
		}
	}
	if updates.TableID != nil {
		fields["table_id"] = *updates.TableID
	}
	if len(fields) > 0 {
		result := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields)
		if result.Error != nil {
			return models.Order{}, result.Error
		}
		if result.RowsAffected == 0 {
			return models.Order{}, gorm.ErrRecordNotFound
		}
	}
	return s.orderByID(ctx, id)
}

func (s *SQLite) orderByID(ctx context.Context, id uint) (models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func (s *SQLite) KitchenOrders(ctx context.Context) []models.KitchenOrder {
	var orders []models.KitchenOrder
	if err := s.db.WithContext(ctx).Order("sent_at DESC, id DESC").Find(&orders).Error; err != nil {
		logReadError(ModeLocal, "kitchen orders", err)
		return []models.KitchenOrder{}
	}
	return orders
}

func (s *SQLite) CreateKitchenOrder(ctx context.Context, draft KitchenOrderDraft) (models.KitchenOrder, error) {
	status := draft.Status
	if status == "" {
		status = models.KitchenStatusPending
	}
	batch := draft.BatchID
	if batch == 0 {
		batch = time.Now().UnixMilli()
	}
	order := models.KitchenOrder{
		OrderID:   draft.OrderID,
		BatchID:   batch,
		StaffName: draft.StaffName,
		TableID:   draft.TableID,
		Items:     draft.Items,
		Status:    status,
		SentAt:    time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return models.KitchenOrder{}, err
	}
	return order, nil
}

func (s *SQLite) UpdateKitchenOrder(ctx context.Context, id uint, updates KitchenOrderUpdate) (models.KitchenOrder, error) {
	if updates.Status != nil {
		fields := map[string]interface{}{"status": *updates.Status}
		if *updates.Status == models.KitchenStatusReady {
			fields["ready_at"] = time.Now()
		}
		result := s.db.WithContext(ctx).Model(&models.KitchenOrder{}).Where("id = ?", id).Updates(fields)
		if result.Error != nil {
			return models.KitchenOrder{}, result.Error
		}
		if result.RowsAffected == 0 {
			return models.KitchenOrder{}, gorm.ErrRecordNotFound
		}
	}
	var order models.KitchenOrder
	if err := s.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return models.KitchenOrder{}, err
	}
	return order, nil
}

func (s *SQLite) Bills(ctx context.Context, search string) []models.Bill {
	query := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("bill_number LIKE ? OR staff_name LIKE ?", like, like)
	}
	var bills []models.Bill
	if err := query.Find(&bills).Error; err != nil {
		logReadError(ModeLocal, "bills", err)
		return []models.Bill{}
	}
	return bills
}

func (s *SQLite) Bill(ctx context.Context, id uint) (models.Bill, bool) {
	var bill models.Bill
	if err := s.db.WithContext(ctx).First(&bill, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logReadError(ModeLocal, "bill", err)
		}
		return models.Bill{}, false
	}
	return bill, true
}

func (s *SQLite) CreateBill(ctx context.Context, draft BillDraft) (models.Bill, error) {
	bill := models.Bill{
		OrderID:    draft.OrderID,
		BillNumber: models.GenerateBillNumber(),
		TableID:    draft.TableID,
		StaffName:  draft.StaffName,
		Items:      draft.Items,
		Subtotal:   utils.Round2(draft.Subtotal),
		Tax:        utils.Round2(draft.Tax),
		Total:      utils.Round2(draft.Total),
	}
	if err := s.db.WithContext(ctx).Create(&bill).Error; err != nil {
		return models.Bill{}, err
	}
	return bill, nil
}

func (s *SQLite) Settings(ctx context.Context) map[string]string {
	var rows []models.Setting
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		logReadError(ModeLocal, "settings", err)
		return map[string]string{}
	}
	return settingsFromRows(rows)
}

func (s *SQLite) UpdateSetting(ctx context.Context, key, value string) (models.Setting, error) {
	if strings.TrimSpace(key) == "" {
		return models.Setting{}, errors.New("setting key is required")
	}
	row := models.Setting{Key: key, Value: hashSettingValue(key, value)}
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return models.Setting{}, err
	}
	return row, nil
}

func (s *SQLite) StaffPerformance(ctx context.Context) []StaffPerformance {
	var bills []models.Bill
	if err := s.db.WithContext(ctx).Select("staff_name", "total").Find(&bills).Error; err != nil {
		logReadError(ModeLocal, "staff performance", err)
		return []StaffPerformance{}
	}
	return aggregateStaffPerformance(bills)
}

func (s *SQLite) PopularItems(ctx context.Context) []PopularItem {
	var items []models.OrderItem
	if err := s.db.WithContext(ctx).Select("item_name", "quantity", "price").Find(&items).Error; err != nil {
		logReadError(ModeLocal, "popular items", err)
		return []PopularItem{}
	}
	return aggregatePopularItems(items)
}

func (s *SQLite) DailySales(ctx context.Context, days int) []DailySalesPoint {
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	var bills []models.Bill
	if err := s.db.WithContext(ctx).Where("created_at >= ?", cutoff).Find(&bills).Error; err != nil {
		logReadError(ModeLocal, "daily sales", err)
		return []DailySalesPoint{}
	}
	return aggregateDailySales(bills)
}

func (s *SQLite) HourlySales(ctx context.Context) []HourlySalesPoint {
	cutoff := time.Now().Add(-24 * time.Hour)
	var bills []models.Bill
	if err := s.db.WithContext(ctx).Where("created_at >= ?", cutoff).Find(&bills).Error; err != nil {
		logReadError(ModeLocal, "hourly sales", err)
		return []HourlySalesPoint{}
	}
	return aggregateHourlySales(bills)
}

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gokulpos/restaurant-pos/models"
	"github.com/gokulpos/restaurant-pos/utils"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// opTimeout bounds every managed-backend call so a stalled server never
// holds a sync-queue item in-flight indefinitely.
const opTimeout = 15 * time.Second

// MySQL is the managed relational backend. Its writes feed the
// trigger-based change log drained by services.ChangeMonitor, so
// mutations from other processes still reach connected clients.
type MySQL struct {
	db *gorm.DB
}

func OpenMySQL(dsn string) (*MySQL, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open managed store: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping managed store: %w", err)
	}

	if err := migrate(db, &models.DBChange{}); err != nil {
		return nil, fmt.Errorf("migrate managed store: %w", err)
	}
	if err := seedDefaults(db, false); err != nil {
		return nil, fmt.Errorf("seed managed store: %w", err)
	}
	return &MySQL{db: db}, nil
}

func (s *MySQL) Mode() string                { return ModeManaged }
func (s *MySQL) SupportsChangeCapture() bool { return true }

// Gorm exposes the underlying handle for trigger installation and the
// change monitor.
func (s *MySQL) Gorm() *gorm.DB { return s.db }

func (s *MySQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *MySQL) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, opTimeout)
}

func (s *MySQL) Menu(ctx context.Context) []models.MenuItem {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var items []models.MenuItem
	if err := s.db.WithContext(ctx).Order("category, name").Find(&items).Error; err != nil {
		logReadError(ModeManaged, "menu", err)
		return []models.MenuItem{}
	}
	return items
}

func (s *MySQL) AddMenuItem(ctx context.Context, draft MenuItemDraft) (models.MenuItem, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	if err := draft.validate(); err != nil {
		return models.MenuItem{}, err
	}
	item := models.MenuItem{Category: draft.Category, Name: draft.Name, Price: draft.Price}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return models.MenuItem{}, err
	}
	return item, nil
}

func (s *MySQL) DeleteMenuItem(ctx context.Context, id uint) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.db.WithContext(ctx).Delete(&models.MenuItem{}, id).Error
}

// BulkUpdateMenu replaces the whole menu inside one transaction; any
// insert failure rolls back to the pre-call snapshot.
func (s *MySQL) BulkUpdateMenu(ctx context.Context, drafts []MenuItemDraft) ([]models.MenuItem, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
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

func (s *MySQL) Staff(ctx context.Context) []models.StaffMember {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var staff []models.StaffMember
	if err := s.db.WithContext(ctx).Order("name").Find(&staff).Error; err != nil {
		logReadError(ModeManaged, "staff", err)
		return []models.StaffMember{}
	}
	return staff
}

func (s *MySQL) AddStaff(ctx context.Context, name string) (models.StaffMember, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	if strings.TrimSpace(name) == "" {
		return models.StaffMember{}, errors.New("staff name is required")
	}
	member := models.StaffMember{Name: name, Email: models.StaffEmail(name), Role: "staff"}
	if err := s.db.WithContext(ctx).Create(&member).Error; err != nil {
		return models.StaffMember{}, err
	}
	perm := models.StaffPermission{StaffID: member.ID, AllowedStaffIDs: "[]"}
	if err := s.db.WithContext(ctx).Create(&perm).Error; err != nil {
		// Compensating delete; the two steps are not one transaction
		// because permission storage may live in a separate service.
		if delErr := s.db.WithContext(ctx).Delete(&models.StaffMember{}, member.ID).Error; delErr != nil {
			utils.ErrorLogger.Printf("[managed] rollback of staff %q failed: %v", name, delErr)
		}
		return models.StaffMember{}, fmt.Errorf("create staff permissions for %q: %w", name, err)
	}
	return member, nil
}

func (s *MySQL) DeleteStaff(ctx context.Context, id uint) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("staff_id = ?", id).Delete(&models.StaffPermission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.StaffMember{}, id).Error
	})
}

func (s *MySQL) Orders(ctx context.Context) []models.Order {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var orders []models.Order
	if err := s.db.WithContext(ctx).Preload("Items").Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		logReadError(ModeManaged, "orders", err)
		return []models.Order{}
	}
	return orders
}

func (s *MySQL) CreateOrder(ctx context.Context, draft OrderDraft) (models.Order, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
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
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Items").First(&order, orderID).Error; err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func (s *MySQL) UpdateOrder(ctx context.Context, id uint, updates OrderUpdate) (models.Order, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
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
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func (s *MySQL) KitchenOrders(ctx context.Context) []models.KitchenOrder {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var orders []models.KitchenOrder
	if err := s.db.WithContext(ctx).Order("sent_at DESC, id DESC").Find(&orders).Error; err != nil {
		logReadError(ModeManaged, "kitchen orders", err)
		return []models.KitchenOrder{}
	}
	return orders
}

func (s *MySQL) CreateKitchenOrder(ctx context.Context, draft KitchenOrderDraft) (models.KitchenOrder, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
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

func (s *MySQL) UpdateKitchenOrder(ctx context.Context, id uint, updates KitchenOrderUpdate) (models.KitchenOrder, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
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

func (s *MySQL) Bills(ctx context.Context, search string) []models.Bill {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	query := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("bill_number LIKE ? OR staff_name LIKE ?", like, like)
	}
	var bills []models.Bill
	if err := query.Find(&bills).Error; err != nil {
		logReadError(ModeManaged, "bills", err)
		return []models.Bill{}
	}
	return bills
}

func (s *MySQL) Bill(ctx context.Context, id uint) (models.Bill, bool) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var bill models.Bill
	if err := s.db.WithContext(ctx).First(&bill, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logReadError(ModeManaged, "bill", err)
		}
		return models.Bill{}, false
	}
	return bill, true
}

func (s *MySQL) CreateBill(ctx context.Context, draft BillDraft) (models.Bill, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
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

func (s *MySQL) Settings(ctx context.Context) map[string]string {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var rows []models.Setting
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		logReadError(ModeManaged, "settings", err)
		return map[string]string{}
	}
	return settingsFromRows(rows)
}

func (s *MySQL) UpdateSetting(ctx context.Context, key, value string) (models.Setting, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	if strings.TrimSpace(key) == "" {
		return models.Setting{}, errors.New("setting key is required")
	}
	row := models.Setting{Key: key, Value: hashSettingValue(key, value)}
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return models.Setting{}, err
	}
	return row, nil
}

func (s *MySQL) StaffPerformance(ctx context.Context) []StaffPerformance {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var bills []models.Bill
	if err := s.db.WithContext(ctx).Select("staff_name", "total").Find(&bills).Error; err != nil {
		logReadError(ModeManaged, "staff performance", err)
		return []StaffPerformance{}
	}
	return aggregateStaffPerformance(bills)
}

func (s *MySQL) PopularItems(ctx context.Context) []PopularItem {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var items []models.OrderItem
	if err := s.db.WithContext(ctx).Select("item_name", "quantity", "price").Find(&items).Error; err != nil {
		logReadError(ModeManaged, "popular items", err)
		return []PopularItem{}
	}
	return aggregatePopularItems(items)
}

func (s *MySQL) DailySales(ctx context.Context, days int) []DailySalesPoint {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	var bills []models.Bill
	if err := s.db.WithContext(ctx).Where("created_at >= ?", cutoff).Find(&bills).Error; err != nil {
		logReadError(ModeManaged, "daily sales", err)
		return []DailySalesPoint{}
	}
	return aggregateDailySales(bills)
}

func (s *MySQL) HourlySales(ctx context.Context) []HourlySalesPoint {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	cutoff := time.Now().Add(-24 * time.Hour)
	var bills []models.Bill
	if err := s.db.WithContext(ctx).Where("created_at >= ?", cutoff).Find(&bills).Error; err != nil {
		logReadError(ModeManaged, "hourly sales", err)
		return []HourlySalesPoint{}
	}
	return aggregateHourlySales(bills)
}

package models

import "time"

const (
	KitchenStatusPending   = "pending"
	KitchenStatusPreparing = "preparing"
	KitchenStatusReady     = "ready"
)

// KitchenOrder is a projection of an Order (or a partial batch of it)
// for the kitchen display. BatchID groups items sent together; it does
// not have to cover the full parent order.
type KitchenOrder struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	OrderID   uint       `gorm:"not null;index" json:"order_id"`
	BatchID   int64      `gorm:"not null" json:"batch_id"`
	StaffName string     `gorm:"type:varchar(255);not null" json:"staff_name"`
	TableID   int        `gorm:"not null" json:"table_id"`
	Items     ItemLines  `gorm:"type:text;not null" json:"items"`
	Status    string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	SentAt    time.Time  `gorm:"not null" json:"sent_at"`
	ReadyAt   *time.Time `json:"ready_at,omitempty"`
}

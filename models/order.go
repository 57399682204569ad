package models

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	TableID     int         `gorm:"not null" json:"table_id"`
	StaffName   string      `gorm:"type:varchar(255);not null;index" json:"staff_name"`
	Status      string      `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Total       float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total"`
	CreatedAt   time.Time   `gorm:"not null" json:"created_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	Items       []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Bill is immutable once created.
type Bill struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	BillNumber string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"bill_number"`
	TableID    int       `gorm:"not null" json:"table_id"`
	StaffName  string    `gorm:"type:varchar(255);not null" json:"staff_name"`
	Items      ItemLines `gorm:"type:text;not null" json:"items"`
	Subtotal   float64   `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Tax        float64   `gorm:"type:decimal(10,2);not null;default:0.00" json:"tax"`
	Total      float64   `gorm:"type:decimal(10,2);not null" json:"total"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

// GenerateBillNumber keeps the time-based shape readable on printed
// bills while the random suffix guarantees uniqueness under concurrent
// creation.
func GenerateBillNumber() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("BILL-%d-%s", time.Now().UnixMilli(), strings.ToUpper(suffix))
}

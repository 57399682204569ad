package models

import "time"

type MenuItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Category  string    `gorm:"type:varchar(100);not null;index:idx_menu_category" json:"category"`
	Name      string    `gorm:"type:varchar(255);not null;check:name <> ''" json:"name"`
	Price     float64   `gorm:"type:decimal(10,2);not null;check:price >= 0" json:"price"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (MenuItem) TableName() string {
	return "menu"
}

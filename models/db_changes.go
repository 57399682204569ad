package models

import "time"

// DBChange is the change-capture row written by the managed backend's
// triggers and drained by services.ChangeMonitor. RecordKey carries the
// key for tables without a numeric id (settings).
type DBChange struct {
	ID         uint      `gorm:"primaryKey"`
	TableName  string    `gorm:"type:varchar(50);not null;index:idx_table_action"`
	RecordID   int64     `gorm:"not null"`
	RecordKey  string    `gorm:"type:varchar(100);not null;default:''"`
	ActionType string    `gorm:"type:varchar(10);not null;index:idx_table_action"`
	ChangedAt  time.Time `gorm:"not null"`
	Processed  bool      `gorm:"default:false;index:idx_processed"`
}

const (
	ChangeInsert = "INSERT"
	ChangeUpdate = "UPDATE"
	ChangeDelete = "DELETE"
)

package database

import (
	"fmt"

	"github.com/gokulpos/restaurant-pos/utils"
	"gorm.io/gorm"
)

// InstallTriggers creates the MySQL triggers that record every row
// change into db_changes. The change monitor drains that table, so
// writes performed by other processes against the same database still
// fan out to this process's live clients.
func InstallTriggers(db *gorm.DB) error {
	tables := []string{"menu", "staff", "orders", "kitchen_orders", "bills"}

	for _, table := range tables {
		for _, action := range []string{"INSERT", "UPDATE", "DELETE"} {
			row := "NEW"
			if action == "DELETE" {
				row = "OLD"
			}
			name := fmt.Sprintf("trg_%s_%s", table, action)
			drop := fmt.Sprintf("DROP TRIGGER IF EXISTS %s", name)
			create := fmt.Sprintf(
				`CREATE TRIGGER %s AFTER %s ON %s FOR EACH ROW
				 INSERT INTO db_changes (table_name, record_id, record_key, action_type, changed_at, processed)
				 VALUES ('%s', %s.id, '', '%s', NOW(), FALSE)`,
				name, action, table, table, row, action)
			if err := execTrigger(db, drop, create); err != nil {
				return err
			}
		}
	}

	// settings is keyed by a string; record_key carries the key and
	// record_id stays zero.
	for _, action := range []string{"INSERT", "UPDATE"} {
		row := "NEW"
		name := fmt.Sprintf("trg_settings_%s", action)
		drop := fmt.Sprintf("DROP TRIGGER IF EXISTS %s", name)
		create := fmt.Sprintf(
			`CREATE TRIGGER %s AFTER %s ON settings FOR EACH ROW
			 INSERT INTO db_changes (table_name, record_id, record_key, action_type, changed_at, processed)
			 VALUES ('settings', 0, %s.`+"`key`"+`, '%s', NOW(), FALSE)`,
			name, action, row, action)
		if err := execTrigger(db, drop, create); err != nil {
			return err
		}
	}

	utils.InfoLogger.Println("change-capture triggers installed")
	return nil
}

func execTrigger(db *gorm.DB, drop, create string) error {
	if err := db.Exec(drop).Error; err != nil {
		return err
	}
	return db.Exec(create).Error
}

package config

import (
	"os"

	"github.com/gokulpos/restaurant-pos/store"
	"github.com/gokulpos/restaurant-pos/utils"
)

// OpenStore performs the boot-time backend selection: if a managed DSN
// is configured and the server answers, every call site gets the
// managed store; otherwise the embedded local store. Missing or broken
// backend configuration must never prevent startup.
func OpenStore() (store.Store, error) {
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		st, err := store.OpenMySQL(dsn)
		if err == nil {
			utils.InfoLogger.Println("database mode: managed (MySQL)")
			return st, nil
		}
		utils.ErrorLogger.Printf("managed backend unavailable, falling back to local store: %v", err)
	} else {
		utils.InfoLogger.Println("MYSQL_DSN not set, using local store")
	}

	path := os.Getenv("POS_DB_FILE")
	if path == "" {
		path = "restaurant.db"
	}
	st, err := store.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("database mode: local (SQLite, %s)", path)
	return st, nil
}

package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/gokulpos/restaurant-pos/config"
	"github.com/gokulpos/restaurant-pos/database"
	"github.com/gokulpos/restaurant-pos/live"
	"github.com/gokulpos/restaurant-pos/router"
	"github.com/gokulpos/restaurant-pos/services"
	"github.com/gokulpos/restaurant-pos/store"
	"github.com/gokulpos/restaurant-pos/utils"
)

func main() {
	_ = godotenv.Load()
	utils.InitLogger()

	st, err := config.OpenStore()
	if err != nil {
		utils.ErrorLogger.Fatalf("open store: %v", err)
	}
	defer st.Close()

	hub := live.NewHub()

	// On the managed backend, writes from other POS instances reach us
	// through change capture: triggers feed the change journal and the
	// monitor turns journal rows into live events. The local backend
	// has a single writer, so direct broadcasts cover everything.
	if m, ok := st.(*store.MySQL); ok {
		if err := database.InstallTriggers(m.Gorm()); err != nil {
			utils.ErrorLogger.Printf("install change capture triggers: %v", err)
		} else {
			monitor := services.NewChangeMonitor(m.Gorm(), hub)
			monitor.Interval = 500 * time.Millisecond
			monitor.Start()
			defer monitor.Stop()
		}
	}

	r := router.SetupRouter(st, hub)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Server started at port %s (mode=%s)", port, st.Mode())
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatalf("server stopped: %v", err)
	}
}

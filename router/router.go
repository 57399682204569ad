package router

import (
	"github.com/gin-gonic/gin"
	"github.com/gokulpos/restaurant-pos/controllers"
	"github.com/gokulpos/restaurant-pos/live"
	"github.com/gokulpos/restaurant-pos/middlewares"
	"github.com/gokulpos/restaurant-pos/store"
)

// SetupRouter wires every HTTP and websocket route onto one engine.
// Handlers get the store and hub explicitly; nothing reaches for
// globals.
func SetupRouter(st store.Store, hub *live.Hub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.CORSMiddlewares())

	limiter := middlewares.NewRateLimiter(100, 60)
	r.Use(limiter.RateLimit())

	menuCtrl := controllers.NewMenuController(st, hub)
	staffCtrl := controllers.NewStaffController(st, hub)
	orderCtrl := controllers.NewOrderController(st, hub)
	kitchenCtrl := controllers.NewKitchenController(st, hub)
	billCtrl := controllers.NewBillController(st, hub)
	settingCtrl := controllers.NewSettingController(st, hub)
	analyticsCtrl := controllers.NewAnalyticsController(st)
	systemCtrl := controllers.NewSystemController(st, hub)
	liveCtrl := controllers.NewLiveController(hub)
	authCtrl := controllers.NewAuthController(st)

	r.GET("/ws", liveCtrl.Serve)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/owner", middlewares.NewStrictRateLimiter(), authCtrl.OwnerLogin)
			auth.GET("/verify", middlewares.RequireOwner(), authCtrl.Verify)
		}

		api.GET("/menu", menuCtrl.GetMenu)
		api.POST("/menu", menuCtrl.AddMenuItem)
		api.DELETE("/menu/:id", menuCtrl.DeleteMenuItem)
		api.POST("/menu/bulk", middlewares.RequireOwner(), menuCtrl.BulkUpdateMenu)

		api.GET("/staff", staffCtrl.GetStaff)
		api.POST("/staff", staffCtrl.AddStaff)
		api.DELETE("/staff/:id", middlewares.RequireOwner(), staffCtrl.DeleteStaff)

		api.GET("/orders", orderCtrl.GetOrders)
		api.POST("/orders", orderCtrl.CreateOrder)
		api.PATCH("/orders/:id", orderCtrl.UpdateOrder)

		api.GET("/kitchen-orders", kitchenCtrl.GetKitchenOrders)
		api.POST("/kitchen-orders", kitchenCtrl.CreateKitchenOrder)
		api.PATCH("/kitchen-orders/:id", kitchenCtrl.UpdateKitchenOrder)

		api.GET("/bills", billCtrl.GetBills)
		api.GET("/bills/:id", billCtrl.GetBill)
		api.POST("/bills", billCtrl.CreateBill)

		api.GET("/settings", settingCtrl.GetSettings)
		api.POST("/settings", middlewares.RequireOwner(), settingCtrl.UpdateSetting)

		analytics := api.Group("/analytics", middlewares.RequireOwner())
		{
			analytics.GET("/staff-performance", analyticsCtrl.GetStaffPerformance)
			analytics.GET("/popular-items", analyticsCtrl.GetPopularItems)
			analytics.GET("/daily-sales", analyticsCtrl.GetDailySales)
			analytics.GET("/hourly-sales", analyticsCtrl.GetHourlySales)
		}

		api.GET("/system-info", systemCtrl.GetInfo)
		api.GET("/health", systemCtrl.Health)
	}

	return r
}

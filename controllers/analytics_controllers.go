package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gokulpos/restaurant-pos/store"
	"github.com/gokulpos/restaurant-pos/utils"
)

type AnalyticsController struct {
	Store store.Store
}

func NewAnalyticsController(st store.Store) *AnalyticsController {
	return &AnalyticsController{Store: st}
}

// GetStaffPerformance
func (ac *AnalyticsController) GetStaffPerformance(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Staff performance", ac.Store.StaffPerformance(c.Request.Context()))
}

// GetPopularItems
func (ac *AnalyticsController) GetPopularItems(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Popular items", ac.Store.PopularItems(c.Request.Context()))
}

// GetDailySales accepts ?days=N, default 30.
func (ac *AnalyticsController) GetDailySales(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days < 1 {
		days = 30
	}
	utils.RespondJSON(c, http.StatusOK, "Daily sales", ac.Store.DailySales(c.Request.Context(), days))
}

// GetHourlySales
func (ac *AnalyticsController) GetHourlySales(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Hourly sales", ac.Store.HourlySales(c.Request.Context()))
}

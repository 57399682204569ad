package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gokulpos/restaurant-pos/live"
	"github.com/gokulpos/restaurant-pos/store"
	"github.com/gokulpos/restaurant-pos/utils"
)

type SettingController struct {
	Store store.Store
	Hub   live.Broadcaster
}

func NewSettingController(st store.Store, hub live.Broadcaster) *SettingController {
	return &SettingController{Store: st, Hub: hub}
}

// GetSettings returns every setting except the owner password hash.
func (sc *SettingController) GetSettings(c *gin.Context) {
	settings := sc.Store.Settings(c.Request.Context())
	delete(settings, store.SettingOwnerPassword)
	utils.RespondJSON(c, http.StatusOK, "Settings", settings)
}

// UpdateSetting upserts one key. The owner password is hashed by the
// store before it lands, and its value is never echoed or broadcast.
func (sc *SettingController) UpdateSetting(c *gin.Context) {
	var req struct {
		Key   string `json:"key" binding:"required"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	setting, err := sc.Store.UpdateSetting(c.Request.Context(), req.Key, req.Value)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	payload := gin.H{"key": setting.Key}
	body := gin.H{"key": setting.Key}
	if setting.Key != store.SettingOwnerPassword {
		payload["value"] = setting.Value
		body["value"] = setting.Value
	}
	sc.Hub.Broadcast(live.EventSettingUpdated, payload)
	utils.RespondJSON(c, http.StatusOK, "Setting updated", body)
}

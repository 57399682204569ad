package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gokulpos/restaurant-pos/live"
	"github.com/gokulpos/restaurant-pos/store"
	"github.com/gokulpos/restaurant-pos/utils"
)

type MenuController struct {
	Store store.Store
	Hub   live.Broadcaster
}

func NewMenuController(st store.Store, hub live.Broadcaster) *MenuController {
	return &MenuController{Store: st, Hub: hub}
}

// GetMenu
func (mc *MenuController) GetMenu(c *gin.Context) {
	items := mc.Store.Menu(c.Request.Context())
	utils.RespondJSON(c, http.StatusOK, "List of menu items", items)
}

// AddMenuItem
func (mc *MenuController) AddMenuItem(c *gin.Context) {
	var draft store.MenuItemDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := mc.Store.AddMenuItem(c.Request.Context(), draft)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	mc.Hub.Broadcast(live.EventMenuUpdated, gin.H{"action": "add", "item": item})
	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

// DeleteMenuItem
func (mc *MenuController) DeleteMenuItem(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid menu item id"))
		return
	}

	if err := mc.Store.DeleteMenuItem(c.Request.Context(), uint(id)); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	mc.Hub.Broadcast(live.EventMenuUpdated, gin.H{"action": "delete", "id": id})
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted", nil)
}

// BulkUpdateMenu replaces the whole menu with the posted item set.
func (mc *MenuController) BulkUpdateMenu(c *gin.Context) {
	var req struct {
		Items []store.MenuItemDraft `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	menu, err := mc.Store.BulkUpdateMenu(c.Request.Context(), req.Items)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	mc.Hub.Broadcast(live.EventMenuUpdated, gin.H{"action": "bulk_update"})
	utils.RespondJSON(c, http.StatusOK, "Menu replaced", menu)
}

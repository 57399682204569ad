package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gokulpos/restaurant-pos/live"
	"github.com/gokulpos/restaurant-pos/store"
	"github.com/gokulpos/restaurant-pos/utils"
	"gorm.io/gorm"
)

type KitchenController struct {
	Store store.Store
	Hub   live.Broadcaster
}

func NewKitchenController(st store.Store, hub live.Broadcaster) *KitchenController {
	return &KitchenController{Store: st, Hub: hub}
}

// GetKitchenOrders
func (kc *KitchenController) GetKitchenOrders(c *gin.Context) {
	orders := kc.Store.KitchenOrders(c.Request.Context())
	utils.RespondJSON(c, http.StatusOK, "List of kitchen orders", orders)
}

// CreateKitchenOrder sends a batch of an order to the kitchen display.
// The batch may cover only part of the parent order.
func (kc *KitchenController) CreateKitchenOrder(c *gin.Context) {
	var req struct {
		OrderID   uint          `json:"order_id"`
		BatchID   int64         `json:"batch_id"`
		StaffName string        `json:"staff_name" binding:"required"`
		TableID   int           `json:"table_id"`
		Status    string        `json:"status"`
		Items     []itemRequest `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := kc.Store.CreateKitchenOrder(c.Request.Context(), store.KitchenOrderDraft{
		OrderID:   req.OrderID,
		BatchID:   req.BatchID,
		StaffName: req.StaffName,
		TableID:   req.TableID,
		Status:    req.Status,
		Items:     itemLines(req.Items),
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	kc.Hub.Broadcast(live.EventKitchenOrderCreated, order)
	utils.RespondJSON(c, http.StatusCreated, "Kitchen order created", order)
}

// UpdateKitchenOrder transitions the display status.
func (kc *KitchenController) UpdateKitchenOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid kitchen order id"))
		return
	}

	var updates store.KitchenOrderUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := kc.Store.UpdateKitchenOrder(c.Request.Context(), uint(id), updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("kitchen order not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	kc.Hub.Broadcast(live.EventKitchenOrderUpdated, order)
	utils.RespondJSON(c, http.StatusOK, "Kitchen order updated", order)
}

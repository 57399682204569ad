package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gokulpos/restaurant-pos/live"
	"github.com/gokulpos/restaurant-pos/models"
	"github.com/gokulpos/restaurant-pos/store"
	"github.com/gokulpos/restaurant-pos/utils"
	"gorm.io/gorm"
)

type OrderController struct {
	Store store.Store
	Hub   live.Broadcaster
}

func NewOrderController(st store.Store, hub live.Broadcaster) *OrderController {
	return &OrderController{Store: st, Hub: hub}
}

// itemRequest tolerates the two field spellings terminals send for
// item lines (name/item_name, qty/quantity).
type itemRequest struct {
	Name     string  `json:"name"`
	ItemName string  `json:"item_name"`
	Qty      int     `json:"qty"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

func (r itemRequest) line() models.ItemLine {
	name := r.ItemName
	if name == "" {
		name = r.Name
	}
	qty := r.Quantity
	if qty == 0 {
		qty = r.Qty
	}
	if qty < 1 {
		qty = 1
	}
	return models.ItemLine{ItemName: name, Quantity: qty, Price: r.Price}
}

func itemLines(reqs []itemRequest) models.ItemLines {
	lines := make(models.ItemLines, 0, len(reqs))
	for _, r := range reqs {
		lines = append(lines, r.line())
	}
	return lines
}

// GetOrders
func (oc *OrderController) GetOrders(c *gin.Context) {
	orders := oc.Store.Orders(c.Request.Context())
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// CreateOrder submits a table's order. The total is computed from the
// item lines at creation and never recomputed afterwards.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req struct {
		TableID   int           `json:"table_id"`
		StaffName string        `json:"staff_name" binding:"required"`
		Status    string        `json:"status"`
		Items     []itemRequest `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Store.CreateOrder(c.Request.Context(), store.OrderDraft{
		TableID:   req.TableID,
		StaffName: req.StaffName,
		Status:    req.Status,
		Items:     itemLines(req.Items),
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	oc.Hub.Broadcast(live.EventOrderCreated, order)
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// UpdateOrder changes status and metadata only; items are fixed.
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	var updates store.OrderUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Store.UpdateOrder(c.Request.Context(), uint(id), updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	oc.Hub.Broadcast(live.EventOrderUpdated, order)
	utils.RespondJSON(c, http.StatusOK, "Order updated", order)
}

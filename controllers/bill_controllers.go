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

type BillController struct {
	Store store.Store
	Hub   live.Broadcaster
}

func NewBillController(st store.Store, hub live.Broadcaster) *BillController {
	return &BillController{Store: st, Hub: hub}
}

// GetBills lists bills, optionally filtered by ?search= against the
// bill number and staff name.
func (bc *BillController) GetBills(c *gin.Context) {
	bills := bc.Store.Bills(c.Request.Context(), c.Query("search"))
	utils.RespondJSON(c, http.StatusOK, "List of bills", bills)
}

// GetBill
func (bc *BillController) GetBill(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid bill id"))
		return
	}

	bill, ok := bc.Store.Bill(c.Request.Context(), uint(id))
	if !ok {
		utils.RespondError(c, http.StatusNotFound, errors.New("bill not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bill detail", bill)
}

// CreateBill finalizes an order into an immutable bill. The bill number
// is generated server-side and is unique even under concurrent creates.
func (bc *BillController) CreateBill(c *gin.Context) {
	var req struct {
		OrderID   uint          `json:"order_id"`
		TableID   int           `json:"table_id"`
		StaffName string        `json:"staff_name" binding:"required"`
		Items     []itemRequest `json:"items"`
		Subtotal  float64       `json:"subtotal"`
		Tax       float64       `json:"tax"`
		Total     float64       `json:"total"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	bill, err := bc.Store.CreateBill(c.Request.Context(), store.BillDraft{
		OrderID:   req.OrderID,
		TableID:   req.TableID,
		StaffName: req.StaffName,
		Items:     itemLines(req.Items),
		Subtotal:  req.Subtotal,
		Tax:       req.Tax,
		Total:     req.Total,
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	bc.Hub.Broadcast(live.EventBillCreated, bill)
	utils.RespondJSON(c, http.StatusCreated, "Bill created", bill)
}

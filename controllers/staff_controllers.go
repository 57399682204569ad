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

type StaffController struct {
	Store store.Store
	Hub   live.Broadcaster
}

func NewStaffController(st store.Store, hub live.Broadcaster) *StaffController {
	return &StaffController{Store: st, Hub: hub}
}

// GetStaff
func (sc *StaffController) GetStaff(c *gin.Context) {
	staff := sc.Store.Staff(c.Request.Context())
	utils.RespondJSON(c, http.StatusOK, "List of staff", staff)
}

// AddStaff creates the staff member together with their default
// permission row; a partial create is rolled back by the store.
func (sc *StaffController) AddStaff(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	member, err := sc.Store.AddStaff(c.Request.Context(), req.Name)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	sc.Hub.Broadcast(live.EventStaffUpdated, gin.H{"action": "add", "staff": member})
	utils.RespondJSON(c, http.StatusCreated, "Staff member created", member)
}

// DeleteStaff
func (sc *StaffController) DeleteStaff(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid staff id"))
		return
	}

	if err := sc.Store.DeleteStaff(c.Request.Context(), uint(id)); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	sc.Hub.Broadcast(live.EventStaffUpdated, gin.H{"action": "delete", "id": id})
	utils.RespondJSON(c, http.StatusOK, "Staff member deleted", nil)
}

package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gokulpos/restaurant-pos/store"
	"github.com/gokulpos/restaurant-pos/utils"
	"golang.org/x/crypto/bcrypt"
)

type AuthController struct {
	Store store.Store
}

func NewAuthController(st store.Store) *AuthController {
	return &AuthController{Store: st}
}

// OwnerLogin checks the posted password against the stored owner
// password and issues a short-lived owner token.
func (ac *AuthController) OwnerLogin(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	settings := ac.Store.Settings(c.Request.Context())
	stored, ok := settings[store.SettingOwnerPassword]
	if !ok {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("owner password is not configured"))
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(stored), []byte(req.Password)) != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid password"))
		return
	}

	token, err := utils.GenerateToken("owner")
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{"token": token, "role": "owner"})
}

// Verify confirms a token is still valid; the auth middleware has
// already rejected anything else by the time this runs.
func (ac *AuthController) Verify(c *gin.Context) {
	role, _ := c.Get("role")
	utils.RespondJSON(c, http.StatusOK, "Token valid", gin.H{"role": role})
}

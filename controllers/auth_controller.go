package controllers

import (
	"net/http"

	"hotel-manager/middleware"
	"hotel-manager/services"
	"hotel-manager/utils"

	"github.com/gin-gonic/gin"
)

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthController struct {
	Svc *services.AuthService
}

func NewAuthController(svc *services.AuthService) *AuthController {
	return &AuthController{Svc: svc}
}

// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badPayload(c, err)
		return
	}
	res, err := ac.Svc.Login(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

// GET /api/auth/me
func (ac *AuthController) Me(c *gin.Context) {
	actor := middleware.MustActor(c)
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"user_id":      actor.UserID,
		"username":     actor.Username,
		"full_name":    actor.FullName,
		"is_superuser": actor.Superuser,
		"permissions":  actor.PermissionList(),
	})
}

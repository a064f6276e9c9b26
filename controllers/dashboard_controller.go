package controllers

import (
	"net/http"

	"hotel-manager/services"
	"hotel-manager/utils"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	Svc *services.DashboardService
}

func NewDashboardController(svc *services.DashboardService) *DashboardController {
	return &DashboardController{Svc: svc}
}

func (dc *DashboardController) Summary(c *gin.Context) {
	summary, err := dc.Svc.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, summary)
}

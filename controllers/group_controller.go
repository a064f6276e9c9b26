package controllers

import (
	"net/http"

	"hotel-manager/middleware"
	"hotel-manager/models"
	"hotel-manager/services"
	"hotel-manager/utils"

	"github.com/gin-gonic/gin"
)

type GroupController struct {
	Svc *services.GroupService
}

func NewGroupController(svc *services.GroupService) *GroupController {
	return &GroupController{Svc: svc}
}

func (gc *GroupController) List(c *gin.Context) {
	groups, err := gc.Svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, groups)
}

// GET /api/groups/permissions lists every assignable permission.
func (gc *GroupController) Permissions(c *gin.Context) {
	utils.JSONSuccess(c, http.StatusOK, models.AllPermissions())
}

func (gc *GroupController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	g, err := gc.Svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, g)
}

func (gc *GroupController) Create(c *gin.Context) {
	var in services.GroupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	g, err := gc.Svc.Create(c.Request.Context(), middleware.MustActor(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, g)
}

func (gc *GroupController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in services.GroupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	g, err := gc.Svc.Update(c.Request.Context(), middleware.MustActor(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, g)
}

func (gc *GroupController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := gc.Svc.Delete(c.Request.Context(), middleware.MustActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}

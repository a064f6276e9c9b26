package controllers

import (
	"net/http"

	"hotel-manager/middleware"
	"hotel-manager/services"
	"hotel-manager/utils"

	"github.com/gin-gonic/gin"
)

// CatalogController exposes list/get/create/update/delete for one entity.
type CatalogController[T services.CatalogEntity] struct {
	Svc *services.CatalogService[T]
}

func NewCatalogController[T services.CatalogEntity](svc *services.CatalogService[T]) *CatalogController[T] {
	return &CatalogController[T]{Svc: svc}
}

func (cc *CatalogController[T]) List(c *gin.Context) {
	items, err := cc.Svc.List(c.Request.Context(), queryParams(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, items)
}

func (cc *CatalogController[T]) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := cc.Svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, item)
}

func (cc *CatalogController[T]) Create(c *gin.Context) {
	item := cc.Svc.New()
	if err := c.ShouldBindJSON(item); err != nil {
		badPayload(c, err)
		return
	}
	created, err := cc.Svc.Create(c.Request.Context(), middleware.MustActor(c), item)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, created)
}

// Update binds the body over the stored record, so omitted fields keep their values.
func (cc *CatalogController[T]) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := cc.Svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := c.ShouldBindJSON(item); err != nil {
		badPayload(c, err)
		return
	}
	updated, err := cc.Svc.Update(c.Request.Context(), middleware.MustActor(c), id, item)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, updated)
}

func (cc *CatalogController[T]) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := cc.Svc.Delete(c.Request.Context(), middleware.MustActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}

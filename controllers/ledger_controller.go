package controllers

import (
	"net/http"

	"hotel-manager/middleware"
	"hotel-manager/services"
	"hotel-manager/utils"

	"github.com/gin-gonic/gin"
)

type LedgerController struct {
	Svc *services.LedgerService
}

func NewLedgerController(svc *services.LedgerService) *LedgerController {
	return &LedgerController{Svc: svc}
}

func (lc *LedgerController) ListPurchases(c *gin.Context) {
	list, err := lc.Svc.ListPurchases(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

func (lc *LedgerController) GetPurchase(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := lc.Svc.GetPurchase(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, p)
}

func (lc *LedgerController) CreatePurchase(c *gin.Context) {
	var in services.PurchaseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	p, err := lc.Svc.CreatePurchase(c.Request.Context(), middleware.MustActor(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, p)
}

func (lc *LedgerController) UpdatePurchase(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in services.PurchaseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	p, err := lc.Svc.UpdatePurchase(c.Request.Context(), middleware.MustActor(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, p)
}

func (lc *LedgerController) DeletePurchase(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := lc.Svc.DeletePurchase(c.Request.Context(), middleware.MustActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}

func (lc *LedgerController) ListSales(c *gin.Context) {
	list, err := lc.Svc.ListSales(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

func (lc *LedgerController) GetSale(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	s, err := lc.Svc.GetSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, s)
}

func (lc *LedgerController) CreateSale(c *gin.Context) {
	var in services.SaleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	s, err := lc.Svc.CreateSale(c.Request.Context(), middleware.MustActor(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, s)
}

func (lc *LedgerController) UpdateSale(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in services.SaleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	s, err := lc.Svc.UpdateSale(c.Request.Context(), middleware.MustActor(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, s)
}

func (lc *LedgerController) DeleteSale(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := lc.Svc.DeleteSale(c.Request.Context(), middleware.MustActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}

// GET /api/products/:id/movements
func (lc *LedgerController) StockMovements(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	list, err := lc.Svc.StockMovements(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

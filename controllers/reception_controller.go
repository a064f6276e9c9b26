package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"hotel-manager/middleware"
	"hotel-manager/models"
	"hotel-manager/services"
	"hotel-manager/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PaymentPayload struct {
	PaymentType    models.PaymentType `json:"payment_type"`
	AmountReceived decimal.Decimal    `json:"amount_received"`
}

type OccupyPayload struct {
	ClientID        uint                      `json:"client_id"`
	CheckOutAt      string                    `json:"check_out_at"`
	DiscountPercent decimal.Decimal           `json:"discount_percent"`
	Observations    string                    `json:"observations"`
	Payment         PaymentPayload            `json:"payment"`
	Companions      []services.CompanionInput `json:"companions"`
}

type ConsumptionPayload struct {
	Lines []services.ConsumptionLine `json:"lines"`
}

type UpdateReservationPayload struct {
	CheckOutAt   *string `json:"check_out_at"`
	Observations *string `json:"observations"`
}

// ReceptionController serves the front desk: board, room transitions and reservations.
type ReceptionController struct {
	Svc      *services.OccupancyService
	Location *time.Location
}

func NewReceptionController(svc *services.OccupancyService, loc *time.Location) *ReceptionController {
	if loc == nil {
		loc = time.UTC
	}
	return &ReceptionController{Svc: svc, Location: loc}
}

var checkoutLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseCheckout accepts RFC3339 or a local "datetime-local" value.
func (rc *ReceptionController) parseCheckout(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	for _, layout := range checkoutLayouts {
		if t, err := time.ParseInLocation(layout, raw, rc.Location); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func invalidCheckout(c *gin.Context) {
	utils.JSONFieldErrors(c, http.StatusBadRequest, "validation failed",
		map[string]string{"check_out_at": "invalid date/time"})
}

// GET /api/reception?floor=<id>
func (rc *ReceptionController) Board(c *gin.Context) {
	var floorID uint
	if raw := c.Query("floor"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.JSONFieldErrors(c, http.StatusBadRequest, "invalid floor", map[string]string{"floor": "must be numeric"})
			return
		}
		floorID = uint(id)
	}
	board, err := rc.Svc.Board(c.Request.Context(), floorID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, board)
}

// GET /api/rooms/:id/reservation
func (rc *ReceptionController) ActiveReservation(c *gin.Context) {
	roomID, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := rc.Svc.ActiveReservation(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

// POST /api/rooms/:id/occupy
func (rc *ReceptionController) Occupy(c *gin.Context) {
	roomID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload OccupyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badPayload(c, err)
		return
	}
	checkout, ok := rc.parseCheckout(payload.CheckOutAt)
	if !ok {
		invalidCheckout(c)
		return
	}

	res, err := rc.Svc.Occupy(c.Request.Context(), middleware.MustActor(c), roomID, services.OccupyInput{
		ClientID:        payload.ClientID,
		CheckOutAt:      checkout,
		DiscountPercent: payload.DiscountPercent,
		Observations:    payload.Observations,
		PaymentType:     payload.Payment.PaymentType,
		AmountReceived:  payload.Payment.AmountReceived,
		Companions:      payload.Companions,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, res)
}

// POST /api/rooms/:id/consumptions
func (rc *ReceptionController) RegisterConsumption(c *gin.Context) {
	roomID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload ConsumptionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badPayload(c, err)
		return
	}
	res, err := rc.Svc.RegisterConsumption(c.Request.Context(), middleware.MustActor(c), roomID, payload.Lines)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

// POST /api/rooms/:id/checkout
func (rc *ReceptionController) Checkout(c *gin.Context) {
	roomID, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := rc.Svc.Checkout(c.Request.Context(), middleware.MustActor(c), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

// POST /api/rooms/:id/mark-cleaning
func (rc *ReceptionController) MarkCleaning(c *gin.Context) {
	roomID, ok := paramID(c, "id")
	if !ok {
		return
	}
	room, err := rc.Svc.MarkCleaning(c.Request.Context(), middleware.MustActor(c), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// POST /api/rooms/:id/mark-available
func (rc *ReceptionController) MarkAvailable(c *gin.Context) {
	roomID, ok := paramID(c, "id")
	if !ok {
		return
	}
	room, err := rc.Svc.MarkAvailable(c.Request.Context(), middleware.MustActor(c), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// GET /api/reservations?status=ACTIVE&room_id=3
func (rc *ReceptionController) ListReservations(c *gin.Context) {
	f := services.ReservationFilter{Status: models.ReservationStatus(strings.ToUpper(c.Query("status")))}
	if raw := c.Query("room_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.JSONFieldErrors(c, http.StatusBadRequest, "invalid room_id", map[string]string{"room_id": "must be numeric"})
			return
		}
		f.RoomID = uint(id)
	}
	list, err := rc.Svc.ListReservations(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// GET /api/reservations/:id
func (rc *ReceptionController) GetReservation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := rc.Svc.GetReservation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

// PUT /api/reservations/:id
func (rc *ReceptionController) UpdateReservation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload UpdateReservationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badPayload(c, err)
		return
	}
	in := services.UpdateReservationInput{Observations: payload.Observations}
	if payload.CheckOutAt != nil {
		t, ok := rc.parseCheckout(*payload.CheckOutAt)
		if !ok {
			invalidCheckout(c)
			return
		}
		in.CheckOutAt = &t
	}
	res, err := rc.Svc.UpdateReservation(c.Request.Context(), middleware.MustActor(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

package services

import (
	"context"
	"strings"
	"time"

	"hotel-manager/models"
	"hotel-manager/queue"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CompanionInput struct {
	FullName   string `json:"full_name"`
	DocumentID string `json:"document_id"`
}

type OccupyInput struct {
	ClientID        uint               `json:"client_id"`
	CheckOutAt      time.Time          `json:"check_out_at"`
	DiscountPercent decimal.Decimal    `json:"discount_percent"`
	Observations    string             `json:"observations"`
	PaymentType     models.PaymentType `json:"payment_type"`
	AmountReceived  decimal.Decimal    `json:"amount_received"`
	Companions      []CompanionInput   `json:"companions"`
}

type ConsumptionLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type UpdateReservationInput struct {
	CheckOutAt   *time.Time `json:"check_out_at"`
	Observations *string    `json:"observations"`
}

type ReservationFilter struct {
	Status models.ReservationStatus
	RoomID uint
}

// ReceptionBoard is the front-desk view of one floor.
type ReceptionBoard struct {
	Floors        []models.Floor   `json:"floors"`
	SelectedFloor *models.Floor    `json:"selected_floor"`
	Rooms         []models.Room    `json:"rooms"`
	Products      []models.Product `json:"products"`
}

// OccupancyService drives the room state machine:
// AVAILABLE -> OCCUPIED -> CLEANING -> AVAILABLE.
type OccupancyService struct {
	DB     *gorm.DB
	Events EventPublisher
	Cache  *DashboardCache
	now    func() time.Time
}

func NewOccupancyService(db *gorm.DB, events EventPublisher, cache *DashboardCache) *OccupancyService {
	return &OccupancyService{DB: db, Events: events, Cache: cache, now: time.Now}
}

func validateOccupy(in OccupyInput) error {
	verr := &ValidationError{}
	if in.ClientID == 0 {
		verr.Add("client_id", "client is required")
	}
	if in.CheckOutAt.IsZero() {
		verr.Add("check_out_at", "check-out time is required")
	}
	if in.DiscountPercent.IsNegative() || in.DiscountPercent.GreaterThan(hundred) {
		verr.Add("discount_percent", "discount must be between 0 and 100")
	}
	if !in.PaymentType.Valid() {
		verr.Add("payment_type", "unknown payment type")
	}
	if in.AmountReceived.IsNegative() {
		verr.Add("amount_received", "amount cannot be negative")
	}
	for _, c := range in.Companions {
		if strings.TrimSpace(c.FullName) == "" {
			verr.Add("companions", "every companion needs a full name")
			break
		}
	}
	return verr.OrNil()
}

func lockRoom(tx *gorm.DB, roomID uint) (models.Room, error) {
	var room models.Room
	err := forUpdate(tx).First(&room, roomID).Error
	return room, notFoundOr(err, "room", roomID)
}

// lockActiveReservation returns the ACTIVE reservation of roomID or a
// StateConflictError when the room has none.
func lockActiveReservation(tx *gorm.DB, roomID uint) (models.Reservation, error) {
	var res models.Reservation
	err := forUpdate(tx).
		Where("room_id = ? AND status = ?", roomID, models.ReservationActive).
		First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return res, conflict("no active reservation")
	}
	if err != nil {
		return res, errors.Wrap(err, "load active reservation")
	}
	return res, nil
}

// setRoomStatus moves the room only if it is still in from.
func setRoomStatus(tx *gorm.DB, roomID uint, from, to models.RoomStatus) error {
	res := tx.Model(&models.Room{}).
		Where("id = ? AND status = ?", roomID, from).
		Update("status", to)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update room status")
	}
	if res.RowsAffected == 0 {
		return conflict("room changed state concurrently")
	}
	return nil
}

func (s *OccupancyService) afterRoomChange(ctx context.Context, actor Actor, room models.Room, to models.RoomStatus, reservationID uint) {
	s.Cache.Invalidate(ctx)
	publishAfterCommit(ctx, s.Events, queue.RoomStatusChanged{
		RoomID:        room.ID,
		RoomNumber:    room.Number,
		From:          string(room.Status),
		To:            string(to),
		ReservationID: reservationID,
		UserID:        actor.UserID,
		OccurredAt:    s.now().UTC(),
	})
}

// Occupy checks a client into an AVAILABLE room.
func (s *OccupancyService) Occupy(ctx context.Context, actor Actor, roomID uint, in OccupyInput) (*models.Reservation, error) {
	if err := validateOccupy(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var room models.Room
	var res models.Reservation

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		room, err = lockRoom(tx, roomID)
		if err != nil {
			return err
		}
		if room.Status != models.RoomAvailable {
			return conflict("room %s is not available (status %s)", room.Number, room.Status)
		}

		var active int64
		if err := tx.Model(&models.Reservation{}).
			Where("room_id = ? AND status = ?", room.ID, models.ReservationActive).
			Count(&active).Error; err != nil {
			return errors.Wrap(err, "count active reservations")
		}
		if active > 0 {
			return conflict("room %s still has an active reservation", room.Number)
		}

		var client models.Client
		if err := tx.First(&client, in.ClientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newValidationError("client_id", "client not found")
			}
			return errors.Wrap(err, "load client")
		}
		if !client.Active {
			return newValidationError("client_id", "client is inactive")
		}

		nights := NightsBetween(now, in.CheckOutAt)
		roomCost := RoomCost(room.NightlyPrice, nights)
		activeRoom := room.ID

		res = models.Reservation{
			RoomID:          room.ID,
			ClientID:        client.ID,
			UserID:          actor.UserID,
			ActiveRoomID:    &activeRoom,
			Status:          models.ReservationActive,
			CheckInAt:       now,
			CheckOutAt:      in.CheckOutAt.UTC(),
			Nights:          nights,
			DiscountPercent: in.DiscountPercent,
			RoomCost:        roomCost,
			ProductCost:     decimal.Zero,
			TotalCost:       ReservationTotal(roomCost, in.DiscountPercent, decimal.Zero),
			Observations:    strings.TrimSpace(in.Observations),
		}
		if err := tx.Omit(clause.Associations).Create(&res).Error; err != nil {
			if isDuplicateKey(err) {
				return conflict("room %s still has an active reservation", room.Number)
			}
			return errors.Wrap(err, "create reservation")
		}

		payment := models.Payment{
			ReservationID: res.ID,
			PaymentType:   in.PaymentType,
			Amount:        in.AmountReceived,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return errors.Wrap(err, "create payment")
		}

		for _, c := range in.Companions {
			comp := models.Companion{
				ReservationID: res.ID,
				FullName:      strings.TrimSpace(c.FullName),
				DocumentID:    strings.TrimSpace(c.DocumentID),
			}
			if err := tx.Create(&comp).Error; err != nil {
				return errors.Wrap(err, "create companion")
			}
		}

		if err := setRoomStatus(tx, room.ID, models.RoomAvailable, models.RoomOccupied); err != nil {
			return err
		}

		return recordActivity(tx, actor, "occupy", "room", room.ID, map[string]interface{}{
			"reservation_id": res.ID,
			"client_id":      client.ID,
			"nights":         nights,
			"total_cost":     res.TotalCost.StringFixed(2),
		})
	})
	if err != nil {
		return nil, err
	}

	s.afterRoomChange(ctx, actor, room, models.RoomOccupied, res.ID)
	return s.GetReservation(ctx, res.ID)
}

// RegisterConsumption bills products to the room's active reservation.
func (s *OccupancyService) RegisterConsumption(ctx context.Context, actor Actor, roomID uint, lines []ConsumptionLine) (*models.Reservation, error) {
	if len(lines) == 0 {
		return nil, newValidationError("lines", "at least one product is required")
	}

	var res models.Reservation
	var sale models.Sale

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockRoom(tx, roomID); err != nil {
			return err
		}
		var err error
		res, err = lockActiveReservation(tx, roomID)
		if err != nil {
			return err
		}

		if res.SaleID == nil {
			clientID := res.ClientID
			sale = models.Sale{
				ReferenceCode: newReferenceCode("V"),
				ClientID:      &clientID,
				UserID:        actor.UserID,
				Total:         decimal.Zero,
			}
			if err := tx.Omit(clause.Associations).Create(&sale).Error; err != nil {
				return errors.Wrap(err, "create consumption sale")
			}
			if err := tx.Model(&res).UpdateColumn("sale_id", sale.ID).Error; err != nil {
				if isDuplicateKey(err) {
					return conflict("consumption sale already linked")
				}
				return errors.Wrap(err, "link consumption sale")
			}
			res.SaleID = &sale.ID
		} else if err := forUpdate(tx).First(&sale, *res.SaleID).Error; err != nil {
			return errors.Wrap(err, "load consumption sale")
		}

		added := decimal.Zero
		for i, l := range lines {
			var product models.Product
			if err := tx.First(&product, l.ProductID).Error; err != nil {
				return notFoundOr(err, "product", l.ProductID)
			}
			if !product.Active {
				return newValidationError("lines", "product "+product.Name+" is inactive")
			}
			qty := l.Quantity
			if qty < 1 {
				qty = 1
			}
			line := models.SaleLine{
				SaleID:    sale.ID,
				ProductID: product.ID,
				Quantity:  qty,
				UnitPrice: product.SalePrice,
				Subtotal:  lineSubtotal(qty, product.SalePrice),
			}
			if err := tx.Omit(clause.Associations).Create(&line).Error; err != nil {
				return errors.Wrapf(err, "create sale line %d", i)
			}
			if err := adjustStock(tx, actor, product.ID, -qty, models.MovementConsumption, sale.ReferenceCode); err != nil {
				return err
			}
			added = added.Add(line.Subtotal)
		}

		sale.Total = sale.Total.Add(added)
		if err := tx.Model(&sale).UpdateColumn("total", sale.Total).Error; err != nil {
			return errors.Wrap(err, "update sale total")
		}

		res.ProductCost = res.ProductCost.Add(added)
		res.TotalCost = ReservationTotal(res.RoomCost, res.DiscountPercent, res.ProductCost)
		if err := tx.Model(&res).Updates(map[string]interface{}{
			"product_cost": res.ProductCost,
			"total_cost":   res.TotalCost,
		}).Error; err != nil {
			return errors.Wrap(err, "update reservation costs")
		}

		return recordActivity(tx, actor, "consumption", "reservation", res.ID, map[string]interface{}{
			"sale_id": sale.ID,
			"lines":   len(lines),
			"amount":  added.StringFixed(2),
		})
	})
	if err != nil {
		return nil, err
	}

	s.Cache.Invalidate(ctx)
	publishAfterCommit(ctx, s.Events, queue.ConsumptionRegistered{
		RoomID:        roomID,
		ReservationID: res.ID,
		SaleID:        sale.ID,
		Lines:         len(lines),
		ProductCost:   res.ProductCost.StringFixed(2),
		TotalCost:     res.TotalCost.StringFixed(2),
		UserID:        actor.UserID,
		OccurredAt:    s.now().UTC(),
	})
	return s.GetReservation(ctx, res.ID)
}

// Checkout finishes the active stay and sends the room to cleaning.
func (s *OccupancyService) Checkout(ctx context.Context, actor Actor, roomID uint) (*models.Reservation, error) {
	now := s.now().UTC()
	var room models.Room
	var res models.Reservation

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		room, err = lockRoom(tx, roomID)
		if err != nil {
			return err
		}
		res, err = lockActiveReservation(tx, roomID)
		if err != nil {
			return err
		}

		if err := tx.Model(&res).Updates(map[string]interface{}{
			"status":         models.ReservationFinished,
			"check_out_at":   now,
			"active_room_id": nil,
		}).Error; err != nil {
			return errors.Wrap(err, "finish reservation")
		}
		if room.Status != models.RoomCleaning {
			if err := setRoomStatus(tx, room.ID, room.Status, models.RoomCleaning); err != nil {
				return err
			}
		}
		return recordActivity(tx, actor, "checkout", "room", room.ID, map[string]interface{}{
			"reservation_id": res.ID,
			"total_cost":     res.TotalCost.StringFixed(2),
		})
	})
	if err != nil {
		return nil, err
	}

	s.afterRoomChange(ctx, actor, room, models.RoomCleaning, res.ID)
	return s.GetReservation(ctx, res.ID)
}

func (s *OccupancyService) transition(ctx context.Context, actor Actor, roomID uint, action string, allowed []models.RoomStatus, to models.RoomStatus) (*models.Room, error) {
	var room models.Room
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		room, err = lockRoom(tx, roomID)
		if err != nil {
			return err
		}
		ok := false
		for _, st := range allowed {
			if room.Status == st {
				ok = true
				break
			}
		}
		if !ok {
			return conflict("cannot %s room %s in status %s", action, room.Number, room.Status)
		}
		if err := setRoomStatus(tx, room.ID, room.Status, to); err != nil {
			return err
		}
		return recordActivity(tx, actor, action, "room", room.ID, map[string]interface{}{
			"from": room.Status,
			"to":   to,
		})
	})
	if err != nil {
		return nil, err
	}

	s.afterRoomChange(ctx, actor, room, to, 0)
	room.Status = to
	return &room, nil
}

// MarkCleaning is allowed from OCCUPIED or AVAILABLE.
func (s *OccupancyService) MarkCleaning(ctx context.Context, actor Actor, roomID uint) (*models.Room, error) {
	return s.transition(ctx, actor, roomID, "mark cleaning",
		[]models.RoomStatus{models.RoomOccupied, models.RoomAvailable}, models.RoomCleaning)
}

// MarkAvailable is allowed only from CLEANING.
func (s *OccupancyService) MarkAvailable(ctx context.Context, actor Actor, roomID uint) (*models.Room, error) {
	return s.transition(ctx, actor, roomID, "mark available",
		[]models.RoomStatus{models.RoomCleaning}, models.RoomAvailable)
}

func reservationDetail(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Room.RoomType").
		Preload("Room.Floor").
		Preload("Client").
		Preload("Payment").
		Preload("Companions").
		Preload("Sale.Lines.Product")
}

// ActiveReservation returns the room's ACTIVE reservation with its details.
func (s *OccupancyService) ActiveReservation(ctx context.Context, roomID uint) (*models.Reservation, error) {
	db := s.DB.WithContext(ctx)
	var room models.Room
	if err := db.First(&room, roomID).Error; err != nil {
		return nil, notFoundOr(err, "room", roomID)
	}
	var res models.Reservation
	err := reservationDetail(db).
		Where("room_id = ? AND status = ?", roomID, models.ReservationActive).
		First(&res).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "active reservation for room", ID: room.Number}
		}
		return nil, errors.Wrap(err, "load active reservation")
	}
	return &res, nil
}

func (s *OccupancyService) GetReservation(ctx context.Context, id uint) (*models.Reservation, error) {
	var res models.Reservation
	if err := reservationDetail(s.DB.WithContext(ctx)).First(&res, id).Error; err != nil {
		return nil, notFoundOr(err, "reservation", id)
	}
	return &res, nil
}

func (s *OccupancyService) ListReservations(ctx context.Context, f ReservationFilter) ([]models.Reservation, error) {
	q := s.DB.WithContext(ctx).Preload("Room").Preload("Client").Order("check_in_at DESC, id DESC")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.RoomID != 0 {
		q = q.Where("room_id = ?", f.RoomID)
	}
	var out []models.Reservation
	if err := q.Find(&out).Error; err != nil {
		return nil, errors.Wrap(err, "list reservations")
	}
	return out, nil
}

// UpdateReservation edits check-out time and observations of an ACTIVE
// reservation. Billed costs are left as they were at check-in.
func (s *OccupancyService) UpdateReservation(ctx context.Context, actor Actor, id uint, in UpdateReservationInput) (*models.Reservation, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res models.Reservation
		if err := forUpdate(tx).First(&res, id).Error; err != nil {
			return notFoundOr(err, "reservation", id)
		}
		if res.Status != models.ReservationActive {
			return conflict("reservation %d is %s and cannot be edited", res.ID, res.Status)
		}

		updates := map[string]interface{}{}
		if in.CheckOutAt != nil {
			if in.CheckOutAt.IsZero() {
				return newValidationError("check_out_at", "check-out time is required")
			}
			if !in.CheckOutAt.After(res.CheckInAt) {
				return newValidationError("check_out_at", "check-out must be after check-in")
			}
			updates["check_out_at"] = in.CheckOutAt.UTC()
		}
		if in.Observations != nil {
			updates["observations"] = strings.TrimSpace(*in.Observations)
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&res).Updates(updates).Error; err != nil {
			return errors.Wrap(err, "update reservation")
		}
		return recordActivity(tx, actor, "update", "reservation", res.ID, updates)
	})
	if err != nil {
		return nil, err
	}
	return s.GetReservation(ctx, id)
}

// Board builds the reception view. floorID 0 selects the first active floor.
func (s *OccupancyService) Board(ctx context.Context, floorID uint) (*ReceptionBoard, error) {
	db := s.DB.WithContext(ctx)
	board := &ReceptionBoard{Rooms: []models.Room{}, Products: []models.Product{}}

	if err := db.Where("active = ?", true).Order("number ASC").Find(&board.Floors).Error; err != nil {
		return nil, errors.Wrap(err, "list floors")
	}

	switch {
	case floorID != 0:
		for i := range board.Floors {
			if board.Floors[i].ID == floorID {
				board.SelectedFloor = &board.Floors[i]
				break
			}
		}
		if board.SelectedFloor == nil {
			return nil, &NotFoundError{Entity: "floor", ID: floorID}
		}
	case len(board.Floors) > 0:
		board.SelectedFloor = &board.Floors[0]
	}

	if board.SelectedFloor != nil {
		if err := db.Preload("RoomType").
			Where("floor_id = ? AND active = ?", board.SelectedFloor.ID, true).
			Order("number ASC").
			Find(&board.Rooms).Error; err != nil {
			return nil, errors.Wrap(err, "list rooms")
		}
	}

	if len(board.Rooms) > 0 {
		ids := make([]uint, 0, len(board.Rooms))
		for _, r := range board.Rooms {
			ids = append(ids, r.ID)
		}
		var active []models.Reservation
		if err := db.Preload("Client").
			Preload("Companions").
			Preload("Sale.Lines.Product").
			Where("room_id IN ? AND status = ?", ids, models.ReservationActive).
			Find(&active).Error; err != nil {
			return nil, errors.Wrap(err, "list active reservations")
		}
		byRoom := make(map[uint]*models.Reservation, len(active))
		for i := range active {
			byRoom[active[i].RoomID] = &active[i]
		}
		for i := range board.Rooms {
			board.Rooms[i].ActiveReservation = byRoom[board.Rooms[i].ID]
		}
	}

	if err := db.Where("active = ? AND stock > 0", true).Order("name ASC").Find(&board.Products).Error; err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return board, nil
}

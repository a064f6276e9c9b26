package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationActive    ReservationStatus = "ACTIVE"
	ReservationFinished  ReservationStatus = "FINISHED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

type Reservation struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RoomID   uint `gorm:"column:room_id;index;not null" json:"room_id"`
	ClientID uint `gorm:"column:client_id;index;not null" json:"client_id"`
	UserID   uint `gorm:"column:user_id;index" json:"user_id"`

	// ActiveRoomID mirrors RoomID while the reservation is ACTIVE and is NULL
	// otherwise, so the unique index allows a single active stay per room.
	ActiveRoomID *uint `gorm:"column:active_room_id;uniqueIndex" json:"-"`

	Status     ReservationStatus `gorm:"column:status;size:20;not null;index" json:"status"`
	CheckInAt  time.Time         `gorm:"column:check_in_at;index;not null" json:"check_in_at"`
	CheckOutAt time.Time         `gorm:"column:check_out_at;not null" json:"check_out_at"`
	Nights     int               `gorm:"column:nights;not null" json:"nights"`

	DiscountPercent decimal.Decimal `gorm:"column:discount_percent;type:decimal(5,2);not null" json:"discount_percent"`
	RoomCost        decimal.Decimal `gorm:"column:room_cost;type:decimal(10,2);not null" json:"room_cost"`
	ProductCost     decimal.Decimal `gorm:"column:product_cost;type:decimal(10,2);not null" json:"product_cost"`
	TotalCost       decimal.Decimal `gorm:"column:total_cost;type:decimal(10,2);not null" json:"total_cost"`

	Observations string `gorm:"column:observations;type:text" json:"observations"`

	SaleID *uint `gorm:"column:sale_id;uniqueIndex" json:"sale_id,omitempty"`

	Room       *Room       `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	Client     *Client     `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Sale       *Sale       `gorm:"foreignKey:SaleID" json:"sale,omitempty"`
	Payment    *Payment    `gorm:"foreignKey:ReservationID" json:"payment,omitempty"`
	Companions []Companion `gorm:"foreignKey:ReservationID" json:"companions"`
}

type PaymentType string

const (
	PaymentCash     PaymentType = "CASH"
	PaymentCard     PaymentType = "CARD"
	PaymentTransfer PaymentType = "TRANSFER"
)

func (t PaymentType) Valid() bool {
	switch t {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

type Payment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ReservationID uint            `gorm:"column:reservation_id;uniqueIndex;not null" json:"reservation_id"`
	PaymentType   PaymentType     `gorm:"column:payment_type;size:20;not null" json:"payment_type"`
	Amount        decimal.Decimal `gorm:"column:amount_received;type:decimal(10,2);not null" json:"amount_received"`
	CreatedAt     time.Time       `json:"created_at"`
}

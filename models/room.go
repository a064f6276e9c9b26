package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RoomStatus string

const (
	RoomAvailable RoomStatus = "AVAILABLE"
	RoomOccupied  RoomStatus = "OCCUPIED"
	RoomCleaning  RoomStatus = "CLEANING"
)

type Room struct {
	gorm.Model

	Number      string `json:"number" gorm:"column:number;uniqueIndex;type:varchar(40);not null"`
	FloorID     uint   `json:"floor_id" gorm:"column:floor_id;index;not null"`
	RoomTypeID  uint   `json:"room_type_id" gorm:"column:room_type_id;index;not null"`
	Description string `json:"description" gorm:"type:text"`

	NightlyPrice decimal.Decimal `json:"nightly_price" gorm:"column:nightly_price;type:decimal(10,2);not null"`

	// Status is owned by the occupancy workflow; catalog updates never touch it.
	Status RoomStatus `json:"status" gorm:"column:status;size:20;not null;index"`
	Active bool       `json:"active" gorm:"column:active;not null"`

	Floor    *Floor    `json:"floor,omitempty" gorm:"foreignKey:FloorID"`
	RoomType *RoomType `json:"room_type,omitempty" gorm:"foreignKey:RoomTypeID"`

	// ActiveReservation is filled by the reception board, never persisted.
	ActiveReservation *Reservation `json:"active_reservation,omitempty" gorm:"-"`
}

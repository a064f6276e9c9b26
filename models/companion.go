package models

import (
	"time"
)

// Companion is an additional guest registered with a reservation.
type Companion struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	CreatedAt time.Time `json:"created_at"`

	ReservationID uint `gorm:"index;column:reservation_id;not null" json:"reservation_id"`

	FullName   string `gorm:"size:255;not null" json:"full_name"`
	DocumentID string `gorm:"column:document_id;size:50" json:"document_id"`
}

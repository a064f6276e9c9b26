package models

import (
	"time"

	"gorm.io/gorm"
)

// RoomType groups rooms by category (single, double, suite...).
type RoomType struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Active      bool   `gorm:"not null" json:"active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Floor struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Number      int    `gorm:"uniqueIndex;not null" json:"number"`
	Description string `gorm:"size:255" json:"description"`
	Active      bool   `gorm:"not null" json:"active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

package models

import (
	"gorm.io/gorm"
)

type Client struct {
	gorm.Model

	DocumentID string `gorm:"column:document_id;uniqueIndex;size:50;not null" json:"document_id"`
	FullName   string `gorm:"size:255;not null" json:"full_name"`
	Phone      string `gorm:"size:30" json:"phone"`
	Email      string `gorm:"size:150" json:"email"`
	Active     bool   `gorm:"not null" json:"active"`
}

type Supplier struct {
	gorm.Model

	Name    string `gorm:"size:255;not null" json:"name"`
	Address string `gorm:"size:255" json:"address"`
	Phone   string `gorm:"size:30" json:"phone"`
	Email   string `gorm:"size:150" json:"email"`
	Active  bool   `gorm:"not null" json:"active"`
}

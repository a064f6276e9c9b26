package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	FullName    string         `gorm:"size:255" json:"full_name"`
	Username    string         `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email       string         `gorm:"size:150" json:"email"`
	Password    string         `gorm:"size:255" json:"-"` // bcrypt hash, never returned
	Active      bool           `gorm:"not null" json:"active"`
	IsSuperuser bool           `gorm:"column:is_superuser;not null" json:"is_superuser"`
	Groups      []Group        `gorm:"many2many:user_groups;joinForeignKey:UserID;joinReferences:GroupID" json:"groups"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is an append-only trail of state-changing operations.
type ActivityLog struct {
	ID       uint           `gorm:"primaryKey" json:"id"`
	UserID   uint           `gorm:"index" json:"user_id"`
	Action   string         `gorm:"size:50;index;not null" json:"action"`
	Entity   string         `gorm:"size:50;index;not null" json:"entity"`
	EntityID uint           `gorm:"index" json:"entity_id"`
	Details  datatypes.JSON `json:"details"`

	CreatedAt time.Time `json:"created_at"`
}

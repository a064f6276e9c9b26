package models

import "time"

// Group is a role: a named set of permission strings assigned to users.
type Group struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Permissions []GroupPermission `gorm:"foreignKey:GroupID" json:"permissions"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (g Group) PermissionCodes() []string {
	out := make([]string, 0, len(g.Permissions))
	for _, p := range g.Permissions {
		out = append(out, p.Permission)
	}
	return out
}

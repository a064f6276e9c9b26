package services

import (
	"sort"

	"hotel-manager/models"
)

// Actor is the authenticated user on whose behalf an operation runs.
type Actor struct {
	UserID      uint            `json:"user_id"`
	Username    string          `json:"username"`
	FullName    string          `json:"full_name"`
	Superuser   bool            `json:"is_superuser"`
	Permissions map[string]bool `json:"-"`
}

// NewActor flattens the user's group permissions.
func NewActor(u models.User) Actor {
	perms := map[string]bool{}
	for _, g := range u.Groups {
		for _, p := range g.PermissionCodes() {
			perms[p] = true
		}
	}
	return Actor{
		UserID:      u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		Superuser:   u.IsSuperuser,
		Permissions: perms,
	}
}

func (a Actor) Has(perm string) bool {
	return a.Superuser || a.Permissions[perm]
}

// PermissionList is the sorted permission set, used by /auth/me.
func (a Actor) PermissionList() []string {
	if a.Superuser {
		return models.AllPermissions()
	}
	out := make([]string, 0, len(a.Permissions))
	for p := range a.Permissions {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Authorizer is the policy check run before every protected handler.
type Authorizer interface {
	Authorize(actor Actor, perm string) error
}

type PermissionAuthorizer struct{}

func (PermissionAuthorizer) Authorize(actor Actor, perm string) error {
	if perm == "" || actor.Has(perm) {
		return nil
	}
	return &PermissionError{Permission: perm}
}

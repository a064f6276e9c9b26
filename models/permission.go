package models

type GroupPermission struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	GroupID    uint   `gorm:"not null;index:idx_group_permission,unique" json:"group_id"`
	Permission string `gorm:"size:150;not null;index:idx_group_permission,unique" json:"permission"`
}

// Permission strings follow <domain>.<action>_<entity>.
const (
	PermViewDashboard     = "reception.view_dashboard"
	PermViewRoomBoard     = "reception.view_room"
	PermOccupyRoom        = "reception.occupy_room"
	PermCheckoutRoom      = "reception.checkout_room"
	PermCleanRoom         = "reception.clean_room"
	PermReleaseRoom       = "reception.release_room"
	PermAddConsumption    = "reception.add_consumption"
	PermViewReservation   = "reception.view_reservation"
	PermChangeReservation = "reception.change_reservation"
)

var crudActions = []string{"view", "add", "change", "delete"}

// CatalogEntities, LedgerEntities and AuthEntities get the four CRUD permissions each.
var (
	CatalogEntities = []string{"floor", "roomtype", "room", "category", "supplier", "client", "product"}
	LedgerEntities  = []string{"purchase", "sale"}
	AuthEntities    = []string{"user", "group"}
)

// CRUDPermission builds e.g. "catalog.add_product".
func CRUDPermission(domain, action, entity string) string {
	return domain + "." + action + "_" + entity
}

// AllPermissions lists every permission the application checks.
func AllPermissions() []string {
	perms := []string{
		PermViewDashboard, PermViewRoomBoard, PermOccupyRoom, PermCheckoutRoom,
		PermCleanRoom, PermReleaseRoom, PermAddConsumption,
		PermViewReservation, PermChangeReservation,
	}
	for _, set := range []struct {
		domain   string
		entities []string
	}{
		{"catalog", CatalogEntities},
		{"ledger", LedgerEntities},
		{"auth", AuthEntities},
	} {
		for _, e := range set.entities {
			for _, a := range crudActions {
				perms = append(perms, CRUDPermission(set.domain, a, e))
			}
		}
	}
	return perms
}

func IsKnownPermission(p string) bool {
	for _, known := range AllPermissions() {
		if known == p {
			return true
		}
	}
	return false
}

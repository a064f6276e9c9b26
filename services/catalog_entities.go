package services

import (
	"context"
	"fmt"
	"strings"

	"hotel-manager/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func mustExist(tx *gorm.DB, model interface{}, id uint, field, label string) error {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return errors.Wrapf(err, "load %s", label)
	}
	if n == 0 {
		return newValidationError(field, label+" not found")
	}
	return nil
}

// deletedMark joins a released unique value and the row id.
const deletedMark = "~"

func releasedValue(value string, id uint) string {
	return fmt.Sprintf("%s%s%d", value, deletedMark, id)
}

func refuseIfReferenced(tx *gorm.DB, model interface{}, cond string, id uint, msg string) error {
	var n int64
	if err := tx.Model(model).Where(cond, id).Count(&n).Error; err != nil {
		return errors.Wrap(err, "check references")
	}
	if n > 0 {
		return conflict("%s", msg)
	}
	return nil
}

func NewFloorService(db *gorm.DB) *CatalogService[models.Floor] {
	return NewCatalogService(db, CatalogSpec[models.Floor]{
		Entity:      "floor",
		Order:       "number ASC",
		Columns:     []string{"number", "description", "active"},
		Filters:     map[string]string{"active": "active = ?"},
		UniqueField: "number",
		Defaults:    func(f *models.Floor) { f.Active = true },
		Prepare: func(_ *gorm.DB, f *models.Floor, _ bool) error {
			f.Description = strings.TrimSpace(f.Description)
			if f.Number < 0 {
				return newValidationError("number", "floor number cannot be negative")
			}
			return nil
		},
		BeforeDelete: func(tx *gorm.DB, f *models.Floor) error {
			return refuseIfReferenced(tx, &models.Room{}, "floor_id = ?", f.ID, "floor still has rooms")
		},
		Release: func(f *models.Floor) map[string]interface{} {
			return map[string]interface{}{"number": -int(f.ID)}
		},
	})
}

func NewRoomTypeService(db *gorm.DB) *CatalogService[models.RoomType] {
	return NewCatalogService(db, CatalogSpec[models.RoomType]{
		Entity:      "roomtype",
		Order:       "name ASC",
		Columns:     []string{"name", "description", "active"},
		Filters:     map[string]string{"active": "active = ?"},
		UniqueField: "name",
		Defaults:    func(t *models.RoomType) { t.Active = true },
		Prepare: func(_ *gorm.DB, t *models.RoomType, _ bool) error {
			t.Name = strings.TrimSpace(t.Name)
			if t.Name == "" {
				return newValidationError("name", "name is required")
			}
			return nil
		},
		BeforeDelete: func(tx *gorm.DB, t *models.RoomType) error {
			return refuseIfReferenced(tx, &models.Room{}, "room_type_id = ?", t.ID, "room type is used by rooms")
		},
	})
}

// NewRoomService manages the room catalog. Status is never written here
// except to start new rooms as AVAILABLE.
func NewRoomService(db *gorm.DB, cache *DashboardCache) *CatalogService[models.Room] {
	return NewCatalogService(db, CatalogSpec[models.Room]{
		Entity:      "room",
		Preloads:    []string{"Floor", "RoomType"},
		Order:       "number ASC",
		Columns:     []string{"number", "floor_id", "room_type_id", "description", "nightly_price", "active"},
		Filters:     map[string]string{"active": "active = ?", "floor_id": "floor_id = ?", "status": "status = ?"},
		UniqueField: "number",
		Defaults:    func(r *models.Room) { r.Active = true },
		Prepare: func(tx *gorm.DB, r *models.Room, creating bool) error {
			r.Number = strings.TrimSpace(r.Number)
			verr := &ValidationError{}
			if r.Number == "" {
				verr.Add("number", "room number is required")
			} else if strings.Contains(r.Number, deletedMark) {
				verr.Add("number", "room number cannot contain "+deletedMark)
			}
			if r.NightlyPrice.IsNegative() {
				verr.Add("nightly_price", "price cannot be negative")
			}
			if r.FloorID == 0 {
				verr.Add("floor_id", "floor is required")
			}
			if r.RoomTypeID == 0 {
				verr.Add("room_type_id", "room type is required")
			}
			if err := verr.OrNil(); err != nil {
				return err
			}
			if err := mustExist(tx, &models.Floor{}, r.FloorID, "floor_id", "floor"); err != nil {
				return err
			}
			if err := mustExist(tx, &models.RoomType{}, r.RoomTypeID, "room_type_id", "room type"); err != nil {
				return err
			}
			if creating {
				r.Status = models.RoomAvailable
			}
			return nil
		},
		BeforeDelete: func(tx *gorm.DB, r *models.Room) error {
			return refuseIfReferenced(tx, &models.Reservation{}, "room_id = ? AND status = 'ACTIVE'", r.ID,
				"room has an active reservation")
		},
		Release: func(r *models.Room) map[string]interface{} {
			return map[string]interface{}{"number": releasedValue(r.Number, r.ID)}
		},
		AfterWrite: func(ctx context.Context) { cache.Invalidate(ctx) },
	})
}

func NewCategoryService(db *gorm.DB) *CatalogService[models.Category] {
	return NewCatalogService(db, CatalogSpec[models.Category]{
		Entity:  "category",
		Order:   "name ASC",
		Columns: []string{"name", "description"},
		Prepare: func(_ *gorm.DB, c *models.Category, _ bool) error {
			c.Name = strings.TrimSpace(c.Name)
			if c.Name == "" {
				return newValidationError("name", "name is required")
			}
			return nil
		},
	})
}

func NewSupplierService(db *gorm.DB) *CatalogService[models.Supplier] {
	return NewCatalogService(db, CatalogSpec[models.Supplier]{
		Entity:   "supplier",
		Order:    "name ASC",
		Columns:  []string{"name", "address", "phone", "email", "active"},
		Filters:  map[string]string{"active": "active = ?"},
		Defaults: func(s *models.Supplier) { s.Active = true },
		Prepare: func(_ *gorm.DB, s *models.Supplier, _ bool) error {
			s.Name = strings.TrimSpace(s.Name)
			s.Email = strings.TrimSpace(s.Email)
			if s.Name == "" {
				return newValidationError("name", "name is required")
			}
			return nil
		},
	})
}

func NewClientService(db *gorm.DB) *CatalogService[models.Client] {
	return NewCatalogService(db, CatalogSpec[models.Client]{
		Entity:      "client",
		Order:       "full_name ASC",
		Columns:     []string{"document_id", "full_name", "phone", "email", "active"},
		Filters:     map[string]string{"active": "active = ?", "document_id": "document_id = ?"},
		UniqueField: "document_id",
		Defaults:    func(c *models.Client) { c.Active = true },
		Prepare: func(_ *gorm.DB, c *models.Client, _ bool) error {
			c.DocumentID = strings.TrimSpace(c.DocumentID)
			c.FullName = strings.TrimSpace(c.FullName)
			verr := &ValidationError{}
			if c.DocumentID == "" {
				verr.Add("document_id", "document id is required")
			} else if strings.Contains(c.DocumentID, deletedMark) {
				verr.Add("document_id", "document id cannot contain "+deletedMark)
			}
			if c.FullName == "" {
				verr.Add("full_name", "full name is required")
			}
			return verr.OrNil()
		},
		BeforeDelete: func(tx *gorm.DB, c *models.Client) error {
			return refuseIfReferenced(tx, &models.Reservation{}, "client_id = ? AND status = 'ACTIVE'", c.ID,
				"client has an active reservation")
		},
		Release: func(c *models.Client) map[string]interface{} {
			return map[string]interface{}{"document_id": releasedValue(c.DocumentID, c.ID)}
		},
	})
}

// NewProductService manages products. Stock is only set on creation; after
// that it changes exclusively through the ledger and consumptions.
func NewProductService(db *gorm.DB) *CatalogService[models.Product] {
	return NewCatalogService(db, CatalogSpec[models.Product]{
		Entity:   "product",
		Preloads: []string{"Category"},
		Order:    "name ASC",
		Columns:  []string{"name", "category_id", "description", "sale_price", "active"},
		Filters:  map[string]string{"active": "active = ?", "category_id": "category_id = ?"},
		Defaults: func(p *models.Product) { p.Active = true },
		Prepare: func(tx *gorm.DB, p *models.Product, creating bool) error {
			p.Name = strings.TrimSpace(p.Name)
			verr := &ValidationError{}
			if p.Name == "" {
				verr.Add("name", "name is required")
			}
			if p.SalePrice.IsNegative() {
				verr.Add("sale_price", "price cannot be negative")
			}
			if creating && p.Stock < 0 {
				verr.Add("stock", "initial stock cannot be negative")
			}
			if err := verr.OrNil(); err != nil {
				return err
			}
			if p.CategoryID != nil && *p.CategoryID != 0 {
				return mustExist(tx, &models.Category{}, *p.CategoryID, "category_id", "category")
			}
			p.CategoryID = nil
			return nil
		},
	})
}

package services

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogEntity is implemented by every model managed through CatalogService.
type CatalogEntity interface {
	PrimaryID() uint
}

// CatalogSpec describes how one catalog entity is listed, validated and written.
type CatalogSpec[T CatalogEntity] struct {
	Entity   string
	Preloads []string
	Order    string
	// Columns are the only columns an update may touch.
	Columns []string
	// Filters maps a query parameter to a SQL condition with one placeholder.
	Filters map[string]string
	// UniqueField names the field reported on duplicate-key errors.
	UniqueField string

	Defaults func(item *T)
	Prepare  func(tx *gorm.DB, item *T, creating bool) error
	// BeforeDelete may refuse the delete, typically with a StateConflictError.
	BeforeDelete func(tx *gorm.DB, item *T) error
	// Release returns columns rewritten before the soft delete so unique
	// values become free for new rows.
	Release    func(item *T) map[string]interface{}
	AfterWrite func(ctx context.Context)
}

type CatalogService[T CatalogEntity] struct {
	DB   *gorm.DB
	Spec CatalogSpec[T]
}

func NewCatalogService[T CatalogEntity](db *gorm.DB, spec CatalogSpec[T]) *CatalogService[T] {
	if spec.Order == "" {
		spec.Order = "id ASC"
	}
	return &CatalogService[T]{DB: db, Spec: spec}
}

// New returns an empty entity with defaults applied, ready for binding.
func (s *CatalogService[T]) New() *T {
	item := new(T)
	if s.Spec.Defaults != nil {
		s.Spec.Defaults(item)
	}
	return item
}

func (s *CatalogService[T]) withPreloads(db *gorm.DB) *gorm.DB {
	for _, p := range s.Spec.Preloads {
		db = db.Preload(p)
	}
	return db
}

func (s *CatalogService[T]) List(ctx context.Context, params map[string]string) ([]T, error) {
	q := s.withPreloads(s.DB.WithContext(ctx)).Order(s.Spec.Order)
	for key, cond := range s.Spec.Filters {
		v, ok := params[key]
		if !ok || v == "" {
			continue
		}
		switch v {
		case "true":
			q = q.Where(cond, true)
		case "false":
			q = q.Where(cond, false)
		default:
			q = q.Where(cond, v)
		}
	}
	var out []T
	if err := q.Find(&out).Error; err != nil {
		return nil, errors.Wrapf(err, "list %s", s.Spec.Entity)
	}
	return out, nil
}

func (s *CatalogService[T]) Get(ctx context.Context, id uint) (*T, error) {
	item := new(T)
	if err := s.withPreloads(s.DB.WithContext(ctx)).First(item, id).Error; err != nil {
		return nil, notFoundOr(err, s.Spec.Entity, id)
	}
	return item, nil
}

func (s *CatalogService[T]) afterWrite(ctx context.Context) {
	if s.Spec.AfterWrite != nil {
		s.Spec.AfterWrite(ctx)
	}
}

func (s *CatalogService[T]) Create(ctx context.Context, actor Actor, item *T) (*T, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.Spec.Prepare != nil {
			if err := s.Spec.Prepare(tx, item, true); err != nil {
				return err
			}
		}
		if err := tx.Omit(clause.Associations).Create(item).Error; err != nil {
			return duplicateOr(errors.Wrapf(err, "create %s", s.Spec.Entity), s.Spec.UniqueField, s.Spec.Entity)
		}
		return recordActivity(tx, actor, "create", s.Spec.Entity, (*item).PrimaryID(), nil)
	})
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx)
	return s.Get(ctx, (*item).PrimaryID())
}

// Update writes the whitelisted columns of item onto the stored row.
func (s *CatalogService[T]) Update(ctx context.Context, actor Actor, id uint, item *T) (*T, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing := new(T)
		if err := forUpdate(tx).First(existing, id).Error; err != nil {
			return notFoundOr(err, s.Spec.Entity, id)
		}
		if s.Spec.Prepare != nil {
			if err := s.Spec.Prepare(tx, item, false); err != nil {
				return err
			}
		}
		if err := tx.Model(existing).Select(s.Spec.Columns).Updates(item).Error; err != nil {
			return duplicateOr(errors.Wrapf(err, "update %s", s.Spec.Entity), s.Spec.UniqueField, s.Spec.Entity)
		}
		return recordActivity(tx, actor, "update", s.Spec.Entity, id, nil)
	})
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx)
	return s.Get(ctx, id)
}

func (s *CatalogService[T]) Delete(ctx context.Context, actor Actor, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing := new(T)
		if err := forUpdate(tx).First(existing, id).Error; err != nil {
			return notFoundOr(err, s.Spec.Entity, id)
		}
		if s.Spec.BeforeDelete != nil {
			if err := s.Spec.BeforeDelete(tx, existing); err != nil {
				return err
			}
		}
		if s.Spec.Release != nil {
			if err := tx.Model(existing).UpdateColumns(s.Spec.Release(existing)).Error; err != nil {
				return errors.Wrapf(err, "release %s", s.Spec.Entity)
			}
		}
		if err := tx.Delete(existing).Error; err != nil {
			return errors.Wrapf(err, "delete %s", s.Spec.Entity)
		}
		return recordActivity(tx, actor, "delete", s.Spec.Entity, id, nil)
	})
	if err != nil {
		return err
	}
	s.afterWrite(ctx)
	return nil
}

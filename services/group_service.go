package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"hotel-manager/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type GroupInput struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

type GroupService struct {
	DB *gorm.DB
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{DB: db}
}

func normalizePermissions(in []string) ([]string, error) {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for i, p := range in {
		p = strings.TrimSpace(p)
		if !models.IsKnownPermission(p) {
			return nil, newValidationError(fmt.Sprintf("permissions[%d]", i), "unknown permission "+p)
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	var out []models.Group
	err := s.DB.WithContext(ctx).Preload("Permissions").Order("name ASC").Find(&out).Error
	return out, errors.Wrap(err, "list groups")
}

func (s *GroupService) Get(ctx context.Context, id uint) (*models.Group, error) {
	var g models.Group
	if err := s.DB.WithContext(ctx).Preload("Permissions").First(&g, id).Error; err != nil {
		return nil, notFoundOr(err, "group", id)
	}
	return &g, nil
}

func replacePermissions(tx *gorm.DB, groupID uint, perms []string) error {
	if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupPermission{}).Error; err != nil {
		return errors.Wrap(err, "clear permissions")
	}
	if len(perms) == 0 {
		return nil
	}
	rows := make([]models.GroupPermission, 0, len(perms))
	for _, p := range perms {
		rows = append(rows, models.GroupPermission{GroupID: groupID, Permission: p})
	}
	return errors.Wrap(tx.Create(&rows).Error, "store permissions")
}

func (s *GroupService) Create(ctx context.Context, actor Actor, in GroupInput) (*models.Group, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, newValidationError("name", "name is required")
	}
	perms, err := normalizePermissions(in.Permissions)
	if err != nil {
		return nil, err
	}

	group := models.Group{Name: name}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Permissions").Create(&group).Error; err != nil {
			return duplicateOr(errors.Wrap(err, "create group"), "name", "group")
		}
		if err := replacePermissions(tx, group.ID, perms); err != nil {
			return err
		}
		return recordActivity(tx, actor, "create", "group", group.ID, map[string]interface{}{"permissions": perms})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, group.ID)
}

func (s *GroupService) Update(ctx context.Context, actor Actor, id uint, in GroupInput) (*models.Group, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, newValidationError("name", "name is required")
	}
	perms, err := normalizePermissions(in.Permissions)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := forUpdate(tx).First(&group, id).Error; err != nil {
			return notFoundOr(err, "group", id)
		}
		if err := tx.Model(&group).Update("name", name).Error; err != nil {
			return duplicateOr(errors.Wrap(err, "update group"), "name", "group")
		}
		if err := replacePermissions(tx, group.ID, perms); err != nil {
			return err
		}
		return recordActivity(tx, actor, "update", "group", group.ID, map[string]interface{}{"permissions": perms})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *GroupService) Delete(ctx context.Context, actor Actor, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.First(&group, id).Error; err != nil {
			return notFoundOr(err, "group", id)
		}
		var members int64
		if err := tx.Table("user_groups").Where("group_id = ?", id).Count(&members).Error; err != nil {
			return errors.Wrap(err, "count members")
		}
		if members > 0 {
			return conflict("group %s still has members", group.Name)
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupPermission{}).Error; err != nil {
			return errors.Wrap(err, "delete permissions")
		}
		if err := tx.Delete(&group).Error; err != nil {
			return errors.Wrap(err, "delete group")
		}
		return recordActivity(tx, actor, "delete", "group", id, map[string]interface{}{"name": group.Name})
	})
}

package services

import (
	"context"
	"strings"

	"hotel-manager/models"
	"hotel-manager/utils"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type UserInput struct {
	FullName    string `json:"full_name"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Active      *bool  `json:"active"`
	IsSuperuser bool   `json:"is_superuser"`
	GroupIDs    []uint `json:"group_ids"`
}

type UserService struct {
	DB         *gorm.DB
	BcryptCost int
}

func NewUserService(db *gorm.DB, bcryptCost int) *UserService {
	return &UserService{DB: db, BcryptCost: bcryptCost}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := s.DB.WithContext(ctx).Preload("Groups").Order("username ASC").Find(&out).Error
	return out, errors.Wrap(err, "list users")
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).Preload("Groups").First(&u, id).Error; err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	return &u, nil
}

func loadGroups(tx *gorm.DB, ids []uint) ([]models.Group, error) {
	if len(ids) == 0 {
		return []models.Group{}, nil
	}
	var groups []models.Group
	if err := tx.Where("id IN ?", ids).Find(&groups).Error; err != nil {
		return nil, errors.Wrap(err, "load groups")
	}
	if len(groups) != len(uniqueIDs(ids)) {
		return nil, newValidationError("group_ids", "unknown group")
	}
	return groups, nil
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	out := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func (s *UserService) Create(ctx context.Context, actor Actor, in UserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	verr := &ValidationError{}
	if in.Username == "" {
		verr.Add("username", "username is required")
	}
	if len(in.Password) < 6 {
		verr.Add("password", "password must have at least 6 characters")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}
	user := models.User{
		FullName:    strings.TrimSpace(in.FullName),
		Username:    in.Username,
		Email:       strings.TrimSpace(in.Email),
		Password:    hash,
		Active:      active,
		IsSuperuser: in.IsSuperuser,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		groups, err := loadGroups(tx, in.GroupIDs)
		if err != nil {
			return err
		}
		user.Groups = groups
		if err := tx.Omit("Groups.*").Create(&user).Error; err != nil {
			return duplicateOr(errors.Wrap(err, "create user"), "username", "username")
		}
		return recordActivity(tx, actor, "create", "user", user.ID, map[string]interface{}{"username": user.Username})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, user.ID)
}

// Update replaces profile fields and group membership. An empty password
// keeps the current one.
func (s *UserService) Update(ctx context.Context, actor Actor, id uint, in UserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return nil, newValidationError("username", "username is required")
	}
	if in.Password != "" && len(in.Password) < 6 {
		return nil, newValidationError("password", "password must have at least 6 characters")
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := forUpdate(tx).First(&user, id).Error; err != nil {
			return notFoundOr(err, "user", id)
		}
		groups, err := loadGroups(tx, in.GroupIDs)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"full_name":    strings.TrimSpace(in.FullName),
			"username":     in.Username,
			"email":        strings.TrimSpace(in.Email),
			"is_superuser": in.IsSuperuser,
		}
		if in.Active != nil {
			updates["active"] = *in.Active
		}
		if in.Password != "" {
			hash, err := utils.HashPassword(in.Password, s.BcryptCost)
			if err != nil {
				return errors.Wrap(err, "hash password")
			}
			updates["password"] = hash
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return duplicateOr(errors.Wrap(err, "update user"), "username", "username")
		}
		assoc := tx.Model(&user).Association("Groups")
		if len(groups) == 0 {
			err = assoc.Clear()
		} else {
			err = assoc.Replace(groups)
		}
		if err != nil {
			return errors.Wrap(err, "replace groups")
		}
		return recordActivity(tx, actor, "update", "user", user.ID, map[string]interface{}{"username": in.Username})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, actor Actor, id uint) error {
	if actor.UserID == id {
		return conflict("you cannot delete your own account")
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return notFoundOr(err, "user", id)
		}
		if err := tx.Model(&user).Association("Groups").Clear(); err != nil {
			return errors.Wrap(err, "clear groups")
		}
		if err := tx.Delete(&user).Error; err != nil {
			return errors.Wrap(err, "delete user")
		}
		return recordActivity(tx, actor, "delete", "user", id, map[string]interface{}{"username": user.Username})
	})
}

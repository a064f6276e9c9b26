package config

import (
	"strings"

	"hotel-manager/models"
	"hotel-manager/utils"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	AdminGroupName        = "Administrador"
	ReceptionistGroupName = "Recepcionista"
)

// receptionistPermissions: the whole reception domain, read access to the
// catalog and full access to sales.
func receptionistPermissions() []string {
	var perms []string
	for _, p := range models.AllPermissions() {
		switch {
		case strings.HasPrefix(p, "reception."):
			perms = append(perms, p)
		case strings.HasPrefix(p, "catalog.view_"):
			perms = append(perms, p)
		case strings.HasSuffix(p, "_sale") && strings.HasPrefix(p, "ledger."):
			perms = append(perms, p)
		}
	}
	return perms
}

// Seed creates the default groups and, when the users table is empty, a
// superuser. Running it twice is harmless.
func Seed(db *gorm.DB, cfg Config) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := seedGroup(tx, AdminGroupName, models.AllPermissions()); err != nil {
			return err
		}
		if err := seedGroup(tx, ReceptionistGroupName, receptionistPermissions()); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
			return errors.Wrap(err, "count users")
		}
		if count > 0 {
			return nil
		}

		hash, err := utils.HashPassword(cfg.SeedAdminPassword, cfg.BcryptCost)
		if err != nil {
			return errors.Wrap(err, "hash admin password")
		}

		var admin models.Group
		if err := tx.Where("name = ?", AdminGroupName).First(&admin).Error; err != nil {
			return errors.Wrap(err, "load admin group")
		}

		user := models.User{
			FullName:    "Administrator",
			Username:    cfg.SeedAdminUsername,
			Password:    hash,
			Active:      true,
			IsSuperuser: true,
			Groups:      []models.Group{admin},
		}
		if err := tx.Omit("Groups.*").Create(&user).Error; err != nil {
			return errors.Wrap(err, "create admin user")
		}
		log.WithField("username", user.Username).Info("default superuser created")
		return nil
	})
}

func seedGroup(tx *gorm.DB, name string, perms []string) error {
	group := models.Group{Name: name}
	if err := tx.Where("name = ?", name).FirstOrCreate(&group).Error; err != nil {
		return errors.Wrapf(err, "seed group %s", name)
	}

	rows := make([]models.GroupPermission, 0, len(perms))
	for _, p := range perms {
		rows = append(rows, models.GroupPermission{GroupID: group.ID, Permission: p})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return errors.Wrapf(err, "seed permissions for %s", name)
	}
	return nil
}

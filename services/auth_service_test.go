package services

import (
	"context"
	"testing"
	"time"

	"hotel-manager/config"
	"hotel-manager/models"
	"hotel-manager/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededDB(t *testing.T) (*AuthService, config.Config) {
	t.Helper()
	db := newTestDB(t)
	cfg := config.Config{SeedAdminUsername: "admin", SeedAdminPassword: "admin123", BcryptCost: 4}
	require.NoError(t, config.Seed(db, cfg))
	return NewAuthService(db, "test-secret", time.Hour), cfg
}

func TestLoginAndAuthenticate(t *testing.T) {
	auth, cfg := seededDB(t)
	ctx := context.Background()

	res, err := auth.Login(ctx, cfg.SeedAdminUsername, cfg.SeedAdminPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.True(t, res.User.IsSuperuser)

	actor, err := auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, actor.UserID)
	assert.True(t, actor.Has(models.PermOccupyRoom))

	t.Run("wrong password", func(t *testing.T) {
		_, err := auth.Login(ctx, cfg.SeedAdminUsername, "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := auth.Login(ctx, "ghost", "whatever")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		tok, err := utils.NewAccessToken("other", res.User.ID, time.Hour)
		require.NoError(t, err)
		_, err = auth.Authenticate(ctx, tok.Token)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("deactivated user", func(t *testing.T) {
		require.NoError(t, auth.DB.Model(&models.User{}).Where("id = ?", res.User.ID).Update("active", false).Error)
		_, err := auth.Authenticate(ctx, res.Token)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestReceptionistPermissions(t *testing.T) {
	auth, _ := seededDB(t)
	ctx := context.Background()
	groups := NewGroupService(auth.DB)
	users := NewUserService(auth.DB, 4)

	all, err := groups.List(ctx)
	require.NoError(t, err)
	var receptionist models.Group
	for _, g := range all {
		if g.Name == config.ReceptionistGroupName {
			receptionist = g
		}
	}
	require.NotZero(t, receptionist.ID)

	admin := Actor{UserID: 1, Superuser: true}
	u, err := users.Create(ctx, admin, UserInput{Username: "maria", Password: "secret1", GroupIDs: []uint{receptionist.ID}})
	require.NoError(t, err)
	require.Len(t, u.Groups, 1)

	res, err := auth.Login(ctx, "maria", "secret1")
	require.NoError(t, err)
	actor, err := auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)

	authz := PermissionAuthorizer{}
	assert.NoError(t, authz.Authorize(actor, models.PermCheckoutRoom))
	assert.NoError(t, authz.Authorize(actor, models.CRUDPermission("catalog", "view", "product")))
	assert.NoError(t, authz.Authorize(actor, models.CRUDPermission("ledger", "add", "sale")))

	err = authz.Authorize(actor, models.CRUDPermission("ledger", "add", "purchase"))
	var perr *PermissionError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "ledger.add_purchase", perr.Permission)
	assert.Error(t, authz.Authorize(actor, models.CRUDPermission("catalog", "delete", "room")))
}

func TestGroupAndUserManagement(t *testing.T) {
	auth, _ := seededDB(t)
	ctx := context.Background()
	groups := NewGroupService(auth.DB)
	users := NewUserService(auth.DB, 4)
	admin := Actor{UserID: 1, Superuser: true}

	_, err := groups.Create(ctx, admin, GroupInput{Name: "Limpieza", Permissions: []string{"reception.fly_room"}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	g, err := groups.Create(ctx, admin, GroupInput{Name: "Limpieza", Permissions: []string{
		models.PermCleanRoom, models.PermReleaseRoom, models.PermCleanRoom,
	}})
	require.NoError(t, err)
	assert.Len(t, g.Permissions, 2)

	_, err = groups.Create(ctx, admin, GroupInput{Name: "Limpieza"})
	require.ErrorAs(t, err, &verr, "duplicate name")

	u, err := users.Create(ctx, admin, UserInput{Username: "pedro", Password: "secret1", GroupIDs: []uint{g.ID}})
	require.NoError(t, err)

	var cerr *StateConflictError
	require.ErrorAs(t, groups.Delete(ctx, admin, g.ID), &cerr, "group with members")

	inactive := false
	u, err = users.Update(ctx, admin, u.ID, UserInput{Username: "pedro", Active: &inactive})
	require.NoError(t, err)
	assert.False(t, u.Active)
	assert.Empty(t, u.Groups)

	require.NoError(t, groups.Delete(ctx, admin, g.ID))
	require.ErrorAs(t, users.Delete(ctx, Actor{UserID: u.ID}, u.ID), &cerr, "self delete")
	require.NoError(t, users.Delete(ctx, admin, u.ID))

	_, err = users.Create(ctx, admin, UserInput{Username: "x", Password: "123"})
	require.ErrorAs(t, err, &verr)
}

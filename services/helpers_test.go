package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"hotel-manager/config"
	"hotel-manager/models"
	"hotel-manager/queue"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.AutoMigrate(db))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

type fixture struct {
	DB       *gorm.DB
	Actor    Actor
	Floor    models.Floor
	RoomType models.RoomType
	Room     models.Room
	Client   models.Client
	Supplier models.Supplier
	Product  models.Product
}

// newFixture seeds one room at 100.00/night, an active client and a product
// priced 15.00 with 10 units in stock.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{DB: db}

	user := models.User{Username: "reception", FullName: "Front Desk", Active: true, IsSuperuser: true}
	require.NoError(t, db.Create(&user).Error)
	f.Actor = NewActor(user)

	f.Floor = models.Floor{Number: 1, Active: true}
	require.NoError(t, db.Create(&f.Floor).Error)
	f.RoomType = models.RoomType{Name: "Double", Active: true}
	require.NoError(t, db.Create(&f.RoomType).Error)
	f.Room = models.Room{
		Number:       "101",
		FloorID:      f.Floor.ID,
		RoomTypeID:   f.RoomType.ID,
		NightlyPrice: dec("100.00"),
		Status:       models.RoomAvailable,
		Active:       true,
	}
	require.NoError(t, db.Create(&f.Room).Error)
	f.Client = models.Client{DocumentID: "0102030405", FullName: "Ana Torres", Active: true}
	require.NoError(t, db.Create(&f.Client).Error)
	f.Supplier = models.Supplier{Name: "Distribuidora Norte", Active: true}
	require.NoError(t, db.Create(&f.Supplier).Error)
	f.Product = models.Product{Name: "Agua", SalePrice: dec("15.00"), Stock: 10, Active: true}
	require.NoError(t, db.Create(&f.Product).Error)
	return f
}

func (f *fixture) addProduct(t *testing.T, name, price string, stock int) models.Product {
	t.Helper()
	p := models.Product{Name: name, SalePrice: dec(price), Stock: stock, Active: true}
	require.NoError(t, f.DB.Create(&p).Error)
	return p
}

func (f *fixture) stock(t *testing.T, productID uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, f.DB.Unscoped().First(&p, productID).Error)
	return p.Stock
}

func (f *fixture) room(t *testing.T) models.Room {
	t.Helper()
	var r models.Room
	require.NoError(t, f.DB.First(&r, f.Room.ID).Error)
	return r
}

func (f *fixture) activeReservations(t *testing.T, roomID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.DB.Model(&models.Reservation{}).
		Where("room_id = ? AND status = ?", roomID, models.ReservationActive).Count(&n).Error)
	return n
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

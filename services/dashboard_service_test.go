package services

import (
	"context"
	"testing"
	"time"

	"hotel-manager/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, n := range []string{"102", "103"} {
		r := models.Room{Number: n, FloorID: f.Floor.ID, RoomTypeID: f.RoomType.ID,
			NightlyPrice: dec("50.00"), Status: models.RoomAvailable, Active: true}
		require.NoError(t, f.DB.Create(&r).Error)
	}

	occ, _ := newOccupancy(f)
	_, err := occ.Occupy(ctx, f.Actor, f.Room.ID, occupyInput(f)) // 180.00 on Monday 2025-03-10
	require.NoError(t, err)
	_, err = occ.MarkCleaning(ctx, f.Actor, 2)
	require.NoError(t, err)

	// outside the week and a cancelled one inside it
	require.NoError(t, f.DB.Create(&models.Reservation{
		RoomID: 3, ClientID: f.Client.ID, Status: models.ReservationFinished,
		CheckInAt: checkIn.AddDate(0, 0, -7), CheckOutAt: checkIn.AddDate(0, 0, -6), Nights: 1,
		RoomCost: dec("50"), TotalCost: dec("50"),
	}).Error)
	require.NoError(t, f.DB.Create(&models.Reservation{
		RoomID: 3, ClientID: f.Client.ID, Status: models.ReservationCancelled,
		CheckInAt: checkIn.Add(24 * time.Hour), CheckOutAt: checkIn.Add(48 * time.Hour), Nights: 1,
		RoomCost: dec("50"), TotalCost: dec("50"),
	}).Error)
	require.NoError(t, f.DB.Create(&models.Reservation{
		RoomID: 3, ClientID: f.Client.ID, Status: models.ReservationFinished,
		CheckInAt: checkIn.Add(72 * time.Hour), CheckOutAt: checkIn.Add(96 * time.Hour), Nights: 1,
		RoomCost: dec("45.50"), TotalCost: dec("45.50"),
	}).Error)

	svc := NewDashboardService(f.DB, nil, time.UTC)
	svc.now = fixedClock(checkIn.Add(48 * time.Hour))

	s, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, s.TotalRooms)
	assert.EqualValues(t, 1, s.AvailableRooms)
	assert.EqualValues(t, 1, s.OccupiedRooms)
	assert.EqualValues(t, 1, s.CleaningRooms)
	assert.EqualValues(t, 2, s.WeeklyBookings)
	assert.True(t, s.WeeklyIncome.Equal(dec("225.50")), s.WeeklyIncome.String())
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), s.WeekStart)
}

func TestDashboardEmpty(t *testing.T) {
	db := newTestDB(t)
	s, err := NewDashboardService(db, &DashboardCache{}, nil).Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, s.TotalRooms)
	assert.True(t, s.WeeklyIncome.IsZero())
}

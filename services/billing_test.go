package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNightsBetween(t *testing.T) {
	base := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		checkout time.Time
		want     int
	}{
		{"exact two days", base.Add(48 * time.Hour), 2},
		{"remainder rounds up", base.Add(48*time.Hour + time.Minute), 3},
		{"sub-second is ignored", base.Add(48*time.Hour + 300*time.Millisecond), 2},
		{"same day", base.Add(3 * time.Hour), 1},
		{"in the past", base.Add(-24 * time.Hour), 1},
		{"same instant", base, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NightsBetween(base, tc.checkout))
		})
	}
}

func TestReservationTotal(t *testing.T) {
	assert.True(t, ApplyDiscount(dec("200.00"), dec("10")).Equal(dec("180.00")))
	assert.True(t, ApplyDiscount(dec("99.99"), dec("33.33")).Equal(dec("66.66")))
	assert.True(t, ApplyDiscount(dec("150"), dec("0")).Equal(dec("150")))
	assert.True(t, ApplyDiscount(dec("150"), dec("100")).IsZero())
	assert.True(t, ReservationTotal(dec("200.00"), dec("10"), dec("30.00")).Equal(dec("210.00")))
	assert.True(t, RoomCost(dec("100.00"), 2).Equal(dec("200.00")))
}

func TestWeekBounds(t *testing.T) {
	loc := time.FixedZone("ECT", -5*3600)

	// Sunday evening local time still belongs to the week that started Monday.
	sunday := time.Date(2025, 3, 16, 22, 30, 0, 0, loc)
	start, end := WeekBounds(sunday, loc)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2025, 3, 17, 0, 0, 0, 0, loc), end)

	monday := time.Date(2025, 3, 17, 0, 0, 0, 0, loc)
	start, _ = WeekBounds(monday, loc)
	assert.Equal(t, monday, start)
}

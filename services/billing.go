package services

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// NightsBetween counts billed nights: whole days plus one for any leftover
// second, never less than one.
func NightsBetween(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn).Truncate(time.Second)
	day := 24 * time.Hour
	nights := int(d / day)
	if d%day > 0 {
		nights++
	}
	if nights < 1 {
		nights = 1
	}
	return nights
}

// RoomCost is nightly price times nights.
func RoomCost(nightly decimal.Decimal, nights int) decimal.Decimal {
	return nightly.Mul(decimal.NewFromInt(int64(nights))).Round(2)
}

// ApplyDiscount returns round2(amount * (1 - percent/100)).
func ApplyDiscount(amount, percent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(percent.Div(hundred))
	return amount.Mul(factor).Round(2)
}

// ReservationTotal is the discounted room cost plus consumptions.
func ReservationTotal(roomCost, discount, productCost decimal.Decimal) decimal.Decimal {
	return ApplyDiscount(roomCost, discount).Add(productCost)
}

func lineSubtotal(qty int, unit decimal.Decimal) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(qty))).Round(2)
}

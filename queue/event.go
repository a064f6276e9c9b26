// Package queue defines the domain events published to the message broker.
package queue

import "time"

const (
	RoutingRoomStatusChanged     = "room.status_changed"
	RoutingConsumptionRegistered = "reservation.consumption_registered"
)

// Event is anything that can be published; RoutingKey selects the topic.
type Event interface {
	RoutingKey() string
}

// RoomStatusChanged is emitted after every committed room transition.
type RoomStatusChanged struct {
	RoomID        uint      `json:"room_id"`
	RoomNumber    string    `json:"room_number"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	ReservationID uint      `json:"reservation_id,omitempty"`
	UserID        uint      `json:"user_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (RoomStatusChanged) RoutingKey() string { return RoutingRoomStatusChanged }

// ConsumptionRegistered is emitted when products are billed to a stay.
type ConsumptionRegistered struct {
	RoomID        uint      `json:"room_id"`
	ReservationID uint      `json:"reservation_id"`
	SaleID        uint      `json:"sale_id"`
	Lines         int       `json:"lines"`
	ProductCost   string    `json:"product_cost"`
	TotalCost     string    `json:"total_cost"`
	UserID        uint      `json:"user_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (ConsumptionRegistered) RoutingKey() string { return RoutingConsumptionRegistered }

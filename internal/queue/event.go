// Package queue defines the reservation events exchanged over RabbitMQ, the
// publisher used by the booking flow and the consumer that records them.
package queue

// ReservationCreatedQueue is the durable queue carrying ReservationCreatedEvent.
const ReservationCreatedQueue = "reservation.created"

// ReservationCreatedEvent is published after a reservation commits.  It holds
// enough data for consumers to log or notify without querying the database.
type ReservationCreatedEvent struct {
	ReservationID   uint64 `json:"reservation_id"`
	Code            string `json:"code"`
	UserID          uint64 `json:"user_id"`
	DestinationID   uint64 `json:"destination_id"`
	DestinationName string `json:"destination_name"`
	PaymentMethodID uint64 `json:"payment_method_id"`
	Quantity        int64  `json:"quantity"`
	Total           string `json:"total"`
	Remaining       int64  `json:"remaining"`
	DepartsAt       string `json:"departs_at"`
	CreatedAt       string `json:"created_at"`
}

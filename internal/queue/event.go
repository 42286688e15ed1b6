// Package queue defines the message payloads exchanged over the broker and
// the background consumer that records them.
package queue

// Event type discriminators carried in BookingEvent.Event.
const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is published when a booking is created or cancelled.  It
// carries enough denormalized detail for downstream consumers to log or
// notify without querying the primary database.
type BookingEvent struct {
	Event      string   `json:"event"`
	BookingID  uint64   `json:"booking_id"`
	Reference  string   `json:"reference"`
	UserID     uint64   `json:"user_id"`
	SlotID     uint64   `json:"slot_id"`
	MovieName  string   `json:"movie"`
	CinemaName string   `json:"cinema"`
	StartsAt   string   `json:"starts_at"`
	Seats      []string `json:"seats"`
	TotalCents uint32   `json:"total_cents"`
	OccurredAt string   `json:"occurred_at"`
}

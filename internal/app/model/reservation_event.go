package model

// ReservationEventType names what happened to a reservation.
type ReservationEventType string

const (
	ReservationCreated       ReservationEventType = "reservation.created"
	ReservationRescheduled   ReservationEventType = "reservation.rescheduled"
	ReservationStatusChanged ReservationEventType = "reservation.status_changed"
)

// ReservationEvent is pushed to the restaurant owner's live sessions.
type ReservationEvent struct {
	Type         ReservationEventType `json:"type"`
	RestaurantID uint                 `json:"restaurant_id"`
	Reservation  Reservation          `json:"reservation"`
}

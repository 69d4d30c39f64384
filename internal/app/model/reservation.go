package model

import (
	"time"
)

type ReservationStatus string

const (
	ReservationReserved  ReservationStatus = "reserved"
	ReservationCanceled  ReservationStatus = "canceled"
	ReservationCompleted ReservationStatus = "completed"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationReserved, ReservationCanceled, ReservationCompleted:
		return true
	}
	return false
}

// Reservation books one table for a discrete (date, time) slot. The partial unique index
// allows only one reserved row per slot.
type Reservation struct {
	ID           uint              `gorm:"primarykey" json:"id"`
	UserID       uint              `gorm:"index;not null" json:"user_id"`
	RestaurantID uint              `gorm:"index;not null" json:"restaurant_id"`
	TableID      uint              `gorm:"not null;index;uniqueIndex:idx_reservation_slot,where:status = 'reserved'" json:"table_id"`
	Date         string            `gorm:"type:varchar(10);not null;uniqueIndex:idx_reservation_slot" json:"date"` // YYYY-MM-DD
	Time         string            `gorm:"type:varchar(5);not null;uniqueIndex:idx_reservation_slot" json:"time"`  // HH:MM
	Status       ReservationStatus `gorm:"type:varchar(20);default:'reserved';not null;index" json:"status"`
	Meals        []ReservationMeal `gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE" json:"meals"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (Reservation) TableName() string {
	return "reservations"
}

// ReservationMeal is one ordered line item of a reservation.
type ReservationMeal struct {
	ID            uint `gorm:"primarykey" json:"-"`
	ReservationID uint `gorm:"index;not null" json:"-"`
	MealID        uint `gorm:"index;not null" json:"meal_id"`
	Quantity      int  `gorm:"not null;default:1" json:"quantity"`
	Position      int  `gorm:"not null" json:"position"`
}

func (ReservationMeal) TableName() string {
	return "reservation_meals"
}

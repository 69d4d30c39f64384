package model

import (
	"time"
)

const (
	MinRate = 1
	MaxRate = 5
)

type Review struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	UserID        uint      `gorm:"index;not null" json:"user_id"`
	RestaurantID  uint      `gorm:"index;not null" json:"restaurant_id"`
	ReservationID uint      `gorm:"uniqueIndex;not null" json:"reservation_id"`
	Rate          int       `gorm:"not null" json:"rate"`
	Comment       string    `gorm:"type:text" json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Review) TableName() string {
	return "reviews"
}

// RatingHistogram counts reviews per star value.
type RatingHistogram map[int]int64

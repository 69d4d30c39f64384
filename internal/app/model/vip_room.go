package model

import (
	"time"
)

type VipRoom struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	RestaurantID uint      `gorm:"index;not null" json:"restaurant_id"`
	Name         string    `gorm:"not null" json:"name"`
	Capacity     int       `gorm:"not null" json:"capacity"`
	Images       ImageList `gorm:"type:text" json:"images"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (VipRoom) TableName() string {
	return "vip_rooms"
}

package model

import (
	"time"
)

type Meal struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	RestaurantID uint      `gorm:"index;not null" json:"restaurant_id"`
	Name         string    `gorm:"not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	Price        float64   `gorm:"not null" json:"price"`
	Category     string    `gorm:"type:varchar(50)" json:"category"`
	Image        Image     `gorm:"type:text" json:"image"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Meal) TableName() string {
	return "meals"
}

// FeaturedMeal is a meal ranked by how much of it was reserved recently.
type FeaturedMeal struct {
	Meal
	TotalQuantity int64 `json:"total_quantity"`
}

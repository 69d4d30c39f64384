package model

import (
	"time"
)

type UserRole string

const (
	RoleUser            UserRole = "user"
	RoleRestaurantOwner UserRole = "restaurantOwner"
)

func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleRestaurantOwner
}

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"not null" json:"name"` // stored lowercased
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Phone        string    `gorm:"type:varchar(30)" json:"phone"`
	Role         UserRole  `gorm:"type:varchar(20);default:'user';not null" json:"role"`
	IsConfirmed  bool      `gorm:"default:false" json:"is_confirmed"`
	Image        Image     `gorm:"type:text" json:"image"`
	RestaurantID *uint     `gorm:"index" json:"restaurant_id,omitempty"` // owned restaurant, owners only
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Favorite links a user to a restaurant they bookmarked.
type Favorite struct {
	UserID       uint      `gorm:"primaryKey" json:"user_id"`
	RestaurantID uint      `gorm:"primaryKey;index" json:"restaurant_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Favorite) TableName() string {
	return "user_favorites"
}

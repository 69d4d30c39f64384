package model

import (
	"time"
)

type Restaurant struct {
	ID            uint        `gorm:"primarykey" json:"id"`
	OwnerID       uint        `gorm:"uniqueIndex;not null" json:"owner_id"`
	Name          string      `gorm:"not null" json:"name"`
	Address       string      `gorm:"type:text;not null" json:"address"`
	Phone         string      `gorm:"type:varchar(30);not null" json:"phone"`
	OpeningHours  string      `gorm:"type:varchar(100);not null" json:"opening_hours"`
	Description   string      `gorm:"type:text" json:"description"`
	Categories    StringArray `gorm:"type:text" json:"categories"`
	ProfileImage  Image       `gorm:"type:text" json:"profile_image"`
	LayoutImage   Image       `gorm:"type:text" json:"layout_image"`
	GalleryImages ImageList   `gorm:"type:text" json:"gallery_images"`
	AvgRating     float64     `gorm:"default:0;not null;index" json:"avg_rating"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (Restaurant) TableName() string {
	return "restaurants"
}

// Images returns every remote asset owned by the restaurant row itself.
func (r *Restaurant) Images() []Image {
	all := append([]Image{r.ProfileImage, r.LayoutImage}, r.GalleryImages...)
	return CollectImages(all...)
}

package model

import (
	"time"
)

// TableStatus is a display hint; the reservation set is authoritative.
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableReserved  TableStatus = "reserved"
)

type Table struct {
	ID           uint        `gorm:"primarykey" json:"id"`
	RestaurantID uint        `gorm:"not null;uniqueIndex:idx_tables_restaurant_number" json:"restaurant_id"`
	TableNumber  int         `gorm:"not null;uniqueIndex:idx_tables_restaurant_number" json:"table_number"`
	Capacity     int         `gorm:"not null" json:"capacity"`
	Status       TableStatus `gorm:"type:varchar(20);default:'available';not null" json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (Table) TableName() string {
	return "tables"
}

package models

import (
	"time"
)

type Favorite struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RentAverage float64   `gorm:"column:rent_average" json:"rentAverage"`
	UserID      uint      `gorm:"not null;index;uniqueIndex:idx_favorite_user_location" json:"userId"`
	LocationID  uint      `gorm:"not null;index;uniqueIndex:idx_favorite_user_location" json:"locationId"`
	CreatedAt   time.Time `json:"createdAt"`

	// Relations (for eager loading)
	Location Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// FavoriteRequest is the body of /favorites/add.
type FavoriteRequest struct {
	Average float64 `json:"average" validate:"gte=0"`
	Address string  `json:"address" validate:"required"`
}

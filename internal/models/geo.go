package models

import (
	"time"
)

// State is the top of the address hierarchy. Names are stored normalized.
type State struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	CreatedAt time.Time `json:"createdAt"`

	Cities []City `gorm:"foreignKey:StateID" json:"cities,omitempty"`
}

func (State) TableName() string {
	return "states"
}

// City names are only unique within a state.
type City struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;size:100;uniqueIndex:idx_city_name_state" json:"name"`
	StateID   uint      `gorm:"not null;index;uniqueIndex:idx_city_name_state" json:"stateId"`
	CreatedAt time.Time `json:"createdAt"`

	State     *State     `gorm:"foreignKey:StateID" json:"state,omitempty"`
	Locations []Location `gorm:"foreignKey:CityID" json:"locations,omitempty"`
}

func (City) TableName() string {
	return "cities"
}

// Location is a saved street address. UserID records who saved it first.
type Location struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	StreetAddress string    `gorm:"column:street_address;uniqueIndex;not null" json:"streetAddress"`
	ZipCode       string    `gorm:"column:zip_code;size:10" json:"zipCode"`
	Bedrooms      int       `json:"bedrooms"`
	CityID        uint      `gorm:"not null;index" json:"cityId"`
	UserID        uint      `gorm:"not null;index" json:"userId"`
	CreatedAt     time.Time `json:"createdAt"`

	City *City `gorm:"foreignKey:CityID" json:"city,omitempty"`
}

func (Location) TableName() string {
	return "locations"
}

// SearchRequest is the body posted by the address form when a search is saved.
type SearchRequest struct {
	State    string `json:"state" validate:"required"`
	City     string `json:"city" validate:"required"`
	Address  string `json:"address" validate:"required"`
	Zipcode  string `json:"zipcode" validate:"required"`
	Bedrooms int    `json:"bedrooms" validate:"gte=0"`
}

// GeocodeRequest is the body of /api/geocode.
type GeocodeRequest struct {
	Address string `json:"address" validate:"required"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
}

// RentalRequest is the body of /api/rental-data.
type RentalRequest struct {
	Zipcode string `json:"zipcode" validate:"required"`
}

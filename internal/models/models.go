package models

// Message represents a WebSocket message
type Message struct {
	Type    string      `json:"type"`
	Content interface{} `json:"content"`
}

// FavoriteEvent is pushed to map pages when a favorite is saved.
type FavoriteEvent struct {
	FavoriteID  uint    `json:"favoriteId"`
	UserID      uint    `json:"userId"`
	Address     string  `json:"address"`
	ZipCode     string  `json:"zipCode"`
	Bedrooms    int     `json:"bedrooms"`
	RentAverage float64 `json:"rentAverage"`
	Title       string  `json:"title"`
}

// All lists every model managed by migrations, parents first.
func All() []interface{} {
	return []interface{}{
		&User{},
		&State{},
		&City{},
		&Location{},
		&Favorite{},
	}
}

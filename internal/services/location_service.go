package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vikasavnish/movein/internal/metrics"
	"github.com/vikasavnish/movein/internal/models"
)

var ErrIncompleteAddress = errors.New("state, city and street address are required")

// SearchResult holds the rows a saved search resolved to.
type SearchResult struct {
	State        models.State
	City         models.City
	Location     models.Location
	StateCreated bool
	CityCreated  bool
	LocCreated   bool
}

// LocationService defines the interface for saving searched addresses
type LocationService interface {
	SaveSearch(ctx context.Context, userID uint, req models.SearchRequest) (*SearchResult, error)
	GetLocationByAddress(ctx context.Context, address string) (*models.Location, error)
}

// locationService implements the LocationService interface
type locationService struct {
	db *gorm.DB
}

// NewLocationService creates a new location service
func NewLocationService(db *gorm.DB) LocationService {
	return &locationService{
		db: db,
	}
}

// NormalizeName trims, collapses inner whitespace and title-cases each word.
func NormalizeName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	// Casers keep state and must not be shared between goroutines.
	return cases.Title(language.English).String(name)
}

// SaveSearch resolves the state, city and street address of a search to rows,
// creating whichever are missing. Everything happens in one transaction.
func (s *locationService) SaveSearch(ctx context.Context, userID uint, req models.SearchRequest) (*SearchResult, error) {
	stateName := NormalizeName(req.State)
	cityName := NormalizeName(req.City)
	address := strings.TrimSpace(req.Address)
	if stateName == "" || cityName == "" || address == "" {
		return nil, ErrIncompleteAddress
	}

	result := &SearchResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error

		result.State = models.State{Name: stateName}
		result.StateCreated, err = getOrCreate(tx, &result.State, "name = ?", stateName)
		if err != nil {
			return err
		}

		result.City = models.City{Name: cityName, StateID: result.State.ID}
		result.CityCreated, err = getOrCreate(tx, &result.City, "name = ? AND state_id = ?", cityName, result.State.ID)
		if err != nil {
			return err
		}

		result.Location = models.Location{
			StreetAddress: address,
			ZipCode:       strings.TrimSpace(req.Zipcode),
			Bedrooms:      req.Bedrooms,
			CityID:        result.City.ID,
			UserID:        userID,
		}
		result.LocCreated, err = getOrCreate(tx, &result.Location, "street_address = ?", address)
		return err
	})
	if err != nil {
		return nil, err
	}

	for table, created := range map[string]bool{
		"states":    result.StateCreated,
		"cities":    result.CityCreated,
		"locations": result.LocCreated,
	} {
		if created {
			metrics.RecordCreated(table)
		}
	}

	log.Debug().
		Uint("user_id", userID).
		Uint("state_id", result.State.ID).
		Bool("state_created", result.StateCreated).
		Uint("city_id", result.City.ID).
		Bool("city_created", result.CityCreated).
		Uint("location_id", result.Location.ID).
		Bool("location_created", result.LocCreated).
		Msg("search saved")

	return result, nil
}

// GetLocationByAddress looks a location up by its trimmed street address
func (s *locationService) GetLocationByAddress(ctx context.Context, address string) (*models.Location, error) {
	var loc models.Location
	result := s.db.WithContext(ctx).Where("street_address = ?", strings.TrimSpace(address)).First(&loc)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrLocationNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &loc, nil
}

// getOrCreate loads the row matching query into row, inserting row when no
// match exists. A concurrent insert of the same natural key is absorbed by the
// unique index: the conflicting insert does nothing and the winner is reloaded.
func getOrCreate[T any](tx *gorm.DB, row *T, query string, args ...interface{}) (bool, error) {
	var found T
	err := tx.Where(query, args...).First(&found).Error
	if err == nil {
		*row = found
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	var winner T
	if err := tx.Where(query, args...).First(&winner).Error; err != nil {
		return false, err
	}
	*row = winner
	return false, nil
}

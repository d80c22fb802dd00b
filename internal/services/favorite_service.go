package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vikasavnish/movein/internal/metrics"
	"github.com/vikasavnish/movein/internal/models"
)

var ErrLocationNotFound = errors.New("location not found")

// FavoriteService defines the interface for favorite operations
type FavoriteService interface {
	AddFavorite(ctx context.Context, userID uint, req models.FavoriteRequest) (*models.Favorite, bool, error)
	ListFavorites(ctx context.Context, userID uint) ([]models.Favorite, error)
}

// favoriteService implements the FavoriteService interface
type favoriteService struct {
	db *gorm.DB
}

// NewFavoriteService creates a new favorite service
func NewFavoriteService(db *gorm.DB) FavoriteService {
	return &favoriteService{
		db: db,
	}
}

// AddFavorite saves the location at req.Address as a favorite of the user.
// The second return value is false when the user already had it; the stored
// rent average is left untouched in that case.
func (s *favoriteService) AddFavorite(ctx context.Context, userID uint, req models.FavoriteRequest) (*models.Favorite, bool, error) {
	address := strings.TrimSpace(req.Address)

	var (
		favorite models.Favorite
		created  bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loc models.Location
		if err := tx.Where("street_address = ?", address).First(&loc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLocationNotFound
			}
			return err
		}

		err := tx.Where("user_id = ? AND location_id = ?", userID, loc.ID).First(&favorite).Error
		if err == nil {
			favorite.Location = loc
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		favorite = models.Favorite{
			RentAverage: req.Average,
			UserID:      userID,
			LocationID:  loc.ID,
		}
		res := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&favorite)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost a race with another request from the same user.
			favorite = models.Favorite{}
			if err := tx.Where("user_id = ? AND location_id = ?", userID, loc.ID).First(&favorite).Error; err != nil {
				return err
			}
		} else {
			created = true
		}
		favorite.Location = loc
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		metrics.RecordCreated("favorites")
		log.Info().Uint("user_id", userID).Uint("location_id", favorite.LocationID).Msg("favorite added")
	}
	return &favorite, created, nil
}

// ListFavorites returns the user's favorites in the order they were added.
func (s *favoriteService) ListFavorites(ctx context.Context, userID uint) ([]models.Favorite, error) {
	var favorites []models.Favorite
	result := s.db.WithContext(ctx).
		Preload("Location").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&favorites)
	if result.Error != nil {
		return nil, result.Error
	}
	return favorites, nil
}

// FormatFavorite renders a favorite the way the favorites map labels it,
// e.g. "456 Test St 67890 Bedrooms: 3 Rent: 2000".
func FormatFavorite(f models.Favorite) string {
	return fmt.Sprintf("%s %s Bedrooms: %d Rent: %s",
		f.Location.StreetAddress,
		f.Location.ZipCode,
		f.Location.Bedrooms,
		strconv.FormatFloat(f.RentAverage, 'f', -1, 64),
	)
}

// FavoriteAddress is the geocodable "<street> <zip>" form of a favorite.
func FavoriteAddress(f models.Favorite) string {
	return f.Location.StreetAddress + " " + f.Location.ZipCode
}

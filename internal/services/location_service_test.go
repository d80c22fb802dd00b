package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vikasavnish/movein/internal/models"
	"github.com/vikasavnish/movein/internal/testutil"
)

func testSearch() models.SearchRequest {
	return models.SearchRequest{
		State:    "Test State",
		City:     "Test City",
		Address:  "123 Test St",
		Zipcode:  "12345",
		Bedrooms: 2,
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Test State", NormalizeName("test state"))
	assert.Equal(t, "Test State", NormalizeName("  TEST   state "))
	assert.Equal(t, "Tucson", NormalizeName("tucson"))
	assert.Equal(t, "", NormalizeName("   "))
}

func TestSaveSearchCreatesHierarchy(t *testing.T) {
	db := testutil.NewDB(t)
	service := NewLocationService(db)

	res, err := service.SaveSearch(context.Background(), 1, testSearch())
	require.NoError(t, err)

	assert.True(t, res.StateCreated)
	assert.True(t, res.CityCreated)
	assert.True(t, res.LocCreated)
	assert.Equal(t, "Test State", res.State.Name)
	assert.Equal(t, res.State.ID, res.City.StateID)
	assert.Equal(t, res.City.ID, res.Location.CityID)
	assert.Equal(t, "12345", res.Location.ZipCode)
	assert.Equal(t, 2, res.Location.Bedrooms)
	assert.Equal(t, uint(1), res.Location.UserID)

	assert.Equal(t, int64(1), countRows(t, db, &models.State{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.City{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.Location{}))
}

func TestSaveSearchReusesExistingRows(t *testing.T) {
	db := testutil.NewDB(t)
	service := NewLocationService(db)

	state := models.State{Name: "Test State"}
	require.NoError(t, db.Create(&state).Error)
	city := models.City{Name: "Test City", StateID: state.ID}
	require.NoError(t, db.Create(&city).Error)

	req := testSearch()
	req.State = "test state"
	res, err := service.SaveSearch(context.Background(), 1, req)
	require.NoError(t, err)

	assert.False(t, res.StateCreated)
	assert.False(t, res.CityCreated)
	assert.True(t, res.LocCreated)
	assert.Equal(t, state.ID, res.State.ID)
	assert.Equal(t, city.ID, res.City.ID)

	// Saving the same address again changes nothing.
	req.Zipcode = "99999"
	res, err = service.SaveSearch(context.Background(), 2, req)
	require.NoError(t, err)
	assert.False(t, res.LocCreated)
	assert.Equal(t, "12345", res.Location.ZipCode)
	assert.Equal(t, uint(1), res.Location.UserID)

	assert.Equal(t, int64(1), countRows(t, db, &models.State{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.City{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.Location{}))
}

func TestSaveSearchSameCityNameDifferentStates(t *testing.T) {
	db := testutil.NewDB(t)
	service := NewLocationService(db)
	ctx := context.Background()

	first := testSearch()
	first.State, first.City, first.Address = "Oregon", "Portland", "1 Main St"
	second := testSearch()
	second.State, second.City, second.Address = "Maine", "Portland", "2 Main St"

	a, err := service.SaveSearch(ctx, 1, first)
	require.NoError(t, err)
	b, err := service.SaveSearch(ctx, 1, second)
	require.NoError(t, err)

	assert.NotEqual(t, a.City.ID, b.City.ID)
	assert.True(t, b.CityCreated)
	assert.Equal(t, int64(2), countRows(t, db, &models.City{}))
}

func TestSaveSearchConcurrent(t *testing.T) {
	db := testutil.NewDB(t)
	service := NewLocationService(db)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := service.SaveSearch(context.Background(), userID, testSearch())
			errs <- err
		}(uint(i + 1))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), countRows(t, db, &models.State{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.City{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.Location{}))
}

func TestSaveSearchIncomplete(t *testing.T) {
	service := NewLocationService(testutil.NewDB(t))

	req := testSearch()
	req.City = "  "
	_, err := service.SaveSearch(context.Background(), 1, req)
	assert.ErrorIs(t, err, ErrIncompleteAddress)
}

func TestGetLocationByAddress(t *testing.T) {
	db := testutil.NewDB(t)
	service := NewLocationService(db)
	ctx := context.Background()

	_, err := service.SaveSearch(ctx, 1, testSearch())
	require.NoError(t, err)

	loc, err := service.GetLocationByAddress(ctx, " 123 Test St ")
	require.NoError(t, err)
	assert.Equal(t, "12345", loc.ZipCode)

	_, err = service.GetLocationByAddress(ctx, "nowhere")
	assert.ErrorIs(t, err, ErrLocationNotFound)
}

package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vikasavnish/movein/internal/config"
	"github.com/vikasavnish/movein/internal/models"
)

func TestConnectSQLiteAndMigrate(t *testing.T) {
	database, err := Connect(config.DatabaseConfig{URL: "sqlite://file::memory:?cache=shared"})
	require.NoError(t, err)
	require.NoError(t, Migrate(database))
	require.NoError(t, Ping(context.Background(), database))

	for _, model := range models.All() {
		assert.True(t, database.Migrator().HasTable(model), "%T table missing", model)
	}
	assert.True(t, database.Migrator().HasIndex(&models.City{}, "idx_city_name_state"))
	assert.True(t, database.Migrator().HasIndex(&models.Favorite{}, "idx_favorite_user_location"))
}

func TestConnectRedisDisabled(t *testing.T) {
	client, err := ConnectRedis(config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestConnectRedisBadURL(t *testing.T) {
	_, err := ConnectRedis(config.RedisConfig{URL: "not-a-redis-url"})
	assert.Error(t, err)
}

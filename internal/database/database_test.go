package database

import (
	"testing"
	"time"

	"belekbox/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfig(t *testing.T) {
	base := config.DatabaseConfig{
		Host:            "db.internal",
		Port:            5433,
		User:            "shop",
		Password:        "secret",
		Database:        "belekbox",
		MaxConnections:  8,
		MinConnections:  2,
		MaxConnLifetime: 120,
	}

	t.Run("uses configured settings", func(t *testing.T) {
		cfg := base
		cfg.MaxConnIdleTime = 600
		cfg.HealthCheckPeriod = 15

		poolConfig, err := PoolConfig(cfg)

		require.NoError(t, err)
		assert.Equal(t, "db.internal", poolConfig.ConnConfig.Host)
		assert.Equal(t, uint16(5433), poolConfig.ConnConfig.Port)
		assert.Equal(t, "belekbox", poolConfig.ConnConfig.Database)
		assert.Equal(t, int32(8), poolConfig.MaxConns)
		assert.Equal(t, int32(2), poolConfig.MinConns)
		assert.Equal(t, 2*time.Minute, poolConfig.MaxConnLifetime)
		assert.Equal(t, 10*time.Minute, poolConfig.MaxConnIdleTime)
		assert.Equal(t, 15*time.Second, poolConfig.HealthCheckPeriod)
	})

	t.Run("zero settings fall back to defaults", func(t *testing.T) {
		poolConfig, err := PoolConfig(base)

		require.NoError(t, err)
		assert.Equal(t, DefaultMaxConnIdleTime, poolConfig.MaxConnIdleTime)
		assert.Equal(t, DefaultHealthCheckPeriod, poolConfig.HealthCheckPeriod)
	})
}

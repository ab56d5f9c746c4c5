package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_EngineConfig(t *testing.T) {
	// Setup environment variables
	os.Setenv("ENGINE_REVIEW_THRESHOLD", "85")
	os.Setenv("ENGINE_ALERT_CHANNEL", "test:alerts")
	defer func() {
		os.Unsetenv("ENGINE_REVIEW_THRESHOLD")
		os.Unsetenv("ENGINE_ALERT_CHANNEL")
	}()

	// Load config
	cfg, err := Load()
	assert.NoError(t, err)

	// Verify engine config
	assert.Equal(t, 85, cfg.Engine.ReviewThreshold)
	assert.Equal(t, "test:alerts", cfg.Engine.AlertChannel)
}

func TestLoad_Defaults(t *testing.T) {
	// Ensure env vars are cleared
	os.Unsetenv("ENGINE_REVIEW_THRESHOLD")
	os.Unsetenv("ENGINE_ALERT_CHANNEL")

	cfg, err := Load()
	assert.NoError(t, err)

	// Verify defaults
	assert.Equal(t, 70, cfg.Engine.ReviewThreshold)
	assert.Equal(t, "docguard:operator-alerts", cfg.Engine.AlertChannel)
	assert.Equal(t, "docguard", cfg.Database.Database)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "docguard",
		Password: "secret",
		Database: "docguard",
		SSLMode:  "require",
	}

	dsn := cfg.DatabaseDSN()
	assert.Contains(t, dsn, "host=db")
	assert.Contains(t, dsn, "dbname=docguard")
	assert.Contains(t, dsn, "sslmode=require")
}

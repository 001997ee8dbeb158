package server

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/car-showroom/internal/config"
)

func TestConfigureLogging(t *testing.T) {
	defer log.SetLevel(log.GetLevel())
	defer log.SetFormatter(log.StandardLogger().Formatter)

	ConfigureLogging(config.Config{Env: "production", LogLevel: "warn"})
	assert.Equal(t, log.WarnLevel, log.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)

	ConfigureLogging(config.Config{Env: "development", LogLevel: "loud"})
	assert.Equal(t, log.InfoLevel, log.GetLevel())
	assert.IsType(t, &log.TextFormatter{}, log.StandardLogger().Formatter)
}

func TestNewApp_RejectsDefaultSecretInProduction(t *testing.T) {
	cfg := config.Config{
		Env:  "production",
		Auth: config.AuthConfig{JWTSecret: config.DefaultJWTSecret},
	}
	app, err := NewApp(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, app)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

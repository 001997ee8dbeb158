// Package server assembles the showroom from configuration and runs it.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/car-showroom/internal/auth"
	"github.com/ukydev/car-showroom/internal/catalog"
	"github.com/ukydev/car-showroom/internal/config"
	"github.com/ukydev/car-showroom/internal/db"
	"github.com/ukydev/car-showroom/internal/events"
	"github.com/ukydev/car-showroom/internal/seed"
)

// App holds the long-lived dependencies shared by the HTTP server and the
// maintenance commands.
type App struct {
	Config    config.Config
	Store     *db.Store
	Auth      *auth.Service
	Catalog   *catalog.Service
	Seeder    *seed.Seeder
	Publisher events.Publisher

	closePublisher func()
}

// ConfigureLogging sets the logrus level and formatter. Production logs are
// JSON.
func ConfigureLogging(cfg config.Config) {
	log.SetOutput(os.Stdout)
	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// NewApp connects to MongoDB and, when a broker is configured, to MQTT.
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	if cfg.IsProduction() && cfg.Auth.JWTSecret == config.DefaultJWTSecret {
		return nil, errors.New("JWT_SECRET must be set in production")
	}

	client, err := db.ConnectMongo(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	store := db.NewStore(client, cfg.Mongo)
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = store.Close(context.Background())
		return nil, err
	}
	log.WithField("database", cfg.Mongo.Database).Info("connected to MongoDB")

	app := &App{Config: cfg, Store: store, Publisher: events.Noop{}, closePublisher: func() {}}
	if cfg.MQTT.Broker != "" {
		publisher, err := events.NewMQTTPublisher(cfg.MQTT)
		if err != nil {
			_ = store.Close(context.Background())
			return nil, err
		}
		app.Publisher, app.closePublisher = publisher, publisher.Close
		log.WithField("broker", cfg.MQTT.Broker).Info("publishing inventory events over MQTT")
	}

	app.Auth = auth.NewService(cfg.Auth)
	app.Catalog = catalog.NewService(store.Brands, store.Cars, store, app.Publisher)
	app.Seeder = seed.New(store.Users, store.Banners, store.Brands, app.Catalog, app.Auth)
	return app, nil
}

// Close disconnects from MQTT and MongoDB.
func (a *App) Close(ctx context.Context) error {
	a.closePublisher()
	if err := a.Store.Close(ctx); err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	return nil
}

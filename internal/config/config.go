package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config holds the runtime settings of the showroom API.
type Config struct {
	Port     int
	Env      string
	LogLevel string

	Mongo   MongoConfig
	Auth    AuthConfig
	Admin   AdminConfig
	Storage StorageConfig
	MQTT    MQTTConfig

	// ReconcileSchedule is a cron spec for the periodic carCount repair job.
	// Empty disables the job.
	ReconcileSchedule string
	AllowedOrigins    []string
	// TrustProxy makes the API take the client address from
	// X-Forwarded-For/X-Real-IP. Enable only behind a reverse proxy that
	// overwrites those headers.
	TrustProxy bool
}

type MongoConfig struct {
	URI            string
	Database       string
	Transactions   bool
	ConnectTimeout time.Duration
}

type AuthConfig struct {
	JWTSecret   string
	TokenExpiry time.Duration
}

// AdminConfig describes the permanent admin account created at startup.
type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

type StorageConfig struct {
	Backend   string // "disk" or "minio"
	UploadDir string
	Minio     MinioConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type MQTTConfig struct {
	Broker      string
	ClientID    string
	TopicPrefix string
}

// DefaultJWTSecret is used when JWT_SECRET is unset. Production refuses it.
const DefaultJWTSecret = "default-secret-key-change-in-production"

const defaultTokenExpiry = 7 * 24 * time.Hour

// Load reads configuration from the environment, loading a .env file first
// when one is present.
func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{
		Port:     cast.ToInt(getOrReturnDefault("PORT", 5000)),
		Env:      cast.ToString(getOrReturnDefault("APP_ENV", "development")),
		LogLevel: cast.ToString(getOrReturnDefault("LOG_LEVEL", "info")),
	}

	cfg.Mongo = MongoConfig{
		URI:            cast.ToString(getOrReturnDefault("MONGO_URI", "mongodb://localhost:27017")),
		Database:       cast.ToString(getOrReturnDefault("MONGO_DB", "carshowroom")),
		Transactions:   cast.ToBool(getOrReturnDefault("MONGO_TRANSACTIONS", false)),
		ConnectTimeout: parseDuration(os.Getenv("MONGO_CONNECT_TIMEOUT"), 10*time.Second),
	}

	cfg.Auth = AuthConfig{
		JWTSecret:   cast.ToString(getOrReturnDefault("JWT_SECRET", DefaultJWTSecret)),
		TokenExpiry: parseDuration(os.Getenv("JWT_EXPIRY"), defaultTokenExpiry),
	}

	cfg.Admin = AdminConfig{
		Name:     cast.ToString(getOrReturnDefault("ADMIN_NAME", "CarShowroom Admin")),
		Email:    strings.ToLower(cast.ToString(getOrReturnDefault("ADMIN_EMAIL", "admin@carshowroom.com"))),
		Password: cast.ToString(getOrReturnDefault("ADMIN_PASSWORD", "CarShowroom2024@AdminSecurePass")),
	}

	cfg.Storage = StorageConfig{
		Backend:   strings.ToLower(cast.ToString(getOrReturnDefault("STORAGE_BACKEND", "disk"))),
		UploadDir: cast.ToString(getOrReturnDefault("UPLOAD_DIR", "uploads")),
		Minio: MinioConfig{
			Endpoint:  cast.ToString(getOrReturnDefault("MINIO_ENDPOINT", "")),
			AccessKey: cast.ToString(getOrReturnDefault("MINIO_ACCESS_KEY", "")),
			SecretKey: cast.ToString(getOrReturnDefault("MINIO_SECRET_KEY", "")),
			Bucket:    cast.ToString(getOrReturnDefault("MINIO_BUCKET", "showroom-uploads")),
			UseSSL:    cast.ToBool(getOrReturnDefault("MINIO_USE_SSL", false)),
		},
	}

	cfg.MQTT = MQTTConfig{
		Broker:      cast.ToString(getOrReturnDefault("MQTT_BROKER", "")),
		ClientID:    cast.ToString(getOrReturnDefault("MQTT_CLIENT_ID", "car-showroom-api")),
		TopicPrefix: strings.TrimSuffix(cast.ToString(getOrReturnDefault("MQTT_TOPIC_PREFIX", "showroom/inventory")), "/"),
	}

	if schedule, ok := os.LookupEnv("CARCOUNT_RECONCILE_SCHEDULE"); ok {
		cfg.ReconcileSchedule = strings.TrimSpace(schedule)
	} else {
		cfg.ReconcileSchedule = "@every 6h"
	}

	cfg.AllowedOrigins = allowedOrigins()
	cfg.TrustProxy = cast.ToBool(getOrReturnDefault("TRUST_PROXY", false))

	return cfg
}

// IsProduction reports whether the API runs with production defaults.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func allowedOrigins() []string {
	var origins []string
	for _, key := range []string{"FRONTEND_URL", "ADMIN_URL"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			origins = append(origins, v)
		}
	}
	for _, v := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		if v = strings.TrimSpace(v); v != "" {
			origins = append(origins, v)
		}
	}
	return origins
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

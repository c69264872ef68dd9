package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "SELLERQI"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SELLERQI_DB_DSN"
	EnvDBHost = "SELLERQI_DB_HOST"
	EnvDBUser = "SELLERQI_DB_USER"
	EnvDBName = "SELLERQI_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Calculation  CalculationConfig
	RateLimit    RateLimitConfig
	Eventing     EventingConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SELLERQI_APP_ENV" required:"true"`
	Port         string `envconfig:"SELLERQI_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SELLERQI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SELLERQI_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SELLERQI_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SELLERQI_DB_DSN"`
	Driver string `envconfig:"SELLERQI_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SELLERQI_DB_HOST"`
	LegacyPort     int    `envconfig:"SELLERQI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SELLERQI_DB_USER"`
	LegacyPassword string `envconfig:"SELLERQI_DB_PASSWORD"`
	LegacyName     string `envconfig:"SELLERQI_DB_NAME"`
	LegacySSLMode  string `envconfig:"SELLERQI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SELLERQI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SELLERQI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SELLERQI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SELLERQI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SELLERQI_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SELLERQI_REDIS_ADDR"`
	Password     string        `envconfig:"SELLERQI_REDIS_PASSWORD"`
	DB           int           `envconfig:"SELLERQI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SELLERQI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SELLERQI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SELLERQI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SELLERQI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SELLERQI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SELLERQI_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"SELLERQI_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SELLERQI_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	IntegrationTopic        string `envconfig:"SELLERQI_PUBSUB_INTEGRATION_TOPIC" default:"sq-integration-events"`
	IntegrationSubscription string `envconfig:"SELLERQI_PUBSUB_INTEGRATION_SUBSCRIPTION"`
	TasksTopic              string `envconfig:"SELLERQI_PUBSUB_TASKS_TOPIC" default:"sq-task-events"`
}

// CalculationConfig tunes the issue recalculation pipeline.
type CalculationConfig struct {
	InFlightTTL          time.Duration `envconfig:"SELLERQI_CALC_IN_FLIGHT_TTL" default:"2m"`
	StaleRecalcBatchSize int           `envconfig:"SELLERQI_CALC_STALE_BATCH_SIZE" default:"50"`
	SnapshotTTL          time.Duration `envconfig:"SELLERQI_CALC_SNAPSHOT_TTL" default:"24h"`
}

// RateLimitConfig throttles the manual recalculation trigger endpoint.
type RateLimitConfig struct {
	RecalcWindow time.Duration `envconfig:"SELLERQI_RATE_LIMIT_RECALC_WINDOW" default:"1m"`
	RecalcLimit  int64         `envconfig:"SELLERQI_RATE_LIMIT_RECALC_LIMIT" default:"3"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"SELLERQI_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SELLERQI_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

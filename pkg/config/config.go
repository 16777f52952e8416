package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/greencart/pkg/enums"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	Sync    SyncConfig
	Storage StorageConfig
	Redis   RedisConfig
	DB      DBConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GREENCART_APP_ENV" default:"dev"`
	Port         string `envconfig:"GREENCART_APP_PORT" default:"8085"`
	LogLevel     string `envconfig:"GREENCART_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"GREENCART_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"GREENCART_LOG_WARN_STACK" default:"false"`

	// CORSOrigins lists the UI origins allowed to call the bridge.
	CORSOrigins []string `envconfig:"GREENCART_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// SyncConfig drives the remote cart service client and the availability gate.
type SyncConfig struct {
	BaseURL        string        `envconfig:"GREENCART_SYNC_BASE_URL" default:"http://localhost:5000"`
	UserID         string        `envconfig:"GREENCART_SYNC_USER_ID" default:"guest-user"`
	RequestTimeout time.Duration `envconfig:"GREENCART_SYNC_REQUEST_TIMEOUT" default:"5s"`
	RetryCooldown  time.Duration `envconfig:"GREENCART_SYNC_RETRY_COOLDOWN" default:"60s"`
}

type StorageConfig struct {
	Driver string `envconfig:"GREENCART_STORAGE_DRIVER" default:"file"`
	Key    string `envconfig:"GREENCART_STORAGE_KEY" default:"greenCart"`
	Path   string `envconfig:"GREENCART_STORAGE_PATH" default:".greencart/cart.json"`

	SaveTimeout time.Duration `envconfig:"GREENCART_STORAGE_SAVE_TIMEOUT" default:"2s"`
}

// DriverKind returns the parsed storage driver. Load has already validated it.
func (s StorageConfig) DriverKind() enums.StorageDriver {
	driver, err := enums.ParseStorageDriver(s.Driver)
	if err != nil {
		return enums.StorageDriverFile
	}
	return driver
}

type RedisConfig struct {
	URL          string        `envconfig:"GREENCART_REDIS_URL"`
	Address      string        `envconfig:"GREENCART_REDIS_ADDR"`
	Password     string        `envconfig:"GREENCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"GREENCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GREENCART_REDIS_POOL_SIZE" default:"4"`
	MinIdleConns int           `envconfig:"GREENCART_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"GREENCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GREENCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GREENCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type DBConfig struct {
	Driver          string        `envconfig:"GREENCART_DB_DRIVER" default:"sqlite"`
	DSN             string        `envconfig:"GREENCART_DB_DSN" default:".greencart/cart.db"`
	MaxOpenConns    int           `envconfig:"GREENCART_DB_MAX_OPEN_CONNS" default:"4"`
	MaxIdleConns    int           `envconfig:"GREENCART_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"GREENCART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GREENCART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	AutoMigrate     bool          `envconfig:"GREENCART_DB_AUTO_MIGRATE" default:"true"`
}

// IsPostgres reports whether the snapshot table lives in Postgres rather than SQLite.
func (d DBConfig) IsPostgres() bool {
	return strings.EqualFold(strings.TrimSpace(d.Driver), DBDriverPostgres)
}

func (c *Config) validate() error {
	driver, err := enums.ParseStorageDriver(c.Storage.Driver)
	if err != nil {
		return fmt.Errorf("%s: %w", EnvStorageDriver, err)
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return fmt.Errorf("%s is required", EnvStorageKey)
	}
	if strings.TrimSpace(c.Sync.UserID) == "" {
		return fmt.Errorf("%s is required", EnvSyncUserID)
	}
	if c.Sync.RequestTimeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvSyncRequestTimeout)
	}
	if c.Sync.RetryCooldown < 0 {
		return fmt.Errorf("%s cannot be negative", EnvSyncRetryCooldown)
	}
	if c.Storage.SaveTimeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvStorageSave)
	}

	switch driver {
	case enums.StorageDriverFile:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("%s is required for the file store", EnvStoragePath)
		}
	case enums.StorageDriverRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("either %s or %s is required for the redis store", EnvRedisURL, EnvRedisAddr)
		}
	case enums.StorageDriverDB:
		if strings.TrimSpace(c.DB.DSN) == "" {
			return fmt.Errorf("%s is required for the db store", EnvDBDSN)
		}
		d := strings.ToLower(strings.TrimSpace(c.DB.Driver))
		if d != DBDriverSQLite && d != DBDriverPostgres {
			return fmt.Errorf("%s must be %s or %s", EnvDBDriver, DBDriverSQLite, DBDriverPostgres)
		}
	}
	return nil
}

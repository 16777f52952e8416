package config

const EnvPrefix = "GREENCART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

const (
	EnvAppEnv    = "GREENCART_APP_ENV"
	EnvPort      = "GREENCART_APP_PORT"
	EnvLogLevel  = "GREENCART_LOG_LEVEL"
	EnvLogFormat = "GREENCART_LOG_FORMAT"
	EnvCORS      = "GREENCART_CORS_ORIGINS"

	EnvSyncBaseURL        = "GREENCART_SYNC_BASE_URL"
	EnvSyncUserID         = "GREENCART_SYNC_USER_ID"
	EnvSyncRequestTimeout = "GREENCART_SYNC_REQUEST_TIMEOUT"
	EnvSyncRetryCooldown  = "GREENCART_SYNC_RETRY_COOLDOWN"

	EnvStorageDriver = "GREENCART_STORAGE_DRIVER"
	EnvStorageKey    = "GREENCART_STORAGE_KEY"
	EnvStoragePath   = "GREENCART_STORAGE_PATH"
	EnvStorageSave   = "GREENCART_STORAGE_SAVE_TIMEOUT"

	EnvRedisURL  = "GREENCART_REDIS_URL"
	EnvRedisAddr = "GREENCART_REDIS_ADDR"

	EnvDBDriver = "GREENCART_DB_DRIVER"
	EnvDBDSN    = "GREENCART_DB_DSN"
)

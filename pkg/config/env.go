package config

// EnvPrefix is passed to envconfig; every field carries an explicit key so it is informational only.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StorageDriverLocal = "local"
	StorageDriverMinio = "minio"

	EventsDriverNone   = "none"
	EventsDriverKafka  = "kafka"
	EventsDriverPubSub = "pubsub"
)

const (
	EnvAppEnv         = "STOREFRONT_APP_ENV"
	EnvPort           = "STOREFRONT_APP_PORT"
	EnvDBDSN          = "STOREFRONT_DB_DSN"
	EnvDBHost         = "STOREFRONT_DB_HOST"
	EnvDBUser         = "STOREFRONT_DB_USER"
	EnvDBName         = "STOREFRONT_DB_NAME"
	EnvUseSQLite      = "STOREFRONT_USE_SQLITE"
	EnvRedisURL       = "STOREFRONT_REDIS_URL"
	EnvJWTSecret      = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer      = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMins     = "STOREFRONT_JWT_EXPIRATION_MINUTES"
	EnvBcryptCost     = "STOREFRONT_BCRYPT_COST"
	EnvStorageDriver  = "STOREFRONT_STORAGE_DRIVER"
	EnvMinioEndpoint  = "STOREFRONT_MINIO_ENDPOINT"
	EnvMinioAccessKey = "STOREFRONT_MINIO_ACCESS_KEY"
	EnvMinioSecretKey = "STOREFRONT_MINIO_SECRET_KEY"
	EnvEventsDriver   = "STOREFRONT_EVENTS_DRIVER"
	EnvKafkaBrokers   = "STOREFRONT_KAFKA_BROKERS"
	EnvOrdersTopic    = "STOREFRONT_EVENTS_ORDERS_TOPIC"
	EnvGCPProjectID   = "STOREFRONT_GCP_PROJECT_ID"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

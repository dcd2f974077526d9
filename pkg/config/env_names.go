package config

// EnvPrefix is the envconfig prefix shared by every setting.
const EnvPrefix = "HOMEGOODS"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv                 = "HOMEGOODS_APP_ENV"
	EnvPort                   = "HOMEGOODS_APP_PORT"
	EnvDBDSN                  = "HOMEGOODS_DB_DSN"
	EnvDBHost                 = "HOMEGOODS_DB_HOST"
	EnvDBUser                 = "HOMEGOODS_DB_USER"
	EnvDBName                 = "HOMEGOODS_DB_NAME"
	EnvRedisURL               = "HOMEGOODS_REDIS_URL"
	EnvJWTSecret              = "HOMEGOODS_JWT_SECRET"
	EnvJWTIssuer              = "HOMEGOODS_JWT_ISSUER"
	EnvJWTExpMins             = "HOMEGOODS_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "HOMEGOODS_REFRESH_TOKEN_TTL_MINUTES"
	EnvSessionSecret          = "HOMEGOODS_SESSION_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

package config

const EnvPrefix = "MARKETBILL"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	AsaasEnvSandbox    = "sandbox"
	AsaasEnvProduction = "production"

	AsaasSandboxURL    = "https://sandbox.asaas.com/api/v3"
	AsaasProductionURL = "https://api.asaas.com/v3"
)

const (
	EnvAppEnv           = "MARKETBILL_APP_ENV"
	EnvPort             = "MARKETBILL_APP_PORT"
	EnvDBDSN            = "MARKETBILL_DB_DSN"
	EnvDBDriver         = "MARKETBILL_DB_DRIVER"
	EnvDBHost           = "MARKETBILL_DB_HOST"
	EnvDBUser           = "MARKETBILL_DB_USER"
	EnvDBName           = "MARKETBILL_DB_NAME"
	EnvDBPassword       = "MARKETBILL_DB_PASSWORD"
	EnvRedisURL         = "MARKETBILL_REDIS_URL"
	EnvAsaasAPIKey      = "MARKETBILL_ASAAS_API_KEY"
	EnvAsaasEnvironment = "MARKETBILL_ASAAS_ENVIRONMENT"
	EnvAsaasBaseURL     = "MARKETBILL_ASAAS_BASE_URL"
	EnvAsaasSettleDelay = "MARKETBILL_ASAAS_SETTLE_DELAY"
	EnvGCPProjectID     = "MARKETBILL_GCP_PROJECT_ID"
	EnvPubSubBilling    = "MARKETBILL_PUBSUB_BILLING_TOPIC"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

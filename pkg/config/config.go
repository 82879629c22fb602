package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	FeatureFlags  FeatureFlagsConfig
	Asaas         AsaasConfig
	Subscriptions SubscriptionsConfig
	Webhooks      WebhooksConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
	Sentry        SentryConfig
	HTTP          HTTPConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Asaas.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MARKETBILL_APP_ENV" required:"true"`
	Port         string `envconfig:"MARKETBILL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MARKETBILL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MARKETBILL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"MARKETBILL_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"MARKETBILL_DB_DSN"`
	Driver string `envconfig:"MARKETBILL_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"MARKETBILL_DB_HOST"`
	Port     int    `envconfig:"MARKETBILL_DB_PORT" default:"5432"`
	User     string `envconfig:"MARKETBILL_DB_USER"`
	Password string `envconfig:"MARKETBILL_DB_PASSWORD"`
	Name     string `envconfig:"MARKETBILL_DB_NAME"`
	SSLMode  string `envconfig:"MARKETBILL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MARKETBILL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MARKETBILL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MARKETBILL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MARKETBILL_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"MARKETBILL_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
	ConnectAttempts    int           `envconfig:"MARKETBILL_DB_CONNECT_ATTEMPTS" default:"5"`
}

// IsSQLite reports whether the sqlite driver was selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"MARKETBILL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MARKETBILL_REDIS_ADDR"`
	Password     string        `envconfig:"MARKETBILL_REDIS_PASSWORD"`
	DB           int           `envconfig:"MARKETBILL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MARKETBILL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MARKETBILL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MARKETBILL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MARKETBILL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MARKETBILL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MARKETBILL_AUTO_MIGRATE" default:"false"`
}

// AsaasConfig holds the payment gateway credentials and the settling delays
// used while waiting for customer writes to become visible.
type AsaasConfig struct {
	APIKey            string        `envconfig:"MARKETBILL_ASAAS_API_KEY" required:"true"`
	Environment       string        `envconfig:"MARKETBILL_ASAAS_ENVIRONMENT" default:"sandbox"`
	BaseURL           string        `envconfig:"MARKETBILL_ASAAS_BASE_URL"`
	Timeout           time.Duration `envconfig:"MARKETBILL_ASAAS_TIMEOUT" default:"30s"`
	WebhookToken      string        `envconfig:"MARKETBILL_ASAAS_WEBHOOK_TOKEN"`
	SettleDelay       time.Duration `envconfig:"MARKETBILL_ASAAS_SETTLE_DELAY" default:"3s"`
	RepairSettleDelay time.Duration `envconfig:"MARKETBILL_ASAAS_REPAIR_SETTLE_DELAY" default:"5s"`
}

// ResolvedBaseURL returns the explicit base URL or the one implied by the environment.
func (a AsaasConfig) ResolvedBaseURL() string {
	if base := strings.TrimSpace(a.BaseURL); base != "" {
		return strings.TrimRight(base, "/")
	}
	if strings.EqualFold(strings.TrimSpace(a.Environment), AsaasEnvProduction) {
		return AsaasProductionURL
	}
	return AsaasSandboxURL
}

func (a AsaasConfig) validate() error {
	env := strings.ToLower(strings.TrimSpace(a.Environment))
	if env != AsaasEnvSandbox && env != AsaasEnvProduction {
		return fmt.Errorf("%s must be %s or %s", EnvAsaasEnvironment, AsaasEnvSandbox, AsaasEnvProduction)
	}
	return nil
}

type SubscriptionsConfig struct {
	CreateLockTTL  time.Duration `envconfig:"MARKETBILL_SUBSCRIPTIONS_CREATE_LOCK_TTL" default:"2m"`
	IdempotencyTTL time.Duration `envconfig:"MARKETBILL_SUBSCRIPTIONS_IDEMPOTENCY_TTL" default:"24h"`
}

// HTTPConfig tunes the API surface.
type HTTPConfig struct {
	CORSOrigins     []string      `envconfig:"MARKETBILL_CORS_ORIGINS"`
	RateLimitWindow time.Duration `envconfig:"MARKETBILL_RATE_LIMIT_WINDOW" default:"1m"`
	CreateRateLimit int           `envconfig:"MARKETBILL_RATE_LIMIT_CREATE" default:"30"`
}

type WebhooksConfig struct {
	IdempotencyTTL time.Duration `envconfig:"MARKETBILL_WEBHOOKS_IDEMPOTENCY_TTL" default:"72h"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"MARKETBILL_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	BillingTopic string `envconfig:"MARKETBILL_PUBSUB_BILLING_TOPIC" default:"marketbill-billing-events"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"MARKETBILL_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"MARKETBILL_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"MARKETBILL_OUTBOX_MAX_ATTEMPTS" default:"10"`
	Retention      time.Duration `envconfig:"MARKETBILL_OUTBOX_RETENTION" default:"720h"`
	DLQRetention   time.Duration `envconfig:"MARKETBILL_OUTBOX_DLQ_RETENTION" default:"2160h"`
}

type CronConfig struct {
	Interval       time.Duration `envconfig:"MARKETBILL_CRON_INTERVAL" default:"15m"`
	LockTTL        time.Duration `envconfig:"MARKETBILL_CRON_LOCK_TTL" default:"10m"`
	ReconcileLimit int           `envconfig:"MARKETBILL_CRON_RECONCILE_LIMIT" default:"200"`
	JobTimeout     time.Duration `envconfig:"MARKETBILL_CRON_JOB_TIMEOUT"`
}

type SentryConfig struct {
	DSN              string  `envconfig:"MARKETBILL_SENTRY_DSN"`
	TracesSampleRate float64 `envconfig:"MARKETBILL_SENTRY_TRACES_SAMPLE_RATE" default:"0"`
}

// Enabled reports whether a DSN was configured.
func (s SentryConfig) Enabled() bool {
	return strings.TrimSpace(s.DSN) != ""
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:marketbill.db?_foreign_keys=on"
		return nil
	}

	missing := []string{}
	discreteValues := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if discreteValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

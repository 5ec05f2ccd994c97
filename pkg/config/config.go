package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Admin         AdminConfig
	Subscription  SubscriptionConfig
	Paystack      PaystackConfig
	Cloudinary    CloudinaryConfig
	Sweep         SweepConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"BARBERHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"BARBERHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BARBERHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BARBERHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"BARBERHUB_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BARBERHUB_DB_DSN"`
	Driver string `envconfig:"BARBERHUB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BARBERHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"BARBERHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BARBERHUB_DB_USER"`
	LegacyPassword string `envconfig:"BARBERHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"BARBERHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"BARBERHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BARBERHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BARBERHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BARBERHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BARBERHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BARBERHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BARBERHUB_REDIS_ADDR"`
	Password     string        `envconfig:"BARBERHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"BARBERHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BARBERHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BARBERHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BARBERHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BARBERHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BARBERHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BARBERHUB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BARBERHUB_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BARBERHUB_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BARBERHUB_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BARBERHUB_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BARBERHUB_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BARBERHUB_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BARBERHUB_ARGON_KEY_LEN" default:"32"`
}

// AdminConfig gates the admin surface behind a single shared secret. The secret
// has no default on purpose: an empty value disables the admin routes entirely.
type AdminConfig struct {
	SharedSecret string `envconfig:"BARBERHUB_ADMIN_SHARED_SECRET"`
}

type SubscriptionConfig struct {
	TrialDuration time.Duration `envconfig:"BARBERHUB_TRIAL_DURATION" default:"336h"`
	RenewalPeriod time.Duration `envconfig:"BARBERHUB_RENEWAL_PERIOD" default:"720h"`
	PriceKobo     int64         `envconfig:"BARBERHUB_SUBSCRIPTION_PRICE_KOBO" default:"500000"`
	Currency      string        `envconfig:"BARBERHUB_SUBSCRIPTION_CURRENCY" default:"NGN"`
}

// Price returns the subscription price in naira as a decimal.
func (s SubscriptionConfig) Price() decimal.Decimal {
	return decimal.NewFromInt(s.PriceKobo).Div(decimal.NewFromInt(100))
}

type PaystackConfig struct {
	SecretKey string        `envconfig:"BARBERHUB_PAYSTACK_SECRET_KEY"`
	BaseURL   string        `envconfig:"BARBERHUB_PAYSTACK_BASE_URL" default:"https://api.paystack.co"`
	Timeout   time.Duration `envconfig:"BARBERHUB_PAYSTACK_TIMEOUT" default:"10s"`
}

type CloudinaryConfig struct {
	CloudName string        `envconfig:"BARBERHUB_CLOUDINARY_CLOUD_NAME"`
	APIKey    string        `envconfig:"BARBERHUB_CLOUDINARY_API_KEY"`
	APISecret string        `envconfig:"BARBERHUB_CLOUDINARY_API_SECRET"`
	Folder    string        `envconfig:"BARBERHUB_CLOUDINARY_FOLDER" default:"barbers"`
	BaseURL   string        `envconfig:"BARBERHUB_CLOUDINARY_BASE_URL" default:"https://api.cloudinary.com/v1_1"`
	Timeout   time.Duration `envconfig:"BARBERHUB_CLOUDINARY_TIMEOUT" default:"30s"`
}

type SweepConfig struct {
	Interval              time.Duration `envconfig:"BARBERHUB_SWEEP_INTERVAL" default:"1h"`
	BatchSize             int           `envconfig:"BARBERHUB_SWEEP_BATCH_SIZE" default:"250"`
	NotificationRetention time.Duration `envconfig:"BARBERHUB_NOTIFICATION_RETENTION" default:"720h"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"BARBERHUB_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginPhoneLimit  int           `envconfig:"BARBERHUB_AUTH_RATE_LIMIT_LOGIN_PHONE_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"BARBERHUB_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"30"`
	SignupWindow     time.Duration `envconfig:"BARBERHUB_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupPhoneLimit int           `envconfig:"BARBERHUB_AUTH_RATE_LIMIT_SIGNUP_PHONE_LIMIT" default:"3"`
	SignupIPLimit    int           `envconfig:"BARBERHUB_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BARBERHUB_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		"BARBERHUB_DB_HOST": db.LegacyHost,
		"BARBERHUB_DB_USER": db.LegacyUser,
		"BARBERHUB_DB_NAME": db.LegacyName,
	}
	for _, env := range []string{"BARBERHUB_DB_HOST", "BARBERHUB_DB_USER", "BARBERHUB_DB_NAME"} {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either BARBERHUB_DB_DSN or %s are required", strings.Join(missing, ", "))
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

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Receiving    ReceivingConfig
	Invoices     InvoicesConfig
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
	Env          string `envconfig:"SUPPLYLINE_APP_ENV" required:"true"`
	Port         string `envconfig:"SUPPLYLINE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SUPPLYLINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SUPPLYLINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"SUPPLYLINE_DB_DSN"`

	Host     string `envconfig:"SUPPLYLINE_DB_HOST"`
	Port     int    `envconfig:"SUPPLYLINE_DB_PORT" default:"5432"`
	User     string `envconfig:"SUPPLYLINE_DB_USER"`
	Password string `envconfig:"SUPPLYLINE_DB_PASSWORD"`
	Name     string `envconfig:"SUPPLYLINE_DB_NAME"`
	SSLMode  string `envconfig:"SUPPLYLINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SUPPLYLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SUPPLYLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SUPPLYLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SUPPLYLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SUPPLYLINE_REDIS_URL"`
	Address      string        `envconfig:"SUPPLYLINE_REDIS_ADDR"`
	Password     string        `envconfig:"SUPPLYLINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SUPPLYLINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SUPPLYLINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SUPPLYLINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SUPPLYLINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SUPPLYLINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SUPPLYLINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SUPPLYLINE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SUPPLYLINE_JWT_ISSUER" default:"supplyline"`
	ExpirationMinutes int    `envconfig:"SUPPLYLINE_JWT_EXPIRATION_MINUTES" default:"720"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SUPPLYLINE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SUPPLYLINE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SUPPLYLINE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SUPPLYLINE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SUPPLYLINE_ARGON_KEY_LEN" default:"32"`
}

type ReceivingConfig struct {
	BatchNumberPrefix string `envconfig:"SUPPLYLINE_BATCH_NUMBER_PREFIX" default:"RB"`
}

type InvoicesConfig struct {
	MaxUploadMB int `envconfig:"SUPPLYLINE_INVOICE_MAX_UPLOAD_MB" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SUPPLYLINE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for env, value := range map[string]string{
		"SUPPLYLINE_DB_HOST": db.Host,
		"SUPPLYLINE_DB_USER": db.User,
		"SUPPLYLINE_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either SUPPLYLINE_DB_DSN or %s are required", strings.Join(missing, ", "))
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

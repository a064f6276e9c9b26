package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Config is filled from the environment (optionally seeded by a .env file).
type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	Port     string `envconfig:"PORT" default:"8080"`
	Timezone string `envconfig:"APP_TIMEZONE" default:"UTC"`

	DBDriver    string `envconfig:"DB_DRIVER" default:"mysql"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	MySQLURL    string `envconfig:"MYSQL_URL"`
	DBUser      string `envconfig:"DB_USER" default:"root"`
	DBPass      string `envconfig:"DB_PASS"`
	DBHost      string `envconfig:"DB_HOST" default:"127.0.0.1"`
	DBPort      string `envconfig:"DB_PORT" default:"3306"`
	DBName      string `envconfig:"DB_NAME" default:"hotel_db"`
	DBLogLevel  string `envconfig:"DB_LOG_LEVEL" default:"warn"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`

	JWTSecret  string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL   time.Duration `envconfig:"TOKEN_TTL" default:"12h"`
	BcryptCost int           `envconfig:"BCRYPT_COST" default:"10"`

	CorsOrigins []string `envconfig:"CORS_ORIGINS"`

	RedisURL          string        `envconfig:"REDIS_URL"`
	DashboardCacheTTL time.Duration `envconfig:"DASHBOARD_CACHE_TTL" default:"30s"`

	RabbitMQURL    string `envconfig:"RABBITMQ_URL"`
	EventsExchange string `envconfig:"EVENTS_EXCHANGE" default:"hotel.events"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	SeedAdminUsername string `envconfig:"SEED_ADMIN_USERNAME" default:"admin"`
	SeedAdminPassword string `envconfig:"SEED_ADMIN_PASSWORD" default:"admin123"`
}

// Load reads envFile when it exists and then parses the environment.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Debugf("%s not loaded (%v); continuing with environment variables", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse environment")
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Location resolves APP_TIMEZONE, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.WithError(err).Warnf("unknown APP_TIMEZONE %q, using UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

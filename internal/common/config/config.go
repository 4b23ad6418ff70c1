package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port           int      `env:"PORT" envDefault:"8080"`
		AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	}

	Postgres PostgresConfig

	Redis struct {
		Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Streams struct {
		CollectComments string `env:"STREAM_COLLECT_COMMENTS" envDefault:"collect-comments"`
		Mail            string `env:"STREAM_MAIL" envDefault:"mail-outbox"`
		ConsumerGroup   string `env:"STREAM_CONSUMER_GROUP" envDefault:"collectors"`
		// Approximate MAXLEN trim applied on publish, 0 disables trimming
		MaxLen int64 `env:"STREAM_MAX_LEN" envDefault:"10000"`
	}

	Collector struct {
		OpsPort        int           `env:"COLLECTOR_OPS_PORT" envDefault:"8081"`
		Workers        int           `env:"COLLECTOR_WORKERS" envDefault:"4"`
		MaxPages       int           `env:"COLLECTOR_MAX_PAGES" envDefault:"0"` // 0 = unbounded
		RequestTimeout time.Duration `env:"COLLECTOR_REQUEST_TIMEOUT" envDefault:"15s"`
		Retries        uint64        `env:"COLLECTOR_RETRIES" envDefault:"0"`
		RetryBackoff   time.Duration `env:"COLLECTOR_RETRY_BACKOFF" envDefault:"500ms"`
		BatchSize      int           `env:"COLLECTOR_BATCH_SIZE" envDefault:"500"`
	}

	Instagram struct {
		APIKey  string `env:"RAPID_API_KEY"`
		APIHost string `env:"RAPID_API_HOST" envDefault:"rocketapi-for-instagram.p.rapidapi.com"`
		BaseURL string `env:"INSTAGRAM_API_BASE_URL" envDefault:"https://rocketapi-for-instagram.p.rapidapi.com"`
	}

	Mail struct {
		From string `env:"APP_MAIL" envDefault:"noreply@giveaway.local"`
	}

	Cache struct {
		UserTTL time.Duration `env:"USER_CACHE_TTL" envDefault:"5m"`
	}

	Reconcile struct {
		Interval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"1h"`
	}
}

type PostgresConfig struct {
	Host        string `env:"DB_HOST" envDefault:"localhost"`
	Port        int    `env:"DB_PORT" envDefault:"5432"`
	User        string `env:"DB_USER" envDefault:"postgres"`
	Password    string `env:"DB_PASSWORD" envDefault:"postgres"`
	Name        string `env:"DB_NAME" envDefault:"giveaways"`
	SSLMode     string `env:"DB_SSLMODE" envDefault:"disable"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`

	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
}

// GetDSN returns a URL-form connection string usable by both lib/pq and golang-migrate
func (c PostgresConfig) GetDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.Name,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

func Load() (*Config, error) {
	// A missing .env is fine, production sets variables directly
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Collector.Workers <= 0 {
		cfg.Collector.Workers = 1
	}
	if cfg.Collector.BatchSize <= 0 {
		cfg.Collector.BatchSize = 500
	}
	return cfg, nil
}

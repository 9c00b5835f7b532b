package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL   string        `mapstructure:"DATABASE_URL"`
	HTTPAddr      string        `mapstructure:"HTTP_ADDR"`
	MigrationsDir string        `mapstructure:"MIGRATIONS_DIR"`
	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	JWTIssuer     string        `mapstructure:"JWT_ISSUER"`
	StoreTimeout  time.Duration `mapstructure:"STORE_TIMEOUT"`
	EventWorkers  int           `mapstructure:"EVENT_WORKERS"`
	EventQueue    int           `mapstructure:"EVENT_QUEUE_SIZE"`
	MaxTeamViews  int           `mapstructure:"MAX_TEAM_VIEWS"`

	// Roster cache is enabled when RedisAddr is set.
	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int           `mapstructure:"REDIS_DB"`
	RosterCacheTTL time.Duration `mapstructure:"ROSTER_CACHE_TTL"`

	// Event export to Kafka is enabled when KafkaBrokers is set.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`
}

// Load reads envFile if it exists, then the environment. Env vars win.
func Load(envFile string) (Config, error) {
	v := viper.New()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		_ = v.ReadInConfig()
	}

	v.AutomaticEnv()

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "teamaccess")
	v.SetDefault("STORE_TIMEOUT", "3s")
	v.SetDefault("EVENT_WORKERS", 4)
	v.SetDefault("EVENT_QUEUE_SIZE", 256)
	v.SetDefault("MAX_TEAM_VIEWS", 1024)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ROSTER_CACHE_TTL", "1m")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "teamaccess-events")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("config: DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("config: JWT_SECRET is required")
	}
	if cfg.EventWorkers <= 0 {
		cfg.EventWorkers = 4
	}

	return cfg, nil
}

func (c Config) KafkaBrokerList() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

package config

import (
	"time"

	pkgconfig "github.com/atdaga/skrm-server/pkg/config"
	"github.com/atdaga/skrm-server/pkg/database"
	"github.com/atdaga/skrm-server/pkg/sequence"
)

type Config struct {
	Server   ServerConfig
	Database database.Config
	Redis    RedisConfig
	Sequence sequence.Config
	JWT      JWTConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// JWTConfig must share its secret with tracker-service so tokens issued
// for one are accepted by the other.
type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type LogConfig struct {
	Level string
}

// Load reads config.yaml from configPath if present. The sequence and
// database settings must match tracker-service so both draw from the
// same counters.
func Load(configPath string) (*Config, error) {
	v, err := pkgconfig.Load(configPath, "config")
	if err != nil {
		return nil, err
	}

	pkgconfig.SetDefaults(v, map[string]any{
		"server.host":                "0.0.0.0",
		"server.port":                8091,
		"database.driver":            "postgres",
		"database.host":              "localhost",
		"database.port":              5432,
		"database.user":              "postgres",
		"database.password":          "postgres",
		"database.dbname":            "tracker",
		"database.sslmode":           "disable",
		"database.time_zone":         "UTC",
		"database.file_path":         "./data/tracker.db",
		"database.max_idle_conns":    5,
		"database.max_open_conns":    20,
		"database.conn_max_lifetime": 60,
		"database.log_level":         "warn",
		"database.slow_threshold_ms": 200,
		"redis.address":              "localhost:6379",
		"redis.password":             "",
		"redis.db":                   0,
		"sequence.driver":            sequence.DriverDatabase,
		"sequence.key_prefix":        sequence.DefaultKeyPrefix,
		"jwt.secret":                 "",
		"jwt.issuer":                 "skrm",
		"jwt.ttl":                    "1h",
		"log.level":                  "info",
	})

	if err := pkgconfig.BindEnvs(v, map[string]string{
		"server.port":        "PORT",
		"database.driver":    "DB_DRIVER",
		"database.host":      "DB_HOST",
		"database.port":      "DB_PORT",
		"database.user":      "DB_USER",
		"database.password":  "DB_PASSWORD",
		"database.dbname":    "DB_NAME",
		"database.sslmode":   "DB_SSLMODE",
		"database.file_path": "DB_FILE_PATH",
		"redis.address":      "REDIS_ADDRESS",
		"redis.password":     "REDIS_PASSWORD",
		"redis.db":           "REDIS_DB",
		"sequence.driver":    "SEQUENCE_DRIVER",
		"jwt.secret":         "JWT_SECRET",
		"log.level":          "LOG_LEVEL",
	}); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

package config

import (
	"time"

	pkgconfig "github.com/atdaga/skrm-server/pkg/config"
	"github.com/atdaga/skrm-server/pkg/database"
	"github.com/atdaga/skrm-server/pkg/pubsub"
	"github.com/atdaga/skrm-server/pkg/sequence"
	"github.com/atdaga/skrm-server/pkg/storage"
)

type Config struct {
	Server   ServerConfig
	Database database.Config
	Redis    RedisConfig
	Cache    CacheConfig
	JWT      JWTConfig
	Sequence sequence.Config
	PubSub   pubsub.Config `mapstructure:"pubsub"`
	Storage  storage.Config
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

type CacheConfig struct {
	Prefix        string
	MembershipTTL time.Duration `mapstructure:"membership_ttl"`
}

type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type LogConfig struct {
	Level string
}

// Load reads ./config/config.yaml if present, then applies defaults and
// environment overrides.
func Load(configPath string) (*Config, error) {
	v, err := pkgconfig.Load(configPath, "config")
	if err != nil {
		return nil, err
	}

	pkgconfig.SetDefaults(v, map[string]any{
		"server.host":                "0.0.0.0",
		"server.port":                8090,
		"database.driver":            "postgres",
		"database.host":              "localhost",
		"database.port":              5432,
		"database.user":              "postgres",
		"database.password":          "postgres",
		"database.dbname":            "tracker",
		"database.sslmode":           "disable",
		"database.time_zone":         "UTC",
		"database.file_path":         "./data/tracker.db",
		"database.max_idle_conns":    10,
		"database.max_open_conns":    100,
		"database.conn_max_lifetime": 60,
		"database.log_level":         "warn",
		"database.slow_threshold_ms": 200,
		"redis.address":              "localhost:6379",
		"redis.password":             "",
		"redis.db":                   0,
		"cache.prefix":               "tracker",
		"cache.membership_ttl":       "5m",
		"jwt.secret":                 "",
		"jwt.issuer":                 "skrm",
		"jwt.ttl":                    "1h",
		"sequence.driver":            sequence.DriverDatabase,
		"sequence.key_prefix":        sequence.DefaultKeyPrefix,
		"pubsub.driver":              pubsub.DriverNone,
		"pubsub.redis.address":       "localhost:6379",
		"pubsub.redis.pool_size":     10,
		"pubsub.redis.read_timeout":  "3s",
		"pubsub.redis.write_timeout": "3s",
		"pubsub.kafka.brokers":       "localhost:9092",
		"pubsub.kafka.partitions":    4,
		"storage.driver":             storage.DriverLocal,
		"storage.local.base_path":    "./data/docs",
		"storage.s3.region":          "us-east-1",
		"storage.s3.bucket":          "tracker-docs",
		"storage.s3.use_path_style":  true,
		"storage.s3.key_prefix":      "tracker",
		"log.level":                  "info",
	})

	if err := pkgconfig.BindEnvs(v, map[string]string{
		"server.port":                  "PORT",
		"database.driver":              "DB_DRIVER",
		"database.host":                "DB_HOST",
		"database.port":                "DB_PORT",
		"database.user":                "DB_USER",
		"database.password":            "DB_PASSWORD",
		"database.dbname":              "DB_NAME",
		"database.sslmode":             "DB_SSLMODE",
		"database.file_path":           "DB_FILE_PATH",
		"database.max_idle_conns":      "DB_MAX_IDLE_CONNS",
		"database.max_open_conns":      "DB_MAX_OPEN_CONNS",
		"database.conn_max_lifetime":   "DB_CONN_MAX_LIFETIME",
		"redis.address":                "REDIS_ADDRESS",
		"redis.password":               "REDIS_PASSWORD",
		"redis.db":                     "REDIS_DB",
		"jwt.secret":                   "JWT_SECRET",
		"sequence.driver":              "SEQUENCE_DRIVER",
		"pubsub.driver":                "PUBSUB_DRIVER",
		"pubsub.redis.address":         "REDIS_ADDRESS",
		"pubsub.kafka.brokers":         "KAFKA_BROKERS",
		"storage.driver":               "STORAGE_DRIVER",
		"storage.local.base_path":      "STORAGE_LOCAL_PATH",
		"storage.s3.endpoint":          "STORAGE_S3_ENDPOINT",
		"storage.s3.region":            "STORAGE_S3_REGION",
		"storage.s3.bucket":            "STORAGE_S3_BUCKET",
		"storage.s3.access_key_id":     "STORAGE_S3_ACCESS_KEY_ID",
		"storage.s3.secret_access_key": "STORAGE_S3_SECRET_ACCESS_KEY",
		"storage.s3.key_prefix":        "STORAGE_S3_KEY_PREFIX",
		"storage.s3.encryption":        "STORAGE_S3_ENCRYPTION",
		"log.level":                    "LOG_LEVEL",
	}); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

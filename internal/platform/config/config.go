package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "productverification/pkg/platform/strings"
)

// Server captures process-level configuration. Empty backend URLs select the
// in-memory implementation of that backend.
type Server struct {
	Addr                   string
	LogLevel               string
	DatabaseURL            string
	Mongo                  MongoConfig
	Redis                  RedisConfig
	Kafka                  KafkaConfig
	StrictCreateValidation bool
	VerifyLockTTL          time.Duration
	TxTimeout              time.Duration
	RequestTimeout         time.Duration
	ShutdownTimeout        time.Duration
}

// MongoConfig locates the verification audit store.
type MongoConfig struct {
	URL            string
	Database       string
	ConnectTimeout time.Duration
}

// RedisConfig configures the distributed verify lock.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures domain event publication.
type KafkaConfig struct {
	Brokers           []string
	Topic             string
	Partitions        int32
	ReplicationFactor int16
	BreakerCooldown   time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:        getEnv("PRODUCT_API_ADDR", ":8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Mongo: MongoConfig{
			URL:            os.Getenv("MONGO_URL"),
			Database:       getEnv("MONGO_DATABASE", "product_verification"),
			ConnectTimeout: getDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:           splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:             getEnv("KAFKA_TOPIC", "product-events"),
			Partitions:        int32(getInt("KAFKA_TOPIC_PARTITIONS", 3)),
			ReplicationFactor: int16(getInt("KAFKA_TOPIC_REPLICATION", 1)),
			BreakerCooldown:   getDuration("KAFKA_BREAKER_COOLDOWN", 30*time.Second),
		},
		StrictCreateValidation: getBool("STRICT_CREATE_VALIDATION", true),
		VerifyLockTTL:          getDuration("VERIFY_LOCK_TTL", 10*time.Second),
		TxTimeout:              getDuration("TX_TIMEOUT", 5*time.Second),
		RequestTimeout:         getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:        getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

// getDuration accepts Go duration strings ("250ms", "5s").
func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}

func splitList(raw string) []string {
	return pstrings.DedupeAndTrim(strings.Split(raw, ","))
}

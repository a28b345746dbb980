package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env                string
	HTTPAddr           string
	StorageMode        string
	MongoURI           string
	MongoDB            string
	KafkaBrokers       []string
	KafkaTopicPrefix   string
	KafkaConsumerGroup string
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration
	HoldDefaultHours   int
	HoldSweepInterval  time.Duration
	BulkConcurrency    int
	AuthTokens         string
	PropertiesFixtures string
}

// KafkaEnabled reports whether publishing and feed consumption should start.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:                getEnv("APP_ENV", "dev"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		StorageMode:        strings.ToLower(getEnv("STORAGE_MODE", StorageMemory)),
		MongoURI:           os.Getenv("MONGO_URI"),
		MongoDB:            getEnv("MONGO_DB", "rentops"),
		KafkaTopicPrefix:   getEnv("KAFKA_TOPIC_PREFIX", ""),
		KafkaConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "rentops-calendar-feed"),
		AuthTokens:         os.Getenv("AUTH_TOKENS"),
		PropertiesFixtures: os.Getenv("PROPERTIES_FIXTURES"),
	}
	brokers := getEnv("KAFKA_BROKERS", "")
	if brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	poll, err := parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return Config{}, err
	}
	cfg.OutboxPollInterval = poll

	sweep, err := parseDurationEnv("HOLD_SWEEP_INTERVAL", 0)
	if err != nil {
		return Config{}, err
	}
	cfg.HoldSweepInterval = sweep

	holdHours, err := parseIntEnv("HOLD_DEFAULT_HOURS", 24)
	if err != nil {
		return Config{}, err
	}
	if holdHours <= 0 {
		return Config{}, fmt.Errorf("HOLD_DEFAULT_HOURS must be positive, got %d", holdHours)
	}
	cfg.HoldDefaultHours = holdHours

	concurrency, err := parseIntEnv("BULK_CONCURRENCY", 8)
	if err != nil {
		return Config{}, err
	}
	if concurrency <= 0 {
		return Config{}, fmt.Errorf("BULK_CONCURRENCY must be positive, got %d", concurrency)
	}
	cfg.BulkConcurrency = concurrency

	retryStr := getEnv("RETRY_BACKOFF", "1s,5s,30s")
	for _, raw := range strings.Split(retryStr, ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}

	switch cfg.StorageMode {
	case StorageMemory:
	case StorageMongo:
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required when STORAGE_MODE=mongo")
		}
	default:
		return Config{}, fmt.Errorf("invalid STORAGE_MODE %q", cfg.StorageMode)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return n, nil
}

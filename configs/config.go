package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	LogLevel    string
	LogEncoding string

	DispatchTimeout time.Duration

	AWSRegion          string
	S3Endpoint         string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	RedisPassword    string
	RedisDialTimeout time.Duration
	EtcdDialTimeout  time.Duration

	PushgatewayURL string
	TracingEnabled bool
	OTLPEndpoint   string
}

func LoadConfig() *Config {
	return &Config{
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogEncoding:        getEnv("LOG_ENCODING", "console"),
		DispatchTimeout:    getEnvAsDuration("DISPATCH_TIMEOUT", 30*time.Second),
		AWSRegion:          getEnv("AWS_REGION", "us-west-2"),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDialTimeout:   getEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		EtcdDialTimeout:    getEnvAsDuration("ETCD_DIAL_TIMEOUT", 5*time.Second),
		PushgatewayURL:     getEnv("PUSHGATEWAY_URL", ""),
		TracingEnabled:     getEnvAsBool("TRACING_ENABLED", false),
		OTLPEndpoint:       getEnv("OTLP_ENDPOINT", "localhost:4318"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return fallback
}

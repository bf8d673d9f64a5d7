package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// envFiles are loaded by parseEnv when present. godotenv never overrides
// variables that are already set.
var envFiles = []string{".env"}

// parseEnv overlays AUTH_* environment variables. Invalid numbers panic,
// like malformed JSON or flags.
//
//	AUTH_GRPC_ADDR           gRPC bind address
//	AUTH_DATABASE_DSN        database DSN
//	AUTH_HASH_ALGORITHM      bcrypt or argon2id
//	AUTH_BCRYPT_COST         bcrypt work factor
//	AUTH_REPOSITORY_TIMEOUT  Go duration, e.g. "5s"
//	AUTH_AMQP_URL            RabbitMQ URL; empty disables events
//	AUTH_EVENTS_QUEUE        RabbitMQ queue name
//	AUTH_LOG_LEVEL           debug, info, warn, error
func parseEnv(config *Config) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				panic(err)
			}
		}
	}

	setString(&config.EndpointAddrGRPC, "AUTH_GRPC_ADDR")
	setString(&config.DatabaseDSN, "AUTH_DATABASE_DSN")
	setString(&config.HashAlgorithm, "AUTH_HASH_ALGORITHM")
	setString(&config.AMQPURL, "AUTH_AMQP_URL")
	setString(&config.EventsQueue, "AUTH_EVENTS_QUEUE")
	setString(&config.LogLevel, "AUTH_LOG_LEVEL")

	if v, ok := os.LookupEnv("AUTH_BCRYPT_COST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		config.BcryptCost = n
	}
	if v, ok := os.LookupEnv("AUTH_REPOSITORY_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.RepositoryTimeout = d
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

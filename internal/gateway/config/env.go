package config

import (
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/authgateway/internal/flagx"
	"github.com/joho/godotenv"
)

var envFiles = []string{".env"}

// parseEnv overlays GATEWAY_* environment variables. Invalid numbers and
// durations panic.
//
//	GATEWAY_HTTP_ADDR     HTTP bind address
//	GATEWAY_AUTH_ADDR     auth service gRPC address
//	GATEWAY_RPC_TIMEOUT   Go duration, e.g. "5s"
//	GATEWAY_REDIS_URL     redis://host:6379/0; empty disables rate limiting
//	GATEWAY_RATE_LIMIT    requests per window
//	GATEWAY_RATE_WINDOW   Go duration
//	GATEWAY_CORS_ORIGINS  comma-separated origins
//	GATEWAY_LOG_LEVEL     debug, info, warn, error
func parseEnv(config *Config) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				panic(err)
			}
		}
	}

	setString(&config.EndpointAddrHTTP, "GATEWAY_HTTP_ADDR")
	setString(&config.AuthServiceAddr, "GATEWAY_AUTH_ADDR")
	setString(&config.RedisURL, "GATEWAY_REDIS_URL")
	setString(&config.LogLevel, "GATEWAY_LOG_LEVEL")
	setDuration(&config.RPCTimeout, "GATEWAY_RPC_TIMEOUT")
	setDuration(&config.RateWindow, "GATEWAY_RATE_WINDOW")

	if v, ok := os.LookupEnv("GATEWAY_RATE_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		config.RateLimit = n
	}
	if v, ok := os.LookupEnv("GATEWAY_CORS_ORIGINS"); ok {
		config.CORSOrigins = flagx.SplitList(v)
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}
}

// Package config handles configuration for the gateway: defaults, then
// .env and environment variables, then an optional JSON file, then
// command-line flags. Later sources win.
package config

import "time"

// Config holds runtime settings for the gateway.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the public HTTP endpoint.
//   - AuthServiceAddr: gRPC address of the auth service.
//   - RPCTimeout: upper bound for one command round trip.
//   - RedisURL: rate limiter store; empty disables rate limiting.
//   - RateLimit / RateWindow: requests allowed per client and route in one window.
//   - CORSOrigins: allowed origins; empty allows any origin.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	EndpointAddrHTTP string
	AuthServiceAddr  string
	RPCTimeout       time.Duration
	RedisURL         string
	RateLimit        int
	RateWindow       time.Duration
	CORSOrigins      []string
	LogLevel         string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":3000"
	c.AuthServiceAddr = "127.0.0.1:3001"
	c.RPCTimeout = 5 * time.Second
	c.RedisURL = ""
	c.RateLimit = 10
	c.RateWindow = 60 * time.Second
	c.CORSOrigins = nil
	c.LogLevel = "info"
}

// LoadConfig builds a Config from defaults, environment, JSON and flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

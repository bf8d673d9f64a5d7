package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/authgateway/internal/flagx"
	"github.com/dmitrijs2005/authgateway/internal/timex"
)

// JsonConfig is the JSON file shape. Absent fields leave the current value
// untouched.
type JsonConfig struct {
	EndpointAddrHTTP string          `json:"endpoint_addr_http"`
	AuthServiceAddr  string          `json:"auth_service_addr"`
	RPCTimeout       *timex.Duration `json:"rpc_timeout"`
	RedisURL         *string         `json:"redis_url"`
	RateLimit        int             `json:"rate_limit"`
	RateWindow       *timex.Duration `json:"rate_window"`
	CORSOrigins      []string        `json:"cors_origins"`
	LogLevel         string          `json:"log_level"`
}

func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.AuthServiceAddr != "" {
		config.AuthServiceAddr = c.AuthServiceAddr
	}
	if c.RPCTimeout != nil {
		config.RPCTimeout = c.RPCTimeout.Duration
	}
	if c.RedisURL != nil {
		config.RedisURL = *c.RedisURL
	}
	if c.RateLimit != 0 {
		config.RateLimit = c.RateLimit
	}
	if c.RateWindow != nil {
		config.RateWindow = c.RateWindow.Duration
	}
	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
}

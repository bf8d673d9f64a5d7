package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/authgateway/internal/flagx"
	"github.com/dmitrijs2005/authgateway/internal/timex"
)

// JsonConfig is the JSON file shape. Durations accept "5s" or integer
// nanoseconds. Absent fields leave the current value untouched.
type JsonConfig struct {
	EndpointAddrGRPC  string          `json:"endpoint_addr_grpc"`
	DatabaseDSN       string          `json:"database_dsn"`
	HashAlgorithm     string          `json:"hash_algorithm"`
	BcryptCost        int             `json:"bcrypt_cost"`
	RepositoryTimeout *timex.Duration `json:"repository_timeout"`
	AMQPURL           *string         `json:"amqp_url"`
	EventsQueue       string          `json:"events_queue"`
	LogLevel          string          `json:"log_level"`
}

// parseJson loads the file named by -c/-config, if any, into config.
// An unreadable file or invalid JSON panics.
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

	if c.EndpointAddrGRPC != "" {
		config.EndpointAddrGRPC = c.EndpointAddrGRPC
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.HashAlgorithm != "" {
		config.HashAlgorithm = c.HashAlgorithm
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.RepositoryTimeout != nil {
		config.RepositoryTimeout = c.RepositoryTimeout.Duration
	}
	if c.AMQPURL != nil {
		config.AMQPURL = *c.AMQPURL
	}
	if c.EventsQueue != "" {
		config.EventsQueue = c.EventsQueue
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
}

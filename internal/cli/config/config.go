// Package config loads runtime configuration for authctl: defaults, then
// an optional JSON file (-c/-config), then command-line flags.
//
//	-s string   auth service gRPC address
//	-t int      command timeout, seconds
//
// JSON:
//
//	{
//	  "server_addr": "127.0.0.1:3001",
//	  "timeout": "5s"
//	}
package config

import (
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/authgateway/internal/flagx"
	"github.com/dmitrijs2005/authgateway/internal/timex"
)

type Config struct {
	ServerAddr string
	Timeout    time.Duration
}

func (c *Config) LoadDefaults() {
	c.ServerAddr = "127.0.0.1:3001"
	c.Timeout = 5 * time.Second
}

func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

type JsonConfig struct {
	ServerAddr string          `json:"server_addr"`
	Timeout    *timex.Duration `json:"timeout"`
}

func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.ServerAddr != "" {
		cfg.ServerAddr = c.ServerAddr
	}
	if c.Timeout != nil {
		cfg.Timeout = c.Timeout.Duration
	}
}

func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerAddr, "s", cfg.ServerAddr, "auth service address")
	timeout := fs.Int("t", int(cfg.Timeout.Seconds()), "command timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.Timeout = time.Duration(*timeout) * time.Second
		}
	})
}

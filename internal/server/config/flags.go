package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/authgateway/internal/flagx"
)

// parseFlags overlays command-line flags:
//
//	-a string   gRPC bind address (e.g. ":3001")
//	-d string   database DSN
//	-x string   hash algorithm (bcrypt, argon2id)
//	-k int      bcrypt cost
//	-t int      repository timeout, seconds
//	-q string   AMQP URL
//	-e string   events queue
//	-l string   log level
//
// Only these flags are read from os.Args; a parse error panics.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-x", "-k", "-t", "-q", "-e", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.HashAlgorithm, "x", config.HashAlgorithm, "password hash algorithm")
	fs.IntVar(&config.BcryptCost, "k", config.BcryptCost, "bcrypt cost")

	repositoryTimeout := fs.Int("t", int(config.RepositoryTimeout.Seconds()), "repository timeout (in seconds)")

	fs.StringVar(&config.AMQPURL, "q", config.AMQPURL, "AMQP URL for user events")
	fs.StringVar(&config.EventsQueue, "e", config.EventsQueue, "events queue")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.RepositoryTimeout = time.Duration(*repositoryTimeout) * time.Second
		}
	})
}

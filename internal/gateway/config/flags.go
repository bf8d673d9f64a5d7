package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/authgateway/internal/flagx"
)

// parseFlags overlays command-line flags:
//
//	-a string   HTTP bind address (e.g. ":3000")
//	-s string   auth service address
//	-t int      RPC timeout, seconds
//	-r string   Redis URL
//	-n int      requests per rate window
//	-w int      rate window, seconds
//	-o string   comma-separated CORS origins
//	-l string   log level
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-t", "-r", "-n", "-w", "-o", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run gateway")
	fs.StringVar(&config.AuthServiceAddr, "s", config.AuthServiceAddr, "auth service address")
	rpcTimeout := fs.Int("t", int(config.RPCTimeout.Seconds()), "RPC timeout (in seconds)")
	fs.StringVar(&config.RedisURL, "r", config.RedisURL, "Redis URL for rate limiting")
	fs.IntVar(&config.RateLimit, "n", config.RateLimit, "requests per rate window")
	rateWindow := fs.Int("w", int(config.RateWindow.Seconds()), "rate window (in seconds)")

	origins := flagx.StringList(config.CORSOrigins)
	fs.Var(&origins, "o", "comma-separated CORS origins")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.RPCTimeout = time.Duration(*rpcTimeout) * time.Second
		case "w":
			config.RateWindow = time.Duration(*rateWindow) * time.Second
		case "o":
			config.CORSOrigins = origins
		}
	})
}

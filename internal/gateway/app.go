// Package gateway wires the public HTTP gateway: logging, the auth service
// client, the optional Redis rate limiter and the gin router.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/authgateway/internal/gateway/api"
	"github.com/dmitrijs2005/authgateway/internal/gateway/authclient"
	"github.com/dmitrijs2005/authgateway/internal/gateway/config"
	"github.com/dmitrijs2005/authgateway/internal/gateway/ratelimit"
	"github.com/dmitrijs2005/authgateway/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	client *authclient.Client
	redis  *redis.Client
	server *http.Server
}

func NewApp(c *config.Config) (*App, error) {

	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSONLogrusLogger(os.Stdout, level)

	gin.SetMode(gin.ReleaseMode)

	app := &App{config: c, logger: logger}

	var limiter api.RateLimiter
	if c.RedisURL != "" {
		opts, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis url error: %w", err)
		}
		app.redis = redis.NewClient(opts)
		limiter = ratelimit.New(app.redis, c.RateLimit, c.RateWindow)
	} else {
		logger.Info(context.Background(), "Redis url is empty, rate limiting is disabled")
	}

	app.client = authclient.New(c.AuthServiceAddr, c.RPCTimeout, logger)

	router, err := api.NewRouter(api.NewHandler(app.client, logger), logger, api.RouterConfig{
		CORSOrigins: c.CORSOrigins,
		Limiter:     limiter,
	})
	if err != nil {
		app.close()
		return nil, err
	}

	app.server = &http.Server{
		Addr:              c.EndpointAddrHTTP,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.server.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.EndpointAddrHTTP)

	if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) close() {
	if err := app.client.Close(); err != nil {
		app.logger.Error(context.Background(), "auth client close error", "error", err)
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(context.Background(), "redis close error", "error", err)
		}
	}
}

// Run serves until a shutdown signal arrives or ctx is cancelled.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting gateway...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.close()

	app.logger.Info(ctx, "Gateway stopped")
}

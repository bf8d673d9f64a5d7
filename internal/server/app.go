// Package server wires the auth service together: logging, the database
// and its migrations, the credential codec, the event publisher and the
// gRPC endpoint. It handles graceful shutdown on SIGINT, SIGTERM and SIGQUIT.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/authgateway/internal/credentials"
	"github.com/dmitrijs2005/authgateway/internal/logging"
	"github.com/dmitrijs2005/authgateway/internal/server/config"
	"github.com/dmitrijs2005/authgateway/internal/server/events"
	"github.com/dmitrijs2005/authgateway/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authgateway/internal/server/services"

	gs "github.com/dmitrijs2005/authgateway/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	publisher   events.Publisher
	userService *services.UserService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSONSlogLogger(os.Stdout, level)

	codec, err := credentials.New(c.HashAlgorithm, c.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("credential codec error: %w", err)
	}

	db, um, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := um.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	var pub events.Publisher = events.Nop{}
	if c.AMQPURL != "" {
		rp, err := events.NewRabbitPublisher(c.AMQPURL, c.EventsQueue)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("event publisher init error: %w", err)
		}
		pub = rp
	} else {
		logger.Info(ctx, "AMQP url is empty, user events are disabled")
	}

	us := services.NewUserService(db, um, codec, pub, logger, c)

	return &App{config: c, logger: logger, db: db, publisher: pub, userService: us}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

// Run serves until a shutdown signal arrives or ctx is cancelled, then
// releases the publisher and the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.publisher.Close(); err != nil {
		app.logger.Error(ctx, "event publisher close error", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}

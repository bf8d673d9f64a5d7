// Package cli implements authctl, an interactive operator console that
// issues the authentication commands straight to the auth service.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/authgateway/internal/cli/config"
	"github.com/dmitrijs2005/authgateway/internal/gateway/authclient"
	"github.com/dmitrijs2005/authgateway/internal/logging"
	"github.com/dmitrijs2005/authgateway/internal/result"
	"github.com/dmitrijs2005/authgateway/internal/rpc"
	"github.com/dmitrijs2005/authgateway/internal/validation"
	"github.com/go-playground/validator/v10"
)

// AuthClient is the command surface authctl needs.
type AuthClient interface {
	Register(context.Context, rpc.RegisterPayload) (result.Result[rpc.UserView], error)
	GetUsers(context.Context) (result.Result[[]rpc.UserView], error)
	Login(context.Context, rpc.LoginPayload) (result.Result[rpc.UserView], error)
	ChangePassword(context.Context, rpc.ChangePasswordPayload) (result.Result[result.Unit], error)
	GetProfile(context.Context, rpc.GetProfilePayload) (result.Result[rpc.UserView], error)
	Check(context.Context) error
	Close() error
}

type App struct {
	config   *config.Config
	client   AuthClient
	validate *validator.Validate
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	v, err := validation.New()
	if err != nil {
		return nil, err
	}

	level, _ := logging.ParseLevel("warn")
	logger := logging.NewJSONSlogLogger(os.Stderr, level)

	return &App{
		config:   c,
		client:   authclient.New(c.ServerAddr, c.Timeout, logger),
		validate: v,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.client.Close()
	a.println("authctl connected to", a.config.ServerAddr, "- type help for commands")
	runREPL(ctx, a, a.reader)
}

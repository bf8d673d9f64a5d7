// Package authclient is the gateway's connection to the auth service. The
// connection is dialled on first use, dropped after the service reports
// itself unavailable so that the next call dials again, and torn down for
// good by Close.
package authclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/authgateway/internal/common"
	"github.com/dmitrijs2005/authgateway/internal/logging"
	"github.com/dmitrijs2005/authgateway/internal/result"
	"github.com/dmitrijs2005/authgateway/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var (
	ErrUnavailable = errors.New("auth service unavailable")
	ErrClosed      = errors.New("auth client closed")
)

type Client struct {
	address  string
	timeout  time.Duration
	dialOpts []grpc.DialOption
	logger   logging.Logger

	mu     sync.Mutex
	conn   *grpc.ClientConn
	gen    uint64
	closed bool
}

// New returns a client for the auth service at address. No connection is
// made until the first call. A positive timeout bounds every call.
func New(address string, timeout time.Duration, l logging.Logger, opts ...grpc.DialOption) *Client {
	return &Client{
		address:  address,
		timeout:  timeout,
		dialOpts: opts,
		logger:   l.With("module", "auth_client"),
	}
}

// WithRequestID attaches id to outgoing calls made with the returned context.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.RequestIDHeaderName, id)

	return metadata.NewOutgoingContext(ctx, md)
}

func (c *Client) connection() (*grpc.ClientConn, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, 0, ErrClosed
	}
	if c.conn != nil {
		return c.conn, c.gen, nil
	}

	opts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, c.dialOpts...)
	conn, err := grpc.NewClient(c.address, opts...)
	if err != nil {
		return nil, 0, fmt.Errorf("rpc error: %w", err)
	}
	c.conn = conn
	c.gen++
	return conn, c.gen, nil
}

// reset drops the connection of generation gen. A connection dialled by a
// concurrent caller after the failure is left alone.
func (c *Client) reset(gen uint64) {
	c.mu.Lock()
	if c.conn == nil || c.gen != gen {
		c.mu.Unlock()
		return
	}
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	c.logger.Warn(context.Background(), "auth service unavailable, dropping connection", "address", c.address)
	_ = conn.Close()
}

// Close tears the connection down. Calls made afterwards return ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) mapError(err error, gen uint64) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unavailable:
		c.reset(gen)
		return ErrUnavailable
	case codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func call[P, T any](ctx context.Context, c *Client, cmd rpc.Command, p P) (result.Result[T], error) {
	conn, gen, err := c.connection()
	if err != nil {
		return result.Result[T]{}, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var reply rpc.Reply
	if err := conn.Invoke(ctx, rpc.FullMethod(cmd), p, &reply, rpc.CallOption()); err != nil {
		return result.Result[T]{}, c.mapError(err, gen)
	}

	r, err := rpc.DecodeResult[T](&reply)
	if err != nil {
		return result.Result[T]{}, fmt.Errorf("rpc error: %w", err)
	}
	return r, nil
}

func (c *Client) Register(ctx context.Context, p rpc.RegisterPayload) (result.Result[rpc.UserView], error) {
	return call[rpc.RegisterPayload, rpc.UserView](ctx, c, rpc.CommandRegister, p)
}

func (c *Client) GetUsers(ctx context.Context) (result.Result[[]rpc.UserView], error) {
	return call[rpc.GetUsersPayload, []rpc.UserView](ctx, c, rpc.CommandGetUsers, rpc.GetUsersPayload{})
}

func (c *Client) Login(ctx context.Context, p rpc.LoginPayload) (result.Result[rpc.UserView], error) {
	return call[rpc.LoginPayload, rpc.UserView](ctx, c, rpc.CommandLogin, p)
}

func (c *Client) ChangePassword(ctx context.Context, p rpc.ChangePasswordPayload) (result.Result[result.Unit], error) {
	return call[rpc.ChangePasswordPayload, result.Unit](ctx, c, rpc.CommandChangePassword, p)
}

func (c *Client) GetProfile(ctx context.Context, p rpc.GetProfilePayload) (result.Result[rpc.UserView], error) {
	return call[rpc.GetProfilePayload, rpc.UserView](ctx, c, rpc.CommandGetProfile, p)
}

// Check asks the auth service's health endpoint whether the command
// service is serving.
func (c *Client) Check(ctx context.Context) error {
	conn, gen, err := c.connection()
	if err != nil {
		return err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: rpc.ServiceName})
	if err != nil {
		return c.mapError(err, gen)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}
	return nil
}

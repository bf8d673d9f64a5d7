package grpc

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/authgateway/internal/result"
	"github.com/dmitrijs2005/authgateway/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// MsgMalformedPayload is returned when a command payload does not decode.
const MsgMalformedPayload = "Malformed request payload"

// AuthenticationServer is the set of commands served on rpc.ServiceName.
type AuthenticationServer interface {
	Register(context.Context, rpc.RegisterPayload) result.Result[rpc.UserView]
	ListUsers(context.Context, rpc.GetUsersPayload) result.Result[[]rpc.UserView]
	Login(context.Context, rpc.LoginPayload) result.Result[rpc.UserView]
	ChangePassword(context.Context, rpc.ChangePasswordPayload) result.Result[result.Unit]
	GetProfile(context.Context, rpc.GetProfilePayload) result.Result[rpc.UserView]
}

var authenticationServiceDesc = grpc.ServiceDesc{
	ServiceName: rpc.ServiceName,
	HandlerType: (*AuthenticationServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: string(rpc.CommandRegister),
			Handler: unary(rpc.CommandRegister, func(s AuthenticationServer) func(context.Context, rpc.RegisterPayload) result.Result[rpc.UserView] {
				return s.Register
			}),
		},
		{
			MethodName: string(rpc.CommandGetUsers),
			Handler: unary(rpc.CommandGetUsers, func(s AuthenticationServer) func(context.Context, rpc.GetUsersPayload) result.Result[[]rpc.UserView] {
				return s.ListUsers
			}),
		},
		{
			MethodName: string(rpc.CommandLogin),
			Handler: unary(rpc.CommandLogin, func(s AuthenticationServer) func(context.Context, rpc.LoginPayload) result.Result[rpc.UserView] {
				return s.Login
			}),
		},
		{
			MethodName: string(rpc.CommandChangePassword),
			Handler: unary(rpc.CommandChangePassword, func(s AuthenticationServer) func(context.Context, rpc.ChangePasswordPayload) result.Result[result.Unit] {
				return s.ChangePassword
			}),
		},
		{
			MethodName: string(rpc.CommandGetProfile),
			Handler: unary(rpc.CommandGetProfile, func(s AuthenticationServer) func(context.Context, rpc.GetProfilePayload) result.Result[rpc.UserView] {
				return s.GetProfile
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "authgateway/v1/authentication",
}

// RegisterAuthenticationServer registers srv on s under rpc.ServiceName.
func RegisterAuthenticationServer(s grpc.ServiceRegistrar, srv AuthenticationServer) {
	s.RegisterService(&authenticationServiceDesc, srv)
}

// unary adapts a typed command to a grpc.MethodHandler. The request body
// travels as raw JSON so that a payload which does not fit P becomes a
// Validation reply instead of a transport error.
func unary[P, T any](cmd rpc.Command, method func(AuthenticationServer) func(context.Context, P) result.Result[T]) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		var raw json.RawMessage
		if err := dec(&raw); err != nil {
			raw = nil
		}

		handler := func(ctx context.Context, req any) (any, error) {
			return dispatch(ctx, method(srv.(AuthenticationServer)), req.(json.RawMessage))
		}
		if interceptor == nil {
			return handler(ctx, raw)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: rpc.FullMethod(cmd)}
		return interceptor(ctx, raw, info, handler)
	}
}

func dispatch[P, T any](ctx context.Context, fn func(context.Context, P) result.Result[T], raw json.RawMessage) (*rpc.Reply, error) {
	var p P
	if len(raw) == 0 || json.Unmarshal(raw, &p) != nil {
		return encode(result.Fail[T](result.Validation(MsgMalformedPayload)))
	}
	return encode(fn(ctx, p))
}

func encode[T any](r result.Result[T]) (*rpc.Reply, error) {
	reply, err := rpc.EncodeResult(r)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return reply, nil
}

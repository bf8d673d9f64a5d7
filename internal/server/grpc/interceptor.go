package grpc

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/dmitrijs2005/authgateway/internal/common"
	"github.com/dmitrijs2005/authgateway/internal/result"
	"github.com/dmitrijs2005/authgateway/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// MsgInternal is the only text a caller sees when a handler panics.
const MsgInternal = "Internal server error"

func requestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(common.RequestIDHeaderName); len(values) > 0 {
		return values[0]
	}
	return ""
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	args := []any{"method", info.FullMethod, "request_id", requestID(ctx), "duration", time.Since(start)}

	switch reply, _ := resp.(*rpc.Reply); {
	case err != nil:
		s.logger.Error(ctx, "command failed", append(args, "error", err)...)
	case reply != nil && reply.Error != nil:
		args = append(args, "status", reply.Error.StatusCode, "kind", reply.Error.Kind)
		if reply.Error.StatusCode >= 500 {
			s.logger.Error(ctx, "command completed", args...)
		} else {
			s.logger.Info(ctx, "command completed", args...)
		}
	default:
		s.logger.Info(ctx, "command completed", append(args, "status", "ok")...)
	}

	return resp, err
}

// recoveryInterceptor turns a handler panic into an Internal reply. The
// panic value and stack are logged, never sent.
func (s *GRPCServer) recoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ctx, "panic in command handler", "method", info.FullMethod, "panic", r, "stack", string(debug.Stack()))
			resp, err = encode(result.Fail[result.Unit](result.Internal(MsgInternal)))
		}
	}()

	return handler(ctx, req)
}

package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const bearerPrefix = "Bearer "

type usernameKey struct{}

// UsernameFromContext returns the session user set by AuthInterceptor.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey{}).(string)
	return username, ok && username != ""
}

// WithUsername attaches a session user to ctx.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey{}, username)
}

// AuthInterceptor returns a gRPC unary server interceptor that authorizes calls
// by the "authorization" metadata value:
//   - Register and Authenticate are public
//   - administrative methods require the static admin token
//   - every other method requires "Bearer <session token>"; the session user is
//     attached to the context
func AuthInterceptor(adminToken string, sessions *Sessions) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if publicMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		authHeaders := md.Get("authorization")
		if len(authHeaders) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization header")
		}

		if adminMethods[info.FullMethod] {
			if authHeaders[0] != adminToken {
				return nil, status.Error(codes.Unauthenticated, "invalid token")
			}
			return handler(ctx, req)
		}

		if !strings.HasPrefix(authHeaders[0], bearerPrefix) {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		claims, err := sessions.Verify(strings.TrimPrefix(authHeaders[0], bearerPrefix))
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		return handler(WithUsername(ctx, claims.Username), req)
	}
}

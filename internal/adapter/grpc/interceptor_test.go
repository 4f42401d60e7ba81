package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestAuthInterceptor(t *testing.T) {
	adminToken := "test-token-123"
	sessions := NewSessions("session-secret", time.Hour)
	interceptor := AuthInterceptor(adminToken, sessions)

	session, _, err := sessions.Issue("alice")
	require.NoError(t, err)
	expired, _, err := NewSessions("session-secret", -time.Minute).Issue("alice")
	require.NoError(t, err)
	forged, _, err := NewSessions("other-secret", time.Hour).Issue("alice")
	require.NoError(t, err)

	withAuth := func(value string) context.Context {
		return metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", value))
	}

	tests := []struct {
		name           string
		method         string
		ctx            context.Context
		handlerCalled  bool
		expectedUser   string
		expectedCode   codes.Code
		expectedErrMsg string
	}{
		{
			name:          "Public method without metadata",
			method:        FullMethod(MethodRegister),
			ctx:           context.Background(),
			handlerCalled: true,
			expectedCode:  codes.OK,
		},
		{
			name:          "Admin method with admin token",
			method:        FullMethod(MethodUnfreeze),
			ctx:           withAuth(adminToken),
			handlerCalled: true,
			expectedCode:  codes.OK,
		},
		{
			name:           "Admin method with session token",
			method:         FullMethod(MethodListAccounts),
			ctx:            withAuth(bearerPrefix + session),
			expectedCode:   codes.Unauthenticated,
			expectedErrMsg: "invalid token",
		},
		{
			name:          "Session method with valid session",
			method:        FullMethod(MethodDeposit),
			ctx:           withAuth(bearerPrefix + session),
			handlerCalled: true,
			expectedUser:  "alice",
			expectedCode:  codes.OK,
		},
		{
			name:           "Session method with admin token",
			method:         FullMethod(MethodDeposit),
			ctx:            withAuth(adminToken),
			expectedCode:   codes.Unauthenticated,
			expectedErrMsg: "invalid token",
		},
		{
			name:           "Expired session",
			method:         FullMethod(MethodGetBalance),
			ctx:            withAuth(bearerPrefix + expired),
			expectedCode:   codes.Unauthenticated,
			expectedErrMsg: "invalid token",
		},
		{
			name:           "Session signed with another secret",
			method:         FullMethod(MethodGetBalance),
			ctx:            withAuth(bearerPrefix + forged),
			expectedCode:   codes.Unauthenticated,
			expectedErrMsg: "invalid token",
		},
		{
			name:           "Missing Token",
			method:         FullMethod(MethodGetBalance),
			ctx:            context.Background(),
			expectedCode:   codes.Unauthenticated,
			expectedErrMsg: "missing metadata",
		},
		{
			name:   "Missing Authorization Header",
			method: FullMethod(MethodGetBalance),
			ctx: metadata.NewIncomingContext(
				context.Background(),
				metadata.Pairs("other-header", "value"),
			),
			expectedCode:   codes.Unauthenticated,
			expectedErrMsg: "missing authorization header",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			var gotUser string
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				handlerCalled = true
				gotUser, _ = UsernameFromContext(ctx)
				return "success", nil
			}

			info := &grpc.UnaryServerInfo{FullMethod: tt.method}

			resp, err := interceptor(tt.ctx, "test-request", info, handler)

			assert.Equal(t, tt.handlerCalled, handlerCalled, "handler called status mismatch")

			if tt.expectedCode == codes.OK {
				assert.NoError(t, err)
				assert.Equal(t, "success", resp)
				assert.Equal(t, tt.expectedUser, gotUser)
			} else {
				assert.Error(t, err)
				st, ok := status.FromError(err)
				assert.True(t, ok, "error should be a gRPC status")
				assert.Equal(t, tt.expectedCode, st.Code())
				assert.Contains(t, st.Message(), tt.expectedErrMsg)
			}
		})
	}
}

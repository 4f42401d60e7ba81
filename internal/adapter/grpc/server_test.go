package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/greenday-ledger/internal/adapter/iban"
	"github.com/simaogato/greenday-ledger/internal/adapter/repository/memory"
	"github.com/simaogato/greenday-ledger/internal/domain"
	"github.com/simaogato/greenday-ledger/internal/usecase/fraud"
	"github.com/simaogato/greenday-ledger/internal/usecase/ledger"
)

const testAdminToken = "admin-secret"

func TestMapError(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{fmt.Errorf("deposit: %w", domain.ErrInvalidAmount), codes.InvalidArgument},
		{domain.ErrInvalidInput, codes.InvalidArgument},
		{domain.ErrUnknownFund, codes.InvalidArgument},
		{domain.ErrSameUser, codes.InvalidArgument},
		{domain.ErrRecipientMismatch, codes.InvalidArgument},
		{domain.ErrInsufficientFunds, codes.FailedPrecondition},
		{fmt.Errorf("lookup: %w", domain.ErrUserNotFound), codes.NotFound},
		{domain.ErrUserExists, codes.AlreadyExists},
		{domain.ErrInvalidCredentials, codes.Unauthenticated},
		{domain.ErrAccountFrozen, codes.PermissionDenied},
		{status.Error(codes.Unavailable, "down"), codes.Unavailable},
		{errors.New("disk on fire"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.code, status.Code(mapError(tt.err)))
		})
	}
	assert.NoError(t, mapError(nil))
}

func newTestClient(t *testing.T) *Client {
	t.Helper()

	svc := ledger.NewService(ledger.Dependencies{
		UserRepo:    memory.NewUserRepository(),
		Identifiers: iban.NewGenerator(7),
		Monitor:     fraud.DefaultMonitor(),
	})
	sessions := NewSessions("session-secret", time.Hour)

	lis := bufconn.Listen(1024 * 1024)
	server := grpc.NewServer(grpc.UnaryInterceptor(AuthInterceptor(testAdminToken, sessions)))
	RegisterLedgerServiceServer(server, NewServer(svc, sessions))
	go func() {
		_ = server.Serve(lis)
	}()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewClient(conn)
}

func withAuthorization(value string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", value)
}

func signUp(t *testing.T, client *Client, username string) context.Context {
	t.Helper()
	_, err := client.Call(context.Background(), MethodRegister, map[string]interface{}{
		"first_name": username,
		"last_name":  "Tester",
		"username":   username,
		"password":   "pw",
	})
	require.NoError(t, err)

	out, err := client.Call(context.Background(), MethodAuthenticate, map[string]interface{}{
		"username": username,
		"password": "pw",
	})
	require.NoError(t, err)
	token := out.GetFields()["token"].GetStringValue()
	require.NotEmpty(t, token)
	return withAuthorization(bearerPrefix + token)
}

func field(s *structpb.Struct, path ...string) *structpb.Value {
	v := structpb.NewStructValue(s)
	for _, name := range path {
		v = v.GetStructValue().GetFields()[name]
	}
	return v
}

func TestServer_DepositAndBalance(t *testing.T) {
	client := newTestClient(t)
	alice := signUp(t, client, "alice")

	out, err := client.Call(alice, MethodDeposit, map[string]interface{}{"amount": "2500.50"})
	require.NoError(t, err)
	assert.Equal(t, "DEPOSIT", field(out, "transaction", "type").GetStringValue())
	assert.Equal(t, "2500.50", field(out, "transaction", "balance_after").GetStringValue())

	out, err = client.Call(alice, MethodGetBalance, nil)
	require.NoError(t, err)
	assert.Equal(t, "7499.50", field(out, "balance", "cash").GetStringValue())
	assert.Equal(t, "2500.50", field(out, "balance", "savings").GetStringValue())

	out, err = client.Call(alice, MethodGetHistory, nil)
	require.NoError(t, err)
	history := out.GetFields()["transactions"].GetListValue().GetValues()
	require.Len(t, history, 1)
	assert.Equal(t, "Cash Deposit", history[0].GetStructValue().GetFields()["description"].GetStringValue())
}

func TestServer_Errors(t *testing.T) {
	client := newTestClient(t)
	alice := signUp(t, client, "alice")

	_, err := client.Call(alice, MethodDeposit, map[string]interface{}{"amount": "abc"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Call(alice, MethodWithdraw, map[string]interface{}{"amount": 1})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = client.Call(alice, MethodInvest, map[string]interface{}{"fund": "GOLD", "amount": "1"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Call(context.Background(), MethodRegister, map[string]interface{}{
		"first_name": "Alice", "username": "ALICE", "password": "pw",
	})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = client.Call(context.Background(), MethodAuthenticate, map[string]interface{}{
		"username": "alice", "password": "nope",
	})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = client.Call(context.Background(), MethodGetBalance, nil)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = client.Call(alice, MethodAdvanceTime, map[string]interface{}{"days": 1.5})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_SendMoneyFreezeAndUnfreeze(t *testing.T) {
	client := newTestClient(t)
	alice := signUp(t, client, "alice")
	_ = signUp(t, client, "bob")
	admin := withAuthorization(testAdminToken)

	// 10000 grows past 70000 in 200 days of savings interest
	_, err := client.Call(alice, MethodDeposit, map[string]interface{}{"amount": "10000"})
	require.NoError(t, err)
	_, err = client.Call(alice, MethodAdvanceTime, map[string]interface{}{"days": 200})
	require.NoError(t, err)
	for i := 0; i < 7; i++ {
		_, err = client.Call(alice, MethodWithdraw, map[string]interface{}{"amount": "10000"})
		require.NoError(t, err)
	}

	send := func(amount string) (*structpb.Struct, error) {
		return client.Call(alice, MethodSendMoney, map[string]interface{}{
			"recipient_username": "bob",
			"amount":             amount,
			"message":            "rent",
		})
	}

	out, err := send("100")
	require.NoError(t, err)
	assert.Equal(t, "69900.00", out.GetFields()["cash_after"].GetStringValue())
	assert.False(t, out.GetFields()["fraud_warning"].GetBoolValue())

	out, err = client.Call(alice, MethodPreviousRecipients, nil)
	require.NoError(t, err)
	recipients := out.GetFields()["recipients"].GetListValue().GetValues()
	require.Len(t, recipients, 1)
	assert.Equal(t, "bob", recipients[0].GetStructValue().GetFields()["username"].GetStringValue())

	for i := 0; i < 3; i++ {
		out, err = send("10000.01")
		require.NoError(t, err)
		assert.True(t, out.GetFields()["fraud_warning"].GetBoolValue())
	}
	_, err = send("10000.01")
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = client.Call(alice, MethodDeposit, map[string]interface{}{"amount": "1"})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	out, err = client.Call(admin, MethodListAccounts, nil)
	require.NoError(t, err)
	assert.Len(t, out.GetFields()["accounts"].GetListValue().GetValues(), 2)

	_, err = client.Call(admin, MethodUnfreeze, map[string]interface{}{"username": "alice"})
	require.NoError(t, err)

	out, err = client.Call(alice, MethodGetBalance, nil)
	require.NoError(t, err)
	assert.Equal(t, "39899.97", field(out, "balance", "cash").GetStringValue())
	assert.False(t, field(out, "balance", "fraud_warning").GetBoolValue())

	_, err = client.Call(alice, MethodUnfreeze, map[string]interface{}{"username": "alice"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestServer_AdvanceTimeAndNow(t *testing.T) {
	client := newTestClient(t)
	alice := signUp(t, client, "alice")

	before, err := client.Call(alice, MethodNow, nil)
	require.NoError(t, err)
	start, err := time.Parse(time.RFC3339, before.GetFields()["now"].GetStringValue())
	require.NoError(t, err)

	_, err = client.Call(alice, MethodDeposit, map[string]interface{}{"amount": "1000"})
	require.NoError(t, err)

	out, err := client.Call(alice, MethodAdvanceTime, map[string]interface{}{"days": 2})
	require.NoError(t, err)
	now, err := time.Parse(time.RFC3339, out.GetFields()["now"].GetStringValue())
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, now.Sub(start))

	out, err = client.Call(alice, MethodGetBalance, nil)
	require.NoError(t, err)
	assert.Equal(t, "1020.10", field(out, "balance", "savings").GetStringValue())
}

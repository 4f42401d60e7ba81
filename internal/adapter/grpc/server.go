package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/greenday-ledger/internal/domain"
	"github.com/simaogato/greenday-ledger/internal/usecase/ledger"
	"github.com/simaogato/greenday-ledger/internal/usecase/transfer"
)

// Server implements LedgerServiceServer on top of the ledger service
type Server struct {
	Ledger   *ledger.Service
	Sessions *Sessions
}

// NewServer creates a new gRPC server instance
func NewServer(ledgerService *ledger.Service, sessions *Sessions) *Server {
	return &Server{
		Ledger:   ledgerService,
		Sessions: sessions,
	}
}

var _ LedgerServiceServer = (*Server)(nil)

// Register handles the Register RPC
func (s *Server) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	profile, err := s.Ledger.Register(ctx, ledger.RegisterInput{
		FirstName:  stringField(req, "first_name"),
		LastName:   stringField(req, "last_name"),
		Username:   stringField(req, "username"),
		Credential: stringField(req, "password"),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return response(map[string]interface{}{"profile": profileValue(profile)})
}

// Authenticate handles the Authenticate RPC and issues a session token
func (s *Server) Authenticate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	result, err := s.Ledger.Authenticate(ctx, stringField(req, "username"), stringField(req, "password"))
	if err != nil {
		return nil, mapError(err)
	}
	token, expires, err := s.Sessions.Issue(result.Profile.Username)
	if err != nil {
		return nil, mapError(err)
	}
	return response(map[string]interface{}{
		"token":          token,
		"expires_at":     formatTime(expires),
		"days_caught_up": float64(result.DaysCaughtUp),
		"profile":        profileValue(result.Profile),
	})
}

// Deposit handles the Deposit RPC
func (s *Server) Deposit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	amount, err := amountField(req)
	if err != nil {
		return nil, err
	}
	tx, err := s.Ledger.Deposit(ctx, sessionUser(ctx), amount)
	if err != nil {
		return nil, mapError(err)
	}
	return response(map[string]interface{}{"transaction": transactionValue(*tx)})
}

// Withdraw handles the Withdraw RPC
func (s *Server) Withdraw(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	amount, err := amountField(req)
	if err != nil {
		return nil, err
	}
	tx, err := s.Ledger.Withdraw(ctx, sessionUser(ctx), amount)
	if err != nil {
		return nil, mapError(err)
	}
	return response(map[string]interface{}{"transaction": transactionValue(*tx)})
}

// Invest handles the Invest RPC
func (s *Server) Invest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fund, err := domain.ParseFund(stringField(req, "fund"))
	if err != nil {
		return nil, mapError(err)
	}
	amount, err := amountField(req)
	if err != nil {
		return nil, err
	}
	tx, err := s.Ledger.Invest(ctx, sessionUser(ctx), fund, amount)
	if err != nil {
		return nil, mapError(err)
	}
	return response(map[string]interface{}{"transaction": transactionValue(*tx)})
}

// WithdrawAllInvestments handles the WithdrawAllInvestments RPC
func (s *Server) WithdrawAllInvestments(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	total, err := s.Ledger.WithdrawAllInvestments(ctx, sessionUser(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	return response(map[string]interface{}{"withdrawn": money(total)})
}

// SendMoney handles the SendMoney RPC
func (s *Server) SendMoney(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	amount, err := amountField(req)
	if err != nil {
		return nil, err
	}
	receipt, err := s.Ledger.SendMoney(ctx, sessionUser(ctx), transfer.SendInput{
		RecipientUsername:   stringField(req, "recipient_username"),
		RecipientIdentifier: stringField(req, "recipient_identifier"),
		RecipientName:       stringField(req, "recipient_name"),
		Amount:              amount,
		Message:             stringField(req, "message"),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return response(map[string]interface{}{
		"transaction_id":     receipt.TransactionID.String(),
		"recipient_username": receipt.RecipientUsername,
		"recipient_name":     receipt.RecipientName,
		"amount":             money(receipt.Amount),
		"cash_after":         money(receipt.CashAfter),
		"fraud_warning":      receipt.FraudWarning,
	})
}

// TransferBetweenAccounts handles the TransferBetweenAccounts RPC
func (s *Server) TransferBetweenAccounts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	amount, err := amountField(req)
	if err != nil {
		return nil, err
	}
	from := domain.AccountKind(stringField(req, "from"))
	tx, err := s.Ledger.TransferBetweenAccounts(ctx, sessionUser(ctx), from, amount)
	if err != nil {
		return nil, mapError(err)
	}
	return response(map[string]interface{}{"transaction": transactionValue(*tx)})
}

// GetBalance handles the GetBalance RPC
func (s *Server) GetBalance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	view, err := s.Ledger.Balance(ctx, sessionUser(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	return response(map[string]interface{}{"balance": balanceValue(view)})
}

// GetHistory handles the GetHistory RPC
func (s *Server) GetHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	history, err := s.Ledger.History(ctx, sessionUser(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	transactions := make([]interface{}, 0, len(history))
	for _, tx := range history {
		transactions = append(transactions, transactionValue(tx))
	}
	return response(map[string]interface{}{"transactions": transactions})
}

// PreviousRecipients handles the PreviousRecipients RPC
func (s *Server) PreviousRecipients(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	recipients, err := s.Ledger.PreviousRecipients(ctx, sessionUser(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]interface{}, 0, len(recipients))
	for _, r := range recipients {
		out = append(out, map[string]interface{}{
			"username":   r.Username,
			"name":       r.Name,
			"identifier": r.Identifier,
		})
	}
	return response(map[string]interface{}{"recipients": out})
}

// AdvanceTime handles the AdvanceTime RPC
func (s *Server) AdvanceTime(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	days, err := intField(req, "days")
	if err != nil {
		return nil, err
	}
	now, err := s.Ledger.AdvanceTime(ctx, days)
	if err != nil {
		return nil, mapError(err)
	}
	return response(map[string]interface{}{"now": formatTime(now)})
}

// Now handles the Now RPC
func (s *Server) Now(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return response(map[string]interface{}{"now": formatTime(s.Ledger.Now())})
}

// DismissFraudWarning handles the DismissFraudWarning RPC
func (s *Server) DismissFraudWarning(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.Ledger.DismissFraudWarning(ctx, sessionUser(ctx)); err != nil {
		return nil, mapError(err)
	}
	return response(map[string]interface{}{})
}

// Unfreeze handles the administrative Unfreeze RPC
func (s *Server) Unfreeze(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	username := stringField(req, "username")
	if username == "" {
		return nil, status.Errorf(codes.InvalidArgument, "username is required")
	}
	if err := s.Ledger.Unfreeze(ctx, username); err != nil {
		return nil, mapError(err)
	}
	return response(map[string]interface{}{})
}

// ListAccounts handles the administrative ListAccounts RPC
func (s *Server) ListAccounts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	accounts := s.Ledger.Accounts(ctx)
	out := make([]interface{}, 0, len(accounts))
	for i := range accounts {
		a := accounts[i]
		out = append(out, map[string]interface{}{
			"profile":      profileValue(&a.Profile),
			"balance":      balanceValue(&a.Balance),
			"frozen":       a.Frozen,
			"transactions": float64(a.Transactions),
		})
	}
	return response(map[string]interface{}{"accounts": out})
}

// sessionUser is set by AuthInterceptor for every session method
func sessionUser(ctx context.Context) string {
	username, _ := UsernameFromContext(ctx)
	return username
}

func response(fields map[string]interface{}) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

func stringField(req *structpb.Struct, name string) string {
	if req == nil {
		return ""
	}
	return req.GetFields()[name].GetStringValue()
}

// amountField accepts the amount as a decimal string or a JSON number
func amountField(req *structpb.Struct) (decimal.Decimal, error) {
	v, ok := req.GetFields()["amount"]
	if !ok {
		return decimal.Decimal{}, status.Errorf(codes.InvalidArgument, "amount is required")
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		amount, err := decimal.NewFromString(kind.StringValue)
		if err != nil {
			return decimal.Decimal{}, status.Errorf(codes.InvalidArgument, "invalid amount format: %v", err)
		}
		return amount, nil
	case *structpb.Value_NumberValue:
		return decimal.NewFromFloat(kind.NumberValue), nil
	default:
		return decimal.Decimal{}, status.Errorf(codes.InvalidArgument, "invalid amount format")
	}
}

func intField(req *structpb.Struct, name string) (int, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber || n.NumberValue != float64(int(n.NumberValue)) {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a whole number", name)
	}
	return int(n.NumberValue), nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func profileValue(p *ledger.Profile) map[string]interface{} {
	out := map[string]interface{}{
		"username":      p.Username,
		"first_name":    p.FirstName,
		"last_name":     p.LastName,
		"name":          p.Name,
		"identifier":    p.Identifier,
		"fraud_warning": p.FraudWarning,
	}
	if p.LastLogin != nil {
		out["last_login"] = formatTime(*p.LastLogin)
	}
	return out
}

func balanceValue(b *ledger.BalanceView) map[string]interface{} {
	funds := make([]interface{}, 0, len(b.Funds))
	for _, h := range b.Funds {
		funds = append(funds, map[string]interface{}{
			"fund":    string(h.Fund),
			"balance": money(h.Balance),
		})
	}
	return map[string]interface{}{
		"identifier":       b.Identifier,
		"cash":             money(b.Cash),
		"savings":          money(b.Savings),
		"uninvested":       money(b.Uninvested),
		"investment_total": money(b.InvestmentTotal()),
		"funds":            funds,
		"fraud_warning":    b.FraudWarning,
	}
}

func transactionValue(tx domain.Transaction) map[string]interface{} {
	return map[string]interface{}{
		"id":            tx.ID.String(),
		"timestamp":     formatTime(tx.Timestamp),
		"type":          string(tx.Type),
		"amount":        money(tx.Amount),
		"description":   tx.Description,
		"balance_after": money(tx.BalanceAfter),
	}
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrUnknownFund),
		errors.Is(err, domain.ErrSameUser),
		errors.Is(err, domain.ErrRecipientMismatch):
		return status.Errorf(codes.InvalidArgument, "%s", err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		return status.Errorf(codes.FailedPrecondition, "%s", err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		return status.Errorf(codes.NotFound, "%s", err.Error())
	case errors.Is(err, domain.ErrUserExists):
		return status.Errorf(codes.AlreadyExists, "%s", err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		return status.Errorf(codes.Unauthenticated, "%s", err.Error())
	case errors.Is(err, domain.ErrAccountFrozen):
		return status.Errorf(codes.PermissionDenied, "%s", err.Error())
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", err.Error())
}

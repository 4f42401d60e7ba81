package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "greenday.ledger.v1.LedgerService"

// Method names.
const (
	MethodRegister                = "Register"
	MethodAuthenticate            = "Authenticate"
	MethodDeposit                 = "Deposit"
	MethodWithdraw                = "Withdraw"
	MethodInvest                  = "Invest"
	MethodWithdrawAllInvestments  = "WithdrawAllInvestments"
	MethodSendMoney               = "SendMoney"
	MethodTransferBetweenAccounts = "TransferBetweenAccounts"
	MethodGetBalance              = "GetBalance"
	MethodGetHistory              = "GetHistory"
	MethodPreviousRecipients      = "PreviousRecipients"
	MethodAdvanceTime             = "AdvanceTime"
	MethodNow                     = "Now"
	MethodDismissFraudWarning     = "DismissFraudWarning"
	MethodUnfreeze                = "Unfreeze"
	MethodListAccounts            = "ListAccounts"
)

// FullMethod returns the wire path of a method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

var (
	publicMethods = map[string]bool{
		FullMethod(MethodRegister):     true,
		FullMethod(MethodAuthenticate): true,
	}
	adminMethods = map[string]bool{
		FullMethod(MethodUnfreeze):     true,
		FullMethod(MethodListAccounts): true,
	}
)

// LedgerServiceServer is the server API. Requests and responses are JSON-shaped
// structpb.Struct messages.
type LedgerServiceServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Authenticate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Deposit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Withdraw(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Invest(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WithdrawAllInvestments(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SendMoney(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TransferBetweenAccounts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBalance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PreviousRecipients(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AdvanceTime(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Now(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DismissFraudWarning(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Unfreeze(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAccounts(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(LedgerServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LedgerServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(method),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(LedgerServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes LedgerService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler(MethodRegister, LedgerServiceServer.Register),
		unaryHandler(MethodAuthenticate, LedgerServiceServer.Authenticate),
		unaryHandler(MethodDeposit, LedgerServiceServer.Deposit),
		unaryHandler(MethodWithdraw, LedgerServiceServer.Withdraw),
		unaryHandler(MethodInvest, LedgerServiceServer.Invest),
		unaryHandler(MethodWithdrawAllInvestments, LedgerServiceServer.WithdrawAllInvestments),
		unaryHandler(MethodSendMoney, LedgerServiceServer.SendMoney),
		unaryHandler(MethodTransferBetweenAccounts, LedgerServiceServer.TransferBetweenAccounts),
		unaryHandler(MethodGetBalance, LedgerServiceServer.GetBalance),
		unaryHandler(MethodGetHistory, LedgerServiceServer.GetHistory),
		unaryHandler(MethodPreviousRecipients, LedgerServiceServer.PreviousRecipients),
		unaryHandler(MethodAdvanceTime, LedgerServiceServer.AdvanceTime),
		unaryHandler(MethodNow, LedgerServiceServer.Now),
		unaryHandler(MethodDismissFraudWarning, LedgerServiceServer.DismissFraudWarning),
		unaryHandler(MethodUnfreeze, LedgerServiceServer.Unfreeze),
		unaryHandler(MethodListAccounts, LedgerServiceServer.ListAccounts),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "greenday/ledger/v1/ledger.proto",
}

// RegisterLedgerServiceServer registers srv on s.
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls LedgerService over any connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a new Client instance
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with a JSON-shaped request.
func (c *Client) Call(ctx context.Context, method string, req map[string]interface{}, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

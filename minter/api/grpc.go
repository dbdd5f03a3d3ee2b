package api

import (
	"context"

	"google.golang.org/grpc"

	cmnGrpc "github.com/cryptogopniks/GopStake/common/grpc"
	staking "github.com/cryptogopniks/GopStake/staking/api"
)

var (
	// serviceName is the gRPC service name.
	serviceName = cmnGrpc.NewServiceName("Minter")

	// methodSubmitTx is the SubmitTx method.
	methodSubmitTx = serviceName.NewMethod("SubmitTx", staking.Transaction{})
	// methodConfig is the Config method.
	methodConfig = serviceName.NewMethod("Config", nil)
	// methodDenomsByCreator is the DenomsByCreator method.
	methodDenomsByCreator = serviceName.NewMethod("DenomsByCreator", staking.Address(""))
	// methodStateToGenesis is the StateToGenesis method.
	methodStateToGenesis = serviceName.NewMethod("StateToGenesis", nil)

	// serviceDesc is the gRPC service descriptor.
	serviceDesc = grpc.ServiceDesc{
		ServiceName: string(serviceName),
		HandlerType: (*Backend)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: methodSubmitTx.ShortName(),
				Handler:    handlerSubmitTx,
			},
			{
				MethodName: methodConfig.ShortName(),
				Handler:    handlerConfig,
			},
			{
				MethodName: methodDenomsByCreator.ShortName(),
				Handler:    handlerDenomsByCreator,
			},
			{
				MethodName: methodStateToGenesis.ShortName(),
				Handler:    handlerStateToGenesis,
			},
		},
		Streams: []grpc.StreamDesc{},
	}
)

func handlerSubmitTx( // nolint: golint
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	var tx staking.Transaction
	if err := dec(&tx); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Backend).SubmitTx(ctx, &tx)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: methodSubmitTx.FullName(),
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(Backend).SubmitTx(ctx, req.(*staking.Transaction))
	}
	return interceptor(ctx, &tx, info, handler)
}

func handlerConfig( // nolint: golint
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	if interceptor == nil {
		return srv.(Backend).Config(ctx)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: methodConfig.FullName(),
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(Backend).Config(ctx)
	}
	return interceptor(ctx, nil, info, handler)
}

func handlerDenomsByCreator( // nolint: golint
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	var owner staking.Address
	if err := dec(&owner); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Backend).DenomsByCreator(ctx, owner)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: methodDenomsByCreator.FullName(),
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(Backend).DenomsByCreator(ctx, *req.(*staking.Address))
	}
	return interceptor(ctx, &owner, info, handler)
}

func handlerStateToGenesis( // nolint: golint
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	if interceptor == nil {
		return srv.(Backend).StateToGenesis(ctx)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: methodStateToGenesis.FullName(),
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(Backend).StateToGenesis(ctx)
	}
	return interceptor(ctx, nil, info, handler)
}

// RegisterService registers a new minter backend service with the given
// gRPC server.
func RegisterService(server *grpc.Server, service Backend) {
	server.RegisterService(&serviceDesc, service)
}

type minterClient struct {
	conn *grpc.ClientConn
}

func (c *minterClient) SubmitTx(ctx context.Context, tx *staking.Transaction) (*Result, error) {
	var rsp Result
	if err := c.conn.Invoke(ctx, methodSubmitTx.FullName(), tx, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

func (c *minterClient) Config(ctx context.Context) (*Config, error) {
	var rsp Config
	if err := c.conn.Invoke(ctx, methodConfig.FullName(), nil, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

func (c *minterClient) DenomsByCreator(ctx context.Context, owner staking.Address) ([]string, error) {
	var rsp []string
	if err := c.conn.Invoke(ctx, methodDenomsByCreator.FullName(), owner, &rsp); err != nil {
		return nil, err
	}
	return rsp, nil
}

func (c *minterClient) StateToGenesis(ctx context.Context) (*Genesis, error) {
	var rsp Genesis
	if err := c.conn.Invoke(ctx, methodStateToGenesis.FullName(), nil, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// NewMinterClient creates a new gRPC minter client service.
func NewMinterClient(c *grpc.ClientConn) Backend {
	return &minterClient{c}
}

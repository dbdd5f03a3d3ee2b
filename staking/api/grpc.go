package api

import (
	"context"

	"google.golang.org/grpc"

	cmnGrpc "github.com/cryptogopniks/GopStake/common/grpc"
	"github.com/cryptogopniks/GopStake/common/pubsub"
)

var (
	// serviceName is the gRPC service name.
	serviceName = cmnGrpc.NewServiceName("Staking")

	// methodSubmitTx is the SubmitTx method.
	methodSubmitTx = serviceName.NewMethod("SubmitTx", Transaction{})
	// methodConfig is the Config method.
	methodConfig = serviceName.NewMethod("Config", nil)
	// methodFunds is the Funds method.
	methodFunds = serviceName.NewMethod("Funds", nil)
	// methodStakers is the Stakers method.
	methodStakers = serviceName.NewMethod("Stakers", AddressesQuery{})
	// methodStakingRewards is the StakingRewards method.
	methodStakingRewards = serviceName.NewMethod("StakingRewards", RewardsQuery{})
	// methodAssociatedBalances is the AssociatedBalances method.
	methodAssociatedBalances = serviceName.NewMethod("AssociatedBalances", Address(""))
	// methodProposals is the Proposals method.
	methodProposals = serviceName.NewMethod("Proposals", ProposalsQuery{})
	// methodCollections is the Collections method.
	methodCollections = serviceName.NewMethod("Collections", AddressesQuery{})
	// methodCollectionsBalances is the CollectionsBalances method.
	methodCollectionsBalances = serviceName.NewMethod("CollectionsBalances", AddressesQuery{})
	// methodStateToGenesis is the StateToGenesis method.
	methodStateToGenesis = serviceName.NewMethod("StateToGenesis", nil)

	// methodWatchEvents is the WatchEvents method.
	methodWatchEvents = serviceName.NewMethod("WatchEvents", nil)

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
				MethodName: methodFunds.ShortName(),
				Handler:    handlerFunds,
			},
			{
				MethodName: methodStakers.ShortName(),
				Handler:    handlerStakers,
			},
			{
				MethodName: methodStakingRewards.ShortName(),
				Handler:    handlerStakingRewards,
			},
			{
				MethodName: methodAssociatedBalances.ShortName(),
				Handler:    handlerAssociatedBalances,
			},
			{
				MethodName: methodProposals.ShortName(),
				Handler:    handlerProposals,
			},
			{
				MethodName: methodCollections.ShortName(),
				Handler:    handlerCollections,
			},
			{
				MethodName: methodCollectionsBalances.ShortName(),
				Handler:    handlerCollectionsBalances,
			},
			{
				MethodName: methodStateToGenesis.ShortName(),
				Handler:    handlerStateToGenesis,
			},
		},
		Streams: []grpc.StreamDesc{
			{
				StreamName:    methodWatchEvents.ShortName(),
				Handler:       handlerWatchEvents,
				ServerStreams: true,
			},
		},
	}
)

func handlerSubmitTx( // nolint: golint
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	var query Transaction
	if err := dec(&query); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Backend).SubmitTx(ctx, &query)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: methodSubmitTx.FullName(),
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(Backend).SubmitTx(ctx, req.(*Transaction))
	}
	return interceptor(ctx, &query, info, handler)
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

func handlerFunds( // nolint: golint
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	if interceptor == nil {
		return srv.(Backend).Funds(ctx)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: methodFunds.FullName(),
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(Backend).Funds(ctx)
	}
	return interceptor(ctx, nil, info, handler)
}

func handlerStakers( // nolint: golint
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	var query AddressesQuery
	if err := dec(&query); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Backend).Stakers(ctx, &query)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: methodStakers.FullName(),
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(Backend).Stakers(ctx, req.(*AddressesQuery))
	}
	return interceptor(ctx, &query, info, handler)
}

func handlerStakingRewards( // nolint: golint
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	var query RewardsQuery
	if err := dec(&query); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Backend).StakingRewards(ctx, &query)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: methodStakingRewards.FullName(),
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(Backend).StakingRewards(ctx, req.(*RewardsQuery))
	}
	return interceptor(ctx, &query, info, handler)
}

func handlerAssociatedBalances( // nolint: golint
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	var query Address
	if err := dec(&query); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Backend).AssociatedBalances(ctx, query)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: methodAssociatedBalances.FullName(),
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(Backend).AssociatedBalances(ctx, *req.(*Address))
	}
	return interceptor(ctx, &query, info, handler)
}

func handlerProposals( // nolint: golint
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	var query ProposalsQuery
	if err := dec(&query); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Backend).Proposals(ctx, &query)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: methodProposals.FullName(),
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(Backend).Proposals(ctx, req.(*ProposalsQuery))
	}
	return interceptor(ctx, &query, info, handler)
}

func handlerCollections( // nolint: golint
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	var query AddressesQuery
	if err := dec(&query); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Backend).Collections(ctx, &query)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: methodCollections.FullName(),
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(Backend).Collections(ctx, req.(*AddressesQuery))
	}
	return interceptor(ctx, &query, info, handler)
}

func handlerCollectionsBalances( // nolint: golint
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	var query AddressesQuery
	if err := dec(&query); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Backend).CollectionsBalances(ctx, &query)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: methodCollectionsBalances.FullName(),
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(Backend).CollectionsBalances(ctx, req.(*AddressesQuery))
	}
	return interceptor(ctx, &query, info, handler)
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

func handlerWatchEvents(srv interface{}, stream grpc.ServerStream) error {
	if err := stream.RecvMsg(nil); err != nil {
		return err
	}

	ctx := stream.Context()
	ch, sub, err := srv.(Backend).WatchEvents(ctx)
	if err != nil {
		return err
	}
	defer sub.Close()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return nil
			}

			if err := stream.SendMsg(ev); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RegisterService registers a new staking backend service with the given
// gRPC server.
func RegisterService(server *grpc.Server, service Backend) {
	server.RegisterService(&serviceDesc, service)
}

type stakingClient struct {
	conn *grpc.ClientConn
}

func (c *stakingClient) SubmitTx(ctx context.Context, tx *Transaction) (*Result, error) {
	var rsp Result
	if err := c.conn.Invoke(ctx, methodSubmitTx.FullName(), tx, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

func (c *stakingClient) Config(ctx context.Context) (*Config, error) {
	var rsp Config
	if err := c.conn.Invoke(ctx, methodConfig.FullName(), nil, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

func (c *stakingClient) Funds(ctx context.Context) ([]Funds, error) {
	var rsp []Funds
	if err := c.conn.Invoke(ctx, methodFunds.FullName(), nil, &rsp); err != nil {
		return nil, err
	}
	return rsp, nil
}

func (c *stakingClient) Stakers(ctx context.Context, query *AddressesQuery) ([]StakerInfo, error) {
	var rsp []StakerInfo
	if err := c.conn.Invoke(ctx, methodStakers.FullName(), query, &rsp); err != nil {
		return nil, err
	}
	return rsp, nil
}

func (c *stakingClient) StakingRewards(ctx context.Context, query *RewardsQuery) (*BalancesResponse, error) {
	var rsp BalancesResponse
	if err := c.conn.Invoke(ctx, methodStakingRewards.FullName(), query, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

func (c *stakingClient) AssociatedBalances(ctx context.Context, address Address) (*BalancesResponse, error) {
	var rsp BalancesResponse
	if err := c.conn.Invoke(ctx, methodAssociatedBalances.FullName(), address, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

func (c *stakingClient) Proposals(ctx context.Context, query *ProposalsQuery) ([]Proposal, error) {
	var rsp []Proposal
	if err := c.conn.Invoke(ctx, methodProposals.FullName(), query, &rsp); err != nil {
		return nil, err
	}
	return rsp, nil
}

func (c *stakingClient) Collections(ctx context.Context, query *AddressesQuery) ([]CollectionEntry, error) {
	var rsp []CollectionEntry
	if err := c.conn.Invoke(ctx, methodCollections.FullName(), query, &rsp); err != nil {
		return nil, err
	}
	return rsp, nil
}

func (c *stakingClient) CollectionsBalances(ctx context.Context, query *AddressesQuery) ([]CollectionBalance, error) {
	var rsp []CollectionBalance
	if err := c.conn.Invoke(ctx, methodCollectionsBalances.FullName(), query, &rsp); err != nil {
		return nil, err
	}
	return rsp, nil
}

func (c *stakingClient) StateToGenesis(ctx context.Context) (*Genesis, error) {
	var rsp Genesis
	if err := c.conn.Invoke(ctx, methodStateToGenesis.FullName(), nil, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

func (c *stakingClient) WatchEvents(ctx context.Context) (<-chan *Event, pubsub.ClosableSubscription, error) {
	ctx, sub := pubsub.NewContextSubscription(ctx)

	stream, err := c.conn.NewStream(ctx, &serviceDesc.Streams[0], methodWatchEvents.FullName())
	if err != nil {
		return nil, nil, err
	}
	if err = stream.SendMsg(nil); err != nil {
		return nil, nil, err
	}
	if err = stream.CloseSend(); err != nil {
		return nil, nil, err
	}

	ch := make(chan *Event)
	go func() {
		defer close(ch)

		for {
			var ev Event
			if serr := stream.RecvMsg(&ev); serr != nil {
				return
			}

			select {
			case ch <- &ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, sub, nil
}

// NewStakingClient creates a new gRPC staking client service.
func NewStakingClient(c *grpc.ClientConn) Backend {
	return &stakingClient{c}
}

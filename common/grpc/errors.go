package grpc

import (
	"context"

	"github.com/golang/protobuf/ptypes/any"
	spb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/cryptogopniks/GopStake/common/cbor"
	"github.com/cryptogopniks/GopStake/common/errors"
)

// grpcError is a serializable error.
type grpcError struct {
	Module string `json:"module,omitempty"`
	Code   uint32 `json:"code,omitempty"`
}

func errorToGrpc(err error) error {
	if err == nil {
		return nil
	}

	module, code := errors.Code(err)
	if module == errors.UnknownModule {
		return err
	}

	// The status details carry the module-coded error so that the client
	// side can rebuild an error that matches under errors.Is.
	return status.FromProto(&spb.Status{
		Code:    int32(status.Code(err)),
		Message: err.Error(),
		Details: []*any.Any{
			{
				Value: cbor.Marshal(&grpcError{Module: module, Code: code}),
			},
		},
	}).Err()
}

func errorFromGrpc(err error) error {
	if err == nil {
		return nil
	}

	s, ok := status.FromError(err)
	if !ok {
		return err
	}
	sp := s.Proto()
	if len(sp.Details) != 1 {
		return err
	}
	var ge grpcError
	if cerr := cbor.Unmarshal(sp.Details[0].Value, &ge); cerr != nil {
		return err
	}
	if mapped := errors.FromCode(ge.Module, ge.Code, s.Message()); mapped != nil {
		return mapped
	}
	return err
}

func serverUnaryErrorMapper(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	rsp, err := handler(ctx, req)
	return rsp, errorToGrpc(err)
}

func serverStreamErrorMapper(
	srv interface{},
	ss grpc.ServerStream,
	info *grpc.StreamServerInfo,
	handler grpc.StreamHandler,
) error {
	return errorToGrpc(handler(srv, ss))
}

func clientUnaryErrorMapper(
	ctx context.Context,
	method string,
	req, rsp interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return errorFromGrpc(invoker(ctx, method, req, rsp, cc, opts...))
}

func clientStreamErrorMapper(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	cs, err := streamer(ctx, desc, cc, method, opts...)
	return cs, errorFromGrpc(err)
}

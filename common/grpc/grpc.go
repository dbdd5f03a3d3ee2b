// Package grpc implements common gRPC related services and utilities.
package grpc

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"

	"github.com/cryptogopniks/GopStake/common/logging"
)

const (
	// CfgLogDebug enables verbose gRPC debug output.
	CfgLogDebug = "grpc.log.debug"

	maxRecvMsgSize = 16 * 1024 * 1024
	maxSendMsgSize = 16 * 1024 * 1024
)

var (
	// Flags has the flags used by the gRPC server.
	Flags = flag.NewFlagSet("", flag.ContinueOnError)

	grpcMetricsOnce sync.Once

	grpcServerCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gopstake_grpc_server_calls",
			Help: "Number of gRPC calls.",
		},
		[]string{"call"},
	)
	grpcServerLatency = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "gopstake_grpc_server_latency",
			Help: "gRPC call latency (seconds).",
		},
		[]string{"call"},
	)
	grpcClientCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gopstake_grpc_client_calls",
			Help: "Number of gRPC calls.",
		},
		[]string{"call"},
	)

	grpcCollectors = []prometheus.Collector{
		grpcServerCalls,
		grpcServerLatency,
		grpcClientCalls,
	}

	serverKeepAliveParams = keepalive.ServerParameters{
		MaxConnectionIdle: 600 * time.Second,
	}
)

type logAdapter struct {
	logger  *logging.Logger
	isDebug bool
	reqSeq  uint64
}

func newLogAdapter(logger *logging.Logger) *logAdapter {
	return &logAdapter{
		logger:  logger,
		isDebug: logging.GetLevel() == logging.LevelDebug && viper.GetBool(CfgLogDebug),
	}
}

func (l *logAdapter) unaryLogger(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	seq := atomic.AddUint64(&l.reqSeq, 1)
	if l.isDebug {
		l.logger.Debug("request",
			"method", info.FullMethod,
			"req_seq", seq,
			"req", req,
		)
	}

	grpcServerCalls.With(prometheus.Labels{"call": info.FullMethod}).Inc()

	start := time.Now()
	resp, err := handler(ctx, req)
	grpcServerLatency.With(prometheus.Labels{"call": info.FullMethod}).Observe(time.Since(start).Seconds())
	if err != nil {
		l.logger.Debug("request failed",
			"method", info.FullMethod,
			"req_seq", seq,
			"err", err,
		)
	}
	return resp, err
}

func (l *logAdapter) streamLogger(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	seq := atomic.AddUint64(&l.reqSeq, 1)
	grpcServerCalls.With(prometheus.Labels{"call": info.FullMethod}).Inc()

	err := handler(srv, ss)
	if err != nil && l.isDebug {
		l.logger.Debug("stream closed (failure)",
			"method", info.FullMethod,
			"stream_seq", seq,
			"err", err,
		)
	}
	return err
}

func (l *logAdapter) unaryClientLogger(
	ctx context.Context,
	method string,
	req, rsp interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	grpcClientCalls.With(prometheus.Labels{"call": method}).Inc()

	err := invoker(ctx, method, req, rsp, cc, opts...)
	if err != nil && l.isDebug {
		l.logger.Debug("request failed",
			"method", method,
			"err", err,
		)
	}
	return err
}

// Server is a gRPC server service.
type Server struct {
	sync.Mutex

	logger *logging.Logger

	network  string
	address  string
	listener net.Listener
	server   *grpc.Server
	errCh    chan error
}

// ServerConfig holds the configuration used for creating a server.
type ServerConfig struct {
	// Name of the server being constructed.
	Name string
	// Address is either "unix:<path>" for a local socket or a TCP
	// "host:port" address.
	Address string
	// CustomOptions is an array of extra options for the grpc server.
	CustomOptions []grpc.ServerOption
}

// Start starts the Server.
func (s *Server) Start() error {
	s.Lock()
	defer s.Unlock()

	if s.server == nil {
		return fmt.Errorf("gRPC server has already been stopped")
	}

	ln, err := net.Listen(s.network, s.address)
	if err != nil {
		s.logger.Error("error starting gRPC server",
			"err", err,
		)
		return err
	}
	s.listener = ln
	s.logger.Info("gRPC server started", "network", s.network, "address", s.address)

	server := s.server
	go func() {
		if err := server.Serve(ln); err != nil {
			s.errCh <- err
		}
	}()
	return nil
}

// Stop stops the Server.
func (s *Server) Stop() {
	s.Lock()
	defer s.Unlock()

	if s.server == nil {
		return
	}
	select {
	case err := <-s.errCh:
		if err != nil {
			s.logger.Error("gRPC server terminated uncleanly",
				"err", err,
			)
		}
	default:
	}
	s.server.GracefulStop()
	s.server = nil
}

// Cleanup removes the local socket, if any.
func (s *Server) Cleanup() {
	s.Lock()
	defer s.Unlock()

	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
	if s.network == "unix" {
		_ = os.Remove(s.address)
	}
}

// Server returns the underlying gRPC server instance.
func (s *Server) Server() *grpc.Server {
	return s.server
}

// NewServer constructs a new gRPC server service.
func NewServer(cfg *ServerConfig) (*Server, error) {
	network, address := splitAddress(cfg.Address)
	if address == "" {
		return nil, fmt.Errorf("grpc: empty listen address")
	}
	if network == "unix" {
		// Remove any stale socket first.
		_ = os.Remove(address)
	}

	grpcMetricsOnce.Do(func() {
		prometheus.MustRegister(grpcCollectors...)
	})

	logger := logging.GetLogger("grpc/" + cfg.Name)
	la := newLogAdapter(logger)

	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(la.unaryLogger, serverUnaryErrorMapper),
		grpc.ChainStreamInterceptor(la.streamLogger, serverStreamErrorMapper),
		grpc.MaxRecvMsgSize(maxRecvMsgSize),
		grpc.MaxSendMsgSize(maxSendMsgSize),
		grpc.KeepaliveParams(serverKeepAliveParams),
		grpc.ForceServerCodec(&CBORCodec{}),
	}
	opts = append(opts, cfg.CustomOptions...)

	return &Server{
		logger:  logger,
		network: network,
		address: address,
		server:  grpc.NewServer(opts...),
		errCh:   make(chan error, 1),
	}, nil
}

// Dial creates a client connection to the given target.
func Dial(target string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	grpcMetricsOnce.Do(func() {
		prometheus.MustRegister(grpcCollectors...)
	})

	la := newLogAdapter(logging.GetLogger("grpc/client"))
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(&CBORCodec{})),
		grpc.WithChainUnaryInterceptor(la.unaryClientLogger, clientUnaryErrorMapper),
		grpc.WithChainStreamInterceptor(clientStreamErrorMapper),
	}
	dialOpts = append(dialOpts, opts...)
	return grpc.Dial(target, dialOpts...)
}

func splitAddress(addr string) (string, string) {
	if strings.HasPrefix(addr, "unix:") {
		return "unix", strings.TrimPrefix(addr, "unix:")
	}
	return "tcp", addr
}

func init() {
	Flags.Bool(CfgLogDebug, false, "gRPC request/responses in debug logs (very verbose)")
	_ = Flags.MarkHidden(CfgLogDebug)

	_ = viper.BindPFlags(Flags)
}

// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package queryrpc

import (
	"context"
	"math"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"

	"github.com/ava-labs/avalanche-consensus/snow/engine/common"
	"github.com/ava-labs/avalanche-consensus/utils/logging"
)

const (
	serviceName = "avalanche.Query"
	queryMethod = "/" + serviceName + "/Query"

	// MinTime is the minimum amount of time a client should wait before sending
	// a keepalive ping. grpc-go default 5 mins
	defaultServerKeepAliveMinTime = 5 * time.Second
	// After a duration of this time if the server doesn't see any activity it
	// pings the client to see if the transport is still alive.
	defaultServerKeepAliveInterval = 2 * time.Hour
	// After having pinged for keepalive check, the server waits for a duration
	// of Timeout and if no activity is seen even after that the connection is
	// closed. grpc-go default 20s
	defaultServerKeepAliveTimeout = 20 * time.Second
)

var (
	_ QueryServer = (*Server)(nil)

	DefaultServerOptions = []grpc.ServerOption{
		grpc.MaxRecvMsgSize(math.MaxInt),
		grpc.MaxSendMsgSize(math.MaxInt),
		grpc.MaxConcurrentStreams(math.MaxUint32),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             defaultServerKeepAliveMinTime,
			PermitWithoutStream: true,
		}),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    defaultServerKeepAliveInterval,
			Timeout: defaultServerKeepAliveTimeout,
		}),
	}

	serviceDesc = grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*QueryServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "Query",
				Handler:    queryHandler,
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "avalanche/query",
	}
)

// QueryServer is the server API of the avalanche.Query service.
type QueryServer interface {
	Query(ctx context.Context, req *QueryRequest) (*QueryResponse, error)
}

// Server answers queries received over gRPC with a QueryHandler.
type Server struct {
	log     logging.Logger
	handler common.QueryHandler
}

func NewServer(log logging.Logger, handler common.QueryHandler) *Server {
	return &Server{
		log:     log,
		handler: handler,
	}
}

func (s *Server) Query(ctx context.Context, req *QueryRequest) (*QueryResponse, error) {
	preferences, err := s.handler.HandleQuery(ctx, req.NodeID, req.ItemIDs)
	if err != nil {
		s.log.Debug("failed to handle query",
			zap.Stringer("nodeID", req.NodeID),
			zap.Uint32("requestID", req.RequestID),
			zap.Error(err),
		)
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return &QueryResponse{Preferences: preferences}, nil
}

// NewGRPCServer returns a gRPC server that encodes messages with Codec and
// serves [server].
func NewGRPCServer(server QueryServer, opts ...grpc.ServerOption) *grpc.Server {
	serverOpts := make([]grpc.ServerOption, 0, len(DefaultServerOptions)+len(opts)+1)
	serverOpts = append(serverOpts, DefaultServerOptions...)
	serverOpts = append(serverOpts, grpc.ForceServerCodec(Codec{}))
	serverOpts = append(serverOpts, opts...)

	s := grpc.NewServer(serverOpts...)
	s.RegisterService(&serviceDesc, server)
	return s
}

// Serve will start a gRPC server and block until it errors or is shutdown.
func Serve(listener net.Listener, grpcServer *grpc.Server) {
	// There is nothing to do with the error returned by serve here. Later
	// requests will propagate their error if they occur.
	_ = grpcServer.Serve(listener)

	// Similarly, there is nothing to do with an error when the listener is
	// closed.
	_ = listener.Close()
}

func queryHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(QueryRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QueryServer).Query(ctx, req)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: queryMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(QueryServer).Query(ctx, req.(*QueryRequest))
	}
	return interceptor(ctx, req, info, handler)
}

package connectrpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/pkg/errors"

	"github.com/fpt/folio/internal/agent"
	"github.com/fpt/folio/pkg/bridge"
	pkgLogger "github.com/fpt/folio/pkg/logger"
)

// BridgeServer binds every channel in the catalogue to the agent.
type BridgeServer struct {
	agent  *agent.Agent
	logger *pkgLogger.Logger
}

// NewBridgeServer creates the connect handlers for a.
func NewBridgeServer(a *agent.Agent, logger *pkgLogger.Logger) *BridgeServer {
	return &BridgeServer{
		agent:  a,
		logger: logger.WithComponent("connect-server"),
	}
}

// Handler returns the service path prefix and the handler serving it.
func (s *BridgeServer) Handler() (string, http.Handler) {
	opts := []connect.HandlerOption{
		connect.WithCodec(bridge.Codec{}),
		connect.WithRecover(s.recoverPanic),
		connect.WithInterceptors(
			newRequestIDInterceptor(),
			newLoggingInterceptor(s.logger),
			newMetricsInterceptor(),
		),
	}

	mux := http.NewServeMux()
	mux.Handle(unary(bridge.ChannelOpenFolder, s.agent.OpenFolder, opts))
	mux.Handle(unary(bridge.ChannelReadFolder, s.agent.ReadFolder, opts))
	mux.Handle(unary(bridge.ChannelReadFile, s.agent.ReadFile, opts))
	mux.Handle(unary(bridge.ChannelWriteFile, s.agent.WriteFile, opts))
	mux.Handle(unary(bridge.ChannelCreateFile, s.agent.CreateFile, opts))
	mux.Handle(unary(bridge.ChannelCreateFolder, s.agent.CreateFolder, opts))
	mux.Handle(unary(bridge.ChannelRename, s.agent.Rename, opts))
	mux.Handle(unary(bridge.ChannelDelete, s.agent.Delete, opts))

	return "/" + bridge.ServiceName + "/", mux
}

// unary adapts one agent operation to a connect handler.
func unary[Req, Res any](
	channel bridge.Channel,
	op func(context.Context, Req) (Res, error),
	opts []connect.HandlerOption,
) (string, http.Handler) {
	procedure := channel.Procedure()
	return procedure, connect.NewUnaryHandler(
		procedure,
		func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[Res], error) {
			res, err := op(ctx, *req.Msg)
			if err != nil {
				return nil, bridge.ConnectError(err)
			}
			return connect.NewResponse(&res), nil
		},
		opts...,
	)
}

func (s *BridgeServer) recoverPanic(ctx context.Context, spec connect.Spec, _ http.Header, p any) error {
	s.logger.ErrorWithIntention(pkgLogger.IntentionError, "Handler panicked",
		"channel", bridge.ChannelFromProcedure(spec.Procedure), "request_id", RequestIDFromContext(ctx), "panic", p)
	return bridge.ConnectError(&bridge.Error{
		Kind: bridge.KindIO,
		Msg:  "internal error",
		Err:  errors.Errorf("panic: %v", p),
	})
}

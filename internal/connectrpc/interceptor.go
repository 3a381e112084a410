package connectrpc

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/fpt/folio/internal/metrics"
	"github.com/fpt/folio/pkg/bridge"
	pkgLogger "github.com/fpt/folio/pkg/logger"
)

type requestIDKey struct{}

// RequestIDFromContext returns the id assigned to the request, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// newRequestIDInterceptor tags every request with an id and echoes it in
// the response headers or the error metadata. A well-formed id sent by the
// client is kept.
func newRequestIDInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			id := req.Header().Get(bridge.RequestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			ctx = context.WithValue(ctx, requestIDKey{}, id)

			res, err := next(ctx, req)
			if err != nil {
				var ce *connect.Error
				if errors.As(err, &ce) {
					ce.Meta().Set(bridge.RequestIDHeader, id)
				}
				return nil, err
			}
			res.Header().Set(bridge.RequestIDHeader, id)
			return res, nil
		}
	}
}

func newLoggingInterceptor(logger *pkgLogger.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			channel := bridge.ChannelFromProcedure(req.Spec().Procedure)
			log := logger.WithRequest(RequestIDFromContext(ctx))
			log.DebugWithIntention(pkgLogger.IntentionRequest, "Request received",
				"channel", channel, "peer", req.Peer().Addr)

			start := time.Now()
			res, err := next(ctx, req)
			elapsed := time.Since(start)

			if err != nil {
				log.InfoWithIntention(pkgLogger.IntentionError, "Request failed",
					"channel", channel, "kind", bridge.KindOf(err), "duration", elapsed, "error", err)
				return nil, err
			}
			log.InfoWithIntention(pkgLogger.IntentionSuccess, "Request handled",
				"channel", channel, "duration", elapsed)
			return res, nil
		}
	}
}

func newMetricsInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			finish := metrics.StartRequest(string(bridge.ChannelFromProcedure(req.Spec().Procedure)))
			// A panicking handler is reported as an io failure.
			label := string(bridge.KindIO)
			defer func() { finish(label) }()

			res, err := next(ctx, req)
			label = outcome(err)
			return res, err
		}
	}
}

func outcome(err error) string {
	var ce *connect.Error
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &ce) && (ce.Code() == connect.CodeCanceled || ce.Code() == connect.CodeDeadlineExceeded):
		return ce.Code().String()
	default:
		return string(bridge.KindOf(err))
	}
}

package observability

import (
	"context"

	"github.com/google/uuid"

	"github.com/bijuliyatra/bijuli-client/pkg/log"
)

const LogFieldRequestID = "requestID"

type requestIDContextKey struct{}

type (
	// Observer tags outgoing backend calls with a request id carried in the context.
	Observer interface {
		RequestID(context.Context) (string, bool)
		WithRequestID(context.Context, string) context.Context
		// EnsureRequestID keeps the id already present in ctx or generates a new one.
		EnsureRequestID(context.Context) (context.Context, string)
	}

	ObserverOption func(*observer)
)

type observer struct {
	logger log.Logger
}

func New(opts ...ObserverOption) Observer {
	o := observer{}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithRequestIDLogging adds the request id to the log fields of the context.
func WithRequestIDLogging(logger log.Logger) ObserverOption {
	return func(o *observer) {
		o.logger = logger
	}
}

func (o observer) RequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDContextKey{}).(string)
	if !ok || requestID == "" {
		return "", false
	}

	return requestID, true
}

func (o observer) WithRequestID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, requestIDContextKey{}, id)
	if o.logger != nil {
		ctx = o.logger.WithContext(ctx, log.Fields{LogFieldRequestID: id})
	}

	return ctx
}

func (o observer) EnsureRequestID(ctx context.Context) (context.Context, string) {
	if id, ok := o.RequestID(ctx); ok {
		return ctx, id
	}

	id := uuid.NewString()
	return o.WithRequestID(ctx, id), id
}

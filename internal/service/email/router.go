package email

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/neomnia/content-mania-sub004/internal/model"
	"github.com/neomnia/content-mania-sub004/internal/provider"
	"github.com/neomnia/content-mania-sub004/pkg/metrics"
)

// Result is the structured outcome of a routed send. Failures are captured
// here, never raised past the router boundary, so callers can always build
// a structured response.
type Result struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Provider  string `json:"provider,omitempty"`
	Error     string `json:"error,omitempty"`

	err error
}

// Err returns the underlying delivery error, nil on success.
func (r Result) Err() error { return r.err }

func failure(providerName string, err error) Result {
	return Result{Provider: providerName, Error: err.Error(), err: err}
}

// Router selects a provider and attempts delivery, with an optional
// bounded fallback walk over the registry chain.
type Router struct {
	lazy   *LazyRegistry
	logger *zap.Logger
}

func NewRouter(lazy *LazyRegistry, logger *zap.Logger) *Router {
	return &Router{lazy: lazy, logger: logger}
}

// Send is the explicit-provider path.
func (r *Router) Send(ctx context.Context, msg *model.Message, providerName string) Result {
	reg, err := r.lazy.Get()
	if err != nil {
		return failure(providerName, fmt.Errorf("%w: %v", provider.ErrNotConfigured, err))
	}

	p, ok := reg.Get(providerName)
	if !ok {
		return failure(providerName, fmt.Errorf("%w: %s", provider.ErrNotConfigured, providerName))
	}

	return r.attempt(ctx, p, msg)
}

// SendWithFallback walks the registry chain in order: primary first, then
// each fallback tier in turn. At most len(chain) attempts are made; the
// default configuration is two tiers. Returns the first success, or the
// last failure when every tier failed. No per-provider retry, no backoff.
func (r *Router) SendWithFallback(ctx context.Context, msg *model.Message) Result {
	reg, err := r.lazy.Get()
	if err != nil {
		return failure("", fmt.Errorf("%w: %v", provider.ErrNotConfigured, err))
	}

	chain := reg.Chain()
	if len(chain) == 0 {
		return failure("", fmt.Errorf("%w: empty provider chain", provider.ErrNotConfigured))
	}

	var last Result
	for i, p := range chain {
		if i > 0 {
			metrics.EmailFallbackCount.Inc()
			r.logger.Warn("Falling back to secondary provider",
				zap.String("provider", p.Name()),
				zap.String("previous_error", last.Error),
			)
		}

		last = r.attempt(ctx, p, msg)
		if last.Success {
			return last
		}
	}

	return last
}

func (r *Router) attempt(ctx context.Context, p provider.Provider, msg *model.Message) Result {
	start := time.Now()
	messageID, err := p.Send(ctx, msg)
	elapsed := time.Since(start)

	if err != nil {
		metrics.RecordProviderSendLatency(p.Name(), "failed", elapsed)
		r.logger.Error("Provider send failed",
			zap.String("provider", p.Name()),
			zap.String("recipients", msg.RecipientSummary()),
			zap.Error(err),
		)
		return failure(p.Name(), err)
	}

	metrics.RecordProviderSendLatency(p.Name(), "sent", elapsed)
	r.logger.Info("Provider send succeeded",
		zap.String("provider", p.Name()),
		zap.String("message_id", messageID),
		zap.Duration("elapsed", elapsed),
	)
	return Result{Success: true, MessageID: messageID, Provider: p.Name()}
}

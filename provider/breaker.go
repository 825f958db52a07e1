package provider

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/chinmay1088/sats/chains/bitcoin"
	"github.com/chinmay1088/sats/satserr"
)

// BreakerConfig tunes when a breaker opens.
type BreakerConfig struct {
	// MinRequests is the number of requests seen before the breaker may trip.
	MinRequests uint32
	// FailureRatio is the failed/total ratio that trips the breaker.
	FailureRatio float64
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// DefaultBreakerConfig trips after more than 10 requests with at least 60%
// failures and probes again after 30s.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MinRequests:  10,
		FailureRatio: 0.6,
		OpenTimeout:  30 * time.Second,
	}
}

// Breaker decorates a Provider with a circuit breaker. While open every call
// fails immediately with a ProviderError, so a Chain moves straight on to
// its next provider.
type Breaker struct {
	inner Provider
	cb    *gobreaker.CircuitBreaker
}

// CircuitBreaker wraps p with the default breaker settings.
func CircuitBreaker(p Provider, name string) *Breaker {
	return NewBreaker(p, name, DefaultBreakerConfig())
}

// NewBreaker wraps p with a breaker configured by cfg.
func NewBreaker(p Provider, name string, cfg BreakerConfig) *Breaker {
	return &Breaker{
		inner: p,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    name,
			Timeout: cfg.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				ratio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= cfg.MinRequests && ratio >= cfg.FailureRatio
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.WithFields(log.Fields{
					"provider": name,
					"from":     from.String(),
					"to":       to.String(),
				}).Warn("circuit breaker state changed")
			},
		}),
	}
}

func (b *Breaker) String() string {
	return b.cb.Name()
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// GetUtxos calls the wrapped provider unless the breaker is open.
func (b *Breaker) GetUtxos(ctx context.Context, address string) ([]bitcoin.UTXO, error) {
	v, err := b.execute(func() (interface{}, error) {
		return b.inner.GetUtxos(ctx, address)
	})
	if err != nil {
		return nil, err
	}
	return v.([]bitcoin.UTXO), nil
}

// GetBalance calls the wrapped provider unless the breaker is open.
func (b *Breaker) GetBalance(ctx context.Context, address string) (bitcoin.Balance, error) {
	v, err := b.execute(func() (interface{}, error) {
		return b.inner.GetBalance(ctx, address)
	})
	if err != nil {
		return bitcoin.Balance{}, err
	}
	return v.(bitcoin.Balance), nil
}

// Broadcast calls the wrapped provider unless the breaker is open.
func (b *Breaker) Broadcast(ctx context.Context, rawHex string) (*BroadcastResult, error) {
	bc, ok := b.inner.(Broadcaster)
	if !ok {
		return nil, satserr.Newf(satserr.KindProvider, "%s: broadcast not supported", b.String())
	}
	v, err := b.execute(func() (interface{}, error) {
		return bc.Broadcast(ctx, rawHex)
	})
	if err != nil {
		return nil, err
	}
	return v.(*BroadcastResult), nil
}

func (b *Breaker) execute(fn func() (interface{}, error)) (interface{}, error) {
	v, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, satserr.Wrapf(satserr.KindProvider, err, "%s", b.String())
	}
	return v, err
}

package provider

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/chinmay1088/sats/chains/bitcoin"
	"github.com/chinmay1088/sats/satserr"
)

var (
	_ Provider    = (*Chain)(nil)
	_ Broadcaster = (*Chain)(nil)
)

// ChainConfig controls how a Chain moves through its providers.
type ChainConfig struct {
	// Timeout bounds every single provider attempt.
	Timeout time.Duration
	// Backoff[i] is waited before attempt i. Attempts past the end of the
	// list reuse the last entry; attempt 0 never waits.
	Backoff []time.Duration
}

// DefaultChainConfig returns a 4s timeout with 0, 250ms and 500ms backoff.
func DefaultChainConfig() ChainConfig {
	return ChainConfig{
		Timeout: 4 * time.Second,
		Backoff: []time.Duration{0, 250 * time.Millisecond, 500 * time.Millisecond},
	}
}

// Validate checks the timeout is positive and the backoff list usable.
func (c ChainConfig) Validate() error {
	if c.Timeout <= 0 {
		return satserr.New(satserr.KindProvider, "chain timeout must be > 0")
	}
	if len(c.Backoff) == 0 {
		return satserr.New(satserr.KindProvider, "chain backoff must have at least one entry")
	}
	for i, d := range c.Backoff {
		if d < 0 {
			return satserr.Newf(satserr.KindProvider, "chain backoff entry %d is negative", i)
		}
	}
	return nil
}

func (c ChainConfig) backoff(attempt int) time.Duration {
	if attempt >= len(c.Backoff) {
		return c.Backoff[len(c.Backoff)-1]
	}
	return c.Backoff[attempt]
}

// Chain tries its providers one after the other until one succeeds. Every
// call is independent: a Chain keeps no state between calls and can be used
// concurrently.
type Chain struct {
	cfg       ChainConfig
	providers []Provider
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewChain returns a chain over providers in priority order. An empty
// provider list is allowed; every call then fails with a ProviderError.
func NewChain(cfg ChainConfig, providers ...Provider) (*Chain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Backoff = append([]time.Duration(nil), cfg.Backoff...)
	return &Chain{
		cfg:       cfg,
		providers: append([]Provider(nil), providers...),
		sleep:     sleepContext,
	}, nil
}

func (c *Chain) String() string {
	return "chain"
}

// Len returns the number of providers.
func (c *Chain) Len() int {
	return len(c.providers)
}

// GetUtxos returns the utxos of address from the first provider that answers.
func (c *Chain) GetUtxos(ctx context.Context, address string) ([]bitcoin.UTXO, error) {
	return run(ctx, c, "get utxos", func(ctx context.Context, p Provider) ([]bitcoin.UTXO, error) {
		return p.GetUtxos(ctx, address)
	})
}

// GetBalance returns the balance of address from the first provider that
// answers.
func (c *Chain) GetBalance(ctx context.Context, address string) (bitcoin.Balance, error) {
	return run(ctx, c, "get balance", func(ctx context.Context, p Provider) (bitcoin.Balance, error) {
		return p.GetBalance(ctx, address)
	})
}

// Broadcast relays rawHex through the first provider that accepts it.
// Providers without broadcast support count as failed attempts.
func (c *Chain) Broadcast(ctx context.Context, rawHex string) (*BroadcastResult, error) {
	return run(ctx, c, "broadcast", func(ctx context.Context, p Provider) (*BroadcastResult, error) {
		b, ok := p.(Broadcaster)
		if !ok {
			return nil, satserr.Newf(satserr.KindProvider, "%s: broadcast not supported", name(p))
		}
		res, err := b.Broadcast(ctx, rawHex)
		if err == nil && res == nil {
			return nil, satserr.Newf(satserr.KindBroadcast, "%s: broadcast returned no result", name(p))
		}
		return res, err
	})
}

// outcome records one failed attempt.
type outcome struct {
	provider string
	err      error
}

func run[T any](ctx context.Context, c *Chain, op string, call func(context.Context, Provider) (T, error)) (T, error) {
	var zero T
	if len(c.providers) == 0 {
		return zero, satserr.New(satserr.KindProvider, "no providers available")
	}

	failures := make([]outcome, 0, len(c.providers))
	for i, p := range c.providers {
		if i > 0 {
			if err := c.sleep(ctx, c.cfg.backoff(i)); err != nil {
				return zero, satserr.Wrap(satserr.KindTimeout, err, op).WithAttempt(i)
			}
		}

		entry := log.WithFields(log.Fields{
			"op":       op,
			"attempt":  i,
			"provider": name(p),
		})

		v, err := withTimeout(ctx, c.cfg.Timeout, func(ctx context.Context) (T, error) {
			return call(ctx, p)
		})
		if err == nil {
			entry.Debug("provider succeeded")
			return v, nil
		}

		err = attemptError(op, i, err)
		failures = append(failures, outcome{provider: name(p), err: err})
		entry.WithError(err).Debug("provider failed")
	}

	last := failures[len(failures)-1]
	log.WithFields(log.Fields{
		"op":       op,
		"attempts": len(failures),
		"provider": last.provider,
	}).WithError(last.err).Warn("all providers failed")
	return zero, last.err
}

// attemptError tags err with the attempt index. Timeouts keep their kind;
// every other failure becomes a ProviderError wrapping the original.
func attemptError(op string, attempt int, err error) error {
	if satserr.KindOf(err) == satserr.KindTimeout {
		if e, ok := err.(*satserr.Error); ok {
			return e.WithAttempt(attempt)
		}
		return satserr.Wrap(satserr.KindTimeout, err, op).WithAttempt(attempt)
	}
	return satserr.Wrap(satserr.KindProvider, err, op).WithAttempt(attempt)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

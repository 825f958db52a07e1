package provider

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chinmay1088/sats/chains/bitcoin"
	"github.com/chinmay1088/sats/satserr"
)

// stub is a scripted provider. behave runs on every call and decides the
// outcome; a nil behave succeeds.
type stub struct {
	name    string
	utxos   []bitcoin.UTXO
	balance bitcoin.Balance
	behave  func(ctx context.Context) error
	calls   atomic.Int32
}

func (s *stub) String() string { return s.name }

func (s *stub) run(ctx context.Context) error {
	s.calls.Add(1)
	if s.behave == nil {
		return nil
	}
	return s.behave(ctx)
}

func (s *stub) GetUtxos(ctx context.Context, _ string) ([]bitcoin.UTXO, error) {
	if err := s.run(ctx); err != nil {
		return nil, err
	}
	return s.utxos, nil
}

func (s *stub) GetBalance(ctx context.Context, _ string) (bitcoin.Balance, error) {
	if err := s.run(ctx); err != nil {
		return bitcoin.Balance{}, err
	}
	return s.balance, nil
}

type broadcastStub struct {
	*stub
	txid string
}

func (b *broadcastStub) Broadcast(ctx context.Context, _ string) (*BroadcastResult, error) {
	if err := b.run(ctx); err != nil {
		return nil, err
	}
	return &BroadcastResult{TxID: b.txid}, nil
}

type silentBroadcaster struct {
	*stub
}

func (b *silentBroadcaster) Broadcast(ctx context.Context, _ string) (*BroadcastResult, error) {
	return nil, b.run(ctx)
}

func okStub(name string) *stub {
	return &stub{
		name:    name,
		utxos:   []bitcoin.UTXO{{TxID: name, Vout: 1, Value: 1_000}},
		balance: bitcoin.Balance{Funded: 5_000, Spent: 1_000},
	}
}

func failStub(name string, err error) *stub {
	return &stub{name: name, behave: func(context.Context) error { return err }}
}

// hangStub blocks until release is closed, ignoring its context.
func hangStub(name string, release <-chan struct{}) *stub {
	return &stub{name: name, behave: func(context.Context) error {
		<-release
		return errors.New("late result")
	}}
}

type sleepRecorder struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.sleeps = append(r.sleeps, d)
	r.mu.Unlock()
	return ctx.Err()
}

func newTestChain(t *testing.T, cfg ChainConfig, providers ...Provider) (*Chain, *sleepRecorder) {
	t.Helper()
	c, err := NewChain(cfg, providers...)
	require.NoError(t, err)
	rec := &sleepRecorder{}
	c.sleep = rec.sleep
	return c, rec
}

func testChainConfig() ChainConfig {
	return ChainConfig{
		Timeout: 50 * time.Millisecond,
		Backoff: []time.Duration{0, 10 * time.Millisecond, 20 * time.Millisecond},
	}
}

func TestChainFailover(t *testing.T) {
	failing := failStub("fail", errors.New("boom"))
	ok := okStub("ok")
	c, rec := newTestChain(t, testChainConfig(), failing, ok)

	utxos, err := c.GetUtxos(context.Background(), "addr")
	require.NoError(t, err)
	require.Len(t, utxos, 1)
	assert.Equal(t, "ok", utxos[0].TxID)

	balance, err := c.GetBalance(context.Background(), "addr")
	require.NoError(t, err)
	assert.Equal(t, int64(4_000), balance.Available())

	assert.Equal(t, int32(2), failing.calls.Load())
	assert.Equal(t, int32(2), ok.calls.Load())
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 10 * time.Millisecond}, rec.sleeps)
}

func TestChainFirstSuccessStops(t *testing.T) {
	first := okStub("first")
	second := okStub("second")
	c, rec := newTestChain(t, testChainConfig(), first, second)

	utxos, err := c.GetUtxos(context.Background(), "addr")
	require.NoError(t, err)
	assert.Equal(t, "first", utxos[0].TxID)
	assert.Zero(t, second.calls.Load())
	assert.Empty(t, rec.sleeps)
}

func TestChainTimeoutMovesOn(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	c, _ := newTestChain(t, testChainConfig(), hangStub("hang", release), okStub("ok"))

	start := time.Now()
	utxos, err := c.GetUtxos(context.Background(), "addr")
	require.NoError(t, err)
	assert.Equal(t, "ok", utxos[0].TxID)
	assert.Less(t, time.Since(start), time.Second)
}

func TestChainReturnsLastError(t *testing.T) {
	t.Run("timeout last", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)

		c, _ := newTestChain(t, testChainConfig(), failStub("fail", errors.New("boom")), hangStub("hang", release))
		_, err := c.GetUtxos(context.Background(), "addr")
		require.Error(t, err)

		var e *satserr.Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, satserr.KindTimeout, e.Kind)
		assert.Equal(t, 1, e.Attempt)
	})

	t.Run("provider error last", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)

		cause := errors.New("boom")
		c, _ := newTestChain(t, testChainConfig(), hangStub("hang", release), failStub("fail", cause))
		_, err := c.GetBalance(context.Background(), "addr")
		require.Error(t, err)

		var e *satserr.Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, satserr.KindProvider, e.Kind)
		assert.Equal(t, 1, e.Attempt)
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("typed provider error is wrapped", func(t *testing.T) {
		inner := satserr.New(satserr.KindBroadcast, "rejected")
		c, _ := newTestChain(t, testChainConfig(), failStub("fail", inner))
		_, err := c.GetUtxos(context.Background(), "addr")
		require.Error(t, err)

		assert.Equal(t, satserr.KindProvider, satserr.KindOf(err))
		assert.True(t, errors.Is(err, satserr.ErrBroadcast))
		assert.Equal(t, "attempt 0: get utxos: rejected", err.Error())
	})
}

func TestChainNoProviders(t *testing.T) {
	c, _ := newTestChain(t, testChainConfig())

	_, err := c.GetUtxos(context.Background(), "addr")
	require.Error(t, err)
	assert.Equal(t, satserr.KindProvider, satserr.KindOf(err))
	assert.Equal(t, "no providers available", err.Error())

	_, err = c.Broadcast(context.Background(), "00")
	require.Error(t, err)
	assert.Equal(t, satserr.KindProvider, satserr.KindOf(err))
}

func TestChainBroadcastUnsupported(t *testing.T) {
	readOnly := okStub("read-only")
	relay := &broadcastStub{stub: okStub("relay"), txid: "abcd"}

	c, rec := newTestChain(t, testChainConfig(), readOnly, relay)
	res, err := c.Broadcast(context.Background(), "0200")
	require.NoError(t, err)
	assert.Equal(t, "abcd", res.TxID)
	assert.Zero(t, readOnly.calls.Load())
	assert.Equal(t, []time.Duration{10 * time.Millisecond}, rec.sleeps)

	only, _ := newTestChain(t, testChainConfig(), readOnly)
	_, err = only.Broadcast(context.Background(), "0200")
	require.Error(t, err)
	assert.Equal(t, satserr.KindProvider, satserr.KindOf(err))
	assert.Contains(t, err.Error(), "broadcast not supported")
}

func TestChainBroadcastWithoutResult(t *testing.T) {
	silent := &silentBroadcaster{stub: okStub("silent")}
	relay := &broadcastStub{stub: okStub("relay"), txid: "abcd"}

	c, _ := newTestChain(t, testChainConfig(), silent, relay)
	res, err := c.Broadcast(context.Background(), "0200")
	require.NoError(t, err)
	assert.Equal(t, "abcd", res.TxID)
	assert.Equal(t, int32(1), silent.calls.Load())

	only, _ := newTestChain(t, testChainConfig(), silent)
	res, err = only.Broadcast(context.Background(), "0200")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, satserr.ErrBroadcast))
	assert.Contains(t, err.Error(), "silent: broadcast returned no result")
}

func TestChainBackoffClamps(t *testing.T) {
	boom := errors.New("boom")
	cfg := ChainConfig{
		Timeout: 50 * time.Millisecond,
		Backoff: []time.Duration{0, 5 * time.Millisecond},
	}
	c, rec := newTestChain(t, cfg,
		failStub("a", boom), failStub("b", boom), failStub("c", boom), failStub("d", boom))

	_, err := c.GetUtxos(context.Background(), "addr")
	require.Error(t, err)

	var e *satserr.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, 3, e.Attempt)
	assert.Equal(t, []time.Duration{5 * time.Millisecond, 5 * time.Millisecond, 5 * time.Millisecond}, rec.sleeps)
}

func TestChainCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	second := okStub("second")
	first := &stub{name: "first", behave: func(context.Context) error {
		cancel()
		return errors.New("boom")
	}}

	c, err := NewChain(testChainConfig(), first, second)
	require.NoError(t, err)

	_, err = c.GetUtxos(ctx, "addr")
	require.Error(t, err)
	assert.Equal(t, satserr.KindTimeout, satserr.KindOf(err))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, second.calls.Load())
}

func TestChainRealBackoffWaits(t *testing.T) {
	cfg := ChainConfig{
		Timeout: 50 * time.Millisecond,
		Backoff: []time.Duration{0, 30 * time.Millisecond},
	}
	c, err := NewChain(cfg, failStub("fail", errors.New("boom")), okStub("ok"))
	require.NoError(t, err)

	start := time.Now()
	_, err = c.GetUtxos(context.Background(), "addr")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestChainConcurrentCalls(t *testing.T) {
	c, _ := newTestChain(t, testChainConfig(), failStub("fail", errors.New("boom")), okStub("ok"))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.GetBalance(context.Background(), "addr")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestNewChainValidatesConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  ChainConfig
	}{
		{"zero timeout", ChainConfig{Backoff: []time.Duration{0}}},
		{"empty backoff", ChainConfig{Timeout: time.Second}},
		{"negative backoff", ChainConfig{Timeout: time.Second, Backoff: []time.Duration{0, -1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChain(tt.cfg, okStub("ok"))
			require.Error(t, err)
			assert.Equal(t, satserr.KindProvider, satserr.KindOf(err))
		})
	}

	require.NoError(t, DefaultChainConfig().Validate())
}

func TestWithTimeoutDropsLateResult(t *testing.T) {
	release := make(chan struct{})
	returned := make(chan struct{})

	_, err := withTimeout(context.Background(), 20*time.Millisecond, func(context.Context) (int, error) {
		<-release
		defer close(returned)
		return 42, nil
	})
	require.Error(t, err)
	assert.Equal(t, satserr.KindTimeout, satserr.KindOf(err))

	close(release)
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("abandoned call did not finish")
	}
}

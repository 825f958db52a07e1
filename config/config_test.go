package config_test

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chinmay1088/sats/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(config.New())
	require.NoError(t, err)

	assert.Equal(t, 4*time.Second, cfg.Timeout)
	assert.Equal(t, []time.Duration{0, 250 * time.Millisecond, 500 * time.Millisecond}, cfg.Backoff)
	assert.False(t, cfg.Testnet)
	assert.Equal(t, uint32(0), cfg.Account)
	assert.Equal(t, []string{"mempool", "blockstream"}, cfg.Providers)
	assert.Equal(t, 0, cfg.RateLimit)
	assert.Equal(t, log.InfoLevel, cfg.LogLevel)
	assert.True(t, cfg.Breaker)
	assert.Equal(t, "mainnet", cfg.Network())

	chainCfg := cfg.ChainConfig()
	assert.Equal(t, cfg.Timeout, chainCfg.Timeout)
	assert.Equal(t, cfg.Backoff, chainCfg.Backoff)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SATS_TIMEOUT_MS", "1500")
	t.Setenv("SATS_BACKOFF_MS", "0, 100")
	t.Setenv("SATS_TESTNET", "true")
	t.Setenv("SATS_ACCOUNT", "2")
	t.Setenv("SATS_PROVIDERS", "blockstream,https://esplora.example.com/api")
	t.Setenv("SATS_RATE_LIMIT", "5")
	t.Setenv("SATS_LOG_LEVEL", "debug")
	t.Setenv("SATS_BREAKER", "false")

	cfg, err := config.Load(config.New())
	require.NoError(t, err)

	assert.Equal(t, 1500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, []time.Duration{0, 100 * time.Millisecond}, cfg.Backoff)
	assert.True(t, cfg.Testnet)
	assert.Equal(t, uint32(2), cfg.Account)
	assert.Equal(t, []string{"blockstream", "https://esplora.example.com/api"}, cfg.Providers)
	assert.Equal(t, 5, cfg.RateLimit)
	assert.Equal(t, log.DebugLevel, cfg.LogLevel)
	assert.False(t, cfg.Breaker)
	assert.Equal(t, "testnet", cfg.Network())

	chain, err := cfg.NewChain()
	require.NoError(t, err)
	assert.Equal(t, 2, chain.Len())
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{config.TimeoutMsKey, "0"},
		{config.BackoffMsKey, "0,-5"},
		{config.BackoffMsKey, "0,soon"},
		{config.BackoffMsKey, ","},
		{config.AccountKey, "-1"},
		{config.AccountKey, "2147483648"},
		{config.ProvidersKey, "blockchair"},
		{config.RateLimitKey, "-1"},
		{config.LogLevelKey, "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			v := config.New()
			v.Set(tt.key, tt.value)
			_, err := config.Load(v)
			require.Error(t, err)
		})
	}
}

func TestNewChainWithBreaker(t *testing.T) {
	v := config.New()
	v.Set(config.ProvidersKey, "mempool blockstream mempool")

	cfg, err := config.Load(v)
	require.NoError(t, err)
	require.True(t, cfg.Breaker)

	chain, err := cfg.NewChain()
	require.NoError(t, err)
	assert.Equal(t, 3, chain.Len())
}

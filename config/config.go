package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/chinmay1088/sats/provider"
)

const (
	// EnvPrefix is prepended to every key when read from the environment,
	// ie. SATS_TIMEOUT_MS
	EnvPrefix = "SATS"

	// TimeoutMsKey is the per attempt provider timeout in milliseconds
	TimeoutMsKey = "TIMEOUT_MS"
	// BackoffMsKey is the comma separated list of waits before each provider
	// attempt, in milliseconds. Attempts past the end reuse the last value
	BackoffMsKey = "BACKOFF_MS"
	// TestnetKey selects testnet3 instead of mainnet
	TestnetKey = "TESTNET"
	// AccountKey is the BIP84 account used for derivation
	AccountKey = "ACCOUNT"
	// ProvidersKey is the comma separated, ordered list of explorers. Entries
	// are preset names (mempool, blockstream) or Esplora base URLs
	ProvidersKey = "PROVIDERS"
	// RateLimitKey caps requests per second to each explorer, 0 disables it
	RateLimitKey = "RATE_LIMIT"
	// LogLevelKey is a logrus level name. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// BreakerKey wraps every explorer in a circuit breaker
	BreakerKey = "BREAKER"
	// MnemonicKey holds the wallet mnemonic. Never set a default for it
	MnemonicKey = "MNEMONIC"
	// PassphraseKey is the optional BIP39 passphrase
	PassphraseKey = "PASSPHRASE"
)

const maxAccount = 1<<31 - 1

// Config is the validated configuration of the toolkit.
type Config struct {
	Timeout   time.Duration
	Backoff   []time.Duration
	Testnet   bool
	Account   uint32
	Providers []string
	RateLimit int
	LogLevel  log.Level
	Breaker   bool
}

// New returns a viper instance reading SATS_ prefixed environment
// variables, with every default set.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(TimeoutMsKey, 4000)
	v.SetDefault(BackoffMsKey, "0,250,500")
	v.SetDefault(TestnetKey, false)
	v.SetDefault(AccountKey, 0)
	v.SetDefault(ProvidersKey, "mempool,blockstream")
	v.SetDefault(RateLimitKey, 0)
	v.SetDefault(LogLevelKey, "info")
	v.SetDefault(BreakerKey, true)
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	timeoutMs := v.GetInt(TimeoutMsKey)
	if timeoutMs <= 0 {
		return nil, fmt.Errorf("%s must be greater than 0", TimeoutMsKey)
	}

	backoff, err := parseBackoff(v.GetStringSlice(BackoffMsKey))
	if err != nil {
		return nil, err
	}

	account := v.GetInt(AccountKey)
	if account < 0 || account > maxAccount {
		return nil, fmt.Errorf("%s must be between 0 and %d", AccountKey, maxAccount)
	}

	providers := splitList(v.GetStringSlice(ProvidersKey))
	if len(providers) == 0 {
		return nil, fmt.Errorf("%s must list at least one provider", ProvidersKey)
	}

	rateLimit := v.GetInt(RateLimitKey)
	if rateLimit < 0 {
		return nil, fmt.Errorf("%s must be equal or greater than 0", RateLimitKey)
	}

	level, err := log.ParseLevel(v.GetString(LogLevelKey))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", LogLevelKey, err)
	}

	cfg := &Config{
		Timeout:   time.Duration(timeoutMs) * time.Millisecond,
		Backoff:   backoff,
		Testnet:   v.GetBool(TestnetKey),
		Account:   uint32(account),
		Providers: providers,
		RateLimit: rateLimit,
		LogLevel:  level,
		Breaker:   v.GetBool(BreakerKey),
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("error while validating config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if err := c.ChainConfig().Validate(); err != nil {
		return err
	}
	for _, name := range c.Providers {
		if _, err := provider.ByName(name, c.Testnet); err != nil {
			return err
		}
	}
	return nil
}

// ChainConfig returns the provider chain settings.
func (c *Config) ChainConfig() provider.ChainConfig {
	return provider.ChainConfig{
		Timeout: c.Timeout,
		Backoff: append([]time.Duration(nil), c.Backoff...),
	}
}

// NewChain builds the configured explorers, in order, behind a provider
// chain.
func (c *Config) NewChain() (*provider.Chain, error) {
	providers := make([]provider.Provider, 0, len(c.Providers))
	for _, name := range c.Providers {
		e, err := provider.ByName(name, c.Testnet,
			provider.WithTimeout(c.Timeout),
			provider.WithRateLimit(c.RateLimit),
		)
		if err != nil {
			return nil, err
		}
		if c.Breaker {
			providers = append(providers, provider.CircuitBreaker(e, e.String()))
			continue
		}
		providers = append(providers, e)
	}
	return provider.NewChain(c.ChainConfig(), providers...)
}

// Network returns the name of the selected network.
func (c *Config) Network() string {
	if c.Testnet {
		return "testnet"
	}
	return "mainnet"
}

func parseBackoff(items []string) ([]time.Duration, error) {
	values := splitList(items)
	if len(values) == 0 {
		return nil, fmt.Errorf("%s must have at least one value", BackoffMsKey)
	}
	backoff := make([]time.Duration, 0, len(values))
	for _, s := range values {
		ms, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", BackoffMsKey, s, err)
		}
		if ms < 0 {
			return nil, fmt.Errorf("%s values must be equal or greater than 0", BackoffMsKey)
		}
		backoff = append(backoff, time.Duration(ms)*time.Millisecond)
	}
	return backoff, nil
}

// splitList flattens comma or space separated entries, as they come from
// env variables, config files or flags.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, f := range strings.FieldsFunc(item, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		}) {
			out = append(out, f)
		}
	}
	return out
}

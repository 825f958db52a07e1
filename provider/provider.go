// Package provider fetches chain data from remote block explorers.
//
// Files:
//
//	provider.go  - Provider and Broadcaster interfaces
//	timeout.go   - per call timeout race
//	esplora.go   - Esplora HTTP adapter
//	presets.go   - well known public explorers
//	chain.go     - sequential failover over several providers
//	breaker.go   - circuit breaker decorator
//	balances.go  - concurrent balance scan
//
// Usage:
//
//	chain, err := provider.NewChain(provider.DefaultChainConfig(),
//		provider.Mempool(false), provider.Blockstream(false))
//	utxos, err := chain.GetUtxos(ctx, address)
package provider

import (
	"context"

	"github.com/chinmay1088/sats/chains/bitcoin"
)

// Provider is a read only source of address data.
type Provider interface {
	GetUtxos(ctx context.Context, address string) ([]bitcoin.UTXO, error)
	GetBalance(ctx context.Context, address string) (bitcoin.Balance, error)
}

// Broadcaster is implemented by providers that can relay transactions.
type Broadcaster interface {
	Broadcast(ctx context.Context, rawHex string) (*BroadcastResult, error)
}

// BroadcastResult is the outcome of a successful broadcast.
type BroadcastResult struct {
	TxID string `json:"txid"`
}

// name returns a printable identifier for p.
func name(p Provider) string {
	if s, ok := p.(interface{ String() string }); ok {
		return s.String()
	}
	return "provider"
}

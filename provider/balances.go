package provider

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/chinmay1088/sats/chains/bitcoin"
)

// AddressBalance pairs an address with its balance.
type AddressBalance struct {
	Address string          `json:"address"`
	Balance bitcoin.Balance `json:"balance"`
}

// FetchBalances queries the balances of addresses with at most limit
// requests in flight. Results keep the order of addresses. The first
// failure cancels the remaining requests and is returned. onDone, when not
// nil, is called from the worker goroutines after each successful lookup.
func FetchBalances(
	ctx context.Context, p Provider, addresses []string, limit int, onDone func(AddressBalance),
) ([]AddressBalance, error) {
	results := make([]AddressBalance, len(addresses))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, addr := range addresses {
		i, addr := i, addr
		g.Go(func() error {
			balance, err := p.GetBalance(ctx, addr)
			if err != nil {
				return err
			}
			results[i] = AddressBalance{Address: addr, Balance: balance}
			if onDone != nil {
				onDone(results[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

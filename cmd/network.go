package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chinmay1088/sats/chains/bitcoin"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Show network and provider settings",
	Long: `Show the active network and how explorers are queried.

The network is chosen with --testnet or SATS_TESTNET=true. Mainnet and testnet
use different derivation paths (coin type 0 and 1), so their addresses are
all separate.

Examples:
  sats network             # Mainnet settings
  sats --testnet network   # Testnet settings`,
	Args: cobra.NoArgs,
	RunE: runNetwork,
}

func runNetwork(cmd *cobra.Command, args []string) error {
	params := bitcoin.Network(cfg.Testnet)

	printNetwork()
	fmt.Println()
	fmt.Println("Network details:")
	fmt.Printf("   - Chain: %s\n", params.Name)
	fmt.Printf("   - Derivation: m/84'/%d'/%d'\n", bitcoin.CoinType(params), cfg.Account)
	fmt.Printf("   - Address prefix: %s1\n", params.Bech32HRPSegwit)
	fmt.Println()
	fmt.Println("Providers:")
	chain, err := newChain()
	if err != nil {
		return err
	}
	for i, name := range cfg.Providers {
		fmt.Printf("   %d. %s\n", i+1, name)
	}
	fmt.Printf("   Timeout per attempt: %s\n", cfg.Timeout)
	fmt.Printf("   Backoff: %s\n", formatBackoff(cfg.Backoff))
	fmt.Printf("   Circuit breaker: %t\n", cfg.Breaker)
	if cfg.RateLimit > 0 {
		fmt.Printf("   Rate limit: %d req/s per explorer\n", cfg.RateLimit)
	}
	fmt.Println()
	fmt.Printf("💡 %d providers ready on %s\n", chain.Len(), networkLabel())

	return nil
}

func formatBackoff(backoff []time.Duration) string {
	parts := make([]string, len(backoff))
	for i, d := range backoff {
		parts[i] = d.String()
	}
	return strings.Join(parts, ", ")
}

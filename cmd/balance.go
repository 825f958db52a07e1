package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/chinmay1088/sats/chains/bitcoin"
	"github.com/chinmay1088/sats/provider"
	"github.com/chinmay1088/sats/wallet"
)

// balanceConcurrency caps parallel balance lookups.
const balanceConcurrency = 4

var balanceCmd = &cobra.Command{
	Use:   "balance [address...]",
	Short: "Check address balances",
	Long: `Check the balances of Bitcoin addresses.

Without arguments the first --count receive addresses of your wallet are
scanned. Each lookup goes through the configured explorers with timeout,
backoff and failover.

Examples:
  sats balance                   # First receive address of the wallet
  sats balance --count 20        # Receive addresses 0 to 19
  sats balance bc1q... bc1q...   # Any addresses`,
	RunE: runBalance,
}

func runBalance(cmd *cobra.Command, args []string) error {
	addresses := args
	if len(addresses) == 0 {
		count, _ := cmd.Flags().GetUint32("count")
		derived, err := walletAddresses(count)
		if err != nil {
			return err
		}
		addresses = derived
	}
	for _, addr := range addresses {
		if err := bitcoin.ValidateAddress(addr, bitcoin.Network(cfg.Testnet)); err != nil {
			return err
		}
	}

	chain, err := newChain()
	if err != nil {
		return err
	}

	fmt.Println("💰 Wallet Balances")
	printNetwork()
	fmt.Println()

	bar := progressbar.NewOptions(len(addresses),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetDescription("[cyan]Fetching balances...[reset]"),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:     "[green]=[reset]",
			SaucerHead: "[green]>[reset]",
			BarStart:   "[",
			BarEnd:     "]",
		}),
	)

	results, err := provider.FetchBalances(cmd.Context(), chain, addresses, balanceConcurrency,
		func(provider.AddressBalance) {
			_ = bar.Add(1)
		})
	_ = bar.Finish()
	if err != nil {
		return fmt.Errorf("failed to fetch balances: %w", err)
	}

	var total int64
	for _, r := range results {
		available := r.Balance.Available()
		total += available
		amount := bitcoin.FormatBTC(available)
		if available > 0 {
			amount = color.GreenString(amount)
		}
		fmt.Printf("🟠 %s  %s\n", r.Address, amount)
	}
	if len(results) > 1 {
		fmt.Println()
		fmt.Printf("Total: %s\n", color.New(color.Bold).Sprint(bitcoin.FormatBTC(total)))
	}
	return nil
}

// walletAddresses returns the first count receive addresses of the wallet.
func walletAddresses(count uint32) ([]string, error) {
	if count == 0 {
		return nil, fmt.Errorf("--count must be at least 1")
	}
	w, err := unlockWallet(0)
	if err != nil {
		return nil, err
	}
	addresses := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		addr, err := w.AddressAt(i, wallet.External)
		if err != nil {
			return nil, fmt.Errorf("failed to derive address: %w", err)
		}
		addresses = append(addresses, addr.Address)
	}
	return addresses, nil
}

func init() {
	balanceCmd.Flags().Uint32("count", 1, "number of wallet receive addresses to scan")
}

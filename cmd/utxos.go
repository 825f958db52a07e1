package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chinmay1088/sats/chains/bitcoin"
)

var utxosCmd = &cobra.Command{
	Use:   "utxos [address]",
	Short: "List unspent outputs",
	Long: `List the unspent outputs of an address.

Without an argument the receive address at --index of your wallet is used.

Examples:
  sats utxos                # Receive address 0 of the wallet
  sats utxos --index 3      # Receive address 3 of the wallet
  sats utxos bc1q...        # Any address`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUtxos,
}

func runUtxos(cmd *cobra.Command, args []string) error {
	var address string
	if len(args) == 1 {
		address = args[0]
	} else {
		index, _ := cmd.Flags().GetUint32("index")
		w, err := unlockWallet(index)
		if err != nil {
			return err
		}
		addr, err := w.NextReceiveAddress()
		if err != nil {
			return fmt.Errorf("failed to derive address: %w", err)
		}
		address = addr.Address
	}
	if err := bitcoin.ValidateAddress(address, bitcoin.Network(cfg.Testnet)); err != nil {
		return err
	}

	chain, err := newChain()
	if err != nil {
		return err
	}
	utxos, err := chain.GetUtxos(cmd.Context(), address)
	if err != nil {
		return fmt.Errorf("failed to fetch utxos: %w", err)
	}

	printNetwork()
	fmt.Printf("📍 Address: %s\n", address)
	fmt.Println()

	if len(utxos) == 0 {
		fmt.Println("No unspent outputs")
		return nil
	}

	total, _ := bitcoin.SumUTXOs(utxos)
	for _, u := range utxos {
		fmt.Printf("%s:%d  %s\n", color.HiBlackString(u.TxID), u.Vout, bitcoin.FormatBTC(u.Value))
	}
	fmt.Println()
	fmt.Printf("%d outputs, total %s\n", len(utxos), color.GreenString(bitcoin.FormatBTC(total)))
	return nil
}

func init() {
	utxosCmd.Flags().Uint32("index", 0, "wallet receive address index")
}

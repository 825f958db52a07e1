package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chinmay1088/sats/chains/bitcoin"
)

var broadcastCmd = &cobra.Command{
	Use:   "broadcast [hex]",
	Short: "Broadcast a signed transaction",
	Long: `Broadcast a raw signed transaction through the configured explorers.

Example:
  sats broadcast 02000000000101...`,
	Args: cobra.ExactArgs(1),
	RunE: runBroadcast,
}

func runBroadcast(cmd *cobra.Command, args []string) error {
	rawHex := strings.TrimSpace(args[0])
	tx, err := bitcoin.DecodeTx(rawHex)
	if err != nil {
		return err
	}

	chain, err := newChain()
	if err != nil {
		return err
	}

	printNetwork()
	fmt.Printf("📤 Broadcasting %s (%d inputs, %d outputs)...\n", tx.TxHash(), len(tx.TxIn), len(tx.TxOut))

	res, err := chain.Broadcast(cmd.Context(), rawHex)
	if err != nil {
		return fmt.Errorf("failed to broadcast transaction: %w", err)
	}
	printBroadcast(res.TxID)
	return nil
}

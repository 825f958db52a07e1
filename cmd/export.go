package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chinmay1088/sats/wallet"
)

var exportKeyCmd = &cobra.Command{
	Use:   "export-key",
	Short: "Export a private key as WIF",
	Long: `Export the private key of one wallet address in Wallet Import Format.

The key is compressed and bound to the current network.

Examples:
  sats export-key --index 0           # Key of receive address 0
  sats export-key --index 3 --change  # Key of change address 3`,
	Args: cobra.NoArgs,
	RunE: runExportKey,
}

func runExportKey(cmd *cobra.Command, args []string) error {
	index, _ := cmd.Flags().GetUint32("index")
	change, _ := cmd.Flags().GetBool("change")

	branch := wallet.External
	if change {
		branch = wallet.Internal
	}

	w, err := unlockWallet(index)
	if err != nil {
		return err
	}
	addr, err := w.AddressAt(index, branch)
	if err != nil {
		return fmt.Errorf("failed to derive address: %w", err)
	}
	wif, err := w.ExportPrivateKeyAt(index, branch)
	if err != nil {
		return fmt.Errorf("failed to export private key: %w", err)
	}

	printNetwork()
	fmt.Printf("📍 Address: %s (%s)\n", addr.Address, addr.Path)
	fmt.Println()
	fmt.Printf("🔑 Private key (WIF): %s\n", color.RedString(wif))
	fmt.Println()
	fmt.Println("⚠️  Anyone with this key can spend the funds of this address")
	return nil
}

func init() {
	exportKeyCmd.Flags().Uint32("index", 0, "address index")
	exportKeyCmd.Flags().Bool("change", false, "export a change (internal) key")
}

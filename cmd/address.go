package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chinmay1088/sats/wallet"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Show wallet addresses",
	Long: `Show BIP84 native segwit (P2WPKH) addresses of your wallet.

Receive addresses are issued in order starting at --start; each one is a
fresh address. Use --change to list change addresses instead.

Examples:
  sats address                      # First receive address
  sats address --count 5            # Receive addresses 0 to 4
  sats address --start 10 --count 2 # Receive addresses 10 and 11
  sats address --change             # First change address`,
	Args: cobra.NoArgs,
	RunE: runAddress,
}

func runAddress(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetUint32("count")
	start, _ := cmd.Flags().GetUint32("start")
	change, _ := cmd.Flags().GetBool("change")
	if count == 0 {
		return fmt.Errorf("--count must be at least 1")
	}

	w, err := unlockWallet(start)
	if err != nil {
		return err
	}

	printNetwork()
	fmt.Printf("👛 Account: %d\n", w.Account())
	fmt.Println()

	for i := uint32(0); i < count; i++ {
		var addr *wallet.ReceiveAddress
		if change {
			addr, err = w.AddressAt(start+i, wallet.Internal)
		} else {
			addr, err = w.NextReceiveAddress()
		}
		if err != nil {
			return fmt.Errorf("failed to derive address: %w", err)
		}
		fmt.Printf("%-22s %s\n", color.HiBlackString(addr.Path), addr.Address)
	}

	if !change {
		fmt.Println()
		fmt.Printf("💡 Next unused index: %d (pass --start %d to continue)\n", w.NextIndex(), w.NextIndex())
	}
	return nil
}

func printNetwork() {
	if cfg.Testnet {
		fmt.Printf("🌐 Network: %s\n", color.YellowString("Testnet"))
		return
	}
	fmt.Printf("🌐 Network: %s\n", color.GreenString("Mainnet"))
}

func networkLabel() string {
	return strings.ToUpper(cfg.Network())
}

func init() {
	addressCmd.Flags().Uint32("count", 1, "number of addresses to show")
	addressCmd.Flags().Uint32("start", 0, "first address index")
	addressCmd.Flags().Bool("change", false, "show change (internal) addresses")
}

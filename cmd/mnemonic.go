package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chinmay1088/sats/wallet"
)

var mnemonicCmd = &cobra.Command{
	Use:   "mnemonic",
	Short: "Generate a new recovery phrase",
	Long: `Generate a new BIP39 recovery phrase.

Nothing is stored: write the phrase down and export it as SATS_MNEMONIC (or
type it at the prompt) to use it with the other commands.

Examples:
  sats mnemonic             # 24 words
  sats mnemonic --words 12  # 12 words`,
	Args: cobra.NoArgs,
	RunE: runMnemonic,
}

func runMnemonic(cmd *cobra.Command, args []string) error {
	words, _ := cmd.Flags().GetInt("words")
	if words%3 != 0 || words < 12 || words > 24 {
		return fmt.Errorf("invalid word count %d. Use 12, 15, 18, 21 or 24", words)
	}

	mnemonic, err := wallet.GenerateMnemonic(words / 3 * 32)
	if err != nil {
		return fmt.Errorf("failed to generate recovery phrase: %w", err)
	}

	fmt.Printf("🔐 Recovery Phrase (%d words):\n", words)
	fmt.Println()
	fmt.Printf("   %s\n", color.CyanString(mnemonic))
	fmt.Println()
	fmt.Println("⚠️  IMPORTANT:")
	fmt.Println("   - Write down this recovery phrase and store it securely")
	fmt.Println("   - Anyone with this phrase can access your funds")
	fmt.Println("   - Keep it offline and never share it with anyone")
	fmt.Println()
	fmt.Println("🔑 Next steps:")
	fmt.Println("   - Run 'sats address' to see your receive addresses")
	fmt.Println("   - Run 'sats balance' to check your balances")

	return nil
}

func init() {
	mnemonicCmd.Flags().Int("words", 24, "number of words (12, 15, 18, 21 or 24)")
}

package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chinmay1088/sats/chains/bitcoin"
	"github.com/chinmay1088/sats/wallet"
)

var sendCmd = &cobra.Command{
	Use:   "send [address] [sats]",
	Short: "Send bitcoin",
	Long: `Build, sign and optionally broadcast a payment.

Every unspent output of the receive address at --index is spent; whatever is
left after the payment and --fee goes to the change address at the same
index. The fee is absolute, in satoshis.

Without --broadcast the signed transaction is only printed.

Examples:
  sats send bc1q... 50000 --fee 500
  sats send bc1q... 50000 --fee 500 --index 2 --broadcast
  sats send --testnet tb1q... 10000 --fee 200 --broadcast --yes`,
	Args: cobra.ExactArgs(2),
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	recipient := args[0]
	amount, err := parseSats(args[1])
	if err != nil {
		return err
	}
	fee, _ := cmd.Flags().GetInt64("fee")
	index, _ := cmd.Flags().GetUint32("index")
	broadcast, _ := cmd.Flags().GetBool("broadcast")
	yes, _ := cmd.Flags().GetBool("yes")

	params := bitcoin.Network(cfg.Testnet)
	if err := bitcoin.ValidateAddress(recipient, params); err != nil {
		return err
	}

	w, err := unlockWallet(index)
	if err != nil {
		return err
	}
	key, err := w.KeyAt(index, wallet.External)
	if err != nil {
		return err
	}
	source, sourceScript, err := bitcoin.P2WPKHAddress(key.PublicKey, params)
	if err != nil {
		return err
	}
	changeAddr, err := w.AddressAt(index, wallet.Internal)
	if err != nil {
		return err
	}

	chain, err := newChain()
	if err != nil {
		return err
	}

	fmt.Println("🟠 Sending Bitcoin Transaction")
	printNetwork()
	fmt.Println()

	utxos, err := chain.GetUtxos(cmd.Context(), source)
	if err != nil {
		return fmt.Errorf("failed to fetch utxos: %w", err)
	}
	for i := range utxos {
		utxos[i].ScriptPubKey = hex.EncodeToString(sourceScript)
	}

	tmpl, err := bitcoin.BuildTemplate(bitcoin.BuildParams{
		UTXOs:         utxos,
		Outputs:       []bitcoin.Output{{Address: recipient, Value: amount}},
		ChangeAddress: changeAddr.Address,
		Fee:           fee,
		Network:       params,
	})
	if err != nil {
		return err
	}

	fmt.Printf("From:    %s (%s)\n", source, key.Path)
	fmt.Printf("To:      %s\n", recipient)
	fmt.Printf("Amount:  %s\n", color.CyanString(bitcoin.FormatBTC(amount)))
	fmt.Printf("Fee:     %s\n", bitcoin.FormatBTC(fee))
	fmt.Printf("Inputs:  %d (%s)\n", len(utxos), bitcoin.FormatBTC(tmpl.InputTotal()))
	if tmpl.ChangeIndex >= 0 {
		fmt.Printf("Change:  %s to %s\n", bitcoin.FormatBTC(tmpl.Change()), changeAddr.Address)
	}

	if !yes && !confirm(os.Stdin, cfg.Testnet) {
		fmt.Println("❌ Transaction cancelled by user")
		return nil
	}

	signer, err := w.Signer(index, wallet.External)
	if err != nil {
		return err
	}
	if err := bitcoin.Sign(tmpl, signer); err != nil {
		return err
	}
	final, err := bitcoin.Finalize(tmpl)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("✍️  Transaction signed")
	fmt.Printf("TxID: %s\n", final.TxID)

	if !broadcast {
		fmt.Println()
		fmt.Println("Raw transaction:")
		fmt.Println(final.Hex)
		fmt.Println()
		fmt.Println("💡 Run 'sats broadcast <hex>' or pass --broadcast to send it")
		return nil
	}

	res, err := chain.Broadcast(cmd.Context(), final.Hex)
	if err != nil {
		return fmt.Errorf("failed to broadcast transaction: %w", err)
	}
	printBroadcast(res.TxID)
	return nil
}

// parseSats parses a positive amount of satoshis.
func parseSats(s string) (int64, error) {
	amount, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: amounts are whole satoshis", s)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be greater than 0")
	}
	return amount, nil
}

func printBroadcast(txid string) {
	fmt.Println()
	fmt.Println("✅ Transaction broadcast successfully!")
	fmt.Printf("📋 Transaction ID: %s\n", txid)
	fmt.Printf("🔗 Explorer: %s\n", explorerURL(txid, cfg.Testnet))
}

func explorerURL(txid string, testnet bool) string {
	if testnet {
		return "https://mempool.space/testnet/tx/" + txid
	}
	return "https://mempool.space/tx/" + txid
}

func init() {
	sendCmd.Flags().Int64("fee", 1000, "absolute fee in satoshis")
	sendCmd.Flags().Uint32("index", 0, "receive address index to spend from")
	sendCmd.Flags().Bool("broadcast", false, "broadcast the signed transaction")
	sendCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
}

package cmd

import (
	"fmt"
	"io"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/chinmay1088/sats/config"
	"github.com/chinmay1088/sats/wallet"
)

// unlockWallet builds the wallet of the configured network and account from
// SATS_MNEMONIC, or from a recovery phrase typed at a hidden prompt.
func unlockWallet(startIndex uint32) (*wallet.Wallet, error) {
	mnemonic := strings.TrimSpace(vip.GetString(config.MnemonicKey))
	if mnemonic == "" {
		fmt.Print("Enter your recovery phrase: ")
		input, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return nil, fmt.Errorf("failed to read recovery phrase: %w", err)
		}
		fmt.Println() // New line after hidden input
		mnemonic = normalizeMnemonic(string(input))
	}

	w, err := wallet.FromMnemonic(normalizeMnemonic(mnemonic), wallet.Options{
		Testnet:    cfg.Testnet,
		Account:    cfg.Account,
		Passphrase: vip.GetString(config.PassphraseKey),
		StartIndex: startIndex,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to unlock wallet: %w", err)
	}
	return w, nil
}

// normalizeMnemonic lower-cases a phrase and collapses whitespace.
func normalizeMnemonic(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// confirm asks a y/n question on in and reports whether the answer was yes.
func confirm(in io.Reader, testnet bool) bool {
	fmt.Println()
	if testnet {
		fmt.Println("⚠️  You are on testnet. By confirming this transaction no real funds will be sent.")
	} else {
		fmt.Println("🚨 You are on main network. By confirming this transaction real funds will be sent.")
	}
	fmt.Printf("Press y to confirm or n to stop (y/n): ")

	var response string
	fmt.Fscanln(in, &response)

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

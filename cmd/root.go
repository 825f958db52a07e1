package cmd

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chinmay1088/sats/config"
	"github.com/chinmay1088/sats/provider"
)

var (
	version = "0.3.0"

	vip = config.New()
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sats",
	Short: "A programmatic Bitcoin wallet toolkit",
	Long: `sats derives BIP84 native segwit wallets from a BIP39 recovery phrase,
builds and signs transactions locally and talks to public Esplora explorers
(mempool.space, blockstream.info) with timeouts, backoff and failover.

Keys never leave the machine: the recovery phrase is read from SATS_MNEMONIC
or prompted for, and nothing is written to disk.

Configuration is read from SATS_* environment variables, an optional config
file and the global flags below, in increasing priority.

Examples:
  sats mnemonic                          # Generate a new recovery phrase
  sats address --count 5                 # Show the first 5 receive addresses
  sats balance --count 20                # Scan balances of 20 addresses
  sats send bc1q... 50000 --fee 500      # Build and sign a payment
  sats send bc1q... 50000 --broadcast    # ...and broadcast it
  sats --testnet address                 # Use testnet3`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()

	// Global flags
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.String("config", "", "path to a config file (yaml, json or toml)")
	flags.Bool("testnet", false, "use testnet3 instead of mainnet")
	flags.Uint32("account", 0, "BIP84 account")
	flags.String("providers", "", "comma separated explorers: mempool, blockstream or an Esplora URL")
	flags.Int("timeout-ms", 0, "per provider attempt timeout in milliseconds")

	bindFlag(vip, config.TestnetKey, "testnet")
	bindFlag(vip, config.AccountKey, "account")
	bindFlag(vip, config.ProvidersKey, "providers")
	bindFlag(vip, config.TimeoutMsKey, "timeout-ms")

	// Add subcommands
	rootCmd.AddCommand(mnemonicCmd)
	rootCmd.AddCommand(addressCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(utxosCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(broadcastCmd)
	rootCmd.AddCommand(exportKeyCmd)
	rootCmd.AddCommand(networkCmd)
	rootCmd.AddCommand(versionCmd)
}

func bindFlag(v *viper.Viper, key, flag string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("failed to bind flag %s: %v", flag, err))
	}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		vip.SetConfigFile(path)
		if err := vip.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	loaded, err := config.Load(vip)
	if err != nil {
		return err
	}
	cfg = loaded

	log.SetLevel(cfg.LogLevel)
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		log.SetLevel(log.DebugLevel)
	}
	log.WithFields(log.Fields{
		"network":   cfg.Network(),
		"providers": cfg.Providers,
	}).Debug("config loaded")
	return nil
}

func newChain() (*provider.Chain, error) {
	chain, err := cfg.NewChain()
	if err != nil {
		return nil, fmt.Errorf("failed to set up providers: %w", err)
	}
	return chain, nil
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sats v%s\n", version)
	},
}

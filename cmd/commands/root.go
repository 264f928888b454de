package commands

// Root command for Cobra CLI
// Defines the main command structure of the application
// Registers all subcommands (mint, auth, balance) and the shared config flags

import (
	"github.com/spf13/cobra"

	"sonic-minter/internal/infra/config"
)

var rootCmd = &cobra.Command{
	Use:   "sonic-minter",
	Short: "Sonic Odyssey mystery NFT mint bot",
	Long: `Sonic Odyssey mystery NFT mint bot. Authenticates a wallet against the
Odyssey campaign API, fetches prebuilt mint transactions, signs them locally
and submits them to the Sonic SVM network.`,
	Version: "1.0.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(mintCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(historyCmd)
}

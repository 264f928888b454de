package commands

// Balance command
// Reads the wallet's SOL balance from the configured Sonic RPC

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sonic-minter/internal/clients_api/solana"
	"sonic-minter/internal/infra/config"
	"sonic-minter/internal/wallet"

	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the wallet SOL balance",
	RunE:  runBalance,
}

func runBalance(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	w, err := wallet.FromBase58(cfg.Wallet.PrivateKey)
	if err != nil {
		return fmt.Errorf("invalid wallet private key: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, chain := buildClients(cfg)

	lamports, err := chain.Balance(ctx, w.Address())
	if err != nil {
		return fmt.Errorf("failed to get balance: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s SOL\n", w.Address(), solana.LamportsToSOL(lamports))
	return nil
}

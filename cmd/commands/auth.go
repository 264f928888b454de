package commands

// Auth command for the Odyssey campaign API
// Runs the challenge/authorize exchange on its own and prints the bearer
// token, useful for checking credentials before a mint batch

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sonic-minter/internal/infra/config"
	"sonic-minter/internal/infra/log"
	"sonic-minter/internal/infra/retry"
	"sonic-minter/internal/wallet"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate the wallet against the Odyssey API",
	Long: `Run the wallet authentication flow (challenge + sign + authorize) and
print the bearer token on success.`,
	RunE: runAuth,
}

func runAuth(cmd *cobra.Command, args []string) error {
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

	api, _ := buildClients(cfg)

	log.LogInfo("Authenticating",
		zap.String("network", cfg.Sonic.Network),
		zap.String("wallet", w.Address()))

	token, ok := retry.Do(ctx, "authenticate", retry.Options{
		MaxAttempts:  cfg.Mint.AuthMaxAttempts,
		InitialDelay: cfg.Mint.AuthRetryDelay(),
	}, func() (string, error) {
		return api.Authenticate(ctx, w)
	})
	if !ok {
		return fmt.Errorf("authentication failed after %d attempts", cfg.Mint.AuthMaxAttempts)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

package commands

// Mint command: the full campaign flow
// Authenticates the wallet, then mints the mystery NFT the requested number
// of times with a fixed delay between attempts

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"sonic-minter/internal/clients_api/solana"
	"sonic-minter/internal/clients_api/sonic"
	"sonic-minter/internal/infra/config"
	"sonic-minter/internal/infra/fs"
	"sonic-minter/internal/infra/log"
	"sonic-minter/internal/minter"
	"sonic-minter/internal/notify"
	"sonic-minter/internal/wallet"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint mystery NFTs on the Odyssey campaign",
	Long: `Authenticate the configured wallet against the Odyssey campaign API and
mint the mystery NFT the requested number of times. The count comes from
--count or, when omitted, from an interactive prompt.`,
	RunE: runMint,
}

func init() {
	mintCmd.Flags().String("count", "", "Number of mint attempts (prompted for when omitted)")
}

func runMint(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	count, err := resolveCount(cmd)
	if err != nil {
		return err
	}
	if count == 0 {
		log.LogWarn("Mint count is 0, nothing to do")
		return nil
	}

	w, err := wallet.FromBase58(cfg.Wallet.PrivateKey)
	if err != nil {
		return fmt.Errorf("invalid wallet private key: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api, chain := buildClients(cfg)

	log.LogInfo("Minter starting",
		zap.String("network", cfg.Sonic.Network),
		zap.String("wallet", w.Address()),
		zap.Int("count", count))

	logBalance(ctx, chain, w.Address())

	notifier := buildNotifier(cfg)

	m := minter.New(api, chain, w, minter.Options{
		AuthMaxAttempts: cfg.Mint.AuthMaxAttempts,
		AuthRetryDelay:  cfg.Mint.AuthRetryDelay(),
	})
	runner := minter.NewRunner(m, minter.RunnerOptions{
		AttemptDelay:    cfg.Mint.AttemptDelay(),
		ContinueOnError: cfg.Mint.ContinueOnError,
	})

	summary := runner.Run(ctx, count)
	summary.Log()

	if err := fs.AppendBatchRecord(fs.NewBatchRecord(cfg.Sonic.Network, w.Address(), summary)); err != nil {
		log.LogWarn("Failed to save mint history", zap.Error(err))
	}

	notifier.Send(summary.Text())

	// Failed attempts are reported in the summary; the run itself still
	// exits normally.
	return nil
}

// buildClients resolves the endpoints for the configured network. Explicit
// URL overrides win over the per-network presets.
func buildClients(cfg *config.Config) (*sonic.Client, *solana.Client) {
	apiURL := cfg.Sonic.APIURL
	if apiURL == "" {
		apiURL = sonic.DefaultAPIURL(cfg.Sonic.Network)
	}
	api := sonic.NewClient(sonic.Options{
		BaseURL:         apiURL,
		RequestTimeout:  cfg.HTTP.Timeout(),
		MaxResponseSize: cfg.HTTP.MaxResponseSize,
	})

	rpcURL := cfg.Sonic.RPCURL
	if rpcURL == "" {
		rpcURL = solana.DefaultRPCURL(solana.Network(cfg.Sonic.Network))
	}
	return api, solana.NewClient(rpcURL)
}

func buildNotifier(cfg *config.Config) *notify.Telegram {
	if !cfg.Telegram.Enabled() {
		return nil
	}

	chatID, err := cfg.Telegram.ChatIDInt64()
	if err != nil {
		log.LogWarn("Telegram notifications disabled", zap.Error(err))
		return nil
	}

	notifier, err := notify.NewTelegram(cfg.Telegram.BotToken, chatID)
	if err != nil {
		log.LogWarn("Telegram notifications disabled", zap.Error(err))
		return nil
	}
	return notifier
}

func logBalance(ctx context.Context, chain *solana.Client, address string) {
	lamports, err := chain.Balance(ctx, address)
	if err != nil {
		log.LogWarn("Failed to read wallet balance", zap.Error(err))
		return
	}

	log.LogInfo("Wallet balance", zap.String("sol", solana.LamportsToSOL(lamports).String()))
	if lamports == 0 {
		log.LogWarn("Wallet has no SOL, transactions cannot pay fees")
	}
}

// resolveCount reads the attempt count from --count or prompts for it.
func resolveCount(cmd *cobra.Command) (int, error) {
	if cmd.Flags().Changed("count") {
		raw, err := cmd.Flags().GetString("count")
		if err != nil {
			return 0, err
		}
		return parseCount(raw)
	}
	return promptCount(cmd.InOrStdin(), cmd.OutOrStdout())
}

func promptCount(in io.Reader, out io.Writer) (int, error) {
	fmt.Fprint(out, "How many times do you want to mint? ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return 0, fmt.Errorf("failed to read mint count: %w", err)
	}
	return parseCount(line)
}

// parseCount accepts a plain non-negative decimal integer and nothing else.
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("mint count is required")
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid mint count %q: expected a whole number", s)
		}
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid mint count %q: %w", s, err)
	}
	return n, nil
}

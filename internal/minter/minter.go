package minter

// Minter drives a single mystery-NFT mint end to end: authenticate the
// wallet (with bounded retry), fetch the prebuilt transaction, sign the
// wallet's slot locally and push the result through the RPC until it
// confirms. Every attempt re-authenticates; the campaign tokens are
// short-lived and cheap to obtain.

import (
	"context"
	"fmt"
	"time"

	"sonic-minter/internal/clients_api/solana"
	"sonic-minter/internal/infra/log"
	"sonic-minter/internal/infra/retry"
	"sonic-minter/internal/wallet"

	"github.com/blocto/solana-go-sdk/types"
	"go.uber.org/zap"
)

// CampaignAPI is the Odyssey API surface the minter uses.
type CampaignAPI interface {
	Authenticate(ctx context.Context, w *wallet.Wallet) (string, error)
	BuildMintTx(ctx context.Context) (string, error)
}

// Chain is the RPC surface the minter uses.
type Chain interface {
	SubmitTransaction(ctx context.Context, tx types.Transaction) (string, error)
	WaitForConfirmation(ctx context.Context, signature string) error
}

type Options struct {
	AuthMaxAttempts int
	AuthRetryDelay  time.Duration
}

type Minter struct {
	api    CampaignAPI
	chain  Chain
	wallet *wallet.Wallet
	opts   Options
}

func New(api CampaignAPI, chain Chain, w *wallet.Wallet, opts Options) *Minter {
	if opts.AuthMaxAttempts <= 0 {
		opts.AuthMaxAttempts = 3
	}
	if opts.AuthRetryDelay <= 0 {
		opts.AuthRetryDelay = time.Second
	}
	return &Minter{api: api, chain: chain, wallet: w, opts: opts}
}

// Authenticate runs the challenge/authorize exchange under the bounded
// retry. It reports false once the attempts are exhausted; the underlying
// errors are in the log.
func (m *Minter) Authenticate(ctx context.Context) (string, bool) {
	return retry.Do(ctx, "authenticate", retry.Options{
		MaxAttempts:  m.opts.AuthMaxAttempts,
		InitialDelay: m.opts.AuthRetryDelay,
	}, func() (string, error) {
		return m.api.Authenticate(ctx, m.wallet)
	})
}

// Mint performs one full mint attempt and returns the confirmed transaction
// signature. A failed authentication aborts before anything reaches the
// network.
func (m *Minter) Mint(ctx context.Context) (string, error) {
	startTime := time.Now()

	if _, ok := m.Authenticate(ctx); !ok {
		return "", fmt.Errorf("authentication failed after %d attempts", m.opts.AuthMaxAttempts)
	}

	blob, err := m.api.BuildMintTx(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch mint transaction: %w", err)
	}

	tx, err := solana.DecodeBase64Transaction(blob)
	if err != nil {
		return "", err
	}

	if err := solana.PartialSign(&tx, m.wallet.Account()); err != nil {
		return "", err
	}

	signature, err := m.chain.SubmitTransaction(ctx, tx)
	if err != nil {
		return "", err
	}

	log.LogInfo("Transaction submitted",
		zap.String("signature", signature),
		zap.String("wallet", m.wallet.Address()))

	if err := m.chain.WaitForConfirmation(ctx, signature); err != nil {
		return "", err
	}

	log.LogSuccess("Mint confirmed",
		zap.String("signature", signature),
		zap.Int64("duration_ms", time.Since(startTime).Milliseconds()))

	return signature, nil
}

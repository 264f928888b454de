package solana

// Client wraps the Sonic SVM JSON-RPC endpoint behind the three calls the
// bot needs: submit a transaction, poll it to confirmation, read a balance.
// The SDK client sits behind a small interface so tests can swap it out.

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"time"

	"sonic-minter/internal/infra/log"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Network selects a Sonic SVM cluster.
type Network string

const (
	NetworkTestnet Network = "testnet"
	NetworkDevnet  Network = "devnet"
	NetworkMainnet Network = "mainnet"
)

// DefaultRPCURL maps a network to its public Sonic RPC endpoint.
func DefaultRPCURL(network Network) string {
	switch network {
	case NetworkMainnet:
		return "https://rpc.mainnet-alpha.sonic.game"
	case NetworkDevnet:
		return "https://devnet.sonic.game"
	case NetworkTestnet:
		fallthrough
	default:
		return "https://api.testnet.sonic.game"
	}
}

// rpcAPI is the slice of the SDK client the bot exercises.
type rpcAPI interface {
	SendTransaction(ctx context.Context, tx types.Transaction) (string, error)
	GetSignatureStatus(ctx context.Context, signature string) (*rpc.SignatureStatus, error)
	GetBalance(ctx context.Context, base58Addr string) (uint64, error)
}

type Client struct {
	rpc          rpcAPI
	pollInterval time.Duration
	waitTimeout  time.Duration
}

func NewClient(rpcURL string) *Client {
	return &Client{
		rpc:          client.NewClient(rpcURL),
		pollInterval: time.Second,
		waitTimeout:  60 * time.Second,
	}
}

func NewClientForNetwork(network Network) *Client {
	return NewClient(DefaultRPCURL(network))
}

// DecodeBase64Transaction turns a server-built transaction blob back into an
// SDK transaction, signature slots included.
func DecodeBase64Transaction(encoded string) (types.Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return types.Transaction{}, fmt.Errorf("failed to decode transaction base64: %w", err)
	}

	tx, err := types.TransactionDeserialize(raw)
	if err != nil {
		return types.Transaction{}, fmt.Errorf("failed to deserialize transaction: %w", err)
	}

	return tx, nil
}

// PartialSign adds the signer's signature to a prebuilt transaction. Slots
// belonging to other required signers stay as the server shipped them.
func PartialSign(tx *types.Transaction, signer types.Account) error {
	msg, err := tx.Message.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize transaction message: %w", err)
	}

	sig := ed25519.Sign(signer.PrivateKey, msg)
	if err := tx.AddSignature(sig); err != nil {
		return fmt.Errorf("failed to place signature: %w", err)
	}

	return nil
}

// SubmitTransaction sends the signed transaction and returns its signature.
func (c *Client) SubmitTransaction(ctx context.Context, tx types.Transaction) (string, error) {
	sig, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig, nil
}

// WaitForConfirmation polls the signature status until it reaches the
// confirmed or finalized commitment. A status carrying an on-chain error
// fails the wait; transient poll errors are logged and retried until the
// wait deadline runs out.
func (c *Client) WaitForConfirmation(ctx context.Context, signature string) error {
	ctx, cancel := context.WithTimeout(ctx, c.waitTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.rpc.GetSignatureStatus(ctx, signature)
		switch {
		case err != nil:
			log.LogDebug("Signature status poll failed",
				zap.String("signature", signature),
				zap.Error(err))
		case status != nil:
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed on chain: %v", signature, status.Err)
			}
			if status.ConfirmationStatus != nil {
				switch *status.ConfirmationStatus {
				case rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
					return nil
				}
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("confirmation wait for %s: %w", signature, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Balance returns the wallet balance in lamports.
func (c *Client) Balance(ctx context.Context, address string) (uint64, error) {
	balance, err := c.rpc.GetBalance(ctx, address)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// LamportsPerSOL is the lamport denomination of one SOL.
const LamportsPerSOL = 1_000_000_000

// LamportsToSOL converts a lamport amount to SOL without float drift.
func LamportsToSOL(lamports uint64) decimal.Decimal {
	return decimal.NewFromUint64(lamports).Div(decimal.NewFromInt(LamportsPerSOL))
}

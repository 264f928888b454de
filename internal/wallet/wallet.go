package wallet

// Wallet wraps the ed25519 keypair the bot mints with. Keys arrive as the
// base58 encoding of the full 64-byte secret key (seed + public key), the
// format Solana tooling exports. The decoded key stays inside this package;
// callers only get addresses and signatures.

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"
)

// ErrInvalidKeyLength is returned when the decoded key is not 64 bytes.
var ErrInvalidKeyLength = errors.New("private key must decode to 64 bytes")

type Wallet struct {
	account types.Account
}

// FromBase58 decodes and validates a base58-encoded 64-byte secret key.
func FromBase58(encoded string) (*Wallet, error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidKeyLength, len(raw))
	}

	account, err := types.AccountFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair: %w", err)
	}

	return &Wallet{account: account}, nil
}

// Address returns the base58 form of the public key.
func (w *Wallet) Address() string {
	return w.account.PublicKey.ToBase58()
}

// AddressBase64 returns the raw 32-byte public key in standard base64, the
// second address form the authorize endpoint expects.
func (w *Wallet) AddressBase64() string {
	return base64.StdEncoding.EncodeToString(w.account.PublicKey.Bytes())
}

// Sign produces a detached 64-byte ed25519 signature over msg.
func (w *Wallet) Sign(msg []byte) []byte {
	return ed25519.Sign(w.account.PrivateKey, msg)
}

// SignBase64 signs msg and returns the signature in standard base64.
func (w *Wallet) SignBase64(msg []byte) string {
	return base64.StdEncoding.EncodeToString(w.Sign(msg))
}

// Account exposes the underlying SDK account for transaction signing.
func (w *Wallet) Account() types.Account {
	return w.account
}

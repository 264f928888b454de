package wallet

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/mr-tron/base58"
)

// testKeypair derives a fixed keypair so addresses and signatures are stable
// across runs.
func testKeypair(t *testing.T) (ed25519.PrivateKey, string) {
	t.Helper()
	seed := bytes.Repeat([]byte{7}, ed25519.SeedSize)
	priv := ed25519.NewKeyFromSeed(seed)
	return priv, base58.Encode(priv)
}

func TestFromBase58(t *testing.T) {
	priv, encoded := testKeypair(t)

	w, err := FromBase58(encoded)
	if err != nil {
		t.Fatalf("FromBase58() error = %v", err)
	}

	pub := priv.Public().(ed25519.PublicKey)

	if got, want := w.Address(), base58.Encode(pub); got != want {
		t.Errorf("Address() = %q, want %q", got, want)
	}
	if got, want := w.AddressBase64(), base64.StdEncoding.EncodeToString(pub); got != want {
		t.Errorf("AddressBase64() = %q, want %q", got, want)
	}
	if got := w.Account().PublicKey.ToBase58(); got != w.Address() {
		t.Errorf("Account().PublicKey = %q, want %q", got, w.Address())
	}
}

func TestFromBase58RejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"not base58", "0OIl+/"},
		{"seed only", base58.Encode(make([]byte, 32))},
		{"too long", base58.Encode(make([]byte, 65))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromBase58(tt.encoded); err == nil {
				t.Error("FromBase58() accepted invalid input")
			}
		})
	}
}

func TestFromBase58WrongLengthError(t *testing.T) {
	_, err := FromBase58(base58.Encode(make([]byte, 32)))
	if !errors.Is(err, ErrInvalidKeyLength) {
		t.Errorf("FromBase58() error = %v, want ErrInvalidKeyLength", err)
	}
}

func TestSignDetached(t *testing.T) {
	priv, encoded := testKeypair(t)
	w, err := FromBase58(encoded)
	if err != nil {
		t.Fatalf("FromBase58() error = %v", err)
	}

	msg := []byte("abc123")
	sig := w.Sign(msg)

	if len(sig) != ed25519.SignatureSize {
		t.Fatalf("Sign() returned %d bytes, want %d", len(sig), ed25519.SignatureSize)
	}

	pub := priv.Public().(ed25519.PublicKey)
	if !ed25519.Verify(pub, msg, sig) {
		t.Error("signature does not verify against the public key")
	}
	if ed25519.Verify(pub, []byte("abc124"), sig) {
		t.Error("signature verifies against a different message")
	}

	// ed25519 is deterministic; signing twice must agree.
	if !bytes.Equal(sig, w.Sign(msg)) {
		t.Error("Sign() is not deterministic for the same message")
	}
}

func TestSignBase64(t *testing.T) {
	priv, encoded := testKeypair(t)
	w, err := FromBase58(encoded)
	if err != nil {
		t.Fatalf("FromBase58() error = %v", err)
	}

	msg := []byte("challenge payload")
	sig, err := base64.StdEncoding.DecodeString(w.SignBase64(msg))
	if err != nil {
		t.Fatalf("SignBase64() is not valid base64: %v", err)
	}
	if len(sig) != ed25519.SignatureSize {
		t.Fatalf("decoded signature is %d bytes, want %d", len(sig), ed25519.SignatureSize)
	}
	if !ed25519.Verify(priv.Public().(ed25519.PublicKey), msg, sig) {
		t.Error("decoded signature does not verify")
	}
}

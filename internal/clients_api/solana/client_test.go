package solana

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"
)

type fakeRPC struct {
	sendTransaction    func(ctx context.Context, tx types.Transaction) (string, error)
	getSignatureStatus func(ctx context.Context, signature string) (*rpc.SignatureStatus, error)
	getBalance         func(ctx context.Context, base58Addr string) (uint64, error)
}

func (f *fakeRPC) SendTransaction(ctx context.Context, tx types.Transaction) (string, error) {
	return f.sendTransaction(ctx, tx)
}

func (f *fakeRPC) GetSignatureStatus(ctx context.Context, signature string) (*rpc.SignatureStatus, error) {
	return f.getSignatureStatus(ctx, signature)
}

func (f *fakeRPC) GetBalance(ctx context.Context, base58Addr string) (uint64, error) {
	return f.getBalance(ctx, base58Addr)
}

func testClient(api rpcAPI) *Client {
	return &Client{rpc: api, pollInterval: time.Millisecond, waitTimeout: 250 * time.Millisecond}
}

func testAccount(t *testing.T) types.Account {
	t.Helper()
	priv := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{9}, ed25519.SeedSize))
	acct, err := types.AccountFromBytes(priv)
	if err != nil {
		t.Fatalf("AccountFromBytes() error = %v", err)
	}
	return acct
}

// unsignedTx builds a single-signer transaction the way the campaign server
// does: message complete, fee payer signature slot zeroed.
func unsignedTx(t *testing.T, feePayer types.Account) types.Transaction {
	t.Helper()
	msg := types.NewMessage(types.NewMessageParam{
		FeePayer:        feePayer.PublicKey,
		RecentBlockhash: base58.Encode(bytes.Repeat([]byte{1}, 32)),
		Instructions: []types.Instruction{
			{
				ProgramID: common.SystemProgramID,
				Accounts: []types.AccountMeta{
					{PubKey: feePayer.PublicKey, IsSigner: true, IsWritable: true},
					{PubKey: common.PublicKeyFromBytes(bytes.Repeat([]byte{2}, 32)), IsSigner: false, IsWritable: true},
				},
				Data: []byte{2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
			},
		},
	})

	tx, err := types.NewTransaction(types.NewTransactionParam{Message: msg})
	if err != nil {
		t.Fatalf("NewTransaction() error = %v", err)
	}
	return tx
}

func TestDecodeBase64TransactionRoundTrip(t *testing.T) {
	acct := testAccount(t)
	tx := unsignedTx(t, acct)

	raw, err := tx.Serialize()
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	got, err := DecodeBase64Transaction(base64.StdEncoding.EncodeToString(raw))
	if err != nil {
		t.Fatalf("DecodeBase64Transaction() error = %v", err)
	}

	if len(got.Signatures) != 1 {
		t.Fatalf("decoded transaction has %d signature slots, want 1", len(got.Signatures))
	}
	if got.Message.Accounts[0] != acct.PublicKey {
		t.Errorf("fee payer = %s, want %s", got.Message.Accounts[0].ToBase58(), acct.PublicKey.ToBase58())
	}

	reserialized, err := got.Serialize()
	if err != nil {
		t.Fatalf("re-Serialize() error = %v", err)
	}
	if !bytes.Equal(raw, reserialized) {
		t.Error("decoded transaction does not serialize back to the original bytes")
	}
}

func TestDecodeBase64TransactionErrors(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"base64 of garbage", base64.StdEncoding.EncodeToString([]byte("definitely not a transaction"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeBase64Transaction(tt.encoded); err == nil {
				t.Error("DecodeBase64Transaction() accepted invalid input")
			}
		})
	}
}

func TestPartialSign(t *testing.T) {
	acct := testAccount(t)
	tx := unsignedTx(t, acct)

	if !bytes.Equal(tx.Signatures[0], make([]byte, ed25519.SignatureSize)) {
		t.Fatal("fixture transaction should start with a zeroed signature slot")
	}

	if err := PartialSign(&tx, acct); err != nil {
		t.Fatalf("PartialSign() error = %v", err)
	}

	msg, err := tx.Message.Serialize()
	if err != nil {
		t.Fatalf("Message.Serialize() error = %v", err)
	}
	pub := ed25519.PublicKey(acct.PublicKey.Bytes())
	if !ed25519.Verify(pub, msg, tx.Signatures[0]) {
		t.Error("placed signature does not verify against the message")
	}
}

func TestPartialSignWrongSigner(t *testing.T) {
	acct := testAccount(t)
	tx := unsignedTx(t, acct)

	stranger := types.NewAccount()
	if err := PartialSign(&tx, stranger); err == nil {
		t.Error("PartialSign() accepted a signer the transaction does not require")
	}
}

func TestSubmitTransaction(t *testing.T) {
	acct := testAccount(t)
	tx := unsignedTx(t, acct)

	fake := &fakeRPC{
		sendTransaction: func(ctx context.Context, tx types.Transaction) (string, error) {
			return "5igna7ure", nil
		},
	}

	sig, err := testClient(fake).SubmitTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("SubmitTransaction() error = %v", err)
	}
	if sig != "5igna7ure" {
		t.Errorf("SubmitTransaction() = %q, want %q", sig, "5igna7ure")
	}
}

func TestSubmitTransactionError(t *testing.T) {
	acct := testAccount(t)
	tx := unsignedTx(t, acct)

	rpcErr := errors.New("rpc unavailable")
	fake := &fakeRPC{
		sendTransaction: func(ctx context.Context, tx types.Transaction) (string, error) {
			return "", rpcErr
		},
	}

	_, err := testClient(fake).SubmitTransaction(context.Background(), tx)
	if !errors.Is(err, rpcErr) {
		t.Errorf("SubmitTransaction() error = %v, want wrapped rpc error", err)
	}
}

func TestWaitForConfirmationProgression(t *testing.T) {
	processed := rpc.CommitmentProcessed
	confirmed := rpc.CommitmentConfirmed

	statuses := []*rpc.SignatureStatus{
		nil,
		{ConfirmationStatus: &processed},
		{ConfirmationStatus: &confirmed},
	}

	calls := 0
	fake := &fakeRPC{
		getSignatureStatus: func(ctx context.Context, signature string) (*rpc.SignatureStatus, error) {
			s := statuses[calls]
			if calls < len(statuses)-1 {
				calls++
			}
			return s, nil
		},
	}

	if err := testClient(fake).WaitForConfirmation(context.Background(), "sig"); err != nil {
		t.Fatalf("WaitForConfirmation() error = %v", err)
	}
	if calls != len(statuses)-1 {
		t.Errorf("polled %d times before confirmation, want %d", calls+1, len(statuses))
	}
}

func TestWaitForConfirmationFinalized(t *testing.T) {
	finalized := rpc.CommitmentFinalized
	fake := &fakeRPC{
		getSignatureStatus: func(ctx context.Context, signature string) (*rpc.SignatureStatus, error) {
			return &rpc.SignatureStatus{ConfirmationStatus: &finalized}, nil
		},
	}

	if err := testClient(fake).WaitForConfirmation(context.Background(), "sig"); err != nil {
		t.Fatalf("WaitForConfirmation() error = %v", err)
	}
}

func TestWaitForConfirmationOnChainError(t *testing.T) {
	confirmed := rpc.CommitmentConfirmed
	fake := &fakeRPC{
		getSignatureStatus: func(ctx context.Context, signature string) (*rpc.SignatureStatus, error) {
			return &rpc.SignatureStatus{
				ConfirmationStatus: &confirmed,
				Err:                map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}},
			}, nil
		},
	}

	err := testClient(fake).WaitForConfirmation(context.Background(), "sig")
	if err == nil {
		t.Fatal("WaitForConfirmation() = nil for a transaction that failed on chain")
	}
	if !strings.Contains(err.Error(), "failed on chain") {
		t.Errorf("WaitForConfirmation() error = %v, want on-chain failure", err)
	}
}

func TestWaitForConfirmationTimeout(t *testing.T) {
	fake := &fakeRPC{
		getSignatureStatus: func(ctx context.Context, signature string) (*rpc.SignatureStatus, error) {
			return nil, nil
		},
	}

	err := testClient(fake).WaitForConfirmation(context.Background(), "sig")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForConfirmation() error = %v, want deadline exceeded", err)
	}
}

func TestWaitForConfirmationToleratesPollErrors(t *testing.T) {
	confirmed := rpc.CommitmentConfirmed

	calls := 0
	fake := &fakeRPC{
		getSignatureStatus: func(ctx context.Context, signature string) (*rpc.SignatureStatus, error) {
			calls++
			if calls <= 2 {
				return nil, errors.New("transient rpc error")
			}
			return &rpc.SignatureStatus{ConfirmationStatus: &confirmed}, nil
		},
	}

	if err := testClient(fake).WaitForConfirmation(context.Background(), "sig"); err != nil {
		t.Fatalf("WaitForConfirmation() error = %v, want success after transient errors", err)
	}
}

func TestBalance(t *testing.T) {
	fake := &fakeRPC{
		getBalance: func(ctx context.Context, base58Addr string) (uint64, error) {
			return 1_500_000_000, nil
		},
	}

	lamports, err := testClient(fake).Balance(context.Background(), "addr")
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}
	if lamports != 1_500_000_000 {
		t.Errorf("Balance() = %d, want 1500000000", lamports)
	}
}

func TestLamportsToSOL(t *testing.T) {
	tests := []struct {
		lamports uint64
		want     string
	}{
		{0, "0"},
		{1, "0.000000001"},
		{1_000_000_000, "1"},
		{1_500_000_000, "1.5"},
		{2_345_678_901, "2.345678901"},
	}

	for _, tt := range tests {
		if got := LamportsToSOL(tt.lamports).String(); got != tt.want {
			t.Errorf("LamportsToSOL(%d) = %s, want %s", tt.lamports, got, tt.want)
		}
	}
}

func TestDefaultRPCURL(t *testing.T) {
	tests := []struct {
		network Network
		want    string
	}{
		{NetworkTestnet, "https://api.testnet.sonic.game"},
		{NetworkDevnet, "https://devnet.sonic.game"},
		{NetworkMainnet, "https://rpc.mainnet-alpha.sonic.game"},
		{Network("unknown"), "https://api.testnet.sonic.game"},
	}

	for _, tt := range tests {
		if got := DefaultRPCURL(tt.network); got != tt.want {
			t.Errorf("DefaultRPCURL(%s) = %s, want %s", tt.network, got, tt.want)
		}
	}
}

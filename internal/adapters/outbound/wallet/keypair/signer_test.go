//go:build !integration

package keypair

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"chainorg/internal/application/dto"
	"chainorg/internal/domain/policies"
	valueobjects "chainorg/internal/domain/value_objects"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

func newKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return key
}

// unsignedTransfer builds a transaction with payer at slot 0 and from at slot 1.
func unsignedTransfer(t *testing.T, payer solana.PublicKey, from solana.PublicKey) []byte {
	t.Helper()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(1000, from, solana.SystemProgramID).Build()},
		solana.Hash{1, 2, 3},
		solana.TransactionPayer(payer),
	)
	if err != nil {
		t.Fatalf("failed to build transaction: %v", err)
	}
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)
	raw, err := tx.MarshalBinary()
	if err != nil {
		t.Fatalf("failed to encode transaction: %v", err)
	}
	return raw
}

func TestSignerStatusWithoutKeys(t *testing.T) {
	signer, appErr := NewSigner(Config{})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}

	status := signer.Status(context.Background())
	if status.Ready || status.Reason != "wallet_not_configured" || len(status.EligibleKeys) != 0 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestSignerLoadsKeygenFileAndBase58Key(t *testing.T) {
	fileKey := newKey(t)
	envKey := newKey(t)

	ints := make([]int, len(fileKey))
	for i, b := range fileKey {
		ints[i] = int(b)
	}
	content, err := json.Marshal(ints)
	if err != nil {
		t.Fatalf("failed to encode keypair: %v", err)
	}
	path := filepath.Join(t.TempDir(), "id.json")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write keypair: %v", err)
	}

	signer, appErr := NewSigner(Config{KeypairPath: path, PrivateKey: envKey.String()})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}

	status := signer.Status(context.Background())
	if status.Ready || status.Reason != "wallet_signer_ambiguous" || len(status.EligibleKeys) != 2 {
		t.Fatalf("expected two eligible keys reported as ambiguous, got %+v", status)
	}
	if status.EligibleKeys[0] != fileKey.PublicKey().String() || status.EligibleKeys[1] != envKey.PublicKey().String() {
		t.Fatalf("unexpected key order: %+v", status.EligibleKeys)
	}
}

func TestSignerRejectsInvalidKeyMaterial(t *testing.T) {
	if _, appErr := NewSigner(Config{PrivateKey: "not-a-key"}); appErr == nil || appErr.Code != "wallet_private_key_invalid" {
		t.Fatalf("expected wallet_private_key_invalid, got %+v", appErr)
	}
	if _, appErr := NewSigner(Config{KeypairPath: filepath.Join(t.TempDir(), "missing.json")}); appErr == nil ||
		appErr.Code != "wallet_keypair_load_failed" {
		t.Fatalf("expected wallet_keypair_load_failed, got %+v", appErr)
	}
}

func TestSignerPartiallySignsAtSignerSlot(t *testing.T) {
	payer := newKey(t)
	wallet := newKey(t)
	signer := NewSignerFromKeys(wallet)

	signed, appErr := signer.Sign(context.Background(), dto.SignTransactionInput{
		SignerAddress: wallet.PublicKey().String(),
		Transaction:   unsignedTransfer(t, payer.PublicKey(), wallet.PublicKey()),
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(signed))
	if err != nil {
		t.Fatalf("failed to decode signed transaction: %v", err)
	}
	message, err := tx.Message.MarshalBinary()
	if err != nil {
		t.Fatalf("failed to encode message: %v", err)
	}
	if !tx.Signatures[0].IsZero() {
		t.Fatalf("expected payer slot to stay unsigned")
	}
	if !tx.Signatures[1].Verify(wallet.PublicKey(), message) {
		t.Fatalf("expected wallet signature at slot 1")
	}
}

func TestSignerRejectsKeyThatIsNotARequiredSigner(t *testing.T) {
	payer := newKey(t)
	from := newKey(t)
	wallet := newKey(t)
	signer := NewSignerFromKeys(wallet)

	_, appErr := signer.Sign(context.Background(), dto.SignTransactionInput{
		SignerAddress: wallet.PublicKey().String(),
		Transaction:   unsignedTransfer(t, payer.PublicKey(), from.PublicKey()),
	})
	if appErr == nil || appErr.Code != "wallet_not_required_signer" {
		t.Fatalf("expected wallet_not_required_signer, got %+v", appErr)
	}

	failure := policies.ClassifyStageFailure(valueobjects.RegistrationPhaseAwaitingSignature, appErr.Code, appErr.Message)
	if failure.Category != valueobjects.ErrorCategoryWalletNotReady || !failure.WalletMismatch {
		t.Fatalf("expected wallet mismatch failure, got %+v", failure)
	}
}

func TestSignerRejectsUnknownSignerAndGarbage(t *testing.T) {
	wallet := newKey(t)
	other := newKey(t)
	signer := NewSignerFromKeys(wallet)

	_, appErr := signer.Sign(context.Background(), dto.SignTransactionInput{
		SignerAddress: other.PublicKey().String(),
		Transaction:   []byte{1},
	})
	if appErr == nil || appErr.Code != "wallet_signer_unknown" {
		t.Fatalf("expected wallet_signer_unknown, got %+v", appErr)
	}

	_, appErr = signer.Sign(context.Background(), dto.SignTransactionInput{
		SignerAddress: wallet.PublicKey().String(),
		Transaction:   []byte{0xff, 0xff, 0xff},
	})
	if appErr == nil || appErr.Code != "prepared_transaction_decode_failed" {
		t.Fatalf("expected prepared_transaction_decode_failed, got %+v", appErr)
	}
}

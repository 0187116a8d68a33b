package keypair

import (
	"context"
	"strings"

	"chainorg/internal/application/dto"
	portsout "chainorg/internal/application/ports/out"
	apperrors "chainorg/internal/shared_kernel/errors"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

type Config struct {
	KeypairPath string
	PrivateKey  string
}

// Signer holds local ed25519 keypairs and partially signs prepared
// transactions at the signer slot of the configured key.
type Signer struct {
	keys map[solana.PublicKey]solana.PrivateKey
	// order keeps eligible keys stable across Status calls.
	order []solana.PublicKey
}

var _ portsout.WalletSigner = (*Signer)(nil)

func NewSigner(cfg Config) (*Signer, *apperrors.AppError) {
	signer := &Signer{keys: map[solana.PublicKey]solana.PrivateKey{}}

	if path := strings.TrimSpace(cfg.KeypairPath); path != "" {
		key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
		if err != nil {
			return nil, apperrors.NewInternal(
				"wallet_keypair_load_failed",
				"wallet keypair file could not be loaded",
				map[string]any{"path": path, "error": err.Error()},
			)
		}
		signer.add(key)
	}

	if raw := strings.TrimSpace(cfg.PrivateKey); raw != "" {
		key, err := solana.PrivateKeyFromBase58(raw)
		if err != nil {
			return nil, apperrors.NewInternal(
				"wallet_private_key_invalid",
				"wallet private key is not a valid base58 keypair",
				nil,
			)
		}
		signer.add(key)
	}

	return signer, nil
}

// NewSignerFromKeys is used by tools and tests that already hold keys.
func NewSignerFromKeys(keys ...solana.PrivateKey) *Signer {
	signer := &Signer{keys: map[solana.PublicKey]solana.PrivateKey{}}
	for _, key := range keys {
		signer.add(key)
	}
	return signer
}

func (s *Signer) add(key solana.PrivateKey) {
	public := key.PublicKey()
	if _, exists := s.keys[public]; exists {
		return
	}
	s.keys[public] = key
	s.order = append(s.order, public)
}

func (s *Signer) Status(_ context.Context) dto.WalletSignerStatus {
	if len(s.order) == 0 {
		return dto.WalletSignerStatus{Reason: "wallet_not_configured"}
	}

	eligible := make([]string, 0, len(s.order))
	for _, key := range s.order {
		eligible = append(eligible, key.String())
	}
	if len(eligible) > 1 {
		return dto.WalletSignerStatus{Reason: "wallet_signer_ambiguous", EligibleKeys: eligible}
	}
	return dto.WalletSignerStatus{Ready: true, EligibleKeys: eligible}
}

func (s *Signer) Sign(_ context.Context, input dto.SignTransactionInput) ([]byte, *apperrors.AppError) {
	signerAddress, err := solana.PublicKeyFromBase58(strings.TrimSpace(input.SignerAddress))
	if err != nil {
		return nil, apperrors.NewValidation(
			"wallet_signer_address_invalid",
			"wallet signer address is not a valid account address",
			map[string]any{"signer_address": input.SignerAddress},
		)
	}

	key, ok := s.keys[signerAddress]
	if !ok {
		return nil, apperrors.NewValidation(
			"wallet_signer_unknown",
			"wallet has no key for the requested signer",
			map[string]any{"signer_address": signerAddress.String()},
		)
	}

	if len(input.Transaction) == 0 {
		return nil, apperrors.NewValidation(
			"prepared_transaction_missing",
			"prepared transaction is required",
			nil,
		)
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(input.Transaction))
	if err != nil {
		return nil, apperrors.NewUpstream(
			"prepared_transaction_decode_failed",
			"prepared transaction serialization is invalid",
			map[string]any{"upstream_message": err.Error()},
		)
	}

	index, ok := signerIndex(tx, signerAddress)
	if !ok {
		return nil, apperrors.NewValidation(
			"wallet_not_required_signer",
			"wallet "+signerAddress.String()+" is not a required signer of the prepared transaction",
			map[string]any{"signer_address": signerAddress.String()},
		)
	}

	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, apperrors.NewInternal(
			"transaction_message_encode_failed",
			"failed to serialize transaction message",
			map[string]any{"upstream_message": err.Error()},
		)
	}

	signature, err := key.Sign(message)
	if err != nil {
		return nil, apperrors.NewInternal(
			"wallet_sign_failed",
			"wallet failed to sign the transaction",
			map[string]any{"upstream_message": err.Error()},
		)
	}

	required := int(tx.Message.Header.NumRequiredSignatures)
	for len(tx.Signatures) < required {
		tx.Signatures = append(tx.Signatures, solana.Signature{})
	}
	tx.Signatures[index] = signature

	signed, err := tx.MarshalBinary()
	if err != nil {
		return nil, apperrors.NewInternal(
			"signed_transaction_encode_failed",
			"failed to serialize signed transaction",
			map[string]any{"upstream_message": err.Error()},
		)
	}
	return signed, nil
}

// signerIndex returns the signature slot of key. Only the first
// NumRequiredSignatures account keys are signers.
func signerIndex(tx *solana.Transaction, key solana.PublicKey) (int, bool) {
	required := int(tx.Message.Header.NumRequiredSignatures)
	for index, account := range tx.Message.AccountKeys {
		if index >= required {
			break
		}
		if account.Equals(key) {
			return index, true
		}
	}
	return 0, false
}

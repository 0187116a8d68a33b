package walletkeys

import (
	"math"
	"strings"

	"github.com/gagliardetto/solana-go"
)

var (
	// SquadsMultisigProgramID is the Squads v4 multisig program.
	SquadsMultisigProgramID  = solana.MustPublicKeyFromBase58("SQDS4ep65T869zMMBKyuUq6aD6EgTu8psMjkvj52pCf")
	AssociatedTokenProgramID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	TokenProgramID           = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	Token2022ProgramID       = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
)

var (
	seedPrefix   = []byte("multisig")
	seedMultisig = []byte("multisig")
	seedVault    = []byte("vault")
)

// ParseAccount decodes a base58 account address.
func ParseAccount(raw string) (solana.PublicKey, *KeyError) {
	key, err := solana.PublicKeyFromBase58(strings.TrimSpace(raw))
	if err != nil {
		return solana.PublicKey{}, wrapKeyError(CodeInvalidAccountAddress, "account address is not a valid 32-byte base58 key", err)
	}
	return key, nil
}

// DeriveMultisig returns the multisig account address the Squads program
// creates for createKey.
func DeriveMultisig(createKey solana.PublicKey) (solana.PublicKey, *KeyError) {
	address, _, err := solana.FindProgramAddress(
		[][]byte{seedPrefix, seedMultisig, createKey.Bytes()},
		SquadsMultisigProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, wrapKeyError(CodeDerivationFailed, "failed to derive multisig address", err)
	}
	return address, nil
}

// DeriveVault returns the vault address holding assets for multisig at index.
// The program encodes the index as a single byte.
func DeriveVault(multisig solana.PublicKey, index uint32) (solana.PublicKey, *KeyError) {
	if index > math.MaxUint8 {
		return solana.PublicKey{}, wrapKeyError(CodeInvalidVaultIndex, "vault index must be between 0 and 255", nil)
	}

	address, _, err := solana.FindProgramAddress(
		[][]byte{seedPrefix, multisig.Bytes(), seedVault, {byte(index)}},
		SquadsMultisigProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, wrapKeyError(CodeDerivationFailed, "failed to derive vault address", err)
	}
	return address, nil
}

// DeriveTokenAccount returns the associated token account of owner for mint
// under tokenProgram. Program-derived owners have no private key and lie off
// the ed25519 curve; they are rejected unless allowOwnerOffCurve is set.
func DeriveTokenAccount(
	owner solana.PublicKey,
	mint solana.PublicKey,
	tokenProgram solana.PublicKey,
	allowOwnerOffCurve bool,
) (solana.PublicKey, *KeyError) {
	if !allowOwnerOffCurve && !solana.IsOnCurve(owner.Bytes()) {
		return solana.PublicKey{}, wrapKeyError(CodeOwnerOffCurve, "token account owner is off curve", nil)
	}

	address, _, err := solana.FindProgramAddress(
		[][]byte{owner.Bytes(), tokenProgram.Bytes(), mint.Bytes()},
		AssociatedTokenProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, wrapKeyError(CodeDerivationFailed, "failed to derive token account address", err)
	}
	return address, nil
}

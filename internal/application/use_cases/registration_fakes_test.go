//go:build !integration

package use_cases

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"chainorg/internal/application/dto"
	"chainorg/internal/domain/entities"
	valueobjects "chainorg/internal/domain/value_objects"
	apperrors "chainorg/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go"
)

var (
	testWallet    = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v").String()
	testCreateKey = solana.MustPublicKeyFromBase58("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB").String()
	testMultisig  = solana.MustPublicKeyFromBase58("2b1kV6DkPAnxd5ixfnxCpjxmKwqjjaYmCZfHsFwgVjV1").String()
	testSignature = solana.Signature{7, 7, 7, 1}.String()
)

type sequenceIDs struct {
	next int
}

func (s *sequenceIDs) generate() string {
	s.next++
	return "attempt-" + strconv.Itoa(s.next)
}

type fakeAttemptRepository struct {
	mu       sync.Mutex
	attempts map[string]entities.RegistrationAttempt
	phases   []string
	saveErr  *apperrors.AppError
	failAt   valueobjects.RegistrationPhase
	released []string
	claimed  []entities.RegistrationAttempt
}

func newFakeAttemptRepository() *fakeAttemptRepository {
	return &fakeAttemptRepository{attempts: map[string]entities.RegistrationAttempt{}}
}

func (f *fakeAttemptRepository) Save(_ context.Context, attempt entities.RegistrationAttempt) *apperrors.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saveErr != nil && (f.failAt == "" || f.failAt == attempt.Phase) {
		return f.saveErr
	}
	f.attempts[attempt.ID] = attempt
	f.phases = append(f.phases, attempt.Phase.String())
	return nil
}

func (f *fakeAttemptRepository) FindByID(_ context.Context, id string) (entities.RegistrationAttempt, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()

	attempt, ok := f.attempts[id]
	if !ok {
		return entities.RegistrationAttempt{}, apperrors.NewNotFound(
			"registration_attempt_not_found",
			"registration attempt not found",
			map[string]any{"attempt_id": id},
		)
	}
	return attempt, nil
}

func (f *fakeAttemptRepository) FindLatestByCaller(
	_ context.Context,
	callerID string,
) (entities.RegistrationAttempt, bool, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matches []entities.RegistrationAttempt
	for _, attempt := range f.attempts {
		if attempt.CallerID == callerID {
			matches = append(matches, attempt)
		}
	}
	if len(matches) == 0 {
		return entities.RegistrationAttempt{}, false, nil
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID > matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches[0], true, nil
}

func (f *fakeAttemptRepository) ClaimStalled(
	_ context.Context,
	_ time.Time,
	_ time.Time,
	limit int,
	_ string,
	_ time.Time,
) ([]entities.RegistrationAttempt, *apperrors.AppError) {
	if len(f.claimed) > limit {
		return f.claimed[:limit], nil
	}
	return f.claimed, nil
}

func (f *fakeAttemptRepository) ReleaseClaim(_ context.Context, id string, _ string) *apperrors.AppError {
	f.released = append(f.released, id)
	return nil
}

func (f *fakeAttemptRepository) put(attempt entities.RegistrationAttempt) {
	f.attempts[attempt.ID] = attempt
}

type fakeGuard struct {
	mu       sync.Mutex
	holders  map[string]string
	released int

	// onAcquire runs before the guard is granted, standing in for a flow
	// that finishes just as the next one starts.
	onAcquire func()
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{holders: map[string]string{}}
}

func (f *fakeGuard) Acquire(_ context.Context, callerID string, token string, _ time.Duration) (bool, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, held := f.holders[callerID]; held {
		return false, nil
	}
	if f.onAcquire != nil {
		f.onAcquire()
	}
	f.holders[callerID] = token
	return true, nil
}

func (f *fakeGuard) Release(_ context.Context, callerID string, token string) *apperrors.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.holders[callerID] == token {
		delete(f.holders, callerID)
		f.released++
	}
	return nil
}

type fakePreparation struct {
	output dto.PrepareRegistrationOutput
	err    *apperrors.AppError
	calls  int
	inputs []dto.PrepareRegistrationInput
}

func (f *fakePreparation) Prepare(
	_ context.Context,
	input dto.PrepareRegistrationInput,
) (dto.PrepareRegistrationOutput, *apperrors.AppError) {
	f.calls++
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return dto.PrepareRegistrationOutput{}, f.err
	}
	return f.output, nil
}

// fakeFinalization upserts organizations by create key.
type fakeFinalization struct {
	errs          []*apperrors.AppError
	calls         int
	inputs        []dto.FinalizeRegistrationInput
	organizations map[string]dto.OrganizationResource
}

func newFakeFinalization(errs ...*apperrors.AppError) *fakeFinalization {
	return &fakeFinalization{errs: errs, organizations: map[string]dto.OrganizationResource{}}
}

func (f *fakeFinalization) Finalize(
	_ context.Context,
	input dto.FinalizeRegistrationInput,
) (dto.OrganizationResource, *apperrors.AppError) {
	f.calls++
	f.inputs = append(f.inputs, input)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return dto.OrganizationResource{}, err
		}
	}

	if existing, ok := f.organizations[input.CreateKey]; ok {
		return existing, nil
	}
	organization := dto.OrganizationResource{
		ID:              "org-" + input.CreateKey[:6],
		CreateKey:       input.CreateKey,
		MultisigAddress: input.MultisigAddress,
		Signature:       input.Signature,
	}
	f.organizations[input.CreateKey] = organization
	return organization, nil
}

type fakeLedger struct {
	mu          sync.Mutex
	signature   string
	submitErr   *apperrors.AppError
	statuses    []dto.TransactionStatus
	statusErrs  []*apperrors.AppError
	blockHeight uint64
	submitCalls int
	statusCalls int
	submitted   [][]byte
}

func (f *fakeLedger) SubmitTransaction(_ context.Context, signed []byte) (string, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.submitCalls++
	f.submitted = append(f.submitted, signed)
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return f.signature, nil
}

// GetTransactionStatus replays statuses in order, repeating the last one.
func (f *fakeLedger) GetTransactionStatus(
	_ context.Context,
	_ string,
	_ valueobjects.CommitmentLevel,
) (dto.TransactionStatus, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()

	index := f.statusCalls
	f.statusCalls++
	if index < len(f.statusErrs) && f.statusErrs[index] != nil {
		return dto.TransactionStatus{}, f.statusErrs[index]
	}
	if len(f.statuses) == 0 {
		return dto.TransactionStatus{}, nil
	}
	if index >= len(f.statuses) {
		index = len(f.statuses) - 1
	}
	return f.statuses[index], nil
}

func (f *fakeLedger) GetBlockHeight(_ context.Context, _ valueobjects.CommitmentLevel) (uint64, *apperrors.AppError) {
	return f.blockHeight, nil
}

type fakeSigner struct {
	status dto.WalletSignerStatus
	err    *apperrors.AppError
	calls  int
}

func readySigner(keys ...string) *fakeSigner {
	return &fakeSigner{status: dto.WalletSignerStatus{Ready: true, EligibleKeys: keys}}
}

func ambiguousSigner(keys ...string) *fakeSigner {
	return &fakeSigner{status: dto.WalletSignerStatus{Reason: "wallet_signer_ambiguous", EligibleKeys: keys}}
}

func (f *fakeSigner) Status(_ context.Context) dto.WalletSignerStatus {
	return f.status
}

func (f *fakeSigner) Sign(_ context.Context, input dto.SignTransactionInput) ([]byte, *apperrors.AppError) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]byte("signed:"), input.Transaction...), nil
}

type fakeDeriver struct {
	multisig string
}

func (f fakeDeriver) Network() string {
	return "mainnet-beta"
}

func (f fakeDeriver) SupportedAssets() []dto.AssetResource {
	return []dto.AssetResource{{Code: "USDC"}, {Code: "USDT"}, {Code: "PYUSD"}}
}

func (f fakeDeriver) DeriveMultisig(_ string) (string, *apperrors.AppError) {
	return f.multisig, nil
}

func (f fakeDeriver) DeriveVault(multisig string, index uint32) (string, *apperrors.AppError) {
	if index > 255 {
		return "", apperrors.NewValidation("invalid_vault_index", "vault index is invalid", nil)
	}
	return "vault-" + multisig[:4], nil
}

func (f fakeDeriver) DeriveAssetAccount(owner string, assetID string, _ bool) (dto.RoutingAddress, *apperrors.AppError) {
	switch assetID {
	case "USDC", "USDT", "PYUSD":
		return dto.RoutingAddress{Asset: assetID, Address: owner + "-" + assetID}, nil
	}
	return dto.RoutingAddress{}, apperrors.NewValidation("unsupported_asset", "asset is not supported", nil)
}

type recordingMetrics struct {
	phases   []string
	outcomes []string
}

func (r *recordingMetrics) ObservePhase(phase string) {
	r.phases = append(r.phases, phase)
}

func (r *recordingMetrics) ObserveOutcome(outcome string, category string) {
	r.outcomes = append(r.outcomes, outcome+":"+category)
}

func (r *recordingMetrics) ObserveConfirmation(string, int, time.Duration) {}

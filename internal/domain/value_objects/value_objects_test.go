//go:build !integration

package valueobjects

import "testing"

func TestRegistrationPhaseTransitions(t *testing.T) {
	ordered := []RegistrationPhase{
		RegistrationPhaseIdle,
		RegistrationPhasePreparing,
		RegistrationPhaseAwaitingSignature,
		RegistrationPhaseSubmitting,
		RegistrationPhaseConfirming,
		RegistrationPhaseFinalizing,
		RegistrationPhaseComplete,
	}

	for index := 0; index < len(ordered)-1; index++ {
		from, to := ordered[index], ordered[index+1]
		if !from.CanTransitionTo(to) {
			t.Fatalf("expected %s -> %s to be allowed", from, to)
		}
		if index+2 < len(ordered) && from.CanTransitionTo(ordered[index+2]) {
			t.Fatalf("expected %s -> %s to be rejected", from, ordered[index+2])
		}
	}

	for _, phase := range ordered[1 : len(ordered)-1] {
		if !phase.CanTransitionTo(RegistrationPhaseFailed) {
			t.Fatalf("expected %s -> failed to be allowed", phase)
		}
		if !phase.IsInFlight() {
			t.Fatalf("expected %s to be in flight", phase)
		}
	}
	for _, phase := range []RegistrationPhase{RegistrationPhaseIdle, RegistrationPhaseComplete, RegistrationPhaseFailed} {
		if phase.CanTransitionTo(RegistrationPhaseFailed) {
			t.Fatalf("expected %s -> failed to be rejected", phase)
		}
		if phase.IsInFlight() {
			t.Fatalf("expected %s not to be in flight", phase)
		}
	}
	if RegistrationPhaseFailed.CanTransitionTo(RegistrationPhasePreparing) {
		t.Fatalf("expected failed to be terminal")
	}
}

func TestParseRegistrationPhase(t *testing.T) {
	if phase, appErr := ParseRegistrationPhase("awaiting_signature"); appErr != nil || phase != RegistrationPhaseAwaitingSignature {
		t.Fatalf("expected awaiting_signature, got %s %+v", phase, appErr)
	}
	if _, appErr := ParseRegistrationPhase("AwaitingSignature"); appErr == nil {
		t.Fatalf("expected unknown phase to be rejected")
	}
}

func TestCommitmentLevelSatisfies(t *testing.T) {
	testCases := []struct {
		have     CommitmentLevel
		required CommitmentLevel
		expected bool
	}{
		{have: CommitmentFinalized, required: CommitmentConfirmed, expected: true},
		{have: CommitmentConfirmed, required: CommitmentConfirmed, expected: true},
		{have: CommitmentProcessed, required: CommitmentConfirmed, expected: false},
		{have: CommitmentConfirmed, required: CommitmentFinalized, expected: false},
		{have: CommitmentLevel(""), required: CommitmentProcessed, expected: false},
	}

	for _, testCase := range testCases {
		if got := testCase.have.Satisfies(testCase.required); got != testCase.expected {
			t.Fatalf("expected %s satisfies %s = %t, got %t", testCase.have, testCase.required, testCase.expected, got)
		}
	}

	if _, appErr := ParseCommitmentLevel(" Finalized "); appErr != nil {
		t.Fatalf("expected finalized to parse, got %+v", appErr)
	}
	if _, appErr := ParseCommitmentLevel("recent"); appErr == nil {
		t.Fatalf("expected recent to be rejected")
	}
}

func TestRegistrationFailureMessages(t *testing.T) {
	categories := []ErrorCategory{
		ErrorCategoryWalletNotReady,
		ErrorCategoryTransactionSubmission,
		ErrorCategoryBlockchainConfirmation,
		ErrorCategoryKnownSerializationIssue,
		ErrorCategoryFinalization,
		ErrorCategoryUnknown,
	}
	seen := map[string]bool{}
	for _, category := range categories {
		parsed, appErr := ParseErrorCategory(category.String())
		if appErr != nil || parsed != category {
			t.Fatalf("expected %s to round trip, got %s %+v", category, parsed, appErr)
		}

		message := RegistrationFailure{Category: category}.UserMessage()
		if message == "" || seen[message] {
			t.Fatalf("expected a distinct message for %s, got %q", category, message)
		}
		seen[message] = true
	}

	mismatch := RegistrationFailure{Category: ErrorCategoryFinalization, WalletMismatch: true}
	if mismatch.Retryable() || seen[mismatch.UserMessage()] {
		t.Fatalf("expected mismatch to be non-retryable with its own message")
	}
	if _, appErr := ParseErrorCategory("network"); appErr == nil {
		t.Fatalf("expected unknown category to be rejected")
	}
}

func TestNormalizeAsset(t *testing.T) {
	if asset, appErr := NormalizeAsset(" usdc "); appErr != nil || asset != "USDC" {
		t.Fatalf("expected USDC, got %q %+v", asset, appErr)
	}
	mint := "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	if asset, appErr := NormalizeAsset(mint); appErr != nil || asset != mint {
		t.Fatalf("expected mint to be kept, got %q %+v", asset, appErr)
	}
	if _, appErr := NormalizeAsset("usd coin"); appErr == nil {
		t.Fatalf("expected invalid asset to be rejected")
	}
}

func TestNormalizeAccountAddress(t *testing.T) {
	if _, appErr := NormalizeAccountAddress("wallet_address", ""); appErr == nil || appErr.Code != "invalid_request" {
		t.Fatalf("expected invalid_request for empty address, got %+v", appErr)
	}
	if _, appErr := NormalizeAccountAddress("wallet_address", "0xabc"); appErr == nil || appErr.Code != "invalid_account_address" {
		t.Fatalf("expected invalid_account_address, got %+v", appErr)
	}
	if _, appErr := NormalizeTransactionSignature("short"); appErr == nil {
		t.Fatalf("expected invalid signature to be rejected")
	}
}

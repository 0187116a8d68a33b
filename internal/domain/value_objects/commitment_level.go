package valueobjects

import (
	"strings"

	apperrors "chainorg/internal/shared_kernel/errors"
)

type CommitmentLevel string

const (
	CommitmentProcessed CommitmentLevel = "processed"
	CommitmentConfirmed CommitmentLevel = "confirmed"
	CommitmentFinalized CommitmentLevel = "finalized"
)

var commitmentRank = map[CommitmentLevel]int{
	CommitmentProcessed: 1,
	CommitmentConfirmed: 2,
	CommitmentFinalized: 3,
}

func ParseCommitmentLevel(raw string) (CommitmentLevel, *apperrors.AppError) {
	level := CommitmentLevel(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := commitmentRank[level]; !ok {
		return "", apperrors.NewValidation(
			"commitment_level_invalid",
			"commitment level must be processed, confirmed or finalized",
			map[string]any{"commitment": raw},
		)
	}

	return level, nil
}

// Satisfies reports whether c is at or above required. Unknown levels satisfy nothing.
func (c CommitmentLevel) Satisfies(required CommitmentLevel) bool {
	have, ok := commitmentRank[c]
	if !ok {
		return false
	}
	want, ok := commitmentRank[required]
	if !ok {
		return false
	}
	return have >= want
}

func (c CommitmentLevel) String() string {
	return string(c)
}

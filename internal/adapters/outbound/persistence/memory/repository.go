package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	portsout "chainorg/internal/application/ports/out"
	"chainorg/internal/domain/entities"
	apperrors "chainorg/internal/shared_kernel/errors"
)

type lease struct {
	owner string
	until time.Time
}

// Repository keeps registration attempts in process memory. It backs local
// runs and tests; attempts do not survive a restart.
type Repository struct {
	mu         sync.Mutex
	attempts   map[string]entities.RegistrationAttempt
	createKeys map[string]string
	leases     map[string]lease
}

var (
	_ portsout.RegistrationAttemptRepository        = (*Repository)(nil)
	_ portsout.RegistrationReconciliationRepository = (*Repository)(nil)
)

func NewRepository() *Repository {
	return &Repository{
		attempts:   map[string]entities.RegistrationAttempt{},
		createKeys: map[string]string{},
		leases:     map[string]lease{},
	}
}

func (r *Repository) Save(_ context.Context, attempt entities.RegistrationAttempt) *apperrors.AppError {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.attempts[attempt.ID]; ok && existing.CallerID != attempt.CallerID {
		return apperrors.NewConflict(
			"registration_attempt_owner_mismatch",
			"registration attempt belongs to a different caller",
			map[string]any{"attempt_id": attempt.ID},
		)
	}

	createKey := strings.TrimSpace(attempt.CreateKey)
	if createKey != "" {
		if ownerID, ok := r.createKeys[createKey]; ok && ownerID != attempt.ID {
			return apperrors.NewConflict(
				"registration_create_key_conflict",
				"create key already belongs to another registration attempt",
				map[string]any{"attempt_id": attempt.ID, "create_key": createKey},
			)
		}
		r.createKeys[createKey] = attempt.ID
	}

	if existing, ok := r.attempts[attempt.ID]; ok {
		attempt.CreatedAt = existing.CreatedAt
	}
	r.attempts[attempt.ID] = cloneAttempt(attempt)
	return nil
}

func (r *Repository) FindByID(_ context.Context, id string) (entities.RegistrationAttempt, *apperrors.AppError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	attempt, ok := r.attempts[strings.TrimSpace(id)]
	if !ok {
		return entities.RegistrationAttempt{}, apperrors.NewNotFound(
			"registration_attempt_not_found",
			"registration attempt not found",
			map[string]any{"attempt_id": id},
		)
	}
	return cloneAttempt(attempt), nil
}

func (r *Repository) FindLatestByCaller(
	_ context.Context,
	callerID string,
) (entities.RegistrationAttempt, bool, *apperrors.AppError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	callerID = strings.TrimSpace(callerID)
	var (
		latest entities.RegistrationAttempt
		found  bool
	)
	for _, attempt := range r.attempts {
		if attempt.CallerID != callerID {
			continue
		}
		if !found || newer(attempt, latest) {
			latest = attempt
			found = true
		}
	}
	if !found {
		return entities.RegistrationAttempt{}, false, nil
	}
	return cloneAttempt(latest), true, nil
}

func (r *Repository) ClaimStalled(
	_ context.Context,
	now time.Time,
	staleBefore time.Time,
	limit int,
	leaseOwner string,
	leaseUntil time.Time,
) ([]entities.RegistrationAttempt, *apperrors.AppError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	candidates := make([]entities.RegistrationAttempt, 0)
	for id, attempt := range r.attempts {
		if !attempt.Phase.IsInFlight() || attempt.UpdatedAt.After(staleBefore) {
			continue
		}
		if current, leased := r.leases[id]; leased && current.until.After(now) {
			continue
		}
		candidates = append(candidates, attempt)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].UpdatedAt.Equal(candidates[j].UpdatedAt) {
			return candidates[i].ID < candidates[j].ID
		}
		return candidates[i].UpdatedAt.Before(candidates[j].UpdatedAt)
	})
	if limit >= 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	claimed := make([]entities.RegistrationAttempt, 0, len(candidates))
	for _, attempt := range candidates {
		r.leases[attempt.ID] = lease{owner: strings.TrimSpace(leaseOwner), until: leaseUntil.UTC()}
		claimed = append(claimed, cloneAttempt(attempt))
	}
	return claimed, nil
}

func (r *Repository) ReleaseClaim(_ context.Context, id string, leaseOwner string) *apperrors.AppError {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.leases[id]; ok && current.owner == strings.TrimSpace(leaseOwner) {
		delete(r.leases, id)
	}
	return nil
}

func newer(a, b entities.RegistrationAttempt) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func cloneAttempt(attempt entities.RegistrationAttempt) entities.RegistrationAttempt {
	out := attempt
	out.OrganizationProfile = cloneMap(attempt.OrganizationProfile)
	out.OrganizationData = cloneMap(attempt.OrganizationData)
	out.PreparedTransaction = append([]byte(nil), attempt.PreparedTransaction...)
	if attempt.Failure != nil {
		failure := *attempt.Failure
		out.Failure = &failure
	}
	return out
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}

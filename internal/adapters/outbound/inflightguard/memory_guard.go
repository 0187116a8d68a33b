package inflightguard

import (
	"context"
	"strings"
	"sync"
	"time"

	portsout "chainorg/internal/application/ports/out"
	apperrors "chainorg/internal/shared_kernel/errors"
)

type hold struct {
	token     string
	expiresAt time.Time
}

// MemoryGuard is the single-process guard used when no redis url is set.
type MemoryGuard struct {
	mu    sync.Mutex
	now   func() time.Time
	holds map[string]hold
}

var _ portsout.InFlightGuard = (*MemoryGuard)(nil)

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{now: time.Now, holds: map[string]hold{}}
}

func (g *MemoryGuard) Acquire(_ context.Context, callerID string, token string, ttl time.Duration) (bool, *apperrors.AppError) {
	if appErr := validateHold(callerID, token, ttl); appErr != nil {
		return false, appErr
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	key := strings.TrimSpace(callerID)
	now := g.now()
	if current, held := g.holds[key]; held && current.expiresAt.After(now) {
		return false, nil
	}
	g.holds[key] = hold{token: token, expiresAt: now.Add(ttl)}
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, callerID string, token string) *apperrors.AppError {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := strings.TrimSpace(callerID)
	if current, held := g.holds[key]; held && current.token == token {
		delete(g.holds, key)
	}
	return nil
}

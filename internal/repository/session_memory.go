package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

type memorySession struct {
	state     entity.GameState
	expiresAt time.Time
}

type memSession struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	ttl      time.Duration
	now      func() time.Time

	// evictions done outside Sweep, reported by the next Sweep
	evicted int
}

// NewMemorySessionRepository keeps sessions in process memory. A zero ttl never expires.
// Expired sessions are dropped on access and by Sweep.
func NewMemorySessionRepository(ttl time.Duration) ExpiringSessionRepository {
	return &memSession{
		sessions: make(map[string]memorySession),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (that *memSession) Save(_ context.Context, id string, state entity.GameState) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	var expiresAt time.Time
	if that.ttl > 0 {
		expiresAt = that.now().Add(that.ttl)
	}

	that.sessions[id] = memorySession{state: state, expiresAt: expiresAt}

	return nil
}

func (that *memSession) GetByID(_ context.Context, id string) (entity.GameState, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[id]
	if !ok {
		return entity.GameState{}, apperror.ErrSessionNotFound
	}

	if that.expired(session) {
		delete(that.sessions, id)
		that.evicted++

		return entity.GameState{}, apperror.ErrSessionNotFound
	}

	return session.state, nil
}

func (that *memSession) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[id]
	if !ok {
		return apperror.ErrSessionNotFound
	}

	delete(that.sessions, id)

	if that.expired(session) {
		that.evicted++
		return apperror.ErrSessionNotFound
	}

	return nil
}

// Sweep drops every expired session and returns how many expired sessions were dropped
// since the previous call.
func (that *memSession) Sweep() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	evicted := that.evicted
	that.evicted = 0

	for id, session := range that.sessions {
		if that.expired(session) {
			delete(that.sessions, id)
			evicted++
		}
	}

	return evicted
}

func (that *memSession) expired(session memorySession) bool {
	return !session.expiresAt.IsZero() && that.now().After(session.expiresAt)
}

package repository

import (
	"context"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

// SessionRepository keeps the game state of live sessions. Entries expire with the session.
type SessionRepository interface {
	Save(ctx context.Context, id string, state entity.GameState) error
	GetByID(ctx context.Context, id string) (entity.GameState, error)
	DeleteByID(ctx context.Context, id string) error
}

// ExpiringSessionRepository is a SessionRepository that must drop expired sessions itself.
type ExpiringSessionRepository interface {
	SessionRepository
	Sweep() int
}

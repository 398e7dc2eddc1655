package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/viewmodel"
)

type GameUseCase interface {
	NewSession(ctx context.Context) (string, viewmodel.GameView, error)
	GetSession(ctx context.Context, sessionID string) (viewmodel.GameView, error)
	EndSession(ctx context.Context, sessionID string) error

	Play(ctx context.Context, sessionID string, cell int) (PlayResult, error)
	JumpTo(ctx context.Context, sessionID string, step int) (viewmodel.GameView, error)
}

// PlayResult carries the read model after a play. Applied is false when the move was absorbed.
type PlayResult struct {
	View    viewmodel.GameView
	Applied bool
}

type sessionRepo interface {
	Save(ctx context.Context, id string, state entity.GameState) error
	GetByID(ctx context.Context, id string) (entity.GameState, error)
	DeleteByID(ctx context.Context, id string) error
}

// sessionLock is dropped from the map once no command holds or waits on it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

type gameUseCase struct {
	logger      *slog.Logger
	metrics     *metrics.Metrics
	sessionRepo sessionRepo

	locksMu sync.Mutex
	locks   map[string]*sessionLock
	newID   func() string
}

func NewGameUseCase(logger *slog.Logger, m *metrics.Metrics, sessionRepo sessionRepo) GameUseCase {
	return &gameUseCase{
		logger:      logger.With("component", "usecase"),
		metrics:     m,
		sessionRepo: sessionRepo,
		locks:       make(map[string]*sessionLock),
		newID:       uuid.NewString,
	}
}

func (that *gameUseCase) NewSession(ctx context.Context) (string, viewmodel.GameView, error) {
	sessionID := that.newID()
	state := entity.NewGameState()

	if err := that.sessionRepo.Save(ctx, sessionID, state); err != nil {
		that.metrics.ObserveCommand(metrics.CommandNew, metrics.ResultFailed)
		return "", viewmodel.GameView{}, fmt.Errorf("failed to save new session: %w", err)
	}

	that.metrics.ObserveCommand(metrics.CommandNew, metrics.ResultApplied)
	that.metrics.SessionOpened()
	that.logger.Info("session created", "sessionID", sessionID)

	return sessionID, viewmodel.NewGameView(state), nil
}

func (that *gameUseCase) GetSession(ctx context.Context, sessionID string) (viewmodel.GameView, error) {
	state, err := that.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return viewmodel.GameView{}, fmt.Errorf("failed to get session: %w", err)
	}

	return viewmodel.NewGameView(state), nil
}

func (that *gameUseCase) EndSession(ctx context.Context, sessionID string) error {
	unlock := that.lock(sessionID)
	defer unlock()

	if err := that.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		that.metrics.ObserveCommand(metrics.CommandEnd, metrics.ResultFailed)
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.metrics.ObserveCommand(metrics.CommandEnd, metrics.ResultApplied)
	that.metrics.SessionClosed()
	that.logger.Info("session ended", "sessionID", sessionID)

	return nil
}

func (that *gameUseCase) Play(ctx context.Context, sessionID string, cell int) (PlayResult, error) {
	log := that.logger.With("method", "Play", "sessionID", sessionID, "cell", cell)

	unlock := that.lock(sessionID)
	defer unlock()

	state, err := that.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		that.metrics.ObserveCommand(metrics.CommandPlay, metrics.ResultFailed)
		return PlayResult{}, fmt.Errorf("failed to get session: %w", err)
	}

	engine := tictactoe.NewEngineFrom(state)
	if !engine.Play(cell) {
		that.metrics.ObserveCommand(metrics.CommandPlay, metrics.ResultIgnored)
		log.Debug("move ignored")

		return PlayResult{View: viewmodel.NewGameView(state)}, nil
	}

	next := engine.State()
	if err = that.sessionRepo.Save(ctx, sessionID, next); err != nil {
		that.metrics.ObserveCommand(metrics.CommandPlay, metrics.ResultFailed)
		return PlayResult{}, fmt.Errorf("failed to save session: %w", err)
	}

	status := engine.Status()
	that.metrics.ObserveCommand(metrics.CommandPlay, metrics.ResultApplied)
	that.metrics.ObserveMove(next.Len(), finishedOutcome(status))
	log.Debug("move applied", "step", next.CurrentStep, "status", status.String())

	return PlayResult{View: viewmodel.NewGameView(next), Applied: true}, nil
}

func (that *gameUseCase) JumpTo(ctx context.Context, sessionID string, step int) (viewmodel.GameView, error) {
	unlock := that.lock(sessionID)
	defer unlock()

	state, err := that.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		that.metrics.ObserveCommand(metrics.CommandJump, metrics.ResultFailed)
		return viewmodel.GameView{}, fmt.Errorf("failed to get session: %w", err)
	}

	engine := tictactoe.NewEngineFrom(state)
	if err = engine.JumpTo(step); err != nil {
		that.metrics.ObserveCommand(metrics.CommandJump, metrics.ResultFailed)

		if errors.Is(err, apperror.ErrStepOutOfRange) {
			that.logger.Warn("jump out of range", "sessionID", sessionID, "step", step, "historyLength", state.Len())
		}

		return viewmodel.GameView{}, fmt.Errorf("failed to jump: %w", err)
	}

	next := engine.State()
	if err = that.sessionRepo.Save(ctx, sessionID, next); err != nil {
		that.metrics.ObserveCommand(metrics.CommandJump, metrics.ResultFailed)
		return viewmodel.GameView{}, fmt.Errorf("failed to save session: %w", err)
	}

	that.metrics.ObserveCommand(metrics.CommandJump, metrics.ResultApplied)

	return viewmodel.NewGameView(next), nil
}

// lock serializes commands for one session.
func (that *gameUseCase) lock(sessionID string) func() {
	that.locksMu.Lock()
	entry, ok := that.locks[sessionID]
	if !ok {
		entry = &sessionLock{}
		that.locks[sessionID] = entry
	}
	entry.refs++
	that.locksMu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		that.locksMu.Lock()
		defer that.locksMu.Unlock()

		entry.refs--
		if entry.refs == 0 {
			delete(that.locks, sessionID)
		}
	}
}

func finishedOutcome(status entity.Status) string {
	if status.IsInProgress() {
		return ""
	}

	return status.Outcome
}

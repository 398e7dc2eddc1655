package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/repository"
)

var errRedisDown = errors.New("redis down")

type mockSessionRepo struct {
	mock.Mock
}

func (that *mockSessionRepo) Save(ctx context.Context, id string, state entity.GameState) error {
	args := that.Called(ctx, id, state)
	return args.Error(0)
}

func (that *mockSessionRepo) GetByID(ctx context.Context, id string) (entity.GameState, error) {
	args := that.Called(ctx, id)
	return args.Get(0).(entity.GameState), args.Error(1) //nolint: forcetypeassert // test double
}

func (that *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

func newTestUseCase(t *testing.T, repo sessionRepo) (*gameUseCase, *metrics.Metrics) {
	t.Helper()

	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	uc, ok := NewGameUseCase(logger, m, repo).(*gameUseCase)
	require.True(t, ok)

	return uc, m
}

func TestGameUseCase_NewSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores the initial state", func(t *testing.T) {
		// Given: a repository accepting the new session
		repo := &mockSessionRepo{}
		uc, m := newTestUseCase(t, repo)
		uc.newID = func() string { return "session-1" }

		repo.On("Save", mock.Anything, "session-1", entity.NewGameState()).Return(nil).Once()

		// When: a session is created
		id, view, err := uc.NewSession(ctx)

		// Then: the id and initial read model are returned
		require.NoError(t, err)
		assert.Equal(t, "session-1", id)
		assert.Equal(t, "Next player: X", view.Status)
		assert.InDelta(t, 1, testutil.ToFloat64(m.SessionsOpened), 0)
		repo.AssertExpectations(t)
	})

	t.Run("Returns error when storage fails", func(t *testing.T) {
		repo := &mockSessionRepo{}
		uc, m := newTestUseCase(t, repo)

		repo.On("Save", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(errRedisDown).Once()

		_, _, err := uc.NewSession(ctx)

		require.ErrorIs(t, err, errRedisDown)
		assert.InDelta(t, 0, testutil.ToFloat64(m.SessionsOpened), 0)
	})
}

func TestGameUseCase_Play(t *testing.T) {
	ctx := context.Background()

	t.Run("Applied move is saved", func(t *testing.T) {
		// Given: an empty game
		repo := &mockSessionRepo{}
		uc, m := newTestUseCase(t, repo)

		repo.On("GetByID", mock.Anything, "s").Return(entity.NewGameState(), nil).Once()
		repo.On("Save", mock.Anything, "s", mock.MatchedBy(func(state entity.GameState) bool {
			return state.Len() == 2 && state.CurrentStep == 1 && state.CurrentBoard()[4] == entity.PlayerX
		})).Return(nil).Once()

		// When: X plays the center
		result, err := uc.Play(ctx, "s", 4)

		// Then: the move is applied
		require.NoError(t, err)
		assert.True(t, result.Applied)
		assert.Equal(t, "X", result.View.Board[4])
		assert.Equal(t, "Next player: O", result.View.Status)
		assert.InDelta(t, 1, testutil.ToFloat64(m.Commands.WithLabelValues(metrics.CommandPlay, metrics.ResultApplied)), 0)
		repo.AssertExpectations(t)
	})

	t.Run("Illegal move is absorbed without saving", func(t *testing.T) {
		// Given: a game where cell 0 is occupied
		repo := &mockSessionRepo{}
		uc, m := newTestUseCase(t, repo)

		state := entity.GameState{
			History: []entity.HistoryEntry{{}, {Board: entity.Board{entity.PlayerX}}},
			CurrentStep: 1,
		}
		repo.On("GetByID", mock.Anything, "s").Return(state, nil).Once()

		// When: cell 0 is played again
		result, err := uc.Play(ctx, "s", 0)

		// Then: no error, nothing saved, state unchanged
		require.NoError(t, err)
		assert.False(t, result.Applied)
		assert.Equal(t, "X", result.View.Board[0])
		assert.InDelta(t, 1, testutil.ToFloat64(m.Commands.WithLabelValues(metrics.CommandPlay, metrics.ResultIgnored)), 0)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown session", func(t *testing.T) {
		repo := &mockSessionRepo{}
		uc, _ := newTestUseCase(t, repo)

		repo.On("GetByID", mock.Anything, "missing").Return(entity.GameState{}, apperror.ErrSessionNotFound).Once()

		_, err := uc.Play(ctx, "missing", 0)

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}

func TestGameUseCase_SessionLocks(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown sessions leave no lock behind", func(t *testing.T) {
		// Given: a repository that knows no session
		repo := &mockSessionRepo{}
		uc, _ := newTestUseCase(t, repo)

		repo.On("GetByID", mock.Anything, mock.Anything).Return(entity.GameState{}, apperror.ErrSessionNotFound)

		// When: commands name 1000 random ids
		for i := 0; i < 1000; i++ {
			_, err := uc.Play(ctx, fmt.Sprintf("nope-%d", i), 0)
			require.ErrorIs(t, err, apperror.ErrSessionNotFound)

			_, err = uc.JumpTo(ctx, fmt.Sprintf("nope-%d", i), 0)
			require.ErrorIs(t, err, apperror.ErrSessionNotFound)
		}

		// Then: the lock map is empty
		assert.Empty(t, uc.locks)
	})

	t.Run("Concurrent plays on one session are serialized", func(t *testing.T) {
		// Given: a session backed by the memory repository
		uc, _ := newTestUseCase(t, repository.NewMemorySessionRepository(time.Hour))
		id, _, err := uc.NewSession(ctx)
		require.NoError(t, err)

		// When: many goroutines play every cell at once
		var (
			wg      sync.WaitGroup
			applied atomic.Int32
		)

		for i := 0; i < 45; i++ {
			i := i
			wg.Add(1)

			go func() {
				defer wg.Done()

				result, playErr := uc.Play(ctx, id, i%entity.BoardSize)
				if playErr == nil && result.Applied {
					applied.Add(1)
				}
			}()
		}

		wg.Wait()

		// Then: every applied move is in the history and no lock is left
		view, err := uc.GetSession(ctx, id)
		require.NoError(t, err)
		assert.Len(t, view.MoveList, int(applied.Load())+1)
		assert.Empty(t, uc.locks)

		require.NoError(t, uc.EndSession(ctx, id))
		assert.Empty(t, uc.locks)
	})
}

func TestGameUseCase_JumpTo(t *testing.T) {
	ctx := context.Background()

	t.Run("Out of range step is reported", func(t *testing.T) {
		repo := &mockSessionRepo{}
		uc, _ := newTestUseCase(t, repo)

		repo.On("GetByID", mock.Anything, "s").Return(entity.NewGameState(), nil).Once()

		_, err := uc.JumpTo(ctx, "s", 3)

		require.ErrorIs(t, err, apperror.ErrStepOutOfRange)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Storage failure on save", func(t *testing.T) {
		repo := &mockSessionRepo{}
		uc, _ := newTestUseCase(t, repo)

		repo.On("GetByID", mock.Anything, "s").Return(entity.NewGameState(), nil).Once()
		repo.On("Save", mock.Anything, "s", mock.Anything).Return(errRedisDown).Once()

		_, err := uc.JumpTo(ctx, "s", 0)

		require.ErrorIs(t, err, errRedisDown)
	})
}

func TestGameUseCase_TimeTravel(t *testing.T) {
	ctx := context.Background()

	// Given: a session backed by the memory repository
	uc, _ := newTestUseCase(t, repository.NewMemorySessionRepository(time.Hour))
	id, _, err := uc.NewSession(ctx)
	require.NoError(t, err)

	// When: X wins the first column
	for _, cell := range []int{0, 1, 3, 2, 6} {
		result, err := uc.Play(ctx, id, cell)
		require.NoError(t, err)
		require.True(t, result.Applied)
	}

	view, err := uc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Winner: X", view.Status)
	assert.Len(t, view.MoveList, 6)

	// Then: a late move is absorbed
	result, err := uc.Play(ctx, id, 4)
	require.NoError(t, err)
	assert.False(t, result.Applied)

	// When: jumping to the start and playing again
	view, err = uc.JumpTo(ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, [9]string{}, view.Board)
	assert.Equal(t, "Next player: X", view.Status)
	assert.Len(t, view.MoveList, 6)

	result, err = uc.Play(ctx, id, 0)
	require.NoError(t, err)

	// Then: the later history is discarded
	assert.True(t, result.Applied)
	assert.Len(t, result.View.MoveList, 2)

	// When: the session ends
	require.NoError(t, uc.EndSession(ctx, id))

	// Then: it is gone
	_, err = uc.GetSession(ctx, id)
	require.ErrorIs(t, err, apperror.ErrSessionNotFound)
}

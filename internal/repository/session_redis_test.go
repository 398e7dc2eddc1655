package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-timetravel/testing/suite"
)

func sampleState() entity.GameState {
	state := entity.NewGameState()
	for _, cell := range []int{4, 0, 8} {
		state = tictactoe.Play(state, cell)
	}

	state, _ = tictactoe.JumpTo(state, 1)

	return state
}

func TestSessionRepository_Save(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewSessionRepository(st.Storage, time.Hour)

	// When: Save is called
	err := sessionRepo.Save(ctx, "123", sampleState())

	// Then: the key is stored with a TTL
	require.NoError(t, err)

	ttl, err := st.Storage.TTL(ctx, "session:123").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestSessionRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, time.Hour)

		// Given: a saved state viewed at an earlier step
		state := sampleState()
		require.NoError(t, sessionRepo.Save(ctx, "123", state))

		// When: GetByID is called
		retrieved, err := sessionRepo.GetByID(ctx, "123")

		// Then: history and viewed step round-trip
		require.NoError(t, err)
		assert.Equal(t, state, retrieved)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, time.Hour)

		_, err := sessionRepo.GetByID(ctx, "9999999")

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}

func TestSessionRepository_DeleteByID(t *testing.T) {
	t.Run("DeleteByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, time.Hour)
		require.NoError(t, sessionRepo.Save(ctx, "123", sampleState()))

		// When: DeleteByID is called with an existing ID
		err := sessionRepo.DeleteByID(ctx, "123")

		// Then: the session is gone
		require.NoError(t, err)

		_, err = sessionRepo.GetByID(ctx, "123")
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, time.Hour)

		err := sessionRepo.DeleteByID(ctx, "9999999")

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}

package application

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/config"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

func TestNewSessionRepository(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ignore := func(int) {}

	t.Run("Memory driver", func(t *testing.T) {
		// Given: the memory driver
		conf := &config.Config{Storage: config.Storage{Driver: config.StorageMemory, SessionTTL: time.Hour}}

		// When: building the repository
		repo, closeStorage, err := newSessionRepository(ctx, logger, conf, ignore)

		// Then: it stores sessions
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, "id", entity.NewGameState()))
		assert.NoError(t, closeStorage())
	})

	t.Run("Memory driver sweeps expired sessions", func(t *testing.T) {
		// Given: the memory driver with a short TTL and sweep interval
		sweepCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		conf := &config.Config{Storage: config.Storage{
			Driver:        config.StorageMemory,
			SessionTTL:    time.Millisecond,
			SweepInterval: time.Millisecond,
		}}
		expired := make(chan int, 16)

		repo, _, err := newSessionRepository(sweepCtx, logger, conf, func(n int) {
			if n > 0 {
				expired <- n
			}
		})
		require.NoError(t, err)

		// When: a session is left alone
		require.NoError(t, repo.Save(ctx, "id", entity.NewGameState()))

		// Then: the sweeper reports it
		select {
		case n := <-expired:
			assert.Equal(t, 1, n)
		case <-time.After(5 * time.Second):
			t.Fatal("expired session was not swept")
		}
	})

	t.Run("Redis driver without host", func(t *testing.T) {
		conf := &config.Config{Storage: config.Storage{Driver: config.StorageRedis}}

		_, _, err := newSessionRepository(ctx, logger, conf, ignore)

		require.ErrorIs(t, err, ErrAddrNotFound)
	})

	t.Run("Unknown driver", func(t *testing.T) {
		conf := &config.Config{Storage: config.Storage{Driver: "sqlite"}}

		_, _, err := newSessionRepository(ctx, logger, conf, ignore)

		require.ErrorIs(t, err, ErrUnknownStorageType)
	})
}

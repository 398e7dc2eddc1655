package viewmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

func TestNewGameView(t *testing.T) {
	t.Run("Initial state", func(t *testing.T) {
		// Given: a new game
		view := NewGameView(entity.NewGameState())

		// Then: the board is empty and the move list holds the start entry
		assert.Equal(t, [9]string{}, view.Board)
		assert.Equal(t, "Next player: X", view.Status)
		assert.Equal(t, entity.OutcomeInProgress, view.Outcome)
		assert.Equal(t, "X", view.NextMark)
		assert.Empty(t, view.Winner)
		assert.Equal(t, []Move{{Step: 0, Label: "Go to game start"}}, view.MoveList)
	})

	t.Run("Viewed step after a jump", func(t *testing.T) {
		// Given: a won game viewed at step 1
		engine := tictactoe.NewEngine()
		for _, cell := range []int{0, 1, 3, 2, 6} {
			engine.Play(cell)
		}
		require.NoError(t, engine.JumpTo(1))

		// When: projecting it
		view := NewGameView(engine.State())

		// Then: the viewed board and full move list are rendered
		assert.Equal(t, [9]string{"X"}, view.Board)
		assert.Equal(t, "Next player: O", view.Status)
		assert.Equal(t, 1, view.CurrentStep)
		require.Len(t, view.MoveList, 6)
		assert.Equal(t, Move{Step: 5, Label: "Go to move #5"}, view.MoveList[5])
	})

	t.Run("Decided game", func(t *testing.T) {
		engine := tictactoe.NewEngine()
		for _, cell := range []int{0, 1, 3, 2, 6} {
			engine.Play(cell)
		}

		view := NewGameView(engine.State())

		assert.Equal(t, "Winner: X", view.Status)
		assert.Equal(t, entity.OutcomeDecided, view.Outcome)
		assert.Equal(t, "X", view.Winner)
		assert.Empty(t, view.NextMark)
	})
}

func TestMoveLabel(t *testing.T) {
	assert.Equal(t, "Go to game start", MoveLabel(0))
	assert.Equal(t, "Go to move #3", MoveLabel(3))
}

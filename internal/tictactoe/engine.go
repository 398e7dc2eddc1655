package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

// Play places the mark of whoever moves at the current step and returns the new state.
// Moves from an earlier step drop every entry after it. An illegal move (game decided,
// cell occupied or outside the board) returns the state unchanged.
func Play(state entity.GameState, cell int) entity.GameState {
	next, _ := play(state, cell)
	return next
}

func play(state entity.GameState, cell int) (entity.GameState, bool) {
	if cell < 0 || cell >= entity.BoardSize {
		return state, false
	}

	activeHistory := state.History[:state.CurrentStep+1]
	board := activeHistory[len(activeHistory)-1].Board

	if Evaluate(board) != entity.Empty || board[cell] != entity.Empty {
		return state, false
	}

	mark := entity.MarkForStep(len(activeHistory) - 1)

	// fresh backing array so earlier snapshots never share memory with the new one
	history := make([]entity.HistoryEntry, len(activeHistory), len(activeHistory)+1)
	copy(history, activeHistory)
	history = append(history, entity.HistoryEntry{Board: board.With(cell, mark)})

	return entity.GameState{
		History:     history,
		CurrentStep: len(activeHistory),
	}, true
}

// JumpTo moves the viewed step. History is left as is until the next Play.
func JumpTo(state entity.GameState, step int) (entity.GameState, error) {
	if step < 0 || step >= len(state.History) {
		return state, fmt.Errorf("%w: step %d, history length %d", apperror.ErrStepOutOfRange, step, len(state.History))
	}

	return entity.GameState{
		History:     state.History,
		CurrentStep: step,
	}, nil
}

// DeriveStatus computes the status of the viewed board.
func DeriveStatus(state entity.GameState) entity.Status {
	board := state.CurrentBoard()

	if winner := Evaluate(board); winner != entity.Empty {
		return entity.Status{Outcome: entity.OutcomeDecided, Winner: winner}
	}

	if board.IsFull() {
		return entity.Status{Outcome: entity.OutcomeDrawn}
	}

	return entity.Status{Outcome: entity.OutcomeInProgress, Next: state.NextMark()}
}

// Engine owns the authoritative state of a single game. It is not safe for concurrent use.
type Engine struct {
	state entity.GameState
}

func NewEngine() *Engine {
	return &Engine{state: entity.NewGameState()}
}

// NewEngineFrom resumes a game from a previously produced state.
func NewEngineFrom(state entity.GameState) *Engine {
	return &Engine{state: state}
}

// Play reports whether the move was applied.
func (that *Engine) Play(cell int) bool {
	next, applied := play(that.state, cell)
	that.state = next

	return applied
}

func (that *Engine) JumpTo(step int) error {
	next, err := JumpTo(that.state, step)
	if err != nil {
		return err
	}

	that.state = next

	return nil
}

// State returns a snapshot whose history does not share memory with the engine.
func (that *Engine) State() entity.GameState {
	history := make([]entity.HistoryEntry, len(that.state.History))
	copy(history, that.state.History)

	return entity.GameState{History: history, CurrentStep: that.state.CurrentStep}
}

func (that *Engine) Status() entity.Status {
	return DeriveStatus(that.state)
}

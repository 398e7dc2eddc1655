package entity

import (
	"errors"
	"fmt"
)

// Mark is the symbol occupying a cell. Empty marks a free cell.
type Mark uint8

const (
	Empty Mark = iota
	PlayerX
	PlayerO
)

const BoardSize = 9

var ErrUnknownMark = errors.New("unknown mark")

func (that Mark) String() string {
	switch that {
	case PlayerX:
		return "X"
	case PlayerO:
		return "O"
	default:
		return ""
	}
}

// Opponent returns the other player's mark. Empty stays Empty.
func (that Mark) Opponent() Mark {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return Empty
	}
}

func (that Mark) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Mark) UnmarshalText(text []byte) error {
	switch string(text) {
	case "X":
		*that = PlayerX
	case "O":
		*that = PlayerO
	case "":
		*that = Empty
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMark, text)
	}

	return nil
}

// Board is a row-major 3x3 grid. It is a value type: assigning it copies every cell.
type Board [BoardSize]Mark

// With returns a copy of the board with cell set to mark.
func (that Board) With(cell int, mark Mark) Board {
	that[cell] = mark
	return that
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == Empty {
			return false
		}
	}

	return true
}

func (that Board) Strings() [BoardSize]string {
	var out [BoardSize]string
	for i, cell := range that {
		out[i] = cell.String()
	}

	return out
}

type HistoryEntry struct {
	Board Board `json:"board"`
}

// GameState is replaced as a whole on every command; entries are never edited after creation.
type GameState struct {
	History     []HistoryEntry `json:"history"`
	CurrentStep int            `json:"current_step"`
}

// NewGameState returns the initial state: a single all-empty board at step 0.
func NewGameState() GameState {
	return GameState{
		History:     []HistoryEntry{{}},
		CurrentStep: 0,
	}
}

// NextMark is derived from the step parity: X moves on even steps.
func (that GameState) NextMark() Mark {
	return MarkForStep(that.CurrentStep)
}

func (that GameState) CurrentBoard() Board {
	return that.History[that.CurrentStep].Board
}

func (that GameState) Len() int {
	return len(that.History)
}

func MarkForStep(step int) Mark {
	if step%2 == 0 {
		return PlayerX
	}
	return PlayerO
}

// Package viewmodel projects a game state into the read model handed to view layers.
package viewmodel

import (
	"strconv"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

type Move struct {
	Step  int    `json:"step"`
	Label string `json:"label"`
}

type GameView struct {
	Board       [entity.BoardSize]string `json:"board"`
	Status      string                   `json:"status"`
	Outcome     string                   `json:"outcome"`
	Winner      string                   `json:"winner,omitempty"`
	NextMark    string                   `json:"next_mark,omitempty"`
	CurrentStep int                      `json:"current_step"`
	MoveList    []Move                   `json:"move_list"`
}

// NewGameView is recomputed from the state on every call; nothing is cached.
func NewGameView(state entity.GameState) GameView {
	status := tictactoe.DeriveStatus(state)

	view := GameView{
		Board:       state.CurrentBoard().Strings(),
		Status:      status.String(),
		Outcome:     status.Outcome,
		Winner:      status.Winner.String(),
		NextMark:    status.Next.String(),
		CurrentStep: state.CurrentStep,
		MoveList:    make([]Move, len(state.History)),
	}

	for step := range state.History {
		view.MoveList[step] = Move{Step: step, Label: MoveLabel(step)}
	}

	return view
}

func MoveLabel(step int) string {
	if step == 0 {
		return "Go to game start"
	}

	return "Go to move #" + strconv.Itoa(step)
}

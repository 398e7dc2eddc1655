// Package tui renders the game read model in a terminal and turns key presses into commands.
package tui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/viewmodel"
)

const boardSide = 3

type GameUI struct {
	app    *tview.Application
	engine *tictactoe.Engine

	Root   *tview.Flex
	Board  *tview.Table
	Moves  *tview.List
	Status *tview.TextView
}

func NewGameUI(app *tview.Application, engine *tictactoe.Engine) *GameUI {
	ui := &GameUI{
		app:    app,
		engine: engine,
		Board:  tview.NewTable(),
		Moves:  tview.NewList(),
		Status: tview.NewTextView(),
	}

	ui.Board.SetBorders(true).SetSelectable(true, true)
	ui.Board.SetSelectedFunc(func(row, column int) {
		ui.Play(row*boardSide + column)
	})
	ui.Board.SetBorder(true).SetTitle(" Board ")

	ui.Moves.ShowSecondaryText(false)
	ui.Moves.SetBorder(true).SetTitle(" Moves ")

	ui.Status.SetBorder(true)

	info := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.Status, 3, 0, false).
		AddItem(ui.Moves, 0, 1, false)

	ui.Root = tview.NewFlex().
		AddItem(ui.Board, 0, 1, true).
		AddItem(info, 0, 1, false)

	ui.Root.SetInputCapture(ui.handleKey)

	ui.render()

	return ui
}

func (that *GameUI) Play(cell int) {
	that.engine.Play(cell)
	that.render()
}

func (that *GameUI) JumpTo(step int) {
	if err := that.engine.JumpTo(step); err != nil {
		// the move list only offers recorded steps
		that.Status.SetText(err.Error())
		return
	}

	that.render()
}

// render projects the engine state onto the widgets; it keeps no state of its own.
func (that *GameUI) render() {
	view := viewmodel.NewGameView(that.engine.State())

	for cell, mark := range view.Board {
		text := mark
		if text == "" {
			text = " "
		}

		that.Board.SetCell(cell/boardSide, cell%boardSide,
			tview.NewTableCell(" "+text+" ").
				SetAlign(tview.AlignCenter).
				SetExpansion(1))
	}

	that.Status.SetText(view.Status)

	that.Moves.Clear()
	for _, move := range view.MoveList {
		that.Moves.AddItem(move.Label, "", 0, func() {
			that.JumpTo(move.Step)
		})
	}
	that.Moves.SetCurrentItem(view.CurrentStep)
}

func (that *GameUI) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch {
	case event.Key() == tcell.KeyTab:
		if that.Board.HasFocus() {
			that.app.SetFocus(that.Moves)
		} else {
			that.app.SetFocus(that.Board)
		}

		return nil
	case event.Rune() == 'q':
		that.app.Stop()
		return nil
	}

	return event
}

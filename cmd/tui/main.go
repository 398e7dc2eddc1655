package main

import (
	"fmt"
	"os"

	"github.com/rivo/tview"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tui"
)

// main - plays a local game in the terminal. Enter places a mark or jumps, Tab switches panes, q quits.
func main() {
	app := tview.NewApplication()
	ui := tui.NewGameUI(app, tictactoe.NewEngine())

	if err := app.SetRoot(ui.Root, true).SetFocus(ui.Board).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "terminal ui failed: %v\n", err)
		os.Exit(1)
	}
}

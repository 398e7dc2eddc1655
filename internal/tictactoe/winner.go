package tictactoe

import "github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"

// WinCombos lists rows, then columns, then both diagonals.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Evaluate returns the mark owning the first complete line, or entity.Empty when there is none.
// It does not tell a draw from a game in progress; see entity.Board.IsFull.
func Evaluate(board entity.Board) entity.Mark {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.Empty && a == b && b == c {
			return a
		}
	}

	return entity.Empty
}

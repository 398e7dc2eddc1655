package entity

const (
	OutcomeInProgress = "in_progress"
	OutcomeDecided    = "decided"
	OutcomeDrawn      = "drawn"
)

// Status is derived from a GameState on every read and never stored alongside it.
type Status struct {
	Outcome string
	Winner  Mark
	Next    Mark
}

func (that Status) IsDecided() bool {
	return that.Outcome == OutcomeDecided
}

func (that Status) IsDrawn() bool {
	return that.Outcome == OutcomeDrawn
}

func (that Status) IsInProgress() bool {
	return that.Outcome == OutcomeInProgress
}

func (that Status) String() string {
	switch that.Outcome {
	case OutcomeDecided:
		return "Winner: " + that.Winner.String()
	case OutcomeDrawn:
		return "Draw"
	default:
		return "Next player: " + that.Next.String()
	}
}

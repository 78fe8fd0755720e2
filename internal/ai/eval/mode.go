package eval

import "github.com/emberdeck/duelist/internal/game"

// StrategicMode is the stance of an attack phase.
type StrategicMode int

const (
	ModeAggro StrategicMode = iota
	ModeDefensive
)

// defensiveControlRatio is the control ratio below which the AI turtles.
const defensiveControlRatio = 0.9

func (m StrategicMode) String() string {
	if m == ModeDefensive {
		return "DEFENSIVE"
	}
	return "AGGRO"
}

// DeriveMode picks the stance for an attack phase from a fresh snapshot.
// Finishing the opponent beats protecting ourselves.
func DeriveMode(state *game.BoardState) StrategicMode {
	if state == nil {
		return ModeAggro
	}
	if state.SelfLethal || state.OpponentCriticalHealth {
		return ModeAggro
	}
	if state.LethalNextTurn || state.CriticalHealth {
		return ModeDefensive
	}
	if state.ControlRatio() < defensiveControlRatio {
		return ModeDefensive
	}
	return ModeAggro
}

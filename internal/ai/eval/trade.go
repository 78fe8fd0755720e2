package eval

import (
	"github.com/emberdeck/duelist/internal/config"
	"github.com/emberdeck/duelist/internal/game"
	"go.uber.org/zap"
)

// Trade ratio adjustments.
const (
	strongControl    = 1.5
	weakControl      = 0.7
	controlAdjust    = 0.2
	lateGameTurn     = 8
	veryLateGameTurn = 12
	lateGameAdjust   = 0.15
	veryLateAdjust   = 0.25
	initiativeAdjust = 0.1
	selfCriticalAdj  = 0.2
	enemyCriticalAdj = 0.1
)

// TradeEvaluator decides whether losing an attacker to kill a defender is
// worth it.
type TradeEvaluator struct {
	cfg    config.TradeConfig
	logger *zap.Logger
}

// NewTradeEvaluator validates cfg and creates a TradeEvaluator.
func NewTradeEvaluator(cfg config.TradeConfig, logger *zap.Logger) (*TradeEvaluator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TradeEvaluator{cfg: cfg, logger: logger}, nil
}

// AcceptableRatio returns the minimum defender/attacker value ratio for the
// current situation, clamped to the configured bounds.
func (e *TradeEvaluator) AcceptableRatio(state *game.BoardState) float64 {
	ratio := e.cfg.BaseRatio
	if state == nil {
		return clamp(ratio, e.cfg.MinRatio, e.cfg.MaxRatio)
	}

	switch cr := state.ControlRatio(); {
	case cr >= strongControl:
		ratio += controlAdjust
	case cr <= weakControl:
		ratio -= controlAdjust
	}

	switch {
	case state.TurnCount >= veryLateGameTurn:
		ratio -= veryLateAdjust
	case state.TurnCount >= lateGameTurn:
		ratio -= lateGameAdjust
	}

	if state.IsOpponentFirstNextTurn {
		ratio -= initiativeAdjust
	}
	if state.CriticalHealth {
		ratio -= selfCriticalAdj
	}
	if state.OpponentCriticalHealth {
		ratio -= enemyCriticalAdj
	}
	return clamp(ratio, e.cfg.MinRatio, e.cfg.MaxRatio)
}

// IsValuableTrade reports whether trading attacker for defender is
// acceptable. High-threat defenders are always worth removing.
func (e *TradeEvaluator) IsValuableTrade(attacker, defender game.Unit, state *game.BoardState) bool {
	if defender.Attack >= e.cfg.HighThreatAttack {
		return true
	}
	av := EntityValue(&attacker)
	if av <= 0 {
		return true
	}
	dv := EntityValue(&defender)
	ratio := e.AcceptableRatio(state)
	ok := dv/av >= ratio
	e.logger.Debug("trade evaluated",
		zap.String("attacker", attacker.ID),
		zap.String("defender", defender.ID),
		zap.Float64("attacker_value", av),
		zap.Float64("defender_value", dv),
		zap.Float64("required_ratio", ratio),
		zap.Bool("valuable", ok))
	return ok
}

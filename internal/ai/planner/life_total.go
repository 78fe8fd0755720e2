package planner

import (
	"github.com/emberdeck/duelist/internal/ai/eval"
	"github.com/emberdeck/duelist/internal/ai/variance"
	"github.com/emberdeck/duelist/internal/config"
	"github.com/emberdeck/duelist/internal/game"
	"go.uber.org/zap"
)

// Reasons attached to life-total decisions and plan entries.
const (
	ReasonLethal        = "lethal"
	ReasonTauntClear    = "taunt_clear"
	ReasonBestTarget    = "best_target"
	ReasonSplash        = "splash"
	ReasonMistake       = "mistake"
	ReasonSafeStrike    = "safe_strike"
	ReasonPressure      = "pressure"
	ReasonSetup         = "setup"
	ReasonOpen          = "open"
	ReasonTauntVeto     = "taunt_veto"
	ReasonUnitPreferred = "unit_preferred"
)

// LifeTotalInput is what the policy needs to judge a direct strike.
type LifeTotalInput struct {
	Attacker      game.Unit
	SelfUnits     []game.Unit
	Defenders     []game.Unit
	LifeTotal     int
	HasUnitTarget bool
	State         *game.BoardState
}

// LifeTotalDecision is the outcome of the policy.
type LifeTotalDecision struct {
	Strike bool
	Reason string
}

// LifeTotalPolicy decides whether an attacker without a profitable unit
// target strikes the opposing life total.
type LifeTotalPolicy struct {
	cfg      config.AttackConfig
	variance *variance.Variance
	logger   *zap.Logger
}

// NewLifeTotalPolicy creates a LifeTotalPolicy.
func NewLifeTotalPolicy(cfg config.AttackConfig, v *variance.Variance, logger *zap.Logger) *LifeTotalPolicy {
	if logger == nil {
		logger = zap.NewNop()
	}
	if v == nil {
		v = variance.Disabled()
	}
	return &LifeTotalPolicy{cfg: cfg, variance: v, logger: logger}
}

// Decide applies the precedence: mistake, safe strike, pressure, setup,
// then the open default. A living Taunt unit vetoes every strike.
func (p *LifeTotalPolicy) Decide(in LifeTotalInput) LifeTotalDecision {
	d := p.decide(in)
	p.logger.Debug("life total decision",
		zap.String("attacker", in.Attacker.ID),
		zap.Int("life_total", in.LifeTotal),
		zap.Bool("strike", d.Strike),
		zap.String("reason", d.Reason))
	return d
}

func (p *LifeTotalPolicy) decide(in LifeTotalInput) LifeTotalDecision {
	if game.HasTaunt(in.Defenders) || in.LifeTotal <= 0 || !in.Attacker.CanAttack() {
		return LifeTotalDecision{Reason: ReasonTauntVeto}
	}

	if p.variance.FaceMistake() {
		return LifeTotalDecision{Strike: true, Reason: ReasonMistake}
	}

	self := game.AliveUnits(in.SelfUnits)
	if len(self) == 1 {
		strongest := 0
		for i := range in.Defenders {
			if in.Defenders[i].Alive() && in.Defenders[i].Attack > strongest {
				strongest = in.Defenders[i].Attack
			}
		}
		if float64(in.Attacker.Health) >= p.cfg.SafeFaceHealthFactor*float64(strongest) {
			return LifeTotalDecision{Strike: true, Reason: ReasonSafeStrike}
		}
	}

	if in.State != nil {
		if in.State.IsOpponentFirstNextTurn && eval.IsCritical(in.LifeTotal, in.State.OpponentMaxHealth, p.cfg) {
			return LifeTotalDecision{Strike: true, Reason: ReasonPressure}
		}
		if !in.State.IsOpponentFirstNextTurn && in.LifeTotal-in.Attacker.Attack <= game.ProjectedDamage(self) {
			return LifeTotalDecision{Strike: true, Reason: ReasonSetup}
		}
	}

	if !in.HasUnitTarget {
		return LifeTotalDecision{Strike: true, Reason: ReasonOpen}
	}
	return LifeTotalDecision{Reason: ReasonUnitPreferred}
}

package eval

import (
	"math"

	"github.com/emberdeck/duelist/internal/config"
	"github.com/emberdeck/duelist/internal/game"
	"go.uber.org/zap"
)

// Unit value weights.
const (
	attackWeight = 1.2

	tauntBase          = 0.10
	tauntPerHealth     = 0.02
	rangedBase         = 0.15
	rangedPerAttack    = 0.03
	toughBase          = 0.10
	toughPerHealth     = 0.02
	overwhelmBase      = 0.10
	overwhelmPerAttack = 0.03
	keywordBonusCap    = 0.5

	woundedRatio = 0.5
	woundedFloor = 0.7
	readyFactor  = 1.2
	synergyBonus = 3.0
)

// Contextual factors.
const (
	presenceRatio  = 2
	presenceBonus  = 1.15
	formationBonus = 1.10

	handWeight = 0.03
	handCap    = 0.15
	manaWeight = 0.02
	manaCap    = 0.10

	earlyTurn         = 3
	lateTurn          = 8
	earlyHealthWeight = 0.5
	midHealthWeight   = 1.0
	lateHealthWeight  = 1.5
	healthSwing       = 0.4
	criticalRatio     = 0.3
	criticalPenalty   = 0.15
	criticalFloor     = 0.5

	lethalBonus     = 1.5
	initiativeBonus = 1.10
	pressureBonus   = 1.10
	pressureShare   = 0.5
)

// BoardEvaluator scores board control for both sides of a snapshot. It is
// the game.ControlEvaluator used whenever a BoardState is built.
type BoardEvaluator struct {
	critical config.AttackConfig
	logger   *zap.Logger
}

// NewBoardEvaluator creates a BoardEvaluator. critical supplies the critical
// health thresholds.
func NewBoardEvaluator(critical config.AttackConfig, logger *zap.Logger) *BoardEvaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoardEvaluator{critical: critical, logger: logger}
}

// UnitValue scores a single living unit.
func (e *BoardEvaluator) UnitValue(u *game.Unit) float64 {
	if !u.Alive() {
		return 0
	}
	atk := float64(u.Attack)
	hp := float64(u.Health)

	mult := 1.0
	if u.Has(game.KeywordTaunt) {
		mult *= 1 + math.Min(tauntBase+tauntPerHealth*hp, keywordBonusCap)
	}
	if u.Has(game.KeywordRanged) {
		mult *= 1 + math.Min(rangedBase+rangedPerAttack*atk, keywordBonusCap)
	}
	if u.Has(game.KeywordTough) {
		mult *= 1 + math.Min(toughBase+toughPerHealth*hp, keywordBonusCap)
	}
	if u.Has(game.KeywordOverwhelm) {
		mult *= 1 + math.Min(overwhelmBase+overwhelmPerAttack*atk, keywordBonusCap)
	}
	if r := u.HealthRatio(); r < woundedRatio {
		mult *= math.Max(woundedFloor, 0.4+1.2*r)
	}
	if u.RemainingAttacks > 0 {
		mult *= readyFactor
	}

	value := (atk*attackWeight + hp) * mult
	if k := u.Keywords.Count(); k >= 2 {
		value += synergyBonus * float64(k-1)
	}
	return sanitize(value)
}

// Evaluate returns the raw control score of one side's units. The sum is
// divided by the square root of the unit count, so spreading the same stats
// over more bodies scores lower.
func (e *BoardEvaluator) Evaluate(units []game.Unit, side game.Side) float64 {
	sum := 0.0
	n := 0
	for i := range units {
		if !units[i].Alive() {
			continue
		}
		sum += e.UnitValue(&units[i])
		n++
	}
	if n == 0 {
		return 0
	}
	score := sanitize(sum / math.Sqrt(float64(n)))
	e.logger.Debug("evaluated side",
		zap.Stringer("side", side),
		zap.Int("units", n),
		zap.Float64("score", score))
	return score
}

// ApplyControl implements game.ControlEvaluator: flags, raw control, then
// contextual factors.
func (e *BoardEvaluator) ApplyControl(s *game.BoardState) {
	if s == nil {
		return
	}
	e.Flags(s)
	s.SelfBoardControl = e.Evaluate(s.SelfUnits, s.SelfSide)
	s.OpponentBoardControl = e.Evaluate(s.OpponentUnits, s.SelfSide.Opponent())
	e.ApplyContextualFactors(s)
}

// Control returns both control scores of a snapshot without mutating it.
func (e *BoardEvaluator) Control(s *game.BoardState) (self, opponent float64) {
	if s == nil {
		return 0, 0
	}
	c := s.Clone()
	e.ApplyControl(c)
	return c.SelfBoardControl, c.OpponentBoardControl
}

// Flags computes the lethal and critical-health flags.
func (e *BoardEvaluator) Flags(s *game.BoardState) {
	if s == nil {
		return
	}
	s.CriticalHealth = IsCritical(s.SelfHealth, s.SelfMaxHealth, e.critical)
	s.OpponentCriticalHealth = IsCritical(s.OpponentHealth, s.OpponentMaxHealth, e.critical)
	s.SelfLethal = game.IsLethal(game.AvailableDamage(s.SelfUnits), s.OpponentUnits, s.OpponentHealth)
	s.LethalNextTurn = game.IsLethal(game.ProjectedDamage(s.OpponentUnits), s.SelfUnits, s.SelfHealth)
}

// ApplyContextualFactors scales the two control scalars by board presence,
// formation, resources, health, lethal threats and turn order. Only
// SelfBoardControl and OpponentBoardControl are written.
func (e *BoardEvaluator) ApplyContextualFactors(s *game.BoardState) {
	if s == nil {
		return
	}
	self, opp := s.SelfBoardControl, s.OpponentBoardControl
	nSelf, nOpp := len(game.AliveUnits(s.SelfUnits)), len(game.AliveUnits(s.OpponentUnits))

	// Presence.
	if nSelf >= 2 && nSelf >= presenceRatio*nOpp {
		self *= presenceBonus
	}
	if nOpp >= 2 && nOpp >= presenceRatio*nSelf {
		opp *= presenceBonus
	}

	// Formation.
	if hasFormation(s.SelfUnits) {
		self *= formationBonus
	}
	if hasFormation(s.OpponentUnits) {
		opp *= formationBonus
	}

	// Resources.
	resource := clamp(float64(s.SelfHandSize-s.OpponentHandSize)*handWeight, -handCap, handCap) +
		clamp(float64(s.SelfMana-s.OpponentMana)*manaWeight, -manaCap, manaCap)
	self *= 1 + resource
	opp *= 1 - resource

	// Health.
	weight := healthWeight(s.TurnCount)
	self *= healthFactor(s.SelfHealthRatio(), weight)
	opp *= healthFactor(s.OpponentHealthRatio(), weight)

	// Lethal override.
	if s.SelfLethal {
		self *= lethalBonus
	}
	// The opponent's threat only lands first when it opens the next round.
	if s.LethalNextTurn && s.IsOpponentFirstNextTurn {
		opp *= lethalBonus
	}

	// Turn order.
	if s.IsOpponentFirstNextTurn {
		opp *= initiativeBonus
		if float64(game.ProjectedDamage(s.OpponentUnits)) >= pressureShare*float64(s.SelfHealth) {
			opp *= pressureBonus
		}
	} else {
		self *= initiativeBonus
		if float64(game.ProjectedDamage(s.SelfUnits)) >= pressureShare*float64(s.OpponentHealth) {
			self *= pressureBonus
		}
	}

	s.SelfBoardControl = sanitize(self)
	s.OpponentBoardControl = sanitize(opp)
}

func hasFormation(units []game.Unit) bool {
	taunt, ranged := false, false
	for i := range units {
		if !units[i].Alive() {
			continue
		}
		taunt = taunt || units[i].Has(game.KeywordTaunt)
		ranged = ranged || units[i].Has(game.KeywordRanged)
	}
	return taunt && ranged
}

func healthWeight(turn int) float64 {
	switch {
	case turn <= earlyTurn:
		return earlyHealthWeight
	case turn >= lateTurn:
		return lateHealthWeight
	default:
		return midHealthWeight
	}
}

func healthFactor(ratio, weight float64) float64 {
	f := 1 + weight*healthSwing*(ratio-0.5)
	if ratio <= criticalRatio {
		f *= math.Max(criticalFloor, 1-criticalPenalty*weight)
	}
	return math.Max(0, f)
}

package eval

import (
	"math"

	"github.com/emberdeck/duelist/internal/game"
	"github.com/emberdeck/duelist/internal/game/targeting"
	"go.uber.org/zap"
)

const (
	minCardScore = -50.0
	maxCardScore = 250.0
	lethalSpell  = 200.0
)

// CardEvaluator scores cards in hand and picks spell targets.
type CardEvaluator struct {
	effects    EffectScorer
	highThreat int
	logger     *zap.Logger
}

// NewCardEvaluator creates a CardEvaluator. highThreat is the attack at which
// an enemy unit is worth weakening at any price.
func NewCardEvaluator(effects EffectScorer, highThreat int, logger *zap.Logger) *CardEvaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CardEvaluator{effects: effects, highThreat: highThreat, logger: logger}
}

// Score returns how much playing card now is worth. Unplayable targeted
// spells score zero.
func (e *CardEvaluator) Score(card game.Card, state *game.BoardState) float64 {
	if state == nil {
		return 0
	}
	var score float64
	if card.IsMonster() {
		score = e.monsterScore(card, state)
	} else {
		var ok bool
		score, ok = e.spellScore(card, state)
		if !ok {
			return 0
		}
	}
	score = clamp(sanitize(score), minCardScore, maxCardScore)
	e.logger.Debug("card scored",
		zap.String("card", card.ID),
		zap.String("name", card.Name),
		zap.Int("cost", card.ManaCost),
		zap.Float64("score", score))
	return score
}

// BestTarget returns the legal target maximizing the card's targeted
// effects. It re-reads the snapshot every call.
func (e *CardEvaluator) BestTarget(card game.Card, state *game.BoardState) (game.Unit, bool) {
	req := targeting.RequirementFor(card)
	if !req.IsTargeted() || state == nil {
		return game.Unit{}, false
	}
	legal := targeting.LegalTargets(card, state)
	if len(legal) == 0 {
		return game.Unit{}, false
	}
	best := legal[0]
	bestScore := e.TargetScore(card, best, state)
	for _, t := range legal[1:] {
		if s := e.TargetScore(card, t, state); s > bestScore {
			best, bestScore = t, s
		}
	}
	return best, true
}

// TargetScore scores the effects of card that land on its chosen target.
func (e *CardEvaluator) TargetScore(card game.Card, target game.Unit, state *game.BoardState) float64 {
	req := targeting.RequirementFor(card)
	score := 0.0
	for _, effect := range card.Effects {
		if targeting.EffectTarget(effect) != req.Type {
			continue
		}
		score += e.unitEffectScore(effect, card, target)
	}
	return sanitize(score)
}

func (e *CardEvaluator) monsterScore(card game.Card, state *game.BoardState) float64 {
	value := float64(card.Attack)*2 + float64(card.Health)*1.5

	kw := 0.0
	if card.Keywords.Has(game.KeywordTaunt) {
		kw += 4
		if state.LethalNextTurn || state.CriticalHealth {
			kw += 8
		}
	}
	if card.Keywords.Has(game.KeywordRanged) {
		kw += 5
	}
	if card.Keywords.Has(game.KeywordTough) {
		kw += 4
	}
	if card.Keywords.Has(game.KeywordOverwhelm) {
		kw += 3 + 2*math.Max(0, float64(len(state.OpponentUnits)-1))
	}

	cost := math.Max(1, float64(card.ManaCost))
	score := (value+kw)*2 + (value+kw)/cost*4
	if len(state.SelfUnits) == 0 {
		score += 8
	}
	if state.TurnCount <= 3 && card.ManaCost <= 2 {
		score += 4
	}
	return score
}

func (e *CardEvaluator) spellScore(card game.Card, state *game.BoardState) (float64, bool) {
	req := targeting.RequirementFor(card)
	score := 0.0

	if req.IsTargeted() {
		target, ok := e.BestTarget(card, state)
		if !ok {
			return 0, false
		}
		score += e.TargetScore(card, target, state)
	}

	friendly, hasFriendly := targeting.AutoFriendlyTarget(state.SelfUnits)
	for _, effect := range card.Effects {
		switch targeting.EffectTarget(effect) {
		case targeting.TargetTypeNone:
			score += e.untargetedScore(effect, card, state)
		case targeting.TargetTypeFriendlyUnit:
			// Friendly riders of an enemy-targeted spell land on the
			// automatic friendly target.
			if req.Type == targeting.TargetTypeEnemyUnit && hasFriendly {
				score += e.unitEffectScore(effect, card, friendly)
			}
		}
		if e.effects != nil {
			score += e.effects.ScoreEffect(effect, state)
		}
	}
	return score, true
}

func (e *CardEvaluator) unitEffectScore(effect game.EffectType, card game.Card, t game.Unit) float64 {
	v := card.EffectValue
	temporary := card.Duration > 0
	switch effect {
	case game.EffectDamage:
		dealt := game.DamageTaken(&t, v)
		if dealt >= t.Health {
			return 20 + EntityValue(&t)*2
		}
		return float64(dealt)*2 + float64(t.Attack)
	case game.EffectBurn:
		tick := game.DamageTaken(&t, v)
		total := tick * game.BurnTicks(card)
		switch {
		case tick >= t.Health:
			return 18 + EntityValue(&t)*1.8
		case total >= t.Health:
			return 12 + EntityValue(&t)*1.5
		default:
			return float64(total) * 1.5
		}
	case game.EffectDebuff:
		cut := math.Min(float64(v), float64(t.Attack))
		score := cut * 3
		if t.Attack >= e.highThreat {
			score += 6
		}
		if temporary {
			score *= 0.8
		}
		return score
	case game.EffectHeal:
		healed := math.Min(float64(v), float64(t.MaxHealth-t.Health))
		if healed <= 0 {
			return 0
		}
		return healed*2 + EntityValue(&t)*0.3
	case game.EffectBuff:
		score := float64(v)*3 + float64(t.Keywords.Count())
		if t.CanAttack() {
			score += float64(v) * 2
		}
		if temporary {
			score *= 0.8
		}
		return score
	case game.EffectDoubleAttack:
		if t.CanAttack() {
			score := float64(t.Attack) * 3
			if t.Has(game.KeywordOverwhelm) {
				score += 4
			}
			return score
		}
		return float64(t.Attack) * 0.5
	}
	return 0
}

func (e *CardEvaluator) untargetedScore(effect game.EffectType, card game.Card, state *game.BoardState) float64 {
	switch effect {
	case game.EffectDraw:
		n := game.DrawCount(card)
		if state.SelfDeckSize < n {
			n = state.SelfDeckSize
		}
		score := float64(n) * 8
		if state.SelfHandSize >= 6 {
			score -= 10
		}
		return score
	case game.EffectBloodprice:
		dealt := game.BloodpriceDamage(card)
		if state.SelfHealth <= game.BloodpriceCost(card) {
			return minCardScore
		}
		if state.OpponentHealth <= dealt {
			return lethalSpell
		}
		if state.CriticalHealth {
			return float64(dealt) - 10
		}
		return float64(dealt) * 3
	}
	return 0
}

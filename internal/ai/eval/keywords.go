package eval

import (
	"github.com/emberdeck/duelist/internal/game"
)

// KeywordScorer adds keyword-specific preferences to target scoring. It can
// be swapped without touching the planners.
type KeywordScorer interface {
	ScoreKeywords(attacker, target game.Unit, state *game.BoardState) float64
}

// EffectScorer adds effect-specific preferences to card scoring.
type EffectScorer interface {
	ScoreEffect(effect game.EffectType, state *game.BoardState) float64
}

// DefaultKeywordScorer rewards keyword interactions the base formula misses.
type DefaultKeywordScorer struct{}

// ScoreKeywords implements KeywordScorer.
func (DefaultKeywordScorer) ScoreKeywords(attacker, target game.Unit, state *game.BoardState) float64 {
	score := 0.0
	// Tough attackers shrug off counters from hard hitters.
	if attacker.Has(game.KeywordTough) && !attacker.Has(game.KeywordRanged) && target.Attack >= 3 {
		score += 3
	}
	// Removing an enemy Ranged unit stops free damage next turn.
	if target.Has(game.KeywordRanged) && game.WouldKill(&attacker, &target) {
		score += 4
	}
	// A Tough target soaks half our damage.
	if target.Has(game.KeywordTough) && !game.WouldKill(&attacker, &target) {
		score -= 3
	}
	// Overwhelm into a crowded board.
	if attacker.Has(game.KeywordOverwhelm) && state != nil && len(state.OpponentUnits) >= 3 {
		score += 2
	}
	return score
}

// DefaultEffectScorer biases effects by game situation.
type DefaultEffectScorer struct{}

// ScoreEffect implements EffectScorer.
func (DefaultEffectScorer) ScoreEffect(effect game.EffectType, state *game.BoardState) float64 {
	if state == nil {
		return 0
	}
	switch effect {
	case game.EffectDraw:
		// Card flow matters most when the hand runs dry.
		if state.SelfHandSize <= 1 {
			return 6
		}
		if state.SelfHandSize >= 6 {
			return -6
		}
	case game.EffectHeal:
		if state.CriticalHealth {
			return 4
		}
	case game.EffectDamage, game.EffectBurn:
		if state.LethalNextTurn {
			return 5
		}
	case game.EffectBuff, game.EffectDoubleAttack:
		if state.SelfLethal || state.OpponentCriticalHealth {
			return 5
		}
	case game.EffectBloodprice:
		if state.CriticalHealth {
			return -10
		}
	}
	return 0
}

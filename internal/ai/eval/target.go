package eval

import (
	"math"

	"github.com/emberdeck/duelist/internal/ai/variance"
	"github.com/emberdeck/duelist/internal/game"
	"go.uber.org/zap"
)

// Target scoring weights.
const (
	killReward          = 30.0
	candidateAttackW    = 2.5
	attackerAttackW     = 0.5
	candidateHealthW    = 0.5
	tauntTargetBonus    = 8.0
	rangedTargetBonus   = 6.0
	overwhelmTargetBon  = 5.0
	rangedAttackerBase  = 5.0
	rangedClusterW      = 1.0
	rangedClusterCap    = 5
	rangedTurnW         = 0.3
	rangedTurnCap       = 3.0
	splashNeighbourW    = 3.0
	splashKillW         = 6.0
	splashTurnW         = 0.2
	splashTurnCap       = 2.0
	aggroKillBonus      = 10.0
	aggroDamageW        = 1.5
	defensiveRangedBon  = 8.0
	defensiveLossMalus  = 15.0
	initiativeKillBonus = 12.0
	setupBonus          = 6.0
	counterRiskW        = 10.0
	counterDeathMalus   = 25.0
	minTargetScore      = -100.0
	maxTargetScore      = 200.0
)

// TargetEvaluator scores a candidate defender for an attacker.
type TargetEvaluator struct {
	keywords KeywordScorer
	variance *variance.Variance
	logger   *zap.Logger
}

// NewTargetEvaluator creates a TargetEvaluator. A nil keyword scorer adds
// nothing; a nil variance layer never perturbs.
func NewTargetEvaluator(keywords KeywordScorer, v *variance.Variance, logger *zap.Logger) *TargetEvaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if v == nil {
		v = variance.Disabled()
	}
	return &TargetEvaluator{keywords: keywords, variance: v, logger: logger}
}

// Score returns the perturbed score of attacking candidate with attacker.
func (e *TargetEvaluator) Score(attacker, candidate game.Unit, state *game.BoardState, mode StrategicMode) float64 {
	return e.variance.Perturb(e.BaseScore(attacker, candidate, state, mode))
}

// BaseScore is the deterministic score before perturbation.
func (e *TargetEvaluator) BaseScore(attacker, candidate game.Unit, state *game.BoardState, mode StrategicMode) float64 {
	if !attacker.Alive() || !candidate.Alive() {
		return minTargetScore
	}
	dealt := game.DamageTaken(&candidate, attacker.Attack)
	kills := dealt >= candidate.Health
	ranged := attacker.Has(game.KeywordRanged)
	diesToCounter := game.DiesToCounter(&attacker, &candidate)

	score := 0.0
	if kills {
		score += killReward + EntityValue(&candidate)
	}
	score += float64(candidate.Attack)*candidateAttackW +
		float64(attacker.Attack)*attackerAttackW +
		float64(candidate.Health)*candidateHealthW

	if candidate.Has(game.KeywordTaunt) {
		score += tauntTargetBonus
	}
	if candidate.Has(game.KeywordRanged) {
		score += rangedTargetBonus
	}
	if candidate.Has(game.KeywordOverwhelm) {
		score += overwhelmTargetBon
	}

	turn := 0
	var others []game.Unit
	if state != nil {
		turn = state.TurnCount
		others = othersOnSide(state.Units(candidate.Side), candidate.ID)
	}

	if ranged {
		cluster := len(others) + 1
		if cluster > rangedClusterCap {
			cluster = rangedClusterCap
		}
		score += rangedAttackerBase + rangedClusterW*float64(cluster) +
			math.Min(float64(turn)*rangedTurnW, rangedTurnCap)
	}
	if splash := game.SplashDamage(&attacker); splash > 0 && len(others) > 0 {
		splashKills := 0
		for i := range others {
			if game.DamageTaken(&others[i], splash) >= others[i].Health {
				splashKills++
			}
		}
		score += splashNeighbourW*float64(len(others)) + splashKillW*float64(splashKills) +
			math.Min(float64(turn)*splashTurnW, splashTurnCap)
	}

	if e.keywords != nil {
		score += e.keywords.ScoreKeywords(attacker, candidate, state)
	}

	switch mode {
	case ModeAggro:
		if kills {
			score += aggroKillBonus
		}
		score += math.Min(float64(dealt), float64(candidate.Health)) * aggroDamageW
	case ModeDefensive:
		if ranged {
			score += defensiveRangedBon
		}
		if diesToCounter && !kills {
			score -= defensiveLossMalus
		}
	}

	if state != nil {
		if state.IsOpponentFirstNextTurn && kills {
			score += initiativeKillBonus
		}
		if !state.IsOpponentFirstNextTurn && !kills && candidate.Health-dealt <= attacker.Attack {
			score += setupBonus
		}
	}

	if !ranged && attacker.Health > 0 {
		score -= counterRiskW * float64(candidate.Attack) / float64(attacker.Health)
		if diesToCounter {
			score -= counterDeathMalus
		}
	}

	score = clamp(sanitize(score), minTargetScore, maxTargetScore)
	e.logger.Debug("target scored",
		zap.String("attacker", attacker.ID),
		zap.String("target", candidate.ID),
		zap.Stringer("mode", mode),
		zap.Bool("kills", kills),
		zap.Float64("score", score))
	return score
}

func othersOnSide(units []game.Unit, exclude string) []game.Unit {
	out := make([]game.Unit, 0, len(units))
	for i := range units {
		if units[i].ID != exclude && units[i].Alive() {
			out = append(out, units[i])
		}
	}
	return out
}

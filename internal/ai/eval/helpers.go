package eval

import (
	"math"

	"github.com/emberdeck/duelist/internal/config"
	"github.com/emberdeck/duelist/internal/game"
)

// Keyword bonuses used by entity values in trade and target scoring.
const (
	entityTauntBonus     = 2.0
	entityRangedBonus    = 3.0
	entityToughBonus     = 2.0
	entityOverwhelmBonus = 3.0
)

// EntityValue is the trade value of a unit: attack*2 + health + keyword
// bonuses.
func EntityValue(u *game.Unit) float64 {
	if u == nil {
		return 0
	}
	v := float64(u.Attack)*2 + float64(u.Health)
	if u.Has(game.KeywordTaunt) {
		v += entityTauntBonus
	}
	if u.Has(game.KeywordRanged) {
		v += entityRangedBonus
	}
	if u.Has(game.KeywordTough) {
		v += entityToughBonus
	}
	if u.Has(game.KeywordOverwhelm) {
		v += entityOverwhelmBonus
	}
	return v
}

// IsCritical reports whether a life total is at or below the critical
// threshold: the larger of the configured floor and ratio of max health.
func IsCritical(health, maxHealth int, cfg config.AttackConfig) bool {
	threshold := float64(cfg.CriticalHealthFloor)
	if maxHealth > 0 {
		threshold = math.Max(threshold, cfg.CriticalHealthRatio*float64(maxHealth))
	}
	return float64(health) <= threshold
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sanitize maps NaN and infinities to zero.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return sanitize(num / den)
}

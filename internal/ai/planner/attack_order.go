package planner

import (
	"sort"

	"github.com/emberdeck/duelist/internal/ai/eval"
	"github.com/emberdeck/duelist/internal/ai/variance"
	"github.com/emberdeck/duelist/internal/config"
	"github.com/emberdeck/duelist/internal/game"
	"github.com/emberdeck/duelist/internal/game/targeting"
	"go.uber.org/zap"
)

// TradeJudge decides whether losing an attacker for a defender is worth it.
type TradeJudge interface {
	IsValuableTrade(attacker, defender game.Unit, state *game.BoardState) bool
}

// AttackOrderStrategy sequences attackers for a phase.
type AttackOrderStrategy struct {
	cfg      config.AttackConfig
	trades   TradeJudge
	variance *variance.Variance
	logger   *zap.Logger
}

// NewAttackOrderStrategy creates an AttackOrderStrategy.
func NewAttackOrderStrategy(cfg config.AttackConfig, trades TradeJudge, v *variance.Variance, logger *zap.Logger) *AttackOrderStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	if v == nil {
		v = variance.Disabled()
	}
	return &AttackOrderStrategy{cfg: cfg, trades: trades, variance: v, logger: logger}
}

// Order returns the attackers of ctx in attack order.
func (s *AttackOrderStrategy) Order(ctx *AttackContext, lethal bool) []game.Unit {
	if ctx == nil || len(ctx.Attackers) == 0 {
		return nil
	}
	if lethal {
		return s.lethalOrder(ctx)
	}
	return s.standardOrder(ctx)
}

// lethalOrder puts Taunt clearers first, then attack descending. The lethal
// sequence is simulated on a copy of ctx; when it spends every self unit and
// its last loss is a Taunt clearer dying to the counter for no good reason,
// that clearer is held back.
func (s *AttackOrderStrategy) lethalOrder(ctx *AttackContext) []game.Unit {
	order := append([]game.Unit(nil), ctx.Attackers...)
	taunts := game.TauntUnits(ctx.Defenders)

	clears := func(u *game.Unit) bool {
		for i := range taunts {
			if game.WouldKill(u, &taunts[i]) {
				return true
			}
		}
		return false
	}
	sort.SliceStable(order, func(i, j int) bool {
		ci, cj := clears(&order[i]), clears(&order[j])
		if ci != cj {
			return ci
		}
		if order[i].Attack != order[j].Attack {
			return order[i].Attack > order[j].Attack
		}
		return order[i].ID < order[j].ID
	})

	if len(taunts) == 0 {
		return order
	}

	sim := ctx.Clone()
	plan := simulateLethal(sim, order)
	if sim.LivingSelfUnits() > 0 {
		return order
	}

	var last PlannedAttack
	found := false
	for i := len(plan) - 1; i >= 0 && !found; i-- {
		entry := plan[i]
		if entry.Target.IsLifeTotal() {
			continue
		}
		if u, ok := sim.unit(entry.Attacker.ID); ok && !u.Alive() {
			last, found = entry, true
		}
	}
	if !found {
		return order
	}
	taunt, ok := ctx.Defender(last.Target.UnitID)
	if !ok {
		return order
	}
	if s.trades != nil && s.trades.IsValuableTrade(last.Attacker, taunt, ctx.State) {
		return order
	}
	if eval.EntityValue(&taunt) >= s.cfg.HighValueTarget {
		return order
	}
	s.logger.Debug("holding back last unit in lethal sequence",
		zap.String("attacker", last.Attacker.ID),
		zap.String("taunt", taunt.ID))

	kept := order[:0:0]
	for _, u := range order {
		if u.ID != last.Attacker.ID {
			kept = append(kept, u)
		}
	}
	return kept
}

type orderKey struct {
	rangedFirst bool
	setup       bool
	overwhelm   bool
	ranged      bool
	canKill     bool
	toughVsBig  bool
}

func (k orderKey) flags() [6]bool {
	return [6]bool{k.rangedFirst, k.setup, k.overwhelm, k.ranged, k.canKill, k.toughVsBig}
}

// standardOrder sorts by a lexicographic key, then may partially shuffle.
func (s *AttackOrderStrategy) standardOrder(ctx *AttackContext) []game.Unit {
	legal, _ := targeting.LegalAttackTargets(ctx.Defenders)
	opponentNext := ctx.State != nil && ctx.State.IsOpponentFirstNextTurn

	order := append([]game.Unit(nil), ctx.Attackers...)
	keys := make(map[string]orderKey, len(order))
	for i := range order {
		u := &order[i]
		k := orderKey{
			rangedFirst: u.Has(game.KeywordRanged) && opponentNext,
			overwhelm:   u.Has(game.KeywordOverwhelm) && len(ctx.Defenders) >= 2,
			ranged:      u.Has(game.KeywordRanged),
		}
		for j := range legal {
			d := &legal[j]
			dealt := game.DamageTaken(d, u.Attack)
			switch {
			case dealt >= d.Health:
				k.canKill = true
			case !opponentNext && d.Health-dealt <= u.Attack:
				k.setup = true
			}
			if u.Has(game.KeywordTough) && d.Attack >= s.cfg.HighAttackThreshold {
				k.toughVsBig = true
			}
		}
		keys[u.ID] = k
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := keys[order[i].ID].flags(), keys[order[j].ID].flags()
		for n := range a {
			if a[n] != b[n] {
				return a[n]
			}
		}
		if order[i].Attack != order[j].Attack {
			return order[i].Attack > order[j].Attack
		}
		if order[i].Health != order[j].Health {
			return order[i].Health < order[j].Health
		}
		return order[i].ID < order[j].ID
	})

	if s.variance.PartialShuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] }) {
		s.logger.Debug("attack order shuffled", zap.Int("attackers", len(order)))
	}
	return order
}

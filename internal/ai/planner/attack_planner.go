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

// Splash scorer weights.
const (
	splashKillValue   = 30.0
	splashKillWeight  = 15.0
	splashSpread      = 2.0
	splashCounterRisk = 20.0
)

// TargetScorer scores an attack on a unit.
type TargetScorer interface {
	Score(attacker, candidate game.Unit, state *game.BoardState, mode eval.StrategicMode) float64
}

// AttackPlanner turns a board into an ordered list of attacks.
type AttackPlanner struct {
	cfg      config.AttackConfig
	targets  TargetScorer
	trades   TradeJudge
	order    *AttackOrderStrategy
	life     *LifeTotalPolicy
	variance *variance.Variance
	logger   *zap.Logger
}

// NewAttackPlanner validates cfg and wires the planner. A nil target scorer
// leaves only life-total strikes.
func NewAttackPlanner(cfg config.AttackConfig, targets TargetScorer, trades TradeJudge, v *variance.Variance, logger *zap.Logger) (*AttackPlanner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if v == nil {
		v = variance.Disabled()
	}
	return &AttackPlanner{
		cfg:      cfg,
		targets:  targets,
		trades:   trades,
		order:    NewAttackOrderStrategy(cfg, trades, v, logger),
		life:     NewLifeTotalPolicy(cfg, v, logger),
		variance: v,
		logger:   logger,
	}, nil
}

// Plan returns the attacks to make this phase. The plan simulates each
// attack's predicted outcome so later entries see earlier kills; the
// executor still re-validates every entry against the live game.
func (p *AttackPlanner) Plan(attackers, defenders []game.Unit, lifeTotal int, state *game.BoardState) []PlannedAttack {
	ctx := NewAttackContext(attackers, defenders, lifeTotal, state)
	if dropped := len(attackers) - len(ctx.Attackers); dropped > 0 {
		p.logger.Debug("dropped attackers that cannot attack", zap.Int("dropped", dropped))
	}
	if !ctx.Valid || len(ctx.Attackers) == 0 {
		return nil
	}

	lethal := ctx.IsLethal()
	mode := eval.DeriveMode(state)
	if lethal {
		mode = eval.ModeAggro
	}
	order := p.order.Order(ctx, lethal)

	p.logger.Debug("planning attacks",
		zap.Int("attackers", len(order)),
		zap.Int("defenders", len(ctx.Defenders)),
		zap.Int("life_total", lifeTotal),
		zap.Bool("lethal", lethal),
		zap.Stringer("mode", mode))

	var plan []PlannedAttack
	if lethal {
		plan = p.planLethal(ctx, order)
	} else {
		plan = p.planStandard(ctx, order, mode)
	}

	p.logger.Debug("attack plan ready", zap.Int("attacks", len(plan)))
	return plan
}

func (p *AttackPlanner) planLethal(ctx *AttackContext, order []game.Unit) []PlannedAttack {
	return simulateLethal(ctx, order)
}

// simulateLethal clears Taunt units with the cheapest attackers that kill
// them, then sends everything else at the life total. Each entry is resolved
// on ctx.
func simulateLethal(ctx *AttackContext, order []game.Unit) []PlannedAttack {
	var plan []PlannedAttack
	for ctx.LifeTotal > 0 {
		taunts := game.TauntUnits(ctx.Defenders)
		if len(taunts) == 0 {
			break
		}
		attacker, ok := tauntClearer(ctx, order, taunts)
		if !ok {
			return plan
		}
		entry := PlannedAttack{
			Attacker: attacker,
			Target:   game.UnitTarget(lethalTauntTarget(attacker, taunts)),
			Reason:   ReasonTauntClear,
		}
		ctx.Resolve(attacker.ID, entry.Target)
		plan = append(plan, entry)
	}

	for _, u := range order {
		for ctx.LifeTotal > 0 && !game.HasTaunt(ctx.Defenders) {
			attacker, ok := ctx.Attacker(u.ID)
			if !ok {
				break
			}
			entry := PlannedAttack{
				Attacker: attacker,
				Target:   game.LifeTotalTarget(lifeSide(ctx)),
				Reason:   ReasonLethal,
			}
			ctx.Resolve(attacker.ID, entry.Target)
			plan = append(plan, entry)
		}
	}
	return plan
}

// tauntClearer returns the lowest-attack attacker that kills a Taunt unit,
// or the first available attacker in order when none does.
func tauntClearer(ctx *AttackContext, order []game.Unit, taunts []game.Unit) (game.Unit, bool) {
	var fallback, best game.Unit
	haveFallback, haveBest := false, false
	for _, u := range order {
		attacker, ok := ctx.Attacker(u.ID)
		if !ok {
			continue
		}
		if !haveFallback {
			fallback, haveFallback = attacker, true
		}
		for i := range taunts {
			if game.WouldKill(&attacker, &taunts[i]) && (!haveBest || attacker.Attack < best.Attack) {
				best, haveBest = attacker, true
			}
		}
	}
	if haveBest {
		return best, true
	}
	return fallback, haveFallback
}

// lethalTauntTarget picks the Taunt unit the attacker kills with the least
// wasted damage, or the weakest one when none dies.
func lethalTauntTarget(attacker game.Unit, taunts []game.Unit) game.Unit {
	best := -1
	for i := range taunts {
		if !game.WouldKill(&attacker, &taunts[i]) {
			continue
		}
		if best < 0 || game.DamageToKill(&taunts[i]) > game.DamageToKill(&taunts[best]) {
			best = i
		}
	}
	if best >= 0 {
		return taunts[best]
	}
	weakest := 0
	for i := range taunts {
		if game.DamageToKill(&taunts[i]) < game.DamageToKill(&taunts[weakest]) {
			weakest = i
		}
	}
	return taunts[weakest]
}

func (p *AttackPlanner) planStandard(ctx *AttackContext, order []game.Unit, mode eval.StrategicMode) []PlannedAttack {
	var plan []PlannedAttack
	for _, u := range order {
		if p.variance.SkipAttack() {
			p.logger.Debug("attacker sits out", zap.String("attacker", u.ID))
			continue
		}
		for {
			attacker, ok := ctx.Attacker(u.ID)
			if !ok {
				break
			}
			entry, ok := p.chooseTarget(ctx, attacker, mode)
			if !ok {
				break
			}
			ctx.Resolve(attacker.ID, entry.Target)
			plan = append(plan, entry)
		}
	}
	return plan
}

type scoredTarget struct {
	unit  game.Unit
	score float64
}

func (p *AttackPlanner) chooseTarget(ctx *AttackContext, attacker game.Unit, mode eval.StrategicMode) (PlannedAttack, bool) {
	legal, faceOpen := targeting.LegalAttackTargets(ctx.Defenders)
	candidates := p.protectLastUnit(ctx, attacker, legal)

	var best *scoredTarget
	reason := ReasonBestTarget
	if len(candidates) > 0 {
		if attacker.Has(game.KeywordOverwhelm) && len(candidates) >= 2 {
			best = p.splashTarget(ctx, attacker, candidates)
			reason = ReasonSplash
		} else {
			best = p.rankedTarget(ctx, attacker, candidates, mode)
		}
	}

	if best != nil && best.score >= p.cfg.ProfitableScore {
		return PlannedAttack{
			Attacker: attacker,
			Target:   game.UnitTarget(best.unit),
			Score:    best.score,
			Reason:   reason,
		}, true
	}

	if !faceOpen || ctx.LifeTotal <= 0 {
		return PlannedAttack{}, false
	}
	decision := p.life.Decide(LifeTotalInput{
		Attacker:      attacker,
		SelfUnits:     ctx.SelfUnits,
		Defenders:     ctx.Defenders,
		LifeTotal:     ctx.LifeTotal,
		HasUnitTarget: len(candidates) > 0,
		State:         ctx.State,
	})
	if !decision.Strike {
		return PlannedAttack{}, false
	}
	return PlannedAttack{
		Attacker: attacker,
		Target:   game.LifeTotalTarget(lifeSide(ctx)),
		Reason:   decision.Reason,
	}, true
}

// rankedTarget scores every candidate best first, then lets the variance
// layer pick a lower rank or an adjacent candidate.
func (p *AttackPlanner) rankedTarget(ctx *AttackContext, attacker game.Unit, candidates []game.Unit, mode eval.StrategicMode) *scoredTarget {
	if p.targets == nil {
		return nil
	}
	scored := make([]scoredTarget, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, scoredTarget{unit: c, score: p.targets.Score(attacker, c, ctx.State, mode)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].unit.ID < scored[j].unit.ID
	})

	idx := p.variance.PickRank(len(scored))
	idx = p.variance.Reconsider(idx, len(scored))
	if idx != 0 {
		p.logger.Debug("variance moved target choice",
			zap.String("attacker", attacker.ID),
			zap.Int("rank", idx))
	}
	return &scored[idx]
}

// splashTarget maximizes kill value, splash kills and splash spread for an
// Overwhelm attacker.
func (p *AttackPlanner) splashTarget(ctx *AttackContext, attacker game.Unit, candidates []game.Unit) *scoredTarget {
	splash := game.SplashDamage(&attacker)
	var best *scoredTarget
	for _, c := range candidates {
		score := float64(game.DamageTaken(&c, attacker.Attack))
		if game.WouldKill(&attacker, &c) {
			score += splashKillValue + eval.EntityValue(&c)
		}
		for i := range ctx.Defenders {
			other := &ctx.Defenders[i]
			if other.ID == c.ID {
				continue
			}
			score += splashSpread
			if game.DamageTaken(other, splash) >= other.Health {
				score += splashKillWeight
			}
		}
		if game.DiesToCounter(&attacker, &c) {
			score -= splashCounterRisk
		}
		if best == nil || score > best.score || (score == best.score && c.ID < best.unit.ID) {
			best = &scoredTarget{unit: c, score: score}
		}
	}
	return best
}

// protectLastUnit drops counter-lethal targets when the attacker is the last
// self unit, unless the trade is valuable or clears the opposing board.
func (p *AttackPlanner) protectLastUnit(ctx *AttackContext, attacker game.Unit, legal []game.Unit) []game.Unit {
	if ctx.LivingSelfUnits() != 1 {
		return legal
	}
	var kept []game.Unit
	ignored := false
	rolled := false
	for _, c := range legal {
		if !game.DiesToCounter(&attacker, &c) {
			kept = append(kept, c)
			continue
		}
		if clearsBoard(ctx, attacker, c) {
			kept = append(kept, c)
			continue
		}
		if p.trades != nil && p.trades.IsValuableTrade(attacker, c, ctx.State) {
			kept = append(kept, c)
			continue
		}
		if !rolled {
			ignored = p.variance.IgnoreProtection()
			rolled = true
		}
		if ignored {
			kept = append(kept, c)
			continue
		}
		p.logger.Debug("last unit protected",
			zap.String("attacker", attacker.ID),
			zap.String("target", c.ID))
	}
	return kept
}

// clearsBoard reports whether attacking target kills every opposing unit,
// counting Overwhelm splash.
func clearsBoard(ctx *AttackContext, attacker, target game.Unit) bool {
	if !game.WouldKill(&attacker, &target) {
		return false
	}
	splash := game.SplashDamage(&attacker)
	for i := range ctx.Defenders {
		d := &ctx.Defenders[i]
		if d.ID == target.ID {
			continue
		}
		if splash == 0 || game.DamageTaken(d, splash) < d.Health {
			return false
		}
	}
	return true
}

func lifeSide(ctx *AttackContext) game.Side {
	if ctx.State != nil {
		return ctx.State.SelfSide.Opponent()
	}
	return game.SideB
}

package planner

import (
	"sort"

	"github.com/emberdeck/duelist/internal/ai/variance"
	"github.com/emberdeck/duelist/internal/config"
	"github.com/emberdeck/duelist/internal/game"
	"github.com/emberdeck/duelist/internal/game/mana"
	"github.com/emberdeck/duelist/internal/game/targeting"
	"go.uber.org/zap"
)

// CardScorer scores cards and picks spell targets.
type CardScorer interface {
	Score(card game.Card, state *game.BoardState) float64
	BestTarget(card game.Card, state *game.BoardState) (game.Unit, bool)
}

// CardPlanner selects which cards to play this turn.
type CardPlanner struct {
	cfg      config.CardConfig
	scorer   CardScorer
	variance *variance.Variance
	logger   *zap.Logger
}

// NewCardPlanner validates cfg and creates a CardPlanner.
func NewCardPlanner(cfg config.CardConfig, scorer CardScorer, v *variance.Variance, logger *zap.Logger) (*CardPlanner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if v == nil {
		v = variance.Disabled()
	}
	return &CardPlanner{cfg: cfg, scorer: scorer, variance: v, logger: logger}, nil
}

type scoredCard struct {
	card   game.Card
	score  float64
	future float64
}

// FutureValue estimates what holding card for a later turn is worth.
func (p *CardPlanner) FutureValue(card game.Card, state *game.BoardState) float64 {
	v := float64(card.ManaCost) * p.cfg.FutureMultiplier
	if state != nil && state.TurnCount < 3 {
		v *= p.cfg.EarlyGameMultiplier
	}
	return v
}

// Plan returns the cards to play, best first. The total cost never exceeds
// the snapshot's mana.
func (p *CardPlanner) Plan(hand []game.Card, state *game.BoardState) []game.Card {
	if state == nil || len(hand) == 0 || p.scorer == nil {
		return nil
	}
	pool := mana.NewPool(state.SelfMana)

	playable := make([]game.Card, 0, len(hand))
	for _, c := range hand {
		if pool.CanAfford(c.ManaCost) && targeting.IsPlayable(c, state) {
			playable = append(playable, c)
		}
	}
	if len(playable) == 0 {
		return nil
	}

	// Pressure on a low opponent overrides skipping and holding.
	pressure := state.OpponentHealth <= p.cfg.LowHealthThreshold
	if !pressure && state.SelfLeads() && p.variance.SkipTurn() {
		p.logger.Debug("skipping card phase", zap.Int("playable", len(playable)))
		return nil
	}

	scored := make([]scoredCard, 0, len(playable))
	for _, c := range playable {
		scored = append(scored, scoredCard{card: c, score: p.scorer.Score(c, state), future: p.FutureValue(c, state)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		if scored[i].card.ManaCost != scored[j].card.ManaCost {
			return scored[i].card.ManaCost < scored[j].card.ManaCost
		}
		return scored[i].card.ID < scored[j].card.ID
	})

	freeSlots := freeSlotCount(state)
	var selected []game.Card
	for i, sc := range scored {
		if sc.score <= 0 {
			p.logger.Debug("card has no value now", zap.String("card", sc.card.ID))
			continue
		}
		if !pool.CanAfford(sc.card.ManaCost) {
			continue
		}
		if sc.card.IsMonster() && freeSlots <= 0 {
			continue
		}
		if !pressure && p.shouldHold(sc, state) {
			continue
		}
		pool.Spend(sc.card.ManaCost)
		selected = append(selected, sc.card)
		if sc.card.IsMonster() {
			freeSlots--
		}

		if !pressure && len(selected) >= 2 && p.shouldStopEarly(scored[i+1:], pool, state) {
			break
		}
	}

	p.logger.Debug("card plan ready",
		zap.Int("hand", len(hand)),
		zap.Int("selected", len(selected)),
		zap.Int("mana", state.SelfMana),
		zap.Int("spent", pool.Spent()))
	return selected
}

func (p *CardPlanner) shouldHold(sc scoredCard, state *game.BoardState) bool {
	if !state.SelfLeads() {
		return false
	}
	if sc.future > sc.score*p.cfg.FutureDominance {
		p.logger.Debug("holding card for later",
			zap.String("card", sc.card.ID),
			zap.Float64("score", sc.score),
			zap.Float64("future", sc.future))
		return true
	}
	if sc.card.ManaCost >= p.cfg.ExpensiveCost &&
		state.TurnCount <= p.cfg.EarlyGameTurn &&
		sc.score < p.cfg.HighValueCutoff &&
		p.variance.Chance(variance.KindHold, p.cfg.HoldProbability) {
		p.logger.Debug("holding expensive card", zap.String("card", sc.card.ID))
		return true
	}
	return false
}

func (p *CardPlanner) shouldStopEarly(remaining []scoredCard, pool *mana.Pool, state *game.BoardState) bool {
	if state.ControlRatio() < p.cfg.StrongAdvantage {
		return false
	}
	affordable := 0
	for _, sc := range remaining {
		if !pool.CanAfford(sc.card.ManaCost) {
			continue
		}
		if sc.score >= p.cfg.LowValueCutoff {
			return false
		}
		affordable++
	}
	if affordable == 0 {
		return false
	}
	if p.variance.Chance(variance.KindEarlyStop, p.cfg.EarlyStopProbability) {
		p.logger.Debug("stopping card selection early", zap.Int("remaining", affordable))
		return true
	}
	return false
}

// ChooseTarget derives where a card goes against the current snapshot:
// a free slot for monsters, the best legal unit for targeted spells.
func (p *CardPlanner) ChooseTarget(card game.Card, state *game.BoardState) (game.PlayTarget, bool) {
	if state == nil {
		return game.PlayTarget{}, false
	}
	if card.IsMonster() {
		slot := state.FreeSlot(state.SelfSide)
		if slot < 0 {
			return game.PlayTarget{}, false
		}
		return game.PlayTarget{Slot: slot}, true
	}
	if !targeting.RequirementFor(card).IsTargeted() {
		return game.NoTarget, true
	}
	if p.scorer == nil {
		return game.PlayTarget{}, false
	}
	target, ok := p.scorer.BestTarget(card, state)
	if !ok {
		return game.PlayTarget{}, false
	}
	return game.PlayTarget{UnitID: target.ID, Slot: -1}, true
}

func freeSlotCount(state *game.BoardState) int {
	slots := state.MaxBoardSlots
	if slots <= 0 {
		slots = game.DefaultMaxBoardSlots
	}
	return slots - len(game.AliveUnits(state.SelfUnits))
}

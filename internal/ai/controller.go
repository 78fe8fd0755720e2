// Package ai drives one side of a match: it plans with the planner package
// and executes the plan one action at a time against an ActionExecutor,
// rebuilding its snapshot after every action.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/emberdeck/duelist/internal/ai/eval"
	"github.com/emberdeck/duelist/internal/ai/planner"
	"github.com/emberdeck/duelist/internal/ai/variance"
	"github.com/emberdeck/duelist/internal/config"
	"github.com/emberdeck/duelist/internal/game"
	"github.com/emberdeck/duelist/internal/game/targeting"
	"github.com/emberdeck/duelist/internal/telemetry"
	"go.uber.org/zap"
)

// Dependencies are the collaborators a Controller needs. Source and Executor
// are required for a phase to do anything; the rest fall back to defaults.
type Dependencies struct {
	Source    game.StateSource
	Executor  game.ActionExecutor
	Sink      telemetry.Sink
	Predictor eval.Predictor
	Keywords  eval.KeywordScorer
	Effects   eval.EffectScorer
}

// Controller runs the card and attack phases for one side.
type Controller struct {
	side     game.Side
	matchID  string
	pacing   time.Duration
	deps     Dependencies
	board    *eval.BoardEvaluator
	cards    *planner.CardPlanner
	attacks  *planner.AttackPlanner
	variance *variance.Variance
	logger   *zap.Logger
}

// Option customizes a Controller.
type Option func(*Controller)

// WithMatchID tags every telemetry event with id.
func WithMatchID(id string) Option {
	return func(c *Controller) { c.matchID = id }
}

// NewController validates cfg and wires the evaluators and planners. It
// only fails on invalid configuration.
func NewController(side game.Side, cfg config.AIConfig, deps Dependencies, logger *zap.Logger, opts ...Option) (*Controller, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Pacing < 0 {
		return nil, fmt.Errorf("%w: ai.pacing must not be negative", config.ErrInvalidConfig)
	}
	if deps.Sink == nil {
		deps.Sink = telemetry.Nop
	}
	if deps.Predictor == nil {
		deps.Predictor = eval.NullPredictor{}
	}
	if deps.Keywords == nil {
		deps.Keywords = eval.DefaultKeywordScorer{}
	}
	if deps.Effects == nil {
		deps.Effects = eval.DefaultEffectScorer{}
	}
	logger = logger.With(zap.Stringer("side", side))

	c := &Controller{
		side:   side,
		pacing: cfg.Pacing,
		deps:   deps,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	v, err := variance.New(cfg.Variance, cfg.Seed,
		variance.WithLogger(logger),
		variance.WithObserver(c.varianceFired))
	if err != nil {
		return nil, fmt.Errorf("failed to create variance layer: %w", err)
	}
	trades, err := eval.NewTradeEvaluator(cfg.Trade, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create trade evaluator: %w", err)
	}
	cards, err := planner.NewCardPlanner(cfg.Cards, eval.NewCardEvaluator(deps.Effects, cfg.Trade.HighThreatAttack, logger), v, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create card planner: %w", err)
	}
	attacks, err := planner.NewAttackPlanner(cfg.Attacks, eval.NewTargetEvaluator(deps.Keywords, v, logger), trades, v, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create attack planner: %w", err)
	}

	c.variance = v
	c.board = eval.NewBoardEvaluator(cfg.Attacks, logger)
	c.cards = cards
	c.attacks = attacks
	return c, nil
}

// Side returns the side this controller plays.
func (c *Controller) Side() game.Side { return c.side }

// Snapshot rebuilds the board state from the source, or nil without one.
func (c *Controller) Snapshot() *game.BoardState {
	return game.BuildBoardState(c.deps.Source, c.side, c.board)
}

// RunTurn plays the card phase, then the attack phase.
func (c *Controller) RunTurn(ctx context.Context) error {
	if state := c.Snapshot(); state != nil {
		c.notify(telemetry.NewEvent(telemetry.EventTurnStarted, c.side.String(), "", ""), state.TurnCount)
		c.predict(state)
	}
	if err := c.RunCardPhase(ctx); err != nil {
		return err
	}
	return c.RunAttackPhase(ctx)
}

// RunCardPhase plans the cards to play and executes them one by one. Each
// card's target is derived from a fresh snapshot just before it is played.
func (c *Controller) RunCardPhase(ctx context.Context) error {
	if !c.ready("card") {
		return nil
	}
	state := c.Snapshot()
	if state == nil {
		return nil
	}

	plan := c.cards.Plan(c.deps.Source.Hand(c.side), state)
	c.notify(telemetry.NewEventWithAmount(telemetry.EventCardPlanReady, c.side.String(), "", "", len(plan)), state.TurnCount)
	if len(plan) == 0 {
		c.notify(telemetry.NewEvent(telemetry.EventCardPhaseEmpty, c.side.String(), "", ""), state.TurnCount)
		return nil
	}

	played := 0
	for _, card := range plan {
		if err := c.pace(ctx); err != nil {
			return err
		}
		state = c.Snapshot()
		if state == nil {
			return nil
		}
		if reason := c.cardStale(card, state); reason != "" {
			c.dropCard(card, reason, state.TurnCount)
			continue
		}

		target, ok := c.cards.ChooseTarget(card, state)
		if !ok {
			c.dropCard(card, "no legal target", state.TurnCount)
			continue
		}
		if err := targeting.NewTargetValidator(state).ValidateCardTarget(card, target); err != nil {
			c.dropCard(card, err.Error(), state.TurnCount)
			continue
		}

		outcome, err := c.deps.Executor.ExecutePlayCard(ctx, card.ID, target)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("card execution failed, ending card phase",
				zap.String("card", card.ID),
				zap.Error(err))
			return nil
		}
		if !outcome.Success {
			c.dropCard(card, "executor rejected the play", state.TurnCount)
			continue
		}
		played++
		evt := telemetry.NewEvent(telemetry.EventCardPlayed, c.side.String(), card.ID, target.UnitID)
		evt.Amount = card.ManaCost
		evt.Data = card.Name
		c.notify(evt, state.TurnCount)
	}

	c.logger.Info("card phase complete",
		zap.Int("planned", len(plan)),
		zap.Int("played", played))
	return nil
}

// cardStale reports why a planned card can no longer be played, or "".
func (c *Controller) cardStale(card game.Card, state *game.BoardState) string {
	inHand := false
	for _, h := range c.deps.Source.Hand(c.side) {
		if h.ID == card.ID {
			inHand = true
			break
		}
	}
	switch {
	case !inHand:
		return "no longer in hand"
	case card.ManaCost > state.SelfMana:
		return "not enough mana"
	case !targeting.IsPlayable(card, state):
		return "not playable"
	}
	return ""
}

func (c *Controller) dropCard(card game.Card, reason string, turn int) {
	c.logger.Debug("dropping planned card", zap.String("card", card.ID), zap.String("reason", reason))
	evt := telemetry.NewEvent(telemetry.EventCardDropped, c.side.String(), card.ID, "")
	evt.Data = reason
	c.notify(evt, turn)
}

// RunAttackPhase plans attacks and executes them one at a time. Each entry
// is re-validated against a fresh snapshot; stale entries are dropped and
// the rest of the phase is re-planned after any death.
func (c *Controller) RunAttackPhase(ctx context.Context) error {
	if !c.ready("attack") {
		return nil
	}
	state := c.Snapshot()
	if state == nil {
		return nil
	}

	// Every execution spends one attack, which bounds the phase even if
	// re-planning keeps producing entries.
	budget := 0
	for i := range state.SelfUnits {
		if state.SelfUnits[i].CanAttack() {
			budget += state.SelfUnits[i].RemainingAttacks
		}
	}

	plan := c.attacks.Plan(state.SelfUnits, state.OpponentUnits, state.OpponentHealth, state)
	c.notify(telemetry.NewEventWithAmount(telemetry.EventAttackPlanReady, c.side.String(), "", "", len(plan)), state.TurnCount)

	executed := 0
	for steps := 0; len(plan) > 0 && executed < budget && steps < 2*budget; steps++ {
		entry := plan[0]
		plan = plan[1:]

		if err := c.pace(ctx); err != nil {
			return err
		}
		state = c.Snapshot()
		if state == nil || state.OpponentHealth <= 0 || state.SelfHealth <= 0 {
			break
		}
		if err := targeting.NewTargetValidator(state).ValidateAttack(entry.Attacker.ID, entry.Target); err != nil {
			c.dropAttack(entry, err.Error(), state.TurnCount)
			plan = c.replan(state)
			continue
		}

		outcome, err := c.deps.Executor.ExecuteAttack(ctx, entry.Attacker.ID, entry.Target)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("attack execution failed, ending attack phase",
				zap.String("attacker", entry.Attacker.ID),
				zap.Error(err))
			return nil
		}
		executed++
		c.reportAttack(entry, outcome, state.TurnCount)

		if outcome.TargetDied || outcome.AttackerDied || outcome.SplashKills > 0 {
			state = c.Snapshot()
			if state == nil || state.OpponentHealth <= 0 {
				break
			}
			plan = c.replan(state)
		}
	}

	c.logger.Info("attack phase complete", zap.Int("attacks", executed))
	return nil
}

func (c *Controller) replan(state *game.BoardState) []planner.PlannedAttack {
	plan := c.attacks.Plan(state.SelfUnits, state.OpponentUnits, state.OpponentHealth, state)
	c.notify(telemetry.NewEventWithAmount(telemetry.EventAttackReplanned, c.side.String(), "", "", len(plan)), state.TurnCount)
	return plan
}

func (c *Controller) reportAttack(entry planner.PlannedAttack, outcome game.AttackOutcome, turn int) {
	side := c.side.String()
	evt := telemetry.NewEventWithAmount(telemetry.EventAttackExecuted, side, entry.Attacker.ID, entry.Target.UnitID, outcome.DamageDealt)
	evt.Score = entry.Score
	evt.Data = entry.Reason
	evt.Flag = entry.Target.IsLifeTotal()
	c.notify(evt, turn)

	if entry.Target.IsLifeTotal() {
		c.notify(telemetry.NewEventWithAmount(telemetry.EventLifeTotalDamaged, side, entry.Attacker.ID, "", outcome.DamageDealt), turn)
	} else if outcome.TargetDied {
		c.notify(telemetry.NewEvent(telemetry.EventUnitDied, side, entry.Attacker.ID, entry.Target.UnitID), turn)
	}
	for i := 0; i < outcome.SplashKills; i++ {
		c.notify(telemetry.NewEvent(telemetry.EventUnitDied, side, entry.Attacker.ID, "").WithMeta("cause", "splash"), turn)
	}
}

func (c *Controller) dropAttack(entry planner.PlannedAttack, reason string, turn int) {
	c.logger.Debug("dropping stale attack",
		zap.String("attacker", entry.Attacker.ID),
		zap.Stringer("target", entry.Target.Kind),
		zap.String("target_id", entry.Target.UnitID),
		zap.String("reason", reason))
	evt := telemetry.NewEvent(telemetry.EventAttackDropped, c.side.String(), entry.Attacker.ID, entry.Target.UnitID)
	evt.Data = reason
	c.notify(evt, turn)
}

func (c *Controller) ready(phase string) bool {
	if c.deps.Source == nil || c.deps.Executor == nil {
		c.logger.Warn("missing dependency, skipping phase",
			zap.String("phase", phase),
			zap.Bool("source", c.deps.Source != nil),
			zap.Bool("executor", c.deps.Executor != nil))
		c.notify(telemetry.NewEvent(telemetry.EventPhaseSkipped, c.side.String(), "", "").WithMeta("phase", phase), 0)
		return false
	}
	return true
}

func (c *Controller) predict(state *game.BoardState) {
	p := c.deps.Predictor.PredictWinProbability(eval.ExtractFeatures(state))
	c.logger.Debug("win probability", zap.Float64("p", p), zap.Int("turn", state.TurnCount))
	evt := telemetry.NewEvent(telemetry.EventPrediction, c.side.String(), "", "")
	evt.Score = p
	c.notify(evt, state.TurnCount)
}

// pace waits between actions; zero pacing only checks for cancellation.
func (c *Controller) pace(ctx context.Context) error {
	if c.pacing <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(c.pacing)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Controller) varianceFired(kind variance.Kind) {
	evt := telemetry.NewEvent(telemetry.EventVarianceFired, c.side.String(), "", "")
	evt.Data = string(kind)
	c.notify(evt, 0)
}

func (c *Controller) notify(evt telemetry.Event, turn int) {
	evt.MatchID = c.matchID
	if turn > 0 {
		evt.Turn = turn
	}
	c.deps.Sink.Notify(evt)
}

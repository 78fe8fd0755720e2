// Package sim is a headless reference implementation of the card battler. It
// provides the StateSource and ActionExecutor the AI plays against and runs
// complete AI-versus-AI matches.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/emberdeck/duelist/internal/config"
	"github.com/emberdeck/duelist/internal/game"
	"github.com/emberdeck/duelist/internal/game/mana"
	"github.com/emberdeck/duelist/internal/game/targeting"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrIllegalAction is wrapped by every rejected attack or play.
	ErrIllegalAction = errors.New("illegal action")
	// ErrMatchOver is returned for actions after the match ended.
	ErrMatchOver = errors.New("match is over")
)

// MaxHandSize is the hand limit; cards drawn beyond it are discarded.
const MaxHandSize = 10

// Rules are the match parameters the engine enforces.
type Rules struct {
	StartHealth  int
	StartingHand int
	MaxMana      int
	DeckSize     int
	MaxTurns     int
}

// RulesFrom converts simulation settings into Rules.
func RulesFrom(cfg config.SimulationConfig) Rules {
	return Rules{
		StartHealth:  cfg.StartHealth,
		StartingHand: cfg.StartingHand,
		MaxMana:      cfg.MaxMana,
		DeckSize:     cfg.DeckSize,
		MaxTurns:     cfg.MaxTurns,
	}
}

// timed is a modifier that wears off: a burn tick amount, or an attack
// change plus the max health it granted.
type timed struct {
	amount int
	health int
	turns  int
}

type unitState struct {
	game.Unit
	burns []timed
	buffs []timed
}

type player struct {
	health    int
	maxHealth int
	mana      *mana.Pool
	hand      []game.Card
	deck      []string
	units     []*unitState
	fatigue   int
}

// Engine holds the authoritative state of one match. It is not safe for
// concurrent use; a match is single-threaded.
type Engine struct {
	matchID string
	catalog *Catalog
	rules   Rules
	rng     *rand.Rand
	ns      uuid.UUID
	nextID  int
	logger  *zap.Logger

	players      [2]*player
	initialFirst game.Side
	round        int
	active       game.Side
	turnsInRound int
	inTurn       bool

	over   bool
	winner game.Side
	isDraw bool
}

// NewEngine sets up a match: random decks from the catalog, a random first
// player and opening hands. The same seed and match ID give the same game.
func NewEngine(matchID string, catalog *Catalog, rules Rules, seed int64, logger *zap.Logger) *Engine {
	e := newEngine(matchID, catalog, rules, seed, logger)
	for side := range e.players {
		e.players[side].deck = catalog.RandomDeck(e.rng, rules.DeckSize)
	}
	e.initialFirst = game.Side(e.rng.Intn(2))
	for side := range e.players {
		e.draw(game.Side(side), rules.StartingHand)
	}
	e.logger.Debug("engine ready",
		zap.Stringer("first", e.initialFirst),
		zap.Int("deck", rules.DeckSize))
	return e
}

func newEngine(matchID string, catalog *Catalog, rules Rules, seed int64, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	e := &Engine{
		matchID: matchID,
		catalog: catalog,
		rules:   rules,
		rng:     rand.New(rand.NewSource(seed)),
		ns:      uuid.NewSHA1(uuid.NameSpaceOID, []byte(matchID)),
		logger:  logger.With(zap.String("match_id", matchID)),
	}
	for i := range e.players {
		e.players[i] = &player{health: rules.StartHealth, maxHealth: rules.StartHealth, mana: mana.NewPool(0)}
	}
	return e
}

// newID derives the next instance ID from the match namespace.
func (e *Engine) newID() string {
	e.nextID++
	return uuid.NewSHA1(e.ns, []byte(strconv.Itoa(e.nextID))).String()
}

// MatchID returns the match identifier.
func (e *Engine) MatchID() string { return e.matchID }

// Round returns the current round; both sides act once per round.
func (e *Engine) Round() int { return e.round }

// Active returns the side whose turn it is.
func (e *Engine) Active() game.Side { return e.active }

// Over reports whether the match has ended.
func (e *Engine) Over() bool { return e.over }

// Winner returns the winning side, or false for a draw or a running match.
func (e *Engine) Winner() (game.Side, bool) {
	if !e.over || e.isDraw {
		return 0, false
	}
	return e.winner, true
}

// firstOf returns who acts first in round r. Initiative alternates, so the
// second player of a round opens the next one.
func (e *Engine) firstOf(r int) game.Side {
	if r%2 == 1 {
		return e.initialFirst
	}
	return e.initialFirst.Opponent()
}

// BeginTurn starts the next turn: refills mana, draws, ticks burns, expires
// temporary modifiers and readies the active side's units.
func (e *Engine) BeginTurn() game.Side {
	if e.inTurn {
		return e.active
	}
	if e.turnsInRound == 0 {
		e.round++
		e.active = e.firstOf(e.round)
	} else {
		e.active = e.active.Opponent()
	}
	e.inTurn = true
	if e.over {
		return e.active
	}

	p := e.players[e.active]
	refill := e.round
	if e.rules.MaxMana > 0 && refill > e.rules.MaxMana {
		refill = e.rules.MaxMana
	}
	p.mana.Refill(refill)
	e.draw(e.active, 1)

	for _, u := range p.units {
		kept := u.burns[:0]
		for _, b := range u.burns {
			u.Health -= game.DamageTaken(&u.Unit, b.amount)
			if b.turns--; b.turns > 0 {
				kept = append(kept, b)
			}
		}
		u.burns = kept

		active := u.buffs[:0]
		for _, b := range u.buffs {
			if b.turns--; b.turns > 0 {
				active = append(active, b)
				continue
			}
			u.Attack -= b.amount
			if u.Attack < 0 {
				u.Attack = 0
			}
			u.MaxHealth -= b.health
			if u.Health > u.MaxHealth {
				u.Health = u.MaxHealth
			}
		}
		u.buffs = active
		u.RemainingAttacks = 1
	}
	e.removeDead()
	e.checkOver()

	e.logger.Debug("turn started",
		zap.Int("round", e.round),
		zap.Stringer("active", e.active),
		zap.Int("mana", p.mana.Available()),
		zap.Int("hand", len(p.hand)))
	return e.active
}

// TurnLimitReached reports whether the next turn would start a round past
// the configured limit.
func (e *Engine) TurnLimitReached() bool {
	return e.rules.MaxTurns > 0 && !e.inTurn && e.turnsInRound == 0 && e.round >= e.rules.MaxTurns
}

// EndTurn closes the active turn.
func (e *Engine) EndTurn() {
	if !e.inTurn {
		return
	}
	e.inTurn = false
	e.turnsInRound = (e.turnsInRound + 1) % 2
}

func (e *Engine) draw(side game.Side, n int) {
	p := e.players[side]
	for i := 0; i < n; i++ {
		if len(p.deck) == 0 {
			p.fatigue++
			p.health -= p.fatigue
			continue
		}
		defID := p.deck[len(p.deck)-1]
		p.deck = p.deck[:len(p.deck)-1]
		if len(p.hand) >= MaxHandSize {
			continue
		}
		card, err := e.catalog.Instantiate(defID, e.newID())
		if err != nil {
			e.logger.Warn("skipping unknown card", zap.String("card", defID), zap.Error(err))
			continue
		}
		p.hand = append(p.hand, card)
	}
	e.checkOver()
}

// GetActiveUnits implements game.StateSource.
func (e *Engine) GetActiveUnits(side game.Side) []game.Unit {
	out := make([]game.Unit, 0, len(e.players[side].units))
	for _, u := range e.players[side].units {
		if u.Alive() {
			out = append(out, u.Unit)
		}
	}
	return out
}

// Status implements game.StateSource.
func (e *Engine) Status(side game.Side) game.SideStatus {
	p := e.players[side]
	return game.SideStatus{
		Health:    p.health,
		MaxHealth: p.maxHealth,
		Mana:      p.mana.Available(),
		HandSize:  len(p.hand),
		DeckSize:  len(p.deck),
	}
}

// Hand implements game.StateSource.
func (e *Engine) Hand(side game.Side) []game.Card {
	return append([]game.Card(nil), e.players[side].hand...)
}

// Turn implements game.StateSource.
func (e *Engine) Turn() game.TurnInfo {
	return game.TurnInfo{
		TurnCount:     e.round,
		Active:        e.active,
		FirstNextTurn: e.firstOf(e.round + 1),
	}
}

// ExecuteAttack implements game.ActionExecutor for the active side.
func (e *Engine) ExecuteAttack(ctx context.Context, attackerID string, target game.Target) (game.AttackOutcome, error) {
	if err := ctx.Err(); err != nil {
		return game.AttackOutcome{}, err
	}
	if e.over {
		return game.AttackOutcome{}, ErrMatchOver
	}
	attacker := e.findUnit(e.active, attackerID)
	if attacker == nil || !attacker.CanAttack() {
		return game.AttackOutcome{}, fmt.Errorf("%w: %s cannot attack", ErrIllegalAction, attackerID)
	}
	opp := e.active.Opponent()
	legal, faceOpen := targeting.LegalAttackTargets(e.GetActiveUnits(opp))

	var out game.AttackOutcome
	if target.IsLifeTotal() {
		if target.Side != opp || !faceOpen {
			return out, fmt.Errorf("%w: life total of %s is not attackable", ErrIllegalAction, target.Side)
		}
		attacker.RemainingAttacks--
		e.players[opp].health -= attacker.Attack
		out.DamageDealt = attacker.Attack
		e.checkOver()
		return out, nil
	}

	isLegal := false
	for _, u := range legal {
		if u.ID == target.UnitID {
			isLegal = true
			break
		}
	}
	defender := e.findUnit(opp, target.UnitID)
	if !isLegal || defender == nil {
		return out, fmt.Errorf("%w: %s is not attackable", ErrIllegalAction, target.UnitID)
	}

	attacker.RemainingAttacks--
	out.CounterDamageDealt = game.CounterDamage(&attacker.Unit, &defender.Unit)
	out.DamageDealt = game.DamageTaken(&defender.Unit, attacker.Attack)
	attacker.Health -= out.CounterDamageDealt
	defender.Health -= out.DamageDealt
	out.TargetDied = defender.Health <= 0
	out.AttackerDied = attacker.Health <= 0

	if splash := game.SplashDamage(&attacker.Unit); splash > 0 {
		for _, u := range e.players[opp].units {
			if u == defender || !u.Alive() {
				continue
			}
			u.Health -= game.DamageTaken(&u.Unit, splash)
			if u.Health <= 0 {
				out.SplashKills++
			}
		}
	}
	e.removeDead()
	e.checkOver()
	return out, nil
}

// ExecutePlayCard implements game.ActionExecutor for the active side.
func (e *Engine) ExecutePlayCard(ctx context.Context, cardID string, target game.PlayTarget) (game.PlayOutcome, error) {
	if err := ctx.Err(); err != nil {
		return game.PlayOutcome{}, err
	}
	if e.over {
		return game.PlayOutcome{}, ErrMatchOver
	}
	p := e.players[e.active]
	idx := -1
	for i, c := range p.hand {
		if c.ID == cardID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return game.PlayOutcome{}, fmt.Errorf("%w: card %s not in hand", ErrIllegalAction, cardID)
	}
	card := p.hand[idx]
	if !p.mana.CanAfford(card.ManaCost) {
		return game.PlayOutcome{}, fmt.Errorf("%w: %s costs %d, %d available", ErrIllegalAction, card.Name, card.ManaCost, p.mana.Available())
	}

	state := game.BuildBoardState(e, e.active, nil)
	if err := targeting.NewTargetValidator(state).ValidateCardTarget(card, target); err != nil {
		return game.PlayOutcome{}, fmt.Errorf("%w: %v", ErrIllegalAction, err)
	}
	if card.IsMonster() && target.Slot >= state.MaxBoardSlots {
		return game.PlayOutcome{}, fmt.Errorf("%w: slot %d out of range", ErrIllegalAction, target.Slot)
	}

	p.mana.Spend(card.ManaCost)
	p.hand = append(p.hand[:idx], p.hand[idx+1:]...)

	if card.IsMonster() {
		p.units = append(p.units, &unitState{Unit: game.Unit{
			ID:        card.ID,
			Name:      card.Name,
			Side:      e.active,
			Slot:      target.Slot,
			Attack:    card.Attack,
			Health:    card.Health,
			MaxHealth: card.Health,
			Keywords:  card.Keywords,
			IsPlaced:  true,
		}})
		return game.PlayOutcome{Success: true}, nil
	}

	e.resolveSpell(card, target)
	e.removeDead()
	e.checkOver()
	return game.PlayOutcome{Success: true}, nil
}

func (e *Engine) resolveSpell(card game.Card, target game.PlayTarget) {
	req := targeting.RequirementFor(card)
	chosen := e.findAnyUnit(target.UnitID)

	var friendly *unitState
	switch req.Type {
	case targeting.TargetTypeFriendlyUnit:
		friendly = chosen
	case targeting.TargetTypeEnemyUnit:
		if u, ok := targeting.AutoFriendlyTarget(e.GetActiveUnits(e.active)); ok {
			friendly = e.findUnit(e.active, u.ID)
		}
	}

	v := card.EffectValue
	for _, effect := range card.Effects {
		var u *unitState
		switch targeting.EffectTarget(effect) {
		case targeting.TargetTypeEnemyUnit:
			u = chosen
		case targeting.TargetTypeFriendlyUnit:
			u = friendly
		}

		switch effect {
		case game.EffectDamage:
			if u.alive() {
				u.Health -= game.DamageTaken(&u.Unit, v)
			}
		case game.EffectBurn:
			if u.alive() {
				u.burns = append(u.burns, timed{amount: v, turns: game.BurnTicks(card)})
			}
		case game.EffectDebuff:
			if u.alive() {
				cut := v
				if cut > u.Attack {
					cut = u.Attack
				}
				u.Attack -= cut
				if card.Duration > 0 {
					u.buffs = append(u.buffs, timed{amount: -cut, turns: card.Duration})
				}
			}
		case game.EffectHeal:
			if u.alive() {
				u.Health += v
				if u.Health > u.MaxHealth {
					u.Health = u.MaxHealth
				}
			}
		case game.EffectBuff:
			if u.alive() {
				u.Attack += v
				u.Health += v
				u.MaxHealth += v
				if card.Duration > 0 {
					u.buffs = append(u.buffs, timed{amount: v, health: v, turns: card.Duration})
				}
			}
		case game.EffectDoubleAttack:
			if u.alive() {
				u.RemainingAttacks++
			}
		case game.EffectDraw:
			e.draw(e.active, game.DrawCount(card))
		case game.EffectBloodprice:
			e.players[e.active.Opponent()].health -= game.BloodpriceDamage(card)
			e.players[e.active].health -= game.BloodpriceCost(card)
		}
	}
	e.logger.Debug("spell resolved",
		zap.String("card", card.Name),
		zap.String("target", target.UnitID))
}

func (u *unitState) alive() bool {
	return u != nil && u.Alive()
}

func (e *Engine) findUnit(side game.Side, id string) *unitState {
	for _, u := range e.players[side].units {
		if u.ID == id && u.Alive() {
			return u
		}
	}
	return nil
}

func (e *Engine) findAnyUnit(id string) *unitState {
	if id == "" {
		return nil
	}
	if u := e.findUnit(game.SideA, id); u != nil {
		return u
	}
	return e.findUnit(game.SideB, id)
}

func (e *Engine) removeDead() {
	for _, p := range e.players {
		kept := p.units[:0]
		for _, u := range p.units {
			if u.Health > 0 {
				kept = append(kept, u)
			}
		}
		p.units = kept
	}
}

// checkOver ends the match when a life total reaches zero; both at once is
// a draw.
func (e *Engine) checkOver() {
	if e.over {
		return
	}
	aDead := e.players[game.SideA].health <= 0
	bDead := e.players[game.SideB].health <= 0
	switch {
	case aDead && bDead:
		e.over, e.isDraw = true, true
	case aDead:
		e.over, e.winner = true, game.SideB
	case bDead:
		e.over, e.winner = true, game.SideA
	default:
		return
	}
	e.logger.Debug("match over", zap.Bool("draw", e.isDraw), zap.Stringer("winner", e.winner))
}

// Concede ends an unfinished match as a draw, used when the turn limit hits.
func (e *Engine) Concede() {
	if !e.over {
		e.over, e.isDraw = true, true
	}
}

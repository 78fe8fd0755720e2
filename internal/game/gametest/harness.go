// Package gametest provides builders for board scenarios used in tests.
package gametest

import (
	"github.com/emberdeck/duelist/internal/game"
)

// Unit creates a placed, ready unit with full health.
func Unit(id string, attack, health int, keywords ...game.Keyword) game.Unit {
	return game.Unit{
		ID:               id,
		Name:             id,
		Attack:           attack,
		Health:           health,
		MaxHealth:        health,
		RemainingAttacks: 1,
		Keywords:         game.NewKeywords(keywords...),
		IsPlaced:         true,
	}
}

// Exhausted returns u with no attacks left.
func Exhausted(u game.Unit) game.Unit {
	u.RemainingAttacks = 0
	return u
}

// Wounded returns u with its health lowered to health.
func Wounded(u game.Unit, health int) game.Unit {
	u.Health = health
	return u
}

// Monster creates a monster card.
func Monster(id string, cost, attack, health int, keywords ...game.Keyword) game.Card {
	return game.Card{
		ID:       id,
		Name:     id,
		Kind:     game.CardKindMonster,
		ManaCost: cost,
		Attack:   attack,
		Health:   health,
		Keywords: game.NewKeywords(keywords...),
	}
}

// Spell creates a spell card.
func Spell(id string, cost, value int, effects ...game.EffectType) game.Card {
	return game.Card{
		ID:          id,
		Name:        id,
		Kind:        game.CardKindSpell,
		ManaCost:    cost,
		Effects:     effects,
		EffectValue: value,
	}
}

// Source is an in-memory game.StateSource for scenarios.
type Source struct {
	units  map[game.Side][]game.Unit
	status map[game.Side]game.SideStatus
	hands  map[game.Side][]game.Card
	turn   game.TurnInfo
}

// NewSource creates a source with two empty boards at 20 health, turn 1,
// side A active and side B first next turn.
func NewSource() *Source {
	return &Source{
		units: map[game.Side][]game.Unit{},
		status: map[game.Side]game.SideStatus{
			game.SideA: {Health: 20, MaxHealth: 20, DeckSize: 20},
			game.SideB: {Health: 20, MaxHealth: 20, DeckSize: 20},
		},
		hands: map[game.Side][]game.Card{},
		turn:  game.TurnInfo{TurnCount: 1, Active: game.SideA, FirstNextTurn: game.SideB},
	}
}

// WithUnits places units on a side, assigning side and slots in order.
func (s *Source) WithUnits(side game.Side, units ...game.Unit) *Source {
	placed := make([]game.Unit, len(units))
	for i, u := range units {
		u.Side = side
		u.Slot = i
		placed[i] = u
	}
	s.units[side] = placed
	return s
}

// WithHealth sets the life total of a side.
func (s *Source) WithHealth(side game.Side, health int) *Source {
	st := s.status[side]
	st.Health = health
	s.status[side] = st
	return s
}

// WithMana sets the available mana of a side.
func (s *Source) WithMana(side game.Side, mana int) *Source {
	st := s.status[side]
	st.Mana = mana
	s.status[side] = st
	return s
}

// WithHand sets the hand of a side.
func (s *Source) WithHand(side game.Side, cards ...game.Card) *Source {
	s.hands[side] = cards
	return s
}

// WithTurn sets the turn counter and who acts first next turn.
func (s *Source) WithTurn(turn int, firstNext game.Side) *Source {
	s.turn.TurnCount = turn
	s.turn.FirstNextTurn = firstNext
	return s
}

// Remove takes a unit off the board, as if it died.
func (s *Source) Remove(id string) {
	for side, units := range s.units {
		for i := range units {
			if units[i].ID == id {
				units[i].IsDead = true
				s.units[side] = units
			}
		}
	}
}

// GetActiveUnits implements game.StateSource.
func (s *Source) GetActiveUnits(side game.Side) []game.Unit {
	return game.AliveUnits(s.units[side])
}

// Status implements game.StateSource. HandSize follows the configured hand.
func (s *Source) Status(side game.Side) game.SideStatus {
	st := s.status[side]
	if hand, ok := s.hands[side]; ok {
		st.HandSize = len(hand)
	}
	return st
}

// Hand implements game.StateSource.
func (s *Source) Hand(side game.Side) []game.Card {
	return append([]game.Card(nil), s.hands[side]...)
}

// Turn implements game.StateSource.
func (s *Source) Turn() game.TurnInfo {
	return s.turn
}

// State builds the snapshot for self.
func (s *Source) State(self game.Side, ctrl game.ControlEvaluator) *game.BoardState {
	return game.BuildBoardState(s, self, ctrl)
}

// Update applies fn to the unit with id, wherever it stands.
func (s *Source) Update(id string, fn func(u *game.Unit)) bool {
	for side, units := range s.units {
		for i := range units {
			if units[i].ID == id {
				fn(&units[i])
				s.units[side] = units
				return true
			}
		}
	}
	return false
}

// Place puts a unit on side at slot.
func (s *Source) Place(side game.Side, u game.Unit, slot int) {
	u.Side = side
	u.Slot = slot
	u.IsPlaced = true
	s.units[side] = append(s.units[side], u)
}

// TakeCard removes a card from a hand and returns it.
func (s *Source) TakeCard(side game.Side, id string) (game.Card, bool) {
	hand := s.hands[side]
	for i, c := range hand {
		if c.ID == id {
			s.hands[side] = append(hand[:i:i], hand[i+1:]...)
			return c, true
		}
	}
	return game.Card{}, false
}

// AdjustStatus applies fn to the status of a side.
func (s *Source) AdjustStatus(side game.Side, fn func(st *game.SideStatus)) {
	st := s.status[side]
	fn(&st)
	s.status[side] = st
}

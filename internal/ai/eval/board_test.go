package eval

import (
	"math"
	"testing"

	"github.com/emberdeck/duelist/internal/config"
	"github.com/emberdeck/duelist/internal/game"
	"github.com/emberdeck/duelist/internal/game/gametest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newBoardEvaluator(t *testing.T) *BoardEvaluator {
	return NewBoardEvaluator(config.Default().AI.Attacks, zaptest.NewLogger(t))
}

func TestUnitValue(t *testing.T) {
	e := newBoardEvaluator(t)

	tests := []struct {
		name string
		unit game.Unit
		want float64
	}{
		{"ready vanilla", gametest.Unit("u", 3, 4), (3*1.2 + 4) * 1.2},
		{"exhausted vanilla", gametest.Exhausted(gametest.Unit("u", 3, 4)), 3*1.2 + 4},
		{"taunt", gametest.Exhausted(gametest.Unit("u", 2, 5, game.KeywordTaunt)), (2*1.2 + 5) * 1.2},
		{"ranged bonus capped", gametest.Exhausted(gametest.Unit("u", 20, 1, game.KeywordRanged)), (20*1.2 + 1) * 1.5},
		{"wounded floor", gametest.Exhausted(gametest.Wounded(gametest.Unit("u", 2, 10), 2)), (2*1.2 + 2) * 0.7},
		{"synergy", gametest.Exhausted(gametest.Unit("u", 1, 1, game.KeywordTaunt, game.KeywordRanged)), (1*1.2+1)*1.12*1.18 + 3},
		{"dead", game.Unit{Attack: 5, Health: 5, IsDead: true, IsPlaced: true}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, e.UnitValue(&tt.unit), 1e-9)
		})
	}
}

func TestEvaluateIsSubLinear(t *testing.T) {
	e := newBoardEvaluator(t)

	single := []game.Unit{gametest.Exhausted(gametest.Unit("big", 6, 6))}
	split := []game.Unit{
		gametest.Exhausted(gametest.Unit("a", 2, 2)),
		gametest.Exhausted(gametest.Unit("b", 2, 2)),
		gametest.Exhausted(gametest.Unit("c", 2, 2)),
	}

	assert.InDelta(t, 13.2, e.Evaluate(single, game.SideA), 1e-9)
	assert.InDelta(t, 13.2/math.Sqrt(3), e.Evaluate(split, game.SideA), 1e-9)
	assert.Zero(t, e.Evaluate(nil, game.SideA))
	assert.Zero(t, e.Evaluate([]game.Unit{{Attack: 3, Health: 0, IsPlaced: true}}, game.SideA))
}

func TestApplyControlIsIdempotent(t *testing.T) {
	e := newBoardEvaluator(t)
	src := gametest.NewSource().
		WithUnits(game.SideA, gametest.Unit("a1", 3, 3, game.KeywordTaunt), gametest.Unit("a2", 2, 1, game.KeywordRanged)).
		WithUnits(game.SideB, gametest.Unit("b1", 4, 5, game.KeywordOverwhelm)).
		WithHealth(game.SideB, 9).
		WithMana(game.SideA, 3).
		WithTurn(6, game.SideB)

	first := src.State(game.SideA, e)
	second := src.State(game.SideA, e)
	require.NotNil(t, first)
	assert.Equal(t, first, second)

	again := first.Clone()
	e.ApplyControl(again)
	assert.Equal(t, first.SelfBoardControl, again.SelfBoardControl)
	assert.Equal(t, first.OpponentBoardControl, again.OpponentBoardControl)

	self, opp := e.Control(first)
	assert.Equal(t, first.SelfBoardControl, self)
	assert.Equal(t, first.OpponentBoardControl, opp)
}

func TestFlags(t *testing.T) {
	e := newBoardEvaluator(t)

	t.Run("self lethal", func(t *testing.T) {
		state := gametest.NewSource().
			WithUnits(game.SideA, gametest.Unit("a", 5, 5)).
			WithHealth(game.SideB, 4).
			State(game.SideA, e)
		assert.True(t, state.SelfLethal)
		assert.True(t, state.OpponentCriticalHealth)
		assert.False(t, state.CriticalHealth)
	})

	t.Run("taunt blocks lethal", func(t *testing.T) {
		state := gametest.NewSource().
			WithUnits(game.SideA, gametest.Unit("a", 5, 5)).
			WithUnits(game.SideB, gametest.Unit("wall", 1, 3, game.KeywordTaunt)).
			WithHealth(game.SideB, 4).
			State(game.SideA, e)
		assert.False(t, state.SelfLethal)
	})

	t.Run("opponent threatens lethal", func(t *testing.T) {
		state := gametest.NewSource().
			WithUnits(game.SideB, gametest.Exhausted(gametest.Unit("b", 7, 2))).
			WithHealth(game.SideA, 6).
			State(game.SideA, e)
		assert.True(t, state.LethalNextTurn)
		assert.True(t, state.CriticalHealth)
	})
}

func TestContextualFactors(t *testing.T) {
	e := newBoardEvaluator(t)

	t.Run("turn order favors the side acting first", func(t *testing.T) {
		src := gametest.NewSource().
			WithUnits(game.SideA, gametest.Unit("a", 3, 3)).
			WithUnits(game.SideB, gametest.Unit("b", 3, 3)).
			WithTurn(5, game.SideB)

		fromA := src.State(game.SideA, e)
		assert.Greater(t, fromA.OpponentBoardControl, fromA.SelfBoardControl)

		fromB := src.State(game.SideB, e)
		assert.Greater(t, fromB.SelfBoardControl, fromB.OpponentBoardControl)
	})

	t.Run("lethal boosts control", func(t *testing.T) {
		base := gametest.NewSource().
			WithUnits(game.SideA, gametest.Unit("a", 5, 5)).
			WithUnits(game.SideB, gametest.Unit("b", 1, 1))
		safe := base.State(game.SideA, e).SelfBoardControl
		lethal := base.WithHealth(game.SideB, 4).State(game.SideA, e).SelfBoardControl
		assert.Greater(t, lethal, safe)
	})

	t.Run("opponent lethal counts only when it acts first", func(t *testing.T) {
		build := func(threat, opponentFirst bool) *game.BoardState {
			s := &game.BoardState{
				SelfHealth:              10,
				SelfMaxHealth:           20,
				OpponentHealth:          20,
				OpponentMaxHealth:       20,
				SelfBoardControl:        10,
				OpponentBoardControl:    10,
				LethalNextTurn:          threat,
				IsOpponentFirstNextTurn: opponentFirst,
			}
			e.ApplyContextualFactors(s)
			return s
		}
		assert.Equal(t, build(false, false).OpponentBoardControl, build(true, false).OpponentBoardControl)
		assert.InDelta(t, build(false, true).OpponentBoardControl*1.5, build(true, true).OpponentBoardControl, 1e-9)
	})

	t.Run("presence and formation", func(t *testing.T) {
		crowd := gametest.NewSource().
			WithUnits(game.SideA,
				gametest.Unit("t", 2, 2, game.KeywordTaunt),
				gametest.Unit("r", 2, 2, game.KeywordRanged)).
			State(game.SideA, e)
		raw := e.Evaluate(crowd.SelfUnits, game.SideA)
		assert.Greater(t, crowd.SelfBoardControl, raw*1.15*1.10)
	})

	t.Run("critical health weighs late", func(t *testing.T) {
		src := gametest.NewSource().
			WithUnits(game.SideA, gametest.Unit("a", 3, 3)).
			WithUnits(game.SideB, gametest.Unit("b", 3, 3)).
			WithHealth(game.SideA, 4)
		early := src.WithTurn(2, game.SideB).State(game.SideA, e)
		late := src.WithTurn(9, game.SideB).State(game.SideA, e)
		assert.Less(t, late.SelfBoardControl, early.SelfBoardControl)
	})

	t.Run("nil state is ignored", func(t *testing.T) {
		assert.NotPanics(t, func() { e.ApplyContextualFactors(nil) })
		assert.NotPanics(t, func() { e.ApplyControl(nil) })
	})
}

func TestControlNeverNaN(t *testing.T) {
	e := newBoardEvaluator(t)
	state := &game.BoardState{
		SelfUnits:     []game.Unit{gametest.Unit("a", 0, 1)},
		OpponentUnits: nil,
	}
	e.ApplyControl(state)
	assert.False(t, math.IsNaN(state.SelfBoardControl))
	assert.False(t, math.IsNaN(state.OpponentBoardControl))
	assert.False(t, math.IsInf(state.ControlRatio(), 0))
}

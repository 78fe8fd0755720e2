package planner

import (
	"testing"

	"github.com/emberdeck/duelist/internal/ai/variance"
	"github.com/emberdeck/duelist/internal/config"
	"github.com/emberdeck/duelist/internal/game"
	"github.com/emberdeck/duelist/internal/game/gametest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttackContextResolve(t *testing.T) {
	state := gametest.NewSource().
		WithUnits(game.SideA, gametest.Unit("ogre", 4, 3, game.KeywordOverwhelm), gametest.Unit("archer", 2, 1, game.KeywordRanged)).
		WithUnits(game.SideB, gametest.Unit("big", 3, 6), gametest.Unit("small", 1, 2), gametest.Unit("shell", 1, 2, game.KeywordTough)).
		State(game.SideA, nil)

	ctx := NewAttackContext(state.SelfUnits, state.OpponentUnits, state.OpponentHealth, state)
	require.True(t, ctx.Valid)
	assert.Equal(t, 6, ctx.AvailableDamage())

	killed := ctx.Resolve("ogre", game.UnitTarget(state.OpponentUnits[0]))
	assert.False(t, killed)

	big, ok := ctx.Defender("big")
	require.True(t, ok)
	assert.Equal(t, 2, big.Health)
	_, ok = ctx.Defender("small")
	assert.False(t, ok, "splash of 2 kills the 1/2")
	shell, ok := ctx.Defender("shell")
	require.True(t, ok, "tough halves splash")
	assert.Equal(t, 1, shell.Health)

	ogre, ok := ctx.Attacker("ogre")
	assert.False(t, ok, "no attacks left")
	assert.Equal(t, 0, ogre.Health)
	assert.Equal(t, 1, ctx.LivingSelfUnits())

	// Ranged attackers take no counter damage.
	assert.True(t, ctx.Resolve("archer", game.UnitTarget(big)))
	archer, _ := ctx.Attacker("archer")
	assert.Equal(t, 1, archer.Health)

	// Unknown attackers are ignored.
	assert.False(t, ctx.Resolve("ghost", game.LifeTotalTarget(game.SideB)))
}

func TestAttackContextLifeTotal(t *testing.T) {
	ctx := NewAttackContext([]game.Unit{gametest.Unit("a", 5, 5)}, nil, 4, &game.BoardState{})
	assert.True(t, ctx.IsLethal())
	assert.True(t, ctx.Resolve("a", game.LifeTotalTarget(game.SideB)))
	assert.Equal(t, -1, ctx.LifeTotal)
}

func TestStandardOrderKey(t *testing.T) {
	s := NewAttackOrderStrategy(config.Default().AI.Attacks, nil, variance.Disabled(), nil)

	state := gametest.NewSource().
		WithUnits(game.SideA,
			gametest.Unit("plain", 5, 5),
			gametest.Unit("archer", 1, 1, game.KeywordRanged),
			gametest.Unit("ogre", 2, 2, game.KeywordOverwhelm),
			gametest.Unit("killer", 2, 9)).
		WithUnits(game.SideB, gametest.Unit("x", 1, 2), gametest.Unit("y", 4, 8)).
		State(game.SideA, nil)
	require.True(t, state.IsOpponentFirstNextTurn)

	ctx := NewAttackContext(state.SelfUnits, state.OpponentUnits, state.OpponentHealth, state)
	order := s.Order(ctx, false)

	ids := make([]string, 0, len(order))
	for _, u := range order {
		ids = append(ids, u.ID)
	}
	// Ranged while the opponent acts next, then Overwhelm, then kill
	// capability with attack descending.
	assert.Equal(t, []string{"archer", "ogre", "plain", "killer"}, ids)
}

func TestLethalOrderKeepsFaceAttackers(t *testing.T) {
	s := NewAttackOrderStrategy(config.Default().AI.Attacks, neverValuable{}, variance.Disabled(), nil)

	// a dies clearing the guard, b survives hitting face.
	state := gametest.NewSource().
		WithUnits(game.SideA, gametest.Unit("a", 3, 2), gametest.Unit("b", 3, 2)).
		WithUnits(game.SideB, gametest.Unit("guard", 2, 1, game.KeywordTaunt)).
		WithHealth(game.SideB, 2).
		State(game.SideA, nil)

	ctx := NewAttackContext(state.SelfUnits, state.OpponentUnits, state.OpponentHealth, state)
	require.True(t, ctx.IsLethal())
	order := s.Order(ctx, true)
	require.Len(t, order, 2)
	assert.Equal(t, "a", order[0].ID)
	assert.Equal(t, "b", order[1].ID)
	assert.Equal(t, 2, ctx.LivingSelfUnits(), "ordering leaves the context untouched")
}

func TestLethalOrderHoldsBackLastUnit(t *testing.T) {
	s := NewAttackOrderStrategy(config.Default().AI.Attacks, neverValuable{}, variance.Disabled(), nil)

	// Both units are needed for the two guards and both die to the counters.
	state := gametest.NewSource().
		WithUnits(game.SideA, gametest.Unit("a", 3, 2), gametest.Unit("b", 3, 2)).
		WithUnits(game.SideB,
			gametest.Unit("g1", 2, 1, game.KeywordTaunt),
			gametest.Unit("g2", 2, 1, game.KeywordTaunt)).
		WithHealth(game.SideB, 1).
		State(game.SideA, nil)

	ctx := NewAttackContext(state.SelfUnits, state.OpponentUnits, state.OpponentHealth, state)
	require.True(t, ctx.IsLethal())
	order := s.Order(ctx, true)
	require.Len(t, order, 1)
	assert.Equal(t, "a", order[0].ID)

	valuable := NewAttackOrderStrategy(config.Default().AI.Attacks, alwaysValuable{}, variance.Disabled(), nil)
	assert.Len(t, valuable.Order(ctx, true), 2)
}

type neverValuable struct{}

func (neverValuable) IsValuableTrade(game.Unit, game.Unit, *game.BoardState) bool { return false }

type alwaysValuable struct{}

func (alwaysValuable) IsValuableTrade(game.Unit, game.Unit, *game.BoardState) bool { return true }

package sim

import (
	"context"
	"testing"

	"github.com/emberdeck/duelist/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testRules() Rules {
	return Rules{StartHealth: 20, StartingHand: 4, MaxMana: 10, DeckSize: 30, MaxTurns: 60}
}

func scenarioEngine(t *testing.T, sc Scenario) *Engine {
	t.Helper()
	if sc.Round == 0 {
		sc.Round = 1
	}
	e, err := NewScenarioEngine(&sc, DefaultCatalog(), testRules(), zaptest.NewLogger(t))
	require.NoError(t, err)
	return e
}

func unitNamed(t *testing.T, e *Engine, side game.Side, name string) game.Unit {
	t.Helper()
	for _, u := range e.GetActiveUnits(side) {
		if u.Name == name {
			return u
		}
	}
	t.Fatalf("no unit %q on side %s", name, side)
	return game.Unit{}
}

func cardNamed(t *testing.T, e *Engine, side game.Side, name string) game.Card {
	t.Helper()
	for _, c := range e.Hand(side) {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no card %q in hand of %s", name, side)
	return game.Card{}
}

func TestAttackRespectsTaunt(t *testing.T) {
	e := scenarioEngine(t, Scenario{
		A: SideSetup{Units: []UnitSetup{{Card: "dune-raider"}}},
		B: SideSetup{Units: []UnitSetup{{Card: "shield-bearer"}, {Card: "ember-pup"}}},
	})
	ctx := context.Background()
	raider := unitNamed(t, e, game.SideA, "Dune Raider")
	pup := unitNamed(t, e, game.SideB, "Ember Pup")
	guard := unitNamed(t, e, game.SideB, "Shield Bearer")

	_, err := e.ExecuteAttack(ctx, raider.ID, game.LifeTotalTarget(game.SideB))
	assert.ErrorIs(t, err, ErrIllegalAction)
	_, err = e.ExecuteAttack(ctx, raider.ID, game.UnitTarget(pup))
	assert.ErrorIs(t, err, ErrIllegalAction)

	out, err := e.ExecuteAttack(ctx, raider.ID, game.UnitTarget(guard))
	require.NoError(t, err)
	assert.True(t, out.TargetDied)
	assert.False(t, out.AttackerDied)
	assert.Equal(t, 4, out.DamageDealt)
	assert.Equal(t, 1, out.CounterDamageDealt)
	assert.Equal(t, 2, unitNamed(t, e, game.SideA, "Dune Raider").Health)
	assert.Len(t, e.GetActiveUnits(game.SideB), 1)

	_, err = e.ExecuteAttack(ctx, raider.ID, game.UnitTarget(pup))
	assert.ErrorIs(t, err, ErrIllegalAction, "no attacks left")
}

func TestOverwhelmSplashesAndToughHalves(t *testing.T) {
	e := scenarioEngine(t, Scenario{
		A: SideSetup{Units: []UnitSetup{{Card: "bramble-ogre"}}},
		B: SideSetup{Units: []UnitSetup{{Card: "reed-archer"}, {Card: "ember-pup"}, {Card: "stone-golem"}}},
	})
	ogre := unitNamed(t, e, game.SideA, "Bramble Ogre")
	archer := unitNamed(t, e, game.SideB, "Reed Archer")

	out, err := e.ExecuteAttack(context.Background(), ogre.ID, game.UnitTarget(archer))
	require.NoError(t, err)
	assert.True(t, out.TargetDied)
	assert.Equal(t, 1, out.SplashKills)
	assert.Equal(t, 3, unitNamed(t, e, game.SideA, "Bramble Ogre").Health)

	left := e.GetActiveUnits(game.SideB)
	require.Len(t, left, 1)
	assert.Equal(t, "Stone Golem", left[0].Name)
	assert.Equal(t, 3, left[0].Health)
}

func TestRangedAttackerTakesNoCounter(t *testing.T) {
	e := scenarioEngine(t, Scenario{
		A: SideSetup{Units: []UnitSetup{{Card: "reed-archer"}}},
		B: SideSetup{Units: []UnitSetup{{Card: "dune-raider"}}},
	})
	archer := unitNamed(t, e, game.SideA, "Reed Archer")
	raider := unitNamed(t, e, game.SideB, "Dune Raider")

	out, err := e.ExecuteAttack(context.Background(), archer.ID, game.UnitTarget(raider))
	require.NoError(t, err)
	assert.Zero(t, out.CounterDamageDealt)
	assert.Equal(t, 2, unitNamed(t, e, game.SideA, "Reed Archer").Health)
	assert.Equal(t, 1, unitNamed(t, e, game.SideB, "Dune Raider").Health)
}

func TestPlayMonster(t *testing.T) {
	e := scenarioEngine(t, Scenario{
		A: SideSetup{Mana: 3, Hand: []string{"ember-pup", "elder-wyrm"}, Units: []UnitSetup{{Card: "reed-archer"}}},
	})
	ctx := context.Background()
	pup := cardNamed(t, e, game.SideA, "Ember Pup")
	wyrm := cardNamed(t, e, game.SideA, "Elder Wyrm")

	_, err := e.ExecutePlayCard(ctx, wyrm.ID, game.PlayTarget{Slot: 1})
	assert.ErrorIs(t, err, ErrIllegalAction, "too expensive")
	_, err = e.ExecutePlayCard(ctx, pup.ID, game.PlayTarget{Slot: 0})
	assert.ErrorIs(t, err, ErrIllegalAction, "slot occupied")

	out, err := e.ExecutePlayCard(ctx, pup.ID, game.PlayTarget{Slot: 1})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, 2, e.Status(game.SideA).Mana)
	assert.Equal(t, 1, e.Status(game.SideA).HandSize)

	summoned := unitNamed(t, e, game.SideA, "Ember Pup")
	assert.Equal(t, 1, summoned.Slot)
	assert.False(t, summoned.CanAttack(), "summoned units wait a turn")
}

func TestDamageSpellObeysTauntAndHealsFriendly(t *testing.T) {
	e := scenarioEngine(t, Scenario{
		A: SideSetup{Mana: 10, Hand: []string{"siphon"}, Units: []UnitSetup{{Card: "stone-golem", Health: 2}}},
		B: SideSetup{Units: []UnitSetup{{Card: "bastion-knight"}, {Card: "dune-raider"}}},
	})
	ctx := context.Background()
	siphon := cardNamed(t, e, game.SideA, "Siphon")
	raider := unitNamed(t, e, game.SideB, "Dune Raider")
	knight := unitNamed(t, e, game.SideB, "Bastion Knight")

	_, err := e.ExecutePlayCard(ctx, siphon.ID, game.PlayTarget{UnitID: raider.ID, Slot: -1})
	assert.ErrorIs(t, err, ErrIllegalAction)

	_, err = e.ExecutePlayCard(ctx, siphon.ID, game.PlayTarget{UnitID: knight.ID, Slot: -1})
	require.NoError(t, err)
	assert.Equal(t, 4, unitNamed(t, e, game.SideB, "Bastion Knight").Health)
	assert.Equal(t, 4, unitNamed(t, e, game.SideA, "Stone Golem").Health, "heal is capped at max health")
	assert.Equal(t, 7, e.Status(game.SideA).Mana)
}

func TestBurnTicksOnOwnersTurn(t *testing.T) {
	e := scenarioEngine(t, Scenario{
		A: SideSetup{Mana: 10, Hand: []string{"kindle"}, Deck: []string{"spark", "spark"}},
		B: SideSetup{Units: []UnitSetup{{Card: "ember-pup", Health: 1}, {Card: "shield-bearer"}}, Deck: []string{"spark", "spark"}},
	})
	kindle := cardNamed(t, e, game.SideA, "Kindle")
	guard := unitNamed(t, e, game.SideB, "Shield Bearer")

	_, err := e.ExecutePlayCard(context.Background(), kindle.ID, game.PlayTarget{UnitID: guard.ID, Slot: -1})
	require.NoError(t, err)
	assert.Equal(t, 4, unitNamed(t, e, game.SideB, "Shield Bearer").Health, "burn waits for the owner's turn")

	e.EndTurn()
	require.Equal(t, game.SideB, e.BeginTurn())
	assert.Equal(t, 3, unitNamed(t, e, game.SideB, "Shield Bearer").Health)

	// B opens round 2, so B's next turn follows immediately.
	e.EndTurn()
	require.Equal(t, game.SideB, e.BeginTurn())
	assert.Equal(t, 2, unitNamed(t, e, game.SideB, "Shield Bearer").Health)
}

func TestTemporaryModifiersExpire(t *testing.T) {
	e := scenarioEngine(t, Scenario{
		A: SideSetup{Mana: 10, Hand: []string{"battle-fury", "hex"}, Units: []UnitSetup{{Card: "ember-pup"}}, Deck: []string{"spark", "spark", "spark"}},
		B: SideSetup{Units: []UnitSetup{{Card: "dune-raider"}}, Deck: []string{"spark", "spark", "spark"}},
	})
	ctx := context.Background()
	pup := unitNamed(t, e, game.SideA, "Ember Pup")
	raider := unitNamed(t, e, game.SideB, "Dune Raider")

	_, err := e.ExecutePlayCard(ctx, cardNamed(t, e, game.SideA, "Battle Fury").ID, game.PlayTarget{UnitID: pup.ID, Slot: -1})
	require.NoError(t, err)
	_, err = e.ExecutePlayCard(ctx, cardNamed(t, e, game.SideA, "Hex").ID, game.PlayTarget{UnitID: raider.ID, Slot: -1})
	require.NoError(t, err)

	pup = unitNamed(t, e, game.SideA, "Ember Pup")
	assert.Equal(t, 5, pup.Attack)
	assert.Equal(t, 4, pup.Health)
	assert.Equal(t, 1, unitNamed(t, e, game.SideB, "Dune Raider").Attack)

	// round 1: B; round 2: B then A
	e.EndTurn()
	e.BeginTurn()
	assert.Equal(t, 1, unitNamed(t, e, game.SideB, "Dune Raider").Attack)
	e.EndTurn()
	e.BeginTurn()
	assert.Equal(t, 4, unitNamed(t, e, game.SideB, "Dune Raider").Attack)
	e.EndTurn()
	require.Equal(t, game.SideA, e.BeginTurn())

	pup = unitNamed(t, e, game.SideA, "Ember Pup")
	assert.Equal(t, 2, pup.Attack)
	assert.Equal(t, 1, pup.MaxHealth)
	assert.Equal(t, 1, pup.Health, "health falls back to the base maximum")
}

func TestBloodpriceEndsMatch(t *testing.T) {
	e := scenarioEngine(t, Scenario{
		A: SideSetup{Mana: 10, Hand: []string{"blood-pact", "spark"}},
		B: SideSetup{Health: 3, Units: []UnitSetup{{Card: "ember-pup"}}},
	})
	ctx := context.Background()
	_, err := e.ExecutePlayCard(ctx, cardNamed(t, e, game.SideA, "Blood Pact").ID, game.NoTarget)
	require.NoError(t, err)

	assert.True(t, e.Over())
	winner, ok := e.Winner()
	require.True(t, ok)
	assert.Equal(t, game.SideA, winner)
	assert.Equal(t, 18, e.Status(game.SideA).Health)

	_, err = e.ExecutePlayCard(ctx, cardNamed(t, e, game.SideA, "Spark").ID, game.NoTarget)
	assert.ErrorIs(t, err, ErrMatchOver)
}

func TestBloodpriceMutualKillIsDraw(t *testing.T) {
	e := scenarioEngine(t, Scenario{
		A: SideSetup{Health: 2, Mana: 10, Hand: []string{"blood-pact"}},
		B: SideSetup{Health: 4},
	})
	_, err := e.ExecutePlayCard(context.Background(), cardNamed(t, e, game.SideA, "Blood Pact").ID, game.NoTarget)
	require.NoError(t, err)
	assert.True(t, e.Over())
	_, ok := e.Winner()
	assert.False(t, ok)
}

func TestDrawAndFatigue(t *testing.T) {
	e := scenarioEngine(t, Scenario{
		A: SideSetup{Mana: 10, Hand: []string{"insight"}, Deck: []string{"spark"}},
	})
	_, err := e.ExecutePlayCard(context.Background(), cardNamed(t, e, game.SideA, "Insight").ID, game.NoTarget)
	require.NoError(t, err)

	st := e.Status(game.SideA)
	assert.Equal(t, 1, st.HandSize)
	assert.Zero(t, st.DeckSize)
	assert.Equal(t, 19, st.Health, "second draw hits an empty deck")

	e.EndTurn()
	e.BeginTurn()
	e.EndTurn()
	e.BeginTurn()
	e.EndTurn()
	require.Equal(t, game.SideA, e.BeginTurn())
	assert.Equal(t, 17, e.Status(game.SideA).Health, "fatigue grows")
}

func TestOverdrawBurnsCard(t *testing.T) {
	hand := make([]string, MaxHandSize)
	for i := range hand {
		hand[i] = "spark"
	}
	e := scenarioEngine(t, Scenario{
		Active: "B",
		A:      SideSetup{Hand: hand, Deck: []string{"elder-wyrm"}},
		B:      SideSetup{Deck: []string{"spark"}},
	})
	e.EndTurn()
	require.Equal(t, game.SideA, e.BeginTurn())
	st := e.Status(game.SideA)
	assert.Equal(t, MaxHandSize, st.HandSize)
	assert.Zero(t, st.DeckSize)
	for _, c := range e.Hand(game.SideA) {
		assert.NotEqual(t, "Elder Wyrm", c.Name)
	}
}

func TestInitiativeAlternates(t *testing.T) {
	e := NewEngine("m-order", DefaultCatalog(), testRules(), 7, zaptest.NewLogger(t))
	first := e.BeginTurn()
	assert.Equal(t, 1, e.Round())
	assert.Equal(t, first.Opponent(), e.Turn().FirstNextTurn)
	assert.Equal(t, 1, e.Status(first).Mana)
	assert.Equal(t, 5, e.Status(first).HandSize)

	e.EndTurn()
	second := e.BeginTurn()
	assert.Equal(t, first.Opponent(), second)
	assert.Equal(t, second, e.Turn().FirstNextTurn, "the second player opens the next round")

	e.EndTurn()
	assert.Equal(t, second, e.BeginTurn())
	assert.Equal(t, 2, e.Round())
	assert.Equal(t, 2, e.Status(second).Mana)
}

func TestEngineIsDeterministic(t *testing.T) {
	a := NewEngine("m-same", DefaultCatalog(), testRules(), 99, zaptest.NewLogger(t))
	b := NewEngine("m-same", DefaultCatalog(), testRules(), 99, zaptest.NewLogger(t))
	assert.Equal(t, a.Snapshot().Checksum(), b.Snapshot().Checksum())
	assert.Equal(t, a.Hand(game.SideA), b.Hand(game.SideA))

	c := NewEngine("m-same", DefaultCatalog(), testRules(), 100, zaptest.NewLogger(t))
	assert.NotEqual(t, a.Snapshot().Checksum(), c.Snapshot().Checksum())
}

func TestCanceledContextRejectsActions(t *testing.T) {
	e := scenarioEngine(t, Scenario{A: SideSetup{Units: []UnitSetup{{Card: "dune-raider"}}}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.ExecuteAttack(ctx, unitNamed(t, e, game.SideA, "Dune Raider").ID, game.LifeTotalTarget(game.SideB))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 20, e.Status(game.SideB).Health)
}

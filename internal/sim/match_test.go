package sim

import (
	"context"
	"testing"

	"github.com/emberdeck/duelist/internal/config"
	"github.com/emberdeck/duelist/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestMatchRunsToCompletion(t *testing.T) {
	cfg := config.Default()
	registry := telemetry.NewRegistry()
	matches := telemetry.NewMatchWatcher()
	decisions := telemetry.NewDecisionWatcher("A")
	registry.Add(matches)
	registry.Add(decisions)

	m, err := NewMatch(cfg, DefaultCatalog(), 1, WithSink(registry), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, []string{"A", "B", Draw}, res.Winner)
	assert.LessOrEqual(t, res.Rounds, cfg.Simulation.MaxTurns)
	assert.Equal(t, m.ID(), res.MatchID)
	assert.NotEmpty(t, res.Checksum)
	assert.Greater(t, m.Replay().Size(), 1)

	results := matches.Results()
	require.Len(t, results, 1)
	assert.Equal(t, res.Winner, results[0].Winner)
	assert.Equal(t, res.MatchID, results[0].MatchID)
	assert.Greater(t, decisions.Stats().Turns, 0)
}

func TestMatchIsReproducible(t *testing.T) {
	cfg := config.Default()
	run := func() Result {
		m, err := NewMatch(cfg, DefaultCatalog(), 42, WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		res, err := m.Run(context.Background())
		require.NoError(t, err)
		return res
	}
	first, second := run(), run()
	assert.Equal(t, first, second)
}

func TestMatchTurnLimitIsDraw(t *testing.T) {
	cfg := config.Default()
	cfg.Simulation.MaxTurns = 1
	m, err := NewMatch(cfg, DefaultCatalog(), 3, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Draw, res.Winner)
	assert.Equal(t, 1, res.Rounds)
	// opening state plus one per turn
	assert.Equal(t, 3, m.Replay().Size())
}

func TestScenarioMatchFindsLethal(t *testing.T) {
	cfg := config.Default()
	cfg.AI.Variance.Enabled = false
	sc, err := ParseScenario([]byte(`
name: lethal-through-taunt
round: 5
active: A
a:
  units:
    - card: dune-raider
    - card: reed-archer
b:
  health: 2
  units:
    - card: shield-bearer
`))
	require.NoError(t, err)

	m, err := NewScenarioMatch(cfg, DefaultCatalog(), sc, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A", res.Winner)
	assert.Equal(t, 5, res.Rounds)
}

func TestMatchStopsOnCanceledContext(t *testing.T) {
	m, err := NewMatch(config.Default(), DefaultCatalog(), 9, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = m.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, m.Engine().Over())
}

func TestScenarioRejectsUnknownCards(t *testing.T) {
	sc := &Scenario{Name: "bad", A: SideSetup{Hand: []string{"nope"}}}
	_, err := NewScenarioEngine(sc, DefaultCatalog(), testRules(), zaptest.NewLogger(t))
	assert.Error(t, err)

	sc = &Scenario{Name: "spell-unit", A: SideSetup{Units: []UnitSetup{{Card: "spark"}}}}
	_, err = NewScenarioEngine(sc, DefaultCatalog(), testRules(), zaptest.NewLogger(t))
	assert.Error(t, err)

	_, err = ParseScenario([]byte("active: C"))
	assert.Error(t, err)
}

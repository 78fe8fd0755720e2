package variance

import (
	"testing"

	"github.com/emberdeck/duelist/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func enabledParams() config.VarianceConfig {
	return config.VarianceConfig{
		Enabled:                     true,
		SecondBestProbability:       0.2,
		ThirdBestProbability:        0.1,
		ReconsiderProbability:       0.25,
		OrderShuffleProbability:     0.3,
		SkipAttackProbability:       0.15,
		IgnoreProtectionProbability: 0.05,
		FaceMistakeProbability:      0.1,
		SkipTurnProbability:         0.2,
		ScoreVariance:               0.1,
	}
}

func TestNewRejectsOutOfRangeProbability(t *testing.T) {
	params := enabledParams()
	params.SkipAttackProbability = 1.2
	_, err := New(params, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestDisabledNeverDeviates(t *testing.T) {
	v := Disabled()
	for i := 0; i < 1000; i++ {
		assert.Equal(t, 0, v.PickRank(5))
		assert.Equal(t, 2, v.Reconsider(2, 5))
		assert.False(t, v.SkipAttack())
		assert.False(t, v.FaceMistake())
		assert.False(t, v.SkipTurn())
		assert.False(t, v.IgnoreProtection())
		assert.False(t, v.Roll(0.99))
		assert.Equal(t, 42.0, v.Perturb(42))
	}
	assert.True(t, v.Roll(1), "certainties still hold when disabled")
}

func TestConfigDisabledBehavesLikeDisabled(t *testing.T) {
	params := enabledParams()
	params.Enabled = false
	v, err := New(params, 7)
	require.NoError(t, err)
	for i := 0; i < 500; i++ {
		assert.False(t, v.SkipAttack())
		assert.Equal(t, 0, v.PickRank(3))
	}
}

func TestRatesTrackProbabilities(t *testing.T) {
	v, err := New(enabledParams(), 42, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	const rounds = 20000
	skips, faces, turns := 0, 0, 0
	ranks := map[int]int{}
	for i := 0; i < rounds; i++ {
		if v.SkipAttack() {
			skips++
		}
		if v.FaceMistake() {
			faces++
		}
		if v.SkipTurn() {
			turns++
		}
		ranks[v.PickRank(4)]++
	}

	assert.InDelta(t, 0.15, float64(skips)/rounds, 0.02)
	assert.InDelta(t, 0.10, float64(faces)/rounds, 0.02)
	assert.InDelta(t, 0.20, float64(turns)/rounds, 0.02)
	assert.InDelta(t, 0.70, float64(ranks[0])/rounds, 0.02)
	assert.InDelta(t, 0.20, float64(ranks[1])/rounds, 0.02)
	assert.InDelta(t, 0.10, float64(ranks[2])/rounds, 0.02)
}

func TestPickRankRespectsCandidateCount(t *testing.T) {
	params := enabledParams()
	params.SecondBestProbability = 0
	params.ThirdBestProbability = 1
	v, err := New(params, 3)
	require.NoError(t, err)

	// Only two candidates: third best does not exist, best is kept.
	for i := 0; i < 100; i++ {
		assert.Equal(t, 0, v.PickRank(2))
		assert.Equal(t, 0, v.PickRank(1))
	}
	assert.Equal(t, 2, v.PickRank(3))
}

func TestReconsiderMovesToAdjacentCandidate(t *testing.T) {
	params := enabledParams()
	params.ReconsiderProbability = 1
	v, err := New(params, 9)
	require.NoError(t, err)

	assert.Equal(t, 1, v.Reconsider(0, 4))
	assert.Equal(t, 2, v.Reconsider(3, 4))
	for i := 0; i < 100; i++ {
		got := v.Reconsider(2, 5)
		assert.Contains(t, []int{1, 3}, got)
	}
	assert.Equal(t, 0, v.Reconsider(0, 1), "single candidate cannot move")
}

func TestPerturbIsBounded(t *testing.T) {
	v, err := New(enabledParams(), 11)
	require.NoError(t, err)
	for i := 0; i < 5000; i++ {
		got := v.Perturb(50)
		assert.GreaterOrEqual(t, got, 45.0)
		assert.LessOrEqual(t, got, 55.0)
		neg := v.Perturb(-20)
		assert.GreaterOrEqual(t, neg, -22.0)
		assert.LessOrEqual(t, neg, -18.0)
	}
	assert.Equal(t, 0.0, v.Perturb(0))
}

func TestPartialShuffleKeepsElements(t *testing.T) {
	params := enabledParams()
	params.OrderShuffleProbability = 1
	v, err := New(params, 5)
	require.NoError(t, err)

	order := []int{1, 2, 3, 4, 5, 6}
	shuffled := v.PartialShuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	assert.True(t, shuffled)
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6}, order)
}

func TestSameSeedSameDecisions(t *testing.T) {
	a, err := New(enabledParams(), 1234)
	require.NoError(t, err)
	b, err := New(enabledParams(), 1234)
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		assert.Equal(t, a.SkipAttack(), b.SkipAttack())
		assert.Equal(t, a.PickRank(3), b.PickRank(3))
		assert.Equal(t, a.Perturb(10), b.Perturb(10))
	}
}

func TestObserverReceivesFiredKinds(t *testing.T) {
	params := enabledParams()
	params.FaceMistakeProbability = 1
	params.SkipTurnProbability = 1
	var seen []Kind
	v, err := New(params, 2, WithObserver(func(k Kind) { seen = append(seen, k) }))
	require.NoError(t, err)

	v.FaceMistake()
	v.SkipTurn()
	v.Chance(KindHold, 1)
	assert.Equal(t, []Kind{KindFaceMistake, KindSkipTurn, KindHold}, seen)
}

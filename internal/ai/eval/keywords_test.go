package eval

import (
	"testing"

	"github.com/emberdeck/duelist/internal/game"
	"github.com/emberdeck/duelist/internal/game/gametest"
	"github.com/stretchr/testify/assert"
)

func TestDefaultKeywordScorer(t *testing.T) {
	s := DefaultKeywordScorer{}

	tough := gametest.Unit("tough", 2, 4, game.KeywordTough)
	assert.Equal(t, 3.0, s.ScoreKeywords(tough, gametest.Unit("brute", 3, 9), nil))

	archer := gametest.Unit("archer", 1, 1, game.KeywordRanged)
	assert.Equal(t, 4.0, s.ScoreKeywords(gametest.Unit("a", 2, 2), archer, nil))

	shell := gametest.Unit("shell", 0, 3, game.KeywordTough)
	assert.Equal(t, -3.0, s.ScoreKeywords(gametest.Unit("a", 2, 2), shell, nil))
}

func TestDefaultEffectScorer(t *testing.T) {
	s := DefaultEffectScorer{}

	assert.Zero(t, s.ScoreEffect(game.EffectDraw, nil))
	assert.Equal(t, 6.0, s.ScoreEffect(game.EffectDraw, &game.BoardState{SelfHandSize: 0}))
	assert.Equal(t, -6.0, s.ScoreEffect(game.EffectDraw, &game.BoardState{SelfHandSize: 7}))
	assert.Equal(t, 4.0, s.ScoreEffect(game.EffectHeal, &game.BoardState{CriticalHealth: true}))
	assert.Equal(t, -10.0, s.ScoreEffect(game.EffectBloodprice, &game.BoardState{CriticalHealth: true}))
	assert.Zero(t, s.ScoreEffect(game.EffectBuff, &game.BoardState{}))
}

package sim

import (
	"strings"
	"testing"

	"github.com/emberdeck/duelist/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `id,name,kind,cost,attack,health,keywords,effects,value,duration
gate-warden,Gate Warden,Monster,3,2,5,taunt|tough,,,
ash-storm,Ash Storm,spell,4,,,,burn|draw,2,2
`

func TestReadCardsCSV(t *testing.T) {
	defs, err := ReadCardsCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, defs, 2)

	assert.Equal(t, "monster", defs[0].Kind)
	assert.Equal(t, []string{"taunt", "tough"}, defs[0].Keywords)
	assert.Equal(t, 5, defs[0].Health)
	assert.Equal(t, []string{"burn", "draw"}, defs[1].Effects)
	assert.Equal(t, 2, defs[1].Duration)

	data, err := MarshalCatalog(defs)
	require.NoError(t, err)
	c, err := ParseCatalog(data)
	require.NoError(t, err)
	storm, err := c.Instantiate("ash-storm", "x")
	require.NoError(t, err)
	assert.Equal(t, []game.EffectType{game.EffectBurn, game.EffectDraw}, storm.Effects)
}

func TestReadCardsCSVErrors(t *testing.T) {
	_, err := ReadCardsCSV(strings.NewReader("id,name\n"))
	assert.Error(t, err)

	_, err = ReadCardsCSV(strings.NewReader("name,cost\nfoo,1\n"))
	assert.ErrorContains(t, err, "missing column")

	_, err = ReadCardsCSV(strings.NewReader("id,kind,cost\nfoo,spell,two\n"))
	assert.ErrorContains(t, err, "row 2")

	_, err = ReadCardsCSV(strings.NewReader("id,kind,cost,keywords,health\nfoo,monster,1,flying,1\n"))
	assert.ErrorContains(t, err, "flying")
}

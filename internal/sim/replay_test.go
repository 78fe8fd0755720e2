package sim

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReplay() *Replay {
	r := NewReplay("m-replay", 5)
	for round := 1; round <= 3; round++ {
		r.Record(Snapshot{Round: round, Active: "A", Sides: [2]SideSnapshot{{Health: 20 - round}, {Health: 20}}})
	}
	return r
}

func TestReplayNavigation(t *testing.T) {
	r := testReplay()
	require.Equal(t, 3, r.Size())

	s, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, 1, s.Round)
	s, _ = r.Next()
	assert.Equal(t, 2, s.Round)

	s, ok = r.Previous()
	require.True(t, ok)
	assert.Equal(t, 2, s.Round)

	s, ok = r.Skip(10)
	require.True(t, ok)
	assert.Equal(t, 3, s.Round)
	s, _ = r.Skip(-10)
	assert.Equal(t, 1, s.Round)

	r.Start()
	_, ok = r.Previous()
	assert.False(t, ok)

	_, ok = r.At(3)
	assert.False(t, ok)
	s, ok = r.At(2)
	require.True(t, ok)
	assert.Equal(t, 17, s.Sides[0].Health)
}

func TestReplayEncodeDecode(t *testing.T) {
	r := testReplay()
	var buf bytes.Buffer
	require.NoError(t, r.Encode(&buf))

	loaded, err := DecodeReplay(&buf)
	require.NoError(t, err)
	assert.Equal(t, r.MatchID, loaded.MatchID)
	assert.Equal(t, r.Seed, loaded.Seed)
	assert.Equal(t, r.Size(), loaded.Size())
	assert.Equal(t, r.Checksum(), loaded.Checksum())
}

func TestReplaySaveToFile(t *testing.T) {
	r := testReplay()
	path, err := r.SaveToFile(t.TempDir())
	require.NoError(t, err)

	loaded, err := LoadReplayFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, r.Checksum(), loaded.Checksum())

	_, err = DecodeReplay(bytes.NewBufferString("not gzip"))
	assert.Error(t, err)
}

func TestChecksumChangesWithState(t *testing.T) {
	a := Snapshot{Round: 1, Sides: [2]SideSnapshot{{Health: 20}, {Health: 20}}}
	b := a
	b.Sides[1].Health = 19
	assert.Equal(t, a.Checksum(), a.Checksum())
	assert.NotEqual(t, a.Checksum(), b.Checksum())
}

package sim

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/emberdeck/duelist/internal/game"
)

// UnitSnapshot is a unit as recorded in a replay.
type UnitSnapshot struct {
	ID               string `json:"id" yaml:"id"`
	Name             string `json:"name" yaml:"name"`
	Slot             int    `json:"slot" yaml:"slot"`
	Attack           int    `json:"attack" yaml:"attack"`
	Health           int    `json:"health" yaml:"health"`
	MaxHealth        int    `json:"max_health" yaml:"max_health"`
	RemainingAttacks int    `json:"remaining_attacks" yaml:"remaining_attacks"`
	Keywords         string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Burning          int    `json:"burning,omitempty" yaml:"burning,omitempty"`
}

// SideSnapshot is one side as recorded in a replay.
type SideSnapshot struct {
	Health   int            `json:"health" yaml:"health"`
	Mana     int            `json:"mana" yaml:"mana"`
	Hand     []string       `json:"hand" yaml:"hand"`
	DeckSize int            `json:"deck_size" yaml:"deck_size"`
	Fatigue  int            `json:"fatigue,omitempty" yaml:"fatigue,omitempty"`
	Units    []UnitSnapshot `json:"units" yaml:"units"`
}

// Snapshot is a point-in-time copy of an engine.
type Snapshot struct {
	Round  int             `json:"round" yaml:"round"`
	Active string          `json:"active" yaml:"active"`
	Over   bool            `json:"over" yaml:"over"`
	Winner string          `json:"winner,omitempty" yaml:"winner,omitempty"`
	Sides  [2]SideSnapshot `json:"sides" yaml:"sides"`
}

// Snapshot copies the current state of the match.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{Round: e.round, Active: e.active.String(), Over: e.over}
	if w, ok := e.Winner(); ok {
		s.Winner = w.String()
	}
	for i, p := range e.players {
		side := SideSnapshot{
			Health:   p.health,
			Mana:     p.mana.Available(),
			Hand:     make([]string, 0, len(p.hand)),
			DeckSize: len(p.deck),
			Fatigue:  p.fatigue,
			Units:    make([]UnitSnapshot, 0, len(p.units)),
		}
		for _, c := range p.hand {
			side.Hand = append(side.Hand, c.Name)
		}
		for _, u := range p.units {
			burning := 0
			for _, b := range u.burns {
				burning += b.amount * b.turns
			}
			side.Units = append(side.Units, UnitSnapshot{
				ID:               u.ID,
				Name:             u.Name,
				Slot:             u.Slot,
				Attack:           u.Attack,
				Health:           u.Health,
				MaxHealth:        u.MaxHealth,
				RemainingAttacks: u.RemainingAttacks,
				Keywords:         u.Keywords.String(),
				Burning:          burning,
			})
		}
		sort.Slice(side.Units, func(a, b int) bool { return side.Units[a].Slot < side.Units[b].Slot })
		s.Sides[i] = side
	}
	return s
}

// Checksum hashes a canonical rendering of the snapshot. Two matches played
// with the same seed produce the same checksums.
func (s Snapshot) Checksum() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "ROUND:%d|%s|%t|%s\n", s.Round, s.Active, s.Over, s.Winner)
	for i, side := range s.Sides {
		fmt.Fprintf(&buf, "SIDE:%s|%d|%d|%d|%d\n", game.Side(i), side.Health, side.Mana, side.DeckSize, side.Fatigue)
		for _, name := range side.Hand {
			fmt.Fprintf(&buf, "  HAND:%s\n", name)
		}
		for _, u := range side.Units {
			fmt.Fprintf(&buf, "  UNIT:%s|%s|%d|%d|%d|%d|%d|%s|%d\n",
				u.ID, u.Name, u.Slot, u.Attack, u.Health, u.MaxHealth, u.RemainingAttacks, u.Keywords, u.Burning)
		}
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

package sim

import (
	"fmt"
	"os"
	"strings"

	"github.com/emberdeck/duelist/internal/game"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Scenario is a hand-written mid-game position, loaded from YAML. The match
// starts inside the active side's turn with mana already refilled.
type Scenario struct {
	Name   string    `yaml:"name"`
	Seed   int64     `yaml:"seed"`
	Round  int       `yaml:"round"`
	Active string    `yaml:"active"`
	A      SideSetup `yaml:"a"`
	B      SideSetup `yaml:"b"`
}

// SideSetup places one side of a scenario. Cards are catalog IDs.
type SideSetup struct {
	Health int         `yaml:"health"`
	Mana   int         `yaml:"mana"`
	Hand   []string    `yaml:"hand"`
	Deck   []string    `yaml:"deck"`
	Units  []UnitSetup `yaml:"units"`
}

// UnitSetup is a unit already on the board. Health 0 means the card's
// printed health; Summoned units cannot attack this turn.
type UnitSetup struct {
	Card     string `yaml:"card"`
	Slot     *int   `yaml:"slot,omitempty"`
	Health   int    `yaml:"health,omitempty"`
	Summoned bool   `yaml:"summoned,omitempty"`
}

// LoadScenario reads a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %s: %w", path, err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes a scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}
	if sc.Round < 1 {
		sc.Round = 1
	}
	if _, err := parseSide(sc.Active); err != nil {
		return nil, err
	}
	return &sc, nil
}

func parseSide(name string) (game.Side, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "A":
		return game.SideA, nil
	case "B":
		return game.SideB, nil
	default:
		return 0, fmt.Errorf("unknown side %q", name)
	}
}

// NewScenarioEngine builds an engine positioned at the scenario.
func NewScenarioEngine(sc *Scenario, catalog *Catalog, rules Rules, logger *zap.Logger) (*Engine, error) {
	active, err := parseSide(sc.Active)
	if err != nil {
		return nil, err
	}
	e := newEngine("scenario-"+sc.Name, catalog, rules, sc.Seed, logger)
	e.round = sc.Round
	if e.round < 1 {
		e.round = 1
	}
	e.active = active
	e.inTurn = true
	// active opens this round
	e.initialFirst = active
	if e.round%2 == 0 {
		e.initialFirst = active.Opponent()
	}

	for i, setup := range []SideSetup{sc.A, sc.B} {
		if err := e.place(game.Side(i), setup); err != nil {
			return nil, fmt.Errorf("scenario %s side %s: %w", sc.Name, game.Side(i), err)
		}
	}
	e.checkOver()
	return e, nil
}

func (e *Engine) place(side game.Side, setup SideSetup) error {
	p := e.players[side]
	if setup.Health > 0 {
		p.health = setup.Health
		if p.health > p.maxHealth {
			p.maxHealth = p.health
		}
	}
	p.mana.Refill(setup.Mana)

	for _, id := range setup.Hand {
		card, err := e.catalog.Instantiate(id, e.newID())
		if err != nil {
			return err
		}
		p.hand = append(p.hand, card)
	}
	for _, id := range setup.Deck {
		if _, ok := e.catalog.Lookup(id); !ok {
			return fmt.Errorf("unknown card %q", id)
		}
	}
	// the deck is drawn from the end
	for i := len(setup.Deck) - 1; i >= 0; i-- {
		p.deck = append(p.deck, setup.Deck[i])
	}

	for i, us := range setup.Units {
		card, err := e.catalog.Instantiate(us.Card, e.newID())
		if err != nil {
			return err
		}
		if !card.IsMonster() {
			return fmt.Errorf("%s is not a monster", us.Card)
		}
		slot := i
		if us.Slot != nil {
			slot = *us.Slot
		}
		if slot < 0 || slot >= game.DefaultMaxBoardSlots {
			return fmt.Errorf("slot %d out of range", slot)
		}
		for _, other := range p.units {
			if other.Slot == slot {
				return fmt.Errorf("slot %d used twice", slot)
			}
		}
		health := card.Health
		if us.Health > 0 {
			health = us.Health
		}
		attacks := 1
		if us.Summoned {
			attacks = 0
		}
		p.units = append(p.units, &unitState{Unit: game.Unit{
			ID:               card.ID,
			Name:             card.Name,
			Side:             side,
			Slot:             slot,
			Attack:           card.Attack,
			Health:           health,
			MaxHealth:        card.Health,
			RemainingAttacks: attacks,
			Keywords:         card.Keywords,
			IsPlaced:         true,
		}})
	}
	return nil
}

package sim

import (
	_ "embed"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/emberdeck/duelist/internal/game"
	"gopkg.in/yaml.v3"
)

//go:embed cards.yaml
var defaultCatalog []byte

// CardDef is one card of a catalog as written in YAML.
type CardDef struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind"`
	Cost     int      `yaml:"cost"`
	Attack   int      `yaml:"attack,omitempty"`
	Health   int      `yaml:"health,omitempty"`
	Keywords []string `yaml:"keywords,omitempty"`
	Effects  []string `yaml:"effects,omitempty"`
	Value    int      `yaml:"value,omitempty"`
	Duration int      `yaml:"duration,omitempty"`
}

// Catalog is the set of cards decks are drawn from.
type Catalog struct {
	Cards []CardDef `yaml:"cards"`

	byID map[string]CardDef
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

// LoadCatalog reads a YAML catalog from path; an empty path yields the
// built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if len(c.Cards) == 0 {
		return nil, fmt.Errorf("catalog has no cards")
	}
	c.byID = make(map[string]CardDef, len(c.Cards))
	for _, def := range c.Cards {
		if _, err := def.card(def.ID); err != nil {
			return nil, err
		}
		if _, dup := c.byID[def.ID]; dup {
			return nil, fmt.Errorf("duplicate card id %q", def.ID)
		}
		c.byID[def.ID] = def
	}
	return &c, nil
}

// Lookup returns the definition with id.
func (c *Catalog) Lookup(id string) (CardDef, bool) {
	def, ok := c.byID[id]
	return def, ok
}

// Instantiate creates a card with a fresh instance ID from definition id.
func (c *Catalog) Instantiate(defID, instanceID string) (game.Card, error) {
	def, ok := c.Lookup(defID)
	if !ok {
		return game.Card{}, fmt.Errorf("unknown card %q", defID)
	}
	return def.card(instanceID)
}

// RandomDeck draws size definition IDs uniformly from the catalog.
func (c *Catalog) RandomDeck(rng *rand.Rand, size int) []string {
	deck := make([]string, size)
	for i := range deck {
		deck[i] = c.Cards[rng.Intn(len(c.Cards))].ID
	}
	return deck
}

func (d CardDef) card(instanceID string) (game.Card, error) {
	if d.ID == "" {
		return game.Card{}, fmt.Errorf("card without id")
	}
	if d.Cost < 0 {
		return game.Card{}, fmt.Errorf("card %s: negative cost", d.ID)
	}
	name := d.Name
	if name == "" {
		name = d.ID
	}
	card := game.Card{ID: instanceID, Name: name, ManaCost: d.Cost}

	switch strings.ToLower(d.Kind) {
	case "monster", "":
		if d.Health <= 0 || d.Attack < 0 {
			return game.Card{}, fmt.Errorf("card %s: monster needs positive health", d.ID)
		}
		card.Kind = game.CardKindMonster
		card.Attack = d.Attack
		card.Health = d.Health
		for _, name := range d.Keywords {
			k, ok := game.ParseKeyword(name)
			if !ok {
				return game.Card{}, fmt.Errorf("card %s: unknown keyword %q", d.ID, name)
			}
			card.Keywords |= game.NewKeywords(k)
		}
	case "spell":
		if len(d.Effects) == 0 {
			return game.Card{}, fmt.Errorf("card %s: spell without effects", d.ID)
		}
		card.Kind = game.CardKindSpell
		card.EffectValue = d.Value
		card.Duration = d.Duration
		for _, name := range d.Effects {
			e, ok := game.ParseEffect(name)
			if !ok {
				return game.Card{}, fmt.Errorf("card %s: unknown effect %q", d.ID, name)
			}
			card.Effects = append(card.Effects, e)
		}
	default:
		return game.Card{}, fmt.Errorf("card %s: unknown kind %q", d.ID, d.Kind)
	}
	return card, nil
}

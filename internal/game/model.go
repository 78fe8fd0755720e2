package game

import "strings"

// Side identifies one of the two players.
type Side int

const (
	SideA Side = iota
	SideB
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

func (s Side) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	default:
		return "UNKNOWN"
	}
}

// Keyword is a unit ability affecting combat.
type Keyword uint8

const (
	KeywordTaunt Keyword = 1 << iota
	KeywordRanged
	KeywordTough
	KeywordOverwhelm
)

// AllKeywords lists every keyword in canonical order.
var AllKeywords = []Keyword{KeywordTaunt, KeywordRanged, KeywordTough, KeywordOverwhelm}

func (k Keyword) String() string {
	switch k {
	case KeywordTaunt:
		return "TAUNT"
	case KeywordRanged:
		return "RANGED"
	case KeywordTough:
		return "TOUGH"
	case KeywordOverwhelm:
		return "OVERWHELM"
	default:
		return "UNKNOWN"
	}
}

// ParseKeyword converts a keyword name (case-insensitive) into a Keyword.
func ParseKeyword(name string) (Keyword, bool) {
	for _, k := range AllKeywords {
		if strings.EqualFold(k.String(), strings.TrimSpace(name)) {
			return k, true
		}
	}
	return 0, false
}

// Keywords is a set of keywords.
type Keywords uint8

// NewKeywords builds a set from individual keywords.
func NewKeywords(ks ...Keyword) Keywords {
	var set Keywords
	for _, k := range ks {
		set |= Keywords(k)
	}
	return set
}

// Has reports whether k is in the set.
func (ks Keywords) Has(k Keyword) bool {
	return ks&Keywords(k) != 0
}

// Count returns the number of keywords in the set.
func (ks Keywords) Count() int {
	n := 0
	for _, k := range AllKeywords {
		if ks.Has(k) {
			n++
		}
	}
	return n
}

// List returns the keywords in canonical order.
func (ks Keywords) List() []Keyword {
	out := make([]Keyword, 0, ks.Count())
	for _, k := range AllKeywords {
		if ks.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

func (ks Keywords) String() string {
	names := make([]string, 0, 4)
	for _, k := range ks.List() {
		names = append(names, k.String())
	}
	return strings.Join(names, ",")
}

// Unit is a creature on the board. Units handed to the AI are copies; the
// source of truth lives behind a StateSource.
type Unit struct {
	ID               string
	Name             string
	Side             Side
	Slot             int
	Attack           int
	Health           int
	MaxHealth        int
	RemainingAttacks int
	Keywords         Keywords
	IsDead           bool
	IsPlaced         bool
}

// Alive reports whether the unit is placed, not dead and has health left.
func (u *Unit) Alive() bool {
	return u != nil && !u.IsDead && u.IsPlaced && u.Health > 0
}

// Has reports whether the unit carries keyword k.
func (u *Unit) Has(k Keyword) bool {
	return u != nil && u.Keywords.Has(k)
}

// CanAttack reports whether the unit can still attack this turn.
func (u *Unit) CanAttack() bool {
	return u.Alive() && u.Attack > 0 && u.RemainingAttacks > 0
}

// HealthRatio returns health/maxHealth, or 1 when maxHealth is unknown.
func (u *Unit) HealthRatio() float64 {
	if u == nil || u.MaxHealth <= 0 {
		return 1
	}
	return float64(u.Health) / float64(u.MaxHealth)
}

// CardKind distinguishes monsters from spells.
type CardKind int

const (
	CardKindMonster CardKind = iota
	CardKindSpell
)

func (k CardKind) String() string {
	if k == CardKindSpell {
		return "SPELL"
	}
	return "MONSTER"
}

// EffectType is one effect a spell applies.
type EffectType string

const (
	EffectDamage       EffectType = "DAMAGE"
	EffectHeal         EffectType = "HEAL"
	EffectBurn         EffectType = "BURN"
	EffectBuff         EffectType = "BUFF"
	EffectDebuff       EffectType = "DEBUFF"
	EffectDoubleAttack EffectType = "DOUBLE_ATTACK"
	EffectDraw         EffectType = "DRAW"
	EffectBloodprice   EffectType = "BLOODPRICE"
)

// AllEffects lists every effect type in canonical order.
var AllEffects = []EffectType{
	EffectDamage, EffectHeal, EffectBurn, EffectBuff,
	EffectDebuff, EffectDoubleAttack, EffectDraw, EffectBloodprice,
}

// ParseEffect converts an effect name (case-insensitive) into an EffectType.
func ParseEffect(name string) (EffectType, bool) {
	n := strings.ToUpper(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, " ", "_")
	for _, e := range AllEffects {
		if string(e) == n {
			return e, true
		}
	}
	return "", false
}

// Card is an immutable card definition held in hand.
type Card struct {
	ID       string
	Name     string
	Kind     CardKind
	ManaCost int

	// Monster fields
	Attack   int
	Health   int
	Keywords Keywords

	// Spell fields
	Effects     []EffectType
	EffectValue int
	Duration    int
}

// IsMonster reports whether the card summons a unit.
func (c Card) IsMonster() bool { return c.Kind == CardKindMonster }

// IsSpell reports whether the card is a spell.
func (c Card) IsSpell() bool { return c.Kind == CardKindSpell }

// HasEffect reports whether the spell carries effect e.
func (c Card) HasEffect(e EffectType) bool {
	for _, eff := range c.Effects {
		if eff == e {
			return true
		}
	}
	return false
}

// TotalManaCost sums the cost of a list of cards.
func TotalManaCost(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.ManaCost
	}
	return total
}

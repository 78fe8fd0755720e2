package game

import "context"

// SideStatus holds the non-unit resources of one side.
type SideStatus struct {
	Health    int
	MaxHealth int
	Mana      int
	HandSize  int
	DeckSize  int
}

// TurnInfo describes the current turn and who acts first on the next one.
type TurnInfo struct {
	TurnCount     int
	Active        Side
	FirstNextTurn Side
}

// StateSource is the source of truth the AI reads from. Implementations must
// return copies; GetActiveUnits excludes dead, unplaced and fading units.
type StateSource interface {
	GetActiveUnits(side Side) []Unit
	Status(side Side) SideStatus
	Hand(side Side) []Card
	Turn() TurnInfo
}

// TargetKind distinguishes unit targets from the life total.
type TargetKind int

const (
	TargetUnit TargetKind = iota
	TargetLifeTotal
)

func (k TargetKind) String() string {
	if k == TargetLifeTotal {
		return "LIFE_TOTAL"
	}
	return "UNIT"
}

// Target is what an attack strikes.
type Target struct {
	Kind   TargetKind
	Side   Side
	UnitID string
}

// UnitTarget targets a specific unit.
func UnitTarget(u Unit) Target {
	return Target{Kind: TargetUnit, Side: u.Side, UnitID: u.ID}
}

// LifeTotalTarget targets a side's life total directly.
func LifeTotalTarget(side Side) Target {
	return Target{Kind: TargetLifeTotal, Side: side}
}

// IsLifeTotal reports whether the target is a life total.
func (t Target) IsLifeTotal() bool { return t.Kind == TargetLifeTotal }

// PlayTarget is where a card goes: a unit for targeted spells, a slot for
// monsters, nothing for untargeted spells.
type PlayTarget struct {
	UnitID string
	Slot   int
}

// NoTarget is the play target of untargeted spells.
var NoTarget = PlayTarget{Slot: -1}

// AttackOutcome reports what an executed attack did.
type AttackOutcome struct {
	TargetDied         bool
	AttackerDied       bool
	DamageDealt        int
	CounterDamageDealt int
	SplashKills        int
}

// PlayOutcome reports whether a card was played.
type PlayOutcome struct {
	Success bool
}

// ActionExecutor applies AI intents to the game. The AI never mutates health
// or mana itself.
type ActionExecutor interface {
	ExecuteAttack(ctx context.Context, attackerID string, target Target) (AttackOutcome, error)
	ExecutePlayCard(ctx context.Context, cardID string, target PlayTarget) (PlayOutcome, error)
}

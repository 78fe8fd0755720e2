package targeting

import (
	"github.com/emberdeck/duelist/internal/game"
)

// TargetType represents which units a card may target.
type TargetType string

const (
	// TargetTypeNone is used by monsters and untargeted spells
	TargetTypeNone TargetType = "NONE"
	// TargetTypeEnemyUnit targets a unit on the opposing side
	TargetTypeEnemyUnit TargetType = "ENEMY_UNIT"
	// TargetTypeFriendlyUnit targets a unit on the caster's side
	TargetTypeFriendlyUnit TargetType = "FRIENDLY_UNIT"
)

// TargetRequirement defines what target a card requires.
type TargetRequirement struct {
	// Type specifies what kind of target is required
	Type TargetType
	// Damaging is set when the effect harms its target; damaging effects obey Taunt
	Damaging bool
	// Description is a human-readable description of the requirement
	Description string
}

// IsTargeted reports whether the requirement needs a unit target.
func (r TargetRequirement) IsTargeted() bool {
	return r.Type != TargetTypeNone
}

// effectTargets maps each effect to the side it targets.
var effectTargets = map[game.EffectType]TargetType{
	game.EffectDamage:       TargetTypeEnemyUnit,
	game.EffectBurn:         TargetTypeEnemyUnit,
	game.EffectDebuff:       TargetTypeEnemyUnit,
	game.EffectHeal:         TargetTypeFriendlyUnit,
	game.EffectBuff:         TargetTypeFriendlyUnit,
	game.EffectDoubleAttack: TargetTypeFriendlyUnit,
	game.EffectDraw:         TargetTypeNone,
	game.EffectBloodprice:   TargetTypeNone,
}

// EffectTarget returns the target type of a single effect.
func EffectTarget(effect game.EffectType) TargetType {
	if t, ok := effectTargets[effect]; ok {
		return t
	}
	return TargetTypeNone
}

// RequirementFor derives the target requirement of a card. A spell mixing
// enemy and friendly effects targets the enemy unit; its friendly effects
// are resolved by the game without a chosen target.
func RequirementFor(card game.Card) TargetRequirement {
	if card.IsMonster() {
		return TargetRequirement{Type: TargetTypeNone, Description: "summon"}
	}
	req := TargetRequirement{Type: TargetTypeNone, Description: "untargeted"}
	for _, effect := range card.Effects {
		switch EffectTarget(effect) {
		case TargetTypeEnemyUnit:
			return TargetRequirement{Type: TargetTypeEnemyUnit, Damaging: true, Description: "target enemy unit"}
		case TargetTypeFriendlyUnit:
			req = TargetRequirement{Type: TargetTypeFriendlyUnit, Description: "target friendly unit"}
		}
	}
	return req
}

// LegalTargets returns the units a card may target in the given state.
// Enemy-targeted effects must pick a Taunt unit whenever one exists.
func LegalTargets(card game.Card, state *game.BoardState) []game.Unit {
	if state == nil {
		return nil
	}
	req := RequirementFor(card)
	switch req.Type {
	case TargetTypeEnemyUnit:
		enemies := game.AliveUnits(state.OpponentUnits)
		if game.HasTaunt(enemies) {
			return game.TauntUnits(enemies)
		}
		return enemies
	case TargetTypeFriendlyUnit:
		return game.AliveUnits(state.SelfUnits)
	default:
		return nil
	}
}

// IsPlayable reports whether a card has what it needs to be played, ignoring
// mana: a free slot for monsters, a legal target for targeted spells.
func IsPlayable(card game.Card, state *game.BoardState) bool {
	if state == nil {
		return false
	}
	if card.IsMonster() {
		return state.FreeSlot(state.SelfSide) >= 0
	}
	if !RequirementFor(card).IsTargeted() {
		return true
	}
	return len(LegalTargets(card, state)) > 0
}

// LegalAttackTargets returns the units an attack may strike and whether the
// defending life total is attackable.
func LegalAttackTargets(defenders []game.Unit) ([]game.Unit, bool) {
	alive := game.AliveUnits(defenders)
	if game.HasTaunt(alive) {
		return game.TauntUnits(alive), false
	}
	return alive, true
}

// AutoFriendlyTarget picks the friendly unit that receives the friendly
// effects of an enemy-targeted spell: highest attack, then lowest slot.
func AutoFriendlyTarget(units []game.Unit) (game.Unit, bool) {
	alive := game.AliveUnits(units)
	if len(alive) == 0 {
		return game.Unit{}, false
	}
	best := alive[0]
	for _, u := range alive[1:] {
		if u.Attack > best.Attack || (u.Attack == best.Attack && u.Slot < best.Slot) {
			best = u
		}
	}
	return best, true
}
